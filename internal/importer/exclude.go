package importer

import "strings"

// DefaultExcludedLabels are the memo-section legend labels of the planning
// sheets. They name categories, not events.
var DefaultExcludedLabels = []string{
	"메모:",
	"예배, 인맞음",
	"송하행사",
	"신학부(센터)",
	"신학부(모임)",
	"관리부",
	"나주지역회의",
	"교육부",
	"봉사,홍보",
	"봉사, 홍보",
	"전도부",
	"전도기획",
}

// Excluder recognizes sheet chrome that must never become an event title.
type Excluder struct {
	labels map[string]struct{}
}

// NewExcluder builds an Excluder from exact labels. A label with a comma also
// matches its ", " spelling.
func NewExcluder(labels []string) *Excluder {
	e := &Excluder{labels: make(map[string]struct{}, len(labels)*2)}
	for _, l := range labels {
		l = strings.TrimSpace(l)
		e.labels[l] = struct{}{}
		e.labels[strings.Replace(l, ",", ", ", 1)] = struct{}{}
	}
	return e
}

// Excluded reports whether text is a legend label or a multi-day week
// annotation such as "전도주간(10/5~10/11)".
func (e *Excluder) Excluded(text string) bool {
	text = strings.TrimSpace(text)
	if _, ok := e.labels[text]; ok {
		return true
	}
	if strings.Contains(text, "주간") && (strings.Contains(text, "(") || strings.Contains(text, "~")) {
		return true
	}
	return strings.Contains(text, "찾기주간")
}
