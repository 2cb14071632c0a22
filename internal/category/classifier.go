// Package category maps spreadsheet cell colors and event titles to
// church categories.
package category

import (
	"strconv"
	"strings"

	"github.com/Kerhoff/ChurchCal/internal/models"
)

// RuleKind tags the variant of a Rule.
type RuleKind int

const (
	ExactMatch RuleKind = iota
	ChannelHeuristic
	TextKeyword
	Default
)

func (k RuleKind) String() string {
	switch k {
	case ExactMatch:
		return "exact"
	case ChannelHeuristic:
		return "heuristic"
	case TextKeyword:
		return "keyword"
	default:
		return "default"
	}
}

// Rule is one step of the classification chain. Only the field matching
// Kind is consulted.
type Rule struct {
	Kind      RuleKind
	Category  models.Category
	Color     string                 // ExactMatch, canonical ARGB
	Predicate func(r, g, b int) bool // ChannelHeuristic
	Keywords  []string               // TextKeyword
}

func (r Rule) matches(c color, text string) bool {
	switch r.Kind {
	case ExactMatch:
		return c.present && c.argb == r.Color
	case ChannelHeuristic:
		return c.parsed && r.Predicate(c.r, c.g, c.b)
	case TextKeyword:
		lower := strings.ToLower(text)
		for _, kw := range r.Keywords {
			if strings.Contains(lower, strings.ToLower(kw)) {
				return true
			}
		}
		return false
	default:
		return true
	}
}

// Classifier evaluates its rules in order; the first match wins.
type Classifier struct {
	rules []Rule
}

// New builds the rule chain from cfg: exact colors, channel heuristics,
// title keywords, then the church default.
func New(cfg Config) *Classifier {
	rules := make([]Rule, 0, len(cfg.Colors)+len(heuristics)+len(cfg.Keywords)+1)
	for _, cr := range cfg.Colors {
		if c := parseColor(cr.Color); c.present {
			rules = append(rules, Rule{Kind: ExactMatch, Category: cr.Category, Color: c.argb})
		}
	}
	rules = append(rules, heuristics...)
	for _, kr := range cfg.Keywords {
		rules = append(rules, Rule{Kind: TextKeyword, Category: kr.Category, Keywords: kr.Words})
	}
	rules = append(rules, Rule{Kind: Default, Category: models.CategoryChurch})
	return &Classifier{rules: rules}
}

// Rules returns the chain in evaluation order.
func (c *Classifier) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	copy(out, c.rules)
	return out
}

// Classify resolves the category for a cell with the given background color
// (any of "#RRGGBB", "RRGGBB", "AARRGGBB"; empty for none) and title text.
func (c *Classifier) Classify(color, fallbackText string) models.Category {
	cat, _ := c.Explain(color, fallbackText)
	return cat
}

// Explain is Classify that also reports which kind of rule decided.
func (c *Classifier) Explain(color, fallbackText string) (models.Category, RuleKind) {
	col := parseColor(color)
	for _, r := range c.rules {
		if r.matches(col, fallbackText) {
			return r.Category, r.Kind
		}
	}
	return models.CategoryChurch, Default
}

var heuristics = []Rule{
	{Kind: ChannelHeuristic, Category: models.CategoryWorship, Predicate: func(r, g, b int) bool {
		return b > r && b > g
	}},
	{Kind: ChannelHeuristic, Category: models.CategoryCelebration, Predicate: func(r, g, b int) bool {
		return g > r && g > b
	}},
	{Kind: ChannelHeuristic, Category: models.CategoryService, Predicate: func(r, g, b int) bool {
		return r > 200 && g > 200 && b < 100
	}},
	{Kind: ChannelHeuristic, Category: models.CategoryEvangelism, Predicate: func(r, g, b int) bool {
		return r > g && r > b && r > 200
	}},
	{Kind: ChannelHeuristic, Category: models.CategoryAdmin, Predicate: func(r, g, b int) bool {
		return abs(r-g) < 30 && abs(g-b) < 30
	}},
}

type color struct {
	present bool
	parsed  bool
	argb    string
	r, g, b int
}

// NormalizeColor returns the canonical uppercase ARGB form of s, or "" when s
// is not a hex color.
func NormalizeColor(s string) string {
	return parseColor(s).argb
}

func parseColor(s string) color {
	s = strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(s), "#"))
	if s == "" {
		return color{}
	}
	switch len(s) {
	case 6:
		s = "FF" + s
	case 8:
	default:
		return color{present: true}
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color{present: true}
	}
	return color{
		present: true,
		parsed:  true,
		argb:    s,
		r:       int(v >> 16 & 0xFF),
		g:       int(v >> 8 & 0xFF),
		b:       int(v & 0xFF),
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
