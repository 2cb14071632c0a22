package models

// Category tags an event with the church organization it belongs to.
type Category string

const (
	CategoryWorship     Category = "worship"
	CategoryCelebration Category = "celebration"
	CategoryTheology    Category = "theology"
	CategoryAdmin       Category = "admin"
	CategoryEducation   Category = "education"
	CategoryEvangelism  Category = "evangelism"
	CategoryService     Category = "service"
	CategoryRegional    Category = "regional"
	CategoryChurch      Category = "church"
	CategoryAdult       Category = "adult"
	CategoryWomen       Category = "women"
	CategoryYouth       Category = "youth"
	CategoryAdvisory    Category = "advisory"
	CategoryChildren    Category = "children"
	CategoryStudent     Category = "student"
)

// CategoryInfo is the display metadata of a category
type CategoryInfo struct {
	Key   Category `json:"key" yaml:"key"`
	Label string   `json:"label" yaml:"label"`
	Color string   `json:"color" yaml:"color"`
}

var categories = []CategoryInfo{
	{CategoryWorship, "예배/인맞음", "#3B82F6"},
	{CategoryCelebration, "송하행사", "#10B981"},
	{CategoryTheology, "신학부", "#8B5CF6"},
	{CategoryAdmin, "관리부", "#6B7280"},
	{CategoryEducation, "교육부", "#F97316"},
	{CategoryEvangelism, "전도부", "#EF4444"},
	{CategoryService, "봉사/홍보", "#FDE047"},
	{CategoryRegional, "나주지역회의", "#06B6D4"},
	{CategoryChurch, "교회", "#60A5FA"},
	{CategoryAdult, "장년회", "#1E40AF"},
	{CategoryWomen, "부녀회", "#EC4899"},
	{CategoryYouth, "청년회", "#0891B2"},
	{CategoryAdvisory, "자문회", "#7C3AED"},
	{CategoryChildren, "유년회", "#EAB308"},
	{CategoryStudent, "학생회", "#059669"},
}

// Categories returns every category in display order
func Categories() []CategoryInfo {
	out := make([]CategoryInfo, len(categories))
	copy(out, categories)
	return out
}

// Info returns the metadata for c
func (c Category) Info() (CategoryInfo, bool) {
	for _, info := range categories {
		if info.Key == c {
			return info, true
		}
	}
	return CategoryInfo{}, false
}

// Valid reports whether c is one of the known categories
func (c Category) Valid() bool {
	_, ok := c.Info()
	return ok
}

// Label returns the Korean label of c, or the raw key when c is unknown
func (c Category) Label() string {
	if info, ok := c.Info(); ok {
		return info.Label
	}
	return string(c)
}
