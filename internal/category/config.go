package category

import "github.com/Kerhoff/ChurchCal/internal/models"

// ColorRule maps one fill color to a category.
type ColorRule struct {
	Color    string          `yaml:"color"`
	Category models.Category `yaml:"category"`
}

// KeywordRule maps any of Words found in a title to a category.
type KeywordRule struct {
	Category models.Category `yaml:"category"`
	Words    []string        `yaml:"words"`
}

// Config holds the data driven parts of the chain.
type Config struct {
	Colors   []ColorRule   `yaml:"colors"`
	Keywords []KeywordRule `yaml:"keywords"`
}

// DefaultConfig returns the colors and keywords used by the 나주교회 planning
// sheets.
func DefaultConfig() Config {
	return Config{
		Colors: []ColorRule{
			{"FF0070C0", models.CategoryWorship},
			{"FF00B0F0", models.CategoryWorship},
			{"FF5B9BD5", models.CategoryWorship},

			{"FF70AD47", models.CategoryCelebration},
			{"FF92D050", models.CategoryCelebration},
			{"FF00B050", models.CategoryCelebration},

			{"FF7030A0", models.CategoryTheology},
			{"FFB455B4", models.CategoryTheology},
			{"FFCC99FF", models.CategoryTheology},

			{"FFA6A6A6", models.CategoryAdmin},
			{"FF808080", models.CategoryAdmin},
			{"FF595959", models.CategoryAdmin},

			{"FFED7D31", models.CategoryEducation},
			{"FFFFC000", models.CategoryEducation},
			{"FFFFCC00", models.CategoryEducation},

			{"FFFF0000", models.CategoryEvangelism},
			{"FFFF6666", models.CategoryEvangelism},
			{"FFE26B0A", models.CategoryEvangelism},

			{"FFFFFF00", models.CategoryService},
			{"FFFFEB9C", models.CategoryService},
			{"FFFFF2CC", models.CategoryService},

			{"FF00FFFF", models.CategoryRegional},
			{"FF00CCFF", models.CategoryRegional},
			{"FF99FFFF", models.CategoryRegional},
		},
		Keywords: []KeywordRule{
			{models.CategoryWorship, []string{"예배", "인맞음"}},
			{models.CategoryCelebration, []string{"송하", "졸업"}},
			{models.CategoryTheology, []string{"신학", "센터"}},
			{models.CategoryAdmin, []string{"관리", "재정"}},
			{models.CategoryEducation, []string{"교육", "학습"}},
			{models.CategoryEvangelism, []string{"전도", "선교"}},
			{models.CategoryService, []string{"봉사", "홍보"}},
			{models.CategoryRegional, []string{"지역", "나주"}},
		},
	}
}
