package importer

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Kerhoff/ChurchCal/internal/category"
	"github.com/Kerhoff/ChurchCal/internal/datecodec"
)

// Options tune extraction. The zero value is not usable; start from
// DefaultOptions.
type Options struct {
	Years          datecodec.YearRange `yaml:"years"`
	DefaultYear    int                 `yaml:"default_year"`
	Description    string              `yaml:"description"`
	Location       string              `yaml:"location"`
	Reminder       int                 `yaml:"reminder"`
	ExcludedLabels []string            `yaml:"excluded_labels"`
	Category       category.Config     `yaml:"category"`
}

// DefaultOptions returns the settings for the 나주교회 monthly sheets.
func DefaultOptions() Options {
	return Options{
		Years:          datecodec.DefaultYearRange,
		DefaultYear:    2025,
		Description:    "엑셀에서 가져온 일정",
		Location:       "나주교회",
		Reminder:       30,
		ExcludedLabels: append([]string(nil), DefaultExcludedLabels...),
		Category:       category.DefaultConfig(),
	}
}

// ParseOptions overlays YAML data on DefaultOptions. Keys missing from data
// keep their defaults; lists present in data replace the default lists.
func ParseOptions(data []byte) (Options, error) {
	opts := DefaultOptions()
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return Options{}, fmt.Errorf("failed to parse import rules: %w", err)
	}
	if opts.DefaultYear <= 0 {
		return Options{}, fmt.Errorf("default_year must be positive")
	}
	if opts.Years.Min != 0 && opts.Years.Max != 0 && opts.Years.Min > opts.Years.Max {
		return Options{}, fmt.Errorf("years.min %d is after years.max %d", opts.Years.Min, opts.Years.Max)
	}
	return opts, nil
}

// LoadOptions reads a YAML rules file. An empty path yields DefaultOptions.
func LoadOptions(path string) (Options, error) {
	if path == "" {
		return DefaultOptions(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, fmt.Errorf("failed to read import rules %s: %w", path, err)
	}
	return ParseOptions(data)
}
