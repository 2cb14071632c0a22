package datecodec

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	koreanDatePattern = regexp.MustCompile(`(\d{1,2})월\s*(\d{1,2})일`)
	isoTextPattern    = regexp.MustCompile(`(\d{4})[-/.](\d{1,2})[-/.](\d{1,2})`)
	simpleDayPattern  = regexp.MustCompile(`^\d{1,2}$`)
)

var weekdayMarkers = []string{"(월)", "(화)", "(수)", "(목)", "(금)", "(토)", "(일)"}

// LooksLikeDate reports whether text carries any of the date shapes found in
// planning sheets: "10월 1일", "2025.10.01", or a weekday marker like "(수)".
func LooksLikeDate(text string) bool {
	return koreanDatePattern.MatchString(text) || isoTextPattern.MatchString(text) || HasWeekdayMarker(text)
}

// HasKoreanDate reports whether text contains "N월 N일".
func HasKoreanDate(text string) bool {
	return koreanDatePattern.MatchString(text)
}

// HasISODate reports whether text contains a year-month-day run.
func HasISODate(text string) bool {
	return isoTextPattern.MatchString(text)
}

// HasWeekdayMarker reports whether text contains a parenthesised weekday.
func HasWeekdayMarker(text string) bool {
	for _, m := range weekdayMarkers {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}

// ParseKoreanDate reads the first "N월 N일" in text using year.
func (c *Codec) ParseKoreanDate(text string, year int) (CalendarDate, error) {
	m := koreanDatePattern.FindStringSubmatch(text)
	if m == nil {
		return CalendarDate{}, fmt.Errorf("%w: no month/day in %q", ErrInvalidDate, text)
	}
	month, _ := strconv.Atoi(m[1])
	day, _ := strconv.Atoi(m[2])
	return c.build(year, month, day, text)
}

// ParseISOText reads the first year-month-day run in text, with '-', '/' or
// '.' as separators.
func (c *Codec) ParseISOText(text string) (CalendarDate, error) {
	m := isoTextPattern.FindStringSubmatch(text)
	if m == nil {
		return CalendarDate{}, fmt.Errorf("%w: no year-month-day in %q", ErrInvalidDate, text)
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	return c.build(year, month, day, text)
}

// ParseSimpleDay reads a bare day number ("15") as a day of year/month.
// The day must exist in that month.
func (c *Codec) ParseSimpleDay(text string, year int, month time.Month) (CalendarDate, error) {
	text = strings.TrimSpace(text)
	if !simpleDayPattern.MatchString(text) {
		return CalendarDate{}, fmt.Errorf("%w: %q is not a day number", ErrInvalidDate, text)
	}
	day, _ := strconv.Atoi(text)
	return c.build(year, int(month), day, text)
}

func (c *Codec) build(year, month, day int, raw string) (CalendarDate, error) {
	d, ok := New(year, time.Month(month), day)
	if !ok {
		return CalendarDate{}, fmt.Errorf("%w: %q does not name a day in %d", ErrInvalidDate, raw, year)
	}
	if err := c.Check(d); err != nil {
		return CalendarDate{}, err
	}
	return d, nil
}
