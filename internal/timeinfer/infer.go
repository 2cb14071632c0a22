// Package timeinfer finds a time of day inside free-form event titles.
package timeinfer

import (
	"fmt"
	"regexp"
	"strconv"
)

// DefaultDuration is added to an inferred start to produce the end time.
const DefaultDuration = 2

// pattern alternatives, leftmost match first: "14:00", "3시", "오전 9", "오후 2".
var pattern = regexp.MustCompile(`(\d{1,2}):(\d{2})|(\d{1,2})시|오전\s*(\d{1,2})|오후\s*(\d{1,2})`)

// Result is the outcome of Infer. Start and end are "HH:MM" and empty for
// all-day events.
type Result struct {
	StartTime string `json:"start_time,omitempty"`
	EndTime   string `json:"end_time,omitempty"`
	IsAllDay  bool   `json:"is_all_day"`
}

// Infer returns the first time expression in text with a two hour default
// duration. Text without a usable time expression is an all-day event.
//
// "오후 N" adds twelve hours for N below 12. End times that would cross
// midnight are held at 23:59.
func Infer(text string) Result {
	m := pattern.FindStringSubmatch(text)
	if m == nil {
		return Result{IsAllDay: true}
	}

	var hour, minute int
	switch {
	case m[1] != "":
		hour, _ = strconv.Atoi(m[1])
		minute, _ = strconv.Atoi(m[2])
	case m[3] != "":
		hour, _ = strconv.Atoi(m[3])
	case m[4] != "":
		hour, _ = strconv.Atoi(m[4])
	case m[5] != "":
		hour, _ = strconv.Atoi(m[5])
		if hour < 12 {
			hour += 12
		}
	}
	if hour > 23 || minute > 59 {
		return Result{IsAllDay: true}
	}

	endHour, endMinute := hour+DefaultDuration, minute
	if endHour > 23 {
		endHour, endMinute = 23, 59
	}
	return Result{
		StartTime: clock(hour, minute),
		EndTime:   clock(endHour, endMinute),
	}
}

func clock(hour, minute int) string {
	return fmt.Sprintf("%02d:%02d", hour, minute)
}
