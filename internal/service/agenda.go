package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/Kerhoff/ChurchCal/internal/datecodec"
)

var weekdays = [...]string{"일", "월", "화", "수", "목", "금", "토"}

// DayLabel renders a date as "10월 1일 (수)".
func DayLabel(d datecodec.CalendarDate) string {
	return fmt.Sprintf("%d월 %d일 (%s)", int(d.Month), d.Day, weekdays[d.Time(time.UTC).Weekday()])
}

// FormatAgenda renders the occurrences of one day as a Markdown message.
func FormatAgenda(day datecodec.CalendarDate, occurrences []Occurrence) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📅 *%s 일정*\n", DayLabel(day))
	if len(occurrences) == 0 {
		b.WriteString("\n등록된 일정이 없습니다.")
		return b.String()
	}
	b.WriteString("\n")
	for _, o := range occurrences {
		b.WriteString(FormatOccurrence(o))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatOccurrence renders one line: time or 종일, title and category label.
func FormatOccurrence(o Occurrence) string {
	when := "종일"
	if !o.Event.IsAllDay && o.Event.StartTime != "" {
		when = o.Start.Format("15:04")
		if o.Event.EndTime != "" {
			when += "~" + o.End.Format("15:04")
		}
	}
	return fmt.Sprintf("• %s %s [%s]", when, o.Event.Title, o.Event.Category.Label())
}

// FormatMonth renders a month overview grouped by day.
func FormatMonth(year int, month time.Month, occurrences []Occurrence) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📅 *%d년 %d월 일정*\n", year, int(month))
	if len(occurrences) == 0 {
		b.WriteString("\n등록된 일정이 없습니다.")
		return b.String()
	}

	var current datecodec.CalendarDate
	for _, o := range occurrences {
		if o.Date != current {
			current = o.Date
			fmt.Fprintf(&b, "\n*%s*\n", DayLabel(current))
		}
		b.WriteString(FormatOccurrence(o))
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\n_총 %d개 일정_", len(occurrences))
	return b.String()
}
