// Package export renders events as CSV for spreadsheets and as iCalendar
// feeds.
package export

import (
	"sort"
	"strconv"
	"strings"

	"github.com/Kerhoff/ChurchCal/internal/models"
)

// DefaultCSVFilename is used when there is nothing to derive a name from.
const DefaultCSVFilename = "church_events.csv"

// bom makes Excel read the file as UTF-8.
const bom = "\uFEFF"

var csvHeader = []string{"날짜", "제목", "카테고리", "시작시간", "종료시간", "장소", "설명", "종일", "알림", "반복"}

// CSV renders events in the given order. Free-text columns are quoted only
// when they contain a comma, a quote or a newline; lines end with "\n".
func CSV(events []models.Event) string {
	var b strings.Builder
	b.WriteString(bom)
	b.WriteString(strings.Join(csvHeader, ","))

	for _, e := range events {
		reminder := ""
		if e.Reminder > 0 {
			reminder = strconv.Itoa(e.Reminder)
		}
		allDay := "아니오"
		if e.IsAllDay {
			allDay = "예"
		}

		b.WriteByte('\n')
		b.WriteString(strings.Join([]string{
			e.Date.String(),
			escapeCSV(e.Title),
			e.Category.Label(),
			e.StartTime,
			e.EndTime,
			escapeCSV(e.Location),
			escapeCSV(e.Description),
			allDay,
			reminder,
			string(e.Recurring),
		}, ","))
	}
	return b.String()
}

func escapeCSV(s string) string {
	if strings.ContainsAny(s, ",\n\"") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}

// CSVFilename names an export after its first and last event day, e.g.
// "나주교회_일정_20251001_20251031.csv".
func CSVFilename(events []models.Event) string {
	if len(events) == 0 {
		return DefaultCSVFilename
	}

	sorted := make([]models.Event, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	first, last := sorted[0].Date, sorted[len(sorted)-1].Date
	return "나주교회_일정_" + compact(first.String()) + "_" + compact(last.String()) + ".csv"
}

func compact(date string) string {
	return strings.ReplaceAll(date, "-", "")
}
