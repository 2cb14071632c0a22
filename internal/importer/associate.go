package importer

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/Kerhoff/ChurchCal/internal/datecodec"
)

// Direction tells which scan attached a title to its date.
type Direction string

const (
	Below Direction = "below"
	Right Direction = "right"
)

// rightwardColumns and rightwardRows bound the block scanned to the right of
// a date cell in calendar-grid layouts.
const (
	rightwardColumns = 3
	rightwardRows    = 2
)

// Association links one title cell to the date cell it belongs to.
type Association struct {
	Date      datecodec.CalendarDate
	DateCell  Pos
	TitleCell Pos
	Title     string
	Color     string
	Direction Direction
}

var (
	digitsOnly   = regexp.MustCompile(`^\d+$`)
	monthOnly    = regexp.MustCompile(`^\d+월$`)
	dayOnly      = regexp.MustCompile(`^\d+일$`)
	noiseMarkers = []string{"요일", "작성"}
)

// Associate walks the dates of m in row-major order and collects the titles
// below each date (same column, up to the next date) and in the block of up
// to three columns to its right (rows r..r+2, up to the next date in row r).
func Associate(m *CellMap, excluder *Excluder) []Association {
	var out []Association
	for _, p := range m.DateOrder {
		date := m.Dates[p]

		for row := p.Row + 1; row <= m.MaxRow; row++ {
			if m.IsDate(row, p.Col) {
				break
			}
			tc, ok := m.Texts[Pos{row, p.Col}]
			if !ok || belowNoise(tc.Text, excluder) {
				continue
			}
			out = append(out, association(date, p, tc, Below))
		}

		lastCol := min(p.Col+rightwardColumns, m.MaxCol)
		for col := p.Col + 1; col <= lastCol; col++ {
			if m.IsDate(p.Row, col) {
				break
			}
			for off := 0; off <= rightwardRows; off++ {
				tc, ok := m.Texts[Pos{p.Row + off, col}]
				if !ok || rightNoise(tc.Text, excluder) {
					continue
				}
				out = append(out, association(date, p, tc, Right))
			}
		}
	}
	return out
}

func association(date datecodec.CalendarDate, at Pos, tc TextCell, dir Direction) Association {
	return Association{
		Date:      date,
		DateCell:  at,
		TitleCell: tc.Pos,
		Title:     tc.Text,
		Color:     tc.Color,
		Direction: dir,
	}
}

func belowNoise(title string, excluder *Excluder) bool {
	if rightNoise(title, excluder) {
		return true
	}
	if monthOnly.MatchString(title) || dayOnly.MatchString(title) {
		return true
	}
	for _, marker := range noiseMarkers {
		if strings.Contains(title, marker) {
			return true
		}
	}
	return false
}

func rightNoise(title string, excluder *Excluder) bool {
	return utf8.RuneCountInString(title) < minTitleLen ||
		digitsOnly.MatchString(title) ||
		strings.Contains(title, "요일") ||
		title == "nan" ||
		excluder.Excluded(title)
}
