package importer

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/Kerhoff/ChurchCal/internal/datecodec"
)

// Serial numbers strictly between these bounds are read as dates even when
// the cell is not formatted as one.
const (
	minSerial = 40000
	maxSerial = 50000
)

const (
	minTitleLen = 2
	maxTitleLen = 99
)

// Diagnostic records a cell that looked like a date but did not resolve to
// a plausible one. The cell is skipped.
type Diagnostic struct {
	Pos
	Raw    string `json:"raw"`
	Reason string `json:"reason"`
	Err    error  `json:"-"`
}

// TextCell is a candidate event title.
type TextCell struct {
	Pos
	Text  string
	Color string
}

// CellMap is the outcome of the classification pass.
type CellMap struct {
	Dates       map[Pos]datecodec.CalendarDate
	Texts       map[Pos]TextCell
	DateOrder   []Pos // row-major
	Diagnostics []Diagnostic
	MaxRow      int
	MaxCol      int
}

// IsDate reports whether a date was resolved at row/col.
func (m *CellMap) IsDate(row, col int) bool {
	_, ok := m.Dates[Pos{row, col}]
	return ok
}

type classifier struct {
	codec    *datecodec.Codec
	excluder *Excluder
	hints    HeaderHints
	year     int // declared year, else the configured default
}

// Classify resolves every non-empty cell of g to a date, a candidate title,
// or nothing. It never fails; bad date cells end up in Diagnostics.
func Classify(g *Grid, hints HeaderHints, codec *datecodec.Codec, excluder *Excluder, defaultYear int) *CellMap {
	c := classifier{codec: codec, excluder: excluder, hints: hints, year: defaultYear}
	if hints.Year > 0 {
		c.year = hints.Year
	}

	m := &CellMap{
		Dates:  make(map[Pos]datecodec.CalendarDate),
		Texts:  make(map[Pos]TextCell),
		MaxRow: g.MaxRow(),
		MaxCol: g.MaxCol(),
	}
	for _, cell := range g.Cells() {
		c.classify(m, cell)
	}
	return m
}

func (c *classifier) classify(m *CellMap, cell Cell) {
	switch cell.Kind {
	case KindDate:
		c.serial(m, cell)
	case KindNumber:
		if cell.Number > minSerial && cell.Number < maxSerial {
			c.serial(m, cell)
			return
		}
		c.text(m, cell, strings.TrimSpace(cell.Text))
	case KindText:
		c.stringCell(m, cell)
	}
}

func (c *classifier) serial(m *CellMap, cell Cell) {
	d, err := c.codec.FromSerial(cell.Number, c.hints.Year)
	if err != nil {
		m.diagnose(cell, err)
		return
	}
	m.addDate(cell.Pos, d)
}

func (c *classifier) stringCell(m *CellMap, cell Cell) {
	text := strings.TrimSpace(cell.Text)
	if text == "" {
		return
	}

	if datecodec.LooksLikeDate(text) {
		var (
			d   datecodec.CalendarDate
			err error
		)
		switch {
		case datecodec.HasKoreanDate(text):
			d, err = c.codec.ParseKoreanDate(text, c.year)
		case datecodec.HasISODate(text):
			d, err = c.codec.ParseISOText(text)
		default:
			// A bare weekday marker such as "(수)" heads a column; it is
			// neither a date nor a title.
			return
		}
		if err != nil {
			m.diagnose(cell, err)
			return
		}
		m.addDate(cell.Pos, d)
		return
	}

	if c.hints.Month != 0 && isSimpleDay(text) {
		d, err := c.codec.ParseSimpleDay(text, c.year, c.hints.Month)
		if err != nil {
			m.diagnose(cell, err)
			return
		}
		m.addDate(cell.Pos, d)
		return
	}

	c.text(m, cell, text)
}

func (c *classifier) text(m *CellMap, cell Cell, text string) {
	n := utf8.RuneCountInString(text)
	if n < minTitleLen || n > maxTitleLen {
		return
	}
	if c.excluder.Excluded(text) {
		return
	}
	m.Texts[cell.Pos] = TextCell{Pos: cell.Pos, Text: text, Color: cell.Color}
}

func (m *CellMap) addDate(p Pos, d datecodec.CalendarDate) {
	m.Dates[p] = d
	m.DateOrder = append(m.DateOrder, p)
}

func (m *CellMap) diagnose(cell Cell, err error) {
	raw := cell.Text
	if raw == "" && (cell.Kind == KindDate || cell.Kind == KindNumber) {
		raw = formatSerial(cell.Number)
	}
	m.Diagnostics = append(m.Diagnostics, Diagnostic{Pos: cell.Pos, Raw: raw, Reason: err.Error(), Err: err})
}

func isSimpleDay(text string) bool {
	if len(text) == 0 || len(text) > 2 {
		return false
	}
	for _, r := range text {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func formatSerial(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
