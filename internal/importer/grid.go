package importer

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Kind is the storage type of a cell as read from the workbook.
type Kind int

const (
	KindEmpty Kind = iota
	KindText
	KindNumber
	KindDate
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	case KindDate:
		return "date"
	default:
		return "empty"
	}
}

// Pos addresses a cell. Rows and columns are 1-based, so B1 is {1, 2}.
type Pos struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Cell is one workbook cell. Number holds the value of number cells and the
// serial day number of date cells; Text holds the string or display value.
type Cell struct {
	Pos
	Kind   Kind
	Text   string
	Number float64
	Color  string // fill color as reported by the workbook, empty for none
}

// Grid is a sparse snapshot of one sheet.
type Grid struct {
	cells  map[Pos]Cell
	maxRow int
	maxCol int
}

// NewGrid returns an empty grid.
func NewGrid() *Grid {
	return &Grid{cells: make(map[Pos]Cell)}
}

// Set stores c, growing the grid bounds as needed. Empty cells are dropped.
func (g *Grid) Set(c Cell) {
	if c.Kind == KindEmpty {
		return
	}
	g.cells[c.Pos] = c
	if c.Row > g.maxRow {
		g.maxRow = c.Row
	}
	if c.Col > g.maxCol {
		g.maxCol = c.Col
	}
}

// SetText, SetNumber and SetDate are shorthands used by readers and tests.
func (g *Grid) SetText(row, col int, text, color string) {
	g.Set(Cell{Pos: Pos{row, col}, Kind: KindText, Text: text, Color: color})
}

func (g *Grid) SetNumber(row, col int, v float64, color string) {
	g.SetDisplayNumber(row, col, v, strconv.FormatFloat(v, 'f', -1, 64), color)
}

// SetDisplayNumber stores a number together with the text the sheet shows
// for it ("1,500" for 1500 under "#,##0").
func (g *Grid) SetDisplayNumber(row, col int, v float64, display, color string) {
	if display == "" {
		display = strconv.FormatFloat(v, 'f', -1, 64)
	}
	g.Set(Cell{Pos: Pos{row, col}, Kind: KindNumber, Number: v, Text: display, Color: color})
}

func (g *Grid) SetDate(row, col int, serial float64, color string) {
	g.Set(Cell{Pos: Pos{row, col}, Kind: KindDate, Number: serial, Color: color})
}

// At returns the cell at row/col and whether it is non-empty.
func (g *Grid) At(row, col int) (Cell, bool) {
	c, ok := g.cells[Pos{row, col}]
	return c, ok
}

// MaxRow and MaxCol are the last populated row and column.
func (g *Grid) MaxRow() int { return g.maxRow }
func (g *Grid) MaxCol() int { return g.maxCol }

// Len returns the number of non-empty cells.
func (g *Grid) Len() int { return len(g.cells) }

// Cells returns the non-empty cells in row-major order.
func (g *Grid) Cells() []Cell {
	out := make([]Cell, 0, len(g.cells))
	for _, c := range g.cells {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Pos.before(out[j].Pos) })
	return out
}

func (p Pos) before(o Pos) bool {
	if p.Row != o.Row {
		return p.Row < o.Row
	}
	return p.Col < o.Col
}

// HeaderHints carries the year and month a sheet declares in its header.
// Zero means not declared.
type HeaderHints struct {
	Year  int        `json:"year,omitempty"`
	Month time.Month `json:"month,omitempty"`
}

var (
	headerYearPattern  = regexp.MustCompile(`(\d{4})`)
	headerMonthPattern = regexp.MustCompile(`(\d{1,2})월`)
)

// DetectHeaderHints reads the year from B1 ("2025년") and the month from C1
// ("10월").
func DetectHeaderHints(g *Grid) HeaderHints {
	var h HeaderHints
	if c, ok := g.At(1, 2); ok {
		if m := headerYearPattern.FindStringSubmatch(strings.TrimSpace(c.Text)); m != nil {
			h.Year, _ = strconv.Atoi(m[1])
		}
	}
	if c, ok := g.At(1, 3); ok {
		if m := headerMonthPattern.FindStringSubmatch(strings.TrimSpace(c.Text)); m != nil {
			if month, _ := strconv.Atoi(m[1]); month >= 1 && month <= 12 {
				h.Month = time.Month(month)
			}
		}
	}
	return h
}
