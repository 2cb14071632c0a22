// Package xlsx reads the first sheet of an Excel workbook into an importer
// grid, keeping each cell's type and fill color.
package xlsx

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"github.com/Kerhoff/ChurchCal/internal/datecodec"
	"github.com/Kerhoff/ChurchCal/internal/importer"
)

// Reader implements importer.SheetReader on top of excelize.
type Reader struct {
	logger *logrus.Logger
}

// NewReader creates a Reader.
func NewReader(logger *logrus.Logger) *Reader {
	return &Reader{logger: logger}
}

// ReadFirstSheet loads the workbook from r and snapshots its first sheet.
func (r *Reader) ReadFirstSheet(src io.Reader) (*importer.Grid, error) {
	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", importer.ErrUnreadableWorkbook)
	}
	sheet := sheets[0]

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	s := &sheetReader{file: f, sheet: sheet, styles: make(map[int]*excelize.Style)}
	grid := importer.NewGrid()
	for i, row := range rows {
		for j, value := range row {
			if strings.TrimSpace(value) == "" {
				continue
			}
			if err := s.readCell(grid, i+1, j+1, value); err != nil {
				return nil, err
			}
		}
	}

	if r.logger != nil {
		r.logger.WithFields(logrus.Fields{
			"sheet": sheet,
			"cells": grid.Len(),
		}).Debug("Read first sheet")
	}
	return grid, nil
}

type sheetReader struct {
	file   *excelize.File
	sheet  string
	styles map[int]*excelize.Style
}

func (s *sheetReader) readCell(g *importer.Grid, row, col int, formatted string) error {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("failed to name cell %d,%d: %w", row, col, err)
	}

	style, err := s.style(name)
	if err != nil {
		return err
	}
	color := fillColor(style)

	typ, err := s.file.GetCellType(s.sheet, name)
	if err != nil {
		return fmt.Errorf("failed to read type of %s: %w", name, err)
	}

	switch typ {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeBool, excelize.CellTypeError:
		g.SetText(row, col, formatted, color)
		return nil
	case excelize.CellTypeDate:
		raw, err := s.raw(name)
		if err != nil {
			return err
		}
		if serial, ok := isoSerial(raw); ok && serial >= 1 {
			g.SetDate(row, col, serial, color)
			return nil
		}
		g.SetText(row, col, formatted, color)
		return nil
	}

	// Numbers and formula results carry no string type; the raw value
	// decides.
	raw, err := s.raw(name)
	if err != nil {
		return err
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		g.SetText(row, col, formatted, color)
		return nil
	}
	// Serials below 1 are times of day without a date.
	if isDateStyle(style) && v >= 1 {
		g.SetDate(row, col, v, color)
		return nil
	}
	g.SetDisplayNumber(row, col, v, strings.TrimSpace(formatted), color)
	return nil
}

func (s *sheetReader) raw(name string) (string, error) {
	v, err := s.file.GetCellValue(s.sheet, name, excelize.Options{RawCellValue: true})
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", name, err)
	}
	return v, nil
}

func (s *sheetReader) style(name string) (*excelize.Style, error) {
	idx, err := s.file.GetCellStyle(s.sheet, name)
	if err != nil {
		return nil, fmt.Errorf("failed to read style of %s: %w", name, err)
	}
	if st, ok := s.styles[idx]; ok {
		return st, nil
	}
	st, err := s.file.GetStyle(idx)
	if err != nil {
		return nil, fmt.Errorf("failed to read style %d: %w", idx, err)
	}
	s.styles[idx] = st
	return st, nil
}

func fillColor(st *excelize.Style) string {
	if st == nil || len(st.Fill.Color) == 0 {
		return ""
	}
	return st.Fill.Color[0]
}

// Built-in number formats that render a date. Time-only formats (18-21,
// 45-47) are left out.
var dateFormatIDs = map[int]bool{
	14: true, 15: true, 16: true, 17: true, 22: true,
	27: true, 30: true, 36: true, 50: true, 57: true,
}

func isDateStyle(st *excelize.Style) bool {
	if st == nil {
		return false
	}
	if st.CustomNumFmt != nil {
		return isDateFormat(*st.CustomNumFmt)
	}
	return dateFormatIDs[st.NumFmt]
}

// isDateFormat reports whether a custom format code has a year or day token
// outside quoted literals and brackets.
func isDateFormat(code string) bool {
	var (
		quoted  bool
		bracket bool
	)
	for _, r := range strings.ToLower(code) {
		switch {
		case r == '"':
			quoted = !quoted
		case quoted:
		case r == '[':
			bracket = true
		case r == ']':
			bracket = false
		case bracket:
		case r == 'y' || r == 'd':
			return true
		}
	}
	return false
}

// isoSerial converts the ISO 8601 value of a t="d" cell to a serial.
func isoSerial(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		t, err := time.Parse(layout, raw)
		if err == nil {
			return float64(datecodec.ToSerial(datecodec.FromTime(t))), true
		}
	}
	return 0, false
}
