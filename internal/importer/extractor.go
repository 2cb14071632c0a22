// Package importer extracts draft calendar events from monthly planning
// spreadsheets.
//
// Extraction runs in two passes over a snapshot of the first sheet. The
// classification pass resolves every cell to a date, a candidate title, or
// nothing (see Classify). The association pass attaches titles to the dates
// above them or to their left (see Associate). Each association becomes a
// DraftEvent whose category comes from the title cell's fill color or text
// and whose time comes from the title; drafts sharing a title and day are
// collapsed to the first one.
//
// Cell-level problems never abort an extraction: a date cell that resolves
// to an implausible year is skipped and reported as a Diagnostic. Only an
// unreadable workbook fails the call. A sheet without any event yields
// ErrNoEventsFound together with an empty Result.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/ChurchCal/internal/category"
	"github.com/Kerhoff/ChurchCal/internal/datecodec"
	"github.com/Kerhoff/ChurchCal/internal/models"
	"github.com/Kerhoff/ChurchCal/internal/timeinfer"
)

var (
	// ErrUnreadableWorkbook means the input is not a workbook this package
	// can read, or it has no sheet.
	ErrUnreadableWorkbook = errors.New("unreadable workbook")

	// ErrNotExcel means the upload does not carry an Excel extension.
	ErrNotExcel = fmt.Errorf("%w: only .xlsx and .xls files are accepted", ErrUnreadableWorkbook)

	// ErrNoEventsFound means extraction finished without a single draft.
	ErrNoEventsFound = errors.New("no events found")
)

// SheetReader turns workbook bytes into a grid of the first sheet.
type SheetReader interface {
	ReadFirstSheet(r io.Reader) (*Grid, error)
}

// Result is the outcome of one extraction.
type Result struct {
	Drafts      []models.DraftEvent `json:"drafts"`
	Diagnostics []Diagnostic        `json:"diagnostics,omitempty"`
	Hints       HeaderHints         `json:"hints"`
	Duplicates  int                 `json:"duplicates"` // drafts collapsed by title and day
}

// Extractor holds the immutable configuration of the pipeline. It is safe
// for concurrent use; every call works on its own grid and result.
type Extractor struct {
	opts       Options
	codec      *datecodec.Codec
	excluder   *Excluder
	classifier *category.Classifier
	reader     SheetReader
	logger     *logrus.Logger
}

// New creates an Extractor. reader may be nil when only Extract is used.
func New(opts Options, reader SheetReader, logger *logrus.Logger) *Extractor {
	return &Extractor{
		opts:       opts,
		codec:      datecodec.NewCodec(opts.Years),
		excluder:   NewExcluder(opts.ExcludedLabels),
		classifier: category.New(opts.Category),
		reader:     reader,
		logger:     logger,
	}
}

// Options returns the configuration the extractor was built with.
func (e *Extractor) Options() Options {
	return e.opts
}

// Codec returns the date codec bounded by the configured year range.
func (e *Extractor) Codec() *datecodec.Codec {
	return e.codec
}

// ExtractWorkbook reads the first sheet of an .xlsx upload and extracts it.
func (e *Extractor) ExtractWorkbook(ctx context.Context, filename string, r io.Reader) (*Result, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext != ".xlsx" && ext != ".xls" {
		return nil, fmt.Errorf("%w: %q", ErrNotExcel, filename)
	}
	if e.reader == nil {
		return nil, fmt.Errorf("%w: no workbook reader configured", ErrUnreadableWorkbook)
	}

	grid, err := e.reader.ReadFirstSheet(r)
	if err != nil {
		if errors.Is(err, ErrUnreadableWorkbook) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrUnreadableWorkbook, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.logger.WithFields(logrus.Fields{
		"file":  filename,
		"cells": grid.Len(),
		"rows":  grid.MaxRow(),
		"cols":  grid.MaxCol(),
	}).Debug("Workbook loaded")

	return e.Extract(grid, DetectHeaderHints(grid))
}

// Extract runs both passes over g and builds the drafts.
func (e *Extractor) Extract(g *Grid, hints HeaderHints) (*Result, error) {
	cells := Classify(g, hints, e.codec, e.excluder, e.opts.DefaultYear)
	assocs := Associate(cells, e.excluder)

	res := &Result{
		Diagnostics: cells.Diagnostics,
		Hints:       hints,
	}
	seen := make(map[draftKey]struct{}, len(assocs))
	for _, a := range assocs {
		key := draftKey{title: a.Title, date: a.Date}
		if _, dup := seen[key]; dup {
			res.Duplicates++
			continue
		}
		seen[key] = struct{}{}
		res.Drafts = append(res.Drafts, e.draft(a))
	}

	for _, d := range res.Diagnostics {
		e.logger.WithFields(logrus.Fields{
			"row": d.Row,
			"col": d.Col,
			"raw": d.Raw,
		}).Debugf("Skipped date cell: %s", d.Reason)
	}
	e.logger.WithFields(logrus.Fields{
		"dates":       len(cells.Dates),
		"texts":       len(cells.Texts),
		"drafts":      len(res.Drafts),
		"duplicates":  res.Duplicates,
		"diagnostics": len(res.Diagnostics),
	}).Info("Sheet extraction finished")

	if len(res.Drafts) == 0 {
		return res, ErrNoEventsFound
	}
	return res, nil
}

type draftKey struct {
	title string
	date  datecodec.CalendarDate
}

func (e *Extractor) draft(a Association) models.DraftEvent {
	t := timeinfer.Infer(a.Title)
	return models.DraftEvent{
		Title:       a.Title,
		Date:        a.Date,
		Category:    e.classifier.Classify(a.Color, a.Title),
		IsAllDay:    t.IsAllDay,
		StartTime:   t.StartTime,
		EndTime:     t.EndTime,
		Description: e.opts.Description,
		Location:    e.opts.Location,
	}
}
