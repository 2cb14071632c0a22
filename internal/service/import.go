package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/ChurchCal/internal/importer"
	"github.com/Kerhoff/ChurchCal/internal/models"
	"github.com/Kerhoff/ChurchCal/internal/store"
)

// User-facing import messages.
const (
	MsgNotExcel        = "엑셀 파일(.xlsx, .xls)만 업로드 가능합니다."
	MsgUnreadable      = "파일 처리 중 오류가 발생했습니다."
	MsgNoEventsFound   = "엑셀 파일에서 일정을 찾을 수 없습니다."
	MsgNothingSelected = "선택된 일정이 없습니다."
	MsgCommitFailed    = "일정 추가 중 오류가 발생했습니다."
)

// ErrNothingSelected is returned by CommitImport for an empty selection.
var ErrNothingSelected = errors.New("no drafts selected")

// PreviewItem is one extracted draft as offered for review.
type PreviewItem struct {
	models.DraftEvent
	Duplicate bool `json:"duplicate"`
	Selected  bool `json:"selected"`
}

// ImportPreview is the review state of an uploaded workbook.
type ImportPreview struct {
	Items       []PreviewItem         `json:"items"`
	Diagnostics []importer.Diagnostic `json:"diagnostics,omitempty"`
	Hints       importer.HeaderHints  `json:"hints"`
	Collapsed   int                   `json:"collapsed"`  // same title and day inside the file
	Duplicates  int                   `json:"duplicates"` // already on the calendar
	Message     string                `json:"message,omitempty"`
}

// ImportResult reports a commit.
type ImportResult struct {
	Imported   []models.Event `json:"imported"`
	Duplicates int            `json:"duplicates"`
	Failed     int            `json:"failed"`
	Message    string         `json:"message"`
}

// PreviewImport extracts drafts from an uploaded workbook and flags the ones
// already on the calendar. Flagged drafts start unselected. A workbook
// without events is not an error; the preview carries a message instead.
func (s *Service) PreviewImport(ctx context.Context, filename string, r io.Reader) (*ImportPreview, error) {
	res, err := s.extractor.ExtractWorkbook(ctx, filename, r)
	switch {
	case errors.Is(err, importer.ErrNoEventsFound):
		s.metrics.ImportFailures.WithLabelValues("no_events").Inc()
		return &ImportPreview{
			Items:       []PreviewItem{},
			Diagnostics: res.Diagnostics,
			Hints:       res.Hints,
			Message:     MsgNoEventsFound,
		}, nil
	case errors.Is(err, importer.ErrNotExcel):
		s.metrics.ImportFailures.WithLabelValues("not_excel").Inc()
		return nil, err
	case err != nil:
		s.metrics.ImportFailures.WithLabelValues("unreadable").Inc()
		s.logger.WithError(err).WithField("file", filename).Warn("Failed to extract workbook")
		return nil, err
	}

	preview := &ImportPreview{
		Items:       make([]PreviewItem, 0, len(res.Drafts)),
		Diagnostics: res.Diagnostics,
		Hints:       res.Hints,
		Collapsed:   res.Duplicates,
	}
	for _, d := range res.Drafts {
		dup := s.Store.CheckDuplicate(d)
		if dup {
			preview.Duplicates++
		}
		preview.Items = append(preview.Items, PreviewItem{DraftEvent: d, Duplicate: dup, Selected: !dup})
	}
	if preview.Duplicates > 0 {
		preview.Message = fmt.Sprintf("⚠️ %d개의 중복된 일정이 발견되어 선택 해제되었습니다.", preview.Duplicates)
	}

	s.metrics.DraftsExtracted.Add(float64(len(res.Drafts)))
	s.logger.WithFields(logrus.Fields{
		"file":       filename,
		"drafts":     len(res.Drafts),
		"duplicates": preview.Duplicates,
	}).Info("Import preview ready")
	return preview, nil
}

// CommitImport adds the selected drafts one at a time. Drafts without a
// reminder get the import default. Duplicates are counted, not failed;
// other failures are collected and returned together after every draft
// was tried.
func (s *Service) CommitImport(ctx context.Context, drafts []models.DraftEvent) (*ImportResult, error) {
	if len(drafts) == 0 {
		return nil, ErrNothingSelected
	}

	reminder := s.extractor.Options().Reminder
	result := &ImportResult{Imported: make([]models.Event, 0, len(drafts))}
	var errs *multierror.Error

	for _, d := range drafts {
		if err := ctx.Err(); err != nil {
			errs = multierror.Append(errs, err)
			break
		}
		if d.Reminder == 0 {
			d.Reminder = reminder
		}

		event, err := s.Store.AddEvent(ctx, d)
		switch {
		case errors.Is(err, store.ErrDuplicateRejected):
			result.Duplicates++
			s.metrics.ImportDuplicates.Inc()
		case err != nil:
			result.Failed++
			errs = multierror.Append(errs, fmt.Errorf("%s %q: %w", d.Date, d.Title, err))
		default:
			result.Imported = append(result.Imported, *event)
			s.metrics.EventsImported.Inc()
		}
	}

	result.Message = fmt.Sprintf("%d개의 일정이 성공적으로 추가되었습니다! 📅", len(result.Imported))
	if result.Duplicates > 0 {
		result.Message += fmt.Sprintf(" (중복 %d개 제외)", result.Duplicates)
	}

	s.logger.WithFields(logrus.Fields{
		"imported":   len(result.Imported),
		"duplicates": result.Duplicates,
		"failed":     result.Failed,
	}).Info("Import committed")

	if err := errs.ErrorOrNil(); err != nil {
		return result, err
	}
	return result, nil
}

// ImportMessage maps an import error to the message shown to users.
func ImportMessage(err error) string {
	switch {
	case errors.Is(err, importer.ErrNotExcel):
		return MsgNotExcel
	case errors.Is(err, importer.ErrUnreadableWorkbook):
		return MsgUnreadable
	case errors.Is(err, importer.ErrNoEventsFound):
		return MsgNoEventsFound
	case errors.Is(err, ErrNothingSelected):
		return MsgNothingSelected
	default:
		return MsgCommitFailed
	}
}
