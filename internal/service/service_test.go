package service

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kerhoff/ChurchCal/internal/datecodec"
	"github.com/Kerhoff/ChurchCal/internal/importer"
	"github.com/Kerhoff/ChurchCal/internal/models"
	"github.com/Kerhoff/ChurchCal/internal/repository/sqlite"
	"github.com/Kerhoff/ChurchCal/internal/store"
)

type gridReader struct {
	grid *importer.Grid
}

func (r gridReader) ReadFirstSheet(io.Reader) (*importer.Grid, error) {
	if r.grid == nil {
		return importer.NewGrid(), nil
	}
	return r.grid, nil
}

var kst = time.FixedZone("KST", 9*60*60)

func newService(t *testing.T, grid *importer.Grid) *Service {
	t.Helper()
	db, err := sqlite.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	repo := sqlite.NewEventRepository(db)
	st := store.New(repo, logger)
	require.NoError(t, st.Load(context.Background()))

	extractor := importer.New(importer.DefaultOptions(), gridReader{grid: grid}, logger)
	return New(logger, kst, NewMetrics(), st, repo, extractor)
}

func add(t *testing.T, s *Service, d models.DraftEvent) *models.Event {
	t.Helper()
	e, err := s.Store.AddEvent(context.Background(), d)
	require.NoError(t, err)
	return e
}

func timed(title string, date datecodec.CalendarDate, start, end string, c models.Category) models.DraftEvent {
	return models.DraftEvent{Title: title, Date: date, StartTime: start, EndTime: end, Category: c}
}

func allDay(title string, date datecodec.CalendarDate, c models.Category) models.DraftEvent {
	return models.DraftEvent{Title: title, Date: date, Category: c, IsAllDay: true}
}

func day(m time.Month, d int) datecodec.CalendarDate {
	return datecodec.MustNew(2025, m, d)
}

func TestQueries(t *testing.T) {
	ctx := context.Background()
	s := newService(t, nil)

	add(t, s, timed("저녁 예배", day(10, 1), "19:30", "21:00", models.CategoryWorship))
	add(t, s, timed("새벽 예배", day(10, 1), "05:00", "06:00", models.CategoryWorship))
	add(t, s, allDay("전도 축제", day(10, 18), models.CategoryEvangelism))
	add(t, s, allDay("추수감사절", day(11, 16), models.CategoryCelebration))

	all, err := s.AllEvents(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	byDate, err := s.EventsByDate(ctx, day(10, 1))
	require.NoError(t, err)
	require.Len(t, byDate, 2)
	assert.Equal(t, "새벽 예배", byDate[0].Title)

	byMonth, err := s.EventsByMonth(ctx, 2025, time.October)
	require.NoError(t, err)
	assert.Len(t, byMonth, 3)

	_, err = s.EventsByMonth(ctx, 2025, time.Month(13))
	assert.Error(t, err)

	byCategory, err := s.EventsByCategory(ctx, models.CategoryEvangelism)
	require.NoError(t, err)
	require.Len(t, byCategory, 1)
	assert.Equal(t, "전도 축제", byCategory[0].Title)

	_, err = s.EventsByCategory(ctx, models.Category("party"))
	assert.Error(t, err)

	byRange, err := s.EventsByDateRange(ctx, day(10, 15), day(11, 30))
	require.NoError(t, err)
	assert.Len(t, byRange, 2)

	_, err = s.EventsByDateRange(ctx, day(11, 30), day(10, 15))
	assert.Error(t, err)
}

func TestOccurrencesExpandRecurringEvents(t *testing.T) {
	s := newService(t, nil)

	weekly := timed("주일예배", day(10, 5), "11:00", "12:30", models.CategoryWorship)
	weekly.Recurring = models.RecurrenceWeekly
	add(t, s, weekly)

	daily := allDay("특별 새벽기도", day(10, 30), models.CategoryWorship)
	daily.Recurring = models.RecurrenceDaily
	add(t, s, daily)

	add(t, s, allDay("지난달 행사", day(9, 20), models.CategoryChurch))
	add(t, s, allDay("구역 모임", day(10, 9), models.CategoryRegional))

	occ := s.Occurrences(day(10, 1), day(10, 31))

	var sundays []string
	for _, o := range occ {
		if o.Event.Title == "주일예배" {
			sundays = append(sundays, o.Date.String())
			assert.Equal(t, 11, o.Start.Hour())
			assert.Equal(t, 90*time.Minute, o.End.Sub(o.Start))
		}
	}
	assert.Equal(t, []string{"2025-10-05", "2025-10-12", "2025-10-19", "2025-10-26"}, sundays)

	dawn := 0
	for _, o := range occ {
		if o.Event.Title == "특별 새벽기도" {
			dawn++
		}
		assert.NotEqual(t, "지난달 행사", o.Event.Title)
	}
	assert.Equal(t, 2, dawn)
	assert.Len(t, occ, 7)

	for i := 1; i < len(occ); i++ {
		assert.False(t, occ[i].Start.Before(occ[i-1].Start))
	}

	s.Store.ToggleCategory(models.CategoryRegional)
	assert.Len(t, s.Occurrences(day(10, 1), day(10, 31)), 6)
	assert.Len(t, s.AllOccurrences(day(10, 1), day(10, 31)), 7)
}

func TestPreviewImportFlagsDuplicates(t *testing.T) {
	g := importer.NewGrid()
	g.SetDate(2, 1, 45931, "")
	g.SetText(3, 1, "수요예배 19:30", "FF0070C0")
	g.SetText(4, 1, "성경공부", "")

	s := newService(t, g)
	add(t, s, timed("수요예배 19:30", day(10, 1), "19:30", "21:30", models.CategoryWorship))

	preview, err := s.PreviewImport(context.Background(), "10월.xlsx", bytes.NewReader(nil))
	require.NoError(t, err)
	require.Len(t, preview.Items, 2)

	assert.True(t, preview.Items[0].Duplicate)
	assert.False(t, preview.Items[0].Selected)
	assert.False(t, preview.Items[1].Duplicate)
	assert.True(t, preview.Items[1].Selected)
	assert.Equal(t, 1, preview.Duplicates)
	assert.Equal(t, "⚠️ 1개의 중복된 일정이 발견되어 선택 해제되었습니다.", preview.Message)
}

func TestPreviewImportWithoutEvents(t *testing.T) {
	g := importer.NewGrid()
	g.SetText(1, 1, "메모:", "")
	s := newService(t, g)

	preview, err := s.PreviewImport(context.Background(), "10월.xlsx", bytes.NewReader(nil))
	require.NoError(t, err)
	assert.Empty(t, preview.Items)
	assert.Equal(t, MsgNoEventsFound, preview.Message)

	_, err = s.PreviewImport(context.Background(), "10월.pdf", bytes.NewReader(nil))
	assert.ErrorIs(t, err, importer.ErrNotExcel)
	assert.Equal(t, MsgNotExcel, ImportMessage(err))
}

func TestCommitImport(t *testing.T) {
	ctx := context.Background()
	s := newService(t, nil)
	add(t, s, allDay("전도 축제", day(10, 18), models.CategoryEvangelism))

	result, err := s.CommitImport(ctx, []models.DraftEvent{
		timed("교사 회의", day(10, 2), "14:00", "16:00", models.CategoryEducation),
		allDay("전도 축제", day(10, 18), models.CategoryEvangelism),
		allDay("알 수 없는 행사", day(10, 20), models.Category("party")),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "알 수 없는 행사")

	require.NotNil(t, result)
	require.Len(t, result.Imported, 1)
	assert.Equal(t, 30, result.Imported[0].Reminder)
	assert.Equal(t, 1, result.Duplicates)
	assert.Equal(t, 1, result.Failed)
	assert.True(t, strings.HasPrefix(result.Message, "1개의 일정이 성공적으로 추가되었습니다!"))

	assert.Len(t, s.Store.Events(), 2)

	_, err = s.CommitImport(ctx, nil)
	assert.ErrorIs(t, err, ErrNothingSelected)
	assert.Equal(t, MsgNothingSelected, ImportMessage(err))
}

func TestProcessRemindersSendsOnce(t *testing.T) {
	s := newService(t, nil)

	worship := timed("주일예배", day(10, 5), "11:00", "12:30", models.CategoryWorship)
	worship.Reminder = 30
	worship.Location = "본당"
	add(t, s, worship)

	later := timed("오후 찬양", day(10, 5), "15:00", "16:00", models.CategoryWorship)
	later.Reminder = 30
	add(t, s, later)

	picnic := allDay("야유회", day(10, 5), models.CategoryChurch)
	picnic.Reminder = 30
	add(t, s, picnic)

	var sent []string
	callback := func(text string) { sent = append(sent, text) }

	now := time.Date(2025, time.October, 5, 10, 40, 0, 0, kst)
	s.processReminders(now, callback)
	s.processReminders(now.Add(30*time.Second), callback)

	require.Len(t, sent, 1)
	assert.Contains(t, sent[0], "11:00 주일예배")
	assert.Contains(t, sent[0], "본당")

	s.processReminders(time.Date(2025, time.October, 5, 14, 31, 0, 0, kst), callback)
	require.Len(t, sent, 2)
	assert.Contains(t, sent[1], "오후 찬양")
}

func TestFormatAgenda(t *testing.T) {
	assert.Equal(t, "10월 1일 (수)", DayLabel(day(10, 1)))

	e := models.Event{ID: "1", DraftEvent: timed("수요예배", day(10, 1), "19:30", "21:00", models.CategoryWorship)}
	o := Occurrence{
		Event: e,
		Date:  day(10, 1),
		Start: time.Date(2025, 10, 1, 19, 30, 0, 0, kst),
		End:   time.Date(2025, 10, 1, 21, 0, 0, 0, kst),
	}
	text := FormatAgenda(day(10, 1), []Occurrence{o})
	assert.Equal(t, "📅 *10월 1일 (수) 일정*\n\n• 19:30~21:00 수요예배 [예배/인맞음]", text)

	assert.Contains(t, FormatAgenda(day(10, 2), nil), "등록된 일정이 없습니다.")
}

func TestFormatMonth(t *testing.T) {
	assert.Equal(t, "📅 *2025년 10월 일정*\n\n등록된 일정이 없습니다.", FormatMonth(2025, time.October, nil))

	s := newService(t, nil)
	add(t, s, timed("새벽 예배", day(10, 1), "05:00", "", models.CategoryWorship))
	add(t, s, allDay("전도 축제", day(10, 1), models.CategoryEvangelism))
	add(t, s, allDay("체육대회", day(10, 3), models.CategoryChurch))

	text := FormatMonth(2025, time.October, s.Occurrences(day(10, 1), day(10, 31)))
	assert.Equal(t, "📅 *2025년 10월 일정*\n"+
		"\n*10월 1일 (수)*\n• 종일 전도 축제 [전도부]\n• 05:00 새벽 예배 [예배/인맞음]\n"+
		"\n*10월 3일 (금)*\n• 종일 체육대회 [교회]\n"+
		"\n_총 3개 일정_", text)
}
