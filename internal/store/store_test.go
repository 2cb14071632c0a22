package store

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kerhoff/ChurchCal/internal/datecodec"
	"github.com/Kerhoff/ChurchCal/internal/models"
	"github.com/Kerhoff/ChurchCal/internal/repository"
	"github.com/Kerhoff/ChurchCal/internal/repository/sqlite"
)

func newStore(t *testing.T) (*Store, repository.EventRepository) {
	t.Helper()
	db, err := sqlite.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	repo := sqlite.NewEventRepository(db)
	s := New(repo, logger)
	require.NoError(t, s.Load(context.Background()))
	return s, repo
}

func draft(title string, date datecodec.CalendarDate, start string, c models.Category) models.DraftEvent {
	d := models.DraftEvent{Title: title, Date: date, Category: c, IsAllDay: start == ""}
	if start != "" {
		d.StartTime = start
	}
	return d
}

var (
	oct1 = datecodec.MustNew(2025, time.October, 1)
	oct2 = datecodec.MustNew(2025, time.October, 2)
	nov3 = datecodec.MustNew(2025, time.November, 3)
)

func TestAddEventRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)

	first, err := s.AddEvent(ctx, draft("수요예배", oct1, "19:30", models.CategoryWorship))
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)

	_, err = s.AddEvent(ctx, draft("  수요예배 ", oct1, "19:30", models.CategoryWorship))
	assert.ErrorIs(t, err, ErrDuplicateRejected)
	assert.Equal(t, "동일한 날짜에 같은 제목의 일정이 이미 존재합니다.", err.Error())

	// A different start time or day is a different slot.
	_, err = s.AddEvent(ctx, draft("수요예배", oct1, "10:00", models.CategoryWorship))
	require.NoError(t, err)
	_, err = s.AddEvent(ctx, draft("수요예배", oct2, "19:30", models.CategoryWorship))
	require.NoError(t, err)

	assert.Len(t, s.Events(), 3)
}

func TestCheckDuplicateHasNoSideEffects(t *testing.T) {
	ctx := context.Background()
	s, repo := newStore(t)

	_, err := s.AddEvent(ctx, draft("전도 축제", oct2, "", models.CategoryEvangelism))
	require.NoError(t, err)

	assert.True(t, s.CheckDuplicate(draft("전도 축제", oct2, "", models.CategoryEvangelism)))
	assert.False(t, s.CheckDuplicate(draft("전도 축제", oct1, "", models.CategoryEvangelism)))

	persisted, err := repo.List(ctx, repository.EventFilters{})
	require.NoError(t, err)
	assert.Len(t, persisted, 1)
}

func TestAddEventValidates(t *testing.T) {
	s, _ := newStore(t)

	_, err := s.AddEvent(context.Background(), draft("  ", oct1, "", models.CategoryChurch))
	assert.ErrorIs(t, err, ErrInvalidEvent)
	_, err = s.AddEvent(context.Background(), draft("모임", oct1, "", models.Category("party")))
	assert.ErrorIs(t, err, ErrInvalidEvent)
	assert.Empty(t, s.Events())
}

func TestLoadReadsPersistedEvents(t *testing.T) {
	ctx := context.Background()
	s, repo := newStore(t)

	_, err := repo.Create(ctx, &models.Event{DraftEvent: draft("성가대 연습", oct2, "", models.CategoryChurch)})
	require.NoError(t, err)
	assert.Empty(t, s.Events())

	require.NoError(t, s.Load(ctx))
	require.Len(t, s.Events(), 1)
	assert.True(t, s.CheckDuplicate(draft("성가대 연습", oct2, "", models.CategoryChurch)))
}

func TestUpdateEvent(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)

	e, err := s.AddEvent(ctx, draft("교사 회의", oct1, "14:00", models.CategoryEducation))
	require.NoError(t, err)
	_, err = s.AddEvent(ctx, draft("교사 회의", oct2, "14:00", models.CategoryEducation))
	require.NoError(t, err)

	title := "교사 세미나"
	allDay := true
	updated, err := s.UpdateEvent(ctx, e.ID, models.EventPatch{Title: &title, IsAllDay: &allDay})
	require.NoError(t, err)
	assert.Equal(t, "교사 세미나", updated.Title)
	assert.Empty(t, updated.StartTime)

	cached, ok := s.Get(e.ID)
	require.True(t, ok)
	assert.Equal(t, "교사 세미나", cached.Title)

	// Moving onto an occupied slot is rejected.
	date := oct2
	start := "14:00"
	notAllDay := false
	original := "교사 회의"
	_, err = s.UpdateEvent(ctx, e.ID, models.EventPatch{Title: &original, Date: &date, StartTime: &start, IsAllDay: &notAllDay})
	assert.ErrorIs(t, err, ErrDuplicateRejected)

	_, err = s.UpdateEvent(ctx, "missing", models.EventPatch{Title: &title})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDeleteEvent(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)

	e, err := s.AddEvent(ctx, draft("구역 모임", oct1, "", models.CategoryRegional))
	require.NoError(t, err)

	require.NoError(t, s.DeleteEvent(ctx, e.ID))
	assert.Empty(t, s.Events())
	assert.ErrorIs(t, s.DeleteEvent(ctx, e.ID), repository.ErrNotFound)
}

func TestDeleteEventsForMonth(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)

	for _, d := range []models.DraftEvent{
		draft("A", oct1, "", models.CategoryChurch),
		draft("B", oct2, "", models.CategoryChurch),
		draft("C", nov3, "", models.CategoryChurch),
	} {
		_, err := s.AddEvent(ctx, d)
		require.NoError(t, err)
	}

	n, err := s.DeleteEventsForMonth(ctx, 2025, time.October)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	left := s.Events()
	require.Len(t, left, 1)
	assert.Equal(t, "C", left[0].Title)

	n, err = s.DeleteEventsForMonth(ctx, 2025, time.October)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCategoryFilter(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)

	_, err := s.AddEvent(ctx, draft("주일예배", oct1, "11:00", models.CategoryWorship))
	require.NoError(t, err)
	_, err = s.AddEvent(ctx, draft("노방 전도", oct1, "", models.CategoryEvangelism))
	require.NoError(t, err)
	_, err = s.AddEvent(ctx, draft("청년회 모임", nov3, "", models.CategoryYouth))
	require.NoError(t, err)

	assert.Len(t, s.ActiveCategories(), len(models.Categories()))
	assert.Len(t, s.EventsForDate(oct1), 2)

	assert.False(t, s.ToggleCategory(models.CategoryEvangelism))
	onOct1 := s.EventsForDate(oct1)
	require.Len(t, onOct1, 1)
	assert.Equal(t, "주일예배", onOct1[0].Title)
	assert.Len(t, s.Events(), 3)

	assert.True(t, s.ToggleCategory(models.CategoryEvangelism))
	assert.Len(t, s.EventsForDate(oct1), 2)

	s.SetActiveCategories([]models.Category{models.CategoryYouth})
	assert.Equal(t, []models.Category{models.CategoryYouth}, s.ActiveCategories())
	assert.Empty(t, s.EventsForMonth(2025, time.October))
	assert.Len(t, s.EventsForMonth(2025, time.November), 1)
	assert.Len(t, s.FilteredEvents(), 1)
}

func TestEventsAreOrdered(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)

	for _, d := range []models.DraftEvent{
		draft("저녁", oct2, "19:00", models.CategoryChurch),
		draft("다음달", nov3, "", models.CategoryChurch),
		draft("아침", oct2, "07:00", models.CategoryChurch),
		draft("종일", oct2, "", models.CategoryChurch),
		draft("첫날", oct1, "12:00", models.CategoryChurch),
	} {
		_, err := s.AddEvent(ctx, d)
		require.NoError(t, err)
	}

	var titles []string
	for _, e := range s.Events() {
		titles = append(titles, e.Title)
	}
	assert.Equal(t, []string{"첫날", "종일", "아침", "저녁", "다음달"}, titles)
}
