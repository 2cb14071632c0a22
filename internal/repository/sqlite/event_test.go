package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kerhoff/ChurchCal/internal/datecodec"
	"github.com/Kerhoff/ChurchCal/internal/models"
	"github.com/Kerhoff/ChurchCal/internal/repository"
)

func newRepo(t *testing.T) repository.EventRepository {
	t.Helper()
	db, err := Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewEventRepository(db)
}

func event(title string, date datecodec.CalendarDate, start string, c models.Category) *models.Event {
	e := &models.Event{DraftEvent: models.DraftEvent{
		Title:    title,
		Date:     date,
		Category: c,
		IsAllDay: start == "",
	}}
	if start != "" {
		e.StartTime = start
		e.EndTime = "23:00"
	}
	return e
}

func TestCreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	in := event("주일예배", datecodec.MustNew(2025, time.October, 5), "11:00", models.CategoryWorship)
	in.Location = "나주교회"
	in.Reminder = 30
	in.Recurring = models.RecurrenceWeekly

	created, err := repo.Create(ctx, in)
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "주일예배", got.Title)
	assert.Equal(t, datecodec.MustNew(2025, time.October, 5), got.Date)
	assert.Equal(t, "11:00", got.StartTime)
	assert.Equal(t, models.CategoryWorship, got.Category)
	assert.Equal(t, 30, got.Reminder)
	assert.Equal(t, models.RecurrenceWeekly, got.Recurring)
	assert.False(t, got.IsAllDay)
	assert.False(t, got.CreatedAt.IsZero())

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestListFiltersAndOrder(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	oct1 := datecodec.MustNew(2025, time.October, 1)
	oct2 := datecodec.MustNew(2025, time.October, 2)
	nov1 := datecodec.MustNew(2025, time.November, 1)

	for _, e := range []*models.Event{
		event("저녁 기도회", oct1, "19:00", models.CategoryWorship),
		event("새벽 기도회", oct1, "05:00", models.CategoryWorship),
		event("전도 축제", oct1, "", models.CategoryEvangelism),
		event("교사 회의", oct2, "14:00", models.CategoryEducation),
		event("추수감사 준비", nov1, "", models.CategoryChurch),
	} {
		_, err := repo.Create(ctx, e)
		require.NoError(t, err)
	}

	all, err := repo.List(ctx, repository.EventFilters{})
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.Equal(t, "전도 축제", all[0].Title)
	assert.Equal(t, "새벽 기도회", all[1].Title)
	assert.Equal(t, "저녁 기도회", all[2].Title)
	assert.Equal(t, "추수감사 준비", all[4].Title)

	byDate, err := repo.List(ctx, repository.EventFilters{Date: &oct2})
	require.NoError(t, err)
	require.Len(t, byDate, 1)
	assert.Equal(t, "교사 회의", byDate[0].Title)

	october, err := repo.List(ctx, repository.MonthFilters(2025, time.October))
	require.NoError(t, err)
	assert.Len(t, october, 4)

	worship := models.CategoryWorship
	byCategory, err := repo.List(ctx, repository.EventFilters{Category: &worship, Limit: 1})
	require.NoError(t, err)
	require.Len(t, byCategory, 1)
	assert.Equal(t, "새벽 기도회", byCategory[0].Title)
}

func TestUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	e, err := repo.Create(ctx, event("구역 모임", datecodec.MustNew(2025, time.October, 9), "19:30", models.CategoryRegional))
	require.NoError(t, err)

	e.Title = "구역장 모임"
	e.IsAllDay = true
	e.StartTime, e.EndTime = "", ""
	_, err = repo.Update(ctx, e)
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "구역장 모임", got.Title)
	assert.True(t, got.IsAllDay)
	assert.Empty(t, got.StartTime)

	require.NoError(t, repo.Delete(ctx, e.ID))
	assert.ErrorIs(t, repo.Delete(ctx, e.ID), repository.ErrNotFound)

	_, err = repo.Update(ctx, e)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDeleteRange(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	for _, d := range []datecodec.CalendarDate{
		datecodec.MustNew(2025, time.September, 30),
		datecodec.MustNew(2025, time.October, 1),
		datecodec.MustNew(2025, time.October, 31),
		datecodec.MustNew(2025, time.November, 1),
	} {
		_, err := repo.Create(ctx, event("행사", d, "", models.CategoryChurch))
		require.NoError(t, err)
	}

	first, last := datecodec.MonthBounds(2025, time.October)
	n, err := repo.DeleteRange(ctx, first, last)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	rest, err := repo.List(ctx, repository.EventFilters{})
	require.NoError(t, err)
	assert.Len(t, rest, 2)
}
