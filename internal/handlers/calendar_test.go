package handlers

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kerhoff/ChurchCal/internal/datecodec"
	"github.com/Kerhoff/ChurchCal/internal/importer"
	"github.com/Kerhoff/ChurchCal/internal/models"
	"github.com/Kerhoff/ChurchCal/internal/repository/sqlite"
	"github.com/Kerhoff/ChurchCal/internal/service"
	"github.com/Kerhoff/ChurchCal/internal/store"
)

func newService(t *testing.T) *service.Service {
	t.Helper()
	ctx := context.Background()

	db, err := sqlite.Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	repo := sqlite.NewEventRepository(db)
	st := store.New(repo, logger)
	require.NoError(t, st.Load(ctx))

	svc := service.New(logger, time.FixedZone("KST", 9*60*60), service.NewMetrics(), st, repo,
		importer.New(importer.DefaultOptions(), nil, logger))

	_, err = st.AddEvent(ctx, models.DraftEvent{
		Title:     "수요예배",
		Date:      datecodec.MustNew(2025, time.October, 1),
		StartTime: "19:30",
		EndTime:   "21:00",
		Category:  models.CategoryWorship,
	})
	require.NoError(t, err)
	return svc
}

func TestDateReply(t *testing.T) {
	h := NewDateHandler(newService(t), logrus.New())

	assert.Equal(t, "📅 *10월 1일 (수) 일정*\n\n• 19:30~21:00 수요예배 [예배/인맞음]", h.Reply([]string{"2025-10-01"}))
	assert.Contains(t, h.Reply([]string{"2025-10-02"}), "등록된 일정이 없습니다.")
	assert.Contains(t, h.Reply(nil), "사용법")
	assert.Contains(t, h.Reply([]string{"10월1일"}), "YYYY-MM-DD")
}

func TestMonthReply(t *testing.T) {
	h := NewMonthHandler(newService(t), logrus.New())

	text := h.Reply([]string{"2025-10"})
	assert.Contains(t, text, "*2025년 10월 일정*")
	assert.Contains(t, text, "*10월 1일 (수)*")
	assert.Contains(t, text, "_총 1개 일정_")

	assert.Contains(t, h.Reply([]string{"2025-11"}), "등록된 일정이 없습니다.")
	assert.Contains(t, h.Reply([]string{"2025-13"}), "1부터 12")
	assert.Contains(t, h.Reply([]string{"october"}), "사용법")
}

func TestTodayReply(t *testing.T) {
	svc := newService(t)
	h := NewTodayHandler(svc, logrus.New())
	assert.Contains(t, h.Reply(nil), service.DayLabel(svc.Today()))
}
