package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Kerhoff/ChurchCal/internal/datecodec"
	"github.com/Kerhoff/ChurchCal/internal/models"
)

// ErrNotFound is returned when no event has the requested ID
var ErrNotFound = errors.New("event not found")

// EventRepository defines the interface for event data operations
type EventRepository interface {
	Create(ctx context.Context, event *models.Event) (*models.Event, error)
	GetByID(ctx context.Context, id string) (*models.Event, error)
	List(ctx context.Context, filters EventFilters) ([]*models.Event, error)
	Update(ctx context.Context, event *models.Event) (*models.Event, error)
	Delete(ctx context.Context, id string) error
	DeleteRange(ctx context.Context, from, to datecodec.CalendarDate) (int64, error)
}

// EventFilters narrows List. Results are always ordered by date, then start
// time with all-day events first, then creation time.
type EventFilters struct {
	Date     *datecodec.CalendarDate
	From     *datecodec.CalendarDate
	To       *datecodec.CalendarDate
	Category *models.Category
	Limit    int
}

// MonthFilters selects the events of one calendar month
func MonthFilters(year int, month time.Month) EventFilters {
	first, last := datecodec.MonthBounds(year, month)
	return EventFilters{From: &first, To: &last}
}
