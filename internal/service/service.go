package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/ChurchCal/internal/datecodec"
	"github.com/Kerhoff/ChurchCal/internal/importer"
	"github.com/Kerhoff/ChurchCal/internal/models"
	"github.com/Kerhoff/ChurchCal/internal/repository"
	"github.com/Kerhoff/ChurchCal/internal/store"
)

// Service is the central business logic layer. It answers calendar queries
// straight from the repository, and routes writes and imports through the
// store so the cached view stays consistent.
type Service struct {
	logger    *logrus.Logger
	location  *time.Location
	metrics   *Metrics
	extractor *importer.Extractor
	reminders reminderLog

	Store  *store.Store
	Events repository.EventRepository
}

// New creates a new Service with all required dependencies.
func New(logger *logrus.Logger, location *time.Location, metrics *Metrics,
	st *store.Store,
	events repository.EventRepository,
	extractor *importer.Extractor,
) *Service {
	if location == nil {
		location = time.Local
	}
	return &Service{
		logger:    logger,
		location:  location,
		metrics:   metrics,
		extractor: extractor,
		Store:     st,
		Events:    events,
	}
}

// Location returns the time zone events are interpreted in.
func (s *Service) Location() *time.Location {
	return s.location
}

// Metrics returns the service's Prometheus collectors.
func (s *Service) Metrics() *Metrics {
	return s.metrics
}

// Today returns the current calendar day in the service's location.
func (s *Service) Today() datecodec.CalendarDate {
	return datecodec.Today(s.location)
}

// AllEvents returns every persisted event ordered by date.
func (s *Service) AllEvents(ctx context.Context) ([]*models.Event, error) {
	events, err := s.Events.List(ctx, repository.EventFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch events: %w", err)
	}
	return events, nil
}

// EventsByDate returns the events of one day ordered by start time.
func (s *Service) EventsByDate(ctx context.Context, date datecodec.CalendarDate) ([]*models.Event, error) {
	events, err := s.Events.List(ctx, repository.EventFilters{Date: &date})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch events for %s: %w", date, err)
	}
	return events, nil
}

// EventsByMonth returns the events between the first and last day of the
// month.
func (s *Service) EventsByMonth(ctx context.Context, year int, month time.Month) ([]*models.Event, error) {
	if month < time.January || month > time.December {
		return nil, fmt.Errorf("invalid month %d", month)
	}
	events, err := s.Events.List(ctx, repository.MonthFilters(year, month))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch events for %d-%02d: %w", year, int(month), err)
	}
	return events, nil
}

// EventsByCategory returns the events of one category.
func (s *Service) EventsByCategory(ctx context.Context, category models.Category) ([]*models.Event, error) {
	if !category.Valid() {
		return nil, fmt.Errorf("unknown category %q", category)
	}
	events, err := s.Events.List(ctx, repository.EventFilters{Category: &category})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s events: %w", category, err)
	}
	return events, nil
}

// EventsByDateRange returns the events from from through to, inclusive.
func (s *Service) EventsByDateRange(ctx context.Context, from, to datecodec.CalendarDate) ([]*models.Event, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("range end %s is before start %s", to, from)
	}
	events, err := s.Events.List(ctx, repository.EventFilters{From: &from, To: &to})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch events from %s to %s: %w", from, to, err)
	}
	return events, nil
}
