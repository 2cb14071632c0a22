// Package store keeps the working set of events in memory on top of a
// repository, together with the category filter shown to users.
package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/ChurchCal/internal/datecodec"
	"github.com/Kerhoff/ChurchCal/internal/models"
	"github.com/Kerhoff/ChurchCal/internal/repository"
)

var (
	// ErrDuplicateRejected is returned by AddEvent when an event with the
	// same day, trimmed title and start time already exists.
	ErrDuplicateRejected = errors.New("동일한 날짜에 같은 제목의 일정이 이미 존재합니다.")
	// ErrInvalidEvent wraps validation failures of drafts and patches.
	ErrInvalidEvent = errors.New("invalid event")
)

// Store is the single owner of the cached events and the active category
// set. Writes go to the repository first and reach the cache only on
// success. Store is safe for concurrent use.
type Store struct {
	repo   repository.EventRepository
	logger *logrus.Logger

	mu     sync.RWMutex
	events []*models.Event
	active map[models.Category]bool
}

// New creates a Store with every category active. Call Load before use.
func New(repo repository.EventRepository, logger *logrus.Logger) *Store {
	s := &Store{
		repo:   repo,
		logger: logger,
		active: make(map[models.Category]bool),
	}
	for _, info := range models.Categories() {
		s.active[info.Key] = true
	}
	return s
}

// Load replaces the cache with every persisted event.
func (s *Store) Load(ctx context.Context) error {
	events, err := s.repo.List(ctx, repository.EventFilters{})
	if err != nil {
		return fmt.Errorf("failed to load events: %w", err)
	}

	s.mu.Lock()
	s.events = events
	sortEvents(s.events)
	s.mu.Unlock()

	s.logger.WithField("events", len(events)).Info("Event cache loaded")
	return nil
}

// AddEvent validates and persists draft unless it duplicates a cached event.
func (s *Store) AddEvent(ctx context.Context, draft models.DraftEvent) (*models.Event, error) {
	draft.Title = strings.TrimSpace(draft.Title)
	if err := draft.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.duplicateLocked(&draft, "") {
		return nil, ErrDuplicateRejected
	}

	event, err := s.repo.Create(ctx, &models.Event{DraftEvent: draft})
	if err != nil {
		return nil, err
	}
	s.events = append(s.events, event)
	sortEvents(s.events)

	s.logger.WithFields(logrus.Fields{
		"id":    event.ID,
		"date":  event.Date.String(),
		"title": event.Title,
	}).Debug("Event added")

	out := *event
	return &out, nil
}

// CheckDuplicate reports whether draft would be rejected by AddEvent.
func (s *Store) CheckDuplicate(draft models.DraftEvent) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.duplicateLocked(&draft, "")
}

func (s *Store) duplicateLocked(draft *models.DraftEvent, skipID string) bool {
	for _, e := range s.events {
		if e.ID != skipID && e.SameSlot(draft) {
			return true
		}
	}
	return false
}

// UpdateEvent applies patch to the event with id.
func (s *Store) UpdateEvent(ctx context.Context, id string, patch models.EventPatch) (*models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	var current models.Event
	if idx >= 0 {
		current = *s.events[idx]
	} else {
		persisted, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		current = *persisted
	}

	patch.Apply(&current.DraftEvent)
	if err := current.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	if s.duplicateLocked(&current.DraftEvent, id) {
		return nil, ErrDuplicateRejected
	}

	updated, err := s.repo.Update(ctx, &current)
	if err != nil {
		return nil, err
	}
	if idx >= 0 {
		s.events[idx] = updated
	} else {
		s.events = append(s.events, updated)
	}
	sortEvents(s.events)

	out := *updated
	return &out, nil
}

// DeleteEvent removes the event with id from the repository and the cache.
func (s *Store) DeleteEvent(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.repo.Delete(ctx, id)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	if idx := s.indexLocked(id); idx >= 0 {
		s.events = append(s.events[:idx], s.events[idx+1:]...)
	}
	return err
}

// DeleteEventsForMonth removes every event of the month and returns how
// many were deleted.
func (s *Store) DeleteEventsForMonth(ctx context.Context, year int, month time.Month) (int, error) {
	first, last := datecodec.MonthBounds(year, month)

	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.repo.DeleteRange(ctx, first, last)
	if err != nil {
		return 0, err
	}

	kept := s.events[:0]
	for _, e := range s.events {
		if e.Date.Before(first) || e.Date.After(last) {
			kept = append(kept, e)
		}
	}
	s.events = kept

	s.logger.WithFields(logrus.Fields{
		"year":    year,
		"month":   int(month),
		"deleted": n,
	}).Info("Month events deleted")
	return int(n), nil
}

// Get returns the cached event with id.
func (s *Store) Get(id string) (*models.Event, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if idx := s.indexLocked(id); idx >= 0 {
		out := *s.events[idx]
		return &out, true
	}
	return nil, false
}

// Events returns every cached event regardless of the category filter.
func (s *Store) Events() []models.Event {
	return s.collect(false, func(*models.Event) bool { return true })
}

// FilteredEvents returns the events of the active categories.
func (s *Store) FilteredEvents() []models.Event {
	return s.collect(true, func(*models.Event) bool { return true })
}

// EventsForDate returns the active-category events on date.
func (s *Store) EventsForDate(date datecodec.CalendarDate) []models.Event {
	return s.collect(true, func(e *models.Event) bool { return e.Date == date })
}

// EventsForMonth returns the active-category events of the month.
func (s *Store) EventsForMonth(year int, month time.Month) []models.Event {
	return s.collect(true, func(e *models.Event) bool {
		return e.Date.Year == year && e.Date.Month == month
	})
}

func (s *Store) collect(filtered bool, match func(*models.Event) bool) []models.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Event, 0, len(s.events))
	for _, e := range s.events {
		if filtered && !s.active[e.Category] {
			continue
		}
		if match(e) {
			out = append(out, *e)
		}
	}
	return out
}

// ToggleCategory flips c in the active set and returns its new state.
func (s *Store) ToggleCategory(c models.Category) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active[c] = !s.active[c]
	return s.active[c]
}

// SetActiveCategories replaces the active set.
func (s *Store) SetActiveCategories(categories []models.Category) {
	active := make(map[models.Category]bool, len(categories))
	for _, c := range categories {
		active[c] = true
	}
	s.mu.Lock()
	s.active = active
	s.mu.Unlock()
}

// ActiveCategories returns the active set in display order.
func (s *Store) ActiveCategories() []models.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Category, 0, len(s.active))
	for _, info := range models.Categories() {
		if s.active[info.Key] {
			out = append(out, info.Key)
		}
	}
	return out
}

func (s *Store) indexLocked(id string) int {
	for i, e := range s.events {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// sortEvents orders by date, then start time with all-day events first.
func sortEvents(events []*models.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if c := a.Date.Compare(b.Date); c != 0 {
			return c < 0
		}
		return a.StartTime < b.StartTime
	})
}
