package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/Kerhoff/ChurchCal/internal/datecodec"
)

// Recurrence defines how often an event repeats
type Recurrence string

const (
	RecurrenceNone    Recurrence = ""
	RecurrenceDaily   Recurrence = "daily"
	RecurrenceWeekly  Recurrence = "weekly"
	RecurrenceMonthly Recurrence = "monthly"
	RecurrenceYearly  Recurrence = "yearly"
)

// Valid reports whether r is empty or one of the supported intervals
func (r Recurrence) Valid() bool {
	switch r {
	case RecurrenceNone, RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly, RecurrenceYearly:
		return true
	}
	return false
}

// DraftEvent is an event that has not been persisted yet. Spreadsheet
// imports produce drafts; the store turns accepted drafts into events.
type DraftEvent struct {
	Title       string                 `json:"title" db:"title"`
	Date        datecodec.CalendarDate `json:"date" db:"date"`
	StartTime   string                 `json:"start_time,omitempty" db:"start_time"` // HH:MM
	EndTime     string                 `json:"end_time,omitempty" db:"end_time"`     // HH:MM
	Category    Category               `json:"category" db:"category"`
	Description string                 `json:"description,omitempty" db:"description"`
	Location    string                 `json:"location,omitempty" db:"location"`
	IsAllDay    bool                   `json:"is_all_day" db:"is_all_day"`
	Reminder    int                    `json:"reminder,omitempty" db:"reminder"` // minutes before start
	Recurring   Recurrence             `json:"recurring,omitempty" db:"recurring"`
}

// Event represents a persisted church calendar event
type Event struct {
	ID string `json:"id" db:"id"`
	DraftEvent
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Validate checks the fields a draft must carry before it can be stored
func (d *DraftEvent) Validate() error {
	title := strings.TrimSpace(d.Title)
	if title == "" {
		return fmt.Errorf("title is required")
	}
	if d.Date.IsZero() {
		return fmt.Errorf("date is required")
	}
	if !d.Category.Valid() {
		return fmt.Errorf("unknown category %q", d.Category)
	}
	if !d.Recurring.Valid() {
		return fmt.Errorf("unknown recurrence %q", d.Recurring)
	}
	if d.Reminder < 0 {
		return fmt.Errorf("reminder must not be negative")
	}
	if !d.IsAllDay && d.StartTime != "" {
		if _, err := ParseClock(d.StartTime); err != nil {
			return fmt.Errorf("start_time: %w", err)
		}
	}
	if !d.IsAllDay && d.EndTime != "" {
		if _, err := ParseClock(d.EndTime); err != nil {
			return fmt.Errorf("end_time: %w", err)
		}
	}
	return nil
}

// SameSlot reports whether d and other fall on the same calendar day with the
// same trimmed title and the same start time.
func (d *DraftEvent) SameSlot(other *DraftEvent) bool {
	return d.Date == other.Date &&
		strings.TrimSpace(d.Title) == strings.TrimSpace(other.Title) &&
		d.StartTime == other.StartTime
}

// StartAt returns the start of the event in loc. All-day events and events
// without a start time begin at midnight.
func (d *DraftEvent) StartAt(loc *time.Location) time.Time {
	start := d.Date.Time(loc)
	if d.IsAllDay || d.StartTime == "" {
		return start
	}
	offset, err := ParseClock(d.StartTime)
	if err != nil {
		return start
	}
	return start.Add(offset)
}

// ReminderAt returns when a reminder for the event is due, or false when
// the event has no reminder or no start time.
func (d *DraftEvent) ReminderAt(loc *time.Location) (time.Time, bool) {
	if d.Reminder <= 0 || d.IsAllDay || d.StartTime == "" {
		return time.Time{}, false
	}
	return d.StartAt(loc).Add(-time.Duration(d.Reminder) * time.Minute), true
}

// IsUpcoming returns true if the event hasn't started yet
func (e *Event) IsUpcoming(now time.Time) bool {
	return now.Before(e.StartAt(now.Location()))
}

// ParseClock parses "HH:MM" (or "HH:MM:SS") into an offset from midnight.
func ParseClock(s string) (time.Duration, error) {
	var h, m, sec int
	n, err := fmt.Sscanf(s, "%d:%d:%d", &h, &m, &sec)
	if n < 2 {
		if _, err = fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
			return 0, fmt.Errorf("invalid time %q", s)
		}
	}
	if h < 0 || m < 0 || m > 59 || h > 23 {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute, nil
}

// NormalizeClock trims a database TIME value ("14:00:00") to "HH:MM".
func NormalizeClock(s string) string {
	if len(s) >= 5 && s[2] == ':' {
		return s[:5]
	}
	return s
}

// EventPatch holds the fields of an update; nil fields are left unchanged
type EventPatch struct {
	Title       *string                 `json:"title"`
	Date        *datecodec.CalendarDate `json:"date"`
	StartTime   *string                 `json:"start_time"`
	EndTime     *string                 `json:"end_time"`
	Category    *Category               `json:"category"`
	Description *string                 `json:"description"`
	Location    *string                 `json:"location"`
	IsAllDay    *bool                   `json:"is_all_day"`
	Reminder    *int                    `json:"reminder"`
	Recurring   *Recurrence             `json:"recurring"`
}

// Apply copies the set fields of p onto d
func (p *EventPatch) Apply(d *DraftEvent) {
	if p.Title != nil {
		d.Title = strings.TrimSpace(*p.Title)
	}
	if p.Date != nil {
		d.Date = *p.Date
	}
	if p.StartTime != nil {
		d.StartTime = *p.StartTime
	}
	if p.EndTime != nil {
		d.EndTime = *p.EndTime
	}
	if p.Category != nil {
		d.Category = *p.Category
	}
	if p.Description != nil {
		d.Description = *p.Description
	}
	if p.Location != nil {
		d.Location = *p.Location
	}
	if p.IsAllDay != nil {
		d.IsAllDay = *p.IsAllDay
	}
	if p.Reminder != nil {
		d.Reminder = *p.Reminder
	}
	if p.Recurring != nil {
		d.Recurring = *p.Recurring
	}
	if d.IsAllDay {
		d.StartTime = ""
		d.EndTime = ""
	}
}

// EndAt returns the end of the event in loc. All-day events end at the next
// midnight; timed events without a usable end time last two hours.
func (d *DraftEvent) EndAt(loc *time.Location) time.Time {
	if d.IsAllDay || d.StartTime == "" {
		return d.Date.AddDays(1).Time(loc)
	}
	start := d.StartAt(loc)
	if d.EndTime != "" {
		if offset, err := ParseClock(d.EndTime); err == nil {
			if end := d.Date.Time(loc).Add(offset); !end.Before(start) {
				return end
			}
		}
	}
	return start.Add(2 * time.Hour)
}

// RRule returns the iCalendar recurrence rule for r, or "" for none.
func (r Recurrence) RRule() string {
	switch r {
	case RecurrenceDaily:
		return "FREQ=DAILY"
	case RecurrenceWeekly:
		return "FREQ=WEEKLY"
	case RecurrenceMonthly:
		return "FREQ=MONTHLY"
	case RecurrenceYearly:
		return "FREQ=YEARLY"
	}
	return ""
}
