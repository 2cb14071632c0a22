package service

import (
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/teambition/rrule-go"

	"github.com/Kerhoff/ChurchCal/internal/datecodec"
	"github.com/Kerhoff/ChurchCal/internal/models"
)

// maxOccurrencesPerEvent caps the expansion of a single recurring event.
const maxOccurrencesPerEvent = 1000

// Occurrence is one concrete instance of an event inside a range.
type Occurrence struct {
	Event models.Event           `json:"event"`
	Date  datecodec.CalendarDate `json:"date"`
	Start time.Time              `json:"start"`
	End   time.Time              `json:"end"`
}

// Occurrences expands the cached events of the active categories into the
// instances falling on from through to. Recurring events repeat from their
// own date onward.
func (s *Service) Occurrences(from, to datecodec.CalendarDate) []Occurrence {
	return expand(s.Store.FilteredEvents(), from, to, s.location, s.logger)
}

// AllOccurrences is Occurrences without the category filter.
func (s *Service) AllOccurrences(from, to datecodec.CalendarDate) []Occurrence {
	return expand(s.Store.Events(), from, to, s.location, s.logger)
}

func expand(events []models.Event, from, to datecodec.CalendarDate, loc *time.Location, log *logrus.Logger) []Occurrence {
	var out []Occurrence
	for _, e := range events {
		rule := e.Recurring.RRule()
		if rule == "" {
			if !e.Date.Before(from) && !e.Date.After(to) {
				out = append(out, occurrence(e, e.StartAt(loc), e.EndAt(loc), loc))
			}
			continue
		}

		r, err := rrule.StrToRRule(rule)
		if err != nil {
			log.WithError(err).WithField("event", e.ID).Warn("Failed to parse recurrence rule")
			continue
		}
		start := e.StartAt(loc)
		duration := e.EndAt(loc).Sub(start)
		r.DTStart(start)

		// Between is inclusive at both ends; the upper bound is the midnight
		// after to and is dropped below.
		times := r.Between(from.Time(loc), to.AddDays(1).Time(loc), true)
		if len(times) > maxOccurrencesPerEvent {
			times = times[:maxOccurrencesPerEvent]
		}
		for _, t := range times {
			t = t.In(loc)
			if datecodec.FromTime(t).After(to) {
				continue
			}
			out = append(out, occurrence(e, t, t.Add(duration), loc))
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Start.Equal(out[j].Start) {
			return out[i].Start.Before(out[j].Start)
		}
		return out[i].Event.Title < out[j].Event.Title
	})
	return out
}

func occurrence(e models.Event, start, end time.Time, loc *time.Location) Occurrence {
	return Occurrence{
		Event: e,
		Date:  datecodec.FromTime(start.In(loc)),
		Start: start,
		End:   end,
	}
}
