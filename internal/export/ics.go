package export

import (
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/Kerhoff/ChurchCal/internal/models"
)

// ProductID identifies the generator in exported calendars.
const ProductID = "-//Kerhoff//ChurchCal//KO"

// ICSFilename is the download name of the feed.
const ICSFilename = "church_events.ics"

// ICS renders events as an iCalendar document. Times are interpreted in
// loc; recurring events carry an RRULE instead of being expanded.
func ICS(name string, events []models.Event, loc *time.Location) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(ProductID)
	if name != "" {
		cal.SetName(name)
		cal.SetXWRCalName(name)
	}
	cal.SetXWRTimezone(loc.String())

	for _, e := range events {
		ev := cal.AddEvent(e.ID + "@churchcal")
		ev.SetSummary(e.Title)
		if e.Location != "" {
			ev.SetLocation(e.Location)
		}
		if e.Description != "" {
			ev.SetDescription(e.Description)
		}
		ev.SetProperty(ical.ComponentPropertyCategories, e.Category.Label())

		stamp := e.UpdatedAt
		if stamp.IsZero() {
			stamp = time.Now()
		}
		ev.SetDtStampTime(stamp.UTC())
		if !e.CreatedAt.IsZero() {
			ev.SetCreatedTime(e.CreatedAt.UTC())
		}
		if !e.UpdatedAt.IsZero() {
			ev.SetModifiedAt(e.UpdatedAt.UTC())
		}

		if e.IsAllDay || e.StartTime == "" {
			ev.SetAllDayStartAt(e.Date.Time(loc))
			ev.SetAllDayEndAt(e.Date.AddDays(1).Time(loc))
		} else {
			ev.SetStartAt(e.StartAt(loc).UTC())
			ev.SetEndAt(e.EndAt(loc).UTC())
		}

		if rule := e.Recurring.RRule(); rule != "" {
			ev.AddRrule(rule)
		}
	}
	return cal.Serialize()
}
