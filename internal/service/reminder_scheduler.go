package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Kerhoff/ChurchCal/internal/datecodec"
)

// ReminderCallback delivers a notification text, e.g. to a Telegram chat.
type ReminderCallback func(text string)

// reminderLog remembers which occurrences were already announced.
type reminderLog struct {
	mu   sync.Mutex
	sent map[string]time.Time // key -> occurrence start
}

func (l *reminderLog) markSent(key string, start time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.sent == nil {
		l.sent = make(map[string]time.Time)
	}
	if _, ok := l.sent[key]; ok {
		return false
	}
	l.sent[key] = start
	return true
}

func (l *reminderLog) prune(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for k, start := range l.sent {
		if start.Before(now) {
			delete(l.sent, k)
		}
	}
}

// StartReminderScheduler runs a background loop that checks for due event
// reminders every 30 seconds and invokes the callback for each one. It
// blocks until the context is cancelled, so it should be launched in a
// separate goroutine.
func (s *Service) StartReminderScheduler(ctx context.Context, callback ReminderCallback) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	s.logger.Info("Reminder scheduler started")

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Reminder scheduler stopped")
			return
		case now := <-ticker.C:
			s.processReminders(now, callback)
		}
	}
}

// processReminders fires the callback once for every occurrence whose
// reminder time has passed but which has not started yet.
func (s *Service) processReminders(now time.Time, callback ReminderCallback) {
	now = now.In(s.location)
	today := datecodec.FromTime(now)

	for _, o := range s.AllOccurrences(today, today.AddDays(1)) {
		e := o.Event
		if e.IsAllDay || e.Reminder <= 0 || !o.Start.After(now) {
			continue
		}
		remindAt := o.Start.Add(-time.Duration(e.Reminder) * time.Minute)
		if now.Before(remindAt) {
			continue
		}
		if !s.reminders.markSent(fmt.Sprintf("%s@%d", e.ID, o.Start.Unix()), o.Start) {
			continue
		}

		callback(ReminderText(o))
		s.metrics.RemindersSent.Inc()
		s.logger.WithField("event", e.ID).Debug("Reminder sent")
	}

	s.reminders.prune(now)
}

// ReminderText formats the notification for an upcoming occurrence.
func ReminderText(o Occurrence) string {
	text := fmt.Sprintf("⏰ *일정 알림*\n%s %s", o.Start.Format("15:04"), o.Event.Title)
	if o.Event.Location != "" {
		text += fmt.Sprintf("\n📍 %s", o.Event.Location)
	}
	return text
}

// StartDailyDigest sends the agenda of the day on the cron schedule spec
// (for example "0 7 * * *") until ctx is cancelled.
func (s *Service) StartDailyDigest(ctx context.Context, spec string, callback ReminderCallback) error {
	c := cron.New(cron.WithLocation(s.location))
	if _, err := c.AddFunc(spec, func() {
		today := s.Today()
		callback(FormatAgenda(today, s.AllOccurrences(today, today)))
	}); err != nil {
		return fmt.Errorf("failed to schedule daily digest %q: %w", spec, err)
	}

	c.Start()
	s.logger.WithField("schedule", spec).Info("Daily digest scheduled")

	<-ctx.Done()
	<-c.Stop().Done()
	s.logger.Info("Daily digest stopped")
	return nil
}
