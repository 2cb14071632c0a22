package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics groups the Prometheus collectors of the application on a private
// registry.
type Metrics struct {
	Registry *prometheus.Registry

	DraftsExtracted  prometheus.Counter
	EventsImported   prometheus.Counter
	ImportDuplicates prometheus.Counter
	ImportFailures   *prometheus.CounterVec
	RemindersSent    prometheus.Counter
	HTTPRequests     *prometheus.CounterVec
}

// NewMetrics creates and registers the collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		DraftsExtracted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "churchcal",
			Name:      "import_drafts_extracted_total",
			Help:      "Draft events extracted from uploaded workbooks.",
		}),
		EventsImported: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "churchcal",
			Name:      "import_events_committed_total",
			Help:      "Draft events persisted by import commits.",
		}),
		ImportDuplicates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "churchcal",
			Name:      "import_duplicates_total",
			Help:      "Draft events rejected as duplicates during import commits.",
		}),
		ImportFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "churchcal",
			Name:      "import_failures_total",
			Help:      "Workbook uploads that could not be extracted, by reason.",
		}, []string{"reason"}),
		RemindersSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "churchcal",
			Name:      "reminders_sent_total",
			Help:      "Event reminders delivered.",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "churchcal",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
	}

	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.DraftsExtracted,
		m.EventsImported,
		m.ImportDuplicates,
		m.ImportFailures,
		m.RemindersSent,
		m.HTTPRequests,
	)
	return m
}
