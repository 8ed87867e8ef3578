package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the travel module.
// All methods are safe on a nil receiver so components can run without it.
type Metrics struct {
	QueryDuration    *prometheus.HistogramVec
	QueryErrors      *prometheus.CounterVec
	SourceFetches    *prometheus.CounterVec
	CacheLookups     *prometheus.CounterVec
	StaleServed      prometheus.Counter
	Submissions      *prometheus.CounterVec
	SubmitDuration   prometheus.Histogram
	DraftSessions    prometheus.Gauge
	SelectionActions *prometheus.CounterVec
}

var latencyBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}

// New registers the travel metrics with reg. Pass prometheus.DefaultRegisterer
// in production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		QueryDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tabilog_query_duration_seconds",
			Help:    "Duration of list queries including the source fetch",
			Buckets: latencyBuckets,
		}, []string{"source"}),
		QueryErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tabilog_query_errors_total",
			Help: "List and detail queries that failed, by error code",
		}, []string{"code"}),
		SourceFetches: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tabilog_source_fetches_total",
			Help: "Fetches from the record source, by source and outcome",
		}, []string{"source", "outcome"}),
		CacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tabilog_cache_lookups_total",
			Help: "Snapshot and detail cache lookups, by kind and outcome",
		}, []string{"kind", "outcome"}),
		StaleServed: f.NewCounter(prometheus.CounterOpts{
			Name: "tabilog_stale_snapshots_served_total",
			Help: "Snapshots served from the last good fetch while the backing store was failing",
		}),
		Submissions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tabilog_submissions_total",
			Help: "Draft submissions, by outcome",
		}, []string{"outcome"}),
		SubmitDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "tabilog_submit_duration_seconds",
			Help:    "Duration of the submission round trip to the backing store",
			Buckets: latencyBuckets,
		}),
		DraftSessions: f.NewGauge(prometheus.GaugeOpts{
			Name: "tabilog_draft_sessions",
			Help: "Authoring sessions currently held in memory",
		}),
		SelectionActions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tabilog_selection_actions_total",
			Help: "Coordinate selection actions, by action",
		}, []string{"action"}),
	}
}

// ObserveQuery records the duration of a list query.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveQuery(source string, start time.Time) {
	if m == nil {
		return
	}
	m.QueryDuration.WithLabelValues(source).Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncQueryError(code string) {
	if m == nil {
		return
	}
	m.QueryErrors.WithLabelValues(code).Inc()
}

func (m *Metrics) IncSourceFetch(source, outcome string) {
	if m == nil {
		return
	}
	m.SourceFetches.WithLabelValues(source, outcome).Inc()
}

func (m *Metrics) IncCacheLookup(kind, outcome string) {
	if m == nil {
		return
	}
	m.CacheLookups.WithLabelValues(kind, outcome).Inc()
}

func (m *Metrics) IncStaleServed() {
	if m == nil {
		return
	}
	m.StaleServed.Inc()
}

func (m *Metrics) IncSubmission(outcome string) {
	if m == nil {
		return
	}
	m.Submissions.WithLabelValues(outcome).Inc()
}

// ObserveSubmit records the duration of a submission round trip.
func (m *Metrics) ObserveSubmit(start time.Time) {
	if m == nil {
		return
	}
	m.SubmitDuration.Observe(time.Since(start).Seconds())
}

func (m *Metrics) SetDraftSessions(n int) {
	if m == nil {
		return
	}
	m.DraftSessions.Set(float64(n))
}

func (m *Metrics) IncSelectionAction(action string) {
	if m == nil {
		return
	}
	m.SelectionActions.WithLabelValues(action).Inc()
}
