package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.IncSubmission("success")
	m.IncSubmission("success")
	m.IncSubmission("invalid")
	m.IncCacheLookup("snapshot", "hit")
	m.SetDraftSessions(3)
	m.ObserveQuery("fixture", time.Now())

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Submissions.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Submissions.WithLabelValues("invalid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("snapshot", "hit")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.DraftSessions))
}

func TestNilMetricsAreNoops(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncSubmission("success")
		m.ObserveSubmit(time.Now())
		m.IncStaleServed()
		m.SetDraftSessions(1)
		m.IncSelectionAction("open")
	})
}
