package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()

	m.ObserveOperation("accept", "ok", 10*time.Millisecond)
	m.ObserveOperation("accept", "ok", 5*time.Millisecond)
	m.ObserveOperation("accept", "conflict", time.Millisecond)
	m.ObserveTransition("submission_review", "approved")
	m.ObserveNotification("nats", errors.New("down"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.operations.WithLabelValues("accept", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues("accept", "conflict")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.transitions.WithLabelValues("submission_review", "approved")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.notices.WithLabelValues("nats", "error")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveOperation("accept", "ok", time.Millisecond)
		m.ObserveTransition("appeal_review", "rejected")
		m.ObserveNotification("log", nil)
	})
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveTransition("acceptance_review", "approved")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `bounty_workflow_transitions_total{result="approved",review_type="acceptance_review"} 1`))
}
