package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vl4dimr/tesis-system-unap/internal/types"
)

func TestMetrics_Record(t *testing.T) {
	m := New("docservice", "test")

	m.ObserveRequest(http.MethodPost, "/validar", http.StatusOK, 20*time.Millisecond)
	m.ObserveJob("validate", OutcomeOK, 10*time.Millisecond)
	m.ObserveJob("format", OutcomeOverloaded, 0)
	m.SetQueueDepth(3)
	m.AddBusyWorkers(2)
	m.AddBusyWorkers(-1)
	m.ObserveCache("get", "hit")
	m.ObserveReport(types.NewValidationReport([]types.Finding{
		{Valid: true, Severity: types.SeverityError},
		{Valid: false, Severity: types.SeverityWarning},
	}))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("POST", "/validar", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.jobsTotal.WithLabelValues("format", OutcomeOverloaded)))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.queueDepth))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.workersBusy))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.findings.WithLabelValues("ADVERTENCIA", "false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheResults.WithLabelValues("get", "hit")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRequest("GET", "/", 200, time.Second)
		m.ObserveJob("validate", OutcomeOK, time.Second)
		m.SetQueueDepth(1)
		m.AddBusyWorkers(1)
		m.ObserveReport(types.NewValidationReport(nil))
		m.ObserveCache("get", "miss")
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := New("docservice", "test")
	m.ObserveJob("validate", OutcomeOK, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `document_jobs_total{kind="validate",outcome="ok",service="docservice",version="test"} 1`)
}
