package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchMetricsRecordsDocuments(t *testing.T) {
	m := NewBatchMetrics("test")

	m.StartBatch()
	m.ObserveDocument("completed", 2*time.Second)
	m.ObserveDocument("completed", time.Second)
	m.ObserveDocument("extraction_failed", 10*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.batchesInFlight))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.documentTotal.WithLabelValues("completed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.documentTotal.WithLabelValues("extraction_failed")))

	m.FinishBatch()
	assert.Equal(t, 0.0, testutil.ToFloat64(m.batchesInFlight))
}

func TestBatchMetricsSummaryStatus(t *testing.T) {
	m := NewBatchMetrics("test")
	m.ObserveSummary("generated")
	m.ObserveSummary("")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.summaryTotal.WithLabelValues("generated")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.summaryTotal.WithLabelValues("unknown")))
}

func TestNilBatchMetricsIsNoop(t *testing.T) {
	var m *BatchMetrics
	assert.NotPanics(t, func() {
		m.StartBatch()
		m.ObserveDocument("completed", time.Second)
		m.ObserveSummary("failed")
		m.FinishBatch()
	})
}

func TestBatchMetricsHandlerExposesRegistry(t *testing.T) {
	m := NewBatchMetrics("test")
	m.ObserveDocument("submission_failed", time.Second)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `cvbatch_pipeline_documents_total{service="test",status="submission_failed"} 1`))
}
