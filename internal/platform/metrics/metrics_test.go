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

func TestJobFinishedCountsOutcomes(t *testing.T) {
	reg := New()
	reg.JobFinished("tabular", "completed", 2*time.Second, 1024)
	reg.JobFinished("tabular", "completed", time.Second, 10)
	reg.JobFinished("archive", "failed", time.Second, 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(reg.exportJobs.WithLabelValues("tabular", "completed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.exportJobs.WithLabelValues("archive", "failed")))
	assert.Equal(t, 1034.0, testutil.ToFloat64(reg.exportBytes.WithLabelValues("tabular")))
	assert.Equal(t, 1, testutil.CollectAndCount(reg.exportBytes, "docketdesk_exports_artifact_bytes_total"))
}

func TestOutcomeCounters(t *testing.T) {
	reg := New()
	reg.EventPublished("export.requested", nil)
	reg.EventPublished("export.requested", errors.New("down"))
	reg.NotificationSent("member.invited", nil)
	reg.RateLimited("POST /v1/exports")
	reg.ObserveHTTP("GET /v1/exports", http.StatusOK, 10*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(reg.eventsPublished.WithLabelValues("export.requested", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.notificationsOut.WithLabelValues("member.invited", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.rateLimited.WithLabelValues("POST /v1/exports")))
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.httpRequests.WithLabelValues("GET /v1/exports", "200")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	reg := New()
	reg.RegisterGauge("exports", "pool_in_flight", "Running export tasks.", func() float64 { return 3 })
	reg.JobFinished("combined", "completed", time.Second, 1)

	rec := httptest.NewRecorder()
	reg.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "docketdesk_exports_pool_in_flight 3"))
	assert.True(t, strings.Contains(body, `docketdesk_exports_jobs_finished_total{status="completed",type="combined"} 1`))
}
