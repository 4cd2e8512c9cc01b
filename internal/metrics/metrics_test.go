package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveCounts(t *testing.T) {
	m := New(nil)
	m.Observe("surveillance", OutcomeSuccess, 3*time.Millisecond)
	m.Observe("surveillance", OutcomeSuccess, time.Millisecond)
	m.Observe("regime", OutcomeInvalid, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Requests.WithLabelValues("surveillance", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("regime", OutcomeInvalid)))
	assert.Equal(t, 2, testutil.CollectAndCount(m.Duration))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.Observe("x", OutcomeFailure, time.Second)
	m.Narrative("mock")
	m.Notices(3)
}

func TestHandlerExposesAuditGauge(t *testing.T) {
	n := 7
	m := New(func() int { return n })
	m.Narrative("live")
	m.Notices(2)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)

	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), "marketdesk_audit_log_entries 7")
	assert.Contains(t, string(body), `marketdesk_narratives_total{mode="live"} 1`)
	assert.Contains(t, string(body), "marketdesk_feed_notices_total 2")
}
