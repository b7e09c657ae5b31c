package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.IncDecision("interested")
	m.IncDecision("interested")
	m.IncMutualMatch()
	m.IncRemoteSyncFailure("upsert")
	m.IncProfileRecovery("backup")
	m.IncLockContention("navigation")
	m.ObserveHTTP("GET", "/api/v1/matches", 200, 10*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.decisions.WithLabelValues("interested")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.mutualMatches))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.remoteSyncFailures.WithLabelValues("upsert")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.profileRecoveries.WithLabelValues("backup")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.lockContention.WithLabelValues("navigation")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/api/v1/matches", "200")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncDecision("passed")
		m.IncMutualMatch()
		m.IncPoolRefresh()
		m.ObservePoolSize(3)
		m.IncRemoteSyncFailure("latest")
		m.IncProfileRecovery("corrupted")
		m.IncLockContention("navigation")
		m.ObserveHTTP("GET", "/", 200, time.Millisecond)
	})
	assert.Nil(t, m.Registry())
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.IncPoolRefresh()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "kindred_pool_refreshes_total 1"))
}
