package metrics

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.ObserveRequest("GET", 200, 10*time.Millisecond)
	m.ObserveRequest("GET", 204, 10*time.Millisecond)
	m.ObserveRequest("POST", 0, time.Millisecond)
	m.TokenRefresh(true)
	m.TokenRefresh(false)
	m.Retry()
	m.Workflow("login", nil)
	m.Workflow("login", errors.New("bad password"))
	m.BackgroundFailure("conversations")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.apiRequests.WithLabelValues("GET", "2xx")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.apiRequests.WithLabelValues("POST", "none")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.tokenRefresh.WithLabelValues("failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.apiRetries))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.workflows.WithLabelValues("login", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.backgroundFails.WithLabelValues("conversations")))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveRequest("GET", 200, time.Second)
		m.TokenRefresh(true)
		m.Retry()
		m.Workflow("x", nil)
		m.BackgroundFailure("x")
	})
	assert.NoError(t, m.WriteText(&bytes.Buffer{}))
}

func TestMetrics_WriteText(t *testing.T) {
	m := New()
	m.Retry()

	var buf bytes.Buffer
	require.NoError(t, m.WriteText(&buf))

	assert.Contains(t, buf.String(), "pharmaconnect_api_retries_total 1")
}

func TestStatusClass(t *testing.T) {
	assert.Equal(t, "none", StatusClass(0))
	assert.Equal(t, "4xx", StatusClass(401))
	assert.Equal(t, "5xx", StatusClass(503))
}
