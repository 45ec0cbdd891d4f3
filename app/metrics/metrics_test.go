package metrics

import (
	"io"
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

	m.ObserveRequest(OutcomeSuccess)
	m.ObserveRequest(OutcomeFailed)
	m.ObserveRequest(OutcomeFailed)
	m.ObserveParsed(3)
	m.ObservePublish(OutcomeRejected, 10*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues(OutcomeSuccess)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues(OutcomeFailed)))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.EventsParsed))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PublishTotal.WithLabelValues(OutcomeRejected)))
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ObservePublish(OutcomeSuccess, time.Second)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 200, rec.Code)
	assert.True(t, strings.Contains(string(body), `event_relay_cms_publish_total{outcome="success"} 1`))
}

func TestMetrics_PublishTotalHelp(t *testing.T) {
	m := New()
	m.ObservePublish(OutcomeFailed, time.Millisecond)

	expected := `
# HELP event_relay_cms_publish_total Final publish outcome per event against the CMS, after any retries
# TYPE event_relay_cms_publish_total counter
event_relay_cms_publish_total{outcome="failed"} 1
`
	require.NoError(t, testutil.CollectAndCompare(m.PublishTotal, strings.NewReader(expected), "event_relay_cms_publish_total"))
}
