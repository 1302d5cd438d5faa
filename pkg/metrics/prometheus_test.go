package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorder_Counters(t *testing.T) {
	r := New(prometheus.NewRegistry())

	r.RecordPoll("tick", "ok")
	r.RecordPoll("tick", "ok")
	r.RecordPoll("refresh", "error")
	r.RecordAuthAttempt("login", "invalid_credentials")
	r.RecordAdvisorCall("fallback")
	r.RecordLastPrice("BTCUSDT", 67000.5)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.pollTicks.WithLabelValues("tick", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.pollTicks.WithLabelValues("refresh", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.authAttempts.WithLabelValues("login", "invalid_credentials")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.advisorCalls.WithLabelValues("fallback")))
	assert.Equal(t, 67000.5, testutil.ToFloat64(r.lastPrice.WithLabelValues("BTCUSDT")))
}

func TestRecorder_SeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}
