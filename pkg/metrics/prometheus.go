package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	pollTicks    *prometheus.CounterVec
	authAttempts *prometheus.CounterVec
	advisorCalls *prometheus.CounterVec
	lastPrice    *prometheus.GaugeVec
	latency      *prometheus.HistogramVec
}

// New creates a Prometheus metrics recorder registered on reg.
// Passing nil uses the default registerer served at /metrics.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Recorder{
		pollTicks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "algosensei_poll_ticks_total",
				Help: "Market snapshot fetch cycles by outcome",
			},
			[]string{"trigger", "outcome"},
		),
		authAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "algosensei_auth_attempts_total",
				Help: "Authentication attempts by flow and outcome",
			},
			[]string{"flow", "outcome"},
		),
		advisorCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "algosensei_advisor_calls_total",
				Help: "Strategy advisor answers by source (llm or fallback)",
			},
			[]string{"source"},
		),
		lastPrice: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "algosensei_last_price",
				Help: "Last published price for a symbol",
			},
			[]string{"symbol"},
		),
		latency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "algosensei_operation_duration_seconds",
				Help:    "Duration of upstream operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordPoll records one fetch cycle. trigger is "tick" or "refresh".
func (r *Recorder) RecordPoll(trigger, outcome string) {
	r.pollTicks.WithLabelValues(trigger, outcome).Inc()
}

// RecordAuthAttempt records a login, signup or oauth outcome.
func (r *Recorder) RecordAuthAttempt(flow, outcome string) {
	r.authAttempts.WithLabelValues(flow, outcome).Inc()
}

// RecordAdvisorCall records where an advisor answer came from.
func (r *Recorder) RecordAdvisorCall(source string) {
	r.advisorCalls.WithLabelValues(source).Inc()
}

// RecordLastPrice records the last price for a symbol.
func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// Nop discards every measurement.
type Nop struct{}

func (Nop) RecordPoll(string, string)        {}
func (Nop) RecordAuthAttempt(string, string) {}
func (Nop) RecordAdvisorCall(string)         {}
func (Nop) RecordLastPrice(string, float64)  {}
func (Nop) RecordLatency(string, float64)    {}
