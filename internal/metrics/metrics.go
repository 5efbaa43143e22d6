// Package metrics exposes the process-wide Prometheus collectors. Counters
// are package-level and registered once at init; callers go through the Inc
// and Observe helpers so label sets stay consistent.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		apiCallsTotal,
		apiCallSeconds,
		updatesTotal,
		commandDispatchTotal,
		pollErrorsTotal,
	)
}

func register(cs ...prometheus.Collector) {
	for _, c := range cs {
		prometheus.MustRegister(c)
	}
}

var (
	apiCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "botwire_api_calls_total",
			Help: "Bot API calls by method and outcome.",
		},
		[]string{"method", "status"}, // status: ok, api_error, transport_error
	)

	apiCallSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "botwire_api_call_seconds",
			Help:    "Bot API call latency distribution.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method"},
	)

	updatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "botwire_updates_total",
			Help: "Updates fetched by the poll loop, by payload kind.",
		},
		[]string{"kind"}, // message, inline_query, chosen_inline_result, callback_query, empty
	)

	commandDispatchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "botwire_command_dispatch_total",
			Help: "Commands dispatched to handlers.",
		},
		[]string{"command"},
	)

	pollErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "botwire_poll_errors_total",
			Help: "Poll iterations that failed at the transport level.",
		},
	)
)

// ObserveAPICall records one Bot API call.
func ObserveAPICall(method, status string, seconds float64) {
	apiCallsTotal.WithLabelValues(method, status).Inc()
	apiCallSeconds.WithLabelValues(method).Observe(seconds)
}

// IncUpdate records one fetched update by payload kind.
func IncUpdate(kind string) {
	updatesTotal.WithLabelValues(kind).Inc()
}

// IncCommand records one command dispatch.
func IncCommand(command string) {
	commandDispatchTotal.WithLabelValues(command).Inc()
}

// IncPollError records one failed poll iteration.
func IncPollError() {
	pollErrorsTotal.Inc()
}
