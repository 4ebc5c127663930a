// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Vote outcomes
const (
	VoteAccepted     = "accepted"
	VoteAlreadyVoted = "already_voted"
	VoteRejected     = "rejected"
	VoteFailed       = "failed"
)

var (
	// RequestDuration tracks API latency by route pattern and status code
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "ballotbox_request_duration_seconds",
			Help: "Duration of API requests in seconds",
			Buckets: []float64{
				0.001, // 1ms
				0.005, // 5ms
				0.01,  // 10ms
				0.05,  // 50ms
				0.1,   // 100ms
				0.5,   // 500ms
				1.0,   // 1s
				5.0,   // 5s
			},
		},
		[]string{"method", "route", "status"},
	)

	VotesCast = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ballotbox_votes_total",
			Help: "Vote attempts by outcome",
		},
		[]string{"result"},
	)

	SupportMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ballotbox_support_messages_total",
			Help: "Support messages sent, by direction",
		},
		[]string{"direction"},
	)

	RealtimeSubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ballotbox_realtime_subscribers",
			Help: "Open change feed connections",
		},
	)

	ActivityWriteFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ballotbox_activity_write_failures_total",
			Help: "Activity log entries that could not be stored",
		},
	)
)

// RecordRequest records the duration of one request
func RecordRequest(method, route, status string, seconds float64) {
	RequestDuration.WithLabelValues(method, route, status).Observe(seconds)
}

// RecordVote counts one vote attempt
func RecordVote(result string) {
	VotesCast.WithLabelValues(result).Inc()
}
