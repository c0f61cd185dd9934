package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// WorkerRuns counts worker invocations by outcome.
	WorkerRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rotor_worker_runs_total",
			Help: "Total number of worker invocations",
		},
		[]string{"outcome"},
	)

	// WorkerDuration tracks worker run time.
	WorkerDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rotor_worker_duration_seconds",
			Help:    "Worker run time in seconds",
			Buckets: prometheus.ExponentialBuckets(1, 2, 14),
		},
	)

	// Rotations counts completed rotations by result.
	Rotations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rotor_rotations_total",
			Help: "Total number of egress rotations",
		},
		[]string{"result"}, // rotated, escalated, fatal
	)

	// RotationAttempts counts individual connect attempts inside rotations.
	RotationAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rotor_rotation_attempts_total",
			Help: "Total number of connect attempts during rotation",
		},
		[]string{"result"}, // connected, connect-failed, blocklisted
	)

	// EscalationSteps counts escalation ladder steps taken.
	EscalationSteps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rotor_escalation_steps_total",
			Help: "Total number of escalation ladder steps",
		},
		[]string{"step"}, // clear-blocklist, auto-connect, daemon-restart
	)

	// BlocklistSize tracks the current number of blocked hostnames.
	BlocklistSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "rotor_blocklist_size",
			Help: "Current number of blocked egress hostnames",
		},
	)
)
