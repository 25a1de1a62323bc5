// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

var (
	StepTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onboarding_step_transitions_total",
			Help: "Wizard transitions by role, transition and outcome",
		},
		[]string{"role", "transition", "outcome"},
	)

	DraftSaves = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onboarding_draft_saves_total",
			Help: "Draft save attempts by role and outcome",
		},
		[]string{"role", "outcome"},
	)

	ApplicationsFinalized = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onboarding_applications_finalized_total",
			Help: "Applications finalized by role",
		},
		[]string{"role"},
	)

	FinishDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "onboarding_finish_duration_seconds",
			Help:    "Time spent finalizing and publishing an application",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"role"},
	)

	Handoffs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketplace_handoffs_total",
			Help: "Directory records published by role and outcome",
		},
		[]string{"role", "outcome"},
	)

	HandoffEventsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketplace_handoff_events_dropped_total",
			Help: "Handoff events dropped because a subscriber buffer was full",
		},
		[]string{"subscriber"},
	)

	MarketplaceMatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketplace_matches_total",
			Help: "Dispatch and instant booking attempts by outcome",
		},
		[]string{"operation", "outcome"},
	)

	JoinSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "join_submissions_total",
			Help: "Join page submissions by outcome",
		},
		[]string{"outcome"},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "onboarding_active_sessions",
			Help: "Wizard sessions currently held in memory",
		},
	)

	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)
)
