package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// authOutcomesTotal counts API key authentication outcomes.
	// Labels:
	// - result: success | failure
	authOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "formingo",
			Subsystem: "auth",
			Name:      "outcomes_total",
			Help:      "API key authentication outcomes by result.",
		},
		[]string{"result"},
	)

	// submissionsTotal counts contact submissions by final pipeline result.
	// Labels:
	// - result: accepted | missing_fields | invalid_email | privacy_not_accepted | token_missing | ...
	submissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "formingo",
			Subsystem: "contact",
			Name:      "submissions_total",
			Help:      "Contact submissions by result.",
		},
		[]string{"result"},
	)

	// verificationOutcomesTotal counts human-verification outcomes.
	// Labels:
	// - outcome: skipped | passed | failed | errored
	verificationOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "formingo",
			Subsystem: "verification",
			Name:      "outcomes_total",
			Help:      "Verification gate outcomes.",
		},
		[]string{"outcome"},
	)

	// verificationSeconds observes verification provider latency.
	verificationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "formingo",
		Subsystem: "verification",
		Name:      "request_seconds",
		Help:      "Verification provider request latency in seconds.",
		Buckets:   prometheus.DefBuckets,
	})

	// notificationsTotal counts dispatch attempts.
	// Labels:
	// - kind: admin | user
	// - result: sent | failed
	notificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "formingo",
			Subsystem: "email",
			Name:      "notifications_total",
			Help:      "Notification dispatch attempts by kind and result.",
		},
		[]string{"kind", "result"},
	)

	// clientsLoaded is the number of tenants in the credential table.
	clientsLoaded = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "formingo",
		Subsystem: "clients",
		Name:      "loaded",
		Help:      "Number of tenants loaded into the credential table.",
	})
)

// IncAuthOutcome increments the auth outcome counter.
func IncAuthOutcome(result string) {
	if result == "" {
		result = "unknown"
	}
	authOutcomesTotal.WithLabelValues(result).Inc()
}

// IncSubmission increments the submission counter.
func IncSubmission(result string) {
	if result == "" {
		result = "unknown"
	}
	submissionsTotal.WithLabelValues(result).Inc()
}

// IncVerificationOutcome increments the verification counter.
func IncVerificationOutcome(outcome string) {
	if outcome == "" {
		outcome = "unknown"
	}
	verificationOutcomesTotal.WithLabelValues(outcome).Inc()
}

// ObserveVerification records a provider round trip in seconds.
func ObserveVerification(seconds float64) { verificationSeconds.Observe(seconds) }

// IncNotification increments the notification counter.
func IncNotification(kind, result string) {
	if kind == "" {
		kind = "unknown"
	}
	if result == "" {
		result = "unknown"
	}
	notificationsTotal.WithLabelValues(kind, result).Inc()
}

// SetClientsLoaded records the credential table size.
func SetClientsLoaded(n int) { clientsLoaded.Set(float64(n)) }
