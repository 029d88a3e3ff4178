package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	VerificationsCompletedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "verifications_completed_total",
			Help: "Total number of fully completed verifications.",
		},
	)

	ResolverFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resolver_failures_total",
			Help: "Total number of platform resolution failures.",
		},
		[]string{"platform", "reason"},
	)

	BlacklistChecksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "blacklist_checks_total",
			Help: "Total number of blacklist cross-reference runs.",
		},
	)

	BlacklistHitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "blacklist_hits_total",
			Help: "Total number of blacklist cross-reference runs with at least one match.",
		},
	)
)

func MustRegister() {
	prometheus.MustRegister(
		VerificationsCompletedTotal,
		ResolverFailuresTotal,
		BlacklistChecksTotal,
		BlacklistHitsTotal,
	)
}
