// metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BusSubscriberFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chapter_bus_subscriber_failures_total",
		Help: "Total number of action bus subscriber invocations that failed or panicked",
	}, []string{"action_kind"})

	RewardDispatchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chapter_reward_dispatch_total",
		Help: "Reward dispatch outcomes by action kind",
	}, []string{"action_kind", "outcome"})

	CheckInTokenFetchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chapter_checkin_token_fetch_total",
		Help: "Check-in token fetches by result source (live, cache, denied, failed)",
	}, []string{"source"})

	PendingScanExpiredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chapter_pending_scan_expired_total",
		Help: "Pending scans discarded on read because their TTL had elapsed",
	})
)

func orUnknown(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}

// IncBusSubscriberFailure records a failed subscriber invocation.
func IncBusSubscriberFailure(kind string) {
	BusSubscriberFailuresTotal.WithLabelValues(orUnknown(kind)).Inc()
}

// IncRewardDispatch records one dispatcher outcome.
func IncRewardDispatch(kind, outcome string) {
	RewardDispatchTotal.WithLabelValues(orUnknown(kind), orUnknown(outcome)).Inc()
}

// IncTokenFetch records where a check-in token request was resolved.
func IncTokenFetch(source string) {
	CheckInTokenFetchTotal.WithLabelValues(orUnknown(source)).Inc()
}

// IncPendingScanExpired records a lazily expired pending scan.
func IncPendingScanExpired() {
	PendingScanExpiredTotal.Inc()
}
