package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	CatalogRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_requests_total",
		Help: "Problem catalog GraphQL calls",
	}, []string{"operation", "status"})

	XPRefreshes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "xp_refresh_total",
		Help: "XP reconciliation runs",
	}, []string{"result"})

	LeaderboardFallbacks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "leaderboard_fallback_total",
		Help: "Leaderboard lookups that left the index path",
	}, []string{"stage"})

	NotificationsSent = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "daily_notifications_sent_total",
		Help: "Desktop notifications raised for a new daily challenge",
	})
)

// MustRegister registers all collectors.
func MustRegister(registerer prometheus.Registerer) {
	registerer.MustRegister(
		CatalogRequests,
		XPRefreshes,
		LeaderboardFallbacks,
		NotificationsSent,
	)
}

// Status maps an error to the label value used by the counters.
func Status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
