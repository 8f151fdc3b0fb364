package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tribune_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tribune_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	}, []string{"method", "path"})
)

// Business metrics (gauges updated periodically by collector)
var (
	RegisteredUsersTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tribune_registered_users_total",
		Help: "Total number of registered members",
	})

	BlockedUsersTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tribune_blocked_users_total",
		Help: "Number of members whose account status blocks access",
	})

	BannedEmailsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tribune_banned_emails_total",
		Help: "Number of permanently banned email addresses",
	})

	VoicesTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tribune_voices_total",
		Help: "Total number of voices",
	})

	VoicesUnderReview = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tribune_voices_under_review",
		Help: "Number of voices currently under review",
	})

	JoinRequestsPending = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tribune_join_requests_pending",
		Help: "Number of pending membership applications",
	})
)

// Event counters (incremented on occurrence)
var (
	AuthLoginsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tribune_auth_logins_total",
		Help: "Total number of login attempts",
	}, []string{"status"})

	SignupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tribune_signups_total",
		Help: "Total number of signup attempts",
	}, []string{"status"})

	ReportsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tribune_reports_total",
		Help: "Total number of voice reports submitted",
	})

	AutoFlagsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tribune_auto_flags_total",
		Help: "Total number of voices automatically flagged for review",
	})

	ModerationActionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tribune_moderation_actions_total",
		Help: "Total number of moderation actions",
	}, []string{"action"})

	VoicesPublishedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tribune_voices_published_total",
		Help: "Total number of voices published",
	})

	JoinRequestsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tribune_join_requests_total",
		Help: "Total number of membership application submissions",
	})

	EventsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tribune_events_created_total",
		Help: "Total number of events created",
	})

	BlockedRequestsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tribune_blocked_requests_total",
		Help: "Total number of requests redirected for blocked accounts",
	})
)

// NormalizePath reduces high-cardinality path labels by replacing dynamic
// segments with placeholders. This keeps the metric label space bounded.
func NormalizePath(path string) string {
	segments := splitPath(path)
	if len(segments) < 2 || segments[0] != "api" {
		return path
	}

	switch segments[1] {
	case "voices":
		if len(segments) == 3 {
			return "/api/voices/:id"
		}
		if len(segments) == 4 {
			return "/api/voices/:id/" + segments[3]
		}
	case "events":
		if len(segments) == 3 {
			return "/api/events/:id"
		}
	case "admin":
		if len(segments) >= 3 {
			switch segments[2] {
			case "users", "voices":
				if len(segments) == 4 {
					return "/api/admin/" + segments[2] + "/:id"
				}
				if len(segments) == 5 {
					return "/api/admin/" + segments[2] + "/:id/" + segments[4]
				}
			case "join-requests":
				if len(segments) == 4 {
					return "/api/admin/join-requests/:id"
				}
			}
		}
	}

	return path
}

func splitPath(path string) []string {
	// Skip leading slash
	if len(path) > 0 && path[0] == '/' {
		path = path[1:]
	}
	var segments []string
	start := 0
	for i := 0; i < len(path); i++ {
		if path[i] == '/' {
			if i > start {
				segments = append(segments, path[start:i])
			}
			start = i + 1
		}
	}
	if start < len(path) {
		segments = append(segments, path[start:])
	}
	return segments
}
