// Package routing wires handlers, middleware and the metrics endpoint into
// the HTTP server handler.
package routing

import (
	"net/http"

	"tribune/internal/auth"
	"tribune/internal/handlers"
	"tribune/internal/middleware"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Config holds the configuration needed for setting up routes.
type Config struct {
	Handlers *handlers.Handler
	Auth     *auth.Service
	Logger   zerolog.Logger

	// Tracing wraps the router in an otelhttp handler when true.
	Tracing bool
}

// SetupRouter creates and configures the HTTP router with all routes and
// middleware.
func SetupRouter(cfg Config) http.Handler {
	h := cfg.Handlers
	mux := http.NewServeMux()

	// Cross-origin protection on every state-changing route.
	cop := http.NewCrossOriginProtection()

	// Authentication. Signup and join are reachable without a session.
	mux.Handle("POST /api/signup", cop.Handler(http.HandlerFunc(h.HandleSignup)))
	mux.Handle("POST /api/login", cop.Handler(http.HandlerFunc(h.HandleLogin)))
	mux.Handle("POST /api/logout", cop.Handler(http.HandlerFunc(h.HandleLogout)))
	mux.HandleFunc("GET /api/me", h.HandleMe)

	// Public feed and voices.
	mux.HandleFunc("GET /api/feed", h.HandleFeed)
	mux.Handle("POST /api/voices", cop.Handler(http.HandlerFunc(h.HandleVoiceCreate)))
	mux.HandleFunc("GET /api/voices/{id}", h.HandleVoiceGet)
	mux.Handle("DELETE /api/voices/{id}", cop.Handler(http.HandlerFunc(h.HandleVoiceDelete)))
	mux.Handle("POST /api/voices/{id}/report", cop.Handler(http.HandlerFunc(h.HandleReport)))

	// Events.
	mux.HandleFunc("GET /api/events", h.HandleEventList)
	mux.Handle("POST /api/events", cop.Handler(http.HandlerFunc(h.HandleEventCreate)))
	mux.Handle("DELETE /api/events/{id}", cop.Handler(http.HandlerFunc(h.HandleEventDelete)))

	// Membership applications.
	mux.Handle("POST /api/join", cop.Handler(http.HandlerFunc(h.HandleJoinSubmit)))

	// Administration.
	mux.HandleFunc("GET /api/admin/users", h.HandleAdminUserList)
	mux.Handle("POST /api/admin/users/{id}/suspend", cop.Handler(http.HandlerFunc(h.HandleSuspendUser)))
	mux.Handle("POST /api/admin/users/{id}/timeout", cop.Handler(http.HandlerFunc(h.HandleTimeoutUser)))
	mux.Handle("POST /api/admin/users/{id}/restore", cop.Handler(http.HandlerFunc(h.HandleRestoreUser)))
	mux.Handle("POST /api/admin/users/{id}/role", cop.Handler(http.HandlerFunc(h.HandleUpdateRole)))
	mux.Handle("DELETE /api/admin/users/{id}", cop.Handler(http.HandlerFunc(h.HandleDeleteUser)))

	mux.Handle("POST /api/admin/voices/{id}/hide", cop.Handler(http.HandlerFunc(h.HandleHideVoice)))
	mux.Handle("POST /api/admin/voices/{id}/unhide", cop.Handler(http.HandlerFunc(h.HandleUnhideVoice)))
	mux.Handle("POST /api/admin/voices/{id}/restore", cop.Handler(http.HandlerFunc(h.HandleRestoreVoice)))

	mux.HandleFunc("GET /api/admin/audit", h.HandleAuditLog)
	mux.HandleFunc("GET /api/admin/stats", h.HandleAdminStats)
	mux.HandleFunc("GET /api/admin/bans", h.HandleBanList)
	mux.HandleFunc("GET /api/admin/join-requests", h.HandleJoinRequestList)
	mux.Handle("DELETE /api/admin/join-requests/{id}", cop.Handler(http.HandlerFunc(h.HandleJoinRequestDismiss)))

	// Block page, health and metrics.
	mux.HandleFunc("GET "+middleware.BlockedPagePath, h.HandleSuspendedPage)
	mux.HandleFunc("GET /healthz", h.HandleHealthz)
	mux.Handle("GET /metrics", promhttp.Handler())

	// Static files (must come after specific routes).
	fs := http.FileServer(http.Dir("static"))
	mux.Handle("GET /static/", http.StripPrefix("/static/", fs))

	// Apply middleware in order (outermost first, innermost last).
	var handler http.Handler = mux

	// 1. Limit request body size (innermost - runs first on request)
	handler = middleware.LimitBodyMiddleware(handler)

	// 2. Enforce account standing on the resolved principal
	handler = middleware.EnforcementMiddleware(handler)

	// 3. Resolve the session cookie to a principal snapshot
	handler = cfg.Auth.Middleware(handler)

	// 4. Apply rate limiting
	rateLimitConfig := middleware.NewDefaultRateLimitConfig()
	handler = middleware.RateLimitMiddleware(rateLimitConfig)(handler)

	// 5. Apply security headers
	handler = middleware.SecurityHeadersMiddleware(handler)

	// 6. Apply logging middleware (outermost - wraps everything)
	handler = middleware.LoggingMiddleware(cfg.Logger)(handler)

	if cfg.Tracing {
		handler = otelhttp.NewHandler(handler, "http.server")
	}

	return handler
}
