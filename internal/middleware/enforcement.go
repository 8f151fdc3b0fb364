package middleware

import (
	"net/http"
	"strings"
	"time"

	"tribune/internal/auth"
	"tribune/internal/identity"
	"tribune/internal/metrics"

	"github.com/rs/zerolog/log"
)

// BlockedPagePath is where blocked members land. It shows account standing
// and nothing else.
const BlockedPagePath = "/suspended"

// enforcementExempt paths stay reachable for blocked members: the block page
// itself, logout, and operational endpoints.
func enforcementExempt(path string) bool {
	if path == BlockedPagePath || path == "/api/logout" {
		return true
	}
	return path == "/metrics" || path == "/healthz" || strings.HasPrefix(path, "/static/")
}

// EnforcementMiddleware gates every request on the principal's effective
// account status, derived fresh per request. Blocked members are redirected
// to the block page; members in good standing who land on the block page are
// sent home. Anonymous requests pass through untouched.
func EnforcementMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, err := auth.GetAuthenticatedPrincipal(r.Context())
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		blocked := identity.IsBlocked(p, time.Now())

		if blocked && !enforcementExempt(r.URL.Path) {
			metrics.BlockedRequestsTotal.Inc()
			log.Debug().
				Str("user_id", p.ID).
				Str("path", r.URL.Path).
				Msg("blocked account redirected")
			http.Redirect(w, r, BlockedPagePath, http.StatusSeeOther)
			return
		}

		if !blocked && r.URL.Path == BlockedPagePath {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}

		next.ServeHTTP(w, r)
	})
}
