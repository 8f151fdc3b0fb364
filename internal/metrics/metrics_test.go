package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		// Exact routes (no normalization needed)
		{"/", "/"},
		{"/suspended", "/suspended"},
		{"/metrics", "/metrics"},
		{"/healthz", "/healthz"},
		{"/api/feed", "/api/feed"},
		{"/api/login", "/api/login"},
		{"/api/signup", "/api/signup"},
		{"/api/voices", "/api/voices"},
		{"/api/events", "/api/events"},
		{"/api/join", "/api/join"},
		{"/api/admin/users", "/api/admin/users"},
		{"/api/admin/stats", "/api/admin/stats"},
		{"/api/admin/audit", "/api/admin/audit"},

		// Voices with IDs
		{"/api/voices/abc123", "/api/voices/:id"},
		{"/api/voices/abc123/report", "/api/voices/:id/report"},

		// Events with IDs
		{"/api/events/abc123", "/api/events/:id"},

		// Admin user actions
		{"/api/admin/users/abc123", "/api/admin/users/:id"},
		{"/api/admin/users/abc123/suspend", "/api/admin/users/:id/suspend"},
		{"/api/admin/users/abc123/timeout", "/api/admin/users/:id/timeout"},
		{"/api/admin/users/abc123/restore", "/api/admin/users/:id/restore"},
		{"/api/admin/users/abc123/role", "/api/admin/users/:id/role"},

		// Admin voice actions
		{"/api/admin/voices/abc123/hide", "/api/admin/voices/:id/hide"},
		{"/api/admin/voices/abc123/restore", "/api/admin/voices/:id/restore"},

		// Join request dismissal
		{"/api/admin/join-requests/abc123", "/api/admin/join-requests/:id"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizePath(tt.input))
		})
	}
}
