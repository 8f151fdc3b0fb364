// Package handlers implements the HTTP API. Handlers decode requests, call
// into the domain services and translate domain errors to HTTP status codes;
// authorization decisions stay inside the services.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"tribune/internal/accounts"
	"tribune/internal/auth"
	"tribune/internal/events"
	"tribune/internal/feed"
	"tribune/internal/identity"
	"tribune/internal/join"
	"tribune/internal/moderation"

	"github.com/rs/zerolog/log"
)

// Handler holds references to the services the HTTP layer calls into.
type Handler struct {
	auth     *auth.Service
	accounts *accounts.Service
	users    accounts.Store
	policy   *identity.Policy

	moderation      *moderation.Service
	moderationStore moderation.Store

	feed   *feed.Service
	events *events.Service
	join   *join.Service
}

// NewHandler creates a new Handler with the core identity services.
// Optional services are attached with the Set methods.
func NewHandler(authSvc *auth.Service, accountsSvc *accounts.Service, users accounts.Store, policy *identity.Policy) *Handler {
	return &Handler{
		auth:     authSvc,
		accounts: accountsSvc,
		users:    users,
		policy:   policy,
	}
}

// SetModeration attaches the moderation service and its store.
func (h *Handler) SetModeration(svc *moderation.Service, store moderation.Store) {
	h.moderation = svc
	h.moderationStore = store
}

// SetFeed attaches the feed service.
func (h *Handler) SetFeed(svc *feed.Service) {
	h.feed = svc
}

// SetEvents attaches the event service.
func (h *Handler) SetEvents(svc *events.Service) {
	h.events = svc
}

// SetJoin attaches the join request service.
func (h *Handler) SetJoin(svc *join.Service) {
	h.join = svc
}

// HandleHealthz reports liveness.
func (h *Handler) HandleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// isJSONRequest reports whether the request body is JSON.
func isJSONRequest(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}

// decodeRequest parses the body into dst from JSON, or from form fields via
// the fields map (form field name to string destination) for HTML clients.
func decodeRequest(r *http.Request, dst any, fields map[string]*string) error {
	if isJSONRequest(r) {
		return json.NewDecoder(r.Body).Decode(dst)
	}
	if err := r.ParseForm(); err != nil {
		return err
	}
	for name, p := range fields {
		*p = r.FormValue(name)
	}
	return nil
}

// writeJSON serializes v to the response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("handlers: failed to encode response")
	}
}

// errorResponse is the uniform error body.
type errorResponse struct {
	Error string `json:"error"`
}

// writeError writes a JSON error body with the given status.
func writeError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeDomainError maps a domain error to an HTTP status. Unrecognized errors
// are logged and reported as a generic 500 so internals never leak.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrUnauthenticated):
		writeError(w, "Authentication required", http.StatusUnauthorized)
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, "Invalid email or password", http.StatusUnauthorized)
	case errors.Is(err, auth.ErrEmailBanned):
		writeError(w, "This email address is banned", http.StatusForbidden)
	case errors.Is(err, auth.ErrBlocked):
		writeError(w, "This account is suspended", http.StatusForbidden)
	case errors.Is(err, identity.ErrProtectedTarget):
		writeError(w, "This account is protected and cannot be modified", http.StatusForbidden)
	case errors.Is(err, identity.ErrUnauthorized):
		writeError(w, "Permission denied", http.StatusForbidden)
	case errors.Is(err, accounts.ErrUserNotFound):
		writeError(w, "User not found", http.StatusNotFound)
	case errors.Is(err, moderation.ErrVoiceNotFound):
		writeError(w, "Voice not found", http.StatusNotFound)
	case errors.Is(err, events.ErrEventNotFound):
		writeError(w, "Event not found", http.StatusNotFound)
	case errors.Is(err, moderation.ErrSelfReport):
		writeError(w, "You cannot report your own voice", http.StatusBadRequest)
	case errors.Is(err, accounts.ErrInvalidTimeout):
		writeError(w, "Timeout must be a positive number of minutes", http.StatusBadRequest)
	case errors.Is(err, events.ErrInvalidEvent):
		writeError(w, "Title and start time are required", http.StatusBadRequest)
	case errors.Is(err, join.ErrInvalidRequest):
		writeError(w, "Name and a valid email address are required", http.StatusBadRequest)
	case errors.Is(err, accounts.ErrEmailTaken):
		writeError(w, "This email address is already registered", http.StatusConflict)
	case errors.Is(err, moderation.ErrAlreadyReported):
		writeError(w, "You have already reported this voice", http.StatusConflict)
	case errors.Is(err, moderation.ErrRateLimited):
		writeError(w, "Report rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
	default:
		log.Error().Err(err).Msg("handlers: unexpected error")
		writeError(w, "Internal server error", http.StatusInternalServerError)
	}
}

// requirePrincipal resolves the authenticated principal or writes a 401.
func requirePrincipal(w http.ResponseWriter, r *http.Request) (*identity.Principal, bool) {
	p, err := auth.GetAuthenticatedPrincipal(r.Context())
	if err != nil {
		writeError(w, "Authentication required", http.StatusUnauthorized)
		return nil, false
	}
	return p, true
}
