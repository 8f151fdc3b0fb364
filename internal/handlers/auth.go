package handlers

import (
	"net/http"
	"time"

	"tribune/internal/auth"
	"tribune/internal/identity"
	"tribune/internal/metrics"

	"github.com/rs/zerolog/log"
)

// signupRequest is the body for POST /api/signup.
type signupRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
}

// principalView is the principal shape returned to clients. The effective
// status is derived on the way out so clients never see the raw two-field
// representation without it.
type principalView struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	DisplayName  string     `json:"display_name"`
	Role         string     `json:"role"`
	Status       string     `json:"status"`
	TimeoutUntil *time.Time `json:"timeout_until,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

func viewOf(p *identity.Principal) principalView {
	status := identity.DeriveStatus(p, time.Now())
	v := principalView{
		ID:          p.ID,
		Email:       p.Email,
		DisplayName: p.DisplayName,
		Role:        string(p.Role),
		Status:      string(status.Kind),
		CreatedAt:   p.CreatedAt,
	}
	if status.Kind == identity.StatusTimedOut {
		v.TimeoutUntil = &status.Until
	}
	return v
}

// HandleSignup handles POST /api/signup. A successful signup logs the new
// member in immediately.
func (h *Handler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	err := decodeRequest(r, &req, map[string]*string{
		"email":        &req.Email,
		"display_name": &req.DisplayName,
		"password":     &req.Password,
	})
	if err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	p, err := h.auth.Signup(r.Context(), req.Email, req.DisplayName, req.Password)
	if err != nil {
		metrics.SignupsTotal.WithLabelValues("failure").Inc()
		writeDomainError(w, err)
		return
	}
	metrics.SignupsTotal.WithLabelValues("success").Inc()

	token, _, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		// Account exists but the session could not be issued; the client can
		// still log in normally.
		log.Error().Err(err).Str("user_id", p.ID).Msg("handlers: post-signup login failed")
		writeJSON(w, http.StatusCreated, viewOf(p))
		return
	}

	http.SetCookie(w, h.auth.SessionCookie(token))
	writeJSON(w, http.StatusCreated, viewOf(p))
}

// loginRequest is the body for POST /api/login.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin handles POST /api/login.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	err := decodeRequest(r, &req, map[string]*string{
		"email":    &req.Email,
		"password": &req.Password,
	})
	if err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	token, p, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		metrics.AuthLoginsTotal.WithLabelValues("failure").Inc()
		writeDomainError(w, err)
		return
	}
	metrics.AuthLoginsTotal.WithLabelValues("success").Inc()

	http.SetCookie(w, h.auth.SessionCookie(token))
	writeJSON(w, http.StatusOK, viewOf(p))
}

// HandleLogout handles POST /api/logout. Always succeeds so a stale cookie
// never traps the client.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(auth.SessionCookieName); err == nil && cookie.Value != "" {
		h.auth.Logout(r.Context(), cookie.Value)
	}
	http.SetCookie(w, h.auth.ClearedCookie())
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

// HandleMe handles GET /api/me.
func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, viewOf(p))
}

// HandleSuspendedPage handles GET /suspended, the page blocked principals are
// redirected to. Anonymous visitors see it too; they just have no standing to
// show.
func (h *Handler) HandleSuspendedPage(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{
		"status":  "blocked",
		"message": "Your account is suspended. Contact the society president if you believe this is a mistake.",
	}

	if p, err := auth.GetAuthenticatedPrincipal(r.Context()); err == nil {
		status := identity.DeriveStatus(p, time.Now())
		body["account_status"] = string(status.Kind)
		if status.Kind == identity.StatusTimedOut {
			body["timeout_until"] = status.Until
			body["message"] = "Your account is timed out until " + status.Until.Format(time.RFC1123) + "."
		}
	}

	writeJSON(w, http.StatusOK, body)
}
