package handlers

import (
	"context"
	"net/http"
	"strconv"

	"tribune/internal/identity"
	"tribune/internal/metrics"
	"tribune/internal/tracing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/rs/zerolog/log"
)

// requirePresident resolves the principal and checks the user-management role.
func (h *Handler) requirePresident(w http.ResponseWriter, r *http.Request) (*identity.Principal, bool) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return nil, false
	}
	if !h.policy.CanManageUsers(p) {
		log.Warn().Str("user_id", p.ID).Str("path", r.URL.Path).Msg("handlers: denied, insufficient role")
		writeError(w, "Permission denied", http.StatusForbidden)
		return nil, false
	}
	return p, true
}

// moderationAction wraps an administrative mutation in a trace span and bumps
// the per-action counter on success.
func moderationAction(ctx context.Context, action, targetID, actorID string, fn func(context.Context) error) error {
	ctx, span := tracing.ModerationSpan(ctx, action, targetID, actorID)
	err := fn(ctx)
	tracing.EndWithError(span, err)
	if err == nil {
		metrics.ModerationActionsTotal.WithLabelValues(action).Inc()
	}
	return err
}

// HandleAdminUserList handles GET /api/admin/users.
func (h *Handler) HandleAdminUserList(w http.ResponseWriter, r *http.Request) {
	_, ok := h.requirePresident(w, r)
	if !ok {
		return
	}

	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	views := make([]principalView, 0, len(users))
	for i := range users {
		views = append(views, viewOf(&users[i]))
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": views})
}

// HandleSuspendUser handles POST /api/admin/users/{id}/suspend.
func (h *Handler) HandleSuspendUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	targetID := r.PathValue("id")

	err := moderationAction(r.Context(), "suspend_user", targetID, actor.ID, func(ctx context.Context) error {
		return h.accounts.Suspend(ctx, actor, targetID)
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "suspended"})
}

// timeoutRequest is the body for POST /api/admin/users/{id}/timeout.
type timeoutRequest struct {
	Minutes int `json:"minutes"`
}

// HandleTimeoutUser handles POST /api/admin/users/{id}/timeout.
func (h *Handler) HandleTimeoutUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	targetID := r.PathValue("id")

	var req timeoutRequest
	var minutes string
	if err := decodeRequest(r, &req, map[string]*string{"minutes": &minutes}); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if minutes != "" {
		parsed, err := strconv.Atoi(minutes)
		if err != nil {
			writeError(w, "Invalid minutes value", http.StatusBadRequest)
			return
		}
		req.Minutes = parsed
	}

	err := moderationAction(r.Context(), "timeout_user", targetID, actor.ID, func(ctx context.Context) error {
		return h.accounts.Timeout(ctx, actor, targetID, req.Minutes)
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "timed_out"})
}

// HandleRestoreUser handles POST /api/admin/users/{id}/restore.
func (h *Handler) HandleRestoreUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	targetID := r.PathValue("id")

	err := moderationAction(r.Context(), "restore_user", targetID, actor.ID, func(ctx context.Context) error {
		return h.accounts.Restore(ctx, actor, targetID)
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "restored"})
}

// roleRequest is the body for POST /api/admin/users/{id}/role.
type roleRequest struct {
	Role string `json:"role"`
}

// HandleUpdateRole handles POST /api/admin/users/{id}/role.
func (h *Handler) HandleUpdateRole(w http.ResponseWriter, r *http.Request) {
	actor, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	targetID := r.PathValue("id")

	var req roleRequest
	if err := decodeRequest(r, &req, map[string]*string{"role": &req.Role}); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	role := identity.Role(req.Role)
	if !role.Valid() {
		writeError(w, "Unknown role", http.StatusBadRequest)
		return
	}

	err := moderationAction(r.Context(), "update_role", targetID, actor.ID, func(ctx context.Context) error {
		return h.accounts.UpdateRole(ctx, actor, targetID, role)
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "role_updated", "role": req.Role})
}

// HandleDeleteUser handles DELETE /api/admin/users/{id}.
func (h *Handler) HandleDeleteUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	targetID := r.PathValue("id")

	err := moderationAction(r.Context(), "delete_user", targetID, actor.ID, func(ctx context.Context) error {
		return h.accounts.PermanentlyDelete(ctx, actor, targetID)
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// HandleHideVoice handles POST /api/admin/voices/{id}/hide.
func (h *Handler) HandleHideVoice(w http.ResponseWriter, r *http.Request) {
	h.handleSetVoiceHidden(w, r, true)
}

// HandleUnhideVoice handles POST /api/admin/voices/{id}/unhide.
func (h *Handler) HandleUnhideVoice(w http.ResponseWriter, r *http.Request) {
	h.handleSetVoiceHidden(w, r, false)
}

func (h *Handler) handleSetVoiceHidden(w http.ResponseWriter, r *http.Request, hidden bool) {
	actor, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	voiceID := r.PathValue("id")

	action := "hide_voice"
	status := "hidden"
	if !hidden {
		action = "unhide_voice"
		status = "visible"
	}

	err := moderationAction(r.Context(), action, voiceID, actor.ID, func(ctx context.Context) error {
		return h.moderation.SetHidden(ctx, actor, voiceID, hidden)
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": status})
}

// HandleRestoreVoice handles POST /api/admin/voices/{id}/restore. Moves the
// voice out of review and clears its reports.
func (h *Handler) HandleRestoreVoice(w http.ResponseWriter, r *http.Request) {
	actor, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	voiceID := r.PathValue("id")

	err := moderationAction(r.Context(), "restore_voice", voiceID, actor.ID, func(ctx context.Context) error {
		return h.moderation.Restore(ctx, actor, voiceID)
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "restored"})
}

// HandleAuditLog handles GET /api/admin/audit.
func (h *Handler) HandleAuditLog(w http.ResponseWriter, r *http.Request) {
	_, ok := h.requirePresident(w, r)
	if !ok {
		return
	}

	entries, err := h.moderationStore.ListAuditLog(r.Context(), 100)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

// HandleBanList handles GET /api/admin/bans.
func (h *Handler) HandleBanList(w http.ResponseWriter, r *http.Request) {
	_, ok := h.requirePresident(w, r)
	if !ok {
		return
	}

	bans, err := h.users.ListBans(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bans": bans})
}

// adminStats is the body for GET /api/admin/stats.
type adminStats struct {
	RegisteredUsers     int `json:"registered_users"`
	BlockedUsers        int `json:"blocked_users"`
	BannedEmails        int `json:"banned_emails"`
	Voices              int `json:"voices"`
	VoicesUnderReview   int `json:"voices_under_review"`
	PendingJoinRequests int `json:"pending_join_requests"`
}

// HandleAdminStats handles GET /api/admin/stats. Reads the gauges the metrics
// collector maintains rather than re-querying the stores.
func (h *Handler) HandleAdminStats(w http.ResponseWriter, r *http.Request) {
	_, ok := h.requirePresident(w, r)
	if !ok {
		return
	}

	stats := adminStats{
		RegisteredUsers:     int(getGaugeValue(metrics.RegisteredUsersTotal)),
		BlockedUsers:        int(getGaugeValue(metrics.BlockedUsersTotal)),
		BannedEmails:        int(getGaugeValue(metrics.BannedEmailsTotal)),
		Voices:              int(getGaugeValue(metrics.VoicesTotal)),
		VoicesUnderReview:   int(getGaugeValue(metrics.VoicesUnderReview)),
		PendingJoinRequests: int(getGaugeValue(metrics.JoinRequestsPending)),
	}
	writeJSON(w, http.StatusOK, stats)
}

// getGaugeValue reads the current value of a prometheus.Gauge.
func getGaugeValue(g prometheus.Gauge) float64 {
	m := &dto.Metric{}
	if err := g.Write(m); err != nil {
		return 0
	}
	if m.Gauge != nil {
		return m.GetGauge().GetValue()
	}
	return 0
}

// HandleJoinRequestList handles GET /api/admin/join-requests.
func (h *Handler) HandleJoinRequestList(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	reqs, err := h.join.List(r.Context(), p)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"requests": reqs})
}

// HandleJoinRequestDismiss handles DELETE /api/admin/join-requests/{id}.
func (h *Handler) HandleJoinRequestDismiss(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	if err := h.join.Dismiss(r.Context(), p, r.PathValue("id")); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "dismissed"})
}
