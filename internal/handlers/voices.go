package handlers

import (
	"net/http"
	"strings"

	"tribune/internal/auth"
	"tribune/internal/metrics"
	"tribune/internal/moderation"
)

// voiceRequest is the body for POST /api/voices.
type voiceRequest struct {
	Title     string `json:"title"`
	Body      string `json:"body"`
	MediaPath string `json:"media_path"`
}

// HandleFeed handles GET /api/feed, the public feed of visible voices.
func (h *Handler) HandleFeed(w http.ResponseWriter, r *http.Request) {
	voices, err := h.feed.ListVisible(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"voices": voices})
}

// HandleVoiceCreate handles POST /api/voices. Any member in good standing can
// publish; blocked principals never reach this handler.
func (h *Handler) HandleVoiceCreate(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	var req voiceRequest
	err := decodeRequest(r, &req, map[string]*string{
		"title":      &req.Title,
		"body":       &req.Body,
		"media_path": &req.MediaPath,
	})
	if err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if strings.TrimSpace(req.Title) == "" {
		writeError(w, "Title is required", http.StatusBadRequest)
		return
	}

	voice, err := h.moderation.Publish(r.Context(), p, req.Title, req.Body, req.MediaPath)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	metrics.VoicesPublishedTotal.Inc()
	writeJSON(w, http.StatusCreated, voice)
}

// HandleVoiceGet handles GET /api/voices/{id}. A voice that is hidden or
// under review is visible only to its author and to content moderators;
// everyone else gets a 404 indistinguishable from a missing voice.
func (h *Handler) HandleVoiceGet(w http.ResponseWriter, r *http.Request) {
	voice, err := h.moderationStore.GetVoice(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if voice.Hidden || voice.State != moderation.VoiceStateNormal {
		p, err := auth.GetAuthenticatedPrincipal(r.Context())
		if err != nil || (p.ID != voice.AuthorID && !h.policy.CanModerateContent(p)) {
			writeError(w, "Voice not found", http.StatusNotFound)
			return
		}
	}

	writeJSON(w, http.StatusOK, voice)
}

// HandleVoiceDelete handles DELETE /api/voices/{id}. The moderation service
// allows the author and the president.
func (h *Handler) HandleVoiceDelete(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	if err := h.moderation.Remove(r.Context(), p, r.PathValue("id")); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// reportRequest is the body for POST /api/voices/{id}/report.
type reportRequest struct {
	Reason string `json:"reason"`
}

// reportResponse is the body returned from report submission.
type reportResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// HandleReport handles POST /api/voices/{id}/report.
func (h *Handler) HandleReport(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	var req reportRequest
	err := decodeRequest(r, &req, map[string]*string{
		"reason": &req.Reason,
	})
	if err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.moderation.SubmitReport(r.Context(), p, r.PathValue("id"), req.Reason); err != nil {
		writeDomainError(w, err)
		return
	}

	metrics.ReportsTotal.Inc()
	writeJSON(w, http.StatusOK, reportResponse{
		Status:  "received",
		Message: "Thank you for your report. It will be reviewed.",
	})
}
