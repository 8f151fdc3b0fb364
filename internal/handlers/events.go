package handlers

import (
	"net/http"
	"time"

	"tribune/internal/events"
	"tribune/internal/metrics"
)

// eventRequest is the body for POST /api/events.
type eventRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Location    string `json:"location"`
	StartsAt    string `json:"starts_at"`
}

// HandleEventList handles GET /api/events.
func (h *Handler) HandleEventList(w http.ResponseWriter, r *http.Request) {
	list, err := h.events.List(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": list})
}

// HandleEventCreate handles POST /api/events. Restricted to media managers
// and the president by the event service.
func (h *Handler) HandleEventCreate(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	var req eventRequest
	err := decodeRequest(r, &req, map[string]*string{
		"title":       &req.Title,
		"description": &req.Description,
		"location":    &req.Location,
		"starts_at":   &req.StartsAt,
	})
	if err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	startsAt, err := time.Parse(time.RFC3339, req.StartsAt)
	if err != nil {
		writeError(w, "starts_at must be an RFC 3339 timestamp", http.StatusBadRequest)
		return
	}

	ev, err := h.events.Create(r.Context(), p, events.Event{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		StartsAt:    startsAt,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	metrics.EventsCreatedTotal.Inc()
	writeJSON(w, http.StatusCreated, ev)
}

// HandleEventDelete handles DELETE /api/events/{id}.
func (h *Handler) HandleEventDelete(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	if err := h.events.Delete(r.Context(), p, r.PathValue("id")); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
