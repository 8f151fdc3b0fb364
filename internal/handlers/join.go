package handlers

import (
	"net/http"

	"tribune/internal/join"
	"tribune/internal/metrics"

	"github.com/rs/zerolog/log"
)

// joinRequestBody is the body for POST /api/join.
type joinRequestBody struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`

	// Website is a honeypot. Real clients never fill it.
	Website string `json:"website"`
}

// HandleJoinSubmit handles POST /api/join. Submission is unauthenticated.
func (h *Handler) HandleJoinSubmit(w http.ResponseWriter, r *http.Request) {
	var req joinRequestBody
	err := decodeRequest(r, &req, map[string]*string{
		"name":    &req.Name,
		"email":   &req.Email,
		"message": &req.Message,
		"website": &req.Website,
	})
	if err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	// Honeypot tripped: report success without storing so bots don't learn
	// they were caught.
	if req.Website != "" {
		log.Warn().Str("email", req.Email).Msg("handlers: join honeypot tripped")
		writeJSON(w, http.StatusOK, map[string]string{"status": "received"})
		return
	}

	_, err = h.join.Submit(r.Context(), join.Request{
		Name:    req.Name,
		Email:   req.Email,
		Message: req.Message,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	metrics.JoinRequestsTotal.Inc()
	writeJSON(w, http.StatusOK, map[string]string{"status": "received"})
}
