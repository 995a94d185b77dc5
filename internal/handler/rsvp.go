package handler

import (
	"net/http"

	"github.com/gatherpoint/gatherpoint/internal/middleware"
	"github.com/gatherpoint/gatherpoint/internal/service"
	"github.com/go-chi/chi/v5"
)

// RSVPHandler holds the HTTP handlers for reservation endpoints.
type RSVPHandler struct {
	svc *service.ReservationService
}

// NewRSVPHandler constructs an RSVPHandler.
func NewRSVPHandler(svc *service.ReservationService) *RSVPHandler {
	return &RSVPHandler{svc: svc}
}

// Join handles POST /api/rsvp/{eventId}
// Performs a concurrency-safe reservation for the specified event.
func (h *RSVPHandler) Join(w http.ResponseWriter, r *http.Request) {
	event, err := h.svc.Join(r.Context(), chi.URLParam(r, "eventId"), middleware.GetUserID(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, event)
}

// Leave handles DELETE /api/rsvp/{eventId}
// Cancels the caller's reservation, freeing one seat.
func (h *RSVPHandler) Leave(w http.ResponseWriter, r *http.Request) {
	event, err := h.svc.Leave(r.Context(), chi.URLParam(r, "eventId"), middleware.GetUserID(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}
