package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	service "github.com/harxxhilgg/univent/internal/services"
	pkgerrors "github.com/harxxhilgg/univent/pkg/errors"
)

type Handler struct {
	auth   service.AuthService
	events service.EventService
}

func NewHandler(auth service.AuthService, events service.EventService) *Handler {
	return &Handler{auth: auth, events: events}
}

type errorResponse struct {
	Message string `json:"message"`
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func (h *Handler) writeError(w http.ResponseWriter, status int, err error) {
	h.writeJSON(w, status, errorResponse{Message: err.Error()})
}

// statusFor maps domain errors onto the HTTP codes the mobile client
// branches on.
func statusFor(err error) int {
	switch {
	case errors.Is(err, pkgerrors.ErrMissingFields),
		errors.Is(err, pkgerrors.ErrInvalidInput),
		errors.Is(err, pkgerrors.ErrInvalidCredentials),
		errors.Is(err, pkgerrors.ErrEmailTaken),
		errors.Is(err, pkgerrors.ErrEventExists),
		errors.Is(err, pkgerrors.ErrUserNotFound):
		return http.StatusBadRequest
	case errors.Is(err, pkgerrors.ErrGuestRestricted):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
