package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/harxxhilgg/univent/internal/models"
	pkgerrors "github.com/harxxhilgg/univent/pkg/errors"
)

// maxImageSize bounds event image uploads at 10 MiB.
const maxImageSize = 10 << 20

func (h *Handler) RegisterEventRoutes(public, protected *mux.Router) {
	public.HandleFunc("/getAllEvents", h.GetAllEvents).Methods(http.MethodGet)
	public.HandleFunc("/user/{email}", h.GetEventsByUser).Methods(http.MethodGet)
	protected.HandleFunc("/create", h.CreateEvent).Methods(http.MethodPost)
	protected.HandleFunc("/upload", h.UploadImage).Methods(http.MethodPost)
}

func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var event models.Event
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	created, err := h.events.Create(r.Context(), event)
	if err != nil {
		h.writeError(w, statusFor(err), err)
		return
	}

	h.writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Event created successfully",
		"event":   created,
	})
}

func (h *Handler) GetAllEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.events.GetAll(r.Context())
	if err != nil {
		h.writeError(w, statusFor(err), err)
		return
	}
	if events == nil {
		events = []models.Event{}
	}
	h.writeJSON(w, http.StatusOK, events)
}

func (h *Handler) GetEventsByUser(w http.ResponseWriter, r *http.Request) {
	email := mux.Vars(r)["email"]

	events, err := h.events.GetByCreator(r.Context(), email)
	if err != nil {
		h.writeError(w, statusFor(err), err)
		return
	}
	if events == nil {
		events = []models.Event{}
	}
	h.writeJSON(w, http.StatusOK, events)
}

func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxImageSize); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, pkgerrors.ErrMissingFields)
		return
	}
	defer file.Close()

	image, err := io.ReadAll(io.LimitReader(file, maxImageSize))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	url, err := h.events.UploadImage(r.Context(), image, header.Filename)
	if err != nil {
		h.writeError(w, statusFor(err), err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"message": "Image uploaded successfully",
		"url":     url,
	})
}
