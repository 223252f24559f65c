package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	pkgerrors "github.com/harxxhilgg/univent/pkg/errors"
)

func (h *Handler) RegisterAuthRoutes(r *mux.Router) {
	r.HandleFunc("", h.authRoot).Methods(http.MethodGet)
	r.HandleFunc("/login", h.Login).Methods(http.MethodPost)
	r.HandleFunc("/signup", h.Signup).Methods(http.MethodPost)
	r.HandleFunc("/deleteAccount", h.DeleteAccount).Methods(http.MethodDelete)
}

func (h *Handler) authRoot(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"message": "Auth API is working!"})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	user, token, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(w, statusFor(err), err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"message": "Login successful",
		"token":   token,
		"user":    user,
	})
}

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	user, token, err := h.auth.Signup(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		h.writeError(w, statusFor(err), err)
		return
	}

	h.writeJSON(w, http.StatusCreated, map[string]any{
		"message": "User created successfully",
		"user":    user,
		"token":   token,
	})
}

func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := h.auth.DeleteAccount(r.Context(), req.Email); err != nil {
		if errors.Is(err, pkgerrors.ErrGuestRestricted) {
			h.writeError(w, http.StatusForbidden, err)
			return
		}
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"message": "Account deleted successfully"})
}
