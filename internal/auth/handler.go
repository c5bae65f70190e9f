package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/mail"
)

const minPasswordLen = 8

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type credentials struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName,omitempty"`
}

// check returns a client-facing complaint about c, or "" if it is usable.
func (c credentials) check(signup bool) string {
	switch {
	case c.Email == "" || c.Password == "":
		return "email and password are required"
	case !signup:
		return ""
	case c.DisplayName == "":
		return "displayName is required"
	case len(c.Password) < minPasswordLen:
		return "password must be at least 8 characters"
	}
	if _, err := mail.ParseAddress(c.Email); err != nil {
		return "invalid email address"
	}
	return ""
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	c, ok := readCredentials(w, r, true)
	if !ok {
		return
	}
	result, err := h.service.Register(r.Context(), c.Email, c.Password, c.DisplayName)
	if err != nil {
		fail(w, "register", err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	c, ok := readCredentials(w, r, false)
	if !ok {
		return
	}
	result, err := h.service.Login(r.Context(), c.Email, c.Password)
	if err != nil {
		fail(w, "login", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Me returns the authenticated user.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetUser(r.Context(), UserIDFromContext(r.Context()))
	if err != nil {
		fail(w, "get user", err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func readCredentials(w http.ResponseWriter, r *http.Request, signup bool) (credentials, bool) {
	var c credentials
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return c, false
	}
	if msg := c.check(signup); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return c, false
	}
	return c, true
}

// fail maps a service error onto a response. Unknown errors are logged and
// hidden from the client.
func fail(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrEmailTaken):
		writeError(w, http.StatusConflict, ErrEmailTaken.Error())
	case errors.Is(err, ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, ErrInvalidCredentials.Error())
	case errors.Is(err, ErrUserNotFound):
		writeError(w, http.StatusNotFound, ErrUserNotFound.Error())
	default:
		slog.Error(op+" failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
