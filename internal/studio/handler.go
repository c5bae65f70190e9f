package studio

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/inamate/easel/internal/auth"
)

// LiveLog returns the in-memory opcode log of a studio that has an open
// room. ok is false when the studio is not live.
type LiveLog func(studioID string) (ops []string, ok bool)

type Handler struct {
	service *Service
	live    LiveLog
}

func NewHandler(service *Service, live LiveLog) *Handler {
	return &Handler{service: service, live: live}
}

type createRequest struct {
	Name       string `json:"name"`
	Passphrase string `json:"passphrase"`
}

type hostRequest struct {
	Passphrase string `json:"passphrase"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	studio, err := h.service.Create(r.Context(), req.Name, userID, req.Passphrase)
	if err != nil {
		slog.Error("create studio failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	writeJSON(w, http.StatusCreated, studio)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	studio, err := h.service.Get(r.Context(), mux.Vars(r)["studioId"])
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, studio)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	studios, err := h.service.List(r.Context(), userID)
	if err != nil {
		slog.Error("list studios failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, studios)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	err := h.service.Delete(r.Context(), mux.Vars(r)["studioId"], userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Host exchanges studio credentials for a host token.
func (h *Handler) Host(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	var req hostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	token, err := h.service.Host(r.Context(), mux.Vars(r)["studioId"], userID, req.Passphrase)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"token": token, "role": auth.RoleHost})
}

// Opcodes returns the studio's opcode log, live if a room is open.
func (h *Handler) Opcodes(w http.ResponseWriter, r *http.Request) {
	studioID := mux.Vars(r)["studioId"]

	var ops []string
	var live bool
	if h.live != nil {
		ops, live = h.live(studioID)
	}
	if !live {
		var err error
		if ops, err = h.service.Opcodes(r.Context(), studioID); err != nil {
			handleServiceError(w, err)
			return
		}
	}
	if ops == nil {
		ops = []string{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"opcodes": ops, "live": live})
}

func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, ErrForbidden):
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "forbidden"})
	default:
		slog.Error("service error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
