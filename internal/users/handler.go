package users

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sciencehub/sciencehub-api/internal/moderation"
	"github.com/sciencehub/sciencehub-api/pkg/logging"
)

// maxBodyBytes bounds the profile JSON accepted by POST and PATCH.
const maxBodyBytes = 64 << 10

// Handler handles HTTP requests for users
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a new users handler
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// ParseID reads a positive integer id from a chi URL parameter.
func ParseID(r *http.Request, param string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

// ListUsers handles GET /users
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list users", "error", err)
		http.Error(w, "failed to list users", http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []*User{}
	}
	writeJSON(w, http.StatusOK, list)
}

// GetUser handles GET /users/{userID}
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseID(r, "userID")
	if !ok {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}
	u, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err, "failed to load user")
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// CreateUser handles POST /users
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if !h.decode(w, r, &req) {
		return
	}

	u, matches, err := h.service.Create(r.Context(), &req)
	if err != nil {
		h.writeError(w, err, "failed to create user")
		return
	}

	h.logger.Info("user created", "user_id", u.ID, "masked", matches)
	w.Header().Set(moderation.MatchesHeader, strconv.Itoa(matches))
	writeJSON(w, http.StatusCreated, u)
}

// UpdateUser handles PATCH /users/{userID}
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseID(r, "userID")
	if !ok {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}
	var req UpdateUserRequest
	if !h.decode(w, r, &req) {
		return
	}

	u, matches, err := h.service.Update(r.Context(), id, &req)
	if err != nil {
		h.writeError(w, err, "failed to update user")
		return
	}
	w.Header().Set(moderation.MatchesHeader, strconv.Itoa(matches))
	writeJSON(w, http.StatusOK, u)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil {
		return true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
		return false
	}
	h.logger.Error("failed to decode request", "error", err)
	http.Error(w, "Invalid request body", http.StatusBadRequest)
	return false
}

func (h *Handler) writeError(w http.ResponseWriter, err error, msg string) {
	switch {
	case errors.Is(err, ErrUserNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case IsValidation(err):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		h.logger.Error(msg, "error", err)
		http.Error(w, msg, http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
