package accounts

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sciencehub/sciencehub-api/internal/http/middleware"
	"github.com/sciencehub/sciencehub-api/internal/users"
	"github.com/sciencehub/sciencehub-api/pkg/logging"
)

// maxBodyBytes bounds the JSON accepted by register and login.
const maxBodyBytes = 64 << 10

// Handler exposes registration and login.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates an accounts handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// Register handles POST /auth/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeBody(w, r, &req) {
		return
	}
	session, err := h.service.Register(r.Context(), &req)
	if err != nil {
		h.writeError(w, err, "failed to register")
		return
	}
	h.logger.Info("account registered", "user_id", session.User.ID)
	writeJSON(w, http.StatusCreated, session)
}

// Login handles POST /auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	session, err := h.service.Login(r.Context(), &req)
	if err != nil {
		h.writeError(w, err, "failed to log in")
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// EmailExists handles GET /auth/email-exists?email=
func (h *Handler) EmailExists(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		http.Error(w, ErrInvalidEmail.Error(), http.StatusBadRequest)
		return
	}
	exists, err := h.service.EmailExists(r.Context(), email)
	if err != nil {
		h.writeError(w, err, "failed to check email")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"exists": exists})
}

// Me handles GET /auth/me behind middleware.BearerJWT
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}
	id, err := SubjectUserID(claims)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}
	user, err := h.service.Me(r.Context(), id)
	if err != nil {
		h.writeError(w, err, "failed to load profile")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) writeError(w http.ResponseWriter, err error, msg string) {
	switch {
	case errors.Is(err, ErrEmailTaken):
		http.Error(w, err.Error(), http.StatusConflict)
	case IsCredentials(err):
		http.Error(w, err.Error(), http.StatusUnauthorized)
	case IsValidation(err), users.IsValidation(err):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, users.ErrUserNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		h.logger.Error(msg, "error", err)
		http.Error(w, msg, http.StatusInternalServerError)
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
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
	http.Error(w, "Invalid request body", http.StatusBadRequest)
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
