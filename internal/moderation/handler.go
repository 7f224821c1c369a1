package moderation

import (
	"encoding/json"
	"net/http"

	"github.com/sciencehub/sciencehub-api/pkg/logging"
)

// maxPreviewBytes bounds the body accepted by the preview endpoint.
const maxPreviewBytes = 64 << 10

// MatchesHeader carries the number of masked words on mutating responses.
const MatchesHeader = "X-Moderation-Matches"

// Handler exposes the filter for client-side previews.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a moderation handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// CheckRequest is the body of POST /moderation/check.
type CheckRequest struct {
	Text string `json:"text"`
}

// Check handles POST /moderation/check
func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	var req CheckRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxPreviewBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("moderation: invalid request body", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	report := h.service.Check(r.Context(), req.Text)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}
