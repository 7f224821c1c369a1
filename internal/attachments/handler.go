package attachments

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sciencehub/sciencehub-api/pkg/logging"
)

// multipartOverhead leaves room for form boundaries and headers.
const multipartOverhead = 1 << 20

// Handler serves uploads.
type Handler struct {
	store  *Store
	logger *logging.Logger
}

// NewHandler creates an uploads handler.
func NewHandler(store *Store, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{store: store, logger: logger}
}

// Upload handles POST /uploads with a multipart "file" field.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.store.MaxBytes()+multipartOverhead)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, ErrTooLarge.Error(), http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "missing file field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	obj, err := h.store.Upload(r.Context(), header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		switch {
		case errors.Is(err, ErrTooLarge):
			http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
		case errors.Is(err, ErrExtensionNotAllowed), errors.Is(err, ErrEmptyFile):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, ErrDisabled):
			http.Error(w, err.Error(), http.StatusNotFound)
		default:
			h.logger.Error("failed to store upload", "error", err)
			http.Error(w, "failed to store upload", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(obj)
}

// Download handles GET /uploads/*
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	key := "uploads/" + chi.URLParam(r, "*")
	body, contentType, err := h.store.Open(r.Context(), key)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	defer body.Close()

	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	w.Header().Set("Cache-Control", "public, max-age=86400")
	if _, err := io.Copy(w, body); err != nil {
		h.logger.Debug("download interrupted", "key", key, "error", err)
	}
}
