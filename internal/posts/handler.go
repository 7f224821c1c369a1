package posts

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/sciencehub/sciencehub-api/internal/moderation"
	"github.com/sciencehub/sciencehub-api/internal/users"
	"github.com/sciencehub/sciencehub-api/pkg/logging"
)

// ModerationHeader carries the number of masked words on mutating responses.
const ModerationHeader = moderation.MatchesHeader

// maxBodyBytes bounds every JSON body accepted by the posts routes.
const maxBodyBytes = 64 << 10

// Handler handles HTTP requests for posts
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a new posts handler
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// ListPosts handles GET /posts?tag=&q=&author_id=&limit=&offset=
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.list(w, r, filter)
}

// ListUserPosts handles GET /users/{userID}/posts
func (h *Handler) ListUserPosts(w http.ResponseWriter, r *http.Request) {
	id, ok := users.ParseID(r, "userID")
	if !ok {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}
	filter, err := parseFilter(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if _, err := h.service.authors.Get(r.Context(), id); err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		h.logger.Error("failed to load user", "error", err, "user_id", id)
		http.Error(w, "failed to load user", http.StatusInternalServerError)
		return
	}
	filter.AuthorID = id
	h.list(w, r, filter)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, filter ListFilter) {
	list, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list posts", "error", err)
		http.Error(w, "failed to list posts", http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []Post{}
	}
	writeJSON(w, http.StatusOK, list)
}

// GetPost handles GET /posts/{postID}
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	id, ok := users.ParseID(r, "postID")
	if !ok {
		http.Error(w, "invalid post id", http.StatusBadRequest)
		return
	}
	p, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err, "failed to load post")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// CreatePost handles POST /posts
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req CreatePostRequest
	if !h.decode(w, r, &req) {
		return
	}

	p, matches, err := h.service.Create(r.Context(), &req)
	if err != nil {
		h.writeError(w, err, "failed to create post")
		return
	}

	h.logger.Info("post created", "post_id", p.ID, "author_id", p.Author.ID, "masked", matches)
	w.Header().Set(ModerationHeader, strconv.Itoa(matches))
	writeJSON(w, http.StatusCreated, p)
}

// UpdatePost handles PUT /posts/{postID}
func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	id, ok := users.ParseID(r, "postID")
	if !ok {
		http.Error(w, "invalid post id", http.StatusBadRequest)
		return
	}
	var req UpdatePostRequest
	if !h.decode(w, r, &req) {
		return
	}

	p, matches, err := h.service.Update(r.Context(), id, &req)
	if err != nil {
		h.writeError(w, err, "failed to update post")
		return
	}
	w.Header().Set(ModerationHeader, strconv.Itoa(matches))
	writeJSON(w, http.StatusOK, p)
}

// DeletePost handles DELETE /posts/{postID}
func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	id, ok := users.ParseID(r, "postID")
	if !ok {
		http.Error(w, "invalid post id", http.StatusBadRequest)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.writeError(w, err, "failed to delete post")
		return
	}
	h.logger.Info("post deleted", "post_id", id)
	w.WriteHeader(http.StatusNoContent)
}

// LikePost handles POST /posts/{postID}/like
func (h *Handler) LikePost(w http.ResponseWriter, r *http.Request) {
	id, ok := users.ParseID(r, "postID")
	if !ok {
		http.Error(w, "invalid post id", http.StatusBadRequest)
		return
	}
	var req LikeRequest
	if !h.decode(w, r, &req) {
		return
	}
	p, err := h.service.Like(r.Context(), id, req.Direction)
	if err != nil {
		h.writeError(w, err, "failed to like post")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// SharePost handles POST /posts/{postID}/share. An empty body registers a
// share.
func (h *Handler) SharePost(w http.ResponseWriter, r *http.Request) {
	id, ok := users.ParseID(r, "postID")
	if !ok {
		http.Error(w, "invalid post id", http.StatusBadRequest)
		return
	}
	var req ShareRequest
	if r.ContentLength != 0 && !h.decode(w, r, &req) {
		return
	}
	increment := req.Increment == nil || *req.Increment

	p, err := h.service.Share(r.Context(), id, increment)
	if err != nil {
		h.writeError(w, err, "failed to share post")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// AddComment handles POST /posts/{postID}/comments
func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
	id, ok := users.ParseID(r, "postID")
	if !ok {
		http.Error(w, "invalid post id", http.StatusBadRequest)
		return
	}
	var req CommentRequest
	if !h.decode(w, r, &req) {
		return
	}

	p, matches, err := h.service.AddComment(r.Context(), id, &req)
	if err != nil {
		h.writeError(w, err, "failed to add comment")
		return
	}
	w.Header().Set(ModerationHeader, strconv.Itoa(matches))
	writeJSON(w, http.StatusOK, p)
}

// ListTags handles GET /tags
func (h *Handler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.service.Tags(r.Context())
	if err != nil {
		h.logger.Error("failed to list tags", "error", err)
		http.Error(w, "failed to list tags", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, tags)
}

func parseFilter(r *http.Request) (ListFilter, error) {
	q := r.URL.Query()
	filter := ListFilter{
		Tags:  q["tag"],
		Query: q.Get("q"),
	}
	ints := []struct {
		name string
		dst  *int
	}{
		{"limit", &filter.Limit},
		{"offset", &filter.Offset},
	}
	for _, p := range ints {
		raw := q.Get(p.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return ListFilter{}, errors.New(p.name + " must be a non-negative integer")
		}
		*p.dst = n
	}
	if raw := q.Get("author_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id < 1 {
			return ListFilter{}, ErrInvalidAuthor
		}
		filter.AuthorID = id
	}
	return filter, nil
}

// decode reads a JSON body capped at maxBodyBytes. It writes the error
// response itself and reports whether the handler should continue.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil {
		return true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		h.logger.Warn("request body too large", "path", r.URL.Path, "limit", tooLarge.Limit)
		http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
		return false
	}
	h.logger.Warn("failed to decode request", "error", err)
	http.Error(w, "Invalid request body", http.StatusBadRequest)
	return false
}

func (h *Handler) writeError(w http.ResponseWriter, err error, msg string) {
	switch {
	case errors.Is(err, ErrPostNotFound), errors.Is(err, ErrAuthorNotFound):
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
