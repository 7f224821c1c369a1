package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/sciencehub/sciencehub-api/internal/posts"
	"github.com/sciencehub/sciencehub-api/internal/users"
	"github.com/sciencehub/sciencehub-api/pkg/logging"
)

// UserLister loads every profile.
type UserLister interface {
	List(ctx context.Context) ([]*users.User, error)
}

// PostLister loads the feed.
type PostLister interface {
	List(ctx context.Context, filter posts.ListFilter) ([]posts.Post, error)
}

// PortalHandler serves the data the web client needs on first load.
type PortalHandler struct {
	users  UserLister
	posts  PostLister
	logger *logging.Logger
}

// PortalResponse is the body of GET /portal.
type PortalResponse struct {
	Users []*users.User `json:"users"`
	Posts []posts.Post  `json:"posts"`
}

// NewPortalHandler creates a new portal handler.
func NewPortalHandler(u UserLister, p PostLister, logger *logging.Logger) *PortalHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &PortalHandler{users: u, posts: p, logger: logger}
}

// GetPortal handles GET /portal, loading users and posts concurrently.
func (h *PortalHandler) GetPortal(w http.ResponseWriter, r *http.Request) {
	var resp PortalResponse
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		list, err := h.users.List(ctx)
		resp.Users = list
		return err
	})
	g.Go(func() error {
		list, err := h.posts.List(ctx, posts.ListFilter{})
		resp.Posts = list
		return err
	})
	if err := g.Wait(); err != nil {
		h.logger.Error("failed to load portal", "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	if resp.Users == nil {
		resp.Users = []*users.User{}
	}
	if resp.Posts == nil {
		resp.Posts = []posts.Post{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func jsonError(w http.ResponseWriter, msg string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
