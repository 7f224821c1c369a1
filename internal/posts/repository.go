package posts

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Repository defines the interface for post storage
type Repository interface {
	List(ctx context.Context) ([]*Record, error)
	Get(ctx context.Context, id int64) (*Record, error)
	Create(ctx context.Context, rec *Record) (*Record, error)
	Update(ctx context.Context, id int64, content string, tags []string) (*Record, error)
	Delete(ctx context.Context, id int64) error
	AdjustLikes(ctx context.Context, id int64, delta int) (*Record, error)
	AdjustShares(ctx context.Context, id int64, delta int) (*Record, error)
	AddComment(ctx context.Context, c *CommentRecord) (*CommentRecord, error)
	ListComments(ctx context.Context, postIDs []int64) (map[int64][]*CommentRecord, error)
}

// InMemoryRepository keeps posts and comments in maps.
type InMemoryRepository struct {
	mu            sync.RWMutex
	posts         map[int64]*Record
	comments      map[int64][]*CommentRecord
	nextPostID    int64
	nextCommentID int64
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		posts:         make(map[int64]*Record),
		comments:      make(map[int64][]*CommentRecord),
		nextPostID:    1,
		nextCommentID: 1,
	}
}

// List returns posts newest first.
func (r *InMemoryRepository) List(ctx context.Context) ([]*Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Record, 0, len(r.posts))
	for _, p := range r.posts {
		out = append(out, p.clone())
	}
	sortNewestFirst(out)
	return out, nil
}

// Get retrieves a post by ID
func (r *InMemoryRepository) Get(ctx context.Context, id int64) (*Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.posts[id]
	if !ok {
		return nil, ErrPostNotFound
	}
	return p.clone(), nil
}

// Create stores rec under a new id. A zero timestamp is set to now.
func (r *InMemoryRepository) Create(ctx context.Context, rec *Record) (*Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := rec.clone()
	p.ID = r.nextPostID
	if p.Timestamp.IsZero() {
		p.Timestamp = time.Now().UTC()
	}
	r.nextPostID++
	r.posts[p.ID] = p
	return p.clone(), nil
}

// Update replaces content and tags.
func (r *InMemoryRepository) Update(ctx context.Context, id int64, content string, tags []string) (*Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.posts[id]
	if !ok {
		return nil, ErrPostNotFound
	}
	p.Content = content
	p.Tags = append([]string{}, tags...)
	return p.clone(), nil
}

// Delete removes a post and its comments.
func (r *InMemoryRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.posts[id]; !ok {
		return ErrPostNotFound
	}
	delete(r.posts, id)
	delete(r.comments, id)
	return nil
}

// AdjustLikes adds delta to the like counter without going below zero.
func (r *InMemoryRepository) AdjustLikes(ctx context.Context, id int64, delta int) (*Record, error) {
	return r.adjust(id, func(p *Record) { p.Likes = max(0, p.Likes+delta) })
}

// AdjustShares adds delta to the share counter without going below zero.
func (r *InMemoryRepository) AdjustShares(ctx context.Context, id int64, delta int) (*Record, error) {
	return r.adjust(id, func(p *Record) { p.Shares = max(0, p.Shares+delta) })
}

func (r *InMemoryRepository) adjust(id int64, fn func(*Record)) (*Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.posts[id]
	if !ok {
		return nil, ErrPostNotFound
	}
	fn(p)
	return p.clone(), nil
}

// AddComment appends a comment to an existing post.
func (r *InMemoryRepository) AddComment(ctx context.Context, c *CommentRecord) (*CommentRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.posts[c.PostID]; !ok {
		return nil, ErrPostNotFound
	}
	stored := *c
	stored.ID = r.nextCommentID
	if stored.Timestamp.IsZero() {
		stored.Timestamp = time.Now().UTC()
	}
	r.nextCommentID++
	r.comments[c.PostID] = append(r.comments[c.PostID], &stored)
	out := stored
	return &out, nil
}

// ListComments groups comments by post, newest first.
func (r *InMemoryRepository) ListComments(ctx context.Context, postIDs []int64) (map[int64][]*CommentRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[int64][]*CommentRecord, len(postIDs))
	for _, id := range postIDs {
		src := r.comments[id]
		if len(src) == 0 {
			continue
		}
		list := make([]*CommentRecord, 0, len(src))
		for _, c := range src {
			cc := *c
			list = append(list, &cc)
		}
		sort.SliceStable(list, func(i, j int) bool {
			if list[i].Timestamp.Equal(list[j].Timestamp) {
				return list[i].ID > list[j].ID
			}
			return list[i].Timestamp.After(list[j].Timestamp)
		})
		out[id] = list
	}
	return out, nil
}

func sortNewestFirst(list []*Record) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Timestamp.Equal(list[j].Timestamp) {
			return list[i].ID > list[j].ID
		}
		return list[i].Timestamp.After(list[j].Timestamp)
	})
}
