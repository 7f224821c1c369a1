package posts

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/text/cases"

	"github.com/sciencehub/sciencehub-api/internal/moderation"
	"github.com/sciencehub/sciencehub-api/internal/users"
	"github.com/sciencehub/sciencehub-api/pkg/logging"
)

var postsTracer = otel.Tracer("sciencehub.internal.posts")

// MaxListLimit caps the limit query parameter.
const MaxListLimit = 100

// Live feed event types.
const (
	EventCreated   = "post.created"
	EventUpdated   = "post.updated"
	EventDeleted   = "post.deleted"
	EventLiked     = "post.liked"
	EventShared    = "post.shared"
	EventCommented = "post.commented"
)

// AuthorDirectory resolves author ids. *users.Service satisfies it.
type AuthorDirectory interface {
	Get(ctx context.Context, id int64) (*users.User, error)
}

// FeedCache stores the fully resolved, unfiltered feed.
type FeedCache interface {
	Get(ctx context.Context, dst any) (bool, error)
	Set(ctx context.Context, v any) error
	Invalidate(ctx context.Context) error
}

// EventPublisher fans out post mutations to live subscribers.
type EventPublisher interface {
	Publish(eventType string, postID int64, payload any)
}

// Option configures optional collaborators of a Service.
type Option func(*Service)

// WithCache enables the feed cache.
func WithCache(c FeedCache) Option {
	return func(s *Service) { s.cache = c }
}

// WithEvents enables live feed broadcasts.
func WithEvents(p EventPublisher) Option {
	return func(s *Service) { s.events = p }
}

// WithLogger overrides the default logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// Service implements the post workflows on top of a Repository.
type Service struct {
	repo      Repository
	authors   AuthorDirectory
	moderator *moderation.Service
	cache     FeedCache
	events    EventPublisher
	logger    *logging.Logger
}

// NewService creates a post service.
func NewService(repo Repository, authors AuthorDirectory, moderator *moderation.Service, opts ...Option) *Service {
	if repo == nil {
		panic("posts: repository required")
	}
	if authors == nil {
		panic("posts: author directory required")
	}
	s := &Service{
		repo:      repo,
		authors:   authors,
		moderator: moderator,
		logger:    logging.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns the feed narrowed by filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Post, error) {
	ctx, span := postsTracer.Start(ctx, "posts.list")
	defer span.End()

	all, err := s.feed(ctx)
	if err != nil {
		return nil, err
	}
	out := applyFilter(all, filter)
	span.SetAttributes(
		attribute.Int("posts.total", len(all)),
		attribute.Int("posts.returned", len(out)),
	)
	return out, nil
}

// Get returns one resolved post.
func (s *Service) Get(ctx context.Context, id int64) (*Post, error) {
	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.resolveOne(ctx, rec)
}

// Create validates, masks and stores a new post. The int result is the number
// of masked words across content and tags.
func (s *Service) Create(ctx context.Context, req *CreatePostRequest) (*Post, int, error) {
	ctx, span := postsTracer.Start(ctx, "posts.create")
	defer span.End()

	if err := req.Validate(); err != nil {
		return nil, 0, err
	}
	if err := s.requireAuthor(ctx, req.AuthorID); err != nil {
		return nil, 0, err
	}

	content, contentMatches := s.moderator.Clean(ctx, moderation.FieldPostContent, req.Content)
	tags, tagMatches := s.moderator.CleanTags(ctx, req.Tags)
	matches := contentMatches + tagMatches
	span.SetAttributes(attribute.Int("moderation.matches", matches))

	rec, err := s.repo.Create(ctx, &Record{
		AuthorID: req.AuthorID,
		Content:  strings.TrimSpace(content),
		Tags:     tags,
		Images:   compact(req.Images),
	})
	if err != nil {
		return nil, 0, err
	}
	post, err := s.afterMutation(ctx, EventCreated, rec)
	return post, matches, err
}

// Update replaces content and tags of an existing post.
func (s *Service) Update(ctx context.Context, id int64, req *UpdatePostRequest) (*Post, int, error) {
	ctx, span := postsTracer.Start(ctx, "posts.update")
	defer span.End()
	span.SetAttributes(attribute.Int64("post.id", id))

	if err := req.Validate(); err != nil {
		return nil, 0, err
	}
	content, contentMatches := s.moderator.Clean(ctx, moderation.FieldPostContent, req.Content)
	tags, tagMatches := s.moderator.CleanTags(ctx, req.Tags)
	matches := contentMatches + tagMatches

	rec, err := s.repo.Update(ctx, id, strings.TrimSpace(content), tags)
	if err != nil {
		return nil, 0, err
	}
	post, err := s.afterMutation(ctx, EventUpdated, rec)
	return post, matches, err
}

// Delete removes a post and its comments.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	s.publish(EventDeleted, id, nil)
	return nil
}

// Like moves the like counter one step in direction.
func (s *Service) Like(ctx context.Context, id int64, direction string) (*Post, error) {
	var delta int
	switch direction {
	case DirectionLike:
		delta = 1
	case DirectionUnlike:
		delta = -1
	default:
		return nil, ErrInvalidDirection
	}
	rec, err := s.repo.AdjustLikes(ctx, id, delta)
	if err != nil {
		return nil, err
	}
	return s.afterMutation(ctx, EventLiked, rec)
}

// Share registers or withdraws a share.
func (s *Service) Share(ctx context.Context, id int64, increment bool) (*Post, error) {
	delta := 1
	if !increment {
		delta = -1
	}
	rec, err := s.repo.AdjustShares(ctx, id, delta)
	if err != nil {
		return nil, err
	}
	return s.afterMutation(ctx, EventShared, rec)
}

// AddComment masks and stores a comment, returning the updated post.
func (s *Service) AddComment(ctx context.Context, postID int64, req *CommentRequest) (*Post, int, error) {
	ctx, span := postsTracer.Start(ctx, "posts.add_comment")
	defer span.End()
	span.SetAttributes(attribute.Int64("post.id", postID))

	if err := req.Validate(); err != nil {
		return nil, 0, err
	}
	if _, err := s.repo.Get(ctx, postID); err != nil {
		return nil, 0, err
	}
	if err := s.requireAuthor(ctx, req.AuthorID); err != nil {
		return nil, 0, err
	}

	content, matches := s.moderator.Clean(ctx, moderation.FieldCommentContent, req.Content)
	if _, err := s.repo.AddComment(ctx, &CommentRecord{
		PostID:   postID,
		AuthorID: req.AuthorID,
		Content:  strings.TrimSpace(content),
	}); err != nil {
		return nil, 0, err
	}
	rec, err := s.repo.Get(ctx, postID)
	if err != nil {
		return nil, 0, err
	}
	post, err := s.afterMutation(ctx, EventCommented, rec)
	return post, matches, err
}

// Tags counts posts per folded tag, most used first.
func (s *Service) Tags(ctx context.Context) ([]TagCount, error) {
	recs, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	fold := cases.Fold()
	counts := make(map[string]int)
	display := make(map[string]string)
	for _, rec := range recs {
		seen := make(map[string]struct{}, len(rec.Tags))
		for _, tag := range rec.Tags {
			key := fold.String(tag)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			counts[key]++
			if _, ok := display[key]; !ok {
				display[key] = tag
			}
		}
	}

	out := make([]TagCount, 0, len(counts))
	for key, n := range counts {
		out = append(out, TagCount{Tag: display[key], Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Tag < out[j].Tag
	})
	return out, nil
}

func (s *Service) requireAuthor(ctx context.Context, id int64) error {
	if _, err := s.authors.Get(ctx, id); err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			return ErrAuthorNotFound
		}
		return err
	}
	return nil
}

func (s *Service) afterMutation(ctx context.Context, event string, rec *Record) (*Post, error) {
	s.invalidate(ctx)
	post, err := s.resolveOne(ctx, rec)
	if err != nil {
		return nil, err
	}
	s.publish(event, post.ID, post)
	return post, nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("posts: feed cache invalidation failed", "error", err)
	}
}

func (s *Service) publish(event string, id int64, payload any) {
	if s.events == nil {
		return
	}
	s.events.Publish(event, id, payload)
}

// feed returns every post fully resolved, from the cache when possible.
func (s *Service) feed(ctx context.Context) ([]Post, error) {
	if s.cache != nil {
		var cached []Post
		hit, err := s.cache.Get(ctx, &cached)
		if err != nil {
			s.logger.Warn("posts: feed cache read failed", "error", err)
		} else if hit {
			return cached, nil
		}
	}

	recs, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out, err := s.resolve(ctx, recs)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, out); err != nil {
			s.logger.Warn("posts: feed cache write failed", "error", err)
		}
	}
	return out, nil
}

func (s *Service) resolveOne(ctx context.Context, rec *Record) (*Post, error) {
	out, err := s.resolve(ctx, []*Record{rec})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

// resolve joins records with their comments and authors.
func (s *Service) resolve(ctx context.Context, recs []*Record) ([]Post, error) {
	ids := make([]int64, 0, len(recs))
	for _, rec := range recs {
		ids = append(ids, rec.ID)
	}
	comments, err := s.repo.ListComments(ctx, ids)
	if err != nil {
		return nil, err
	}

	authors := make(map[int64]users.User)
	author := func(id int64) (users.User, error) {
		if u, ok := authors[id]; ok {
			return u, nil
		}
		u, err := s.authors.Get(ctx, id)
		if err != nil {
			return users.User{}, fmt.Errorf("posts: resolve author %d: %w", id, err)
		}
		authors[id] = *u
		return *u, nil
	}

	out := make([]Post, 0, len(recs))
	for _, rec := range recs {
		a, err := author(rec.AuthorID)
		if err != nil {
			return nil, err
		}
		post := Post{
			ID:        rec.ID,
			Author:    a,
			Content:   rec.Content,
			Timestamp: rec.Timestamp,
			Likes:     rec.Likes,
			Shares:    rec.Shares,
			Tags:      nonNil(rec.Tags),
			Images:    nonNil(rec.Images),
			Comments:  []Comment{},
		}
		for _, c := range comments[rec.ID] {
			ca, err := author(c.AuthorID)
			if err != nil {
				return nil, err
			}
			post.Comments = append(post.Comments, Comment{
				ID:        c.ID,
				Author:    ca,
				Content:   c.Content,
				Timestamp: c.Timestamp,
			})
		}
		out = append(out, post)
	}
	return out, nil
}

func applyFilter(all []Post, f ListFilter) []Post {
	fold := cases.Fold()
	wanted := make(map[string]struct{}, len(f.Tags))
	for _, tag := range f.Tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			wanted[fold.String(tag)] = struct{}{}
		}
	}
	query := fold.String(strings.TrimSpace(f.Query))

	out := make([]Post, 0, len(all))
	for _, p := range all {
		if f.AuthorID > 0 && p.Author.ID != f.AuthorID {
			continue
		}
		if query != "" && !strings.Contains(fold.String(p.Content), query) {
			continue
		}
		if len(wanted) > 0 && !hasAnyTag(fold, p.Tags, wanted) {
			continue
		}
		out = append(out, p)
	}

	if f.Offset > 0 {
		if f.Offset >= len(out) {
			return []Post{}
		}
		out = out[f.Offset:]
	}
	limit := f.Limit
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out
}

func hasAnyTag(fold cases.Caser, tags []string, wanted map[string]struct{}) bool {
	for _, tag := range tags {
		if _, ok := wanted[fold.String(tag)]; ok {
			return true
		}
	}
	return false
}
