package posts

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sciencehub/sciencehub-api/internal/users"
)

// Content limits, in characters.
const (
	MaxContentLength = 5000
	MaxCommentLength = 2000
)

// Like directions accepted by POST /posts/{postID}/like.
const (
	DirectionLike   = "like"
	DirectionUnlike = "unlike"
)

// Post is a feed entry as returned to clients, with author and comments
// resolved.
type Post struct {
	ID        int64      `json:"id"`
	Author    users.User `json:"author"`
	Content   string     `json:"content"`
	Timestamp time.Time  `json:"timestamp"`
	Likes     int        `json:"likes"`
	Shares    int        `json:"shares"`
	Tags      []string   `json:"tags"`
	Images    []string   `json:"images"`
	Comments  []Comment  `json:"comments"`
}

// Comment is a reply on a post.
type Comment struct {
	ID        int64      `json:"id"`
	Author    users.User `json:"author"`
	Content   string     `json:"content"`
	Timestamp time.Time  `json:"timestamp"`
}

// Record is the stored shape of a post.
type Record struct {
	ID        int64
	AuthorID  int64
	Content   string
	Timestamp time.Time
	Likes     int
	Shares    int
	Tags      []string
	Images    []string
}

func (r *Record) clone() *Record {
	c := *r
	c.Tags = append([]string{}, r.Tags...)
	c.Images = append([]string{}, r.Images...)
	return &c
}

// CommentRecord is the stored shape of a comment.
type CommentRecord struct {
	ID        int64
	PostID    int64
	AuthorID  int64
	Content   string
	Timestamp time.Time
}

// CreatePostRequest represents the request body for creating a post
type CreatePostRequest struct {
	AuthorID int64    `json:"author_id"`
	Content  string   `json:"content"`
	Tags     []string `json:"tags"`
	Images   []string `json:"images"`
}

// Validate validates the create post request
func (r *CreatePostRequest) Validate() error {
	if r.AuthorID < 1 {
		return ErrInvalidAuthor
	}
	return validateContent(r.Content)
}

// UpdatePostRequest replaces a post's content and tags.
type UpdatePostRequest struct {
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}

// Validate validates the update post request
func (r *UpdatePostRequest) Validate() error {
	return validateContent(r.Content)
}

// CommentRequest represents the request body for adding a comment
type CommentRequest struct {
	AuthorID int64  `json:"author_id"`
	Content  string `json:"content"`
}

// Validate validates the comment request
func (r *CommentRequest) Validate() error {
	if r.AuthorID < 1 {
		return ErrInvalidAuthor
	}
	switch {
	case !minLen(r.Content, 3):
		return ErrCommentTooShort
	case utf8.RuneCountInString(r.Content) > MaxCommentLength:
		return ErrCommentTooLong
	}
	return nil
}

// LikeRequest is the body of POST /posts/{postID}/like.
type LikeRequest struct {
	Direction string `json:"direction"`
}

// ShareRequest is the body of POST /posts/{postID}/share. A missing
// increment counts as true.
type ShareRequest struct {
	Increment *bool `json:"increment"`
}

// ListFilter narrows a post listing. Zero values mean "no filter".
type ListFilter struct {
	Tags     []string
	Query    string
	AuthorID int64
	Limit    int
	Offset   int
}

// TagCount is one entry of GET /tags.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

func validateContent(content string) error {
	switch {
	case !minLen(content, 5):
		return ErrContentTooShort
	case utf8.RuneCountInString(content) > MaxContentLength:
		return ErrContentTooLong
	}
	return nil
}

func minLen(s string, n int) bool {
	return utf8.RuneCountInString(strings.TrimSpace(s)) >= n
}

func compact(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
