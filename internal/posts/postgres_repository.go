package posts

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const postColumns = `id, author_id, content, created_at, likes, shares, tags, images`

// PostgresRepository stores posts and comments in Postgres.
type PostgresRepository struct {
	db querier
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("posts: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

func newPostgresRepositoryWithQuerier(db querier) *PostgresRepository {
	if db == nil {
		panic("posts: querier required")
	}
	return &PostgresRepository{db: db}
}

func scanRecord(row pgx.Row) (*Record, error) {
	var rec Record
	if err := row.Scan(
		&rec.ID,
		&rec.AuthorID,
		&rec.Content,
		&rec.Timestamp,
		&rec.Likes,
		&rec.Shares,
		&rec.Tags,
		&rec.Images,
	); err != nil {
		return nil, err
	}
	if rec.Tags == nil {
		rec.Tags = []string{}
	}
	if rec.Images == nil {
		rec.Images = []string{}
	}
	return &rec, nil
}

func notFoundOr(err error, op string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrPostNotFound
	}
	return fmt.Errorf("posts: %s failed: %w", op, err)
}

// List returns every post, newest first.
func (r *PostgresRepository) List(ctx context.Context) ([]*Record, error) {
	rows, err := r.db.Query(ctx, `SELECT `+postColumns+` FROM posts ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("posts: list failed: %w", err)
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("posts: scan failed: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("posts: list failed: %w", err)
	}
	return out, nil
}

// Get fetches a single post.
func (r *PostgresRepository) Get(ctx context.Context, id int64) (*Record, error) {
	rec, err := scanRecord(r.db.QueryRow(ctx, `SELECT `+postColumns+` FROM posts WHERE id = $1`, id))
	if err != nil {
		return nil, notFoundOr(err, "select")
	}
	return rec, nil
}

// Create inserts a new row; a zero timestamp uses the database clock.
func (r *PostgresRepository) Create(ctx context.Context, rec *Record) (*Record, error) {
	query := `
		INSERT INTO posts (author_id, content, created_at, likes, shares, tags, images)
		VALUES ($1, $2, COALESCE($3, NOW()), $4, $5, $6, $7)
		RETURNING ` + postColumns
	var ts any
	if !rec.Timestamp.IsZero() {
		ts = rec.Timestamp
	}
	out, err := scanRecord(r.db.QueryRow(ctx, query,
		rec.AuthorID,
		rec.Content,
		ts,
		rec.Likes,
		rec.Shares,
		nonNil(rec.Tags),
		nonNil(rec.Images),
	))
	if err != nil {
		return nil, fmt.Errorf("posts: insert failed: %w", err)
	}
	return out, nil
}

// Update replaces content and tags.
func (r *PostgresRepository) Update(ctx context.Context, id int64, content string, tags []string) (*Record, error) {
	query := `
		UPDATE posts SET content = $2, tags = $3
		WHERE id = $1
		RETURNING ` + postColumns
	rec, err := scanRecord(r.db.QueryRow(ctx, query, id, content, nonNil(tags)))
	if err != nil {
		return nil, notFoundOr(err, "update")
	}
	return rec, nil
}

// Delete removes a post; comments go with it through ON DELETE CASCADE.
func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("posts: delete failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrPostNotFound
	}
	return nil
}

// AdjustLikes adds delta to likes, clamped at zero.
func (r *PostgresRepository) AdjustLikes(ctx context.Context, id int64, delta int) (*Record, error) {
	query := `UPDATE posts SET likes = GREATEST(likes + $2, 0) WHERE id = $1 RETURNING ` + postColumns
	rec, err := scanRecord(r.db.QueryRow(ctx, query, id, delta))
	if err != nil {
		return nil, notFoundOr(err, "like")
	}
	return rec, nil
}

// AdjustShares adds delta to shares, clamped at zero.
func (r *PostgresRepository) AdjustShares(ctx context.Context, id int64, delta int) (*Record, error) {
	query := `UPDATE posts SET shares = GREATEST(shares + $2, 0) WHERE id = $1 RETURNING ` + postColumns
	rec, err := scanRecord(r.db.QueryRow(ctx, query, id, delta))
	if err != nil {
		return nil, notFoundOr(err, "share")
	}
	return rec, nil
}

// AddComment inserts a comment. A missing post surfaces as ErrPostNotFound.
func (r *PostgresRepository) AddComment(ctx context.Context, c *CommentRecord) (*CommentRecord, error) {
	query := `
		INSERT INTO comments (post_id, author_id, content)
		SELECT $1, $2, $3 WHERE EXISTS (SELECT 1 FROM posts WHERE id = $1)
		RETURNING id, created_at`
	out := *c
	if err := r.db.QueryRow(ctx, query, c.PostID, c.AuthorID, c.Content).Scan(&out.ID, &out.Timestamp); err != nil {
		return nil, notFoundOr(err, "insert comment")
	}
	return &out, nil
}

// ListComments loads comments for the given posts, newest first.
func (r *PostgresRepository) ListComments(ctx context.Context, postIDs []int64) (map[int64][]*CommentRecord, error) {
	out := make(map[int64][]*CommentRecord, len(postIDs))
	if len(postIDs) == 0 {
		return out, nil
	}
	query := `
		SELECT id, post_id, author_id, content, created_at
		FROM comments
		WHERE post_id = ANY($1)
		ORDER BY created_at DESC, id DESC`
	rows, err := r.db.Query(ctx, query, postIDs)
	if err != nil {
		return nil, fmt.Errorf("posts: list comments failed: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c CommentRecord
		if err := rows.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.Content, &c.Timestamp); err != nil {
			return nil, fmt.Errorf("posts: scan comment failed: %w", err)
		}
		out[c.PostID] = append(out[c.PostID], &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("posts: list comments failed: %w", err)
	}
	return out, nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
