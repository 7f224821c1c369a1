package users

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

const userColumns = `id, name, title, avatar, bio, institution, publications, followers, following`

// PostgresRepository stores users in the relational database.
type PostgresRepository struct {
	db querier
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("users: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

func newPostgresRepositoryWithQuerier(db querier) *PostgresRepository {
	if db == nil {
		panic("users: querier required")
	}
	return &PostgresRepository{db: db}
}

func scanUser(row pgx.Row) (*User, error) {
	var u User
	if err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Title,
		&u.Avatar,
		&u.Bio,
		&u.Institution,
		&u.Publications,
		&u.Followers,
		&u.Following,
	); err != nil {
		return nil, err
	}
	return &u, nil
}

// List returns all users ordered by id.
func (r *PostgresRepository) List(ctx context.Context) ([]*User, error) {
	rows, err := r.db.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("users: list failed: %w", err)
	}
	defer rows.Close()

	var out []*User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("users: scan failed: %w", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("users: list failed: %w", err)
	}
	return out, nil
}

// Get fetches a single user.
func (r *PostgresRepository) Get(ctx context.Context, id int64) (*User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("users: select failed: %w", err)
	}
	return u, nil
}

// Create inserts a new row.
func (r *PostgresRepository) Create(ctx context.Context, req *CreateUserRequest) (*User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	query := `
		INSERT INTO users (name, title, avatar, bio, institution, publications, followers, following)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + userColumns
	u, err := scanUser(r.db.QueryRow(ctx, query,
		req.Name,
		req.Title,
		req.Avatar,
		req.Bio,
		req.Institution,
		req.Publications,
		req.Followers,
		req.Following,
	))
	if err != nil {
		return nil, fmt.Errorf("users: insert failed: %w", err)
	}
	return u, nil
}

// Update loads the user, applies the patch and writes every column back.
func (r *PostgresRepository) Update(ctx context.Context, id int64, req *UpdateUserRequest) (*User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	u, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	req.Apply(u)

	query := `
		UPDATE users
		SET name = $2, title = $3, avatar = $4, bio = $5, institution = $6,
		    publications = $7, followers = $8, following = $9
		WHERE id = $1`
	ct, err := r.db.Exec(ctx, query,
		u.ID,
		u.Name,
		u.Title,
		u.Avatar,
		u.Bio,
		u.Institution,
		u.Publications,
		u.Followers,
		u.Following,
	)
	if err != nil {
		return nil, fmt.Errorf("users: update failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// Count returns the number of rows in users.
func (r *PostgresRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("users: count failed: %w", err)
	}
	return n, nil
}

// Delete removes a user row.
func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("users: delete failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}
