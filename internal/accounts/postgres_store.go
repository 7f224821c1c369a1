package accounts

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore persists accounts in the accounts table.
type PostgresStore struct {
	db querier
}

// NewPostgresStore initializes a store backed by pgxpool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	if pool == nil {
		panic("accounts: pgx pool required")
	}
	return &PostgresStore{db: pool}
}

func newPostgresStoreWithQuerier(db querier) *PostgresStore {
	return &PostgresStore{db: db}
}

// Create inserts acct. A duplicate email maps to ErrEmailTaken.
func (s *PostgresStore) Create(ctx context.Context, acct *Account) error {
	query := `
		INSERT INTO accounts (email, password_hash, user_id)
		VALUES ($1, $2, $3)`
	if _, err := s.db.Exec(ctx, query, acct.Email, acct.PasswordHash, acct.UserID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrEmailTaken
		}
		return fmt.Errorf("accounts: insert failed: %w", err)
	}
	return nil
}

// GetByEmail loads an account by normalized email.
func (s *PostgresStore) GetByEmail(ctx context.Context, email string) (*Account, error) {
	query := `SELECT email, password_hash, user_id, created_at FROM accounts WHERE email = $1`
	var acct Account
	if err := s.db.QueryRow(ctx, query, email).Scan(&acct.Email, &acct.PasswordHash, &acct.UserID, &acct.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("accounts: select failed: %w", err)
	}
	return &acct, nil
}
