package accounts

import (
	"context"
	"sync"
	"time"
)

// Store persists accounts keyed by normalized email.
type Store interface {
	Create(ctx context.Context, acct *Account) error
	GetByEmail(ctx context.Context, email string) (*Account, error)
}

// InMemoryStore keeps accounts in a map.
type InMemoryStore struct {
	mu       sync.RWMutex
	accounts map[string]Account
}

// NewInMemoryStore creates an empty store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{accounts: make(map[string]Account)}
}

// Create stores acct, failing with ErrEmailTaken on duplicates.
func (s *InMemoryStore) Create(ctx context.Context, acct *Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[acct.Email]; ok {
		return ErrEmailTaken
	}
	stored := *acct
	stored.PasswordHash = append([]byte(nil), acct.PasswordHash...)
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	s.accounts[acct.Email] = stored
	return nil
}

// GetByEmail returns a copy of the account.
func (s *InMemoryStore) GetByEmail(ctx context.Context, email string) (*Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acct, ok := s.accounts[email]
	if !ok {
		return nil, ErrAccountNotFound
	}
	acct.PasswordHash = append([]byte(nil), acct.PasswordHash...)
	return &acct, nil
}
