package users

import (
	"context"
	"sort"
	"sync"
)

// Repository defines the interface for user storage
type Repository interface {
	List(ctx context.Context) ([]*User, error)
	Get(ctx context.Context, id int64) (*User, error)
	Create(ctx context.Context, req *CreateUserRequest) (*User, error)
	Update(ctx context.Context, id int64, req *UpdateUserRequest) (*User, error)
	Count(ctx context.Context) (int, error)
	Delete(ctx context.Context, id int64) error
}

// InMemoryRepository keeps users in a map; used when no database is configured.
type InMemoryRepository struct {
	mu     sync.RWMutex
	users  map[int64]*User
	nextID int64
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		users:  make(map[int64]*User),
		nextID: 1,
	}
}

// List returns users ordered by id.
func (r *InMemoryRepository) List(ctx context.Context) ([]*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u.clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Get retrieves a user by ID
func (r *InMemoryRepository) Get(ctx context.Context, id int64) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return u.clone(), nil
}

// Create stores a new user and assigns it the next id.
func (r *InMemoryRepository) Create(ctx context.Context, req *CreateUserRequest) (*User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	u := &User{
		ID:           r.nextID,
		Name:         req.Name,
		Title:        req.Title,
		Bio:          req.Bio,
		Institution:  req.Institution,
		Publications: req.Publications,
		Followers:    req.Followers,
		Following:    req.Following,
	}
	if req.Avatar != nil {
		avatar := *req.Avatar
		u.Avatar = &avatar
	}
	r.nextID++
	r.users[u.ID] = u
	return u.clone(), nil
}

// Update applies a partial update.
func (r *InMemoryRepository) Update(ctx context.Context, id int64, req *UpdateUserRequest) (*User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	req.Apply(u)
	return u.clone(), nil
}

// Count returns the number of stored users.
func (r *InMemoryRepository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users), nil
}

// Delete removes a user.
func (r *InMemoryRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}
