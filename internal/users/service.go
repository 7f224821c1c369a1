package users

import (
	"context"

	"github.com/sciencehub/sciencehub-api/internal/moderation"
)

// Service masks profile text before it reaches the repository.
type Service struct {
	repo      Repository
	moderator *moderation.Service
}

// NewService creates a user service.
func NewService(repo Repository, moderator *moderation.Service) *Service {
	return &Service{repo: repo, moderator: moderator}
}

// List returns every profile ordered by id.
func (s *Service) List(ctx context.Context) ([]*User, error) {
	return s.repo.List(ctx)
}

// Get loads one profile. Missing ids return ErrUserNotFound.
func (s *Service) Get(ctx context.Context, id int64) (*User, error) {
	return s.repo.Get(ctx, id)
}

// Count returns the number of stored profiles.
func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

// Create validates the raw input, masks free-text fields and stores the user.
// The second return value is the number of masked words.
func (s *Service) Create(ctx context.Context, req *CreateUserRequest) (*User, int, error) {
	if err := req.Validate(); err != nil {
		return nil, 0, err
	}
	clean := *req
	matches := 0
	for _, field := range []*string{&clean.Name, &clean.Title, &clean.Bio, &clean.Institution} {
		var n int
		*field, n = s.moderator.Clean(ctx, moderation.FieldUserProfile, *field)
		matches += n
	}
	u, err := s.repo.Create(ctx, &clean)
	if err != nil {
		return nil, 0, err
	}
	return u, matches, nil
}

// Update masks any supplied free-text fields before applying the patch.
func (s *Service) Update(ctx context.Context, id int64, req *UpdateUserRequest) (*User, int, error) {
	if err := req.Validate(); err != nil {
		return nil, 0, err
	}
	clean := *req
	matches := 0
	for _, field := range []**string{&clean.Name, &clean.Title, &clean.Bio, &clean.Institution} {
		if *field == nil {
			continue
		}
		masked, n := s.moderator.Clean(ctx, moderation.FieldUserProfile, **field)
		*field = &masked
		matches += n
	}
	u, err := s.repo.Update(ctx, id, &clean)
	if err != nil {
		return nil, 0, err
	}
	return u, matches, nil
}

// Delete removes a profile.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
