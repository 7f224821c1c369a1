package accounts

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/sciencehub/sciencehub-api/internal/users"
	"github.com/sciencehub/sciencehub-api/pkg/logging"
)

// Profiles creates, loads and removes researcher profiles. *users.Service
// satisfies it.
type Profiles interface {
	Get(ctx context.Context, id int64) (*users.User, error)
	Create(ctx context.Context, req *users.CreateUserRequest) (*users.User, int, error)
	Delete(ctx context.Context, id int64) error
}

// Service registers accounts and logs them in.
type Service struct {
	store    Store
	profiles Profiles
	tokens   *TokenIssuer
	cost     int
	logger   *logging.Logger
}

// NewService creates an account service.
func NewService(store Store, profiles Profiles, tokens *TokenIssuer, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		store:    store,
		profiles: profiles,
		tokens:   tokens,
		cost:     bcrypt.DefaultCost,
		logger:   logger,
	}
}

// Register creates a profile and an account for it, then logs in. If the
// account insert fails, for example when a concurrent registration claimed
// the email first, the new profile is removed again.
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*Session, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	email, _ := NormalizeEmail(req.Email)

	exists, err := s.EmailExists(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("accounts: hash password: %w", err)
	}
	user, _, err := s.profiles.Create(ctx, req.Profile())
	if err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, &Account{Email: email, PasswordHash: hash, UserID: user.ID}); err != nil {
		// The profile has no account yet, so nothing else references it.
		if derr := s.profiles.Delete(ctx, user.ID); derr != nil {
			s.logger.Error("accounts: failed to remove profile after account insert failed", "user_id", user.ID, "error", derr)
		}
		return nil, err
	}
	return s.session(user)
}

// Login checks credentials. Unknown emails and wrong passwords are reported
// as distinct errors.
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*Session, error) {
	email := normalizeLoose(req.Email)
	acct, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, ErrUnknownEmail
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword(acct.PasswordHash, []byte(req.Password)); err != nil {
		return nil, ErrWrongPassword
	}
	user, err := s.profiles.Get(ctx, acct.UserID)
	if err != nil {
		return nil, err
	}
	return s.session(user)
}

// EmailExists reports whether email already has an account.
func (s *Service) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := s.store.GetByEmail(ctx, normalizeLoose(email))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrAccountNotFound):
		return false, nil
	default:
		return false, err
	}
}

// Me loads the profile behind a verified user id.
func (s *Service) Me(ctx context.Context, userID int64) (*users.User, error) {
	return s.profiles.Get(ctx, userID)
}

// ImportDevUsers creates accounts for existing profiles. Entries whose email
// is already registered, whose profile is missing or whose password fails
// validation are skipped.
func (s *Service) ImportDevUsers(ctx context.Context, devUsers []DevUser) (int, error) {
	imported := 0
	for _, du := range devUsers {
		if _, err := s.profiles.Get(ctx, du.UserID); err != nil {
			if errors.Is(err, users.ErrUserNotFound) {
				s.logger.Warn("accounts: dev user references missing profile", "email", du.Email, "user_id", du.UserID)
				continue
			}
			return imported, err
		}
		if err := validatePassword(du.Password); err != nil {
			s.logger.Warn("accounts: skipping dev user with unusable password", "email", du.Email, "error", err)
			continue
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(du.Password), s.cost)
		if err != nil {
			return imported, fmt.Errorf("accounts: hash password: %w", err)
		}
		err = s.store.Create(ctx, &Account{Email: du.Email, PasswordHash: hash, UserID: du.UserID})
		if errors.Is(err, ErrEmailTaken) {
			continue
		}
		if err != nil {
			return imported, err
		}
		imported++
	}
	return imported, nil
}

func (s *Service) session(user *users.User) (*Session, error) {
	token, expires, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("accounts: issue token: %w", err)
	}
	return &Session{Token: token, ExpiresAt: expires, User: user}, nil
}

func normalizeLoose(email string) string {
	if n, err := NormalizeEmail(email); err == nil {
		return n
	}
	return email
}
