package accounts

import (
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sciencehub/sciencehub-api/internal/users"
)

// MinPasswordLength is the shortest accepted password, in characters.
const MinPasswordLength = 6

// MaxPasswordLength is the bcrypt input limit, in bytes.
const MaxPasswordLength = 72

// Account links login credentials to a researcher profile.
type Account struct {
	Email        string
	PasswordHash []byte
	UserID       int64
	CreatedAt    time.Time
}

// RegisterRequest represents the request body for POST /auth/register
type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Name        string `json:"name"`
	Title       string `json:"title"`
	Institution string `json:"institution"`
	Bio         string `json:"bio"`
}

// Validate checks the credentials; profile fields are validated by users.
func (r *RegisterRequest) Validate() error {
	if _, err := NormalizeEmail(r.Email); err != nil {
		return err
	}
	return validatePassword(r.Password)
}

func validatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if len(password) > MaxPasswordLength {
		return ErrPasswordTooLong
	}
	return nil
}

// Profile converts the request into a user profile, filling the default bio.
func (r *RegisterRequest) Profile() *users.CreateUserRequest {
	bio := strings.TrimSpace(r.Bio)
	if bio == "" {
		bio = users.DefaultBio
	}
	return &users.CreateUserRequest{
		Name:        strings.TrimSpace(r.Name),
		Title:       strings.TrimSpace(r.Title),
		Institution: strings.TrimSpace(r.Institution),
		Bio:         bio,
	}
}

// LoginRequest represents the request body for POST /auth/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Session is returned after a successful login or registration.
type Session struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      *users.User `json:"user"`
}

// NormalizeEmail lowercases and validates an address.
func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrInvalidEmail
	}
	return email, nil
}
