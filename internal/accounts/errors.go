package accounts

import "errors"

var (
	// ErrEmailTaken is returned when registering an email that already has an account
	ErrEmailTaken = errors.New("email already registered")

	// ErrUnknownEmail is returned when logging in with an email that has no account
	ErrUnknownEmail = errors.New("no account for this email")

	// ErrWrongPassword is returned when the password does not match
	ErrWrongPassword = errors.New("wrong password")

	// ErrInvalidEmail is returned when the email is not plausible
	ErrInvalidEmail = errors.New("email is invalid")

	// ErrPasswordTooShort is returned when the password has fewer than MinPasswordLength characters
	ErrPasswordTooShort = errors.New("password must be at least 6 characters")

	// ErrPasswordTooLong is returned when the password exceeds MaxPasswordLength bytes
	ErrPasswordTooLong = errors.New("password must be at most 72 bytes")

	// ErrAccountNotFound is returned by stores when no account matches
	ErrAccountNotFound = errors.New("account not found")
)

// IsValidation reports whether err is caused by invalid input.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidEmail) || errors.Is(err, ErrPasswordTooShort) || errors.Is(err, ErrPasswordTooLong)
}

// IsCredentials reports whether err is a failed login.
func IsCredentials(err error) bool {
	return errors.Is(err, ErrUnknownEmail) || errors.Is(err, ErrWrongPassword)
}
