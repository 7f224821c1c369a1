package users

import "errors"

var (
	// ErrUserNotFound is returned when a user id does not exist
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidName is returned when the name is shorter than 3 characters
	ErrInvalidName = errors.New("name must be at least 3 characters")

	// ErrInvalidTitle is returned when the academic title is shorter than 3 characters
	ErrInvalidTitle = errors.New("title must be at least 3 characters")

	// ErrInvalidBio is returned when the bio is shorter than 10 characters
	ErrInvalidBio = errors.New("bio must be at least 10 characters")

	// ErrInvalidInstitution is returned when the institution is shorter than 3 characters
	ErrInvalidInstitution = errors.New("institution must be at least 3 characters")

	// ErrNegativeCounter is returned when publications/followers/following is below zero
	ErrNegativeCounter = errors.New("counters must not be negative")
)

// IsValidation reports whether err is caused by invalid input.
func IsValidation(err error) bool {
	for _, target := range []error{ErrInvalidName, ErrInvalidTitle, ErrInvalidBio, ErrInvalidInstitution, ErrNegativeCounter} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
