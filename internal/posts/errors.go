package posts

import "errors"

var (
	// ErrPostNotFound is returned when a post id does not exist
	ErrPostNotFound = errors.New("post not found")

	// ErrAuthorNotFound is returned when the referenced author does not exist
	ErrAuthorNotFound = errors.New("author not found")

	// ErrInvalidAuthor is returned when author_id is missing or not positive
	ErrInvalidAuthor = errors.New("author_id must be a positive integer")

	// ErrContentTooShort is returned when post content is shorter than 5 characters
	ErrContentTooShort = errors.New("content must be at least 5 characters")

	// ErrContentTooLong is returned when post content exceeds MaxContentLength characters
	ErrContentTooLong = errors.New("content must be at most 5000 characters")

	// ErrCommentTooShort is returned when comment content is shorter than 3 characters
	ErrCommentTooShort = errors.New("comment must be at least 3 characters")

	// ErrCommentTooLong is returned when comment content exceeds MaxCommentLength characters
	ErrCommentTooLong = errors.New("comment must be at most 2000 characters")

	// ErrInvalidDirection is returned when a like direction is neither like nor unlike
	ErrInvalidDirection = errors.New("direction must be like or unlike")
)

// IsValidation reports whether err is caused by invalid input.
func IsValidation(err error) bool {
	for _, target := range []error{ErrInvalidAuthor, ErrContentTooShort, ErrContentTooLong, ErrCommentTooShort, ErrCommentTooLong, ErrInvalidDirection} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
