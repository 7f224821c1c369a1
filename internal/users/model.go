package users

import (
	"strings"
	"unicode/utf8"
)

// DefaultBio is used for accounts that register without a profile blurb.
const DefaultBio = "Badacz w ScienceHub"

// User is a researcher profile.
type User struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Title        string  `json:"title"`
	Avatar       *string `json:"avatar"`
	Bio          string  `json:"bio"`
	Institution  string  `json:"institution"`
	Publications int     `json:"publications"`
	Followers    int     `json:"followers"`
	Following    int     `json:"following"`
}

// CreateUserRequest represents the request body for creating a user
type CreateUserRequest struct {
	Name         string  `json:"name"`
	Title        string  `json:"title"`
	Bio          string  `json:"bio"`
	Institution  string  `json:"institution"`
	Avatar       *string `json:"avatar"`
	Publications int     `json:"publications"`
	Followers    int     `json:"followers"`
	Following    int     `json:"following"`
}

// Validate validates the create user request
func (r *CreateUserRequest) Validate() error {
	if !minLen(r.Name, 3) {
		return ErrInvalidName
	}
	if !minLen(r.Title, 3) {
		return ErrInvalidTitle
	}
	if !minLen(r.Bio, 10) {
		return ErrInvalidBio
	}
	if !minLen(r.Institution, 3) {
		return ErrInvalidInstitution
	}
	if r.Publications < 0 || r.Followers < 0 || r.Following < 0 {
		return ErrNegativeCounter
	}
	return nil
}

// UpdateUserRequest is a partial update; nil fields are left untouched.
type UpdateUserRequest struct {
	Name         *string `json:"name"`
	Title        *string `json:"title"`
	Bio          *string `json:"bio"`
	Institution  *string `json:"institution"`
	Avatar       *string `json:"avatar"`
	Publications *int    `json:"publications"`
	Followers    *int    `json:"followers"`
	Following    *int    `json:"following"`
}

// Validate checks only the supplied fields.
func (r *UpdateUserRequest) Validate() error {
	if r.Name != nil && !minLen(*r.Name, 3) {
		return ErrInvalidName
	}
	if r.Title != nil && !minLen(*r.Title, 3) {
		return ErrInvalidTitle
	}
	if r.Bio != nil && !minLen(*r.Bio, 10) {
		return ErrInvalidBio
	}
	if r.Institution != nil && !minLen(*r.Institution, 3) {
		return ErrInvalidInstitution
	}
	for _, n := range []*int{r.Publications, r.Followers, r.Following} {
		if n != nil && *n < 0 {
			return ErrNegativeCounter
		}
	}
	return nil
}

// Apply copies the supplied fields onto u.
func (r *UpdateUserRequest) Apply(u *User) {
	if r.Name != nil {
		u.Name = *r.Name
	}
	if r.Title != nil {
		u.Title = *r.Title
	}
	if r.Bio != nil {
		u.Bio = *r.Bio
	}
	if r.Institution != nil {
		u.Institution = *r.Institution
	}
	if r.Avatar != nil {
		avatar := *r.Avatar
		u.Avatar = &avatar
	}
	if r.Publications != nil {
		u.Publications = *r.Publications
	}
	if r.Followers != nil {
		u.Followers = *r.Followers
	}
	if r.Following != nil {
		u.Following = *r.Following
	}
}

func minLen(s string, n int) bool {
	return utf8.RuneCountInString(strings.TrimSpace(s)) >= n
}

func (u *User) clone() *User {
	c := *u
	if u.Avatar != nil {
		avatar := *u.Avatar
		c.Avatar = &avatar
	}
	return &c
}
