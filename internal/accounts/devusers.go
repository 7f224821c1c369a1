package accounts

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// DevUser is one line of a development credentials file.
type DevUser struct {
	Email    string
	Password string
	UserID   int64
}

// LoadDevUsersFile reads email:password:user_id lines from path.
func LoadDevUsersFile(path string) ([]DevUser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("accounts: open dev users: %w", err)
	}
	defer f.Close()
	return ParseDevUsers(f)
}

// ParseDevUsers skips blank lines and # comments. Lines that do not have
// exactly three fields are ignored.
func ParseDevUsers(r io.Reader) ([]DevUser, error) {
	var out []DevUser
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		parts := strings.Split(text, ":")
		if len(parts) != 3 {
			continue
		}
		email, err := NormalizeEmail(parts[0])
		if err != nil {
			return nil, fmt.Errorf("accounts: dev users line %d: %w", line, err)
		}
		id, err := strconv.ParseInt(strings.TrimSpace(parts[2]), 10, 64)
		if err != nil || id < 1 {
			return nil, fmt.Errorf("accounts: dev users line %d: invalid user id %q", line, parts[2])
		}
		out = append(out, DevUser{
			Email:    email,
			Password: strings.TrimSpace(parts[1]),
			UserID:   id,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("accounts: read dev users: %w", err)
	}
	return out, nil
}
