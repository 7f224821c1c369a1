package profanity

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

//go:embed denylist.yaml
var embeddedDenylist []byte

var (
	// ErrEmptyTerm is returned when a denylist entry is blank.
	ErrEmptyTerm = errors.New("profanity: empty denylist term")

	// ErrPhraseTerm is returned when a denylist entry contains whitespace.
	ErrPhraseTerm = errors.New("profanity: multi-word denylist terms are not supported")

	// ErrNoTerms is returned when a denylist resolves to zero terms.
	ErrNoTerms = errors.New("profanity: denylist has no terms")
)

// Language groups the terms of one language.
type Language struct {
	Code  string   `yaml:"code"`
	Terms []string `yaml:"terms"`
}

// Denylist is the on-disk shape of a term list.
type Denylist struct {
	Languages []Language `yaml:"languages"`
}

// ParseDenylist decodes a YAML denylist and validates every entry.
func ParseDenylist(data []byte) (*Denylist, error) {
	var d Denylist
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("profanity: decode denylist: %w", err)
	}
	if _, err := d.Terms(); err != nil {
		return nil, err
	}
	return &d, nil
}

// LoadDenylistFile reads a YAML denylist from disk.
func LoadDenylistFile(path string) (*Denylist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("profanity: read denylist %s: %w", path, err)
	}
	return ParseDenylist(data)
}

// EmbeddedDenylist returns the list compiled into the binary.
func EmbeddedDenylist() (*Denylist, error) {
	return ParseDenylist(embeddedDenylist)
}

// Terms flattens the languages into one lowercase list, keeping the first
// occurrence of duplicates.
func (d *Denylist) Terms() ([]string, error) {
	if d == nil {
		return nil, ErrNoTerms
	}
	var raw []string
	for _, lang := range d.Languages {
		raw = append(raw, lang.Terms...)
	}
	return normalizeTerms(raw)
}

// Codes lists the language codes in file order.
func (d *Denylist) Codes() []string {
	if d == nil {
		return nil
	}
	codes := make([]string, 0, len(d.Languages))
	for _, lang := range d.Languages {
		codes = append(codes, lang.Code)
	}
	return codes
}

func normalizeTerms(raw []string) ([]string, error) {
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, t := range raw {
		term := strings.ToLower(strings.TrimSpace(t))
		if term == "" {
			return nil, ErrEmptyTerm
		}
		if strings.ContainsFunc(term, unicode.IsSpace) {
			return nil, fmt.Errorf("%w: %q", ErrPhraseTerm, term)
		}
		if _, dup := seen[term]; dup {
			continue
		}
		seen[term] = struct{}{}
		out = append(out, term)
	}
	if len(out) == 0 {
		return nil, ErrNoTerms
	}
	return out, nil
}
