// Package profanity masks denylisted words in user-submitted text.
//
// Terms match whole words only, case-insensitively. A match keeps its first
// character and every other character becomes MaskRune, so "Shit" turns into
// "S***". Longer terms are applied before shorter ones, which keeps an
// inflected form from being half-masked by its root.
package profanity

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"
)

// MaskRune replaces the hidden characters of a match.
const MaskRune = '*'

type term struct {
	word  string
	runes int
	re    *regexp.Regexp
}

// Filter holds a compiled, read-only denylist. A nil *Filter matches nothing.
type Filter struct {
	ordered   []term // denylist order
	byLength  []term // longest first, stable
	languages []string
}

// Report summarizes a single pass over a piece of text.
type Report struct {
	Clean    bool   `json:"clean"`
	Redacted string `json:"redacted"`
	Matches  int    `json:"matches"`
}

// New compiles a filter from raw terms. Terms are lowercased and
// deduplicated; blank or multi-word entries are rejected.
func New(terms []string) (*Filter, error) {
	words, err := normalizeTerms(terms)
	if err != nil {
		return nil, err
	}

	ordered := make([]term, 0, len(words))
	for _, w := range words {
		re, err := regexp.Compile(`(?i)` + regexp.QuoteMeta(w))
		if err != nil {
			return nil, fmt.Errorf("profanity: compile %q: %w", w, err)
		}
		ordered = append(ordered, term{word: w, runes: utf8.RuneCountInString(w), re: re})
	}

	byLength := make([]term, len(ordered))
	copy(byLength, ordered)
	sort.SliceStable(byLength, func(i, j int) bool {
		return byLength[i].runes > byLength[j].runes
	})

	return &Filter{ordered: ordered, byLength: byLength}, nil
}

// NewFromDenylist compiles every language of d into one filter.
func NewFromDenylist(d *Denylist) (*Filter, error) {
	terms, err := d.Terms()
	if err != nil {
		return nil, err
	}
	f, err := New(terms)
	if err != nil {
		return nil, err
	}
	f.languages = d.Codes()
	return f, nil
}

var defaultFilter = sync.OnceValue(func() *Filter {
	d, err := EmbeddedDenylist()
	if err != nil {
		panic(err)
	}
	f, err := NewFromDenylist(d)
	if err != nil {
		panic(err)
	}
	return f
})

// Default returns the filter built from the embedded denylist.
func Default() *Filter {
	return defaultFilter()
}

// Redact masks denylisted words using the embedded denylist.
func Redact(text string) string { return Default().Redact(text) }

// ContainsMatch reports whether text has a denylisted word, using the
// embedded denylist.
func ContainsMatch(text string) bool { return Default().ContainsMatch(text) }

// CountMatches counts denylisted words using the embedded denylist.
func CountMatches(text string) int { return Default().CountMatches(text) }

// Redact returns text with every whole-word match masked. Text without
// matches is returned unchanged. The rune count of the output always equals
// the rune count of the input.
func (f *Filter) Redact(text string) string {
	if f == nil || text == "" {
		return text
	}
	for _, t := range f.byLength {
		spans := t.spans(text)
		if len(spans) == 0 {
			continue
		}
		var b strings.Builder
		b.Grow(len(text))
		last := 0
		for _, sp := range spans {
			b.WriteString(text[last:sp[0]])
			b.WriteString(mask(text[sp[0]:sp[1]]))
			last = sp[1]
		}
		b.WriteString(text[last:])
		text = b.String()
	}
	return text
}

// ContainsMatch reports whether any term occurs in text as a whole word.
func (f *Filter) ContainsMatch(text string) bool {
	if f == nil || text == "" {
		return false
	}
	for _, t := range f.ordered {
		if t.first(text) {
			return true
		}
	}
	return false
}

// CountMatches sums, over all terms, the number of whole-word occurrences of
// each term. A span matched by two different terms counts twice.
func (f *Filter) CountMatches(text string) int {
	if f == nil || text == "" {
		return 0
	}
	count := 0
	for _, t := range f.ordered {
		count += len(t.spans(text))
	}
	return count
}

// Inspect runs Redact and CountMatches in one call.
func (f *Filter) Inspect(text string) Report {
	n := f.CountMatches(text)
	redacted := text
	if n > 0 {
		redacted = f.Redact(text)
	}
	return Report{Clean: n == 0, Redacted: redacted, Matches: n}
}

// Terms returns a copy of the denylist in its original order.
func (f *Filter) Terms() []string {
	if f == nil {
		return nil
	}
	out := make([]string, len(f.ordered))
	for i, t := range f.ordered {
		out[i] = t.word
	}
	return out
}

// Len is the number of distinct terms.
func (f *Filter) Len() int {
	if f == nil {
		return 0
	}
	return len(f.ordered)
}

// Languages lists the language codes the filter was built from, if known.
func (f *Filter) Languages() []string {
	if f == nil {
		return nil
	}
	return append([]string(nil), f.languages...)
}

// spans returns the byte offsets of every non-overlapping whole-word match,
// scanning left to right.
func (t term) spans(text string) [][2]int {
	var out [][2]int
	t.scan(text, func(start, end int) bool {
		out = append(out, [2]int{start, end})
		return true
	})
	return out
}

func (t term) first(text string) bool {
	found := false
	t.scan(text, func(int, int) bool {
		found = true
		return false
	})
	return found
}

// scan calls fn for each whole-word match until fn returns false. A candidate
// that sits inside a longer word is skipped one rune at a time so that a later
// overlapping candidate can still match.
func (t term) scan(text string, fn func(start, end int) bool) {
	pos := 0
	for pos < len(text) {
		loc := t.re.FindStringIndex(text[pos:])
		if loc == nil {
			return
		}
		start, end := pos+loc[0], pos+loc[1]
		if end == start {
			return
		}
		if isWholeWord(text, start, end) {
			if !fn(start, end) {
				return
			}
			pos = end
			continue
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		pos = start + size
	}
}

func isWholeWord(text string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:start])
		if isWordRune(r) {
			return false
		}
	}
	if end < len(text) {
		r, _ := utf8.DecodeRuneInString(text[end:])
		if isWordRune(r) {
			return false
		}
	}
	return true
}

// isWordRune treats letters, digits, combining marks and underscore as part
// of a word, so Polish diacritics do not act as boundaries.
func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}

func mask(match string) string {
	n := utf8.RuneCountInString(match)
	if n <= 1 {
		return string(MaskRune)
	}
	_, size := utf8.DecodeRuneInString(match)
	return match[:size] + strings.Repeat(string(MaskRune), n-1)
}
