package profanity

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDenylist(t *testing.T) {
	data := []byte(`
languages:
  - code: pl
    terms: [Kurde, kurde, dupa]
  - code: en
    terms: [damn]
`)
	d, err := ParseDenylist(data)
	require.NoError(t, err)

	terms, err := d.Terms()
	require.NoError(t, err)
	assert.Equal(t, []string{"kurde", "dupa", "damn"}, terms)
	assert.Equal(t, []string{"pl", "en"}, d.Codes())
}

func TestParseDenylistRejectsBadEntries(t *testing.T) {
	tests := []struct {
		name string
		data string
		want error
	}{
		{
			name: "blank term",
			data: "languages:\n  - code: en\n    terms: [\"\"]\n",
			want: ErrEmptyTerm,
		},
		{
			name: "phrase",
			data: "languages:\n  - code: en\n    terms: [\"bad word\"]\n",
			want: ErrPhraseTerm,
		},
		{
			name: "no terms",
			data: "languages: []\n",
			want: ErrNoTerms,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDenylist([]byte(tt.data))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestParseDenylistInvalidYAML(t *testing.T) {
	_, err := ParseDenylist([]byte("languages: [:"))
	require.Error(t, err)
}

func TestLoadDenylistFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "denylist.yaml")
	require.NoError(t, os.WriteFile(path, []byte("languages:\n  - code: en\n    terms: [heck]\n"), 0o600))

	d, err := LoadDenylistFile(path)
	require.NoError(t, err)

	f, err := NewFromDenylist(d)
	require.NoError(t, err)
	assert.Equal(t, "h*** no", f.Redact("heck no"))
	assert.Equal(t, []string{"en"}, f.Languages())

	_, err = LoadDenylistFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestEmbeddedDenylistHasNoDuplicates(t *testing.T) {
	d, err := EmbeddedDenylist()
	require.NoError(t, err)

	var raw int
	for _, lang := range d.Languages {
		raw += len(lang.Terms)
	}
	terms, err := d.Terms()
	require.NoError(t, err)
	assert.Equal(t, raw, len(terms))
}
