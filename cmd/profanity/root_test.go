package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRedactFromArgs(t *testing.T) {
	out, err := run(t, "", "redact", "what", "the", "hell")
	require.NoError(t, err)
	assert.Equal(t, "what the h***\n", out)
}

func TestRedactFromStdin(t *testing.T) {
	out, err := run(t, "Kurwa, co za wynik\n", "redact")
	require.NoError(t, err)
	assert.Equal(t, "K****, co za wynik\n", out)
}

func TestCheck(t *testing.T) {
	out, err := run(t, "", "check", "a perfectly fine sentence")
	require.NoError(t, err)
	assert.Equal(t, "clean\n", out)

	out, err = run(t, "", "check", "you idiot")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errMatchFound))
	assert.Equal(t, "match\n", out)
}

func TestCount(t *testing.T) {
	out, err := run(t, "shit and more SHIT, damn", "count")
	require.NoError(t, err)
	assert.Equal(t, "3\n", out)
}

func TestCustomDenylist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "terms.yaml")
	require.NoError(t, os.WriteFile(path, []byte("languages:\n  - code: en\n    terms: [heck, darn]\n"), 0o600))

	out, err := run(t, "", "terms", "--denylist", path)
	require.NoError(t, err)
	assert.Equal(t, "heck\ndarn\n", out)

	out, err = run(t, "", "redact", "--denylist", path, "heck", "damn")
	require.NoError(t, err)
	assert.Equal(t, "h*** damn\n", out)

	_, err = run(t, "", "terms", "--denylist", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
