package bootstrap

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appconfig "github.com/sciencehub/sciencehub-api/internal/config"
	"github.com/sciencehub/sciencehub-api/pkg/logging"
)

func quietLogger() *logging.Logger {
	return logging.NewWithWriter(&bytes.Buffer{}, "error")
}

func TestBuildRedisClientNotConfigured(t *testing.T) {
	assert.Nil(t, BuildRedisClient(context.Background(), &appconfig.Config{}, quietLogger(), true))
	assert.Nil(t, BuildRedisClient(context.Background(), nil, quietLogger(), true))
}

func TestBuildRedisClientVerifiesConnection(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := &appconfig.Config{RedisAddr: mr.Addr()}

	client := BuildRedisClient(context.Background(), cfg, quietLogger(), true)
	require.NotNil(t, client)
	t.Cleanup(func() { _ = client.Close() })

	mr.Close()
	assert.Nil(t, BuildRedisClient(context.Background(), cfg, quietLogger(), true))
}

func TestBuildRedisClientWithoutVerify(t *testing.T) {
	cfg := &appconfig.Config{RedisAddr: "127.0.0.1:1"}
	client := BuildRedisClient(context.Background(), cfg, quietLogger(), false)
	require.NotNil(t, client)
	_ = client.Close()
}

func TestBuildPostgresNotConfigured(t *testing.T) {
	pg, err := BuildPostgres(context.Background(), &appconfig.Config{}, quietLogger())
	require.NoError(t, err)
	assert.Nil(t, pg)
	pg.Close()
}

func TestBuildProfanityFilterEmbedded(t *testing.T) {
	f, err := BuildProfanityFilter(&appconfig.Config{}, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, []string{"pl", "en"}, f.Languages())
}

func TestBuildProfanityFilterFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "terms.yaml")
	require.NoError(t, os.WriteFile(path, []byte("languages:\n  - code: en\n    terms: [heck]\n"), 0o600))

	f, err := BuildProfanityFilter(&appconfig.Config{ProfanityDenylistPath: path}, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, "h*** yes", f.Redact("heck yes"))

	_, err = BuildProfanityFilter(&appconfig.Config{ProfanityDenylistPath: filepath.Join(t.TempDir(), "nope.yaml")}, quietLogger())
	require.Error(t, err)
}

func TestBuildUploadsStore(t *testing.T) {
	store, err := BuildUploadsStore(context.Background(), &appconfig.Config{}, quietLogger())
	require.NoError(t, err)
	assert.Nil(t, store)

	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")
	store, err = BuildUploadsStore(context.Background(), &appconfig.Config{
		AWSRegion:           "us-east-1",
		AWSAccessKeyID:      "test",
		AWSSecretAccessKey:  "test",
		AWSEndpointOverride: "http://localhost:4566",
		UploadsBucket:       "sciencehub-uploads",
	}, quietLogger())
	require.NoError(t, err)
	require.NotNil(t, store)
	assert.True(t, store.Enabled())
}
