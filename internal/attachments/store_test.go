package attachments

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockS3Client records PutObject calls and serves stored bodies.
type mockS3Client struct {
	objects      map[string][]byte
	contentTypes map[string]string
	putErr       error
}

func newMockS3() *mockS3Client {
	return &mockS3Client{objects: make(map[string][]byte), contentTypes: make(map[string]string)}
}

func (m *mockS3Client) PutObject(_ context.Context, input *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if m.putErr != nil {
		return nil, m.putErr
	}
	body, _ := io.ReadAll(input.Body)
	m.objects[*input.Key] = body
	m.contentTypes[*input.Key] = aws.ToString(input.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (m *mockS3Client) GetObject(_ context.Context, input *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := m.objects[*input.Key]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{
		Body:        io.NopCloser(bytes.NewReader(data)),
		ContentType: aws.String(m.contentTypes[*input.Key]),
	}, nil
}

func newTestStore(mock *mockS3Client, maxBytes int64) *Store {
	store := NewStore(mock, "sciencehub-uploads", "", maxBytes, nil)
	store.now = func() time.Time { return time.Date(2024, 11, 5, 12, 0, 0, 0, time.UTC) }
	store.newID = func() string { return "0b6f3c1e-test" }
	return store
}

func TestStoreUpload(t *testing.T) {
	mock := newMockS3()
	store := newTestStore(mock, 0)

	obj, err := store.Upload(context.Background(), "Wyniki.PDF", "application/pdf", strings.NewReader("%PDF-1.7"))
	require.NoError(t, err)
	assert.Equal(t, "uploads/2024/11/05/0b6f3c1e-test.pdf", obj.Key)
	assert.Equal(t, "https://sciencehub-uploads.s3.amazonaws.com/uploads/2024/11/05/0b6f3c1e-test.pdf", obj.URL)
	assert.Equal(t, int64(8), obj.Size)
	assert.Equal(t, "application/pdf", obj.ContentType)
	assert.Equal(t, []byte("%PDF-1.7"), mock.objects[obj.Key])
	assert.Equal(t, DefaultMaxBytes, store.MaxBytes())
}

func TestStoreUploadRejects(t *testing.T) {
	store := newTestStore(newMockS3(), 4)

	_, err := store.Upload(context.Background(), "script.exe", "", strings.NewReader("MZ"))
	assert.ErrorIs(t, err, ErrExtensionNotAllowed)

	_, err = store.Upload(context.Background(), "noext", "", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrExtensionNotAllowed)

	_, err = store.Upload(context.Background(), "empty.txt", "", strings.NewReader(""))
	assert.ErrorIs(t, err, ErrEmptyFile)

	_, err = store.Upload(context.Background(), "big.txt", "", strings.NewReader("12345"))
	assert.ErrorIs(t, err, ErrTooLarge)

	_, err = store.Upload(context.Background(), "fits.txt", "", strings.NewReader("1234"))
	assert.NoError(t, err)
}

func TestStoreUploadFailures(t *testing.T) {
	mock := newMockS3()
	mock.putErr = errors.New("access denied")
	store := newTestStore(mock, 0)
	_, err := store.Upload(context.Background(), "a.csv", "", strings.NewReader("a,b"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")

	disabled := NewStore(mock, "", "", 0, nil)
	assert.False(t, disabled.Enabled())
	_, err = disabled.Upload(context.Background(), "a.csv", "", strings.NewReader("a,b"))
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestStoreContentTypeFallbacks(t *testing.T) {
	mock := newMockS3()
	store := newTestStore(mock, 0)

	obj, err := store.Upload(context.Background(), "dane.json", "application/octet-stream", strings.NewReader(`{"a":1}`))
	require.NoError(t, err)
	assert.Equal(t, "application/json", obj.ContentType)
}

func TestStorePublicURLAndOpen(t *testing.T) {
	mock := newMockS3()
	store := NewStore(mock, "bucket", "https://cdn.sciencehub.test/", 0, nil)

	obj, err := store.Upload(context.Background(), "wykres.png", "image/png", strings.NewReader("\x89PNG"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(obj.URL, "https://cdn.sciencehub.test/uploads/"))

	body, contentType, err := store.Open(context.Background(), obj.Key)
	require.NoError(t, err)
	defer body.Close()
	data, _ := io.ReadAll(body)
	assert.Equal(t, "\x89PNG", string(data))
	assert.Equal(t, "image/png", contentType)

	_, _, err = store.Open(context.Background(), "uploads/missing.png")
	assert.ErrorIs(t, err, ErrObjectNotFound)
	_, _, err = store.Open(context.Background(), "secrets/key.pem")
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestExtension(t *testing.T) {
	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{"paper.docx", "docx", false},
		{"archive.tar.7z", "7z", false},
		{"CONFIG.YML", "yml", false},
		{"malware.sh", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := Extension(tt.name)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrExtensionNotAllowed, tt.name)
			continue
		}
		require.NoError(t, err, tt.name)
		assert.Equal(t, tt.want, got)
	}
}
