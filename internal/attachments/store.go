// Package attachments stores files uploaded alongside posts in S3.
package attachments

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/sciencehub/sciencehub-api/pkg/logging"
)

// DefaultMaxBytes is the upload size limit when none is configured.
const DefaultMaxBytes int64 = 10 << 20

var (
	// ErrDisabled is returned when no bucket is configured
	ErrDisabled = errors.New("uploads are disabled")

	// ErrEmptyFile is returned for zero-byte uploads
	ErrEmptyFile = errors.New("file is empty")

	// ErrTooLarge is returned when the file exceeds the size limit
	ErrTooLarge = errors.New("file is too large")

	// ErrExtensionNotAllowed is returned for file types outside the allowlist
	ErrExtensionNotAllowed = errors.New("file type is not allowed")

	// ErrObjectNotFound is returned when a key has no object
	ErrObjectNotFound = errors.New("object not found")
)

var allowedExtensions = map[string]struct{}{
	"pdf": {}, "doc": {}, "docx": {}, "txt": {}, "rtf": {},
	"xls": {}, "xlsx": {}, "csv": {},
	"ppt": {}, "pptx": {},
	"jpg": {}, "jpeg": {}, "png": {}, "gif": {}, "bmp": {}, "svg": {},
	"zip": {}, "rar": {}, "7z": {},
	"json": {}, "xml": {}, "yaml": {}, "yml": {},
}

// S3API is the subset of the S3 client used by Store.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Object describes a stored upload.
type Object struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
}

// Store writes uploads to one bucket. A Store without a bucket is disabled.
type Store struct {
	bucket    string
	publicURL string
	maxBytes  int64
	s3Client  S3API
	logger    *logging.Logger
	now       func() time.Time
	newID     func() string
}

// NewStore creates an upload store. publicURL prefixes returned object URLs;
// when empty a virtual-hosted S3 URL is used.
func NewStore(s3Client S3API, bucket, publicURL string, maxBytes int64, logger *logging.Logger) *Store {
	if logger == nil {
		logger = logging.Default()
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Store{
		bucket:    bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
		maxBytes:  maxBytes,
		s3Client:  s3Client,
		logger:    logger,
		now:       time.Now,
		newID:     func() string { return uuid.New().String() },
	}
}

// Enabled returns true if uploads are configured.
func (s *Store) Enabled() bool {
	return s != nil && s.bucket != "" && s.s3Client != nil
}

// MaxBytes is the largest accepted file.
func (s *Store) MaxBytes() int64 {
	return s.maxBytes
}

// Extension returns the lowercased extension of filename if it is allowed.
func Extension(filename string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(filename), "."))
	if _, ok := allowedExtensions[ext]; !ok {
		return "", fmt.Errorf("%w: %q", ErrExtensionNotAllowed, ext)
	}
	return ext, nil
}

// Upload validates and stores r under uploads/YYYY/MM/DD/<uuid>.<ext>.
func (s *Store) Upload(ctx context.Context, filename, contentType string, r io.Reader) (*Object, error) {
	if !s.Enabled() {
		return nil, ErrDisabled
	}
	ext, err := Extension(filename)
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("attachments: read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	if int64(len(data)) > s.maxBytes {
		return nil, ErrTooLarge
	}

	contentType = resolveContentType(contentType, ext, data)
	now := s.now().UTC()
	key := fmt.Sprintf("uploads/%d/%02d/%02d/%s.%s", now.Year(), now.Month(), now.Day(), s.newID(), ext)

	_, err = s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return nil, fmt.Errorf("attachments: s3 put %s: %w", key, err)
	}

	s.logger.Info("stored upload", "key", key, "size", len(data), "content_type", contentType)
	return &Object{Key: key, URL: s.objectURL(key), Size: int64(len(data)), ContentType: contentType}, nil
}

// Open streams a stored object. The caller closes the body.
func (s *Store) Open(ctx context.Context, key string) (io.ReadCloser, string, error) {
	if !s.Enabled() {
		return nil, "", ErrDisabled
	}
	if !strings.HasPrefix(key, "uploads/") || strings.Contains(key, "..") {
		return nil, "", ErrObjectNotFound
	}
	out, err := s.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		s.logger.Debug("s3 get failed", "key", key, "error", err)
		return nil, "", ErrObjectNotFound
	}
	return out.Body, aws.ToString(out.ContentType), nil
}

func (s *Store) objectURL(key string) string {
	if s.publicURL != "" {
		return s.publicURL + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.bucket, key)
}

func resolveContentType(declared, ext string, data []byte) string {
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	if byExt := mime.TypeByExtension("." + ext); byExt != "" {
		return byExt
	}
	return http.DetectContentType(data)
}
