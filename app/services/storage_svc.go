package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

const DefaultMaxUploadBytes = 5 << 20

var (
	ErrUnknownBucket       = errors.New("unknown storage bucket")
	ErrInvalidUploadPath   = errors.New("invalid upload path")
	ErrUnsupportedFileType = errors.New("only JPEG, PNG, WebP and GIF images can be uploaded")
	ErrFileTooLarge        = errors.New("file is too large")
)

var allowedImageTypes = []string{"image/jpeg", "image/png", "image/webp", "image/gif"}

// ObjectStorage stores uploaded files and returns their public URL.
type ObjectStorage interface {
	Upload(ctx context.Context, bucket, objectPath string, file io.Reader) (string, error)
}

// LocalObjectStore keeps objects under root/<bucket>/<path>, served from baseURL.
type LocalObjectStore struct {
	root     string
	baseURL  string
	buckets  map[string]bool
	maxBytes int64
}

func NewLocalObjectStore(root, baseURL string, buckets ...string) *LocalObjectStore {
	if len(buckets) == 0 {
		buckets = []string{"products", "categories", "avatars"}
	}
	allowed := make(map[string]bool, len(buckets))
	for _, b := range buckets {
		allowed[b] = true
	}
	return &LocalObjectStore{
		root:     root,
		baseURL:  strings.TrimRight(baseURL, "/"),
		buckets:  allowed,
		maxBytes: DefaultMaxUploadBytes,
	}
}

// cleanObjectPath rejects absolute paths and anything that climbs out of the bucket.
func cleanObjectPath(p string) (string, error) {
	p = strings.TrimSpace(strings.ReplaceAll(p, "\\", "/"))
	if p == "" {
		return "", nil
	}
	if strings.HasPrefix(p, "/") {
		return "", ErrInvalidUploadPath
	}
	cleaned := path.Clean(p)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", ErrInvalidUploadPath
	}
	return cleaned, nil
}

func (s *LocalObjectStore) Upload(ctx context.Context, bucket, objectPath string, file io.Reader) (string, error) {
	if !s.buckets[bucket] {
		return "", fmt.Errorf("%w: %q", ErrUnknownBucket, bucket)
	}
	cleaned, err := cleanObjectPath(objectPath)
	if err != nil {
		return "", err
	}

	data, err := io.ReadAll(io.LimitReader(file, s.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return "", ErrFileTooLarge
	}

	mtype := mimetype.Detect(data)
	if !mimetype.EqualsAny(mtype.String(), allowedImageTypes...) {
		log.Printf("LocalObjectStore.Upload: rejected %s upload to %s", mtype.String(), bucket)
		return "", ErrUnsupportedFileType
	}

	if cleaned == "" {
		cleaned = uuid.New().String()
	}
	cleaned = strings.TrimSuffix(cleaned, path.Ext(cleaned)) + mtype.Extension()

	target := filepath.Join(s.root, bucket, filepath.FromSlash(cleaned))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}
	if err := writeFileAtomic(target, data); err != nil {
		return "", err
	}

	return s.baseURL + "/" + bucket + "/" + cleaned, nil
}

func writeFileAtomic(target string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(target), ".upload-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, bytes.NewReader(data)); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write upload: %w", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("failed to store upload: %w", err)
	}
	return os.Chmod(target, 0o644)
}
