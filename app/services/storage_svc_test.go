package services

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func TestLocalObjectStoreUpload(t *testing.T) {
	root := t.TempDir()
	store := NewLocalObjectStore(root, "http://localhost:8080/uploads/")

	url, err := store.Upload(context.Background(), "products", "tee/front.jpg", bytes.NewReader(pngHeader))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/uploads/products/tee/front.png", url)

	data, err := os.ReadFile(filepath.Join(root, "products", "tee", "front.png"))
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)

	generated, err := store.Upload(context.Background(), "avatars", "", bytes.NewReader(pngHeader))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(generated, "http://localhost:8080/uploads/avatars/"))
	assert.True(t, strings.HasSuffix(generated, ".png"))
}

func TestLocalObjectStoreRejects(t *testing.T) {
	store := NewLocalObjectStore(t.TempDir(), "/uploads")
	ctx := context.Background()

	_, err := store.Upload(ctx, "secrets", "a.png", bytes.NewReader(pngHeader))
	assert.ErrorIs(t, err, ErrUnknownBucket)

	for _, p := range []string{"../escape.png", "/etc/passwd", "a/../../b.png", ".."} {
		_, err = store.Upload(ctx, "products", p, bytes.NewReader(pngHeader))
		assert.ErrorIs(t, err, ErrInvalidUploadPath, p)
	}

	_, err = store.Upload(ctx, "products", "notes.png", strings.NewReader("just some text"))
	assert.ErrorIs(t, err, ErrUnsupportedFileType)

	store.maxBytes = 8
	_, err = store.Upload(ctx, "products", "big.png", bytes.NewReader(pngHeader))
	assert.ErrorIs(t, err, ErrFileTooLarge)
}
