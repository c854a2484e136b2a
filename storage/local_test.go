package storage

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocalUploader(t *testing.T) (Uploader, string) {
	t.Helper()
	dir := t.TempDir()
	uploader, err := NewLocalUploader(LocalUploaderConfig{
		BaseDir:        dir,
		PublicBasePath: "/static/img/customlogo",
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return uploader, dir
}

func TestLocalUploadWritesReadOnlyFile(t *testing.T) {
	uploader, dir := newTestLocalUploader(t)

	content := []byte("png bytes")
	result, err := uploader.Upload(context.Background(), "custom-1-abcd.png", "image/png", bytes.NewReader(content))
	require.NoError(t, err)
	assert.Equal(t, "custom-1-abcd.png", result.Key)
	assert.Equal(t, "/static/img/customlogo/custom-1-abcd.png", result.Location)

	fullPath := filepath.Join(dir, "custom-1-abcd.png")
	written, err := os.ReadFile(fullPath)
	require.NoError(t, err)
	assert.Equal(t, content, written)

	info, err := os.Stat(fullPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o444), info.Mode().Perm(), "logo files are read-only after write")
}

func TestLocalUploadRefusesToOverwrite(t *testing.T) {
	uploader, _ := newTestLocalUploader(t)

	_, err := uploader.Upload(context.Background(), "custom-1-abcd.png", "image/png", bytes.NewReader([]byte("one")))
	require.NoError(t, err)

	_, err = uploader.Upload(context.Background(), "custom-1-abcd.png", "image/png", bytes.NewReader([]byte("two")))
	assert.Error(t, err, "a second write to the same key must not clobber the first")
}

func TestLocalUploadStripsPathComponents(t *testing.T) {
	uploader, dir := newTestLocalUploader(t)

	result, err := uploader.Upload(context.Background(), "../../etc/custom-evil.png", "image/png", bytes.NewReader([]byte("x")))
	require.NoError(t, err)
	assert.Equal(t, "custom-evil.png", result.Key)

	_, err = os.Stat(filepath.Join(dir, "custom-evil.png"))
	assert.NoError(t, err)
}

func TestLocalDelete(t *testing.T) {
	uploader, dir := newTestLocalUploader(t)

	_, err := uploader.Upload(context.Background(), "custom-1-abcd.png", "image/png", bytes.NewReader([]byte("x")))
	require.NoError(t, err)

	require.NoError(t, uploader.Delete(context.Background(), "custom-1-abcd.png"))
	_, err = os.Stat(filepath.Join(dir, "custom-1-abcd.png"))
	assert.True(t, os.IsNotExist(err))
}
