package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
)

type LocalUploaderConfig struct {
	// BaseDir is the directory custom logo files are written under.
	BaseDir string
	// PublicBasePath is the URL path prefix the files are served from.
	PublicBasePath string
}

type localUploader struct {
	baseDir        string
	publicBasePath string
	logger         *slog.Logger
}

// NewLocalUploader creates an Uploader writing to the local filesystem.
// Files are made read-only after write to prevent later tampering; a chmod
// failure is logged but non-fatal.
func NewLocalUploader(cfg LocalUploaderConfig, logger *slog.Logger) (Uploader, error) {
	if cfg.BaseDir == "" {
		return nil, errors.New("invalid local uploader configuration: base dir is required")
	}
	if err := os.MkdirAll(cfg.BaseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create logo directory %s: %w", cfg.BaseDir, err)
	}

	return &localUploader{
		baseDir:        cfg.BaseDir,
		publicBasePath: cfg.PublicBasePath,
		logger:         logger,
	}, nil
}

func (u *localUploader) Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error) {
	// Keys are derived from time+content hash upstream; a clean base name is
	// still enforced so a key can never escape the logo directory.
	filename := filepath.Base(filepath.Clean(key))
	fullPath := filepath.Join(u.baseDir, filename)

	f, err := os.OpenFile(fullPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to create logo file %s: %w", fullPath, err)
	}

	if _, err := io.Copy(f, reader); err != nil {
		f.Close()
		os.Remove(fullPath)
		return nil, fmt.Errorf("failed to write logo file %s: %w", fullPath, err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close logo file %s: %w", fullPath, err)
	}

	if err := os.Chmod(fullPath, 0o444); err != nil {
		u.logger.Warn("could not set read-only permissions on logo file",
			slog.String("path", fullPath), slog.Any("error", err))
	}

	return &UploadResult{
		Key:      filename,
		Location: u.GetPublicURL(filename),
	}, nil
}

func (u *localUploader) Delete(ctx context.Context, key string) error {
	fullPath := filepath.Join(u.baseDir, filepath.Base(filepath.Clean(key)))
	if err := os.Remove(fullPath); err != nil {
		return fmt.Errorf("failed to delete logo file %s: %w", fullPath, err)
	}
	return nil
}

func (u *localUploader) GetPublicURL(key string) string {
	if u.publicBasePath == "" {
		return key
	}
	return path.Join(u.publicBasePath, key)
}
