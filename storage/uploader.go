package storage

import (
	"context"
	"io"
)

type UploadResult struct {
	Key      string
	Location string
}

// Uploader stores custom logo files. Implementations must never overwrite an
// existing object for a different upload; callers guarantee key uniqueness by
// deriving keys from upload time and content hash.
type Uploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)

	Delete(ctx context.Context, key string) error

	GetPublicURL(key string) string
}
