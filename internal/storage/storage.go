package storage

import (
	"context"
	"io"
	"time"
)

type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified *time.Time
}

// Service stores and serves poster images in remote object storage. Movie
// records hold only the object key; URLs are minted on demand.
type Service interface {
	UploadPoster(ctx context.Context, bucket, key string, body io.Reader, contentType string) (string, error)
	ListPosters(ctx context.Context, bucket, prefix string) ([]ObjectInfo, error)
	DeletePoster(ctx context.Context, bucket, key string) error
	ObjectURL(ctx context.Context, bucket, key string, expires time.Duration) (string, error)
}
