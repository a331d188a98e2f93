package port

import "context"

// ArchiveStorage defines the interface for storing archived sample batches.
type ArchiveStorage interface {
	// PutObject uploads an object and returns a URL for reading it.
	PutObject(ctx context.Context, key, contentType string, body []byte) (string, error)
}
