package blob

import (
	"context"
)

// Store is the opaque put/get-by-key object store the pipeline writes
// original documents to. Callers treat keys as opaque strings.
//
//go:generate mockgen -source=blob.go -destination=../mocks/blob.go -package=mocks -mock_names=Store=MockBlobStore
type Store interface {
	// Put stores data under the given key and returns the key
	Put(ctx context.Context, key string, data []byte) (string, error)
	// Get retrieves the data stored under the key
	Get(ctx context.Context, key string) ([]byte, error)
	// Close releases the underlying client
	Close() error
}
