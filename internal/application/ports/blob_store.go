package ports

import (
	"context"
	"errors"
)

// ErrBlobNotFound reports a locator the blob store does not hold. It is
// distinct from a permission failure and callers must not conflate the two.
var ErrBlobNotFound = errors.New("blob not found")

// BlobStore persists raw bytes under generated locators. Locators are
// opaque; callers never construct them from user-supplied names.
type BlobStore interface {
	Put(ctx context.Context, data []byte, contentType string) (string, error)
	PutAt(ctx context.Context, locator string, data []byte, contentType string) error
	Get(ctx context.Context, locator string) ([]byte, error)
}
