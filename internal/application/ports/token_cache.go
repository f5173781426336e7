package ports

import (
	"context"

	"file-vault-api/internal/domain/user"
)

// TokenCache is the sole session authority: an opaque token maps to exactly
// one user until it expires or is revoked.
type TokenCache interface {
	Issue(ctx context.Context, u user.UUID) (string, error)
	Lookup(ctx context.Context, token string) (user.UUID, error)
	Revoke(ctx context.Context, token string) error
	IsAlive() bool
	Close() error
}
