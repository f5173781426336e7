package ports

import (
	"context"

	"file-vault-api/internal/domain/user"
)

type AuthService interface {
	Register(ctx context.Context, email, password string) (*user.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	Logout(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (user.UUID, error)
	CurrentUser(ctx context.Context, id user.UUID) (*user.User, error)
}
