package services

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/crypto/bcrypt"

	"file-vault-api/internal/application/ports"
	"file-vault-api/internal/domain/apperr"
	domain "file-vault-api/internal/domain/user"
)

type AuthService struct {
	userRepository domain.Repository
	tokens         ports.TokenCache
	mCounter       *prometheus.CounterVec
}

func NewAuthService(
	userRepository domain.Repository,
	tokens ports.TokenCache,
	mCounter *prometheus.CounterVec,
) ports.AuthService {
	return &AuthService{
		userRepository: userRepository,
		tokens:         tokens,
		mCounter:       mCounter,
	}
}

func (as *AuthService) Register(ctx context.Context, email, password string) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u, err := as.userRepository.CreateUser(ctx, domain.User{
		Email:        email,
		PasswordHash: string(hash),
	})
	if err != nil {
		return nil, err
	}

	as.mCounter.WithLabelValues("users_registered_total").Inc()

	return u, nil
}

// Login verifies the credentials against the stored hash and, only on
// success, has the token cache issue a fresh session token.
func (as *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	u, err := as.verifyCredentials(ctx, email, password)
	if err != nil {
		return "", err
	}

	token, err := as.tokens.Issue(ctx, u.UUID)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}

	as.mCounter.WithLabelValues("sessions_issued_total").Inc()

	return token, nil
}

func (as *AuthService) Logout(ctx context.Context, token string) error {
	return as.tokens.Revoke(ctx, token)
}

func (as *AuthService) Authenticate(ctx context.Context, token string) (domain.UUID, error) {
	return as.tokens.Lookup(ctx, token)
}

// CurrentUser resolves the profile behind an authenticated session. A user
// row gone missing after the token was issued reads as not found.
func (as *AuthService) CurrentUser(ctx context.Context, id domain.UUID) (*domain.User, error) {
	u, err := as.userRepository.FetchUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperr.ErrNotFound
	}

	return u, nil
}

func (as *AuthService) verifyCredentials(ctx context.Context, email, password string) (*domain.User, error) {
	u, err := as.userRepository.FetchUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		// same error as a wrong password so emails cannot be enumerated
		return nil, apperr.ErrUnauthenticated
	}

	if err = bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, apperr.ErrUnauthenticated
	}

	return u, nil
}
