package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"file-vault-api/internal/domain/apperr"
	domain "file-vault-api/internal/domain/user"
)

// newTestCounter builds an unregistered counter so repeated test setups do
// not collide in the default prometheus registry.
func newTestCounter() *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "test_counters"},
		[]string{"result"})
}

type FakeUserRepo struct {
	FetchUserByIDFunc    func(ctx context.Context, uuid domain.UUID) (*domain.User, error)
	FetchUserByEmailFunc func(ctx context.Context, email string) (*domain.User, error)
	CreateUserFunc       func(ctx context.Context, req domain.User) (*domain.User, error)
}

func (f *FakeUserRepo) FetchUserByID(ctx context.Context, uuid domain.UUID) (*domain.User, error) {
	if f.FetchUserByIDFunc == nil {
		return nil, errors.New("not used")
	}
	return f.FetchUserByIDFunc(ctx, uuid)
}

func (f *FakeUserRepo) FetchUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	if f.FetchUserByEmailFunc == nil {
		return nil, errors.New("not used")
	}
	return f.FetchUserByEmailFunc(ctx, email)
}

func (f *FakeUserRepo) CreateUser(ctx context.Context, req domain.User) (*domain.User, error) {
	if f.CreateUserFunc == nil {
		return nil, errors.New("not used")
	}
	return f.CreateUserFunc(ctx, req)
}

type FakeTokenCache struct {
	tokens map[string]domain.UUID
}

func NewFakeTokenCache() *FakeTokenCache {
	return &FakeTokenCache{tokens: make(map[string]domain.UUID)}
}

func (f *FakeTokenCache) Issue(ctx context.Context, u domain.UUID) (string, error) {
	token := uuid.NewString()
	f.tokens[token] = u
	return token, nil
}

func (f *FakeTokenCache) Lookup(ctx context.Context, token string) (domain.UUID, error) {
	u, ok := f.tokens[token]
	if !ok {
		return domain.UUID{}, apperr.ErrUnauthenticated
	}
	return u, nil
}

func (f *FakeTokenCache) Revoke(ctx context.Context, token string) error {
	delete(f.tokens, token)
	return nil
}

func (f *FakeTokenCache) IsAlive() bool { return true }
func (f *FakeTokenCache) Close() error  { return nil }

func TestRegisterHashesPassword(t *testing.T) {
	var stored domain.User
	repo := &FakeUserRepo{
		CreateUserFunc: func(ctx context.Context, req domain.User) (*domain.User, error) {
			stored = req
			u := req
			u.UUID = uuid.New()
			return &u, nil
		},
	}
	as := NewAuthService(repo, NewFakeTokenCache(), newTestCounter())

	u, err := as.Register(context.Background(), "a@example.com", "s3cret-pass")
	require.NoError(t, err)
	require.NotNil(t, u)

	assert.NotEqual(t, "s3cret-pass", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("s3cret-pass")))
}

func TestLoginIssuesResolvableToken(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret-pass"), bcrypt.MinCost)
	require.NoError(t, err)
	owner := uuid.New()

	repo := &FakeUserRepo{
		FetchUserByEmailFunc: func(ctx context.Context, email string) (*domain.User, error) {
			return &domain.User{UUID: owner, Email: email, PasswordHash: string(hash)}, nil
		},
	}
	as := NewAuthService(repo, NewFakeTokenCache(), newTestCounter())
	ctx := context.Background()

	token, err := as.Login(ctx, "a@example.com", "s3cret-pass")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, err := as.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, owner, got)
}

func TestLoginRejections(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret-pass"), bcrypt.MinCost)
	require.NoError(t, err)

	cases := []struct {
		name string
		repo *FakeUserRepo
	}{
		{
			name: "wrong password",
			repo: &FakeUserRepo{
				FetchUserByEmailFunc: func(ctx context.Context, email string) (*domain.User, error) {
					return &domain.User{UUID: uuid.New(), PasswordHash: string(hash)}, nil
				},
			},
		},
		{
			// unknown email reads identically to a wrong password
			name: "unknown email",
			repo: &FakeUserRepo{
				FetchUserByEmailFunc: func(ctx context.Context, email string) (*domain.User, error) {
					return nil, nil
				},
			},
		},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			as := NewAuthService(tt.repo, NewFakeTokenCache(), newTestCounter())

			_, err := as.Login(context.Background(), "a@example.com", "wrong-password")
			require.ErrorIs(t, err, apperr.ErrUnauthenticated)
		})
	}
}

func TestCurrentUser(t *testing.T) {
	id := uuid.New()
	repo := &FakeUserRepo{
		FetchUserByIDFunc: func(ctx context.Context, gotID domain.UUID) (*domain.User, error) {
			assert.Equal(t, id, gotID)
			return &domain.User{UUID: gotID, Email: "a@example.com"}, nil
		},
	}
	as := NewAuthService(repo, NewFakeTokenCache(), newTestCounter())

	u, err := as.CurrentUser(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", u.Email)
}

func TestCurrentUserGone(t *testing.T) {
	repo := &FakeUserRepo{
		FetchUserByIDFunc: func(ctx context.Context, id domain.UUID) (*domain.User, error) {
			return nil, nil
		},
	}
	as := NewAuthService(repo, NewFakeTokenCache(), newTestCounter())

	_, err := as.CurrentUser(context.Background(), uuid.New())
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestLogoutRevokesToken(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret-pass"), bcrypt.MinCost)
	require.NoError(t, err)

	repo := &FakeUserRepo{
		FetchUserByEmailFunc: func(ctx context.Context, email string) (*domain.User, error) {
			return &domain.User{UUID: uuid.New(), PasswordHash: string(hash)}, nil
		},
	}
	as := NewAuthService(repo, NewFakeTokenCache(), newTestCounter())
	ctx := context.Background()

	token, err := as.Login(ctx, "a@example.com", "s3cret-pass")
	require.NoError(t, err)

	require.NoError(t, as.Logout(ctx, token))

	_, err = as.Authenticate(ctx, token)
	require.ErrorIs(t, err, apperr.ErrUnauthenticated)

	// logout of an already revoked token is still fine
	require.NoError(t, as.Logout(ctx, token))
}
