package tokencache

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"file-vault-api/internal/domain/apperr"
	"file-vault-api/internal/domain/user"
)

const tokenBytes = 32

// Cache maps opaque session tokens to user ids in an embedded badger store.
// Entries carry a TTL, so an expired token simply stops resolving. Nothing
// outside this package touches the underlying store.
type Cache struct {
	logger *zap.Logger
	db     *badger.DB
	ttl    time.Duration
}

func New(logger *zap.Logger, dir string, ttl time.Duration) (*Cache, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open session cache: %w", err)
	}

	logger.Info("session cache opened", zap.String("dir", dir))

	return &Cache{
		logger: logger,
		db:     db,
		ttl:    ttl,
	}, nil
}

// Issue generates a cryptographically random token and stores it against
// the user id with the configured TTL.
func (c *Cache) Issue(ctx context.Context, u user.UUID) (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	token := hex.EncodeToString(buf)

	err := c.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(token), []byte(u.String())).WithTTL(c.ttl)
		return txn.SetEntry(e)
	})
	if err != nil {
		return "", fmt.Errorf("store token: %w", err)
	}

	return token, nil
}

// Lookup resolves a token to a user id. A missing or expired entry yields
// apperr.ErrUnauthenticated, never a generic fault.
func (c *Cache) Lookup(ctx context.Context, token string) (user.UUID, error) {
	var raw []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(token))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return user.UUID{}, apperr.ErrUnauthenticated
		}
		return user.UUID{}, fmt.Errorf("token lookup: %w", err)
	}

	id, err := uuid.Parse(string(raw))
	if err != nil {
		return user.UUID{}, fmt.Errorf("corrupt token entry: %w", err)
	}

	return id, nil
}

// Revoke deletes the token. Revoking an unknown or already revoked token is
// not an error.
func (c *Cache) Revoke(ctx context.Context, token string) error {
	err := c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(token))
	})
	if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (c *Cache) IsAlive() bool { return !c.db.IsClosed() }

func (c *Cache) Close() error { return c.db.Close() }
