package verification

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	apperrors "github.com/swiftcartlabs/swiftcart-backend/pkg/errors"
)

// TokenKV is the expiring key-value surface the store needs, satisfied by
// pkg/redis.Client.
type TokenKV interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	VerificationKey(token string) string
}

// Store keeps short-lived payment verification tokens in an external expiring
// store, so pending verifications survive restarts and multiple instances.
type Store struct {
	kv  TokenKV
	ttl time.Duration
}

// NewStore builds a token store with the configured TTL.
func NewStore(kv TokenKV, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Store{kv: kv, ttl: ttl}
}

// Issue mints a token bound to the order and stores it with the TTL.
func (s *Store) Issue(ctx context.Context, orderID uuid.UUID) (string, error) {
	token := uuid.NewString()
	key := s.kv.VerificationKey(token)
	if err := s.kv.Set(ctx, key, orderID.String(), s.ttl); err != nil {
		return "", apperrors.Wrap(apperrors.CodeDependency, err, "store verification token")
	}
	return token, nil
}

// Lookup resolves a token back to its order id. Expired and unknown tokens
// are indistinguishable.
func (s *Store) Lookup(ctx context.Context, token string) (uuid.UUID, error) {
	value, err := s.kv.Get(ctx, s.kv.VerificationKey(token))
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return uuid.Nil, apperrors.New(apperrors.CodeNotFound, "verification token expired or unknown")
		}
		return uuid.Nil, apperrors.Wrap(apperrors.CodeDependency, err, "load verification token")
	}
	orderID, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, apperrors.Wrap(apperrors.CodeInternal, err, "corrupt verification token payload")
	}
	return orderID, nil
}

// Revoke drops a token once the verification completes.
func (s *Store) Revoke(ctx context.Context, token string) error {
	return s.kv.Del(ctx, s.kv.VerificationKey(token))
}
