package verification

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeKV struct {
	values map[string]string
}

func newFakeKV() *fakeKV {
	return &fakeKV{values: map[string]string{}}
}

func (f *fakeKV) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	f.values[key] = value.(string)
	return nil
}

func (f *fakeKV) Get(ctx context.Context, key string) (string, error) {
	value, ok := f.values[key]
	if !ok {
		return "", goredis.Nil
	}
	return value, nil
}

func (f *fakeKV) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.values, key)
	}
	return nil
}

func (f *fakeKV) VerificationKey(token string) string {
	return "sc:verification:" + token
}

func TestIssueAndLookupRoundTrip(t *testing.T) {
	store := NewStore(newFakeKV(), time.Minute)
	orderID := uuid.New()

	token, err := store.Issue(context.Background(), orderID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	resolved, err := store.Lookup(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, orderID, resolved)
}

func TestLookupUnknownToken(t *testing.T) {
	store := NewStore(newFakeKV(), time.Minute)

	_, err := store.Lookup(context.Background(), uuid.NewString())
	require.Error(t, err)
}

func TestRevokeDropsToken(t *testing.T) {
	store := NewStore(newFakeKV(), time.Minute)
	orderID := uuid.New()

	token, err := store.Issue(context.Background(), orderID)
	require.NoError(t, err)
	require.NoError(t, store.Revoke(context.Background(), token))

	_, err = store.Lookup(context.Background(), token)
	require.Error(t, err)
}
