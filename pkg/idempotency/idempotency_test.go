package idempotency

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"

	"github.com/dwikikusuma/shoe-store/pkg/apperr"
)

func TestKeyTrimsHeader(t *testing.T) {
	r := httptest.NewRequest("POST", "/api/orders", nil)
	r.Header.Set(Header, "  abc-123 ")
	assert.Equal(t, "abc-123", Key(r))
}

func TestMemoryStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Hour)
	key := ScopedKey("orders", "u1", "k1")

	st, _, err := s.Begin(ctx, key, "fp1")
	require.NoError(t, err)
	assert.Equal(t, StateNew, st)

	st, _, err = s.Begin(ctx, key, "fp1")
	require.NoError(t, err)
	assert.Equal(t, StateInProgress, st)

	require.NoError(t, s.Complete(ctx, key, "fp1", []byte(`{"id":"o1"}`)))

	st, body, err := s.Begin(ctx, key, "fp1")
	require.NoError(t, err)
	assert.Equal(t, StateDone, st)
	assert.JSONEq(t, `{"id":"o1"}`, string(body))
}

func TestMemoryStore_ReleaseFreesKey(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Hour)

	_, _, err := s.Begin(ctx, "k", "fp1")
	require.NoError(t, err)
	require.NoError(t, s.Release(ctx, "k"))

	st, _, err := s.Begin(ctx, "k", "fp1")
	require.NoError(t, err)
	assert.Equal(t, StateNew, st)
}

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	_, _, err := s.Begin(ctx, "k", "fp1")
	require.NoError(t, err)
	require.NoError(t, s.Complete(ctx, "k", "fp1", []byte("x")))

	now = now.Add(2 * time.Minute)
	st, _, err := s.Begin(ctx, "k", "fp1")
	require.NoError(t, err)
	assert.Equal(t, StateNew, st)
}

func TestMemoryStore_DifferentRequestSameKey(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Hour)

	_, _, err := s.Begin(ctx, "k", "fp1")
	require.NoError(t, err)

	_, _, err = s.Begin(ctx, "k", "fp2")
	require.ErrorIs(t, err, ErrKeyReused)

	require.NoError(t, s.Complete(ctx, "k", "fp1", []byte(`{"id":"o1"}`)))
	_, _, err = s.Begin(ctx, "k", "fp2")
	require.ErrorIs(t, err, ErrKeyReused)

	st, _, err := s.Begin(ctx, "k", "fp1")
	require.NoError(t, err)
	assert.Equal(t, StateDone, st)
}

func TestFingerprint(t *testing.T) {
	type body struct {
		A string `json:"a"`
		B int    `json:"b"`
	}
	a, err := Fingerprint(body{A: "x", B: 1})
	require.NoError(t, err)
	b, err := Fingerprint(body{A: "x", B: 1})
	require.NoError(t, err)
	c, err := Fingerprint(body{A: "x", B: 2})
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}

func TestErrKeyReusedIsConflict(t *testing.T) {
	code, reason := apperr.CodeOf(ErrKeyReused)
	assert.Equal(t, codes.Aborted, code)
	assert.Equal(t, "IDEMPOTENCY_KEY_REUSED", reason)
	assert.False(t, apperr.IsRetryable(ErrKeyReused))
}

func TestScopedKeySeparatesUsers(t *testing.T) {
	assert.NotEqual(t, ScopedKey("orders", "u1", "k"), ScopedKey("orders", "u2", "k"))
}

func TestErrInProgressIsRetryableConflict(t *testing.T) {
	code, reason := apperr.CodeOf(ErrInProgress)
	assert.Equal(t, codes.Aborted, code)
	assert.Equal(t, "REQUEST_IN_PROGRESS", reason)
	assert.True(t, apperr.IsRetryable(ErrInProgress))
}
