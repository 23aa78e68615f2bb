//go:build integration

package idempotency

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startRedis(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(ctx) })

	host, err := c.Host(ctx)
	require.NoError(t, err)
	port, err := c.MappedPort(ctx, "6379/tcp")
	require.NoError(t, err)
	return fmt.Sprintf("redis://%s:%s/0", host, port.Port())
}

func TestRedisStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	client, err := OpenRedis(ctx, startRedis(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	s := NewRedisStore(client, time.Minute)
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

	_, _, err = s.Begin(ctx, key, "fp2")
	require.ErrorIs(t, err, ErrKeyReused)

	require.NoError(t, s.Release(ctx, key))
	st, _, err = s.Begin(ctx, key, "fp1")
	require.NoError(t, err)
	assert.Equal(t, StateNew, st)
}
