// Package idempotency lets a client retry a mutating request with the same
// Idempotency-Key and get the first response back instead of a second effect.
package idempotency

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"google.golang.org/grpc/codes"

	"github.com/dwikikusuma/shoe-store/pkg/apperr"
)

const Header = "Idempotency-Key"

const pendingMarker = "\x00pending"

func Key(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(Header))
}

// State of a key after Begin.
type State int

const (
	// StateNew means the caller owns the key and must Complete or Release it.
	StateNew State = iota
	StateInProgress
	StateDone
)

var ErrInProgress = &inProgressError{}

type inProgressError struct{}

func (*inProgressError) Error() string    { return "a request with this idempotency key is still in progress" }
func (*inProgressError) Code() codes.Code { return codes.Aborted }
func (*inProgressError) Reason() string   { return "REQUEST_IN_PROGRESS" }
func (*inProgressError) Retryable() bool  { return true }

var _ apperr.Coded = ErrInProgress

// ErrKeyReused is returned by Begin when key was claimed for a different
// request body.
var ErrKeyReused = apperr.New(codes.Aborted, "IDEMPOTENCY_KEY_REUSED",
	"idempotency key was already used with a different request")

type Store interface {
	// Begin claims key for the request identified by fingerprint. When the key
	// already completed for the same fingerprint the stored response is
	// returned with StateDone; a different fingerprint gets ErrKeyReused.
	Begin(ctx context.Context, key, fingerprint string) (State, []byte, error)
	Complete(ctx context.Context, key, fingerprint string, response []byte) error
	Release(ctx context.Context, key string) error
}

// Fingerprint hashes the JSON form of a decoded request, so formatting
// differences in the raw body do not matter.
func Fingerprint(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("fingerprint request: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// ScopedKey namespaces a client key by user so two users cannot collide.
func ScopedKey(scope, userID, key string) string {
	return fmt.Sprintf("idem:%s:%s:%s", scope, userID, key)
}

type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// OpenRedis parses url and pings the server.
func OpenRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

// Redis values are pendingMarker+fingerprint while in progress and
// fingerprint+"\n"+response once done.
func (s *RedisStore) Begin(ctx context.Context, key, fingerprint string) (State, []byte, error) {
	ok, err := s.client.SetNX(ctx, key, pendingMarker+fingerprint, s.ttl).Result()
	if err != nil {
		return 0, nil, fmt.Errorf("claim idempotency key: %w", err)
	}
	if ok {
		return StateNew, nil, nil
	}

	val, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		// expired between SETNX and GET; try once more
		ok, err = s.client.SetNX(ctx, key, pendingMarker+fingerprint, s.ttl).Result()
		if err != nil {
			return 0, nil, fmt.Errorf("claim idempotency key: %w", err)
		}
		if ok {
			return StateNew, nil, nil
		}
		return StateInProgress, nil, nil
	}
	if err != nil {
		return 0, nil, fmt.Errorf("read idempotency key: %w", err)
	}
	if fp, ok := bytes.CutPrefix(val, []byte(pendingMarker)); ok {
		if string(fp) != fingerprint {
			return 0, nil, ErrKeyReused
		}
		return StateInProgress, nil, nil
	}
	fp, response, _ := bytes.Cut(val, []byte("\n"))
	if string(fp) != fingerprint {
		return 0, nil, ErrKeyReused
	}
	return StateDone, response, nil
}

func (s *RedisStore) Complete(ctx context.Context, key, fingerprint string, response []byte) error {
	val := make([]byte, 0, len(fingerprint)+1+len(response))
	val = append(val, fingerprint...)
	val = append(val, '\n')
	val = append(val, response...)
	return s.client.Set(ctx, key, val, s.ttl).Err()
}

func (s *RedisStore) Release(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

type memEntry struct {
	pending     bool
	fingerprint string
	response    []byte
	expires     time.Time
}

// MemoryStore is the single-process Store used with the memory backend and
// in tests.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]memEntry
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl, now: time.Now, entries: map[string]memEntry{}}
}

func (s *MemoryStore) Begin(ctx context.Context, key, fingerprint string) (State, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	e, ok := s.entries[key]
	if ok && now.Before(e.expires) {
		if e.fingerprint != fingerprint {
			return 0, nil, ErrKeyReused
		}
		if e.pending {
			return StateInProgress, nil, nil
		}
		return StateDone, append([]byte(nil), e.response...), nil
	}
	s.entries[key] = memEntry{pending: true, fingerprint: fingerprint, expires: now.Add(s.ttl)}
	return StateNew, nil, nil
}

func (s *MemoryStore) Complete(ctx context.Context, key, fingerprint string, response []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = memEntry{
		fingerprint: fingerprint,
		response:    append([]byte(nil), response...),
		expires:     s.now().Add(s.ttl),
	}
	return nil
}

func (s *MemoryStore) Release(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}
