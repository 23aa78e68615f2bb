package outbox

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/dwikikusuma/shoe-store/pkg/logger"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeSource struct {
	mu   sync.Mutex
	recs []Record
	sent map[int64]bool
}

func newFakeSource(n int) *fakeSource {
	s := &fakeSource{sent: map[int64]bool{}}
	for i := 1; i <= n; i++ {
		s.recs = append(s.recs, Record{ID: int64(i), EventID: "evt", Topic: "t", Key: "k", Payload: []byte(`{}`)})
	}
	return s
}

func (s *fakeSource) FetchPending(ctx context.Context, limit int) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Record
	for _, r := range s.recs {
		if !s.sent[r.ID] && len(out) < limit {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *fakeSource) MarkSent(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent[id] = true
	return nil
}

func (s *fakeSource) sentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

type fakePublisher struct {
	mu     sync.Mutex
	failOn int
	calls  int
}

func (p *fakePublisher) Publish(ctx context.Context, topic, key string, value []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.failOn > 0 && p.calls == p.failOn {
		return errors.New("broker down")
	}
	return nil
}

func TestRelay_FlushPublishesInBatches(t *testing.T) {
	src := newFakeSource(5)
	relay := NewRelay(src, &fakePublisher{}, RelayOptions{BatchSize: 3, Logger: logger.Discard()})

	n, err := relay.Flush(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = relay.Flush(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 5, src.sentCount())
}

func TestRelay_FlushStopsAtFirstFailure(t *testing.T) {
	src := newFakeSource(4)
	relay := NewRelay(src, &fakePublisher{failOn: 2}, RelayOptions{Logger: logger.Discard()})

	n, err := relay.Flush(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, src.sentCount())

	n, err = relay.Flush(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestRelay_RunStopsOnCancel(t *testing.T) {
	src := newFakeSource(2)
	relay := NewRelay(src, &fakePublisher{}, RelayOptions{Interval: 5 * time.Millisecond, Logger: logger.Discard()})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- relay.Run(ctx) }()

	require.Eventually(t, func() bool { return src.sentCount() == 2 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("relay did not stop")
	}
}
