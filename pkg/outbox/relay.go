package outbox

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Publisher delivers one record to the bus.
type Publisher interface {
	Publish(ctx context.Context, topic, key string, value []byte) error
}

type RelayOptions struct {
	Interval  time.Duration
	BatchSize int
	Logger    *slog.Logger
}

type Relay struct {
	src      Source
	pub      Publisher
	interval time.Duration
	batch    int
	log      *slog.Logger
}

func NewRelay(src Source, pub Publisher, opts RelayOptions) *Relay {
	if opts.Interval <= 0 {
		opts.Interval = time.Second
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 100
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Relay{
		src:      src,
		pub:      pub,
		interval: opts.Interval,
		batch:    opts.BatchSize,
		log:      opts.Logger,
	}
}

// Flush publishes one batch of pending records in id order and returns how
// many were sent. It stops at the first publish failure so ordering per key is
// preserved across retries.
func (r *Relay) Flush(ctx context.Context) (int, error) {
	recs, err := r.src.FetchPending(ctx, r.batch)
	if err != nil {
		return 0, fmt.Errorf("fetch pending: %w", err)
	}

	sent := 0
	for _, rec := range recs {
		if err := r.pub.Publish(ctx, rec.Topic, rec.Key, rec.Payload); err != nil {
			return sent, fmt.Errorf("publish %s: %w", rec.EventID, err)
		}
		if err := r.src.MarkSent(ctx, rec.ID); err != nil {
			return sent, fmt.Errorf("mark sent %d: %w", rec.ID, err)
		}
		sent++
	}
	return sent, nil
}

// Run flushes on every tick until ctx is done.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.log.Info("outbox relay started", slog.Duration("interval", r.interval), slog.Int("batch", r.batch))
	for {
		select {
		case <-ctx.Done():
			r.log.Info("outbox relay stopped")
			return nil
		case <-ticker.C:
			n, err := r.Flush(ctx)
			if err != nil && ctx.Err() == nil {
				r.log.Warn("outbox flush failed", slog.Any("err", err), slog.Int("sent", n))
				continue
			}
			if n > 0 {
				r.log.Debug("outbox flushed", slog.Int("sent", n))
			}
		}
	}
}
