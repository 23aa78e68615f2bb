// Package outbox implements the transactional outbox: events are appended in
// the same transaction as the state change they describe and a Relay later
// publishes them to the message bus.
package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dwikikusuma/shoe-store/pkg/contracts"
	"github.com/dwikikusuma/shoe-store/pkg/postgres"
)

type Record struct {
	ID        int64           `json:"id"`
	EventID   string          `json:"event_id"`
	Topic     string          `json:"topic"`
	Key       string          `json:"key"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
	SentAt    *time.Time      `json:"sent_at"`
}

// Writer appends an event to the outbox of the current unit of work.
type Writer interface {
	Append(ctx context.Context, evt contracts.Event) error
}

// Source is what the relay drains.
type Source interface {
	FetchPending(ctx context.Context, limit int) ([]Record, error)
	MarkSent(ctx context.Context, id int64) error
}

type PostgresStore struct {
	db    postgres.DBTX
	topic string
}

func NewPostgresStore(db postgres.DBTX, topic string) *PostgresStore {
	return &PostgresStore{db: db, topic: topic}
}

func (s *PostgresStore) Append(ctx context.Context, evt contracts.Event) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", evt.Type, err)
	}
	_, err = s.db.Exec(ctx,
		`INSERT INTO outbox(event_id, topic, key, payload) VALUES ($1, $2, $3, $4)`,
		evt.EventID, s.topic, evt.OrderID, data,
	)
	return err
}

func (s *PostgresStore) MarkSent(ctx context.Context, id int64) error {
	_, err := s.db.Exec(ctx, `UPDATE outbox SET sent_at=now() WHERE id=$1`, id)
	return err
}

func (s *PostgresStore) FetchPending(ctx context.Context, limit int) ([]Record, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, event_id, topic, key, payload, created_at, sent_at
		   FROM outbox WHERE sent_at IS NULL ORDER BY id LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.EventID, &rec.Topic, &rec.Key, &rec.Payload, &rec.CreatedAt, &rec.SentAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
