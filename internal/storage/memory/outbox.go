package memory

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dwikikusuma/shoe-store/pkg/contracts"
	"github.com/dwikikusuma/shoe-store/pkg/outbox"
)

// OutboxStore implements both outbox.Writer and outbox.Source.
type OutboxStore struct {
	s Scope
}

func NewOutboxStore(s Scope) *OutboxStore {
	return &OutboxStore{s: s}
}

func (o *OutboxStore) Append(ctx context.Context, evt contracts.Event) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", evt.Type, err)
	}
	return o.s.run(ctx, func(tx *Tx) error {
		db := tx.db
		n, seq := len(db.outbox), db.outboxSeq
		tx.onRollback(func() {
			db.outbox = db.outbox[:n]
			db.outboxSeq = seq
		})

		db.outboxSeq++
		db.outbox = append(db.outbox, outbox.Record{
			ID:        db.outboxSeq,
			EventID:   evt.EventID,
			Topic:     db.topic,
			Key:       evt.OrderID,
			Payload:   data,
			CreatedAt: db.stamp(),
		})
		return nil
	})
}

func (o *OutboxStore) FetchPending(ctx context.Context, limit int) ([]outbox.Record, error) {
	var out []outbox.Record
	err := o.s.run(ctx, func(tx *Tx) error {
		for _, rec := range tx.db.outbox {
			if rec.SentAt == nil && len(out) < limit {
				out = append(out, rec)
			}
		}
		return nil
	})
	return out, err
}

func (o *OutboxStore) MarkSent(ctx context.Context, id int64) error {
	return o.s.run(ctx, func(tx *Tx) error {
		for i := range tx.db.outbox {
			if tx.db.outbox[i].ID == id {
				prev := tx.db.outbox[i].SentAt
				idx := i
				db := tx.db
				tx.onRollback(func() { db.outbox[idx].SentAt = prev })
				now := db.stamp()
				db.outbox[i].SentAt = &now
				return nil
			}
		}
		return nil
	})
}

// Events decodes every appended event, sent or not.
func (o *OutboxStore) Events(ctx context.Context) ([]contracts.Event, error) {
	var out []contracts.Event
	err := o.s.run(ctx, func(tx *Tx) error {
		for _, rec := range tx.db.outbox {
			var evt contracts.Event
			if err := json.Unmarshal(rec.Payload, &evt); err != nil {
				return err
			}
			out = append(out, evt)
		}
		return nil
	})
	return out, err
}
