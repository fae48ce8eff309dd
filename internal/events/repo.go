package events

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type db interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repo persists domain events in Postgres.
type Repo struct {
	db db
}

// NewRepo builds an event repository.
func NewRepo(db db) *Repo {
	return &Repo{db: db}
}

// InsertEvent writes one event row.
func (r *Repo) InsertEvent(ctx context.Context, topic string, aggregateID uuid.UUID, payload []byte) (Event, error) {
	const q = `
		INSERT INTO domain_events (topic, aggregate_id, payload)
		VALUES (@topic, @aggregate_id, @payload)
		RETURNING id, topic, aggregate_id, payload, occurred_at`

	var e Event
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{
		"topic":        topic,
		"aggregate_id": aggregateID,
		"payload":      payload,
	}).Scan(&e.ID, &e.Topic, &e.AggregateID, &e.Payload, &e.OccurredAt)
	if err != nil {
		return Event{}, fmt.Errorf("events.Repo.InsertEvent: %w", err)
	}
	return e, nil
}
