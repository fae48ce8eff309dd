package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	events []Event
	err    error
}

func (m *memStore) InsertEvent(_ context.Context, topic string, aggregateID uuid.UUID, payload []byte) (Event, error) {
	if m.err != nil {
		return Event{}, m.err
	}
	e := Event{ID: uuid.New(), Topic: topic, AggregateID: aggregateID, Payload: payload, OccurredAt: time.Now()}
	m.events = append(m.events, e)
	return e, nil
}

type recordingNotifier struct {
	seen []Event
	err  error
}

func (n *recordingNotifier) Notify(_ context.Context, e Event) error {
	n.seen = append(n.seen, e)
	return n.err
}

func TestEmitPersistsAndNotifies(t *testing.T) {
	store := &memStore{}
	notifier := &recordingNotifier{}
	bus := &Bus{Store: store, Notifiers: []Notifier{notifier}}

	aggregate := uuid.New()
	ev, err := bus.Emit(context.Background(), TopicInvoiceIssued, aggregate, map[string]any{"amount_due": 1100})
	require.NoError(t, err)
	require.Equal(t, TopicInvoiceIssued, ev.Topic)
	require.Equal(t, aggregate, ev.AggregateID)
	require.JSONEq(t, `{"amount_due":1100}`, string(ev.Payload))
	require.Len(t, store.events, 1)
	require.Len(t, notifier.seen, 1)
}

func TestEmitRequiresTopicAndAggregate(t *testing.T) {
	bus := &Bus{Store: &memStore{}}

	_, err := bus.Emit(context.Background(), "  ", uuid.New(), nil)
	require.Error(t, err)

	_, err = bus.Emit(context.Background(), TopicReceiptRecorded, uuid.Nil, nil)
	require.Error(t, err)
}

func TestEmitNotifierFailureDoesNotUndoPersistence(t *testing.T) {
	store := &memStore{}
	bus := &Bus{Store: store, Notifiers: []Notifier{&recordingNotifier{err: errors.New("smtp down")}}}

	_, err := bus.Emit(context.Background(), TopicInvoiceVoided, uuid.New(), []byte(`{"reason":"duplicate"}`))
	require.Error(t, err)
	require.Len(t, store.events, 1)
}

func TestEmitRejectsInvalidJSONPayload(t *testing.T) {
	bus := &Bus{Store: &memStore{}}

	_, err := bus.Emit(context.Background(), TopicInvoiceIssued, uuid.New(), []byte(`{not json`))
	require.Error(t, err)
}
