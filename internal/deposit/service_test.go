package deposit

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-agency/internal/common"
	"github.com/noah-isme/backend-agency/internal/events"
)

func TestNextBalance(t *testing.T) {
	tests := []struct {
		name    string
		current int64
		kind    Kind
		amount  int64
		want    int64
		wantErr string
	}{
		{name: "credit grows balance", current: 1000, kind: KindCredit, amount: 500, want: 1500},
		{name: "credit from zero", current: 0, kind: KindCredit, amount: 300, want: 300},
		{name: "debit within balance", current: 1000, kind: KindDebit, amount: 1000, want: 0},
		{name: "debit partial", current: 1000, kind: KindDebit, amount: 400, want: 600},
		{name: "debit overdraft rejected", current: 1000, kind: KindDebit, amount: 1001, wantErr: "INSUFFICIENT_DEPOSIT"},
		{name: "debit from zero rejected", current: 0, kind: KindDebit, amount: 1, wantErr: "INSUFFICIENT_DEPOSIT"},
		{name: "zero amount rejected", current: 1000, kind: KindCredit, amount: 0, wantErr: "VALIDATION_ERROR"},
		{name: "negative amount rejected", current: 1000, kind: KindDebit, amount: -5, wantErr: "VALIDATION_ERROR"},
		{name: "unknown kind rejected", current: 1000, kind: Kind("transfer"), amount: 10, wantErr: "VALIDATION_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextBalance(tt.current, tt.kind, tt.amount)
			if tt.wantErr != "" {
				var appErr *common.AppError
				require.ErrorAs(t, err, &appErr)
				require.Equal(t, tt.wantErr, appErr.Code)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

type capturedEvent struct {
	topic       string
	aggregateID uuid.UUID
	payload     []byte
}

type captureStore struct {
	events []capturedEvent
}

func (s *captureStore) InsertEvent(_ context.Context, topic string, aggregateID uuid.UUID, payload []byte) (events.Event, error) {
	s.events = append(s.events, capturedEvent{topic: topic, aggregateID: aggregateID, payload: payload})
	return events.Event{ID: uuid.New(), Topic: topic, AggregateID: aggregateID, Payload: payload}, nil
}

func TestEmitAdjustedPublishesDepositEvent(t *testing.T) {
	store := &captureStore{}
	svc := &Service{Bus: &events.Bus{Store: store}}

	entry := Entry{
		ID:            uuid.New(),
		CustomerID:    uuid.New(),
		Kind:          KindCredit,
		Amount:        5000,
		BalanceAfter:  15000,
		ReferenceType: RefManual,
	}
	svc.emitAdjusted(context.Background(), entry)

	require.Len(t, store.events, 1)
	require.Equal(t, events.TopicDepositAdjusted, store.events[0].topic)
	require.Equal(t, entry.CustomerID, store.events[0].aggregateID)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(store.events[0].payload, &payload))
	require.Equal(t, float64(5000), payload["amount"])
	require.Equal(t, float64(15000), payload["balance_after"])
	require.Equal(t, string(KindCredit), payload["kind"])
}

func TestEmitAdjustedNoBusIsNoop(t *testing.T) {
	svc := &Service{}
	svc.emitAdjusted(context.Background(), Entry{CustomerID: uuid.New()})
}
