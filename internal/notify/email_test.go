package notify

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-agency/internal/common"
	"github.com/noah-isme/backend-agency/internal/events"
)

func sampleEvent(topic string, payload map[string]any) events.Event {
	raw, _ := json.Marshal(payload)
	return events.Event{
		ID:          uuid.New(),
		Topic:       topic,
		AggregateID: uuid.New(),
		Payload:     raw,
		OccurredAt:  time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
	}
}

func TestEmailNotifierSends(t *testing.T) {
	mem := &common.InMemoryEmail{}
	n := EmailNotifier{Mail: mem, Enabled: true, From: "billing@agency.test"}

	ev := sampleEvent(events.TopicInvoiceIssued, map[string]any{
		"email":      "customer@example.com",
		"invoice_no": "INV-202603-000042",
	})
	require.NoError(t, n.Notify(context.Background(), ev))
	require.Len(t, mem.Outbox, 1)
	require.Equal(t, "customer@example.com", mem.Outbox[0].To)
	require.Equal(t, "Invoice issued", mem.Outbox[0].Subject)
	require.Contains(t, mem.Outbox[0].HTML, "INV-202603-000042")
}

func TestEmailNotifierDisabled(t *testing.T) {
	mem := &common.InMemoryEmail{}
	n := EmailNotifier{Mail: mem, Enabled: false}
	ev := sampleEvent(events.TopicReceiptRecorded, map[string]any{"email": "x@y.z"})
	require.NoError(t, n.Notify(context.Background(), ev))
	require.Empty(t, mem.Outbox)
}

func TestEmailNotifierTopicToggle(t *testing.T) {
	mem := &common.InMemoryEmail{}
	n := EmailNotifier{
		Mail:         mem,
		Enabled:      true,
		TopicToggles: map[string]bool{events.TopicDepositAdjusted: false},
	}
	ev := sampleEvent(events.TopicDepositAdjusted, map[string]any{"email": "x@y.z"})
	require.NoError(t, n.Notify(context.Background(), ev))
	require.Empty(t, mem.Outbox)
}

func TestEmailNotifierNoRecipient(t *testing.T) {
	mem := &common.InMemoryEmail{}
	n := EmailNotifier{Mail: mem, Enabled: true}
	ev := sampleEvent(events.TopicInvoiceVoided, map[string]any{"invoice_no": "INV-1"})
	require.NoError(t, n.Notify(context.Background(), ev))
	require.Empty(t, mem.Outbox)
}
