package queue

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-agency/internal/common"
)

var _ common.EmailSender = QueuedEmailSender{}

func TestNewNotifyEmailTask(t *testing.T) {
	task, err := NewNotifyEmailTask("karim@example.com", "Invoice issued", "Invoice: INV-202608-000042")
	require.NoError(t, err)
	require.Equal(t, TypeNotifyEmail, task.Type())

	var p NotifyEmailPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &p))
	require.Equal(t, "karim@example.com", p.To)
	require.Equal(t, "Invoice issued", p.Subject)
	require.Equal(t, "Invoice: INV-202608-000042", p.Body)
}

func TestNewInvoicePDFTask(t *testing.T) {
	id := uuid.New()
	task, err := NewInvoicePDFTask(id)
	require.NoError(t, err)
	require.Equal(t, TypeInvoicePDF, task.Type())

	var p InvoicePDFPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &p))
	require.Equal(t, id, p.InvoiceID)
}

func TestQueuedEmailSenderDropsWhenQueueDisabled(t *testing.T) {
	sender := QueuedEmailSender{Q: Enqueuer{}}
	require.NoError(t, sender.Send("karim@example.com", "Payment received", "Receipt: RCP-1"))
}
