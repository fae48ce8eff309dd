package queue

import (
	"context"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// Enqueuer submits background tasks. A zero-value Enqueuer drops tasks
// silently so callers need no nil checks when the queue is disabled.
type Enqueuer struct {
	Client *asynq.Client
	Log    zerolog.Logger
}

// EnqueueInvoicePDF schedules PDF rendering for the invoice. Failures are
// logged, not returned: the invoice is already committed and the render can
// be replayed.
func (e Enqueuer) EnqueueInvoicePDF(ctx context.Context, invoiceID uuid.UUID) {
	if e.Client == nil {
		return
	}
	task, err := NewInvoicePDFTask(invoiceID)
	if err != nil {
		e.Log.Error().Err(err).Str("invoice_id", invoiceID.String()).Msg("build pdf task")
		return
	}
	if _, err := e.Client.EnqueueContext(ctx, task); err != nil {
		e.Log.Error().Err(err).Str("invoice_id", invoiceID.String()).Msg("enqueue pdf task")
	}
}

// QueuedEmailSender satisfies common.EmailSender by deferring delivery to the
// background worker. The API process enqueues notify:email tasks and the
// worker performs the actual send.
type QueuedEmailSender struct {
	Q Enqueuer
}

func (s QueuedEmailSender) Send(to, subject, html string) error {
	s.Q.EnqueueEmail(context.Background(), to, subject, html)
	return nil
}

// EnqueueEmail schedules an email delivery.
func (e Enqueuer) EnqueueEmail(ctx context.Context, to, subject, body string) {
	if e.Client == nil {
		return
	}
	task, err := NewNotifyEmailTask(to, subject, body)
	if err != nil {
		e.Log.Error().Err(err).Str("to", to).Msg("build email task")
		return
	}
	if _, err := e.Client.EnqueueContext(ctx, task); err != nil {
		e.Log.Error().Err(err).Str("to", to).Msg("enqueue email task")
	}
}
