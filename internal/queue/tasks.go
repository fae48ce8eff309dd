package queue

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Task type names routed through asynq.
const (
	TypeInvoicePDF  = "invoice:render_pdf"
	TypeNotifyEmail = "notify:email"
)

// InvoicePDFPayload asks the worker to render and store an invoice document.
type InvoicePDFPayload struct {
	InvoiceID uuid.UUID `json:"invoice_id"`
}

// NotifyEmailPayload asks the worker to deliver one email.
type NotifyEmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NewInvoicePDFTask builds the PDF render task for an invoice.
func NewInvoicePDFTask(invoiceID uuid.UUID) (*asynq.Task, error) {
	payload, err := json.Marshal(InvoicePDFPayload{InvoiceID: invoiceID})
	if err != nil {
		return nil, fmt.Errorf("queue: marshal pdf payload: %w", err)
	}
	return asynq.NewTask(TypeInvoicePDF, payload, asynq.MaxRetry(5)), nil
}

// NewNotifyEmailTask builds an email delivery task.
func NewNotifyEmailTask(to, subject, body string) (*asynq.Task, error) {
	payload, err := json.Marshal(NotifyEmailPayload{To: to, Subject: subject, Body: body})
	if err != nil {
		return nil, fmt.Errorf("queue: marshal email payload: %w", err)
	}
	return asynq.NewTask(TypeNotifyEmail, payload, asynq.MaxRetry(3)), nil
}
