package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/noah-isme/backend-agency/internal/common"
	"github.com/noah-isme/backend-agency/internal/events"
)

// EmailNotifier sends transactional emails for selected topics.
type EmailNotifier struct {
	Mail         common.EmailSender
	Enabled      bool
	From         string
	TopicToggles map[string]bool
}

// Notify implements the events.Notifier interface.
func (n EmailNotifier) Notify(_ context.Context, event events.Event) error {
	if !n.Enabled || n.Mail == nil {
		return nil
	}
	if n.TopicToggles != nil {
		if enabled, ok := n.TopicToggles[event.Topic]; ok && !enabled {
			return nil
		}
	}
	payload := map[string]any{}
	if len(event.Payload) > 0 {
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			return fmt.Errorf("email notify: decode payload: %w", err)
		}
	}
	to := extractRecipient(payload)
	if to == "" {
		return nil
	}
	subject := subjectFor(event.Topic)
	body := bodyFor(event.Topic, payload, event.OccurredAt)
	return n.Mail.Send(to, subject, body)
}

func extractRecipient(payload map[string]any) string {
	keys := []string{"email", "recipient", "customer_email"}
	for _, key := range keys {
		if val, ok := payload[key]; ok {
			if s, ok := val.(string); ok {
				s = strings.TrimSpace(s)
				if s != "" {
					return s
				}
			}
		}
	}
	return ""
}

func subjectFor(topic string) string {
	switch topic {
	case events.TopicInvoiceIssued:
		return "Invoice issued"
	case events.TopicInvoiceVoided:
		return "Invoice voided"
	case events.TopicReceiptRecorded:
		return "Payment received"
	case events.TopicDepositAdjusted:
		return "Deposit balance updated"
	default:
		return fmt.Sprintf("Notification %s", topic)
	}
}

func bodyFor(topic string, payload map[string]any, occurred time.Time) string {
	summary := fmt.Sprintf("Event %s occurred at %s.", topic, occurred.Format(time.RFC3339))
	if invoiceNo, ok := payload["invoice_no"].(string); ok && invoiceNo != "" {
		summary += fmt.Sprintf("\nInvoice: %s", invoiceNo)
	}
	if receiptNo, ok := payload["receipt_no"].(string); ok && receiptNo != "" {
		summary += fmt.Sprintf("\nReceipt: %s", receiptNo)
	}
	if note, ok := payload["message"].(string); ok && note != "" {
		summary += "\n" + note
	}
	return summary
}
