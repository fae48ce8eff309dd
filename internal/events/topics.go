package events

// Topic constants for domain events emitted by the back office.
const (
	TopicInvoiceIssued   = "invoice.issued"
	TopicInvoiceVoided   = "invoice.voided"
	TopicReceiptRecorded = "receipt.recorded"
	TopicDepositAdjusted = "deposit.adjusted"
)

// DefaultTopics returns the canonical list of topics that support notifications.
func DefaultTopics() []string {
	return []string{
		TopicInvoiceIssued,
		TopicInvoiceVoided,
		TopicReceiptRecorded,
		TopicDepositAdjusted,
	}
}
