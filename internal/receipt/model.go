package receipt

import (
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/backend-agency/internal/fare"
)

// Method is how the customer paid.
type Method string

const (
	MethodCash   Method = "cash"
	MethodBank   Method = "bank"
	MethodMobile Method = "mobile"
)

// Valid reports whether the payment method is known.
func (m Method) Valid() bool {
	switch m {
	case MethodCash, MethodBank, MethodMobile:
		return true
	}
	return false
}

// Receipt records one payment taken from a customer.
type Receipt struct {
	ID         uuid.UUID  `json:"id"`
	ReceiptNo  string     `json:"receipt_no"`
	CustomerID uuid.UUID  `json:"customer_id"`
	InvoiceID  *uuid.UUID `json:"invoice_id,omitempty"`
	Amount     fare.Money `json:"amount"`
	Method     Method     `json:"method"`
	Reference  string     `json:"reference,omitempty"`
	Note       string     `json:"note,omitempty"`
	ToDeposit  bool       `json:"to_deposit"`
	CreatedBy  uuid.UUID  `json:"created_by"`
	CreatedAt  time.Time  `json:"created_at"`
}
