package deposit

import (
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/backend-agency/internal/fare"
)

// Kind distinguishes the two ledger entry directions.
type Kind string

const (
	KindCredit Kind = "credit"
	KindDebit  Kind = "debit"
)

// Reference types recorded against ledger entries.
const (
	RefManual  = "manual"
	RefInvoice = "invoice"
	RefReceipt = "receipt"
	RefVoid    = "void"
)

// Entry is one immutable row in a customer's deposit ledger.
type Entry struct {
	ID            uuid.UUID  `json:"id"`
	CustomerID    uuid.UUID  `json:"customer_id"`
	Kind          Kind       `json:"kind"`
	Amount        fare.Money `json:"amount"`
	BalanceAfter  fare.Money `json:"balance_after"`
	ReferenceType string     `json:"reference_type"`
	ReferenceID   string     `json:"reference_id,omitempty"`
	Note          string     `json:"note,omitempty"`
	CreatedBy     uuid.UUID  `json:"created_by"`
	CreatedAt     time.Time  `json:"created_at"`
}
