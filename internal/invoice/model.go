package invoice

import (
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/backend-agency/internal/fare"
)

// Status is the lifecycle state of an invoice.
type Status string

const (
	StatusIssued Status = "issued"
	StatusVoid   Status = "void"
)

// Item is one passenger line on an invoice.
type Item struct {
	ID            uuid.UUID  `json:"id"`
	InvoiceID     uuid.UUID  `json:"invoice_id"`
	PassengerName string     `json:"passenger_name"`
	Sector        string     `json:"sector"`
	TravelDate    time.Time  `json:"travel_date"`
	TicketNumber  string     `json:"ticket_number,omitempty"`
	UnitPrice     fare.Money `json:"unit_price"`
}

// Invoice is a persisted ticket invoice with its fare breakdown.
type Invoice struct {
	ID              uuid.UUID   `json:"id"`
	InvoiceNo       string      `json:"invoice_no"`
	CustomerID      uuid.UUID   `json:"customer_id"`
	Source          fare.Source `json:"source"`
	Status          Status      `json:"status"`
	FaceValue       fare.Money  `json:"face_value"`
	Addition        fare.Money  `json:"addition"`
	DepositDeducted fare.Money  `json:"deposit_deducted"`
	AmountDue       fare.Money  `json:"amount_due"`
	AmountPaid      fare.Money  `json:"amount_paid"`
	PassengerCount  int         `json:"passenger_count"`
	PerPerson       fare.Money  `json:"-"`
	VendorPrice     *fare.Money `json:"vendor_price,omitempty"`
	AirlinePrice    *fare.Money `json:"airline_price,omitempty"`
	Currency        string      `json:"currency"`
	Note            string      `json:"note,omitempty"`
	PDFPath         string      `json:"pdf_path,omitempty"`
	CreatedBy       uuid.UUID   `json:"created_by"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
	VoidedAt        *time.Time  `json:"voided_at,omitempty"`
	VoidedBy        *uuid.UUID  `json:"voided_by,omitempty"`
	VoidReason      string      `json:"void_reason,omitempty"`
	Items           []Item      `json:"items,omitempty"`
}

// RoutePerPerson fills the legacy per-person display field matching the
// invoice source: vendor and agent tickets carry vendor_price, direct tickets
// carry airline_price.
func (inv *Invoice) RoutePerPerson() {
	price := inv.PerPerson
	switch inv.Source {
	case fare.SourceVendor, fare.SourceAgent:
		inv.VendorPrice = &price
		inv.AirlinePrice = nil
	default:
		inv.AirlinePrice = &price
		inv.VendorPrice = nil
	}
}
