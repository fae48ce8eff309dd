package ticket

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/noah-isme/backend-agency/internal/common"
	"github.com/noah-isme/backend-agency/internal/fare"
)

// Handlers exposes the ticket issuance endpoints.
type Handlers struct {
	Svc      *Service
	Validate *validator.Validate
}

type itemRequest struct {
	PassengerName string `json:"passenger_name" validate:"required,min=2,max=160"`
	Sector        string `json:"sector" validate:"required,min=3,max=60"`
	TravelDate    string `json:"travel_date" validate:"required,datetime=2006-01-02"`
	TicketNumber  string `json:"ticket_number" validate:"omitempty,max=40"`
	UnitPrice     int64  `json:"unit_price"`
}

type issueRequest struct {
	CustomerID string        `json:"customer_id" validate:"required,uuid"`
	Source     string        `json:"source" validate:"required,oneof=direct vendor agent"`
	Items      []itemRequest `json:"items" validate:"required,min=1,max=50,dive"`
	Addition   int64         `json:"addition"`
	UseDeposit bool          `json:"use_deposit"`
	Note       string        `json:"note" validate:"omitempty,max=400"`
}

func (h *Handlers) parseIssue(r *http.Request) (IssueParams, error) {
	var req issueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return IssueParams{}, common.ErrValidation("invalid JSON body")
	}
	if err := h.Validate.Struct(req); err != nil {
		return IssueParams{}, common.ErrValidation(err.Error())
	}
	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		return IssueParams{}, common.ErrValidation("invalid customer_id")
	}

	items := make([]ItemParams, len(req.Items))
	for i, it := range req.Items {
		travel, err := time.Parse("2006-01-02", it.TravelDate)
		if err != nil {
			return IssueParams{}, common.ErrValidation("invalid travel_date, want YYYY-MM-DD")
		}
		items[i] = ItemParams{
			PassengerName: it.PassengerName,
			Sector:        it.Sector,
			TravelDate:    travel,
			TicketNumber:  it.TicketNumber,
			UnitPrice:     it.UnitPrice,
		}
	}

	p := IssueParams{
		CustomerID: customerID,
		Source:     fare.Source(req.Source),
		Items:      items,
		Addition:   req.Addition,
		UseDeposit: req.UseDeposit,
		Note:       req.Note,
	}
	if raw, ok := common.StaffID(r.Context()); ok {
		p.ActorID, _ = uuid.Parse(raw)
	}
	return p, nil
}

// Issue handles POST /api/v1/tickets.
func (h *Handlers) Issue(w http.ResponseWriter, r *http.Request) {
	p, err := h.parseIssue(r)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	inv, err := h.Svc.Issue(r.Context(), p)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusCreated, inv)
}

// Quote handles POST /api/v1/tickets/quote: the same payload as Issue, but
// nothing is written.
func (h *Handlers) Quote(w http.ResponseWriter, r *http.Request) {
	p, err := h.parseIssue(r)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	summary, err := h.Svc.Quote(r.Context(), p)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, quoteResponse(summary, p.Source))
}

type quotePayload struct {
	FaceValue       int64  `json:"face_value"`
	Addition        int64  `json:"addition"`
	DepositDeducted int64  `json:"deposit_deducted"`
	AmountDue       int64  `json:"amount_due"`
	PassengerCount  int    `json:"passenger_count"`
	VendorPrice     *int64 `json:"vendor_price,omitempty"`
	AirlinePrice    *int64 `json:"airline_price,omitempty"`
}

func quoteResponse(s fare.Summary, source fare.Source) quotePayload {
	out := quotePayload{
		FaceValue:       int64(s.FaceValue),
		Addition:        int64(s.Addition),
		DepositDeducted: int64(s.DepositDeducted),
		AmountDue:       int64(s.AmountDue),
		PassengerCount:  s.PassengerCount,
	}
	perPerson := int64(s.PerPerson)
	switch source {
	case fare.SourceVendor, fare.SourceAgent:
		out.VendorPrice = &perPerson
	default:
		out.AirlinePrice = &perPerson
	}
	return out
}
