package ticket

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-agency/internal/common"
	"github.com/noah-isme/backend-agency/internal/customer"
	"github.com/noah-isme/backend-agency/internal/deposit"
	"github.com/noah-isme/backend-agency/internal/events"
	"github.com/noah-isme/backend-agency/internal/fare"
	"github.com/noah-isme/backend-agency/internal/invoice"
	"github.com/noah-isme/backend-agency/internal/lock"
	"github.com/noah-isme/backend-agency/internal/obs"
	"github.com/noah-isme/backend-agency/internal/queue"
)

// Service issues ticket invoices. The fare calculation itself lives in
// internal/fare; this service binds it to persistence, the deposit ledger,
// and the background PDF pipeline.
type Service struct {
	Pool      *pgxpool.Pool
	Invoices  *invoice.Repo
	Deposits  *deposit.Repo
	Customers *customer.Repo
	Locker    lock.Locker
	LockTTL   time.Duration
	Bus       *events.Bus
	Enqueue   queue.Enqueuer
	Currency  string
	Log       zerolog.Logger
}

// ItemParams is one passenger line in an issuance request.
type ItemParams struct {
	PassengerName string
	Sector        string
	TravelDate    time.Time
	TicketNumber  string
	UnitPrice     fare.Money
}

// IssueParams is the single tagged request covering direct, vendor, and
// agent tickets. Only the source discriminant varies between them.
type IssueParams struct {
	CustomerID uuid.UUID
	Source     fare.Source
	Items      []ItemParams
	Addition   fare.Money
	UseDeposit bool
	Note       string
	ActorID    uuid.UUID
}

func (p IssueParams) fareInput(available fare.Money) fare.Input {
	items := make([]fare.LineItem, len(p.Items))
	for i, it := range p.Items {
		items[i] = fare.LineItem{
			PassengerName: it.PassengerName,
			Sector:        it.Sector,
			TravelDate:    it.TravelDate,
			TicketNumber:  it.TicketNumber,
			UnitPrice:     it.UnitPrice,
		}
	}
	return fare.Input{
		Items:            items,
		Addition:         p.Addition,
		PassengerCount:   len(p.Items),
		UseDeposit:       p.UseDeposit,
		AvailableDeposit: available,
	}
}

func (p IssueParams) validate() error {
	if !p.Source.Valid() {
		return common.ErrValidation("source must be direct, vendor, or agent")
	}
	if len(p.Items) == 0 {
		return common.ErrValidation("at least one passenger line is required")
	}
	for _, it := range p.Items {
		if strings.TrimSpace(it.PassengerName) == "" {
			return common.ErrValidation("passenger name is required on every line")
		}
		if strings.TrimSpace(it.Sector) == "" {
			return common.ErrValidation("sector is required on every line")
		}
	}
	return nil
}

// Quote previews the fare for a request against the customer's live balance.
// Nothing is written.
func (s *Service) Quote(ctx context.Context, p IssueParams) (fare.Summary, error) {
	if err := p.validate(); err != nil {
		return fare.Summary{}, err
	}
	cust, err := s.Customers.GetByID(ctx, p.CustomerID)
	if err != nil {
		if errors.Is(err, customer.ErrNotFound) {
			return fare.Summary{}, common.ErrNotFound("customer")
		}
		return fare.Summary{}, err
	}
	return fare.Quote(p.fareInput(cust.DepositBalance)), nil
}

// Issue creates the invoice, its passenger items, and the deposit debit in
// one transaction, serialized per customer. The deposit deduction is resolved
// against the balance read inside the transaction, never against a stale
// client-supplied figure.
func (s *Service) Issue(ctx context.Context, p IssueParams) (invoice.Invoice, error) {
	if s.Pool == nil || s.Invoices == nil {
		return invoice.Invoice{}, errors.New("ticket service not configured")
	}
	if err := p.validate(); err != nil {
		return invoice.Invoice{}, err
	}

	var issued invoice.Invoice
	var custEmail string
	err := s.Locker.WithLock(ctx, lock.CustomerKey(p.CustomerID.String()), s.LockTTL, func(ctx context.Context) error {
		tx, err := s.Pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin: %w", err)
		}
		defer tx.Rollback(ctx)

		cust, err := s.Customers.WithTx(tx).GetByIDForUpdate(ctx, p.CustomerID)
		if err != nil {
			if errors.Is(err, customer.ErrNotFound) {
				return common.ErrNotFound("customer")
			}
			return err
		}

		custEmail = cust.Email
		summary := fare.Quote(p.fareInput(cust.DepositBalance))

		header, err := s.Invoices.WithTx(tx).Insert(ctx, invoice.Invoice{
			CustomerID:      p.CustomerID,
			Source:          p.Source,
			FaceValue:       summary.FaceValue,
			Addition:        summary.Addition,
			DepositDeducted: summary.DepositDeducted,
			AmountDue:       summary.AmountDue,
			PassengerCount:  summary.PassengerCount,
			PerPerson:       summary.PerPerson,
			Currency:        s.Currency,
			Note:            p.Note,
			CreatedBy:       p.ActorID,
		})
		if err != nil {
			return err
		}

		items := make([]invoice.Item, len(p.Items))
		for i, it := range p.Items {
			items[i] = invoice.Item{
				PassengerName: strings.TrimSpace(it.PassengerName),
				Sector:        strings.TrimSpace(it.Sector),
				TravelDate:    it.TravelDate,
				TicketNumber:  strings.TrimSpace(it.TicketNumber),
				UnitPrice:     fare.Clamp(it.UnitPrice),
			}
		}
		inserted, err := s.Invoices.WithTx(tx).InsertItems(ctx, header.ID, items)
		if err != nil {
			return err
		}
		header.Items = inserted

		if summary.DepositDeducted > 0 {
			if _, err := deposit.ApplyTx(ctx, tx, s.Deposits, s.Customers, deposit.KindDebit, deposit.MutateParams{
				CustomerID:    p.CustomerID,
				Amount:        summary.DepositDeducted,
				ReferenceType: deposit.RefInvoice,
				ReferenceID:   header.InvoiceNo,
				Note:          "deducted on " + header.InvoiceNo,
				ActorID:       p.ActorID,
			}); err != nil {
				depositOutcome("rejected")
				return err
			}
			depositOutcome("ok")
		}

		if err := tx.Commit(ctx); err != nil {
			return err
		}
		issued = header
		return nil
	})
	if err != nil {
		issueOutcome(p.Source, "error")
		return invoice.Invoice{}, err
	}

	issueOutcome(p.Source, "ok")
	s.Log.Info().
		Str("invoice_no", issued.InvoiceNo).
		Str("source", string(issued.Source)).
		Int64("amount_due", int64(issued.AmountDue)).
		Int64("deposit_deducted", int64(issued.DepositDeducted)).
		Msg("invoice issued")

	if s.Bus != nil {
		if _, err := s.Bus.Emit(ctx, events.TopicInvoiceIssued, issued.ID, map[string]any{
			"invoice_no":       issued.InvoiceNo,
			"customer_id":      issued.CustomerID,
			"customer_email":   custEmail,
			"face_value":       issued.FaceValue,
			"deposit_deducted": issued.DepositDeducted,
			"amount_due":       issued.AmountDue,
		}); err != nil {
			s.Log.Warn().Err(err).Str("invoice_no", issued.InvoiceNo).Msg("emit invoice.issued")
		}
	}
	s.Enqueue.EnqueueInvoicePDF(ctx, issued.ID)

	return issued, nil
}

func issueOutcome(source fare.Source, result string) {
	if obs.InvoiceIssuedTotal != nil {
		obs.InvoiceIssuedTotal.WithLabelValues(string(source), result).Inc()
	}
}

func depositOutcome(result string) {
	if obs.DepositDeductionTotal != nil {
		obs.DepositDeductionTotal.WithLabelValues(result).Inc()
	}
}
