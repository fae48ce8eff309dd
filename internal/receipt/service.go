package receipt

import (
	"context"
	"errors"
	"fmt"
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
)

// Service records customer payments, optionally crediting the deposit ledger
// and marking invoice payments.
type Service struct {
	Pool      *pgxpool.Pool
	Repo      *Repo
	Invoices  *invoice.Repo
	Deposits  *deposit.Repo
	Customers *customer.Repo
	Locker    lock.Locker
	LockTTL   time.Duration
	Bus       *events.Bus
	Log       zerolog.Logger
}

// RecordParams describes one payment to record.
type RecordParams struct {
	CustomerID uuid.UUID
	InvoiceID  *uuid.UUID
	Amount     fare.Money
	Method     Method
	Reference  string
	Note       string
	ToDeposit  bool
	ActorID    uuid.UUID
}

// Record persists the receipt. When ToDeposit is set the amount is credited
// to the customer's deposit ledger in the same transaction; when an invoice
// is referenced its paid amount is bumped.
func (s *Service) Record(ctx context.Context, p RecordParams) (Receipt, error) {
	if s.Pool == nil || s.Repo == nil {
		return Receipt{}, errors.New("receipt service not configured")
	}
	if p.Amount <= 0 {
		recordOutcome(p.Method, "rejected")
		return Receipt{}, common.ErrValidation("amount must be positive")
	}
	if !p.Method.Valid() {
		recordOutcome(p.Method, "rejected")
		return Receipt{}, common.ErrValidation("method must be cash, bank, or mobile")
	}

	var recorded Receipt
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

		if p.InvoiceID != nil {
			inv, err := s.Invoices.WithTx(tx).GetByIDForUpdate(ctx, *p.InvoiceID)
			if err != nil {
				if errors.Is(err, invoice.ErrNotFound) {
					return common.ErrNotFound("invoice")
				}
				return err
			}
			if inv.CustomerID != p.CustomerID {
				return common.ErrValidation("invoice belongs to a different customer")
			}
			if inv.Status == invoice.StatusVoid {
				return common.ErrValidation("cannot take payment against a void invoice")
			}
			if err := s.Invoices.WithTx(tx).AddPayment(ctx, *p.InvoiceID, int64(p.Amount)); err != nil {
				return err
			}
		}

		recorded, err = s.Repo.WithTx(tx).Insert(ctx, Receipt{
			CustomerID: p.CustomerID,
			InvoiceID:  p.InvoiceID,
			Amount:     p.Amount,
			Method:     p.Method,
			Reference:  p.Reference,
			Note:       p.Note,
			ToDeposit:  p.ToDeposit,
			CreatedBy:  p.ActorID,
		})
		if err != nil {
			return err
		}

		if p.ToDeposit {
			if _, err := deposit.ApplyTx(ctx, tx, s.Deposits, s.Customers, deposit.KindCredit, deposit.MutateParams{
				CustomerID:    p.CustomerID,
				Amount:        p.Amount,
				ReferenceType: deposit.RefReceipt,
				ReferenceID:   recorded.ReceiptNo,
				Note:          "credited from " + recorded.ReceiptNo,
				ActorID:       p.ActorID,
			}); err != nil {
				return err
			}
		}

		return tx.Commit(ctx)
	})
	if err != nil {
		recordOutcome(p.Method, "error")
		return Receipt{}, err
	}

	recordOutcome(p.Method, "ok")
	if s.Bus != nil {
		if _, err := s.Bus.Emit(ctx, events.TopicReceiptRecorded, recorded.ID, map[string]any{
			"receipt_no":     recorded.ReceiptNo,
			"customer_id":    recorded.CustomerID,
			"customer_email": custEmail,
			"amount":         recorded.Amount,
			"method":         recorded.Method,
			"to_deposit":     recorded.ToDeposit,
		}); err != nil {
			s.Log.Warn().Err(err).Str("receipt_no", recorded.ReceiptNo).Msg("emit receipt.recorded")
		}
	}
	return recorded, nil
}

// Get returns one receipt.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Receipt, error) {
	rec, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Receipt{}, common.ErrNotFound("receipt")
		}
		return Receipt{}, err
	}
	return rec, nil
}

// ListByCustomer pages a customer's receipts.
func (s *Service) ListByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]Receipt, int64, error) {
	return s.Repo.ListByCustomer(ctx, customerID, limit, offset)
}

func recordOutcome(method Method, result string) {
	if obs.ReceiptRecordedTotal != nil {
		obs.ReceiptRecordedTotal.WithLabelValues(string(method), result).Inc()
	}
}
