package invoice

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-agency/internal/common"
	"github.com/noah-isme/backend-agency/internal/customer"
	"github.com/noah-isme/backend-agency/internal/deposit"
	"github.com/noah-isme/backend-agency/internal/events"
	"github.com/noah-isme/backend-agency/internal/lock"
	"github.com/noah-isme/backend-agency/internal/obs"
)

// Service serves the invoice read model and the void operation.
type Service struct {
	Pool      *pgxpool.Pool
	Repo      *Repo
	Deposits  *deposit.Repo
	Customers *customer.Repo
	Locker    lock.Locker
	LockTTL   time.Duration
	Bus       *events.Bus
	Log       zerolog.Logger
	Now       func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Get returns one invoice with items.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Invoice, error) {
	inv, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Invoice{}, common.ErrNotFound("invoice")
		}
		return Invoice{}, err
	}
	return inv, nil
}

// List pages invoices with optional customer and status filters.
func (s *Service) List(ctx context.Context, f ListFilter, limit, offset int) ([]Invoice, int64, error) {
	if f.Status != "" && f.Status != StatusIssued && f.Status != StatusVoid {
		return nil, 0, common.ErrValidation("unknown invoice status")
	}
	return s.Repo.List(ctx, f, limit, offset)
}

// Void cancels an issued invoice, re-crediting any deposit that was deducted
// at issuance. The customer's ledger lock is held for the whole operation.
func (s *Service) Void(ctx context.Context, id, actorID uuid.UUID, reason string) (Invoice, error) {
	if s.Pool == nil || s.Repo == nil {
		return Invoice{}, errors.New("invoice service not configured")
	}

	header, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			voidOutcome("not_found")
			return Invoice{}, common.ErrNotFound("invoice")
		}
		return Invoice{}, err
	}

	var voided Invoice
	err = s.Locker.WithLock(ctx, lock.CustomerKey(header.CustomerID.String()), s.LockTTL, func(ctx context.Context) error {
		tx, err := s.Pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin: %w", err)
		}
		defer tx.Rollback(ctx)

		repo := s.Repo.WithTx(tx)
		current, err := repo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if current.Status == StatusVoid {
			voidOutcome("already_void")
			return common.NewAppError("INVOICE_VOID", "invoice is already void", http.StatusConflict, nil)
		}

		now := s.now()
		if err := repo.MarkVoid(ctx, id, actorID, reason, now); err != nil {
			return err
		}

		if current.DepositDeducted > 0 {
			if _, err := deposit.ApplyTx(ctx, tx, s.Deposits, s.Customers, deposit.KindCredit, deposit.MutateParams{
				CustomerID:    current.CustomerID,
				Amount:        current.DepositDeducted,
				ReferenceType: deposit.RefVoid,
				ReferenceID:   current.InvoiceNo,
				Note:          "void " + current.InvoiceNo,
				ActorID:       actorID,
			}); err != nil {
				return err
			}
		}

		if err := tx.Commit(ctx); err != nil {
			return err
		}

		voided = current
		voided.Status = StatusVoid
		voided.VoidedAt = &now
		voided.VoidedBy = &actorID
		voided.VoidReason = reason
		return nil
	})
	if err != nil {
		return Invoice{}, err
	}

	voidOutcome("ok")
	if s.Bus != nil {
		var custEmail string
		if cust, err := s.Customers.GetByID(ctx, voided.CustomerID); err == nil {
			custEmail = cust.Email
		}
		if _, err := s.Bus.Emit(ctx, events.TopicInvoiceVoided, voided.ID, map[string]any{
			"invoice_no":       voided.InvoiceNo,
			"customer_id":      voided.CustomerID,
			"customer_email":   custEmail,
			"deposit_returned": voided.DepositDeducted,
			"reason":           reason,
		}); err != nil {
			s.Log.Warn().Err(err).Str("invoice_no", voided.InvoiceNo).Msg("emit invoice.voided")
		}
	}
	return voided, nil
}

func voidOutcome(result string) {
	if obs.InvoiceVoidedTotal != nil {
		obs.InvoiceVoidedTotal.WithLabelValues(result).Inc()
	}
}
