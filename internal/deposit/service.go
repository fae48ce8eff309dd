package deposit

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-agency/internal/common"
	"github.com/noah-isme/backend-agency/internal/customer"
	"github.com/noah-isme/backend-agency/internal/events"
	"github.com/noah-isme/backend-agency/internal/fare"
	"github.com/noah-isme/backend-agency/internal/lock"
)

// Service applies credits and debits to customer deposit ledgers. Every
// mutation runs inside a transaction holding the customer row lock, wrapped
// in a Redis lock so concurrent nodes serialize on the same customer.
type Service struct {
	Pool      *pgxpool.Pool
	Repo      *Repo
	Customers *customer.Repo
	Locker    lock.Locker
	LockTTL   time.Duration
	Bus       *events.Bus
	Log       zerolog.Logger
}

// MutateParams describes one ledger mutation.
type MutateParams struct {
	CustomerID    uuid.UUID
	Amount        fare.Money
	ReferenceType string
	ReferenceID   string
	Note          string
	ActorID       uuid.UUID
}

// Credit adds funds to the customer's deposit.
func (s *Service) Credit(ctx context.Context, p MutateParams) (Entry, error) {
	return s.mutate(ctx, KindCredit, p)
}

// Debit removes funds from the customer's deposit. The balance is never
// allowed to go negative.
func (s *Service) Debit(ctx context.Context, p MutateParams) (Entry, error) {
	return s.mutate(ctx, KindDebit, p)
}

func (s *Service) mutate(ctx context.Context, kind Kind, p MutateParams) (Entry, error) {
	if s.Pool == nil || s.Repo == nil || s.Customers == nil {
		return Entry{}, errors.New("deposit service not configured")
	}
	if p.Amount <= 0 {
		return Entry{}, common.ErrValidation("amount must be positive")
	}
	if p.ReferenceType == "" {
		p.ReferenceType = RefManual
	}

	var entry Entry
	err := s.Locker.WithLock(ctx, lock.CustomerKey(p.CustomerID.String()), s.LockTTL, func(ctx context.Context) error {
		tx, err := s.Pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin: %w", err)
		}
		defer tx.Rollback(ctx)

		entry, err = ApplyTx(ctx, tx, s.Repo, s.Customers, kind, p)
		if err != nil {
			return err
		}
		return tx.Commit(ctx)
	})
	if err != nil {
		return Entry{}, err
	}

	s.emitAdjusted(ctx, entry)
	return entry, nil
}

func (s *Service) emitAdjusted(ctx context.Context, entry Entry) {
	if s.Bus == nil {
		return
	}
	var custEmail string
	if s.Customers != nil {
		if cust, err := s.Customers.GetByID(ctx, entry.CustomerID); err == nil {
			custEmail = cust.Email
		}
	}
	if _, err := s.Bus.Emit(ctx, events.TopicDepositAdjusted, entry.CustomerID, map[string]any{
		"entry_id":       entry.ID,
		"customer_email": custEmail,
		"kind":           entry.Kind,
		"amount":         entry.Amount,
		"balance_after":  entry.BalanceAfter,
		"reference":      entry.ReferenceType,
	}); err != nil {
		s.Log.Warn().Err(err).Str("customer_id", entry.CustomerID.String()).Msg("emit deposit.adjusted")
	}
}

// ApplyTx performs one ledger mutation inside an existing transaction. The
// customer row is locked FOR UPDATE so the cached balance and the ledger stay
// consistent. Callers that already hold a customer-level lock (ticket
// issuance, invoice void) use this directly.
func ApplyTx(ctx context.Context, tx pgx.Tx, repo *Repo, customers *customer.Repo, kind Kind, p MutateParams) (Entry, error) {
	cust, err := customers.WithTx(tx).GetByIDForUpdate(ctx, p.CustomerID)
	if err != nil {
		if errors.Is(err, customer.ErrNotFound) {
			return Entry{}, common.ErrNotFound("customer")
		}
		return Entry{}, err
	}

	next, err := NextBalance(cust.DepositBalance, kind, p.Amount)
	if err != nil {
		return Entry{}, err
	}

	entry, err := repo.WithTx(tx).Insert(ctx, Entry{
		CustomerID:    p.CustomerID,
		Kind:          kind,
		Amount:        p.Amount,
		BalanceAfter:  next,
		ReferenceType: p.ReferenceType,
		ReferenceID:   p.ReferenceID,
		Note:          p.Note,
		CreatedBy:     p.ActorID,
	})
	if err != nil {
		return Entry{}, err
	}

	if err := customers.WithTx(tx).SetDepositBalance(ctx, p.CustomerID, int64(next)); err != nil {
		return Entry{}, err
	}
	return entry, nil
}

// NextBalance computes the balance after applying the mutation, rejecting
// overdrafts.
func NextBalance(current fare.Money, kind Kind, amount fare.Money) (fare.Money, error) {
	if amount <= 0 {
		return 0, common.ErrValidation("amount must be positive")
	}
	switch kind {
	case KindCredit:
		return current + amount, nil
	case KindDebit:
		if amount > current {
			return 0, common.NewAppError("INSUFFICIENT_DEPOSIT", "deposit balance is insufficient", http.StatusUnprocessableEntity, nil)
		}
		return current - amount, nil
	default:
		return 0, common.ErrValidation("unknown ledger entry kind")
	}
}

// Balance returns the customer's cached deposit balance.
func (s *Service) Balance(ctx context.Context, customerID uuid.UUID) (fare.Money, error) {
	cust, err := s.Customers.GetByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, customer.ErrNotFound) {
			return 0, common.ErrNotFound("customer")
		}
		return 0, err
	}
	return cust.DepositBalance, nil
}

// Statement pages the customer's ledger.
func (s *Service) Statement(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]Entry, int64, error) {
	return s.Repo.Statement(ctx, customerID, limit, offset)
}
