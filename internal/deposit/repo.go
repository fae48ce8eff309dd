package deposit

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repo persists deposit ledger entries.
type Repo struct {
	db db
}

// NewRepo constructs a deposit ledger repository.
func NewRepo(db db) *Repo {
	return &Repo{db: db}
}

// WithTx returns a copy of the repository bound to the transaction.
func (r *Repo) WithTx(tx pgx.Tx) *Repo {
	return &Repo{db: tx}
}

const entryColumns = `id, customer_id, kind, amount, balance_after, reference_type, coalesce(reference_id, ''), coalesce(note, ''), created_by, created_at`

func scanEntry(row pgx.Row) (Entry, error) {
	var e Entry
	err := row.Scan(&e.ID, &e.CustomerID, &e.Kind, &e.Amount, &e.BalanceAfter, &e.ReferenceType, &e.ReferenceID, &e.Note, &e.CreatedBy, &e.CreatedAt)
	return e, err
}

// Insert writes one ledger entry.
func (r *Repo) Insert(ctx context.Context, e Entry) (Entry, error) {
	const q = `
		INSERT INTO deposit_entries (customer_id, kind, amount, balance_after, reference_type, reference_id, note, created_by)
		VALUES (@customer_id, @kind, @amount, @balance_after, @reference_type, @reference_id, @note, @created_by)
		RETURNING ` + entryColumns

	var refID any
	if e.ReferenceID != "" {
		refID = e.ReferenceID
	}
	var note any
	if e.Note != "" {
		note = e.Note
	}

	created, err := scanEntry(r.db.QueryRow(ctx, q, pgx.NamedArgs{
		"customer_id":    e.CustomerID,
		"kind":           string(e.Kind),
		"amount":         int64(e.Amount),
		"balance_after":  int64(e.BalanceAfter),
		"reference_type": e.ReferenceType,
		"reference_id":   refID,
		"note":           note,
		"created_by":     e.CreatedBy,
	}))
	if err != nil {
		return Entry{}, fmt.Errorf("deposit.Repo.Insert: %w", err)
	}
	return created, nil
}

// Statement pages a customer's ledger newest first.
func (r *Repo) Statement(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]Entry, int64, error) {
	const q = `
		SELECT ` + entryColumns + `
		FROM deposit_entries
		WHERE customer_id = @customer_id
		ORDER BY created_at DESC, id DESC
		LIMIT @limit OFFSET @offset`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"customer_id": customerID, "limit": limit, "offset": offset})
	if err != nil {
		return nil, 0, fmt.Errorf("deposit.Repo.Statement: %w", err)
	}
	defer rows.Close()

	out := make([]Entry, 0, limit)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("deposit.Repo.Statement: scan: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("deposit.Repo.Statement: %w", err)
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM deposit_entries WHERE customer_id = @customer_id`,
		pgx.NamedArgs{"customer_id": customerID}).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("deposit.Repo.Statement: count: %w", err)
	}
	return out, total, nil
}
