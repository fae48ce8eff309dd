package receipt

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound indicates the requested receipt does not exist.
var ErrNotFound = errors.New("receipt not found")

type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repo persists payment receipts.
type Repo struct {
	db db
}

// NewRepo constructs a receipt repository.
func NewRepo(db db) *Repo {
	return &Repo{db: db}
}

// WithTx returns a copy of the repository bound to the transaction.
func (r *Repo) WithTx(tx pgx.Tx) *Repo {
	return &Repo{db: tx}
}

const receiptColumns = `id, receipt_no, customer_id, invoice_id, amount, method, coalesce(reference, ''), coalesce(note, ''), to_deposit, created_by, created_at`

func scanReceipt(row pgx.Row) (Receipt, error) {
	var rec Receipt
	err := row.Scan(&rec.ID, &rec.ReceiptNo, &rec.CustomerID, &rec.InvoiceID, &rec.Amount,
		&rec.Method, &rec.Reference, &rec.Note, &rec.ToDeposit, &rec.CreatedBy, &rec.CreatedAt)
	return rec, err
}

// Insert writes one receipt row. The receipt number comes from a sequence.
func (r *Repo) Insert(ctx context.Context, rec Receipt) (Receipt, error) {
	const q = `
		INSERT INTO receipts (receipt_no, customer_id, invoice_id, amount, method, reference, note, to_deposit, created_by)
		VALUES ('RCP-' || to_char(now(), 'YYYYMM') || '-' || lpad(nextval('receipt_no_seq')::text, 6, '0'),
			@customer_id, @invoice_id, @amount, @method, @reference, @note, @to_deposit, @created_by)
		RETURNING ` + receiptColumns

	var invoiceID any
	if rec.InvoiceID != nil {
		invoiceID = *rec.InvoiceID
	}
	var reference any
	if rec.Reference != "" {
		reference = rec.Reference
	}
	var note any
	if rec.Note != "" {
		note = rec.Note
	}

	created, err := scanReceipt(r.db.QueryRow(ctx, q, pgx.NamedArgs{
		"customer_id": rec.CustomerID,
		"invoice_id":  invoiceID,
		"amount":      int64(rec.Amount),
		"method":      string(rec.Method),
		"reference":   reference,
		"note":        note,
		"to_deposit":  rec.ToDeposit,
		"created_by":  rec.CreatedBy,
	}))
	if err != nil {
		return Receipt{}, fmt.Errorf("receipt.Repo.Insert: %w", err)
	}
	return created, nil
}

// GetByID retrieves one receipt.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (Receipt, error) {
	const q = `SELECT ` + receiptColumns + ` FROM receipts WHERE id = @id`
	rec, err := scanReceipt(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Receipt{}, ErrNotFound
		}
		return Receipt{}, fmt.Errorf("receipt.Repo.GetByID: %w", err)
	}
	return rec, nil
}

// ListByCustomer pages a customer's receipts newest first.
func (r *Repo) ListByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]Receipt, int64, error) {
	const q = `SELECT ` + receiptColumns + ` FROM receipts WHERE customer_id = @customer_id ORDER BY created_at DESC LIMIT @limit OFFSET @offset`
	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"customer_id": customerID, "limit": limit, "offset": offset})
	if err != nil {
		return nil, 0, fmt.Errorf("receipt.Repo.ListByCustomer: %w", err)
	}
	defer rows.Close()

	out := make([]Receipt, 0, limit)
	for rows.Next() {
		rec, err := scanReceipt(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("receipt.Repo.ListByCustomer: scan: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("receipt.Repo.ListByCustomer: %w", err)
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM receipts WHERE customer_id = @customer_id`,
		pgx.NamedArgs{"customer_id": customerID}).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("receipt.Repo.ListByCustomer: count: %w", err)
	}
	return out, total, nil
}
