package invoice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound indicates the requested invoice does not exist.
var ErrNotFound = errors.New("invoice not found")

type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repo persists invoices and their passenger items.
type Repo struct {
	db db
}

// NewRepo constructs an invoice repository.
func NewRepo(db db) *Repo {
	return &Repo{db: db}
}

// WithTx returns a copy of the repository bound to the transaction.
func (r *Repo) WithTx(tx pgx.Tx) *Repo {
	return &Repo{db: tx}
}

const invoiceColumns = `id, invoice_no, customer_id, source, status, face_value, addition,
	deposit_deducted, amount_due, amount_paid, passenger_count, per_person, currency, coalesce(note, ''),
	coalesce(pdf_path, ''), created_by, created_at, updated_at, voided_at, voided_by, coalesce(void_reason, '')`

func scanInvoice(row pgx.Row) (Invoice, error) {
	var inv Invoice
	err := row.Scan(&inv.ID, &inv.InvoiceNo, &inv.CustomerID, &inv.Source, &inv.Status,
		&inv.FaceValue, &inv.Addition, &inv.DepositDeducted, &inv.AmountDue, &inv.AmountPaid,
		&inv.PassengerCount, &inv.PerPerson, &inv.Currency, &inv.Note, &inv.PDFPath,
		&inv.CreatedBy, &inv.CreatedAt, &inv.UpdatedAt, &inv.VoidedAt, &inv.VoidedBy, &inv.VoidReason)
	if err != nil {
		return Invoice{}, err
	}
	inv.RoutePerPerson()
	return inv, nil
}

// Insert writes the invoice header row. The invoice number is assigned from a
// database sequence.
func (r *Repo) Insert(ctx context.Context, inv Invoice) (Invoice, error) {
	const q = `
		INSERT INTO invoices (invoice_no, customer_id, source, status, face_value, addition,
			deposit_deducted, amount_due, passenger_count, per_person, currency, note, created_by)
		VALUES ('INV-' || to_char(now(), 'YYYYMM') || '-' || lpad(nextval('invoice_no_seq')::text, 6, '0'),
			@customer_id, @source, @status, @face_value, @addition,
			@deposit_deducted, @amount_due, @passenger_count, @per_person, @currency, @note, @created_by)
		RETURNING ` + invoiceColumns

	var note any
	if inv.Note != "" {
		note = inv.Note
	}
	created, err := scanInvoice(r.db.QueryRow(ctx, q, pgx.NamedArgs{
		"customer_id":      inv.CustomerID,
		"source":           string(inv.Source),
		"status":           string(StatusIssued),
		"face_value":       int64(inv.FaceValue),
		"addition":         int64(inv.Addition),
		"deposit_deducted": int64(inv.DepositDeducted),
		"amount_due":       int64(inv.AmountDue),
		"passenger_count":  inv.PassengerCount,
		"per_person":       int64(inv.PerPerson),
		"currency":         inv.Currency,
		"note":             note,
		"created_by":       inv.CreatedBy,
	}))
	if err != nil {
		return Invoice{}, fmt.Errorf("invoice.Repo.Insert: %w", err)
	}
	return created, nil
}

// InsertItems writes the passenger lines for an invoice.
func (r *Repo) InsertItems(ctx context.Context, invoiceID uuid.UUID, items []Item) ([]Item, error) {
	const q = `
		INSERT INTO invoice_items (invoice_id, passenger_name, sector, travel_date, ticket_number, unit_price)
		VALUES (@invoice_id, @passenger_name, @sector, @travel_date, @ticket_number, @unit_price)
		RETURNING id, invoice_id, passenger_name, sector, travel_date, coalesce(ticket_number, ''), unit_price`

	out := make([]Item, 0, len(items))
	for _, it := range items {
		var ticketNo any
		if it.TicketNumber != "" {
			ticketNo = it.TicketNumber
		}
		var created Item
		err := r.db.QueryRow(ctx, q, pgx.NamedArgs{
			"invoice_id":     invoiceID,
			"passenger_name": it.PassengerName,
			"sector":         it.Sector,
			"travel_date":    it.TravelDate,
			"ticket_number":  ticketNo,
			"unit_price":     int64(it.UnitPrice),
		}).Scan(&created.ID, &created.InvoiceID, &created.PassengerName, &created.Sector,
			&created.TravelDate, &created.TicketNumber, &created.UnitPrice)
		if err != nil {
			return nil, fmt.Errorf("invoice.Repo.InsertItems: %w", err)
		}
		out = append(out, created)
	}
	return out, nil
}

// GetByID retrieves one invoice with its items.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (Invoice, error) {
	inv, err := scanInvoice(r.db.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = @id`, pgx.NamedArgs{"id": id}))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Invoice{}, ErrNotFound
		}
		return Invoice{}, fmt.Errorf("invoice.Repo.GetByID: %w", err)
	}
	items, err := r.itemsFor(ctx, id)
	if err != nil {
		return Invoice{}, err
	}
	inv.Items = items
	return inv, nil
}

// GetByIDForUpdate retrieves the invoice header with a row lock held.
func (r *Repo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (Invoice, error) {
	inv, err := scanInvoice(r.db.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = @id FOR UPDATE`, pgx.NamedArgs{"id": id}))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Invoice{}, ErrNotFound
		}
		return Invoice{}, fmt.Errorf("invoice.Repo.GetByIDForUpdate: %w", err)
	}
	return inv, nil
}

func (r *Repo) itemsFor(ctx context.Context, invoiceID uuid.UUID) ([]Item, error) {
	const q = `
		SELECT id, invoice_id, passenger_name, sector, travel_date, coalesce(ticket_number, ''), unit_price
		FROM invoice_items WHERE invoice_id = @invoice_id ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"invoice_id": invoiceID})
	if err != nil {
		return nil, fmt.Errorf("invoice.Repo.itemsFor: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.InvoiceID, &it.PassengerName, &it.Sector,
			&it.TravelDate, &it.TicketNumber, &it.UnitPrice); err != nil {
			return nil, fmt.Errorf("invoice.Repo.itemsFor: scan: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// ListFilter narrows the invoice listing.
type ListFilter struct {
	CustomerID uuid.UUID
	Status     Status
}

// List pages invoices newest first.
func (r *Repo) List(ctx context.Context, f ListFilter, limit, offset int) ([]Invoice, int64, error) {
	where := ` WHERE 1=1`
	args := pgx.NamedArgs{"limit": limit, "offset": offset}
	countArgs := pgx.NamedArgs{}
	if f.CustomerID != uuid.Nil {
		where += ` AND customer_id = @customer_id`
		args["customer_id"] = f.CustomerID
		countArgs["customer_id"] = f.CustomerID
	}
	if f.Status != "" {
		where += ` AND status = @status`
		args["status"] = string(f.Status)
		countArgs["status"] = string(f.Status)
	}

	rows, err := r.db.Query(ctx, `SELECT `+invoiceColumns+` FROM invoices`+where+` ORDER BY created_at DESC LIMIT @limit OFFSET @offset`, args)
	if err != nil {
		return nil, 0, fmt.Errorf("invoice.Repo.List: %w", err)
	}
	defer rows.Close()

	out := make([]Invoice, 0, limit)
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("invoice.Repo.List: scan: %w", err)
		}
		out = append(out, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("invoice.Repo.List: %w", err)
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM invoices`+where, countArgs).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("invoice.Repo.List: count: %w", err)
	}
	return out, total, nil
}

// MarkVoid flips the invoice to void, recording who and why.
func (r *Repo) MarkVoid(ctx context.Context, id, voidedBy uuid.UUID, reason string, at time.Time) error {
	const q = `
		UPDATE invoices
		SET status = @status, voided_at = @voided_at, voided_by = @voided_by, void_reason = @void_reason, updated_at = now()
		WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{
		"id":          id,
		"status":      string(StatusVoid),
		"voided_at":   at,
		"voided_by":   voidedBy,
		"void_reason": reason,
	})
	if err != nil {
		return fmt.Errorf("invoice.Repo.MarkVoid: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetPDFPath records where the rendered document was stored.
func (r *Repo) SetPDFPath(ctx context.Context, id uuid.UUID, path string) error {
	const q = `UPDATE invoices SET pdf_path = @path, updated_at = now() WHERE id = @id`
	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id, "path": path})
	if err != nil {
		return fmt.Errorf("invoice.Repo.SetPDFPath: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AddPayment accumulates paid amounts from receipts.
func (r *Repo) AddPayment(ctx context.Context, id uuid.UUID, amount int64) error {
	const q = `UPDATE invoices SET amount_paid = amount_paid + @amount, updated_at = now() WHERE id = @id`
	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id, "amount": amount})
	if err != nil {
		return fmt.Errorf("invoice.Repo.AddPayment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
