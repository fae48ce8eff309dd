package customer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound indicates the requested customer does not exist.
var ErrNotFound = errors.New("customer not found")

// ErrPhoneTaken indicates another customer already uses the phone number.
var ErrPhoneTaken = errors.New("phone number already registered")

type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repo provides persistence for customers.
type Repo struct {
	db db
}

// NewRepo constructs a customer repository.
func NewRepo(db db) *Repo {
	return &Repo{db: db}
}

// WithTx returns a copy of the repository bound to the transaction.
func (r *Repo) WithTx(tx pgx.Tx) *Repo {
	return &Repo{db: tx}
}

const customerColumns = `id, name, phone, coalesce(email, ''), coalesce(address, ''), coalesce(passport_number, ''), deposit_balance, created_at, updated_at`

func scanCustomer(row pgx.Row) (Customer, error) {
	var c Customer
	err := row.Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.Address, &c.PassportNumber, &c.DepositBalance, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// Create inserts a new customer.
func (r *Repo) Create(ctx context.Context, c Customer) (Customer, error) {
	const q = `
		INSERT INTO customers (name, phone, email, address, passport_number)
		VALUES (@name, @phone, @email, @address, @passport_number)
		RETURNING ` + customerColumns

	created, err := scanCustomer(r.db.QueryRow(ctx, q, pgx.NamedArgs{
		"name":            c.Name,
		"phone":           c.Phone,
		"email":           nullable(c.Email),
		"address":         nullable(c.Address),
		"passport_number": nullable(c.PassportNumber),
	}))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Customer{}, ErrPhoneTaken
		}
		return Customer{}, fmt.Errorf("customer.Repo.Create: %w", err)
	}
	return created, nil
}

// GetByID retrieves a single customer.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (Customer, error) {
	const q = `SELECT ` + customerColumns + ` FROM customers WHERE id = @id`
	c, err := scanCustomer(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Customer{}, ErrNotFound
		}
		return Customer{}, fmt.Errorf("customer.Repo.GetByID: %w", err)
	}
	return c, nil
}

// GetByIDForUpdate retrieves a customer with a row lock held until the
// surrounding transaction ends.
func (r *Repo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (Customer, error) {
	const q = `SELECT ` + customerColumns + ` FROM customers WHERE id = @id FOR UPDATE`
	c, err := scanCustomer(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Customer{}, ErrNotFound
		}
		return Customer{}, fmt.Errorf("customer.Repo.GetByIDForUpdate: %w", err)
	}
	return c, nil
}

// List pages customers, optionally filtering by a name or phone search term.
func (r *Repo) List(ctx context.Context, search string, limit, offset int) ([]Customer, int64, error) {
	where := ""
	args := pgx.NamedArgs{"limit": limit, "offset": offset}
	if s := strings.TrimSpace(search); s != "" {
		where = ` WHERE name ILIKE @search OR phone LIKE @search`
		args["search"] = "%" + s + "%"
	}

	rows, err := r.db.Query(ctx, `SELECT `+customerColumns+` FROM customers`+where+` ORDER BY created_at DESC LIMIT @limit OFFSET @offset`, args)
	if err != nil {
		return nil, 0, fmt.Errorf("customer.Repo.List: %w", err)
	}
	defer rows.Close()

	out := make([]Customer, 0, limit)
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("customer.Repo.List: scan: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("customer.Repo.List: %w", err)
	}

	var total int64
	countArgs := pgx.NamedArgs{}
	if v, ok := args["search"]; ok {
		countArgs["search"] = v
	}
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM customers`+where, countArgs).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("customer.Repo.List: count: %w", err)
	}
	return out, total, nil
}

// Update overwrites the customer's contact fields.
func (r *Repo) Update(ctx context.Context, c Customer) (Customer, error) {
	const q = `
		UPDATE customers
		SET name = @name, phone = @phone, email = @email, address = @address,
		    passport_number = @passport_number, updated_at = now()
		WHERE id = @id
		RETURNING ` + customerColumns

	updated, err := scanCustomer(r.db.QueryRow(ctx, q, pgx.NamedArgs{
		"id":              c.ID,
		"name":            c.Name,
		"phone":           c.Phone,
		"email":           nullable(c.Email),
		"address":         nullable(c.Address),
		"passport_number": nullable(c.PassportNumber),
	}))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Customer{}, ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Customer{}, ErrPhoneTaken
		}
		return Customer{}, fmt.Errorf("customer.Repo.Update: %w", err)
	}
	return updated, nil
}

// SetDepositBalance writes the cached balance column.
func (r *Repo) SetDepositBalance(ctx context.Context, id uuid.UUID, balance int64) error {
	const q = `UPDATE customers SET deposit_balance = @balance, updated_at = now() WHERE id = @id`
	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id, "balance": balance})
	if err != nil {
		return fmt.Errorf("customer.Repo.SetDepositBalance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func nullable(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}
