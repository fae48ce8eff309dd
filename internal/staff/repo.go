package staff

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound indicates the requested staff account does not exist.
var ErrNotFound = errors.New("staff not found")

// ErrEmailTaken indicates the email is already registered.
var ErrEmailTaken = errors.New("email already registered")

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repo provides persistence for staff accounts.
type Repo struct {
	db db
}

// NewRepo constructs a staff repository backed by the provided connection.
func NewRepo(db db) *Repo {
	return &Repo{db: db}
}

const staffColumns = `id, name, email, password_hash, coalesce(pin_hash, ''), roles, active, created_at, updated_at`

func scanStaff(row pgx.Row) (Staff, error) {
	var s Staff
	err := row.Scan(&s.ID, &s.Name, &s.Email, &s.PasswordHash, &s.PINHash, &s.Roles, &s.Active, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return Staff{}, err
	}
	s.PINSet = s.PINHash != ""
	return s, nil
}

// Create inserts a new staff account.
func (r *Repo) Create(ctx context.Context, name, email, passwordHash string, roles []string) (Staff, error) {
	const q = `
		INSERT INTO staff (name, email, password_hash, roles)
		VALUES (@name, @email, @password_hash, @roles)
		RETURNING ` + staffColumns

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{
		"name":          name,
		"email":         email,
		"password_hash": passwordHash,
		"roles":         roles,
	})
	s, err := scanStaff(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Staff{}, ErrEmailTaken
		}
		return Staff{}, fmt.Errorf("staff.Repo.Create: %w", err)
	}
	return s, nil
}

// GetByID retrieves one staff account by primary key.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (Staff, error) {
	const q = `SELECT ` + staffColumns + ` FROM staff WHERE id = @id`
	s, err := scanStaff(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Staff{}, ErrNotFound
		}
		return Staff{}, fmt.Errorf("staff.Repo.GetByID: %w", err)
	}
	return s, nil
}

// GetByEmail retrieves one staff account by normalized email.
func (r *Repo) GetByEmail(ctx context.Context, email string) (Staff, error) {
	const q = `SELECT ` + staffColumns + ` FROM staff WHERE email = @email`
	s, err := scanStaff(r.db.QueryRow(ctx, q, pgx.NamedArgs{"email": email}))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Staff{}, ErrNotFound
		}
		return Staff{}, fmt.Errorf("staff.Repo.GetByEmail: %w", err)
	}
	return s, nil
}

// List returns staff accounts ordered by creation time.
func (r *Repo) List(ctx context.Context, limit, offset int) ([]Staff, int64, error) {
	const q = `SELECT ` + staffColumns + ` FROM staff ORDER BY created_at DESC LIMIT @limit OFFSET @offset`
	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"limit": limit, "offset": offset})
	if err != nil {
		return nil, 0, fmt.Errorf("staff.Repo.List: %w", err)
	}
	defer rows.Close()

	out := make([]Staff, 0, limit)
	for rows.Next() {
		s, err := scanStaff(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("staff.Repo.List: scan: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("staff.Repo.List: %w", err)
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM staff`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("staff.Repo.List: count: %w", err)
	}
	return out, total, nil
}

// Update overwrites the mutable account fields.
func (r *Repo) Update(ctx context.Context, id uuid.UUID, name string, roles []string, active bool) (Staff, error) {
	const q = `
		UPDATE staff
		SET name = @name, roles = @roles, active = @active, updated_at = now()
		WHERE id = @id
		RETURNING ` + staffColumns

	s, err := scanStaff(r.db.QueryRow(ctx, q, pgx.NamedArgs{
		"id": id, "name": name, "roles": roles, "active": active,
	}))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Staff{}, ErrNotFound
		}
		return Staff{}, fmt.Errorf("staff.Repo.Update: %w", err)
	}
	return s, nil
}

// SetPIN replaces the account's transaction PIN hash.
func (r *Repo) SetPIN(ctx context.Context, id uuid.UUID, pinHash string) error {
	const q = `UPDATE staff SET pin_hash = @pin_hash, updated_at = now() WHERE id = @id`
	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id, "pin_hash": pinHash})
	if err != nil {
		return fmt.Errorf("staff.Repo.SetPIN: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetPassword replaces the account's password hash.
func (r *Repo) SetPassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	const q = `UPDATE staff SET password_hash = @password_hash, updated_at = now() WHERE id = @id`
	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id, "password_hash": passwordHash})
	if err != nil {
		return fmt.Errorf("staff.Repo.SetPassword: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
