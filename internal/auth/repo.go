package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrSessionNotFound indicates no session matches the token hash.
var ErrSessionNotFound = errors.New("session not found")

type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// SessionRepo persists refresh-token sessions in Postgres.
type SessionRepo struct {
	db db
}

// NewSessionRepo builds a session repository.
func NewSessionRepo(db db) *SessionRepo {
	return &SessionRepo{db: db}
}

const sessionColumns = `id, staff_id, token_hash, user_agent, ip, expires_at, created_at`

func scanSession(row pgx.Row) (Session, error) {
	var s Session
	err := row.Scan(&s.ID, &s.StaffID, &s.TokenHash, &s.UserAgent, &s.IP, &s.ExpiresAt, &s.CreatedAt)
	return s, err
}

// Create inserts a new session row.
func (r *SessionRepo) Create(ctx context.Context, staffID uuid.UUID, tokenHash, userAgent, ip string, expiresAt time.Time) (Session, error) {
	const q = `
		INSERT INTO sessions (staff_id, token_hash, user_agent, ip, expires_at)
		VALUES (@staff_id, @token_hash, @user_agent, @ip, @expires_at)
		RETURNING ` + sessionColumns

	s, err := scanSession(r.db.QueryRow(ctx, q, pgx.NamedArgs{
		"staff_id":   staffID,
		"token_hash": tokenHash,
		"user_agent": userAgent,
		"ip":         ip,
		"expires_at": expiresAt,
	}))
	if err != nil {
		return Session{}, fmt.Errorf("auth.SessionRepo.Create: %w", err)
	}
	return s, nil
}

// GetByTokenHash retrieves a session by its refresh-token hash.
func (r *SessionRepo) GetByTokenHash(ctx context.Context, tokenHash string) (Session, error) {
	const q = `SELECT ` + sessionColumns + ` FROM sessions WHERE token_hash = @token_hash`
	s, err := scanSession(r.db.QueryRow(ctx, q, pgx.NamedArgs{"token_hash": tokenHash}))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Session{}, ErrSessionNotFound
		}
		return Session{}, fmt.Errorf("auth.SessionRepo.GetByTokenHash: %w", err)
	}
	return s, nil
}

// Rotate replaces the token hash and expiry of an existing session.
func (r *SessionRepo) Rotate(ctx context.Context, id uuid.UUID, tokenHash string, expiresAt time.Time) error {
	const q = `UPDATE sessions SET token_hash = @token_hash, expires_at = @expires_at WHERE id = @id`
	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id, "token_hash": tokenHash, "expires_at": expiresAt})
	if err != nil {
		return fmt.Errorf("auth.SessionRepo.Rotate: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// DeleteByTokenHash removes the session matching the token hash.
func (r *SessionRepo) DeleteByTokenHash(ctx context.Context, tokenHash string) error {
	const q = `DELETE FROM sessions WHERE token_hash = @token_hash`
	if _, err := r.db.Exec(ctx, q, pgx.NamedArgs{"token_hash": tokenHash}); err != nil {
		return fmt.Errorf("auth.SessionRepo.DeleteByTokenHash: %w", err)
	}
	return nil
}

// DeleteByStaff removes every session belonging to the staff account.
func (r *SessionRepo) DeleteByStaff(ctx context.Context, staffID uuid.UUID) error {
	const q = `DELETE FROM sessions WHERE staff_id = @staff_id`
	if _, err := r.db.Exec(ctx, q, pgx.NamedArgs{"staff_id": staffID}); err != nil {
		return fmt.Errorf("auth.SessionRepo.DeleteByStaff: %w", err)
	}
	return nil
}
