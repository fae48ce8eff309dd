package audit

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

type db interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repo persists audit entries in Postgres.
type Repo struct {
	db db
}

// NewRepo builds an audit repository.
func NewRepo(db db) *Repo {
	return &Repo{db: db}
}

const entryColumns = `id, actor_kind, actor_staff_id, action, resource_type, coalesce(resource_id, ''),
	method, path, coalesce(route, ''), status, coalesce(ip, ''), coalesce(user_agent, ''),
	coalesce(request_id, ''), metadata, created_at`

func scanEntry(row pgx.Row) (Entry, error) {
	var e Entry
	err := row.Scan(&e.ID, &e.ActorKind, &e.ActorStaffID, &e.Action, &e.ResourceType, &e.ResourceID,
		&e.Method, &e.Path, &e.Route, &e.Status, &e.IP, &e.UserAgent, &e.RequestID, &e.Metadata, &e.CreatedAt)
	return e, err
}

// InsertEntry writes one audit row.
func (r *Repo) InsertEntry(ctx context.Context, e Entry) (Entry, error) {
	const q = `
		INSERT INTO audit_logs (actor_kind, actor_staff_id, action, resource_type, resource_id,
			method, path, route, status, ip, user_agent, request_id, metadata)
		VALUES (@actor_kind, @actor_staff_id, @action, @resource_type, @resource_id,
			@method, @path, @route, @status, @ip, @user_agent, @request_id, @metadata)
		RETURNING ` + entryColumns

	created, err := scanEntry(r.db.QueryRow(ctx, q, pgx.NamedArgs{
		"actor_kind":     string(e.ActorKind),
		"actor_staff_id": e.ActorStaffID,
		"action":         e.Action,
		"resource_type":  e.ResourceType,
		"resource_id":    textOrNil(e.ResourceID),
		"method":         e.Method,
		"path":           e.Path,
		"route":          textOrNil(e.Route),
		"status":         e.Status,
		"ip":             textOrNil(e.IP),
		"user_agent":     textOrNil(e.UserAgent),
		"request_id":     textOrNil(e.RequestID),
		"metadata":       []byte(e.Metadata),
	}))
	if err != nil {
		return Entry{}, fmt.Errorf("audit.Repo.InsertEntry: %w", err)
	}
	return created, nil
}

// ListEntries pages audit rows newest first.
func (r *Repo) ListEntries(ctx context.Context, limit, offset int) ([]Entry, int64, error) {
	rows, err := r.db.Query(ctx, `SELECT `+entryColumns+` FROM audit_logs ORDER BY created_at DESC LIMIT @limit OFFSET @offset`,
		pgx.NamedArgs{"limit": limit, "offset": offset})
	if err != nil {
		return nil, 0, fmt.Errorf("audit.Repo.ListEntries: %w", err)
	}
	defer rows.Close()

	out := make([]Entry, 0, limit)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("audit.Repo.ListEntries: scan: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("audit.Repo.ListEntries: %w", err)
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM audit_logs`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("audit.Repo.ListEntries: count: %w", err)
	}
	return out, total, nil
}

func textOrNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}
