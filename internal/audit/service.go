package audit

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/backend-agency/internal/common"
	"github.com/noah-isme/backend-agency/internal/obs"
)

// ActorKind represents the source of an audited action.
type ActorKind string

const (
	// ActorKindStaff represents an authenticated staff member.
	ActorKindStaff ActorKind = "staff"
	// ActorKindSystem represents internal automated actions.
	ActorKindSystem ActorKind = "system"
	// ActorKindAnonymous represents unauthenticated actors.
	ActorKindAnonymous ActorKind = "anonymous"
)

// Actor describes the entity performing the action.
type Actor struct {
	Kind    ActorKind
	StaffID *string
}

// Entry is one persisted audit row.
type Entry struct {
	ID           uuid.UUID       `json:"id"`
	ActorKind    ActorKind       `json:"actor_kind"`
	ActorStaffID *uuid.UUID      `json:"actor_staff_id,omitempty"`
	Action       string          `json:"action"`
	ResourceType string          `json:"resource_type"`
	ResourceID   string          `json:"resource_id,omitempty"`
	Method       string          `json:"method"`
	Path         string          `json:"path"`
	Route        string          `json:"route,omitempty"`
	Status       int             `json:"status"`
	IP           string          `json:"ip,omitempty"`
	UserAgent    string          `json:"user_agent,omitempty"`
	RequestID    string          `json:"request_id,omitempty"`
	Metadata     json.RawMessage `json:"metadata,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Store defines the database operations required for auditing.
type Store interface {
	InsertEntry(ctx context.Context, e Entry) (Entry, error)
	ListEntries(ctx context.Context, limit, offset int) ([]Entry, int64, error)
}

// Service persists audit logs for critical back-office flows.
type Service struct {
	Store        Store
	Enabled      bool
	SamplingRate float64
}

// Record persists an audit log entry when auditing is enabled.
func (s Service) Record(ctx context.Context, actor Actor, action, resourceType, resourceID string, req *http.Request, status int, metadata []byte) error {
	if !s.Enabled {
		return nil
	}
	if s.SamplingRate > 0 && s.SamplingRate < 1 {
		if rand.Float64() > s.SamplingRate {
			return nil
		}
	}
	if req == nil {
		return errors.New("audit: request is required")
	}
	if s.Store == nil {
		return errors.New("audit: store not configured")
	}

	route := obs.RoutePatternFromContext(req.Context())
	if route == "" {
		route = strings.TrimSpace(req.URL.Path)
	}

	if status == 0 {
		status = http.StatusOK
	}

	entry := Entry{
		ActorKind:    normalizeActorKind(actor.Kind),
		Action:       buildAction(action, req.Method, route),
		ResourceType: buildResource(resourceType, route),
		ResourceID:   strings.TrimSpace(resourceID),
		Method:       req.Method,
		Path:         req.URL.Path,
		Route:        route,
		Status:       status,
		IP:           common.ClientIP(req),
		UserAgent:    strings.TrimSpace(req.Header.Get("User-Agent")),
		RequestID:    strings.TrimSpace(req.Header.Get("X-Request-ID")),
		Metadata:     toJSONB(metadata, req.URL.RawQuery),
	}
	if actor.StaffID != nil {
		if parsed, err := uuid.Parse(strings.TrimSpace(*actor.StaffID)); err == nil {
			entry.ActorStaffID = &parsed
		}
	}

	_, err := s.Store.InsertEntry(ctx, entry)
	return err
}

// List pages the newest audit rows.
func (s Service) List(ctx context.Context, limit, offset int) ([]Entry, int64, error) {
	if s.Store == nil {
		return nil, 0, errors.New("audit: store not configured")
	}
	return s.Store.ListEntries(ctx, limit, offset)
}

func buildAction(action, method, route string) string {
	trimmed := strings.TrimSpace(action)
	if trimmed != "" {
		return trimmed
	}
	target := route
	if target == "" {
		target = "/"
	}
	return strings.ToUpper(strings.TrimSpace(method)) + " " + target
}

func buildResource(resourceType, route string) string {
	trimmed := strings.TrimSpace(resourceType)
	if trimmed != "" {
		return trimmed
	}
	route = strings.Trim(route, " ")
	if route == "" {
		return "unknown"
	}
	segments := strings.Split(strings.Trim(route, "/"), "/")
	if len(segments) >= 3 && segments[0] == "api" && segments[1] == "v1" {
		return strings.Join(segments[2:], ".")
	}
	return strings.ReplaceAll(strings.Trim(route, "/"), "/", ".")
}

func normalizeActorKind(kind ActorKind) ActorKind {
	switch kind {
	case ActorKindStaff, ActorKindSystem:
		return kind
	default:
		return ActorKindAnonymous
	}
}

func toJSONB(metadata []byte, query string) []byte {
	if len(metadata) > 0 {
		return metadata
	}
	if strings.TrimSpace(query) == "" {
		return nil
	}
	data, err := json.Marshal(map[string]string{"query": query})
	if err != nil {
		return nil
	}
	return data
}
