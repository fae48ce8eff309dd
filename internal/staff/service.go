package staff

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/alexedwards/argon2id"
	"github.com/google/uuid"

	"github.com/noah-isme/backend-agency/internal/common"
)

// Store abstracts staff persistence for the service layer.
type Store interface {
	Create(ctx context.Context, name, email, passwordHash string, roles []string) (Staff, error)
	GetByID(ctx context.Context, id uuid.UUID) (Staff, error)
	GetByEmail(ctx context.Context, email string) (Staff, error)
	List(ctx context.Context, limit, offset int) ([]Staff, int64, error)
	Update(ctx context.Context, id uuid.UUID, name string, roles []string, active bool) (Staff, error)
	SetPIN(ctx context.Context, id uuid.UUID, pinHash string) error
	SetPassword(ctx context.Context, id uuid.UUID, passwordHash string) error
}

// Service manages staff accounts.
type Service struct {
	Store Store
}

// CreateParams carries the fields for a new account.
type CreateParams struct {
	Name     string
	Email    string
	Password string
	Roles    []string
}

// Create registers a staff account after validating roles and hashing the password.
func (s *Service) Create(ctx context.Context, p CreateParams) (Staff, error) {
	if s.Store == nil {
		return Staff{}, errors.New("staff service not configured")
	}
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	if len(p.Roles) == 0 {
		p.Roles = []string{RoleStaff}
	}
	for _, role := range p.Roles {
		if !validRole(role) {
			return Staff{}, common.NewAppError("INVALID_ROLE", fmt.Sprintf("unknown role %q", role), http.StatusBadRequest, nil)
		}
	}
	hash, err := argon2id.CreateHash(p.Password, argon2id.DefaultParams)
	if err != nil {
		return Staff{}, fmt.Errorf("hash password: %w", err)
	}
	st, err := s.Store.Create(ctx, strings.TrimSpace(p.Name), p.Email, hash, p.Roles)
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return Staff{}, common.NewAppError("EMAIL_TAKEN", "email already registered", http.StatusConflict, nil)
		}
		return Staff{}, err
	}
	return st, nil
}

// Get returns one staff account.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Staff, error) {
	st, err := s.Store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Staff{}, common.ErrNotFound("staff")
		}
		return Staff{}, err
	}
	return st, nil
}

// List pages through staff accounts.
func (s *Service) List(ctx context.Context, limit, offset int) ([]Staff, int64, error) {
	return s.Store.List(ctx, limit, offset)
}

// UpdateParams carries the mutable account fields.
type UpdateParams struct {
	Name   string
	Roles  []string
	Active bool
}

// Update overwrites name, roles, and active flag.
func (s *Service) Update(ctx context.Context, id uuid.UUID, p UpdateParams) (Staff, error) {
	for _, role := range p.Roles {
		if !validRole(role) {
			return Staff{}, common.NewAppError("INVALID_ROLE", fmt.Sprintf("unknown role %q", role), http.StatusBadRequest, nil)
		}
	}
	st, err := s.Store.Update(ctx, id, strings.TrimSpace(p.Name), p.Roles, p.Active)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Staff{}, common.ErrNotFound("staff")
		}
		return Staff{}, err
	}
	return st, nil
}

// SetPIN hashes and stores a transaction PIN for the account.
// A PIN must be 4 to 8 digits.
func (s *Service) SetPIN(ctx context.Context, id uuid.UUID, pin string) error {
	if !validPIN(pin) {
		return common.NewAppError("INVALID_PIN", "pin must be 4 to 8 digits", http.StatusBadRequest, nil)
	}
	hash, err := argon2id.CreateHash(pin, argon2id.DefaultParams)
	if err != nil {
		return fmt.Errorf("hash pin: %w", err)
	}
	if err := s.Store.SetPIN(ctx, id, hash); err != nil {
		if errors.Is(err, ErrNotFound) {
			return common.ErrNotFound("staff")
		}
		return err
	}
	return nil
}

// SetPassword verifies the current password and stores a new argon2id hash.
func (s *Service) SetPassword(ctx context.Context, id uuid.UUID, current, next string) error {
	st, err := s.Store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return common.ErrNotFound("staff")
		}
		return err
	}
	match, err := argon2id.ComparePasswordAndHash(current, st.PasswordHash)
	if err != nil {
		return fmt.Errorf("compare password: %w", err)
	}
	if !match {
		return common.NewAppError("INVALID_CREDENTIALS", "current password does not match", http.StatusForbidden, nil)
	}
	hash, err := argon2id.CreateHash(next, argon2id.DefaultParams)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.Store.SetPassword(ctx, id, hash)
}

func validPIN(pin string) bool {
	if len(pin) < 4 || len(pin) > 8 {
		return false
	}
	for _, c := range pin {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
