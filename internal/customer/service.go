package customer

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/noah-isme/backend-agency/internal/common"
)

// Service manages customer records.
type Service struct {
	Repo *Repo
}

// CreateParams carries the fields for a new customer.
type CreateParams struct {
	Name           string
	Phone          string
	Email          string
	Address        string
	PassportNumber string
}

// Create registers a new customer.
func (s *Service) Create(ctx context.Context, p CreateParams) (Customer, error) {
	if s.Repo == nil {
		return Customer{}, errors.New("customer service not configured")
	}
	c, err := s.Repo.Create(ctx, Customer{
		Name:           strings.TrimSpace(p.Name),
		Phone:          strings.TrimSpace(p.Phone),
		Email:          strings.ToLower(strings.TrimSpace(p.Email)),
		Address:        strings.TrimSpace(p.Address),
		PassportNumber: strings.ToUpper(strings.TrimSpace(p.PassportNumber)),
	})
	if err != nil {
		if errors.Is(err, ErrPhoneTaken) {
			return Customer{}, common.NewAppError("PHONE_TAKEN", "phone number already registered", http.StatusConflict, nil)
		}
		return Customer{}, err
	}
	return c, nil
}

// Get returns one customer.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Customer, error) {
	c, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Customer{}, common.ErrNotFound("customer")
		}
		return Customer{}, err
	}
	return c, nil
}

// List pages customers with an optional search term.
func (s *Service) List(ctx context.Context, search string, limit, offset int) ([]Customer, int64, error) {
	return s.Repo.List(ctx, search, limit, offset)
}

// Update overwrites the customer's contact fields.
func (s *Service) Update(ctx context.Context, id uuid.UUID, p CreateParams) (Customer, error) {
	c, err := s.Repo.Update(ctx, Customer{
		ID:             id,
		Name:           strings.TrimSpace(p.Name),
		Phone:          strings.TrimSpace(p.Phone),
		Email:          strings.ToLower(strings.TrimSpace(p.Email)),
		Address:        strings.TrimSpace(p.Address),
		PassportNumber: strings.ToUpper(strings.TrimSpace(p.PassportNumber)),
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Customer{}, common.ErrNotFound("customer")
		}
		if errors.Is(err, ErrPhoneTaken) {
			return Customer{}, common.NewAppError("PHONE_TAKEN", "phone number already registered", http.StatusConflict, nil)
		}
		return Customer{}, err
	}
	return c, nil
}
