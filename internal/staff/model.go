package staff

import (
	"time"

	"github.com/google/uuid"
)

// Known staff roles. A bill creator may issue invoices and record receipts;
// admins additionally manage accounts.
const (
	RoleStaff       = "staff"
	RoleBillCreator = "billcreator"
	RoleAdmin       = "admin"
)

// Staff represents a back-office account. PasswordHash and PINHash never
// leave the service layer.
type Staff struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Roles        []string  `json:"roles"`
	Active       bool      `json:"active"`
	PINSet       bool      `json:"pin_set"`
	PasswordHash string    `json:"-"`
	PINHash      string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HasRole reports whether the account carries the given role.
func (s Staff) HasRole(role string) bool {
	for _, r := range s.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func validRole(role string) bool {
	switch role {
	case RoleStaff, RoleBillCreator, RoleAdmin:
		return true
	}
	return false
}
