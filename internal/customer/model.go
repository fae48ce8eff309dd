package customer

import (
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/backend-agency/internal/fare"
)

// Customer is an agency client whose bookings and deposit balance are tracked.
type Customer struct {
	ID             uuid.UUID  `json:"id"`
	Name           string     `json:"name"`
	Phone          string     `json:"phone"`
	Email          string     `json:"email,omitempty"`
	Address        string     `json:"address,omitempty"`
	PassportNumber string     `json:"passport_number,omitempty"`
	DepositBalance fare.Money `json:"deposit_balance"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
