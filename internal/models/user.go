package models

import (
	"time"

	"github.com/google/uuid"
)

// Account roles.
const (
	RoleCustomer = "customer"
	RoleMechanic = "mechanic"
)

type User struct {
	ID              uuid.UUID `json:"id"`
	Email           string    `json:"email"`
	DisplayName     string    `json:"display_name"`
	Role            string    `json:"role"`
	PasswordHash    string    `json:"-"`
	StripeAccountID *string   `json:"stripe_account_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
