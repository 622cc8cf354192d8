package models

import (
	"time"

	"github.com/google/uuid"
)

// Payment status enums, mirroring the processor's payment-intent lifecycle.
const (
	PaymentStatusPending        = "pending"
	PaymentStatusProcessing     = "processing"
	PaymentStatusRequiresAction = "requires_action"
	PaymentStatusSucceeded      = "succeeded"
	PaymentStatusFailed         = "failed"
	PaymentStatusCancelled      = "cancelled"
	PaymentStatusRefunded       = "refunded"
)

type Payment struct {
	ID                    uuid.UUID  `json:"id"`
	JobID                 uuid.UUID  `json:"job_id"`
	InvoiceID             *uuid.UUID `json:"invoice_id,omitempty"`
	CustomerID            uuid.UUID  `json:"customer_id"`
	MechanicID            uuid.UUID  `json:"mechanic_id"`
	StripePaymentIntentID string     `json:"stripe_payment_intent_id"`
	StripeChargeID        *string    `json:"stripe_charge_id,omitempty"`
	AmountCents           int64      `json:"amount_cents"`
	PlatformFeeCents      int64      `json:"platform_fee_cents"`
	Status                string     `json:"status"`
	ErrorMessage          *string    `json:"error_message,omitempty"`
	PaidAt                *time.Time `json:"paid_at,omitempty"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}
