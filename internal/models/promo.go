package models

import (
	"time"

	"github.com/google/uuid"
)

// Promo engine error codes (stable, machine-readable).
const (
	PromoErrMissingParams    = "MISSING_PARAMS"
	PromoErrUnauthorized     = "UNAUTHORIZED"
	PromoErrValidationError  = "VALIDATION_ERROR"
	PromoErrApplicationError = "APPLICATION_ERROR"
	PromoErrServerError      = "SERVER_ERROR"
)

// PromoValidationResult is the typed contract for validate_promo_eligibility.
// Business rejections come back as Valid=false with HTTP 200.
type PromoValidationResult struct {
	Valid         bool   `json:"valid"`
	PromoID       string `json:"promo_id,omitempty"`
	CreditType    string `json:"credit_type,omitempty"`
	DiscountCents int64  `json:"discount_cents,omitempty"`
	FeeAfterCents int64  `json:"fee_after_cents,omitempty"`
	ErrorCode     string `json:"error_code,omitempty"`
	UserMessage   string `json:"user_message,omitempty"`
}

// PromoApplicationResult is the typed contract for apply_promo_atomic.
type PromoApplicationResult struct {
	Success        bool   `json:"success"`
	ApplicationID  string `json:"application_id,omitempty"`
	CreditType     string `json:"credit_type,omitempty"`
	FeeBeforeCents int64  `json:"fee_before_cents,omitempty"`
	DiscountCents  int64  `json:"discount_cents,omitempty"`
	FeeAfterCents  int64  `json:"fee_after_cents,omitempty"`
	ErrorCode      string `json:"error_code,omitempty"`
	UserMessage    string `json:"user_message,omitempty"`
}

// PromoApplication is the persisted at-most-once application record,
// keyed by IdempotencyKey.
type PromoApplication struct {
	ID             uuid.UUID `json:"id"`
	IdempotencyKey string    `json:"idempotency_key"`
	PromoID        uuid.UUID `json:"promo_id"`
	UserID         uuid.UUID `json:"user_id"`
	PaymentID      uuid.UUID `json:"payment_id"`
	DiscountCents  int64     `json:"discount_cents"`
	CreatedAt      time.Time `json:"created_at"`
}
