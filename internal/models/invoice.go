package models

import (
	"time"

	"github.com/google/uuid"
)

// Invoice status enums.
const (
	InvoiceStatusDraft    = "draft"
	InvoiceStatusLocked   = "locked"
	InvoiceStatusPaid     = "paid"
	InvoiceStatusRefunded = "refunded"
	InvoiceStatusDisputed = "disputed"
)

// Line item types, in the order they appear on a locked invoice:
// labor, parts, zero or more adjustments, then the platform fee (negative).
const (
	LineItemLabor       = "labor"
	LineItemParts       = "parts"
	LineItemAdjustment  = "adjustment"
	LineItemPlatformFee = "platform_fee"
)

type LineItem struct {
	Type           string `json:"type"`
	Description    string `json:"description"`
	AmountCents    int64  `json:"amount_cents"`
	AdjustmentType string `json:"adjustment_type,omitempty"`
}

// JobInvoice is derived from a job, its accepted quote, and its adjustments.
// Created exactly once per job; monetary fields are immutable after LockedAt.
type JobInvoice struct {
	ID                 uuid.UUID  `json:"id"`
	JobID              uuid.UUID  `json:"job_id"`
	QuoteID            uuid.UUID  `json:"quote_id"`
	Status             string     `json:"status"`
	OriginalLaborCents int64      `json:"original_labor_cents"`
	OriginalPartsCents int64      `json:"original_parts_cents"`
	AdjustmentsCents   int64      `json:"adjustments_cents"`
	SubtotalCents      int64      `json:"subtotal_cents"`
	PlatformFeeCents   int64      `json:"platform_fee_cents"`
	TotalCents         int64      `json:"total_cents"`
	MechanicNetCents   int64      `json:"mechanic_net_cents"`
	LineItems          []LineItem `json:"line_items"`
	LockedAt           *time.Time `json:"locked_at,omitempty"`
	PaidAt             *time.Time `json:"paid_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}
