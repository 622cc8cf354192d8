package models

import (
	"time"

	"github.com/google/uuid"
)

// Ledger entry status enums. Entries are append-only; only status and the
// transfer fields change after insert.
const (
	LedgerStatusPending              = "pending"
	LedgerStatusAvailableForTransfer = "available_for_transfer"
	LedgerStatusTransferred          = "transferred"
	LedgerStatusPaidOut              = "paid_out"
	LedgerStatusRefunded             = "refunded"
)

// LedgerEntry records money owed to a mechanic, one per succeeded payment.
type LedgerEntry struct {
	ID                     uuid.UUID  `json:"id"`
	MechanicID             uuid.UUID  `json:"mechanic_id"`
	PaymentID              uuid.UUID  `json:"payment_id"`
	JobID                  uuid.UUID  `json:"job_id"`
	StripeAccountID        string     `json:"stripe_account_id"`
	AmountCents            int64      `json:"amount_cents"`
	Status                 string     `json:"status"`
	AvailableForTransferAt time.Time  `json:"available_for_transfer_at"`
	TransferredAt          *time.Time `json:"transferred_at,omitempty"`
	StripeTransferID       *string    `json:"stripe_transfer_id,omitempty"`
	CreatedAt              time.Time  `json:"created_at"`
}

// Transfer status enums.
const (
	TransferStatusPending = "pending"
	TransferStatusPaid    = "paid"
	TransferStatusFailed  = "failed"
)

// Transfer is one batched money movement to a mechanic's payout account,
// settling one or more ledger entries.
type Transfer struct {
	ID               uuid.UUID   `json:"id"`
	MechanicID       uuid.UUID   `json:"mechanic_id"`
	StripeAccountID  string      `json:"stripe_account_id"`
	StripeTransferID string      `json:"stripe_transfer_id"`
	AmountCents      int64       `json:"amount_cents"`
	Status           string      `json:"status"`
	LedgerItemIDs    []uuid.UUID `json:"ledger_item_ids"`
	JobCount         int         `json:"job_count"`
	CreatedAt        time.Time   `json:"created_at"`
}
