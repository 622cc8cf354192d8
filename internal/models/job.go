package models

import (
	"time"

	"github.com/google/uuid"
)

// Job status enums. Transitions are monotonic along the main path;
// cancelled/disputed are side branches reachable from non-terminal states.
const (
	JobStatusDraft            = "draft"
	JobStatusQuoted           = "quoted"
	JobStatusAccepted         = "accepted"
	JobStatusInProgress       = "in_progress"
	JobStatusMechanicVerified = "mechanic_verified"
	JobStatusCustomerVerified = "customer_verified"
	JobStatusCompleted        = "completed"
	JobStatusPaid             = "paid"
	JobStatusCancelled        = "cancelled"
	JobStatusDisputed         = "disputed"
)

type Job struct {
	ID          uuid.UUID  `json:"id"`
	CustomerID  uuid.UUID  `json:"customer_id"`
	MechanicID  *uuid.UUID `json:"mechanic_id,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`

	MechanicVerifiedAt *time.Time `json:"mechanic_verified_at,omitempty"`
	CustomerVerifiedAt *time.Time `json:"customer_verified_at,omitempty"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`
	PaidAt             *time.Time `json:"paid_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// Quote is a mechanic's priced offer for a job. At most one quote per job
// has a non-nil AcceptedAt.
type Quote struct {
	ID             uuid.UUID  `json:"id"`
	JobID          uuid.UUID  `json:"job_id"`
	MechanicID     uuid.UUID  `json:"mechanic_id"`
	LaborCostCents int64      `json:"labor_cost_cents"`
	PartsCostCents int64      `json:"parts_cost_cents"`
	TotalCents     int64      `json:"total_cents"`
	AcceptedAt     *time.Time `json:"accepted_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// Adjustment types for post-acceptance scope changes.
const (
	AdjustmentTypeAdditionalParts = "additional_parts"
	AdjustmentTypeAdditionalLabor = "additional_labor"
	AdjustmentTypeDiscount        = "discount"
	AdjustmentTypeCredit          = "credit"
)

// JobAdjustment captures a signed scope change (negative for credits).
// Immutable once the customer has approved it.
type JobAdjustment struct {
	ID             uuid.UUID  `json:"id"`
	JobID          uuid.UUID  `json:"job_id"`
	MechanicID     uuid.UUID  `json:"mechanic_id"`
	AdjustmentType string     `json:"adjustment_type"`
	AmountCents    int64      `json:"amount_cents"`
	Description    string     `json:"description"`
	ApprovedAt     *time.Time `json:"approved_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}
