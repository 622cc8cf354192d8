package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Notification types emitted by the payment pipeline.
const (
	NotificationTransferCreated  = "transfer_created"
	NotificationPaymentSucceeded = "payment_succeeded"
	NotificationPaymentReceived  = "payment_received"
	NotificationPaymentFailed    = "payment_failed"
)

type Notification struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"user_id"`
	Type      string          `json:"type"`
	Title     string          `json:"title"`
	Body      string          `json:"body"`
	Data      json.RawMessage `json:"data,omitempty"`
	ReadAt    *time.Time      `json:"read_at,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}
