package payments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Mrdanishjr1992/wrenchgo-sub004/internal/models"
)

var (
	ErrForbidden       = errors.New("forbidden")
	ErrNoLockedInvoice = errors.New("job has no locked invoice")
)

// LedgerHoldPeriod is how long mechanic earnings sit in the ledger before
// becoming eligible for the weekly payout batch.
const LedgerHoldPeriod = 7 * 24 * time.Hour

// StatusUpdate carries a payment status change; nil optional fields are
// left untouched in the row.
type StatusUpdate struct {
	Status         string
	StripeChargeID *string
	ErrorMessage   *string
	PaidAt         *time.Time
}

// Store is the persistence contract for the payment pipeline.
type Store interface {
	CreatePayment(ctx context.Context, p *models.Payment) error
	GetPayment(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	GetPaymentByIntent(ctx context.Context, intentID string) (*models.Payment, error)
	SetPaymentIntentID(ctx context.Context, id uuid.UUID, intentID string) error
	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, update StatusUpdate) error
	MarkInvoicePaid(ctx context.Context, invoiceID uuid.UUID, at time.Time) error
	MarkJobPaid(ctx context.Context, jobID uuid.UUID, at time.Time) error
	CreateLedgerEntry(ctx context.Context, e *models.LedgerEntry) error
	EventProcessed(ctx context.Context, eventID string) (bool, error)
	RecordEvent(ctx context.Context, eventID string) (bool, error)
	GetMechanicStripeAccount(ctx context.Context, mechanicID uuid.UUID) (string, error)
}

// InvoiceGetter fetches the locked invoice a payment is drawn against.
type InvoiceGetter interface {
	GetInvoiceByJob(ctx context.Context, jobID uuid.UUID) (*models.JobInvoice, error)
}

// IntentClient opens the customer-facing charge with the processor.
type IntentClient interface {
	CreatePaymentIntent(ctx context.Context, amountCents int64, jobID, paymentID string) (string, string, error)
}

// Notifier delivers user-facing notifications. Failures are logged, never
// propagated into the payment pipeline.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, typ, title, body string) error
}

type Service struct {
	store    Store
	invoices InvoiceGetter
	intents  IntentClient
	notifier Notifier
	log      *slog.Logger
	now      func() time.Time
}

func NewService(store Store, invoices InvoiceGetter, intents IntentClient, notifier Notifier, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: store, invoices: invoices, intents: intents, notifier: notifier, log: log, now: time.Now}
}

// IntentResult is returned to the paying customer's client.
type IntentResult struct {
	PaymentID    uuid.UUID `json:"payment_id"`
	ClientSecret string    `json:"client_secret"`
	AmountCents  int64     `json:"amount_cents"`
}

// CreateIntent opens a charge for a job's locked invoice. The payment row is
// created first in pending status so the webhook always has a row to update;
// the processor intent only exists once the row does.
func (s *Service) CreateIntent(ctx context.Context, customerID uuid.UUID, job *models.Job) (*IntentResult, error) {
	if job.CustomerID != customerID {
		return nil, ErrForbidden
	}
	inv, err := s.invoices.GetInvoiceByJob(ctx, job.ID)
	if err != nil {
		return nil, fmt.Errorf("fetch invoice: %w", err)
	}
	if inv == nil || inv.Status != models.InvoiceStatusLocked {
		return nil, ErrNoLockedInvoice
	}
	if job.MechanicID == nil {
		return nil, ErrNoLockedInvoice
	}

	payment := &models.Payment{
		ID:               uuid.New(),
		JobID:            job.ID,
		InvoiceID:        &inv.ID,
		CustomerID:       job.CustomerID,
		MechanicID:       *job.MechanicID,
		AmountCents:      inv.TotalCents,
		PlatformFeeCents: inv.PlatformFeeCents,
		Status:           models.PaymentStatusPending,
	}
	if err := s.store.CreatePayment(ctx, payment); err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}

	intentID, clientSecret, err := s.intents.CreatePaymentIntent(ctx, inv.TotalCents, job.ID.String(), payment.ID.String())
	if err != nil {
		return nil, fmt.Errorf("create payment intent: %w", err)
	}
	payment.StripePaymentIntentID = intentID
	if err := s.store.SetPaymentIntentID(ctx, payment.ID, intentID); err != nil {
		return nil, fmt.Errorf("attach payment intent: %w", err)
	}
	return &IntentResult{PaymentID: payment.ID, ClientSecret: clientSecret, AmountCents: inv.TotalCents}, nil
}

// HandleIntentSucceeded settles a successful charge: payment row, invoice,
// job, mechanic ledger entry, then notifications. The event id is recorded
// only after settlement completes, so a delivery that fails partway is
// reprocessed in full on redelivery; a recorded id makes replay a no-op.
func (s *Service) HandleIntentSucceeded(ctx context.Context, eventID, intentID string, chargeID string) error {
	seen, err := s.store.EventProcessed(ctx, eventID)
	if err != nil {
		return fmt.Errorf("check event: %w", err)
	}
	if seen {
		s.log.Info("skipping replayed webhook event", "event_id", eventID)
		return nil
	}

	payment, err := s.store.GetPaymentByIntent(ctx, intentID)
	if err != nil {
		return fmt.Errorf("payment for intent %s: %w", intentID, err)
	}

	now := s.now()
	update := StatusUpdate{Status: models.PaymentStatusSucceeded, PaidAt: &now}
	if chargeID != "" {
		update.StripeChargeID = &chargeID
	}
	if err := s.store.UpdatePaymentStatus(ctx, payment.ID, update); err != nil {
		return fmt.Errorf("update payment: %w", err)
	}
	if payment.InvoiceID != nil {
		if err := s.store.MarkInvoicePaid(ctx, *payment.InvoiceID, now); err != nil {
			return fmt.Errorf("mark invoice paid: %w", err)
		}
	}
	if err := s.store.MarkJobPaid(ctx, payment.JobID, now); err != nil {
		return fmt.Errorf("mark job paid: %w", err)
	}

	account, err := s.store.GetMechanicStripeAccount(ctx, payment.MechanicID)
	if err != nil {
		return fmt.Errorf("mechanic payout account: %w", err)
	}
	entry := &models.LedgerEntry{
		ID:                     uuid.New(),
		MechanicID:             payment.MechanicID,
		PaymentID:              payment.ID,
		JobID:                  payment.JobID,
		StripeAccountID:        account,
		AmountCents:            payment.AmountCents - payment.PlatformFeeCents,
		Status:                 models.LedgerStatusAvailableForTransfer,
		AvailableForTransferAt: now.Add(LedgerHoldPeriod),
	}
	if err := s.store.CreateLedgerEntry(ctx, entry); err != nil {
		return fmt.Errorf("create ledger entry: %w", err)
	}
	if _, err := s.store.RecordEvent(ctx, eventID); err != nil {
		return fmt.Errorf("record event: %w", err)
	}

	s.notify(ctx, payment.CustomerID, models.NotificationPaymentSucceeded,
		"Payment successful", "Your payment has been processed.")
	s.notify(ctx, payment.MechanicID, models.NotificationPaymentReceived,
		"You got paid", "A customer payment for your job has cleared.")
	return nil
}

// HandleIntentFailed marks the payment failed with the processor's message.
func (s *Service) HandleIntentFailed(ctx context.Context, eventID, intentID, failureMessage string) error {
	seen, err := s.store.EventProcessed(ctx, eventID)
	if err != nil {
		return fmt.Errorf("check event: %w", err)
	}
	if seen {
		return nil
	}
	payment, err := s.store.GetPaymentByIntent(ctx, intentID)
	if err != nil {
		return fmt.Errorf("payment for intent %s: %w", intentID, err)
	}
	update := StatusUpdate{Status: models.PaymentStatusFailed}
	if failureMessage != "" {
		update.ErrorMessage = &failureMessage
	}
	if err := s.store.UpdatePaymentStatus(ctx, payment.ID, update); err != nil {
		return fmt.Errorf("update payment: %w", err)
	}
	if _, err := s.store.RecordEvent(ctx, eventID); err != nil {
		return fmt.Errorf("record event: %w", err)
	}
	s.notify(ctx, payment.CustomerID, models.NotificationPaymentFailed,
		"Payment failed", "Your payment could not be processed. Please try again.")
	return nil
}

// HandleIntentStatus covers the intermediate transitions (processing,
// requires_action) that the client observer reacts to.
func (s *Service) HandleIntentStatus(ctx context.Context, eventID, intentID, status string) error {
	seen, err := s.store.EventProcessed(ctx, eventID)
	if err != nil {
		return fmt.Errorf("check event: %w", err)
	}
	if seen {
		return nil
	}
	payment, err := s.store.GetPaymentByIntent(ctx, intentID)
	if err != nil {
		return fmt.Errorf("payment for intent %s: %w", intentID, err)
	}
	if err := s.store.UpdatePaymentStatus(ctx, payment.ID, StatusUpdate{Status: status}); err != nil {
		return fmt.Errorf("update payment: %w", err)
	}
	if _, err := s.store.RecordEvent(ctx, eventID); err != nil {
		return fmt.Errorf("record event: %w", err)
	}
	return nil
}

// GetPayment returns a payment the caller is party to.
func (s *Service) GetPayment(ctx context.Context, requesterID, paymentID uuid.UUID) (*models.Payment, error) {
	p, err := s.store.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if p.CustomerID != requesterID && p.MechanicID != requesterID {
		return nil, ErrForbidden
	}
	return p, nil
}

func (s *Service) notify(ctx context.Context, userID uuid.UUID, typ, title, body string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, userID, typ, title, body); err != nil {
		s.log.Warn("notification delivery failed", "user_id", userID, "type", typ, "error", err)
	}
}
