package payments

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Mrdanishjr1992/wrenchgo-sub004/internal/models"
)

var ErrNotFound = errors.New("payment not found")

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var _ Store = (*Repository)(nil)

func (r *Repository) CreatePayment(ctx context.Context, p *models.Payment) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO payments (id, job_id, invoice_id, customer_id, mechanic_id,
			stripe_payment_intent_id, amount_cents, platform_fee_cents, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`, p.ID, p.JobID, p.InvoiceID, p.CustomerID, p.MechanicID,
		p.StripePaymentIntentID, p.AmountCents, p.PlatformFeeCents, p.Status)
	return row.Scan(&p.CreatedAt, &p.UpdatedAt)
}

func (r *Repository) GetPayment(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	return r.scanPayment(r.pool.QueryRow(ctx, selectPayment+` WHERE id = $1`, id))
}

func (r *Repository) GetPaymentByIntent(ctx context.Context, intentID string) (*models.Payment, error) {
	return r.scanPayment(r.pool.QueryRow(ctx, selectPayment+` WHERE stripe_payment_intent_id = $1`, intentID))
}

const selectPayment = `
	SELECT id, job_id, invoice_id, customer_id, mechanic_id, stripe_payment_intent_id,
		stripe_charge_id, amount_cents, platform_fee_cents, status, error_message,
		paid_at, created_at, updated_at
	FROM payments`

func (r *Repository) scanPayment(row pgx.Row) (*models.Payment, error) {
	var p models.Payment
	err := row.Scan(&p.ID, &p.JobID, &p.InvoiceID, &p.CustomerID, &p.MechanicID, &p.StripePaymentIntentID,
		&p.StripeChargeID, &p.AmountCents, &p.PlatformFeeCents, &p.Status, &p.ErrorMessage,
		&p.PaidAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *Repository) SetPaymentIntentID(ctx context.Context, id uuid.UUID, intentID string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE payments SET stripe_payment_intent_id = $1, updated_at = now() WHERE id = $2
	`, intentID, id)
	return err
}

// UpdatePaymentStatus writes the new status plus whichever of the optional
// fields are set. A trigger on payments notifies the payment feed channel.
func (r *Repository) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, update StatusUpdate) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE payments
		SET status = $1,
			stripe_charge_id = COALESCE($2, stripe_charge_id),
			error_message = COALESCE($3, error_message),
			paid_at = COALESCE($4, paid_at),
			updated_at = now()
		WHERE id = $5
	`, update.Status, update.StripeChargeID, update.ErrorMessage, update.PaidAt, id)
	return err
}

func (r *Repository) MarkInvoicePaid(ctx context.Context, invoiceID uuid.UUID, at time.Time) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE job_invoices SET status = $1, paid_at = $2 WHERE id = $3
	`, models.InvoiceStatusPaid, at, invoiceID)
	return err
}

func (r *Repository) MarkJobPaid(ctx context.Context, jobID uuid.UUID, at time.Time) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE jobs SET status = $1, paid_at = $2, updated_at = now() WHERE id = $3
	`, models.JobStatusPaid, at, jobID)
	return err
}

func (r *Repository) CreateLedgerEntry(ctx context.Context, e *models.LedgerEntry) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO mechanic_ledger (id, mechanic_id, payment_id, job_id, stripe_account_id,
			amount_cents, status, available_for_transfer_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`, e.ID, e.MechanicID, e.PaymentID, e.JobID, e.StripeAccountID,
		e.AmountCents, e.Status, e.AvailableForTransferAt)
	return row.Scan(&e.CreatedAt)
}

// EventProcessed reports whether the webhook event id has been recorded.
func (r *Repository) EventProcessed(ctx context.Context, eventID string) (bool, error) {
	var seen bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM stripe_events WHERE event_id = $1)
	`, eventID).Scan(&seen)
	return seen, err
}

// RecordEvent inserts the processed webhook event id; false means the event
// was seen before (unique violation).
func (r *Repository) RecordEvent(ctx context.Context, eventID string) (bool, error) {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO stripe_events (event_id) VALUES ($1)
	`, eventID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *Repository) GetMechanicStripeAccount(ctx context.Context, mechanicID uuid.UUID) (string, error) {
	var account *string
	err := r.pool.QueryRow(ctx, `
		SELECT stripe_account_id FROM users WHERE id = $1
	`, mechanicID).Scan(&account)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	if account == nil {
		return "", nil
	}
	return *account, nil
}
