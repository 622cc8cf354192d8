package invoices

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Mrdanishjr1992/wrenchgo-sub004/internal/models"
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var _ Store = (*Repository)(nil)

func (r *Repository) GetJob(ctx context.Context, jobID uuid.UUID) (*models.Job, error) {
	var j models.Job
	row := r.pool.QueryRow(ctx, `
		SELECT id, customer_id, mechanic_id, title, description, status,
			mechanic_verified_at, customer_verified_at, completed_at, paid_at, created_at, updated_at
		FROM jobs WHERE id = $1
	`, jobID)
	err := row.Scan(&j.ID, &j.CustomerID, &j.MechanicID, &j.Title, &j.Description, &j.Status,
		&j.MechanicVerifiedAt, &j.CustomerVerifiedAt, &j.CompletedAt, &j.PaidAt, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &j, nil
}

// GetInvoiceByJob returns (nil, nil) when the job has no invoice yet.
func (r *Repository) GetInvoiceByJob(ctx context.Context, jobID uuid.UUID) (*models.JobInvoice, error) {
	var inv models.JobInvoice
	var lineItems []byte
	row := r.pool.QueryRow(ctx, `
		SELECT id, job_id, quote_id, status, original_labor_cents, original_parts_cents,
			adjustments_cents, subtotal_cents, platform_fee_cents, total_cents, mechanic_net_cents,
			line_items, locked_at, paid_at, created_at
		FROM job_invoices WHERE job_id = $1
	`, jobID)
	err := row.Scan(&inv.ID, &inv.JobID, &inv.QuoteID, &inv.Status, &inv.OriginalLaborCents, &inv.OriginalPartsCents,
		&inv.AdjustmentsCents, &inv.SubtotalCents, &inv.PlatformFeeCents, &inv.TotalCents, &inv.MechanicNetCents,
		&lineItems, &inv.LockedAt, &inv.PaidAt, &inv.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(lineItems, &inv.LineItems); err != nil {
		return nil, err
	}
	return &inv, nil
}

// GetAcceptedQuote returns (nil, nil) when no quote has been accepted.
func (r *Repository) GetAcceptedQuote(ctx context.Context, jobID uuid.UUID) (*models.Quote, error) {
	var q models.Quote
	row := r.pool.QueryRow(ctx, `
		SELECT id, job_id, mechanic_id, labor_cost_cents, parts_cost_cents, total_cents, accepted_at, created_at
		FROM quotes WHERE job_id = $1 AND accepted_at IS NOT NULL
	`, jobID)
	err := row.Scan(&q.ID, &q.JobID, &q.MechanicID, &q.LaborCostCents, &q.PartsCostCents, &q.TotalCents, &q.AcceptedAt, &q.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &q, nil
}

func (r *Repository) ListAdjustments(ctx context.Context, jobID uuid.UUID) ([]*models.JobAdjustment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, job_id, mechanic_id, adjustment_type, amount_cents, description, approved_at, created_at
		FROM job_adjustments WHERE job_id = $1
		ORDER BY created_at
	`, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.JobAdjustment
	for rows.Next() {
		var a models.JobAdjustment
		err := rows.Scan(&a.ID, &a.JobID, &a.MechanicID, &a.AdjustmentType, &a.AmountCents, &a.Description, &a.ApprovedAt, &a.CreatedAt)
		if err != nil {
			return nil, err
		}
		list = append(list, &a)
	}
	return list, rows.Err()
}

// CreateInvoice inserts the invoice row. job_invoices carries a unique
// constraint on job_id; a violation maps to ErrInvoiceExists so concurrent
// lock calls converge on the already-locked path instead of failing.
func (r *Repository) CreateInvoice(ctx context.Context, inv *models.JobInvoice) error {
	lineItems, err := json.Marshal(inv.LineItems)
	if err != nil {
		return err
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO job_invoices (id, job_id, quote_id, status, original_labor_cents, original_parts_cents,
			adjustments_cents, subtotal_cents, platform_fee_cents, total_cents, mechanic_net_cents,
			line_items, locked_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at
	`, inv.ID, inv.JobID, inv.QuoteID, inv.Status, inv.OriginalLaborCents, inv.OriginalPartsCents,
		inv.AdjustmentsCents, inv.SubtotalCents, inv.PlatformFeeCents, inv.TotalCents, inv.MechanicNetCents,
		lineItems, inv.LockedAt)
	if err := row.Scan(&inv.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrInvoiceExists
		}
		return err
	}
	return nil
}

func (r *Repository) MarkJobCompleted(ctx context.Context, jobID uuid.UUID, at time.Time) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE jobs SET status = $1, completed_at = $2, updated_at = now() WHERE id = $3
	`, models.JobStatusCompleted, at, jobID)
	return err
}
