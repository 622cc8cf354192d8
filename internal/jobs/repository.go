package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
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

func (r *Repository) CreateJob(ctx context.Context, job *models.Job) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO jobs (id, customer_id, title, description, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`, job.ID, job.CustomerID, job.Title, job.Description, job.Status)
	return row.Scan(&job.CreatedAt, &job.UpdatedAt)
}

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

func (r *Repository) ListJobsByUser(ctx context.Context, userID uuid.UUID) ([]*models.Job, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, customer_id, mechanic_id, title, description, status,
			mechanic_verified_at, customer_verified_at, completed_at, paid_at, created_at, updated_at
		FROM jobs
		WHERE customer_id = $1 OR mechanic_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Job
	for rows.Next() {
		var j models.Job
		err := rows.Scan(&j.ID, &j.CustomerID, &j.MechanicID, &j.Title, &j.Description, &j.Status,
			&j.MechanicVerifiedAt, &j.CustomerVerifiedAt, &j.CompletedAt, &j.PaidAt, &j.CreatedAt, &j.UpdatedAt)
		if err != nil {
			return nil, err
		}
		list = append(list, &j)
	}
	return list, rows.Err()
}

// UpdateJobStatus sets the status and stamps the matching timestamp column
// for verification/completion/payment transitions.
func (r *Repository) UpdateJobStatus(ctx context.Context, jobID uuid.UUID, status string, at time.Time) error {
	var stampCol string
	switch status {
	case models.JobStatusMechanicVerified:
		stampCol = "mechanic_verified_at"
	case models.JobStatusCustomerVerified:
		stampCol = "customer_verified_at"
	case models.JobStatusCompleted:
		stampCol = "completed_at"
	case models.JobStatusPaid:
		stampCol = "paid_at"
	}
	if stampCol != "" {
		_, err := r.pool.Exec(ctx, `
			UPDATE jobs SET status = $1, `+stampCol+` = $2, updated_at = now() WHERE id = $3
		`, status, at, jobID)
		return err
	}
	_, err := r.pool.Exec(ctx, `
		UPDATE jobs SET status = $1, updated_at = now() WHERE id = $2
	`, status, jobID)
	return err
}

func (r *Repository) AssignMechanic(ctx context.Context, jobID, mechanicID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE jobs SET mechanic_id = $1, updated_at = now() WHERE id = $2
	`, mechanicID, jobID)
	return err
}

func (r *Repository) CreateQuote(ctx context.Context, q *models.Quote) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO quotes (id, job_id, mechanic_id, labor_cost_cents, parts_cost_cents, total_cents)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`, q.ID, q.JobID, q.MechanicID, q.LaborCostCents, q.PartsCostCents, q.TotalCents)
	return row.Scan(&q.CreatedAt)
}

func (r *Repository) GetQuote(ctx context.Context, quoteID uuid.UUID) (*models.Quote, error) {
	var q models.Quote
	row := r.pool.QueryRow(ctx, `
		SELECT id, job_id, mechanic_id, labor_cost_cents, parts_cost_cents, total_cents, accepted_at, created_at
		FROM quotes WHERE id = $1
	`, quoteID)
	err := row.Scan(&q.ID, &q.JobID, &q.MechanicID, &q.LaborCostCents, &q.PartsCostCents, &q.TotalCents, &q.AcceptedAt, &q.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &q, nil
}

func (r *Repository) AcceptQuote(ctx context.Context, quoteID uuid.UUID, at time.Time) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE quotes SET accepted_at = $1 WHERE id = $2 AND accepted_at IS NULL
	`, at, quoteID)
	return err
}

func (r *Repository) HasAcceptedQuote(ctx context.Context, jobID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM quotes WHERE job_id = $1 AND accepted_at IS NOT NULL)
	`, jobID).Scan(&exists)
	return exists, err
}

func (r *Repository) CreateAdjustment(ctx context.Context, adj *models.JobAdjustment) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO job_adjustments (id, job_id, mechanic_id, adjustment_type, amount_cents, description)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`, adj.ID, adj.JobID, adj.MechanicID, adj.AdjustmentType, adj.AmountCents, adj.Description)
	return row.Scan(&adj.CreatedAt)
}

func (r *Repository) GetAdjustment(ctx context.Context, id uuid.UUID) (*models.JobAdjustment, error) {
	var a models.JobAdjustment
	row := r.pool.QueryRow(ctx, `
		SELECT id, job_id, mechanic_id, adjustment_type, amount_cents, description, approved_at, created_at
		FROM job_adjustments WHERE id = $1
	`, id)
	err := row.Scan(&a.ID, &a.JobID, &a.MechanicID, &a.AdjustmentType, &a.AmountCents, &a.Description, &a.ApprovedAt, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *Repository) ApproveAdjustment(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE job_adjustments SET approved_at = $1 WHERE id = $2 AND approved_at IS NULL
	`, at, id)
	return err
}
