package dashboard

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Mrdanishjr1992/wrenchgo-sub004/internal/diagnostics"
	"github.com/Mrdanishjr1992/wrenchgo-sub004/internal/models"
)

// EarningsSummary aggregates a mechanic's ledger by status.
type EarningsSummary struct {
	PendingCents     int64 `json:"pending_cents"`
	AvailableCents   int64 `json:"available_cents"`
	TransferredCents int64 `json:"transferred_cents"`
	LifetimeCents    int64 `json:"lifetime_cents"`
	JobCount         int   `json:"job_count"`
}

type Repository struct {
	pool *pgxpool.Pool
	diag *diagnostics.ErrorLog
}

func NewRepository(pool *pgxpool.Pool, diag *diagnostics.ErrorLog) *Repository {
	return &Repository{pool: pool, diag: diag}
}

func (r *Repository) ListLedger(ctx context.Context, mechanicID uuid.UUID) ([]*models.LedgerEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, mechanic_id, payment_id, job_id, stripe_account_id, amount_cents,
			status, available_for_transfer_at, transferred_at, stripe_transfer_id, created_at
		FROM mechanic_ledger
		WHERE mechanic_id = $1
		ORDER BY created_at DESC
	`, mechanicID)
	if err != nil {
		r.record("select", "mechanic_ledger", mechanicID, err)
		return nil, err
	}
	defer rows.Close()
	var list []*models.LedgerEntry
	for rows.Next() {
		var e models.LedgerEntry
		err := rows.Scan(&e.ID, &e.MechanicID, &e.PaymentID, &e.JobID, &e.StripeAccountID, &e.AmountCents,
			&e.Status, &e.AvailableForTransferAt, &e.TransferredAt, &e.StripeTransferID, &e.CreatedAt)
		if err != nil {
			return nil, err
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}

func (r *Repository) ListTransfers(ctx context.Context, mechanicID uuid.UUID) ([]*models.Transfer, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, mechanic_id, stripe_account_id, stripe_transfer_id, amount_cents,
			status, ledger_item_ids, job_count, created_at
		FROM transfers
		WHERE mechanic_id = $1
		ORDER BY created_at DESC
	`, mechanicID)
	if err != nil {
		r.record("select", "transfers", mechanicID, err)
		return nil, err
	}
	defer rows.Close()
	var list []*models.Transfer
	for rows.Next() {
		var t models.Transfer
		err := rows.Scan(&t.ID, &t.MechanicID, &t.StripeAccountID, &t.StripeTransferID, &t.AmountCents,
			&t.Status, &t.LedgerItemIDs, &t.JobCount, &t.CreatedAt)
		if err != nil {
			return nil, err
		}
		list = append(list, &t)
	}
	return list, rows.Err()
}

func (r *Repository) EarningsSummary(ctx context.Context, mechanicID uuid.UUID) (*EarningsSummary, error) {
	var s EarningsSummary
	err := r.pool.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(amount_cents) FILTER (WHERE status = $2), 0),
			COALESCE(SUM(amount_cents) FILTER (WHERE status = $3), 0),
			COALESCE(SUM(amount_cents) FILTER (WHERE status IN ($4, $5)), 0),
			COALESCE(SUM(amount_cents), 0),
			COUNT(*)
		FROM mechanic_ledger
		WHERE mechanic_id = $1
	`, mechanicID,
		models.LedgerStatusPending,
		models.LedgerStatusAvailableForTransfer,
		models.LedgerStatusTransferred, models.LedgerStatusPaidOut,
	).Scan(&s.PendingCents, &s.AvailableCents, &s.TransferredCents, &s.LifetimeCents, &s.JobCount)
	if err != nil {
		r.record("select", "mechanic_ledger", mechanicID, err)
		return nil, err
	}
	return &s, nil
}

func (r *Repository) record(op, table string, mechanicID uuid.UUID, err error) {
	if r.diag != nil {
		r.diag.Record(diagnostics.QueryContext{
			Operation: op,
			Table:     table,
			Filters:   map[string]any{"mechanic_id": mechanicID.String()},
		}, err)
	}
}
