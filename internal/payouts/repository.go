package payouts

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Mrdanishjr1992/wrenchgo-sub004/internal/models"
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var _ LedgerStore = (*Repository)(nil)

func (r *Repository) ListAvailable(ctx context.Context, now time.Time) ([]*models.LedgerEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, mechanic_id, payment_id, job_id, stripe_account_id, amount_cents,
			status, available_for_transfer_at, transferred_at, stripe_transfer_id, created_at
		FROM mechanic_ledger
		WHERE status = $1 AND available_for_transfer_at <= $2
		ORDER BY available_for_transfer_at
	`, models.LedgerStatusAvailableForTransfer, now)
	if err != nil {
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

func (r *Repository) CreateTransfer(ctx context.Context, t *models.Transfer) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO transfers (id, mechanic_id, stripe_account_id, stripe_transfer_id,
			amount_cents, status, ledger_item_ids, job_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`, t.ID, t.MechanicID, t.StripeAccountID, t.StripeTransferID,
		t.AmountCents, t.Status, t.LedgerItemIDs, t.JobCount)
	return row.Scan(&t.CreatedAt)
}

func (r *Repository) MarkTransferred(ctx context.Context, entryIDs []uuid.UUID, stripeTransferID string, at time.Time) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE mechanic_ledger
		SET status = $1, transferred_at = $2, stripe_transfer_id = $3
		WHERE id = ANY($4)
	`, models.LedgerStatusTransferred, at, stripeTransferID, entryIDs)
	return err
}
