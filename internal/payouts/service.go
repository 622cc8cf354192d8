package payouts

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/Mrdanishjr1992/wrenchgo-sub004/internal/models"
)

// LedgerStore is the persistence contract for the batcher.
type LedgerStore interface {
	ListAvailable(ctx context.Context, now time.Time) ([]*models.LedgerEntry, error)
	CreateTransfer(ctx context.Context, t *models.Transfer) error
	MarkTransferred(ctx context.Context, entryIDs []uuid.UUID, stripeTransferID string, at time.Time) error
}

// TransferRequest describes one external payout.
type TransferRequest struct {
	AmountCents        int64
	DestinationAccount string
	IdempotencyKey     string
	MechanicID         uuid.UUID
	JobCount           int
}

// TransferClient moves money to a mechanic's payout account and returns the
// external transfer id. The idempotency key is the sole duplicate-prevention
// mechanism for the external call; local state is not consulted on retry.
type TransferClient interface {
	CreateTransfer(ctx context.Context, req TransferRequest) (string, error)
}

// Notifier tells a mechanic their payout went out. Delivery is best-effort
// and never blocks or fails the batch.
type Notifier interface {
	PayoutSent(ctx context.Context, mechanicID uuid.UUID, amountCents int64, jobCount int)
}

// MechanicResult is the first-class per-mechanic outcome of a batch run.
type MechanicResult struct {
	MechanicID  uuid.UUID `json:"mechanic_id"`
	Success     bool      `json:"success"`
	TransferID  string    `json:"transfer_id,omitempty"`
	AmountCents int64     `json:"amount_cents,omitempty"`
	JobCount    int       `json:"job_count,omitempty"`
	Error       string    `json:"error,omitempty"`
}

// BatchResult summarizes a run. Success reflects the run itself, not the
// individual groups; per-group failures are in Results.
type BatchResult struct {
	Success        bool             `json:"success"`
	TotalTransfers int              `json:"total_transfers"`
	Succeeded      int              `json:"succeeded"`
	Failed         int              `json:"failed"`
	Results        []MechanicResult `json:"results"`
}

type Service struct {
	ledger    LedgerStore
	transfers TransferClient
	notifier  Notifier
	log       *slog.Logger
	now       func() time.Time
}

func NewService(ledger LedgerStore, transfers TransferClient, notifier Notifier, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{ledger: ledger, transfers: transfers, notifier: notifier, log: log, now: time.Now}
}

// RunBatch settles all ledger entries that have become available for
// transfer, one external transfer per mechanic. Groups are isolated: a
// failure leaves that mechanic's entries untouched for the next run and
// never aborts the others.
func (s *Service) RunBatch(ctx context.Context) (*BatchResult, error) {
	now := s.now()
	entries, err := s.ledger.ListAvailable(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("list available ledger entries: %w", err)
	}
	if len(entries) == 0 {
		return &BatchResult{Success: true}, nil
	}

	groups := make(map[uuid.UUID][]*models.LedgerEntry)
	for _, e := range entries {
		groups[e.MechanicID] = append(groups[e.MechanicID], e)
	}
	// Order across mechanics is unspecified; sorted iteration just keeps
	// logs and results stable.
	mechanics := make([]uuid.UUID, 0, len(groups))
	for id := range groups {
		mechanics = append(mechanics, id)
	}
	sort.Slice(mechanics, func(i, j int) bool { return mechanics[i].String() < mechanics[j].String() })

	result := &BatchResult{Success: true, TotalTransfers: len(mechanics)}
	for _, mechanicID := range mechanics {
		mr := s.payMechanic(ctx, mechanicID, groups[mechanicID], now)
		if mr.Success {
			result.Succeeded++
		} else {
			result.Failed++
			s.log.Error("payout group failed", "mechanic_id", mechanicID, "error", mr.Error)
		}
		result.Results = append(result.Results, mr)
	}
	return result, nil
}

// payMechanic runs one group end to end: external transfer, transfer record,
// ledger update, notification — strictly in that order.
func (s *Service) payMechanic(ctx context.Context, mechanicID uuid.UUID, group []*models.LedgerEntry, now time.Time) MechanicResult {
	var total int64
	entryIDs := make([]uuid.UUID, 0, len(group))
	account := group[0].StripeAccountID
	for _, e := range group {
		total += e.AmountCents
		entryIDs = append(entryIDs, e.ID)
	}
	jobCount := len(group)

	if account == "" {
		return MechanicResult{MechanicID: mechanicID, Success: false, Error: "mechanic has no payout account"}
	}

	// At most one transfer per mechanic per calendar day, even if the batch
	// runs twice.
	key := IdempotencyKey(mechanicID, now)

	stripeID, err := s.transfers.CreateTransfer(ctx, TransferRequest{
		AmountCents:        total,
		DestinationAccount: account,
		IdempotencyKey:     key,
		MechanicID:         mechanicID,
		JobCount:           jobCount,
	})
	if err != nil {
		return MechanicResult{MechanicID: mechanicID, Success: false, Error: err.Error()}
	}

	transfer := &models.Transfer{
		ID:               uuid.New(),
		MechanicID:       mechanicID,
		StripeAccountID:  account,
		StripeTransferID: stripeID,
		AmountCents:      total,
		Status:           models.TransferStatusPaid,
		LedgerItemIDs:    entryIDs,
		JobCount:         jobCount,
	}
	if err := s.ledger.CreateTransfer(ctx, transfer); err != nil {
		return MechanicResult{MechanicID: mechanicID, Success: false, Error: fmt.Sprintf("record transfer: %v", err)}
	}
	if err := s.ledger.MarkTransferred(ctx, entryIDs, stripeID, now); err != nil {
		return MechanicResult{MechanicID: mechanicID, Success: false, Error: fmt.Sprintf("update ledger: %v", err)}
	}

	if s.notifier != nil {
		// Fire-and-forget: delivery never gates the ledger update above.
		go s.notifier.PayoutSent(context.WithoutCancel(ctx), mechanicID, total, jobCount)
	}

	return MechanicResult{
		MechanicID:  mechanicID,
		Success:     true,
		TransferID:  stripeID,
		AmountCents: total,
		JobCount:    jobCount,
	}
}

// IdempotencyKey scopes the external transfer to one per mechanic per
// calendar day.
func IdempotencyKey(mechanicID uuid.UUID, now time.Time) string {
	return fmt.Sprintf("transfer_%s_%s", mechanicID, now.Format("2006-01-02"))
}
