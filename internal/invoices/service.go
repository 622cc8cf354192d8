package invoices

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Mrdanishjr1992/wrenchgo-sub004/internal/models"
	"github.com/Mrdanishjr1992/wrenchgo-sub004/internal/money"
)

// PlatformFeeRate is the fraction of the invoice subtotal retained by the
// platform, rounded to the nearest cent.
const PlatformFeeRate = 0.15

var (
	ErrNotFound  = errors.New("job not found")
	ErrForbidden = errors.New("forbidden")
	// ErrNotReady is returned when the job has not reached customer
	// verification yet.
	ErrNotReady = errors.New("Job not ready for invoice")
	// ErrNoAcceptedQuote is returned when no quote with a non-nil
	// accepted_at exists for the job.
	ErrNoAcceptedQuote = errors.New("no accepted quote for job")
	// ErrInvoiceExists is the store's signal that the unique constraint on
	// (job_id) fired; the service resolves it to the already-locked path.
	ErrInvoiceExists = errors.New("invoice already exists for job")
)

// Store is the persistence contract for the lock engine. CreateInvoice must
// return ErrInvoiceExists when an invoice for the job already exists, backed
// by a unique constraint so concurrent locks cannot both insert.
type Store interface {
	GetJob(ctx context.Context, jobID uuid.UUID) (*models.Job, error)
	GetInvoiceByJob(ctx context.Context, jobID uuid.UUID) (*models.JobInvoice, error)
	GetAcceptedQuote(ctx context.Context, jobID uuid.UUID) (*models.Quote, error)
	ListAdjustments(ctx context.Context, jobID uuid.UUID) ([]*models.JobAdjustment, error)
	CreateInvoice(ctx context.Context, inv *models.JobInvoice) error
	MarkJobCompleted(ctx context.Context, jobID uuid.UUID, at time.Time) error
}

// LockResult is the outcome of a lock call. AlreadyLocked means the invoice
// predates this call and nothing was recomputed.
type LockResult struct {
	Invoice       *models.JobInvoice
	AlreadyLocked bool
}

type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// Lock finalizes a job's billed amount. It is the only path from
// customer_verified to completed: it computes the line items, platform fee,
// and mechanic net from the accepted quote plus adjustments, persists the
// invoice, and only then advances the job. A second call for the same job
// returns the existing invoice unchanged.
func (s *Service) Lock(ctx context.Context, requesterID, jobID uuid.UUID) (*LockResult, error) {
	job, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	isCustomer := job.CustomerID == requesterID
	isMechanic := job.MechanicID != nil && *job.MechanicID == requesterID
	if !isCustomer && !isMechanic {
		return nil, ErrForbidden
	}

	if existing, err := s.store.GetInvoiceByJob(ctx, jobID); err != nil {
		return nil, fmt.Errorf("check existing invoice: %w", err)
	} else if existing != nil {
		return &LockResult{Invoice: existing, AlreadyLocked: true}, nil
	}

	if job.Status != models.JobStatusCustomerVerified {
		return nil, ErrNotReady
	}

	quote, err := s.store.GetAcceptedQuote(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if quote == nil {
		return nil, ErrNoAcceptedQuote
	}

	adjustments, err := s.store.ListAdjustments(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("list adjustments: %w", err)
	}

	inv := build(job, quote, adjustments, s.now())

	if err := s.store.CreateInvoice(ctx, inv); err != nil {
		if errors.Is(err, ErrInvoiceExists) {
			// Lost the race to a concurrent lock; the winner's invoice is
			// the canonical one.
			existing, gerr := s.store.GetInvoiceByJob(ctx, jobID)
			if gerr != nil || existing == nil {
				return nil, fmt.Errorf("fetch invoice after conflict: %w", gerr)
			}
			return &LockResult{Invoice: existing, AlreadyLocked: true}, nil
		}
		return nil, fmt.Errorf("create invoice: %w", err)
	}

	// Invoice row is durable; advancing the job last means a failure here
	// leaves a retryable state, never an uninvoiced completed job.
	if err := s.store.MarkJobCompleted(ctx, jobID, *inv.LockedAt); err != nil {
		return nil, fmt.Errorf("mark job completed: %w", err)
	}
	return &LockResult{Invoice: inv}, nil
}

// GetByJob returns the locked invoice for a job, or ErrNotFound.
func (s *Service) GetByJob(ctx context.Context, requesterID, jobID uuid.UUID) (*models.JobInvoice, error) {
	job, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.CustomerID != requesterID && (job.MechanicID == nil || *job.MechanicID != requesterID) {
		return nil, ErrForbidden
	}
	inv, err := s.store.GetInvoiceByJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, ErrNotFound
	}
	return inv, nil
}

// build computes the invoice fields from the quote and adjustments.
func build(job *models.Job, quote *models.Quote, adjustments []*models.JobAdjustment, now time.Time) *models.JobInvoice {
	var adjustmentsTotal int64
	for _, a := range adjustments {
		adjustmentsTotal += a.AmountCents
	}
	subtotal := quote.TotalCents + adjustmentsTotal
	platformFee := money.SafeCents(float64(subtotal) * PlatformFeeRate)
	mechanicNet := subtotal - platformFee

	items := make([]models.LineItem, 0, len(adjustments)+3)
	items = append(items,
		models.LineItem{Type: models.LineItemLabor, Description: "Labor", AmountCents: quote.LaborCostCents},
		models.LineItem{Type: models.LineItemParts, Description: "Parts", AmountCents: quote.PartsCostCents},
	)
	for _, a := range adjustments {
		items = append(items, models.LineItem{
			Type:           models.LineItemAdjustment,
			Description:    a.Description,
			AmountCents:    a.AmountCents,
			AdjustmentType: a.AdjustmentType,
		})
	}
	items = append(items, models.LineItem{
		Type:        models.LineItemPlatformFee,
		Description: "Platform Fee (15%)",
		AmountCents: -platformFee,
	})

	lockedAt := now
	return &models.JobInvoice{
		ID:                 uuid.New(),
		JobID:              job.ID,
		QuoteID:            quote.ID,
		Status:             models.InvoiceStatusLocked,
		OriginalLaborCents: quote.LaborCostCents,
		OriginalPartsCents: quote.PartsCostCents,
		AdjustmentsCents:   adjustmentsTotal,
		SubtotalCents:      subtotal,
		PlatformFeeCents:   platformFee,
		TotalCents:         subtotal,
		MechanicNetCents:   mechanicNet,
		LineItems:          items,
		LockedAt:           &lockedAt,
	}
}
