package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Mrdanishjr1992/wrenchgo-sub004/internal/models"
)

var (
	// ErrNotFound is returned when the referenced job or quote does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden is returned when the caller is not a party to the job.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidState is returned when a transition is requested from the wrong status.
	ErrInvalidState = errors.New("invalid job state")
	// ErrQuoteAlreadyAccepted is returned when a job already has an accepted quote.
	ErrQuoteAlreadyAccepted = errors.New("job already has an accepted quote")
)

// Store is the persistence contract the lifecycle service needs.
type Store interface {
	CreateJob(ctx context.Context, job *models.Job) error
	GetJob(ctx context.Context, jobID uuid.UUID) (*models.Job, error)
	ListJobsByUser(ctx context.Context, userID uuid.UUID) ([]*models.Job, error)
	UpdateJobStatus(ctx context.Context, jobID uuid.UUID, status string, at time.Time) error
	AssignMechanic(ctx context.Context, jobID, mechanicID uuid.UUID) error

	CreateQuote(ctx context.Context, q *models.Quote) error
	GetQuote(ctx context.Context, quoteID uuid.UUID) (*models.Quote, error)
	AcceptQuote(ctx context.Context, quoteID uuid.UUID, at time.Time) error
	HasAcceptedQuote(ctx context.Context, jobID uuid.UUID) (bool, error)

	CreateAdjustment(ctx context.Context, adj *models.JobAdjustment) error
	GetAdjustment(ctx context.Context, id uuid.UUID) (*models.JobAdjustment, error)
	ApproveAdjustment(ctx context.Context, id uuid.UUID, at time.Time) error
}

// Service drives the job lifecycle state machine:
// draft -> quoted -> accepted -> in_progress -> mechanic_verified ->
// customer_verified -> completed -> paid, with cancelled/disputed side
// branches from non-terminal states.
type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// allowedFrom maps each forward transition to the statuses it may start from.
var allowedFrom = map[string][]string{
	models.JobStatusQuoted:           {models.JobStatusDraft, models.JobStatusQuoted},
	models.JobStatusAccepted:         {models.JobStatusQuoted},
	models.JobStatusInProgress:       {models.JobStatusAccepted},
	models.JobStatusMechanicVerified: {models.JobStatusInProgress},
	models.JobStatusCustomerVerified: {models.JobStatusMechanicVerified},
	models.JobStatusCompleted:        {models.JobStatusCustomerVerified},
	models.JobStatusPaid:             {models.JobStatusCompleted},
}

// terminal statuses admit no further transitions, including side branches.
var terminal = map[string]bool{
	models.JobStatusPaid:      true,
	models.JobStatusCancelled: true,
}

func canTransition(from, to string) bool {
	if terminal[from] {
		return false
	}
	if to == models.JobStatusCancelled || to == models.JobStatusDisputed {
		return from != models.JobStatusCompleted || to == models.JobStatusDisputed
	}
	for _, f := range allowedFrom[to] {
		if f == from {
			return true
		}
	}
	return false
}

func (s *Service) CreateJob(ctx context.Context, customerID uuid.UUID, title, description string) (*models.Job, error) {
	job := &models.Job{
		ID:          uuid.New(),
		CustomerID:  customerID,
		Title:       title,
		Description: description,
		Status:      models.JobStatusDraft,
	}
	if err := s.store.CreateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}
	return job, nil
}

func (s *Service) GetJob(ctx context.Context, jobID uuid.UUID) (*models.Job, error) {
	return s.store.GetJob(ctx, jobID)
}

func (s *Service) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Job, error) {
	return s.store.ListJobsByUser(ctx, userID)
}

// SubmitQuote records a mechanic's offer. TotalCents is computed here;
// clients never supply it.
func (s *Service) SubmitQuote(ctx context.Context, mechanicID, jobID uuid.UUID, laborCents, partsCents int64) (*models.Quote, error) {
	job, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != models.JobStatusDraft && job.Status != models.JobStatusQuoted {
		return nil, ErrInvalidState
	}
	q := &models.Quote{
		ID:             uuid.New(),
		JobID:          jobID,
		MechanicID:     mechanicID,
		LaborCostCents: laborCents,
		PartsCostCents: partsCents,
		TotalCents:     laborCents + partsCents,
	}
	if err := s.store.CreateQuote(ctx, q); err != nil {
		return nil, fmt.Errorf("create quote: %w", err)
	}
	if job.Status == models.JobStatusDraft {
		if err := s.store.UpdateJobStatus(ctx, jobID, models.JobStatusQuoted, s.now()); err != nil {
			return nil, fmt.Errorf("mark job quoted: %w", err)
		}
	}
	return q, nil
}

// AcceptQuote marks one quote accepted, assigns its mechanic, and moves the
// job to accepted. A job may only ever have one accepted quote.
func (s *Service) AcceptQuote(ctx context.Context, customerID, quoteID uuid.UUID) error {
	quote, err := s.store.GetQuote(ctx, quoteID)
	if err != nil {
		return err
	}
	job, err := s.store.GetJob(ctx, quote.JobID)
	if err != nil {
		return err
	}
	if job.CustomerID != customerID {
		return ErrForbidden
	}
	if !canTransition(job.Status, models.JobStatusAccepted) {
		return ErrInvalidState
	}
	accepted, err := s.store.HasAcceptedQuote(ctx, job.ID)
	if err != nil {
		return err
	}
	if accepted {
		return ErrQuoteAlreadyAccepted
	}
	now := s.now()
	if err := s.store.AcceptQuote(ctx, quoteID, now); err != nil {
		return fmt.Errorf("accept quote: %w", err)
	}
	if err := s.store.AssignMechanic(ctx, job.ID, quote.MechanicID); err != nil {
		return fmt.Errorf("assign mechanic: %w", err)
	}
	return s.store.UpdateJobStatus(ctx, job.ID, models.JobStatusAccepted, now)
}

// StartWork moves an accepted job to in_progress; only the assigned mechanic may.
func (s *Service) StartWork(ctx context.Context, mechanicID, jobID uuid.UUID) error {
	return s.transition(ctx, mechanicID, jobID, models.JobStatusInProgress, partyMechanic)
}

// MechanicVerify records the mechanic's completion claim.
func (s *Service) MechanicVerify(ctx context.Context, mechanicID, jobID uuid.UUID) error {
	return s.transition(ctx, mechanicID, jobID, models.JobStatusMechanicVerified, partyMechanic)
}

// CustomerVerify records the customer's confirmation, making the job ready
// for invoice locking.
func (s *Service) CustomerVerify(ctx context.Context, customerID, jobID uuid.UUID) error {
	return s.transition(ctx, customerID, jobID, models.JobStatusCustomerVerified, partyCustomer)
}

// Cancel moves the job to the cancelled side branch.
func (s *Service) Cancel(ctx context.Context, userID, jobID uuid.UUID) error {
	return s.transition(ctx, userID, jobID, models.JobStatusCancelled, partyEither)
}

// Dispute moves the job to the disputed side branch.
func (s *Service) Dispute(ctx context.Context, userID, jobID uuid.UUID) error {
	return s.transition(ctx, userID, jobID, models.JobStatusDisputed, partyEither)
}

type party int

const (
	partyCustomer party = iota
	partyMechanic
	partyEither
)

func (s *Service) transition(ctx context.Context, userID, jobID uuid.UUID, to string, who party) error {
	job, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		return err
	}
	isCustomer := job.CustomerID == userID
	isMechanic := job.MechanicID != nil && *job.MechanicID == userID
	switch who {
	case partyCustomer:
		if !isCustomer {
			return ErrForbidden
		}
	case partyMechanic:
		if !isMechanic {
			return ErrForbidden
		}
	case partyEither:
		if !isCustomer && !isMechanic {
			return ErrForbidden
		}
	}
	if !canTransition(job.Status, to) {
		return ErrInvalidState
	}
	return s.store.UpdateJobStatus(ctx, jobID, to, s.now())
}

// AddAdjustment records a signed post-acceptance scope change by the
// assigned mechanic. Allowed until the customer has verified completion.
func (s *Service) AddAdjustment(ctx context.Context, mechanicID, jobID uuid.UUID, adjType string, amountCents int64, description string) (*models.JobAdjustment, error) {
	job, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.MechanicID == nil || *job.MechanicID != mechanicID {
		return nil, ErrForbidden
	}
	switch job.Status {
	case models.JobStatusAccepted, models.JobStatusInProgress, models.JobStatusMechanicVerified:
	default:
		return nil, ErrInvalidState
	}
	adj := &models.JobAdjustment{
		ID:             uuid.New(),
		JobID:          jobID,
		MechanicID:     mechanicID,
		AdjustmentType: adjType,
		AmountCents:    amountCents,
		Description:    description,
	}
	if err := s.store.CreateAdjustment(ctx, adj); err != nil {
		return nil, fmt.Errorf("create adjustment: %w", err)
	}
	return adj, nil
}

// ApproveAdjustment records customer approval; the adjustment is immutable
// afterwards (enforced by the absence of any update path).
func (s *Service) ApproveAdjustment(ctx context.Context, customerID, adjustmentID uuid.UUID) error {
	adj, err := s.store.GetAdjustment(ctx, adjustmentID)
	if err != nil {
		return err
	}
	job, err := s.store.GetJob(ctx, adj.JobID)
	if err != nil {
		return err
	}
	if job.CustomerID != customerID {
		return ErrForbidden
	}
	if adj.ApprovedAt != nil {
		return nil // already approved, idempotent
	}
	return s.store.ApproveAdjustment(ctx, adjustmentID, s.now())
}
