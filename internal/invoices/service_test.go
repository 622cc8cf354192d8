package invoices

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Mrdanishjr1992/wrenchgo-sub004/internal/models"
)

// ---------------------------------------------------------------------------
// Mocks
// ---------------------------------------------------------------------------

type mockStore struct {
	mu          sync.Mutex
	job         *models.Job
	quote       *models.Quote
	adjustments []*models.JobAdjustment
	invoice     *models.JobInvoice

	createErr error
	completed bool
}

func (m *mockStore) GetJob(_ context.Context, jobID uuid.UUID) (*models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.job == nil || m.job.ID != jobID {
		return nil, ErrNotFound
	}
	cp := *m.job
	return &cp, nil
}

func (m *mockStore) GetInvoiceByJob(_ context.Context, jobID uuid.UUID) (*models.JobInvoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.invoice != nil && m.invoice.JobID == jobID {
		cp := *m.invoice
		return &cp, nil
	}
	return nil, nil
}

func (m *mockStore) GetAcceptedQuote(_ context.Context, jobID uuid.UUID) (*models.Quote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.quote != nil && m.quote.JobID == jobID && m.quote.AcceptedAt != nil {
		cp := *m.quote
		return &cp, nil
	}
	return nil, nil
}

func (m *mockStore) ListAdjustments(_ context.Context, _ uuid.UUID) ([]*models.JobAdjustment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.adjustments, nil
}

func (m *mockStore) CreateInvoice(_ context.Context, inv *models.JobInvoice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	if m.invoice != nil {
		return ErrInvoiceExists
	}
	cp := *inv
	m.invoice = &cp
	return nil
}

func (m *mockStore) MarkJobCompleted(_ context.Context, _ uuid.UUID, _ time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.completed = true
	m.job.Status = models.JobStatusCompleted
	return nil
}

func fixture(status string) (*mockStore, uuid.UUID, uuid.UUID) {
	customer := uuid.New()
	mechanic := uuid.New()
	jobID := uuid.New()
	acceptedAt := time.Now().Add(-time.Hour)
	store := &mockStore{
		job: &models.Job{ID: jobID, CustomerID: customer, MechanicID: &mechanic, Status: status},
		quote: &models.Quote{
			ID: uuid.New(), JobID: jobID, MechanicID: mechanic,
			LaborCostCents: 20000, PartsCostCents: 10000, TotalCents: 30000,
			AcceptedAt: &acceptedAt,
		},
	}
	return store, customer, jobID
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestLock_ComputesFeeAndLineItems(t *testing.T) {
	store, customer, jobID := fixture(models.JobStatusCustomerVerified)
	store.adjustments = []*models.JobAdjustment{
		{ID: uuid.New(), JobID: jobID, AdjustmentType: models.AdjustmentTypeAdditionalParts, AmountCents: 5000, Description: "replacement rotor"},
		{ID: uuid.New(), JobID: jobID, AdjustmentType: models.AdjustmentTypeDiscount, AmountCents: -2000, Description: "goodwill"},
	}
	svc := NewService(store)

	res, err := svc.Lock(context.Background(), customer, jobID)
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}
	if res.AlreadyLocked {
		t.Fatal("fresh lock reported already_locked")
	}
	inv := res.Invoice

	// subtotal = 30000 + 5000 - 2000 = 33000; fee = round(33000*0.15) = 4950
	if inv.SubtotalCents != 33000 {
		t.Errorf("subtotal: got %d, want 33000", inv.SubtotalCents)
	}
	if inv.PlatformFeeCents != 4950 {
		t.Errorf("platform fee: got %d, want 4950", inv.PlatformFeeCents)
	}
	if inv.MechanicNetCents != 33000-4950 {
		t.Errorf("mechanic net: got %d, want %d", inv.MechanicNetCents, 33000-4950)
	}
	if inv.AdjustmentsCents != 3000 {
		t.Errorf("adjustments total: got %d, want 3000", inv.AdjustmentsCents)
	}

	// Exact line item order: labor, parts, adjustments, platform fee last.
	if len(inv.LineItems) != 5 {
		t.Fatalf("line items: got %d, want 5", len(inv.LineItems))
	}
	wantTypes := []string{
		models.LineItemLabor, models.LineItemParts,
		models.LineItemAdjustment, models.LineItemAdjustment,
		models.LineItemPlatformFee,
	}
	for i, wt := range wantTypes {
		if inv.LineItems[i].Type != wt {
			t.Errorf("line item %d: got %s, want %s", i, inv.LineItems[i].Type, wt)
		}
	}
	last := inv.LineItems[len(inv.LineItems)-1]
	if last.AmountCents != -4950 {
		t.Errorf("platform fee line: got %d, want -4950", last.AmountCents)
	}
	if last.Description != "Platform Fee (15%)" {
		t.Errorf("platform fee description: got %q", last.Description)
	}
	if inv.LineItems[2].AdjustmentType != models.AdjustmentTypeAdditionalParts {
		t.Errorf("adjustment line not tagged with its type")
	}

	if !store.completed {
		t.Error("job was not advanced to completed")
	}
	if inv.Status != models.InvoiceStatusLocked || inv.LockedAt == nil {
		t.Error("invoice not locked")
	}
}

func TestLock_FeeRounding(t *testing.T) {
	// 10 cents * 0.15 = 1.5 -> rounds to 2.
	store, customer, jobID := fixture(models.JobStatusCustomerVerified)
	store.quote.LaborCostCents = 10
	store.quote.PartsCostCents = 0
	store.quote.TotalCents = 10
	svc := NewService(store)

	res, err := svc.Lock(context.Background(), customer, jobID)
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}
	if res.Invoice.PlatformFeeCents != 2 {
		t.Errorf("fee: got %d, want 2", res.Invoice.PlatformFeeCents)
	}
}

func TestLock_Idempotent(t *testing.T) {
	store, customer, jobID := fixture(models.JobStatusCustomerVerified)
	svc := NewService(store)

	first, err := svc.Lock(context.Background(), customer, jobID)
	if err != nil {
		t.Fatalf("first Lock: %v", err)
	}
	second, err := svc.Lock(context.Background(), customer, jobID)
	if err != nil {
		t.Fatalf("second Lock: %v", err)
	}
	if !second.AlreadyLocked {
		t.Error("second lock did not report already_locked")
	}
	if first.Invoice.ID != second.Invoice.ID {
		t.Errorf("invoice ids differ: %s vs %s", first.Invoice.ID, second.Invoice.ID)
	}
}

func TestLock_ConflictResolvesToAlreadyLocked(t *testing.T) {
	// Simulates losing the insert race: the existence check sees nothing but
	// the insert hits the unique constraint.
	store, customer, jobID := fixture(models.JobStatusCustomerVerified)
	winner := &models.JobInvoice{ID: uuid.New(), JobID: jobID, Status: models.InvoiceStatusLocked}

	svc := NewService(&conflictStore{mockStore: store, winner: winner})
	res, err := svc.Lock(context.Background(), customer, jobID)
	if err != nil {
		t.Fatalf("Lock after conflict: %v", err)
	}
	if !res.AlreadyLocked || res.Invoice.ID != winner.ID {
		t.Errorf("conflict did not resolve to winner invoice")
	}
}

// conflictStore reports no invoice on the first existence check, fails the
// insert with ErrInvoiceExists, then serves the winner row.
type conflictStore struct {
	*mockStore
	winner  *models.JobInvoice
	checked bool
}

func (c *conflictStore) GetInvoiceByJob(_ context.Context, _ uuid.UUID) (*models.JobInvoice, error) {
	if !c.checked {
		c.checked = true
		return nil, nil
	}
	return c.winner, nil
}

func (c *conflictStore) CreateInvoice(_ context.Context, _ *models.JobInvoice) error {
	return ErrInvoiceExists
}

func TestLock_RequiresCustomerVerified(t *testing.T) {
	for _, status := range []string{
		models.JobStatusDraft, models.JobStatusAccepted,
		models.JobStatusInProgress, models.JobStatusMechanicVerified,
	} {
		store, customer, jobID := fixture(status)
		svc := NewService(store)
		_, err := svc.Lock(context.Background(), customer, jobID)
		if !errors.Is(err, ErrNotReady) {
			t.Errorf("status %s: got %v, want ErrNotReady", status, err)
		}
	}
}

func TestLock_ForbiddenForStrangers(t *testing.T) {
	store, _, jobID := fixture(models.JobStatusCustomerVerified)
	svc := NewService(store)
	_, err := svc.Lock(context.Background(), uuid.New(), jobID)
	if !errors.Is(err, ErrForbidden) {
		t.Errorf("got %v, want ErrForbidden", err)
	}
}

func TestLock_MechanicMayLock(t *testing.T) {
	store, _, jobID := fixture(models.JobStatusCustomerVerified)
	svc := NewService(store)
	if _, err := svc.Lock(context.Background(), *store.job.MechanicID, jobID); err != nil {
		t.Errorf("assigned mechanic should be allowed to lock: %v", err)
	}
}

func TestLock_NoAcceptedQuote(t *testing.T) {
	store, customer, jobID := fixture(models.JobStatusCustomerVerified)
	store.quote.AcceptedAt = nil
	svc := NewService(store)
	_, err := svc.Lock(context.Background(), customer, jobID)
	if !errors.Is(err, ErrNoAcceptedQuote) {
		t.Errorf("got %v, want ErrNoAcceptedQuote", err)
	}
}

func TestLock_JobNotFound(t *testing.T) {
	store, customer, _ := fixture(models.JobStatusCustomerVerified)
	svc := NewService(store)
	_, err := svc.Lock(context.Background(), customer, uuid.New())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestLock_PersistFailureLeavesJobRetryable(t *testing.T) {
	store, customer, jobID := fixture(models.JobStatusCustomerVerified)
	store.createErr = errors.New("connection reset")
	svc := NewService(store)

	_, err := svc.Lock(context.Background(), customer, jobID)
	if err == nil {
		t.Fatal("expected persistence error")
	}
	if store.completed {
		t.Error("job advanced despite invoice persistence failure")
	}
	if store.job.Status != models.JobStatusCustomerVerified {
		t.Errorf("job status: got %s, want customer_verified", store.job.Status)
	}
}
