package payouts

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Mrdanishjr1992/wrenchgo-sub004/internal/models"
)

// ---------------------------------------------------------------------------
// Mocks
// ---------------------------------------------------------------------------

type mockLedger struct {
	mu        sync.Mutex
	entries   []*models.LedgerEntry
	transfers []*models.Transfer

	createTransferErr error
}

func (m *mockLedger) ListAvailable(_ context.Context, now time.Time) ([]*models.LedgerEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.LedgerEntry
	for _, e := range m.entries {
		if e.Status == models.LedgerStatusAvailableForTransfer && !e.AvailableForTransferAt.After(now) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockLedger) CreateTransfer(_ context.Context, t *models.Transfer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createTransferErr != nil {
		return m.createTransferErr
	}
	m.transfers = append(m.transfers, t)
	return nil
}

func (m *mockLedger) MarkTransferred(_ context.Context, entryIDs []uuid.UUID, stripeTransferID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		for _, id := range entryIDs {
			if e.ID == id {
				e.Status = models.LedgerStatusTransferred
				e.TransferredAt = &at
				e.StripeTransferID = &stripeTransferID
			}
		}
	}
	return nil
}

type mockTransferClient struct {
	mu      sync.Mutex
	calls   []TransferRequest
	failFor map[uuid.UUID]error
	nextID  int
}

func (m *mockTransferClient) CreateTransfer(_ context.Context, req TransferRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, req)
	if err, ok := m.failFor[req.MechanicID]; ok {
		return "", err
	}
	m.nextID++
	return fmt.Sprintf("tr_%d", m.nextID), nil
}

type mockNotifier struct {
	mu    sync.Mutex
	sends int
	done  chan struct{}
}

func (m *mockNotifier) PayoutSent(_ context.Context, _ uuid.UUID, _ int64, _ int) {
	m.mu.Lock()
	m.sends++
	m.mu.Unlock()
	if m.done != nil {
		m.done <- struct{}{}
	}
}

func availableEntry(mechanicID uuid.UUID, amount int64) *models.LedgerEntry {
	return &models.LedgerEntry{
		ID:                     uuid.New(),
		MechanicID:             mechanicID,
		PaymentID:              uuid.New(),
		JobID:                  uuid.New(),
		StripeAccountID:        "acct_" + mechanicID.String()[:8],
		AmountCents:            amount,
		Status:                 models.LedgerStatusAvailableForTransfer,
		AvailableForTransferAt: time.Now().Add(-24 * time.Hour),
	}
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestRunBatch_EmptyLedgerIsSuccess(t *testing.T) {
	ledger := &mockLedger{}
	client := &mockTransferClient{}
	svc := NewService(ledger, client, nil, nil)

	result, err := svc.RunBatch(context.Background())
	if err != nil {
		t.Fatalf("RunBatch: %v", err)
	}
	if !result.Success || result.TotalTransfers != 0 {
		t.Errorf("got success=%v total=%d, want success with zero transfers", result.Success, result.TotalTransfers)
	}
	if len(client.calls) != 0 {
		t.Error("external transfer API called with zero eligible entries")
	}
}

func TestRunBatch_GroupsByMechanic(t *testing.T) {
	mechA := uuid.New()
	mechB := uuid.New()
	ledger := &mockLedger{entries: []*models.LedgerEntry{
		availableEntry(mechA, 10000),
		availableEntry(mechA, 5000),
		availableEntry(mechB, 7000),
	}}
	client := &mockTransferClient{}
	svc := NewService(ledger, client, nil, nil)

	result, err := svc.RunBatch(context.Background())
	if err != nil {
		t.Fatalf("RunBatch: %v", err)
	}
	if result.TotalTransfers != 2 || result.Succeeded != 2 {
		t.Fatalf("got total=%d succeeded=%d, want 2/2", result.TotalTransfers, result.Succeeded)
	}
	if len(client.calls) != 2 {
		t.Fatalf("transfer calls: got %d, want 2", len(client.calls))
	}
	// One transfer covers all of a mechanic's entries.
	amounts := map[uuid.UUID]int64{}
	for _, c := range client.calls {
		amounts[c.MechanicID] = c.AmountCents
	}
	if amounts[mechA] != 15000 {
		t.Errorf("mechanic A amount: got %d, want 15000", amounts[mechA])
	}
	if amounts[mechB] != 7000 {
		t.Errorf("mechanic B amount: got %d, want 7000", amounts[mechB])
	}
	// All entries advanced.
	for _, e := range ledger.entries {
		if e.Status != models.LedgerStatusTransferred {
			t.Errorf("entry %s not transferred", e.ID)
		}
	}
	if len(ledger.transfers) != 2 {
		t.Errorf("transfer records: got %d, want 2", len(ledger.transfers))
	}
}

func TestRunBatch_PartialFailureIsolation(t *testing.T) {
	mechOK := uuid.New()
	mechBad := uuid.New()
	ledger := &mockLedger{entries: []*models.LedgerEntry{
		availableEntry(mechOK, 10000),
		availableEntry(mechBad, 8000),
	}}
	client := &mockTransferClient{failFor: map[uuid.UUID]error{
		mechBad: errors.New("insufficient platform balance"),
	}}
	svc := NewService(ledger, client, nil, nil)

	result, err := svc.RunBatch(context.Background())
	if err != nil {
		t.Fatalf("RunBatch: %v", err)
	}
	if result.Succeeded != 1 || result.Failed != 1 {
		t.Fatalf("got succeeded=%d failed=%d, want 1/1", result.Succeeded, result.Failed)
	}

	var okRes, badRes *MechanicResult
	for i := range result.Results {
		switch result.Results[i].MechanicID {
		case mechOK:
			okRes = &result.Results[i]
		case mechBad:
			badRes = &result.Results[i]
		}
	}
	if okRes == nil || !okRes.Success || okRes.TransferID == "" {
		t.Error("succeeding mechanic missing a success result")
	}
	if badRes == nil || badRes.Success || badRes.Error == "" {
		t.Error("failing mechanic missing a failure result")
	}

	// The failing mechanic's entries stay available for the next run.
	for _, e := range ledger.entries {
		switch e.MechanicID {
		case mechOK:
			if e.Status != models.LedgerStatusTransferred {
				t.Error("succeeding mechanic's entry not advanced")
			}
		case mechBad:
			if e.Status != models.LedgerStatusAvailableForTransfer {
				t.Error("failing mechanic's entry was advanced")
			}
		}
	}
}

func TestRunBatch_IdempotencyKeyScopedToDay(t *testing.T) {
	mech := uuid.New()
	at := time.Date(2026, 8, 31, 7, 0, 0, 0, time.UTC)
	entry := availableEntry(mech, 5000)
	entry.AvailableForTransferAt = at.Add(-24 * time.Hour)
	ledger := &mockLedger{entries: []*models.LedgerEntry{entry}}
	client := &mockTransferClient{}
	svc := NewService(ledger, client, nil, nil)
	svc.now = func() time.Time { return at }

	if _, err := svc.RunBatch(context.Background()); err != nil {
		t.Fatalf("RunBatch: %v", err)
	}
	want := fmt.Sprintf("transfer_%s_2026-08-31", mech)
	if client.calls[0].IdempotencyKey != want {
		t.Errorf("idempotency key: got %q, want %q", client.calls[0].IdempotencyKey, want)
	}
}

func TestRunBatch_FutureEntriesExcluded(t *testing.T) {
	mech := uuid.New()
	future := availableEntry(mech, 5000)
	future.AvailableForTransferAt = time.Now().Add(48 * time.Hour)
	ledger := &mockLedger{entries: []*models.LedgerEntry{future}}
	client := &mockTransferClient{}
	svc := NewService(ledger, client, nil, nil)

	result, err := svc.RunBatch(context.Background())
	if err != nil {
		t.Fatalf("RunBatch: %v", err)
	}
	if result.TotalTransfers != 0 {
		t.Errorf("future-dated entry was picked up")
	}
}

func TestRunBatch_MissingPayoutAccountFailsGroup(t *testing.T) {
	mech := uuid.New()
	entry := availableEntry(mech, 5000)
	entry.StripeAccountID = ""
	ledger := &mockLedger{entries: []*models.LedgerEntry{entry}}
	client := &mockTransferClient{}
	svc := NewService(ledger, client, nil, nil)

	result, err := svc.RunBatch(context.Background())
	if err != nil {
		t.Fatalf("RunBatch: %v", err)
	}
	if result.Failed != 1 {
		t.Fatalf("got failed=%d, want 1", result.Failed)
	}
	if len(client.calls) != 0 {
		t.Error("transfer attempted without a payout account")
	}
	if entry.Status != models.LedgerStatusAvailableForTransfer {
		t.Error("entry advanced without a transfer")
	}
}

func TestRunBatch_NotifiesMechanic(t *testing.T) {
	mech := uuid.New()
	ledger := &mockLedger{entries: []*models.LedgerEntry{availableEntry(mech, 5000)}}
	client := &mockTransferClient{}
	notifier := &mockNotifier{done: make(chan struct{}, 1)}
	svc := NewService(ledger, client, notifier, nil)

	if _, err := svc.RunBatch(context.Background()); err != nil {
		t.Fatalf("RunBatch: %v", err)
	}
	select {
	case <-notifier.done:
	case <-time.After(time.Second):
		t.Fatal("notification never sent")
	}
}
