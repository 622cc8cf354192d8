package promos

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// Mocks
// ---------------------------------------------------------------------------

type mockCaller struct {
	validateResult map[string]any
	validateErr    error
	applyResult    map[string]any
	applyErr       error

	applyCalls    int
	lastApply     ApplyRequest
	applyByKey    map[string]map[string]any
	validateCalls int
}

func (m *mockCaller) ValidatePromo(_ context.Context, _ ValidateRequest) (map[string]any, error) {
	m.validateCalls++
	return m.validateResult, m.validateErr
}

func (m *mockCaller) ApplyPromo(_ context.Context, req ApplyRequest) (map[string]any, error) {
	m.applyCalls++
	m.lastApply = req
	if m.applyErr != nil {
		return nil, m.applyErr
	}
	if m.applyByKey != nil {
		// First application for a key wins; repeats return the same record.
		if prev, ok := m.applyByKey[req.IdempotencyKey]; ok {
			return prev, nil
		}
		result := map[string]any{"success": true, "application_id": uuid.NewString()}
		m.applyByKey[req.IdempotencyKey] = result
		return result, nil
	}
	return m.applyResult, nil
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestValidate_BusinessRejectionIsNotAnError(t *testing.T) {
	rpc := &mockCaller{validateResult: map[string]any{
		"valid":        false,
		"error_code":   "PROMO_EXPIRED",
		"user_message": "This promo code has expired",
	}}
	svc := NewService(rpc)

	result, err := svc.Validate(context.Background(), ValidateRequest{
		UserID: uuid.New(), PromoCode: "SUMMER15", QuoteAmountCents: 30000,
	})
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if result.Valid {
		t.Error("expected valid=false")
	}
	if result.UserMessage != "This promo code has expired" {
		t.Errorf("user message: got %q", result.UserMessage)
	}
}

func TestValidate_SuccessCarriesDiscount(t *testing.T) {
	rpc := &mockCaller{validateResult: map[string]any{
		"valid":           true,
		"promo_id":        uuid.NewString(),
		"discount_cents":  float64(1500),
		"fee_after_cents": float64(3000),
	}}
	svc := NewService(rpc)

	result, err := svc.Validate(context.Background(), ValidateRequest{
		UserID: uuid.New(), PromoCode: "SUMMER15", QuoteAmountCents: 30000, PlatformFeeCents: 4500,
	})
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !result.Valid || result.DiscountCents != 1500 {
		t.Errorf("got valid=%v discount=%d", result.Valid, result.DiscountCents)
	}
}

func TestValidate_MissingParams(t *testing.T) {
	svc := NewService(&mockCaller{})
	_, err := svc.Validate(context.Background(), ValidateRequest{UserID: uuid.New()})
	if !errors.Is(err, ErrMissingParams) {
		t.Errorf("got %v, want ErrMissingParams", err)
	}
}

func TestValidate_HasNoSideEffects(t *testing.T) {
	rpc := &mockCaller{validateResult: map[string]any{"valid": true}}
	svc := NewService(rpc)
	req := ValidateRequest{UserID: uuid.New(), PromoCode: "X", QuoteAmountCents: 100}

	for i := 0; i < 3; i++ {
		if _, err := svc.Validate(context.Background(), req); err != nil {
			t.Fatalf("Validate #%d: %v", i, err)
		}
	}
	if rpc.applyCalls != 0 {
		t.Error("validate must never call apply")
	}
}

func TestApply_ExplicitKeyPassedThrough(t *testing.T) {
	rpc := &mockCaller{applyByKey: map[string]map[string]any{}}
	svc := NewService(rpc)
	discount := int64(1500)
	req := ApplyRequest{
		UserID: uuid.New(), PromoID: uuid.New(), PaymentID: uuid.New(),
		DiscountCents: &discount, IdempotencyKey: "client-req-42",
	}

	first, err := svc.Apply(context.Background(), req)
	if err != nil {
		t.Fatalf("first Apply: %v", err)
	}
	second, err := svc.Apply(context.Background(), req)
	if err != nil {
		t.Fatalf("second Apply: %v", err)
	}
	if first.ApplicationID != second.ApplicationID {
		t.Error("repeated explicit key produced a different application record")
	}
	if rpc.lastApply.IdempotencyKey != "client-req-42" {
		t.Errorf("key: got %q", rpc.lastApply.IdempotencyKey)
	}
}

func TestApply_FallbackKeyDerivedFromIdentifiersAndTime(t *testing.T) {
	rpc := &mockCaller{applyResult: map[string]any{"success": true}}
	svc := NewService(rpc)
	at := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return at }

	userID, promoID, paymentID := uuid.New(), uuid.New(), uuid.New()
	discount := int64(500)
	_, err := svc.Apply(context.Background(), ApplyRequest{
		UserID: userID, PromoID: promoID, PaymentID: paymentID, DiscountCents: &discount,
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	want := fmt.Sprintf("%s-%s-%s-%d", userID, promoID, paymentID, at.UnixMilli())
	if rpc.lastApply.IdempotencyKey != want {
		t.Errorf("fallback key: got %q, want %q", rpc.lastApply.IdempotencyKey, want)
	}
	if !strings.HasSuffix(want, fmt.Sprintf("%d", at.UnixMilli())) {
		t.Fatal("sanity: key must end with unix millis")
	}
}

func TestApply_MissingParams(t *testing.T) {
	svc := NewService(&mockCaller{})
	discount := int64(100)

	cases := []ApplyRequest{
		{PromoID: uuid.New(), PaymentID: uuid.New(), DiscountCents: &discount},                        // no user
		{UserID: uuid.New(), PaymentID: uuid.New(), DiscountCents: &discount},                         // no promo
		{UserID: uuid.New(), PromoID: uuid.New(), DiscountCents: &discount},                           // no payment
		{UserID: uuid.New(), PromoID: uuid.New(), PaymentID: uuid.New()},                              // no discount
	}
	for i, req := range cases {
		if _, err := svc.Apply(context.Background(), req); !errors.Is(err, ErrMissingParams) {
			t.Errorf("case %d: got %v, want ErrMissingParams", i, err)
		}
	}
}

func TestApply_BusinessFailureSurfacesResult(t *testing.T) {
	rpc := &mockCaller{applyResult: map[string]any{
		"success":    false,
		"error_code": "PROMO_ALREADY_USED",
	}}
	svc := NewService(rpc)
	discount := int64(100)

	result, err := svc.Apply(context.Background(), ApplyRequest{
		UserID: uuid.New(), PromoID: uuid.New(), PaymentID: uuid.New(), DiscountCents: &discount,
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if result.Success {
		t.Error("expected success=false")
	}
	if result.ErrorCode != "PROMO_ALREADY_USED" {
		t.Errorf("error code: got %q", result.ErrorCode)
	}
}

func TestApply_UpstreamFailureIsAnError(t *testing.T) {
	rpc := &mockCaller{applyErr: errors.New("function apply_promo_atomic does not exist")}
	svc := NewService(rpc)
	discount := int64(100)

	_, err := svc.Apply(context.Background(), ApplyRequest{
		UserID: uuid.New(), PromoID: uuid.New(), PaymentID: uuid.New(), DiscountCents: &discount,
	})
	if err == nil {
		t.Fatal("expected error from upstream failure")
	}
}
