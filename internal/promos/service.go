package promos

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Mrdanishjr1992/wrenchgo-sub004/internal/models"
)

// ErrMissingParams is returned before any remote call when required
// identifiers are absent; maps to 400 at the boundary.
var ErrMissingParams = errors.New("missing required parameters")

// ValidateRequest is the tagged request for validate_promo_eligibility.
type ValidateRequest struct {
	UserID           uuid.UUID
	PromoCode        string
	QuoteAmountCents int64
	PlatformFeeCents int64
}

// ApplyRequest is the tagged request for apply_promo_atomic.
type ApplyRequest struct {
	UserID           uuid.UUID
	PromoID          uuid.UUID
	PaymentID        uuid.UUID
	DiscountCents    *int64
	QuoteAmountCents int64
	PlatformFeeCents int64
	IdempotencyKey   string
}

// Caller invokes the promo remote procedures and returns their raw,
// shape-checked jsonb results.
type Caller interface {
	ValidatePromo(ctx context.Context, req ValidateRequest) (map[string]any, error)
	ApplyPromo(ctx context.Context, req ApplyRequest) (map[string]any, error)
}

// Service orchestrates the two-phase promo protocol. The business rules
// themselves live in the database functions; this layer only checks inputs,
// fills in the idempotency key, and types the results.
type Service struct {
	rpc Caller
	now func() time.Time
}

func NewService(rpc Caller) *Service {
	return &Service{rpc: rpc, now: time.Now}
}

// Validate is read-only and callable repeatedly. Business rejections come
// back as Valid=false, not as errors.
func (s *Service) Validate(ctx context.Context, req ValidateRequest) (*models.PromoValidationResult, error) {
	if req.UserID == uuid.Nil || req.PromoCode == "" {
		return nil, ErrMissingParams
	}
	raw, err := s.rpc.ValidatePromo(ctx, req)
	if err != nil {
		return nil, err
	}
	var result models.PromoValidationResult
	if err := decodeResult(raw, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Apply performs the atomic application. Validation is not re-checked here;
// a prior successful Validate is the caller's responsibility. When no
// idempotency key is supplied one is derived from the identifiers plus the
// current time — which means an omitted key does NOT survive retries;
// callers needing exactly-once semantics across retries must pass their own
// stable key.
func (s *Service) Apply(ctx context.Context, req ApplyRequest) (*models.PromoApplicationResult, error) {
	if req.UserID == uuid.Nil || req.PromoID == uuid.Nil || req.PaymentID == uuid.Nil || req.DiscountCents == nil {
		return nil, ErrMissingParams
	}
	if req.IdempotencyKey == "" {
		req.IdempotencyKey = fallbackKey(req.UserID, req.PromoID, req.PaymentID, s.now())
	}
	raw, err := s.rpc.ApplyPromo(ctx, req)
	if err != nil {
		return nil, err
	}
	var result models.PromoApplicationResult
	if err := decodeResult(raw, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// fallbackKey derives a key from the identifiers and the current time.
func fallbackKey(userID, promoID, paymentID uuid.UUID, now time.Time) string {
	return fmt.Sprintf("%s-%s-%s-%d", userID, promoID, paymentID, now.UnixMilli())
}

func decodeResult(raw map[string]any, out any) error {
	b, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("re-encode rpc result: %w", err)
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("decode rpc result: %w", err)
	}
	return nil
}
