package promos

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// The promo rules live in database functions so validation and application
// stay atomic at the store. The Go side treats each function as a typed
// remote procedure: a tagged request in, a jsonb document out, with the
// document's shape checked before it is trusted.

const validateResultSchema = `{
	"type": "object",
	"required": ["valid"],
	"properties": {
		"valid": {"type": "boolean"},
		"promo_id": {"type": "string"},
		"credit_type": {"type": "string"},
		"discount_cents": {"type": "integer"},
		"fee_after_cents": {"type": "integer"},
		"error_code": {"type": "string"},
		"user_message": {"type": "string"}
	}
}`

const applyResultSchema = `{
	"type": "object",
	"required": ["success"],
	"properties": {
		"success": {"type": "boolean"},
		"application_id": {"type": "string"},
		"credit_type": {"type": "string"},
		"fee_before_cents": {"type": "integer"},
		"discount_cents": {"type": "integer"},
		"fee_after_cents": {"type": "integer"},
		"error_code": {"type": "string"},
		"user_message": {"type": "string"}
	}
}`

// RPC invokes the promo database functions.
type RPC struct {
	pool           *pgxpool.Pool
	validateSchema *jsonschema.Schema
	applySchema    *jsonschema.Schema
}

func NewRPC(pool *pgxpool.Pool) (*RPC, error) {
	vs, err := jsonschema.CompileString("validate_promo_eligibility.json", validateResultSchema)
	if err != nil {
		return nil, fmt.Errorf("compile validate schema: %w", err)
	}
	as, err := jsonschema.CompileString("apply_promo_atomic.json", applyResultSchema)
	if err != nil {
		return nil, fmt.Errorf("compile apply schema: %w", err)
	}
	return &RPC{pool: pool, validateSchema: vs, applySchema: as}, nil
}

var _ Caller = (*RPC)(nil)

// ValidatePromo calls validate_promo_eligibility. Read-only: the function
// must not mutate state, so repeated calls are safe.
func (r *RPC) ValidatePromo(ctx context.Context, req ValidateRequest) (map[string]any, error) {
	var result map[string]any
	err := r.pool.QueryRow(ctx, `
		SELECT validate_promo_eligibility($1, $2, $3, $4)
	`, req.UserID, req.PromoCode, req.QuoteAmountCents, req.PlatformFeeCents).Scan(&result)
	if err != nil {
		return nil, fmt.Errorf("validate_promo_eligibility: %w", err)
	}
	if err := r.validateSchema.Validate(anyMap(result)); err != nil {
		return nil, fmt.Errorf("validate_promo_eligibility returned unexpected shape: %w", err)
	}
	return result, nil
}

// ApplyPromo calls apply_promo_atomic. The function owns the idempotency
// guarantee: a repeated key returns the original application record.
func (r *RPC) ApplyPromo(ctx context.Context, req ApplyRequest) (map[string]any, error) {
	var result map[string]any
	err := r.pool.QueryRow(ctx, `
		SELECT apply_promo_atomic($1, $2, $3, $4, $5, $6, $7)
	`, req.UserID, req.PromoID, req.PaymentID, req.DiscountCents,
		req.QuoteAmountCents, req.PlatformFeeCents, req.IdempotencyKey).Scan(&result)
	if err != nil {
		return nil, fmt.Errorf("apply_promo_atomic: %w", err)
	}
	if err := r.applySchema.Validate(anyMap(result)); err != nil {
		return nil, fmt.Errorf("apply_promo_atomic returned unexpected shape: %w", err)
	}
	return result, nil
}

// anyMap re-types for the schema validator, which wants plain interface values.
func anyMap(m map[string]any) any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
