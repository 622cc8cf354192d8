package promos

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/Mrdanishjr1992/wrenchgo-sub004/internal/middleware"
	"github.com/Mrdanishjr1992/wrenchgo-sub004/internal/models"
)

type Handler struct {
	svc *Service
	log *slog.Logger
}

func NewHandler(svc *Service, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{svc: svc, log: log}
}

type validateRequest struct {
	PromoCode        string `json:"promo_code"`
	QuoteAmountCents int64  `json:"quote_amount_cents"`
	PlatformFeeCents int64  `json:"platform_fee_cents"`
}

type applyRequest struct {
	PromoID          uuid.UUID `json:"promo_id"`
	PaymentID        uuid.UUID `json:"payment_id"`
	DiscountCents    *int64    `json:"discount_cents"`
	QuoteAmountCents int64     `json:"quote_amount_cents"`
	PlatformFeeCents int64     `json:"platform_fee_cents"`
	IdempotencyKey   string    `json:"idempotency_key"`
}

// Validate handles POST /api/v1/promos/validate. Business rejections are
// 200 with valid:false; error statuses are reserved for structural, auth,
// and server failures.
func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())
	if user == nil {
		writeCode(w, http.StatusUnauthorized, models.PromoErrUnauthorized, "unauthorized")
		return
	}
	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeCode(w, http.StatusBadRequest, models.PromoErrMissingParams, "invalid request body")
		return
	}
	result, err := h.svc.Validate(r.Context(), ValidateRequest{
		UserID:           user.ID,
		PromoCode:        req.PromoCode,
		QuoteAmountCents: req.QuoteAmountCents,
		PlatformFeeCents: req.PlatformFeeCents,
	})
	if err != nil {
		if errors.Is(err, ErrMissingParams) {
			writeCode(w, http.StatusBadRequest, models.PromoErrMissingParams, "promo_code is required")
			return
		}
		h.log.Error("promo validation failed", "error", err)
		writeCode(w, http.StatusInternalServerError, models.PromoErrValidationError, "promo validation failed")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Apply handles POST /api/v1/promos/apply. The HTTP status mirrors the
// application result's own success flag.
func (h *Handler) Apply(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())
	if user == nil {
		writeCode(w, http.StatusUnauthorized, models.PromoErrUnauthorized, "unauthorized")
		return
	}
	var req applyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeCode(w, http.StatusBadRequest, models.PromoErrMissingParams, "invalid request body")
		return
	}
	result, err := h.svc.Apply(r.Context(), ApplyRequest{
		UserID:           user.ID,
		PromoID:          req.PromoID,
		PaymentID:        req.PaymentID,
		DiscountCents:    req.DiscountCents,
		QuoteAmountCents: req.QuoteAmountCents,
		PlatformFeeCents: req.PlatformFeeCents,
		IdempotencyKey:   req.IdempotencyKey,
	})
	if err != nil {
		if errors.Is(err, ErrMissingParams) {
			writeCode(w, http.StatusBadRequest, models.PromoErrMissingParams, "promo_id, payment_id, and discount_cents are required")
			return
		}
		h.log.Error("promo application failed", "error", err)
		writeCode(w, http.StatusInternalServerError, models.PromoErrApplicationError, "promo application failed")
		return
	}
	status := http.StatusOK
	if !result.Success {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, result)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeCode(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, map[string]string{"error_code": code, "error": msg})
}
