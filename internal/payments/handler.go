package payments

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/Mrdanishjr1992/wrenchgo-sub004/internal/middleware"
	"github.com/Mrdanishjr1992/wrenchgo-sub004/internal/models"
)

// JobGetter resolves the job a payment is for.
type JobGetter interface {
	GetJob(ctx context.Context, jobID uuid.UUID) (*models.Job, error)
}

type Handler struct {
	svc  *Service
	jobs JobGetter
	log  *slog.Logger
}

func NewHandler(svc *Service, jobs JobGetter, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{svc: svc, jobs: jobs, log: log}
}

type intentRequest struct {
	JobID uuid.UUID `json:"job_id"`
}

// CreateIntent handles POST /api/v1/payments/intent.
func (h *Handler) CreateIntent(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req intentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.JobID == uuid.Nil {
		writeError(w, http.StatusBadRequest, "job_id is required")
		return
	}
	job, err := h.jobs.GetJob(r.Context(), req.JobID)
	if err != nil {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	result, err := h.svc.CreateIntent(r.Context(), user.ID, job)
	if err != nil {
		switch {
		case errors.Is(err, ErrForbidden):
			writeError(w, http.StatusForbidden, "only the job's customer can pay")
		case errors.Is(err, ErrNoLockedInvoice):
			writeError(w, http.StatusBadRequest, "job has no locked invoice")
		default:
			h.log.Error("create payment intent failed", "job_id", req.JobID, "error", err)
			writeError(w, http.StatusInternalServerError, "create payment intent failed")
		}
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// GetPayment handles GET /api/v1/payments/{id}.
func (h *Handler) GetPayment(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	paymentID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid payment id")
		return
	}
	p, err := h.svc.GetPayment(r.Context(), user.ID, paymentID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			writeError(w, http.StatusNotFound, "payment not found")
		case errors.Is(err, ErrForbidden):
			writeError(w, http.StatusForbidden, "not a party to this payment")
		default:
			h.log.Error("get payment failed", "payment_id", paymentID, "error", err)
			writeError(w, http.StatusInternalServerError, "get payment failed")
		}
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
