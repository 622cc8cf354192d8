package invoices

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

type lockRequest struct {
	JobID uuid.UUID `json:"job_id"`
}

type lockResponse struct {
	Success       bool              `json:"success"`
	AlreadyLocked bool              `json:"already_locked,omitempty"`
	InvoiceID     uuid.UUID         `json:"invoice_id"`
	TotalCents    int64             `json:"total_cents,omitempty"`
	LineItems     []models.LineItem `json:"line_items,omitempty"`
}

// Lock handles POST /api/v1/invoices/lock.
func (h *Handler) Lock(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req lockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.JobID == uuid.Nil {
		writeError(w, http.StatusBadRequest, "job_id is required")
		return
	}

	res, err := h.svc.Lock(r.Context(), user.ID, req.JobID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			writeError(w, http.StatusNotFound, "job not found")
		case errors.Is(err, ErrForbidden):
			writeError(w, http.StatusForbidden, "not a party to this job")
		case errors.Is(err, ErrNotReady):
			writeError(w, http.StatusBadRequest, "Job not ready for invoice")
		case errors.Is(err, ErrNoAcceptedQuote):
			writeError(w, http.StatusBadRequest, "no accepted quote for job")
		default:
			h.log.Error("invoice lock failed", "job_id", req.JobID, "error", err)
			writeError(w, http.StatusInternalServerError, "invoice lock failed")
		}
		return
	}

	resp := lockResponse{Success: true, InvoiceID: res.Invoice.ID}
	if res.AlreadyLocked {
		resp.AlreadyLocked = true
	} else {
		resp.TotalCents = res.Invoice.TotalCents
		resp.LineItems = res.Invoice.LineItems
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetByJob handles GET /api/v1/jobs/{id}/invoice.
func (h *Handler) GetByJob(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	jobID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid job id")
		return
	}
	inv, err := h.svc.GetByJob(r.Context(), user.ID, jobID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			writeError(w, http.StatusNotFound, "invoice not found")
		case errors.Is(err, ErrForbidden):
			writeError(w, http.StatusForbidden, "not a party to this job")
		default:
			h.log.Error("get invoice failed", "job_id", jobID, "error", err)
			writeError(w, http.StatusInternalServerError, "get invoice failed")
		}
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
