package jobs

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

// Request/response structs use snake_case JSON.

type CreateJobRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type SubmitQuoteRequest struct {
	LaborCostCents int64 `json:"labor_cost_cents"`
	PartsCostCents int64 `json:"parts_cost_cents"`
}

type AddAdjustmentRequest struct {
	AdjustmentType string `json:"adjustment_type"`
	AmountCents    int64  `json:"amount_cents"`
	Description    string `json:"description"`
}

type VerifyRequest struct {
	// Party is "mechanic" or "customer"; which verification edge to take.
	Party string `json:"party"`
}

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

// CreateJob handles POST /api/v1/jobs.
func (h *Handler) CreateJob(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req CreateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	job, err := h.svc.CreateJob(r.Context(), user.ID, req.Title, req.Description)
	if err != nil {
		h.log.Error("create job failed", "error", err)
		writeError(w, http.StatusInternalServerError, "create job failed")
		return
	}
	writeJSON(w, http.StatusCreated, job)
}

// ListJobs handles GET /api/v1/jobs.
func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	list, err := h.svc.ListByUser(r.Context(), user.ID)
	if err != nil {
		h.log.Error("list jobs failed", "error", err)
		writeError(w, http.StatusInternalServerError, "list jobs failed")
		return
	}
	if list == nil {
		list = []*models.Job{}
	}
	writeJSON(w, http.StatusOK, list)
}

// GetJob handles GET /api/v1/jobs/{id}.
func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
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
	job, err := h.svc.GetJob(r.Context(), jobID)
	if err != nil {
		h.writeServiceError(w, err, "get job")
		return
	}
	if job.CustomerID != user.ID && (job.MechanicID == nil || *job.MechanicID != user.ID) {
		writeError(w, http.StatusForbidden, "not a party to this job")
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// SubmitQuote handles POST /api/v1/jobs/{id}/quotes.
func (h *Handler) SubmitQuote(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if user.Role != models.RoleMechanic {
		writeError(w, http.StatusForbidden, "only mechanics can quote")
		return
	}
	jobID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid job id")
		return
	}
	var req SubmitQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.LaborCostCents < 0 || req.PartsCostCents < 0 || req.LaborCostCents+req.PartsCostCents <= 0 {
		writeError(w, http.StatusBadRequest, "quote amounts must be positive")
		return
	}
	quote, err := h.svc.SubmitQuote(r.Context(), user.ID, jobID, req.LaborCostCents, req.PartsCostCents)
	if err != nil {
		h.writeServiceError(w, err, "submit quote")
		return
	}
	writeJSON(w, http.StatusCreated, quote)
}

// AcceptQuote handles POST /api/v1/quotes/{id}/accept.
func (h *Handler) AcceptQuote(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	quoteID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid quote id")
		return
	}
	if err := h.svc.AcceptQuote(r.Context(), user.ID, quoteID); err != nil {
		h.writeServiceError(w, err, "accept quote")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// AddAdjustment handles POST /api/v1/jobs/{id}/adjustments.
func (h *Handler) AddAdjustment(w http.ResponseWriter, r *http.Request) {
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
	var req AddAdjustmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.AdjustmentType == "" || req.AmountCents == 0 {
		writeError(w, http.StatusBadRequest, "adjustment_type and a non-zero amount_cents are required")
		return
	}
	adj, err := h.svc.AddAdjustment(r.Context(), user.ID, jobID, req.AdjustmentType, req.AmountCents, req.Description)
	if err != nil {
		h.writeServiceError(w, err, "add adjustment")
		return
	}
	writeJSON(w, http.StatusCreated, adj)
}

// Verify handles POST /api/v1/jobs/{id}/verify.
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
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
	var req VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	switch req.Party {
	case models.RoleMechanic:
		err = h.svc.MechanicVerify(r.Context(), user.ID, jobID)
	case models.RoleCustomer:
		err = h.svc.CustomerVerify(r.Context(), user.ID, jobID)
	default:
		writeError(w, http.StatusBadRequest, "party must be customer or mechanic")
		return
	}
	if err != nil {
		h.writeServiceError(w, err, "verify job")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Cancel handles POST /api/v1/jobs/{id}/cancel.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.sideBranch(w, r, h.svc.Cancel)
}

// Dispute handles POST /api/v1/jobs/{id}/dispute.
func (h *Handler) Dispute(w http.ResponseWriter, r *http.Request) {
	h.sideBranch(w, r, h.svc.Dispute)
}

// Start handles POST /api/v1/jobs/{id}/start.
func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	h.sideBranch(w, r, h.svc.StartWork)
}

// ApproveAdjustment handles POST /api/v1/adjustments/{id}/approve.
func (h *Handler) ApproveAdjustment(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	adjID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid adjustment id")
		return
	}
	if err := h.svc.ApproveAdjustment(r.Context(), user.ID, adjID); err != nil {
		h.writeServiceError(w, err, "approve adjustment")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) sideBranch(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, userID, jobID uuid.UUID) error) {
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
	if err := fn(r.Context(), user.ID, jobID); err != nil {
		h.writeServiceError(w, err, "transition job")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// writeServiceError maps service sentinels onto HTTP statuses.
func (h *Handler) writeServiceError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, ErrQuoteAlreadyAccepted):
		writeError(w, http.StatusConflict, "job already has an accepted quote")
	case errors.Is(err, ErrInvalidState):
		writeError(w, http.StatusConflict, "job is not in a valid state for this action")
	default:
		h.log.Error(op+" failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
