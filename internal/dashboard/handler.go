package dashboard

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/Mrdanishjr1992/wrenchgo-sub004/internal/errormsg"
	"github.com/Mrdanishjr1992/wrenchgo-sub004/internal/middleware"
	"github.com/Mrdanishjr1992/wrenchgo-sub004/internal/models"
	"github.com/Mrdanishjr1992/wrenchgo-sub004/internal/money"
)

// Store is the read model behind the mechanic earnings views.
type Store interface {
	ListLedger(ctx context.Context, mechanicID uuid.UUID) ([]*models.LedgerEntry, error)
	ListTransfers(ctx context.Context, mechanicID uuid.UUID) ([]*models.Transfer, error)
	EarningsSummary(ctx context.Context, mechanicID uuid.UUID) (*EarningsSummary, error)
}

type Handler struct {
	store Store
	log   *slog.Logger
}

func NewHandler(store Store, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{store: store, log: log}
}

// Ledger handles GET /api/v1/mechanic/ledger.
func (h *Handler) Ledger(w http.ResponseWriter, r *http.Request) {
	mechanic := h.requireMechanic(w, r)
	if mechanic == nil {
		return
	}
	entries, err := h.store.ListLedger(r.Context(), mechanic.ID)
	if err != nil {
		h.fail(w, "list ledger", err)
		return
	}
	if entries == nil {
		entries = []*models.LedgerEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// Transfers handles GET /api/v1/mechanic/transfers.
func (h *Handler) Transfers(w http.ResponseWriter, r *http.Request) {
	mechanic := h.requireMechanic(w, r)
	if mechanic == nil {
		return
	}
	transfers, err := h.store.ListTransfers(r.Context(), mechanic.ID)
	if err != nil {
		h.fail(w, "list transfers", err)
		return
	}
	if transfers == nil {
		transfers = []*models.Transfer{}
	}
	writeJSON(w, http.StatusOK, transfers)
}

type earningsResponse struct {
	*EarningsSummary
	AvailableDisplay string `json:"available_display"`
	LifetimeDisplay  string `json:"lifetime_display"`
}

// Earnings handles GET /api/v1/mechanic/earnings.
func (h *Handler) Earnings(w http.ResponseWriter, r *http.Request) {
	mechanic := h.requireMechanic(w, r)
	if mechanic == nil {
		return
	}
	summary, err := h.store.EarningsSummary(r.Context(), mechanic.ID)
	if err != nil {
		h.fail(w, "earnings summary", err)
		return
	}
	writeJSON(w, http.StatusOK, earningsResponse{
		EarningsSummary:  summary,
		AvailableDisplay: money.FormatMoney(summary.AvailableCents, money.FormatOptions{}),
		LifetimeDisplay:  money.FormatMoney(summary.LifetimeCents, money.FormatOptions{Compact: true}),
	})
}

func (h *Handler) requireMechanic(w http.ResponseWriter, r *http.Request) *middleware.AuthedUser {
	user := middleware.UserFromCtx(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return nil
	}
	if user.Role != models.RoleMechanic {
		writeError(w, http.StatusForbidden, "mechanic account required")
		return nil
	}
	return user
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	h.log.Error(op+" failed", "error", err)
	writeError(w, http.StatusInternalServerError, errormsg.Friendly(err, ""))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
