package payouts

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Handler exposes the batch to the trusted scheduler. The route is guarded
// by middleware.SharedSecretAuth, not user auth.
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

// Run handles POST /api/v1/payouts/run.
func (h *Handler) Run(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.RunBatch(r.Context())
	if err != nil {
		h.log.Error("payout batch failed", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "error": "payout batch failed"})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(result)
}
