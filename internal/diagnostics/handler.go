package diagnostics

import (
	"encoding/json"
	"net/http"
)

// Handler exposes the ring buffer for support. Route it behind admin or
// shared-secret auth; the entries contain raw error text.
type Handler struct {
	log *ErrorLog
}

func NewHandler(log *ErrorLog) *Handler {
	return &Handler{log: log}
}

// Recent handles GET /api/v1/admin/query-errors.
func (h *Handler) Recent(w http.ResponseWriter, _ *http.Request) {
	entries := h.log.Recent()
	if entries == nil {
		entries = []Entry{}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"count":   len(entries),
		"entries": entries,
	})
}

// Clear handles DELETE /api/v1/admin/query-errors.
func (h *Handler) Clear(w http.ResponseWriter, _ *http.Request) {
	h.log.Clear()
	w.WriteHeader(http.StatusNoContent)
}
