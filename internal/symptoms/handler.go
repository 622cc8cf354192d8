package symptoms

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
)

// RuleSource provides the persisted mapping and rules for a symptom.
type RuleSource interface {
	GetMapping(ctx context.Context, symptomKey string) (*Mapping, error)
	ListRules(ctx context.Context, symptomKey string) ([]Rule, error)
}

type Handler struct {
	source RuleSource
	log    *slog.Logger
}

func NewHandler(source RuleSource, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{source: source, log: log}
}

type resolveRequest struct {
	SymptomKey string         `json:"symptom_key"`
	Answers    map[string]any `json:"answers"`
}

// Resolve handles POST /api/v1/symptoms/resolve.
func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SymptomKey == "" {
		writeError(w, http.StatusBadRequest, "symptom_key is required")
		return
	}
	base, err := h.source.GetMapping(r.Context(), req.SymptomKey)
	if err != nil {
		if errors.Is(err, ErrUnknownSymptom) {
			writeError(w, http.StatusNotFound, "unknown symptom")
			return
		}
		h.log.Error("load symptom mapping failed", "symptom_key", req.SymptomKey, "error", err)
		writeError(w, http.StatusInternalServerError, "resolve failed")
		return
	}
	rules, err := h.source.ListRules(r.Context(), req.SymptomKey)
	if err != nil {
		h.log.Error("load symptom rules failed", "symptom_key", req.SymptomKey, "error", err)
		writeError(w, http.StatusInternalServerError, "resolve failed")
		return
	}
	resolved := Resolve(*base, rules, req.Answers)
	writeJSON(w, http.StatusOK, resolved)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
