package symptoms

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Mrdanishjr1992/wrenchgo-sub004/internal/diagnostics"
)

// ErrUnknownSymptom is returned when no base mapping exists for a key.
var ErrUnknownSymptom = errors.New("unknown symptom")

// Repository loads base mappings and refinement rules. Failed queries land
// in the diagnostics log when one is attached.
type Repository struct {
	pool *pgxpool.Pool
	diag *diagnostics.ErrorLog
}

func NewRepository(pool *pgxpool.Pool, diag *diagnostics.ErrorLog) *Repository {
	return &Repository{pool: pool, diag: diag}
}

func (r *Repository) GetMapping(ctx context.Context, symptomKey string) (*Mapping, error) {
	var m Mapping
	err := r.pool.QueryRow(ctx, `
		SELECT symptom_key, category, risk_level, quote_strategy
		FROM symptom_mappings WHERE symptom_key = $1
	`, symptomKey).Scan(&m.SymptomKey, &m.Category, &m.RiskLevel, &m.QuoteStrategy)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUnknownSymptom
		}
		r.record("select", "symptom_mappings", map[string]any{"symptom_key": symptomKey}, err)
		return nil, err
	}
	return &m, nil
}

func (r *Repository) ListRules(ctx context.Context, symptomKey string) ([]Rule, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT symptom_key, question_key, match_type, match_value,
			override_category, override_risk_level, override_quote_strategy,
			priority, is_active
		FROM symptom_refinement_rules WHERE symptom_key = $1
	`, symptomKey)
	if err != nil {
		r.record("select", "symptom_refinement_rules", map[string]any{"symptom_key": symptomKey}, err)
		return nil, err
	}
	defer rows.Close()
	var rules []Rule
	for rows.Next() {
		var rule Rule
		err := rows.Scan(&rule.SymptomKey, &rule.QuestionKey, &rule.MatchType, &rule.MatchValue,
			&rule.OverrideCategory, &rule.OverrideRiskLevel, &rule.OverrideQuoteStrategy,
			&rule.Priority, &rule.IsActive)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

func (r *Repository) record(op, table string, filters map[string]any, err error) {
	if r.diag != nil {
		r.diag.Record(diagnostics.QueryContext{Operation: op, Table: table, Filters: filters}, err)
	}
}
