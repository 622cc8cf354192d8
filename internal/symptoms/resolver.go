// Package symptoms maps a customer's symptom selection plus their follow-up
// answers to a service category, risk level, and quote strategy. A base
// mapping per symptom is refined by ordered override rules.
package symptoms

import (
	"fmt"
	"sort"
	"strings"
)

// Risk levels.
const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

// Rule match types. Anything else fails closed (no match).
const (
	MatchEquals   = "equals"
	MatchIn       = "in"
	MatchContains = "contains"
	MatchAny      = "any"
)

const defaultRulePriority = 100

// Mapping is a resolved symptom classification.
type Mapping struct {
	SymptomKey    string `json:"symptom_key"`
	Category      string `json:"category"`
	RiskLevel     string `json:"risk_level"`
	QuoteStrategy string `json:"quote_strategy"`
}

// Rule is a conditional override keyed to one question. MatchValue is
// decoded jsonb and may be a scalar, a list, or a {"contains": ...} object.
// Only the override fields a rule sets are applied when it matches.
type Rule struct {
	SymptomKey            string  `json:"symptom_key"`
	QuestionKey           string  `json:"question_key"`
	MatchType             string  `json:"match_type"`
	MatchValue            any     `json:"match_value"`
	OverrideCategory      *string `json:"override_category,omitempty"`
	OverrideRiskLevel     *string `json:"override_risk_level,omitempty"`
	OverrideQuoteStrategy *string `json:"override_quote_strategy,omitempty"`
	Priority              *int    `json:"priority,omitempty"`
	IsActive              *bool   `json:"is_active,omitempty"`
}

func (r Rule) priority() int {
	if r.Priority == nil {
		return defaultRulePriority
	}
	return *r.Priority
}

func (r Rule) active() bool {
	return r.IsActive == nil || *r.IsActive
}

// Resolve applies active rules in ascending priority order to the base
// mapping. Every matching rule applies; later matches override earlier ones
// field by field. The base is never mutated and its category is whitespace-
// normalized even when no rule fires. Resolve never fails: malformed rules
// or answers simply do not match.
func Resolve(base Mapping, rules []Rule, answers map[string]any) Mapping {
	ordered := make([]Rule, 0, len(rules))
	for _, r := range rules {
		if r.active() {
			ordered = append(ordered, r)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].priority() < ordered[j].priority()
	})

	resolved := base
	resolved.Category = normalizeString(base.Category)

	for _, rule := range ordered {
		answer, ok := answers[rule.QuestionKey]
		if !ok || !matches(rule, answer) {
			continue
		}
		if rule.OverrideCategory != nil && *rule.OverrideCategory != "" {
			resolved.Category = normalizeString(*rule.OverrideCategory)
		}
		if rule.OverrideRiskLevel != nil && *rule.OverrideRiskLevel != "" {
			resolved.RiskLevel = *rule.OverrideRiskLevel
		}
		if rule.OverrideQuoteStrategy != nil && *rule.OverrideQuoteStrategy != "" {
			resolved.QuoteStrategy = *rule.OverrideQuoteStrategy
		}
	}
	return resolved
}

func matches(rule Rule, answerRaw any) bool {
	if rule.MatchType == MatchAny {
		return len(normalizeToScalarList(answerRaw)) > 0
	}

	answerList := normalizeToScalarList(answerRaw)
	if len(answerList) == 0 {
		return false
	}

	switch rule.MatchType {
	case MatchEquals:
		target := normalizeScalar(rule.MatchValue)
		if target == nil {
			return false
		}
		for _, a := range answerList {
			if a == target {
				return true
			}
		}
		return false
	case MatchIn:
		targets := normalizeToScalarList(rule.MatchValue)
		if len(targets) == 0 {
			return false
		}
		for _, a := range answerList {
			for _, tgt := range targets {
				if a == tgt {
					return true
				}
			}
		}
		return false
	case MatchContains:
		needle := containsNeedle(rule.MatchValue)
		if needle == "" {
			return false
		}
		needle = strings.ToLower(needle)
		for _, a := range answerList {
			if strings.Contains(strings.ToLower(scalarString(a)), needle) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// normalizeString collapses runs of whitespace to single spaces and trims.
func normalizeString(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// unwrap peels a rich answer shape: an object carrying a "value" field
// stands for that value.
func unwrap(v any) any {
	if m, ok := v.(map[string]any); ok {
		if inner, ok := m["value"]; ok {
			return inner
		}
	}
	return v
}

// normalizeScalar returns a comparable scalar: normalized strings, numbers,
// and bools pass through; nil stays nil; anything else is stringified then
// normalized.
func normalizeScalar(v any) any {
	u := unwrap(v)
	switch x := u.(type) {
	case nil:
		return nil
	case string:
		return normalizeString(x)
	case float64, int, int64, bool:
		return x
	default:
		return normalizeString(fmt.Sprint(x))
	}
}

// normalizeToScalarList coerces an answer to a list of normalized scalars.
// Scalars become single-element lists; nils are dropped.
func normalizeToScalarList(v any) []any {
	u := unwrap(v)
	if u == nil {
		return nil
	}
	if list, ok := u.([]any); ok {
		out := make([]any, 0, len(list))
		for _, el := range list {
			if s := normalizeScalar(el); s != nil {
				out = append(out, s)
			}
		}
		return out
	}
	s := normalizeScalar(u)
	if s == nil {
		return nil
	}
	return []any{s}
}

// containsNeedle extracts the literal needle for a contains rule: the match
// value itself when it is a string, or its "contains" field when an object.
func containsNeedle(matchValue any) string {
	switch x := matchValue.(type) {
	case string:
		return normalizeString(x)
	case map[string]any:
		if c, ok := x["contains"]; ok {
			return normalizeString(fmt.Sprint(c))
		}
	}
	return ""
}

func scalarString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
