package symptoms

import "testing"

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }
func boolPtr(b bool) *bool    { return &b }

func baseEngine() Mapping {
	return Mapping{
		SymptomKey:    "strange_noise",
		Category:      "engine",
		RiskLevel:     RiskLow,
		QuoteStrategy: "flat",
	}
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestResolve_ContainsMatchOverridesRisk(t *testing.T) {
	rules := []Rule{{
		SymptomKey:        "strange_noise",
		QuestionKey:       "noise",
		MatchType:         MatchContains,
		MatchValue:        "grinding",
		OverrideRiskLevel: strPtr(RiskHigh),
		Priority:          intPtr(10),
	}}
	answers := map[string]any{"noise": "I hear grinding sounds"}

	got := Resolve(baseEngine(), rules, answers)
	if got.RiskLevel != RiskHigh {
		t.Errorf("risk_level: got %q, want %q", got.RiskLevel, RiskHigh)
	}
	if got.Category != "engine" || got.QuoteStrategy != "flat" {
		t.Errorf("unrelated fields changed: %+v", got)
	}
}

func TestResolve_NoMatchingAnswerReturnsNormalizedBase(t *testing.T) {
	base := baseEngine()
	base.Category = "  engine   and \t transmission "
	rules := []Rule{{
		QuestionKey:       "noise",
		MatchType:         MatchContains,
		MatchValue:        "grinding",
		OverrideRiskLevel: strPtr(RiskHigh),
	}}

	got := Resolve(base, rules, map[string]any{"smell": "burning"})
	if got.Category != "engine and transmission" {
		t.Errorf("category not whitespace-normalized: %q", got.Category)
	}
	if got.RiskLevel != RiskLow {
		t.Errorf("risk_level changed without a matching answer: %q", got.RiskLevel)
	}
}

func TestResolve_LastWriteWinsAcrossPriorities(t *testing.T) {
	rules := []Rule{
		{
			QuestionKey:       "noise",
			MatchType:         MatchAny,
			OverrideRiskLevel: strPtr(RiskHigh),
			Priority:          intPtr(50),
		},
		{
			QuestionKey:       "noise",
			MatchType:         MatchAny,
			OverrideRiskLevel: strPtr(RiskMedium),
			Priority:          intPtr(10),
		},
	}
	got := Resolve(baseEngine(), rules, map[string]any{"noise": "clunk"})

	// Priority 10 evaluates first, priority 50 applies last and wins.
	if got.RiskLevel != RiskHigh {
		t.Errorf("risk_level: got %q, want %q (later match should win)", got.RiskLevel, RiskHigh)
	}
}

func TestResolve_InactiveRulesSkipped(t *testing.T) {
	rules := []Rule{{
		QuestionKey:       "noise",
		MatchType:         MatchAny,
		OverrideRiskLevel: strPtr(RiskHigh),
		IsActive:          boolPtr(false),
	}}
	got := Resolve(baseEngine(), rules, map[string]any{"noise": "clunk"})
	if got.RiskLevel != RiskLow {
		t.Errorf("inactive rule applied: %+v", got)
	}
}

func TestResolve_EqualsAgainstListAnswer(t *testing.T) {
	rules := []Rule{{
		QuestionKey:      "when",
		MatchType:        MatchEquals,
		MatchValue:       "braking",
		OverrideCategory: strPtr("brakes"),
	}}
	answers := map[string]any{"when": []any{"accelerating", " braking "}}

	got := Resolve(baseEngine(), rules, answers)
	if got.Category != "brakes" {
		t.Errorf("category: got %q, want brakes", got.Category)
	}
}

func TestResolve_InMatchAndWrappedAnswer(t *testing.T) {
	rules := []Rule{{
		QuestionKey:           "location",
		MatchType:             MatchIn,
		MatchValue:            []any{"front", "rear"},
		OverrideQuoteStrategy: strPtr("inspection_first"),
	}}
	// Rich answer shape carrying a value field.
	answers := map[string]any{"location": map[string]any{"value": "front", "label": "Front"}}

	got := Resolve(baseEngine(), rules, answers)
	if got.QuoteStrategy != "inspection_first" {
		t.Errorf("quote_strategy: got %q, want inspection_first", got.QuoteStrategy)
	}
}

func TestResolve_ContainsObjectNeedle(t *testing.T) {
	rules := []Rule{{
		QuestionKey:       "noise",
		MatchType:         MatchContains,
		MatchValue:        map[string]any{"contains": "Squeal"},
		OverrideRiskLevel: strPtr(RiskMedium),
	}}
	got := Resolve(baseEngine(), rules, map[string]any{"noise": "loud SQUEALING at speed"})
	if got.RiskLevel != RiskMedium {
		t.Errorf("case-insensitive contains failed: %+v", got)
	}
}

func TestResolve_UnknownMatchTypeFailsClosed(t *testing.T) {
	rules := []Rule{{
		QuestionKey:       "noise",
		MatchType:         "regex",
		MatchValue:        ".*",
		OverrideRiskLevel: strPtr(RiskHigh),
	}}
	got := Resolve(baseEngine(), rules, map[string]any{"noise": "anything"})
	if got.RiskLevel != RiskLow {
		t.Errorf("unknown match type should never match: %+v", got)
	}
}

func TestResolve_AnyRequiresNonEmptyAnswer(t *testing.T) {
	rules := []Rule{{
		QuestionKey:       "noise",
		MatchType:         MatchAny,
		OverrideRiskLevel: strPtr(RiskHigh),
	}}
	for name, answer := range map[string]any{
		"nil answer":   nil,
		"empty list":   []any{},
		"wrapped nil":  map[string]any{"value": nil},
	} {
		got := Resolve(baseEngine(), rules, map[string]any{"noise": answer})
		if got.RiskLevel != RiskLow {
			t.Errorf("%s: any matched an empty answer: %+v", name, got)
		}
	}
}
