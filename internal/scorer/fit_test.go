package scorer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leadwerk/leadgen-cli/internal/model"
)

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func TestFitScoreFullProfile(t *testing.T) {
	company := &model.Company{
		EmployeeRange: strPtr("100-199"), // 65
		RevenueRange:  strPtr("10M-50M"), // 60
		EntityCount:   intPtr(4),         // 50
		SBICodes:      []string{"6201"},  // prefix 62 -> 80
	}
	extracted := Extracted{
		fieldERPSystems:         {"SAP S/4HANA"}, // sap -> 90
		fieldAutomationStatus:  {"geen automatisering"},
		fieldComplexitySignals: {"international invoices"},
	}

	got := FitScore(company, extracted, DefaultConfig().Fit)

	// (65*.20 + 50*.20 + 90*.15 + 90*.15 + 60*.15 + 80*.10 + 80*.05) / 1.00
	assert.InDelta(t, 71.0, got.Score, 0.05)

	erp := got.Breakdown["erp_compatibility"].(map[string]any)
	assert.Equal(t, 90.0, erp["score"])
	assert.Equal(t, "sap", erp["value"])
	assert.Equal(t, 0.15, erp["weight"])
}

func TestFitScoreUnknownCompany(t *testing.T) {
	got := FitScore(&model.Company{}, Extracted{}, DefaultConfig().Fit)

	// 30*.20 + 20*.20 + 40*.15 + 50*.15 + 30*.15 + 30*.10 + 20*.05
	assert.InDelta(t, 32.0, got.Score, 0.05)
	assert.Equal(t, "unknown", got.Breakdown["employee_count"].(map[string]any)["value"])
	assert.Equal(t, "none", got.Breakdown["sector_fit"].(map[string]any)["value"])
	assert.Equal(t, "single", got.Breakdown["multi_language"].(map[string]any)["value"])
}

func TestFitScoreNoCriteria(t *testing.T) {
	got := FitScore(&model.Company{}, Extracted{}, FitCriteria{})
	assert.Zero(t, got.Score)
	assert.Empty(t, got.Breakdown)
}

func TestFitScoreSkippedCriteriaRenormalize(t *testing.T) {
	criteria := FitCriteria{
		EmployeeCount: &BucketCriterion{
			Weight:   0.20,
			Scores:   map[string]float64{"50-99": 45},
			Fallback: 30,
		},
	}
	company := &model.Company{EmployeeRange: strPtr("50-99")}
	got := FitScore(company, Extracted{}, criteria)
	// A single criterion normalizes to its own score.
	assert.InDelta(t, 45.0, got.Score, 1e-9)
	assert.Len(t, got.Breakdown, 1)
}

func TestScoreERPBestMatchWins(t *testing.T) {
	c := DefaultConfig().Fit.ERPCompatibility
	r := scoreERP(Extracted{fieldERPSystems: {"wij gebruiken Exact en SAP"}}, c)
	assert.Equal(t, 90.0, r.score)
	assert.Equal(t, "sap", r.value)
}

func TestScoreERPReadsExtractedFieldByName(t *testing.T) {
	c := DefaultConfig().Fit.ERPCompatibility
	extracted := Aggregate([]model.Vacancy{
		{ExtractedData: map[string]any{"erp_systems": []any{"SAP"}}},
	})
	r := scoreERP(extracted, c)
	assert.Equal(t, 90.0, r.score)
	assert.Equal(t, "sap", r.value)
}

func TestScoreERPUnmatchedMention(t *testing.T) {
	c := DefaultConfig().Fit.ERPCompatibility
	r := scoreERP(Extracted{fieldERPSystems: {"ons eigen maatwerk systeem"}}, c)
	assert.Equal(t, c.UnknownScore, r.score)
	assert.Equal(t, "ons eigen maatwerk systeem", r.value)
}

func TestScoreAutomation(t *testing.T) {
	c := DefaultConfig().Fit.NoExistingAutomation

	tests := []struct {
		name   string
		status []string
		score  float64
		value  string
	}{
		{"tool found", []string{"wij werken met Basware"}, 10, "basware"},
		{"tool beats negation", []string{"geen rpa"}, 10, "rpa"},
		{"confirmed none", []string{"geen automatisering"}, 90, "confirmed_none"},
		{"manual process", []string{"fully manual entry"}, 90, "confirmed_none"},
		{"unknown wording", []string{"wordt onderzocht"}, 50, "wordt onderzocht"},
		{"no data", nil, 50, "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := scoreAutomation(Extracted{fieldAutomationStatus: tt.status}, c)
			assert.Equal(t, tt.score, r.score)
			assert.Equal(t, tt.value, r.value)
		})
	}
}

func TestScoreAutomationListValues(t *testing.T) {
	c := DefaultConfig().Fit.NoExistingAutomation
	r := scoreAutomation(Extracted{fieldAutomationStatus: {"excel", "Coupa pilot"}}, c)
	assert.Equal(t, 10.0, r.score)
	assert.Equal(t, "coupa", r.value)
}

func TestScoreEntityCountBuckets(t *testing.T) {
	c := DefaultConfig().Fit.EntityCount

	tests := []struct {
		count *int
		score float64
	}{
		{intPtr(1), 20},
		{intPtr(2), 20},
		{intPtr(3), 50},
		{intPtr(5), 50},
		{intPtr(6), 80},
		{intPtr(20), 80},
		{intPtr(21), 100},
		{intPtr(999), 100},
		{intPtr(1500), 20}, // outside every bucket
		{nil, 20},
	}
	for _, tt := range tests {
		r := scoreEntityCount(tt.count, c)
		assert.Equal(t, tt.score, r.score)
	}
}

func TestScoreSectorRecordsMatchedCode(t *testing.T) {
	c := DefaultConfig().Fit.SectorFit
	r := scoreSector([]string{"9999", "4634"}, c)
	assert.Equal(t, 80.0, r.score)
	assert.Equal(t, "4634", r.value)

	r = scoreSector([]string{"0111"}, c)
	assert.Equal(t, 30.0, r.score)
	assert.Equal(t, "none", r.value)
}

func TestScoreLanguage(t *testing.T) {
	c := DefaultConfig().Fit.MultiLanguage

	r := scoreLanguage(Extracted{fieldComplexitySignals: {"English and German invoices"}}, c)
	assert.Equal(t, 80.0, r.score)
	assert.Equal(t, "multi", r.value)

	r = scoreLanguage(Extracted{fieldComplexitySignals: {"alleen binnenland"}}, c)
	assert.Equal(t, 20.0, r.score)
	assert.Equal(t, "single", r.value)
}
