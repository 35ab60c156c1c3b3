package scorer

import (
	"strconv"
	"strings"

	"github.com/leadwerk/leadgen-cli/internal/model"
)

// Extraction fields consumed by fit criteria.
const (
	fieldERPSystems         = "erp_systems"
	fieldAutomationStatus  = "automation_status"
	fieldComplexitySignals = "complexity_signals"
)

// FitResult is a fit score with its per-criterion breakdown.
type FitResult struct {
	Score     float64
	Breakdown map[string]any
}

type criterionResult struct {
	score  float64
	value  string
	weight float64
}

func (r criterionResult) entry() map[string]any {
	return map[string]any{
		"score":  r.score,
		"value":  r.value,
		"weight": r.weight,
	}
}

// FitScore computes the weighted average over the configured criteria.
// No configured criteria scores 0.
func FitScore(company *model.Company, extracted Extracted, criteria FitCriteria) FitResult {
	breakdown := map[string]any{}
	var totalScore, totalWeight float64

	add := func(name string, r criterionResult) {
		breakdown[name] = r.entry()
		totalScore += r.score * r.weight
		totalWeight += r.weight
	}

	if c := criteria.EmployeeCount; c != nil {
		add("employee_count", scoreBucket(company.EmployeeRange, c))
	}
	if c := criteria.EntityCount; c != nil {
		add("entity_count", scoreEntityCount(company.EntityCount, c))
	}
	if c := criteria.ERPCompatibility; c != nil {
		add("erp_compatibility", scoreERP(extracted, c))
	}
	if c := criteria.NoExistingAutomation; c != nil {
		add("no_existing_automation", scoreAutomation(extracted, c))
	}
	if c := criteria.Revenue; c != nil {
		add("revenue", scoreBucket(company.RevenueRange, c))
	}
	if c := criteria.SectorFit; c != nil {
		add("sector_fit", scoreSector(company.SBICodes, c))
	}
	if c := criteria.MultiLanguage; c != nil {
		add("multi_language", scoreLanguage(extracted, c))
	}

	if totalWeight == 0 {
		return FitResult{Score: 0, Breakdown: breakdown}
	}
	score := round1(totalScore / totalWeight)
	if score > 100 {
		score = 100
	}
	return FitResult{Score: score, Breakdown: breakdown}
}

func scoreBucket(bucket *string, c *BucketCriterion) criterionResult {
	if bucket == nil {
		return criterionResult{score: c.Fallback, value: "unknown", weight: c.Weight}
	}
	score, ok := c.Scores[*bucket]
	if !ok {
		score = c.Fallback
	}
	return criterionResult{score: score, value: *bucket, weight: c.Weight}
}

func scoreEntityCount(count *int, c *EntityCriterion) criterionResult {
	if count == nil {
		return criterionResult{score: c.DefaultScore, value: "unknown", weight: c.Weight}
	}
	for _, b := range c.Buckets {
		if *count >= b.Min && *count <= b.Max {
			return criterionResult{score: b.Score, value: strconv.Itoa(*count), weight: c.Weight}
		}
	}
	return criterionResult{score: c.DefaultScore, value: strconv.Itoa(*count), weight: c.Weight}
}

// scoreERP matches every mentioned ERP against the compatibility table
// by substring and keeps the best-scoring system.
func scoreERP(extracted Extracted, c *ERPCriterion) criterionResult {
	mentions := extracted.Values(fieldERPSystems)
	if len(mentions) == 0 {
		return criterionResult{score: c.UnknownScore, value: "unknown", weight: c.Weight}
	}

	best := -1.0
	bestSystem := ""
	for _, mention := range mentions {
		lower := strings.ToLower(mention)
		for system, score := range c.Scores {
			if strings.Contains(lower, system) && score > best {
				best = score
				bestSystem = system
			}
		}
	}
	if best < 0 {
		return criterionResult{score: c.UnknownScore, value: preferLongestString(mentions), weight: c.Weight}
	}
	return criterionResult{score: best, value: bestSystem, weight: c.Weight}
}

func scoreAutomation(extracted Extracted, c *AutomationCriterion) criterionResult {
	status := extracted.Joined(fieldAutomationStatus)
	if status == "" {
		return criterionResult{score: c.UnknownScore, value: "unknown", weight: c.Weight}
	}
	for _, tool := range c.ToolKeywords {
		if strings.Contains(status, tool) {
			return criterionResult{score: c.HasToolScore, value: tool, weight: c.Weight}
		}
	}
	for _, negation := range c.NegationKeywords {
		if strings.Contains(status, negation) {
			return criterionResult{score: c.ConfirmedNone, value: "confirmed_none", weight: c.Weight}
		}
	}
	return criterionResult{score: c.UnknownScore, value: status, weight: c.Weight}
}

func scoreSector(sbiCodes []string, c *SectorCriterion) criterionResult {
	for _, code := range sbiCodes {
		for _, prefix := range c.PreferredPrefixes {
			if strings.HasPrefix(code, prefix) {
				return criterionResult{score: c.MatchScore, value: code, weight: c.Weight}
			}
		}
	}
	return criterionResult{score: c.NoMatchScore, value: "none", weight: c.Weight}
}

func scoreLanguage(extracted Extracted, c *LanguageCriterion) criterionResult {
	signals := extracted.Joined(fieldComplexitySignals)
	for _, keyword := range c.Keywords {
		if strings.Contains(signals, keyword) {
			return criterionResult{score: c.MultiScore, value: "multi", weight: c.Weight}
		}
	}
	return criterionResult{score: c.SingleScore, value: "single", weight: c.Weight}
}
