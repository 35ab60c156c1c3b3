// Package scorer computes fit, timing, and composite lead scores from
// enriched companies and their vacancy signals.
package scorer

import (
	"encoding/json"
	"math"

	"github.com/rotisserie/eris"

	"github.com/leadwerk/leadgen-cli/internal/model"
)

// Config is the resolved, typed scoring configuration. A nil criterion
// or signal pointer means that component is skipped, not scored at zero.
type Config struct {
	FitWeight    float64 `json:"fit_weight"`
	TimingWeight float64 `json:"timing_weight"`

	Fit        FitCriteria    `json:"fit_criteria"`
	Timing     TimingSignals  `json:"timing_signals"`
	Thresholds Thresholds     `json:"thresholds"`
	Filters    MinimumFilters `json:"minimum_filters"`
	Exclusions Exclusions     `json:"exclusions"`
}

// FitCriteria holds the weighted firmographic criteria.
type FitCriteria struct {
	EmployeeCount        *BucketCriterion     `json:"employee_count,omitempty"`
	EntityCount          *EntityCriterion     `json:"entity_count,omitempty"`
	ERPCompatibility     *ERPCriterion        `json:"erp_compatibility,omitempty"`
	NoExistingAutomation *AutomationCriterion `json:"no_existing_automation,omitempty"`
	Revenue              *BucketCriterion     `json:"revenue,omitempty"`
	SectorFit            *SectorCriterion     `json:"sector_fit,omitempty"`
	MultiLanguage        *LanguageCriterion   `json:"multi_language,omitempty"`
}

// BucketCriterion scores a labelled range bucket via a lookup table.
type BucketCriterion struct {
	Weight   float64            `json:"weight"`
	Scores   map[string]float64 `json:"scores"`
	Fallback float64            `json:"fallback"`
}

// EntityCriterion scores the number of registered establishments.
type EntityCriterion struct {
	Weight       float64        `json:"weight"`
	Buckets      []EntityBucket `json:"buckets"`
	DefaultScore float64        `json:"default_score"`
}

// EntityBucket maps an inclusive entity-count interval to a score.
type EntityBucket struct {
	Min   int     `json:"min"`
	Max   int     `json:"max"`
	Score float64 `json:"score"`
}

// ERPCriterion scores the ERP systems mentioned in vacancy text by how
// well each integrates; the best match wins.
type ERPCriterion struct {
	Weight       float64            `json:"weight"`
	Scores       map[string]float64 `json:"scores"`
	UnknownScore float64            `json:"unknown_score"`
}

// AutomationCriterion scores the absence of existing AP automation.
type AutomationCriterion struct {
	Weight           float64  `json:"weight"`
	HasToolScore     float64  `json:"has_tool_score"`
	UnknownScore     float64  `json:"unknown_score"`
	ConfirmedNone    float64  `json:"confirmed_none_score"`
	ToolKeywords     []string `json:"tool_keywords"`
	NegationKeywords []string `json:"negation_keywords"`
}

// SectorCriterion scores SBI codes against preferred industry prefixes.
type SectorCriterion struct {
	Weight            float64  `json:"weight"`
	PreferredPrefixes []string `json:"preferred_prefixes"`
	MatchScore        float64  `json:"match_score"`
	NoMatchScore      float64  `json:"no_match_score"`
}

// LanguageCriterion scores multi-language invoice complexity signals.
type LanguageCriterion struct {
	Weight      float64  `json:"weight"`
	SingleScore float64  `json:"single_score"`
	MultiScore  float64  `json:"multi_score"`
	Keywords    []string `json:"keywords"`
}

// TimingSignals assigns points to urgency signals. A nil pointer means
// the signal is not evaluated and contributes nothing to the maximum.
type TimingSignals struct {
	VacancyAgeOver60Days      *float64 `json:"vacancy_age_over_60_days,omitempty"`
	MultipleVacanciesSameRole *float64 `json:"multiple_vacancies_same_role,omitempty"`
	RepeatedPublication       *float64 `json:"repeated_publication,omitempty"`
	MultiPlatform             *float64 `json:"multi_platform,omitempty"`
	ManagementVacancy         *float64 `json:"management_vacancy,omitempty"`
}

// Thresholds classify composite scores into lead statuses.
type Thresholds struct {
	Hot     float64 `json:"hot"`
	Warm    float64 `json:"warm"`
	Monitor float64 `json:"monitor"`
}

// MinimumFilters drop companies below a size floor before scoring.
// Companies with an unknown range always pass.
type MinimumFilters struct {
	Employee *RangeFilter `json:"employee,omitempty"`
	Revenue  *RangeFilter `json:"revenue,omitempty"`
}

// RangeFilter is one minimum-bucket filter on a range ladder.
type RangeFilter struct {
	Enabled  bool   `json:"enabled"`
	MinRange string `json:"min_range"`
}

// Exclusions remove staffing and recruitment companies from lead output.
type Exclusions struct {
	Enabled      bool     `json:"enabled"`
	SBIPrefixes  []string `json:"sbi_prefixes"`
	NameKeywords []string `json:"name_keywords"`
}

func ptr(f float64) *float64 { return &f }

// DefaultConfig returns the built-in scoring configuration used when a
// profile has no stored config, and the base that stored configs
// override section by section.
func DefaultConfig() Config {
	return Config{
		FitWeight:    0.6,
		TimingWeight: 0.4,
		Fit: FitCriteria{
			EmployeeCount: &BucketCriterion{
				Weight: 0.20,
				Scores: map[string]float64{
					"1-9":     10,
					"10-49":   25,
					"50-99":   45,
					"100-199": 65,
					"200-499": 80,
					"500-999": 90,
					"1000+":   100,
				},
				Fallback: 30,
			},
			EntityCount: &EntityCriterion{
				Weight: 0.20,
				Buckets: []EntityBucket{
					{Min: 1, Max: 2, Score: 20},
					{Min: 3, Max: 5, Score: 50},
					{Min: 6, Max: 20, Score: 80},
					{Min: 21, Max: 999, Score: 100},
				},
				DefaultScore: 20,
			},
			ERPCompatibility: &ERPCriterion{
				Weight: 0.15,
				Scores: map[string]float64{
					"excel":              20,
					"afas":               50,
					"exact":              50,
					"twinfield":          50,
					"sap":                90,
					"oracle":             90,
					"unit4":              70,
					"microsoft dynamics": 80,
					"netsuite":           85,
				},
				UnknownScore: 40,
			},
			NoExistingAutomation: &AutomationCriterion{
				Weight:           0.15,
				HasToolScore:     10,
				UnknownScore:     50,
				ConfirmedNone:    90,
				ToolKeywords:     []string{"basware", "coupa", "tradeshift", "rpa"},
				NegationKeywords: []string{"geen", "no", "manual"},
			},
			Revenue: &BucketCriterion{
				Weight: 0.15,
				Scores: map[string]float64{
					"<1M":       10,
					"1M-10M":    30,
					"10M-50M":   60,
					"50M-100M":  80,
					"100M-500M": 90,
					"500M+":     100,
				},
				Fallback: 30,
			},
			SectorFit: &SectorCriterion{
				Weight:            0.10,
				PreferredPrefixes: []string{"41", "42", "43", "46", "47", "62", "63", "69", "70"},
				MatchScore:        80,
				NoMatchScore:      30,
			},
			MultiLanguage: &LanguageCriterion{
				Weight:      0.05,
				SingleScore: 20,
				MultiScore:  80,
				Keywords:    []string{"international", "multi", "language", "english", "german", "french"},
			},
		},
		Timing: TimingSignals{
			VacancyAgeOver60Days:      ptr(3),
			MultipleVacanciesSameRole: ptr(4),
			RepeatedPublication:       ptr(3),
			MultiPlatform:             ptr(2),
			ManagementVacancy:         ptr(2),
		},
		Thresholds: Thresholds{Hot: 75, Warm: 50, Monitor: 25},
		Filters: MinimumFilters{
			Employee: &RangeFilter{Enabled: false, MinRange: "50-99"},
			Revenue:  &RangeFilter{Enabled: false, MinRange: "10M-50M"},
		},
		Exclusions: Exclusions{
			Enabled:     true,
			SBIPrefixes: []string{"78"},
			NameKeywords: []string{
				"detachering", "uitzend", "staffing", "recruitment", "interim",
				"payroll", "werving", "selectie", "flexwerk", "talent connect",
				"randstad", "tempo-team", "manpower", "adecco", "hays", "brunel",
				"yacht", "michael page", "robert half", "robert walters",
			},
		},
	}
}

// ResolveConfig merges a stored config row over the defaults. Nil blobs
// inherit the default section wholesale.
func ResolveConfig(row *model.ScoringConfigRow) (Config, error) {
	cfg := DefaultConfig()
	if row == nil {
		return cfg, nil
	}

	cfg.FitWeight = row.FitWeight
	cfg.TimingWeight = row.TimingWeight

	sections := []struct {
		blob []byte
		dst  any
		name string
	}{
		{row.FitCriteria, &cfg.Fit, "fit criteria"},
		{row.TimingSignals, &cfg.Timing, "timing signals"},
		{row.Thresholds, &cfg.Thresholds, "thresholds"},
		{row.MinimumFilters, &cfg.Filters, "minimum filters"},
		{row.Exclusions, &cfg.Exclusions, "exclusions"},
	}
	for _, s := range sections {
		if len(s.blob) == 0 {
			continue
		}
		if err := json.Unmarshal(s.blob, s.dst); err != nil {
			return Config{}, eris.Wrapf(err, "scorer: decode %s (config version %d)", s.name, row.Version)
		}
	}
	return cfg, nil
}

// ValidateWeights rejects fit/timing weights that do not sum to 1.
func ValidateWeights(fitWeight, timingWeight float64) error {
	if math.Abs(fitWeight+timingWeight-1) > 0.01 {
		return eris.Errorf("scorer: fit_weight %.2f + timing_weight %.2f must sum to 1.0", fitWeight, timingWeight)
	}
	return nil
}

// round1 rounds to one decimal, the precision every persisted score uses.
func round1(f float64) float64 {
	return math.Round(f*10) / 10
}
