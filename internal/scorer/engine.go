package scorer

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/leadwerk/leadgen-cli/internal/model"
	"github.com/leadwerk/leadgen-cli/internal/store"
)

// Engine scores companies into leads using a resolved config.
type Engine struct {
	store store.Store
	now   func() time.Time
}

// NewEngine creates a scoring Engine.
func NewEngine(s store.Store) *Engine {
	return &Engine{store: s, now: time.Now}
}

// Summary tallies one profile-wide scoring run.
type Summary struct {
	Scored   int
	Hot      int
	Warm     int
	Monitor  int
	Excluded int
}

// ScoreProfile scores every company with active vacancies in a profile
// under the profile's active scoring config.
func (e *Engine) ScoreProfile(ctx context.Context, profileID int64) (*Summary, error) {
	row, err := e.store.GetActiveScoringConfig(ctx, profileID)
	if err != nil {
		return nil, eris.Wrap(err, "scorer: load config")
	}
	cfg, err := ResolveConfig(row)
	if err != nil {
		return nil, err
	}

	ids, err := e.store.ListCompanyIDsWithActiveVacancies(ctx, profileID)
	if err != nil {
		return nil, eris.Wrap(err, "scorer: list companies")
	}

	summary := &Summary{}
	for _, companyID := range ids {
		lead, err := e.ScoreCompany(ctx, companyID, profileID, cfg)
		if err != nil {
			return summary, eris.Wrapf(err, "scorer: company %d", companyID)
		}
		if lead == nil {
			continue
		}
		summary.Scored++
		switch lead.Status {
		case model.LeadHot:
			summary.Hot++
		case model.LeadWarm:
			summary.Warm++
		case model.LeadMonitor:
			summary.Monitor++
		case model.LeadExcluded:
			summary.Excluded++
		}
	}

	zap.L().Info("profile scored",
		zap.Int64("profile_id", profileID),
		zap.Int("scored", summary.Scored),
		zap.Int("hot", summary.Hot),
		zap.Int("warm", summary.Warm),
		zap.Int("monitor", summary.Monitor),
		zap.Int("excluded", summary.Excluded))
	return summary, nil
}

// ScoreCompany scores one company/profile pair and upserts its lead.
// Companies without active vacancies are a no-op returning nil. A lead
// dismissed by a user keeps its dismissed status; only its scores refresh.
func (e *Engine) ScoreCompany(ctx context.Context, companyID, profileID int64, cfg Config) (*model.Lead, error) {
	company, err := e.store.GetCompany(ctx, companyID)
	if err != nil {
		return nil, eris.Wrap(err, "scorer: load company")
	}
	if company == nil {
		return nil, eris.Errorf("scorer: company %d not found", companyID)
	}

	if reason, excluded := ExcludeReason(company, cfg.Exclusions); excluded {
		return e.upsertExcluded(ctx, company, profileID, reason)
	}
	if reason, filtered := FilterReason(company, cfg.Filters); filtered {
		return e.upsertExcluded(ctx, company, profileID, reason)
	}

	vacancies, err := e.store.ListActiveVacancies(ctx, companyID, profileID)
	if err != nil {
		return nil, eris.Wrap(err, "scorer: load vacancies")
	}
	if len(vacancies) == 0 {
		return nil, nil
	}

	completed, err := e.store.ListCompletedExtractionVacancies(ctx, companyID, profileID)
	if err != nil {
		return nil, eris.Wrap(err, "scorer: load extractions")
	}
	extracted := Aggregate(completed)

	now := e.now().UTC()
	fit := FitScore(company, extracted, cfg.Fit)
	timing := TimingScore(vacancies, cfg.Timing, now)
	composite := round1(fit.Score*cfg.FitWeight + timing.Score*cfg.TimingWeight)

	status := model.LeadMonitor
	switch {
	case composite >= cfg.Thresholds.Hot:
		status = model.LeadHot
	case composite >= cfg.Thresholds.Warm:
		status = model.LeadWarm
	}

	existing, err := e.store.GetLead(ctx, companyID, profileID)
	if err != nil {
		return nil, eris.Wrap(err, "scorer: load lead")
	}
	if existing != nil && existing.Status == model.LeadDismissed {
		status = model.LeadDismissed
	}

	lead := &model.Lead{
		CompanyID:       companyID,
		SearchProfileID: profileID,
		FitScore:        fit.Score,
		TimingScore:     timing.Score,
		CompositeScore:  composite,
		Status:          status,
		ScoringBreakdown: map[string]any{
			"fit":           fit.Breakdown,
			"timing":        timing.Breakdown,
			"fit_weight":    cfg.FitWeight,
			"timing_weight": cfg.TimingWeight,
		},
		VacancyCount:      len(vacancies),
		OldestVacancyDays: oldestAgeDays(vacancies, now),
		PlatformCount:     distinctSources(vacancies),
	}
	if err := e.store.UpsertLead(ctx, lead); err != nil {
		return nil, eris.Wrap(err, "scorer: upsert lead")
	}
	return lead, nil
}

func (e *Engine) upsertExcluded(ctx context.Context, company *model.Company, profileID int64, reason string) (*model.Lead, error) {
	lead := &model.Lead{
		CompanyID:        company.ID,
		SearchProfileID:  profileID,
		Status:           model.LeadExcluded,
		ScoringBreakdown: map[string]any{"excluded_reason": reason},
	}
	if err := e.store.UpsertLead(ctx, lead); err != nil {
		return nil, eris.Wrapf(err, "scorer: upsert excluded lead for company %d", company.ID)
	}
	zap.L().Debug("company excluded from leads",
		zap.Int64("company_id", company.ID),
		zap.String("reason", reason))
	return lead, nil
}
