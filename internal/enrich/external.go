// Package enrich orchestrates the two-pass enrichment pipeline: the LLM
// extraction pass gates the external registry and firmographic pass.
package enrich

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/leadwerk/leadgen-cli/internal/model"
	"github.com/leadwerk/leadgen-cli/internal/ranges"
	"github.com/leadwerk/leadgen-cli/internal/store"
	"github.com/leadwerk/leadgen-cli/pkg/apollo"
	"github.com/leadwerk/leadgen-cli/pkg/kvk"
)

// ExternalRunner executes the registry and firmographic pass over
// companies whose extraction quality cleared the threshold.
type ExternalRunner struct {
	store      store.Store
	registry   kvk.Client
	firmo      apollo.Client
	minQuality float64
}

// NewExternalRunner creates an ExternalRunner.
func NewExternalRunner(s store.Store, registry kvk.Client, firmo apollo.Client, minQuality float64) *ExternalRunner {
	return &ExternalRunner{store: s, registry: registry, firmo: firmo, minQuality: minQuality}
}

// Run enriches every qualifying company in the profile. External sources
// having no data on a company still completes it; only hard lookup
// failures mark it failed. One company failing never stops the batch.
func (r *ExternalRunner) Run(ctx context.Context, profileID int64) (*model.EnrichmentRun, error) {
	candidates, err := r.store.ListEnrichmentCandidates(ctx, profileID, r.minQuality)
	if err != nil {
		return nil, eris.Wrap(err, "enrich: list candidates")
	}

	run := &model.EnrichmentRun{
		ID:        uuid.New(),
		ProfileID: profileID,
		PassType:  "external",
		Status:    model.RunRunning,
	}
	if err := r.store.CreateEnrichmentRun(ctx, run); err != nil {
		return nil, eris.Wrap(err, "enrich: create run")
	}

	for i := range candidates {
		company := &candidates[i]
		run.ItemsProcessed++

		if err := r.enrichOne(ctx, company, run.ID); err != nil {
			run.ItemsFailed++
			zap.L().Warn("external enrichment failed",
				zap.Int64("company_id", company.ID),
				zap.String("company", company.Name),
				zap.Error(err))
			r.markFailed(ctx, company, run.ID)
			continue
		}
		run.ItemsSucceeded++
	}

	run.Status = model.RunCompleted
	now := time.Now().UTC()
	run.CompletedAt = &now
	if err := r.store.UpdateEnrichmentRun(ctx, run); err != nil {
		return run, eris.Wrap(err, "enrich: finalize run")
	}

	zap.L().Info("external pass complete",
		zap.Int64("profile_id", profileID),
		zap.Int("processed", run.ItemsProcessed),
		zap.Int("succeeded", run.ItemsSucceeded),
		zap.Int("failed", run.ItemsFailed))
	return run, nil
}

func (r *ExternalRunner) enrichOne(ctx context.Context, company *model.Company, runID uuid.UUID) error {
	registryNumber := ""
	if company.RegistryNumber != nil {
		registryNumber = *company.RegistryNumber
	}
	if registryNumber == "" {
		// A search miss returns "" without error; only hard failures
		// propagate and mark the company failed.
		number, err := r.registry.FindRegistryNumber(ctx, company.Name)
		if err != nil {
			return eris.Wrapf(err, "enrich: registry search for %q", company.Name)
		}
		registryNumber = number
	}

	if registryNumber != "" {
		profile, err := r.registry.CompanyProfile(ctx, registryNumber)
		if err != nil {
			return eris.Wrapf(err, "enrich: registry profile %s", registryNumber)
		}
		applyRegistry(company, registryNumber, profile)
	}

	org, err := r.firmo.Enrich(ctx, company.Name, "")
	if err != nil {
		return eris.Wrapf(err, "enrich: firmographics for %q", company.Name)
	}
	applyFirmographics(company, org)

	if err := mergeEnrichmentData(company, org); err != nil {
		return err
	}

	company.EnrichmentStatus = model.EnrichmentCompleted
	company.EnrichmentRunID = &runID
	now := time.Now().UTC()
	company.EnrichedAt = &now

	if err := r.store.UpdateCompanyEnrichment(ctx, company); err != nil {
		return eris.Wrapf(err, "enrich: persist company %d", company.ID)
	}
	return nil
}

func (r *ExternalRunner) markFailed(ctx context.Context, company *model.Company, runID uuid.UUID) {
	company.EnrichmentStatus = model.EnrichmentFailed
	company.EnrichmentRunID = &runID
	if err := r.store.UpdateCompanyEnrichment(ctx, company); err != nil {
		zap.L().Error("failed to mark company enrichment failed",
			zap.Int64("company_id", company.ID),
			zap.Error(err))
	}
}

func applyRegistry(company *model.Company, registryNumber string, profile *kvk.CompanyProfile) {
	company.RegistryNumber = &registryNumber
	if profile == nil {
		return
	}

	if len(profile.SBICodes) > 0 {
		codes := make([]string, 0, len(profile.SBICodes))
		for _, sbi := range profile.SBICodes {
			codes = append(codes, sbi.Code)
		}
		company.SBICodes = codes
	}
	company.EntityCount = profile.EntityCount
	// Registry headcount only fills a missing range; an existing range
	// is kept for the firmographic source to override.
	if profile.EmployeeCount != nil && company.EmployeeRange == nil {
		if r := ranges.EmployeeRangeFromCount(*profile.EmployeeCount); r != "" {
			company.EmployeeRange = &r
		}
	}
	company.RegistryData = []byte(profile.Raw)
}

// mergeEnrichmentData combines both source payloads into the company's
// enrichment_data blob.
func mergeEnrichmentData(company *model.Company, org *apollo.Organization) error {
	merged := map[string]any{
		"registry_data":     json.RawMessage(company.RegistryData),
		"firmographic_data": json.RawMessage(company.FirmographicData),
	}
	if org != nil {
		merged["firmographic_id"] = org.ID
	}
	blob, err := json.Marshal(merged)
	if err != nil {
		return eris.Wrapf(err, "enrich: merge enrichment data for company %d", company.ID)
	}
	company.EnrichmentData = blob
	return nil
}

// applyFirmographics layers Apollo data over the registry baseline.
// Apollo's ranges win when present; null Apollo fields never erase
// registry values.
func applyFirmographics(company *model.Company, org *apollo.Organization) {
	if org == nil {
		return
	}
	if org.EmployeeRange != nil {
		company.EmployeeRange = org.EmployeeRange
	}
	if org.RevenueRange != nil {
		company.RevenueRange = org.RevenueRange
	}
	company.FirmographicData = []byte(org.Raw)
}
