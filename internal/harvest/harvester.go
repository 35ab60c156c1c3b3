package harvest

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/leadwerk/leadgen-cli/internal/dedup"
	"github.com/leadwerk/leadgen-cli/internal/model"
	"github.com/leadwerk/leadgen-cli/internal/store"
)

// Harvester ingests one source's postings for a profile.
type Harvester struct {
	store    store.Store
	resolver *dedup.Resolver
}

// NewHarvester creates a Harvester.
func NewHarvester(s store.Store) *Harvester {
	return &Harvester{store: s, resolver: dedup.NewResolver(s)}
}

// Run fetches postings from the source and upserts them as vacancies.
// Re-observed postings only bump last_seen_at; their stored fields and
// extraction state are untouched. Fetch failure marks the run failed.
func (h *Harvester) Run(ctx context.Context, profileID int64, source Source) (*model.HarvestRun, error) {
	profile, err := h.store.GetProfile(ctx, profileID)
	if err != nil {
		return nil, eris.Wrap(err, "harvest: load profile")
	}
	if profile == nil {
		return nil, eris.Errorf("harvest: profile %d not found", profileID)
	}

	run := &model.HarvestRun{
		ID:        uuid.New(),
		ProfileID: profileID,
		Source:    source.Name(),
		Status:    model.RunRunning,
	}
	if err := h.store.CreateHarvestRun(ctx, run); err != nil {
		return nil, eris.Wrap(err, "harvest: create run")
	}

	records, err := source.Fetch(ctx, profile)
	if err != nil {
		h.finishRun(ctx, run, model.RunFailed, err.Error())
		return run, eris.Wrapf(err, "harvest: fetch from %s", source.Name())
	}

	for _, record := range records {
		posting := record.Posting()
		run.VacanciesSeen++

		if err := h.ingest(ctx, profileID, posting, run); err != nil {
			h.finishRun(ctx, run, model.RunFailed, err.Error())
			return run, err
		}
	}

	h.finishRun(ctx, run, model.RunCompleted, "")
	zap.L().Info("harvest complete",
		zap.String("source", run.Source),
		zap.Int64("profile_id", profileID),
		zap.Int("seen", run.VacanciesSeen),
		zap.Int("new", run.VacanciesNew),
		zap.Int("updated", run.VacanciesUpdated),
		zap.Int("companies_created", run.CompaniesCreated))
	return run, nil
}

func (h *Harvester) ingest(ctx context.Context, profileID int64, posting Posting, run *model.HarvestRun) error {
	if posting.ExternalID != "" {
		existing, err := h.store.FindVacancy(ctx, posting.Source, posting.ExternalID)
		if err != nil {
			return eris.Wrap(err, "harvest: lookup vacancy")
		}
		if existing != nil {
			if err := h.store.TouchVacancy(ctx, existing.ID, time.Now().UTC()); err != nil {
				return eris.Wrap(err, "harvest: touch vacancy")
			}
			run.VacanciesUpdated++
			return nil
		}
	}

	company, created, err := h.resolver.FindOrCreate(ctx, posting.CompanyName)
	if err != nil {
		return eris.Wrapf(err, "harvest: resolve company %q", posting.CompanyName)
	}
	if created {
		run.CompaniesCreated++
	}

	vacancy := &model.Vacancy{
		Source:          posting.Source,
		ExternalID:      posting.ExternalID,
		SearchProfileID: profileID,
		CompanyID:       &company.ID,
		CompanyNameRaw:  posting.CompanyName,
		JobTitle:        posting.JobTitle,
		Location:        posting.Location,
		RawText:         posting.RawText,
		PublishedAt:     posting.PublishedAt,
	}
	if err := h.store.InsertVacancy(ctx, vacancy); err != nil {
		return eris.Wrap(err, "harvest: insert vacancy")
	}
	run.VacanciesNew++
	return nil
}

func (h *Harvester) finishRun(ctx context.Context, run *model.HarvestRun, status model.RunStatus, errMsg string) {
	run.Status = status
	run.ErrorMessage = errMsg
	now := time.Now().UTC()
	run.CompletedAt = &now
	if err := h.store.UpdateHarvestRun(ctx, run); err != nil {
		zap.L().Error("failed to finalize harvest run",
			zap.String("run_id", run.ID.String()),
			zap.Error(err))
	}
}
