package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/leadwerk/leadgen-cli/internal/model"
)

// CreateEnrichmentRun inserts the audit record for a new pass.
func (s *PostgresStore) CreateEnrichmentRun(ctx context.Context, run *model.EnrichmentRun) error {
	err := s.db.QueryRow(ctx, `
		INSERT INTO enrichment_runs (id, profile_id, pass_type, status)
		VALUES ($1, $2, $3, $4)
		RETURNING started_at`,
		run.ID, run.ProfileID, run.PassType, string(run.Status),
	).Scan(&run.StartedAt)
	if err != nil {
		return eris.Wrap(err, "run: create enrichment run")
	}
	return nil
}

// UpdateEnrichmentRun writes the final counters and status of a pass.
func (s *PostgresStore) UpdateEnrichmentRun(ctx context.Context, run *model.EnrichmentRun) error {
	_, err := s.db.Exec(ctx, `
		UPDATE enrichment_runs SET
			status=$2, items_processed=$3, items_succeeded=$4, items_failed=$5,
			tokens_input=$6, tokens_output=$7, cost_usd=$8, completed_at=$9
		WHERE id=$1`,
		run.ID, string(run.Status),
		run.ItemsProcessed, run.ItemsSucceeded, run.ItemsFailed,
		run.TokensInput, run.TokensOutput, run.CostUSD, run.CompletedAt,
	)
	if err != nil {
		return eris.Wrapf(err, "run: update enrichment run %s", run.ID)
	}
	return nil
}

// CreateHarvestRun inserts the audit record for a harvest invocation.
func (s *PostgresStore) CreateHarvestRun(ctx context.Context, run *model.HarvestRun) error {
	err := s.db.QueryRow(ctx, `
		INSERT INTO harvest_runs (id, profile_id, source, status)
		VALUES ($1, $2, $3, $4)
		RETURNING started_at`,
		run.ID, run.ProfileID, run.Source, string(run.Status),
	).Scan(&run.StartedAt)
	if err != nil {
		return eris.Wrap(err, "run: create harvest run")
	}
	return nil
}

// UpdateHarvestRun writes the final counters and status of a harvest.
func (s *PostgresStore) UpdateHarvestRun(ctx context.Context, run *model.HarvestRun) error {
	_, err := s.db.Exec(ctx, `
		UPDATE harvest_runs SET
			status=$2, vacancies_seen=$3, vacancies_new=$4, vacancies_updated=$5,
			companies_created=$6, error_message=$7, completed_at=$8
		WHERE id=$1`,
		run.ID, string(run.Status),
		run.VacanciesSeen, run.VacanciesNew, run.VacanciesUpdated,
		run.CompaniesCreated, run.ErrorMessage, run.CompletedAt,
	)
	if err != nil {
		return eris.Wrapf(err, "run: update harvest run %s", run.ID)
	}
	return nil
}
