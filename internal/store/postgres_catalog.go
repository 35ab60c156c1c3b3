package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/leadwerk/leadgen-cli/internal/model"
)

// CreateProfile inserts a new search profile.
func (s *PostgresStore) CreateProfile(ctx context.Context, p *model.SearchProfile) error {
	err := s.db.QueryRow(ctx, `
		INSERT INTO search_profiles (name, search_terms, location, active)
		VALUES ($1, $2, $3, true)
		RETURNING id, created_at`,
		p.Name, p.SearchTerms, p.Location,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return eris.Wrapf(err, "profile: create %q", p.Name)
	}
	p.Active = true
	return nil
}

// GetProfile fetches a search profile by ID.
func (s *PostgresStore) GetProfile(ctx context.Context, id int64) (*model.SearchProfile, error) {
	p := &model.SearchProfile{}
	err := s.db.QueryRow(ctx, `
		SELECT id, name, search_terms, location, active, created_at
		FROM search_profiles WHERE id=$1`, id,
	).Scan(&p.ID, &p.Name, &p.SearchTerms, &p.Location, &p.Active, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "profile: get %d", id)
	}
	return p, nil
}

// GetActivePrompt returns the active extraction prompt for a profile, or
// nil when none has been activated.
func (s *PostgresStore) GetActivePrompt(ctx context.Context, profileID int64) (*model.ExtractionPrompt, error) {
	p := &model.ExtractionPrompt{}
	var schema []byte
	err := s.db.QueryRow(ctx, `
		SELECT id, profile_id, version, system_prompt, schema, is_active, created_at
		FROM extraction_prompts
		WHERE profile_id=$1 AND is_active`, profileID,
	).Scan(&p.ID, &p.ProfileID, &p.Version, &p.SystemPrompt, &schema, &p.IsActive, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "prompt: get active for profile %d", profileID)
	}
	if err := json.Unmarshal(schema, &p.Schema); err != nil {
		return nil, eris.Wrap(err, "prompt: decode schema")
	}
	return p, nil
}

// CreatePromptVersion inserts a new prompt version and makes it the
// single active one. The version number is assigned in the transaction.
func (s *PostgresStore) CreatePromptVersion(ctx context.Context, p *model.ExtractionPrompt) error {
	schema, err := json.Marshal(p.Schema)
	if err != nil {
		return eris.Wrap(err, "prompt: encode schema")
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "prompt: begin version")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx,
		`UPDATE extraction_prompts SET is_active=false WHERE profile_id=$1 AND is_active`,
		p.ProfileID,
	); err != nil {
		return eris.Wrap(err, "prompt: deactivate prior")
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO extraction_prompts (profile_id, version, system_prompt, schema, is_active)
		SELECT $1, COALESCE(max(version), 0) + 1, $2, $3, true
		FROM extraction_prompts WHERE profile_id=$1
		RETURNING id, version, created_at`,
		p.ProfileID, p.SystemPrompt, schema,
	).Scan(&p.ID, &p.Version, &p.CreatedAt)
	if err != nil {
		return eris.Wrap(err, "prompt: insert version")
	}
	p.IsActive = true

	return tx.Commit(ctx)
}

func scoringConfigDests(row *model.ScoringConfigRow) []any {
	return []any{
		&row.ID, &row.ProfileID, &row.Version, &row.FitWeight, &row.TimingWeight,
		&row.FitCriteria, &row.TimingSignals, &row.Thresholds,
		&row.MinimumFilters, &row.Exclusions, &row.IsActive, &row.CreatedAt,
	}
}

// GetActiveScoringConfig returns the active scoring config row for a
// profile, or nil when scoring runs on defaults.
func (s *PostgresStore) GetActiveScoringConfig(ctx context.Context, profileID int64) (*model.ScoringConfigRow, error) {
	row := &model.ScoringConfigRow{}
	err := s.db.QueryRow(ctx, `
		SELECT id, profile_id, version, fit_weight, timing_weight,
			fit_criteria, timing_signals, thresholds, minimum_filters, exclusions,
			is_active, created_at
		FROM scoring_configs
		WHERE profile_id=$1 AND is_active`, profileID,
	).Scan(scoringConfigDests(row)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "scoring config: get active for profile %d", profileID)
	}
	return row, nil
}

// CreateScoringConfigVersion inserts a new config version and activates
// it, deactivating the prior active version in the same transaction.
func (s *PostgresStore) CreateScoringConfigVersion(ctx context.Context, row *model.ScoringConfigRow) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "scoring config: begin version")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx,
		`UPDATE scoring_configs SET is_active=false WHERE profile_id=$1 AND is_active`,
		row.ProfileID,
	); err != nil {
		return eris.Wrap(err, "scoring config: deactivate prior")
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO scoring_configs (profile_id, version, fit_weight, timing_weight,
			fit_criteria, timing_signals, thresholds, minimum_filters, exclusions, is_active)
		SELECT $1, COALESCE(max(version), 0) + 1, $2, $3, $4, $5, $6, $7, $8, true
		FROM scoring_configs WHERE profile_id=$1
		RETURNING id, version, created_at`,
		row.ProfileID, row.FitWeight, row.TimingWeight,
		row.FitCriteria, row.TimingSignals, row.Thresholds,
		row.MinimumFilters, row.Exclusions,
	).Scan(&row.ID, &row.Version, &row.CreatedAt)
	if err != nil {
		return eris.Wrap(err, "scoring config: insert version")
	}
	row.IsActive = true

	return tx.Commit(ctx)
}
