package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/leadwerk/leadgen-cli/internal/model"
)

// GetLead fetches the lead for one company/profile pair.
func (s *PostgresStore) GetLead(ctx context.Context, companyID, profileID int64) (*model.Lead, error) {
	l := &model.Lead{}
	var breakdown []byte
	err := s.db.QueryRow(ctx, `
		SELECT id, company_id, search_profile_id,
			fit_score, timing_score, composite_score, status, scoring_breakdown,
			vacancy_count, oldest_vacancy_days, platform_count,
			scored_at, created_at, updated_at
		FROM leads
		WHERE company_id=$1 AND search_profile_id=$2`,
		companyID, profileID,
	).Scan(
		&l.ID, &l.CompanyID, &l.SearchProfileID,
		&l.FitScore, &l.TimingScore, &l.CompositeScore, &l.Status, &breakdown,
		&l.VacancyCount, &l.OldestVacancyDays, &l.PlatformCount,
		&l.ScoredAt, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "lead: get company %d profile %d", companyID, profileID)
	}
	if len(breakdown) > 0 {
		if err := json.Unmarshal(breakdown, &l.ScoringBreakdown); err != nil {
			return nil, eris.Wrap(err, "lead: decode breakdown")
		}
	}
	return l, nil
}

// UpsertLead writes the scored lead, keyed on (company, profile).
func (s *PostgresStore) UpsertLead(ctx context.Context, l *model.Lead) error {
	var breakdown []byte
	if l.ScoringBreakdown != nil {
		var err error
		breakdown, err = json.Marshal(l.ScoringBreakdown)
		if err != nil {
			return eris.Wrap(err, "lead: encode breakdown")
		}
	}

	err := s.db.QueryRow(ctx, `
		INSERT INTO leads (company_id, search_profile_id,
			fit_score, timing_score, composite_score, status, scoring_breakdown,
			vacancy_count, oldest_vacancy_days, platform_count, scored_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now())
		ON CONFLICT (company_id, search_profile_id) DO UPDATE SET
			fit_score=EXCLUDED.fit_score,
			timing_score=EXCLUDED.timing_score,
			composite_score=EXCLUDED.composite_score,
			status=EXCLUDED.status,
			scoring_breakdown=EXCLUDED.scoring_breakdown,
			vacancy_count=EXCLUDED.vacancy_count,
			oldest_vacancy_days=EXCLUDED.oldest_vacancy_days,
			platform_count=EXCLUDED.platform_count,
			scored_at=EXCLUDED.scored_at,
			updated_at=now()
		RETURNING id, scored_at, created_at, updated_at`,
		l.CompanyID, l.SearchProfileID,
		l.FitScore, l.TimingScore, l.CompositeScore, string(l.Status), breakdown,
		l.VacancyCount, l.OldestVacancyDays, l.PlatformCount,
	).Scan(&l.ID, &l.ScoredAt, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return eris.Wrapf(err, "lead: upsert company %d", l.CompanyID)
	}
	return nil
}

// ListLeads returns leads for a profile joined with company names, best
// scores first. A limit of 0 means no limit.
func (s *PostgresStore) ListLeads(ctx context.Context, profileID int64, limit int) ([]LeadRow, error) {
	query := `
		SELECT l.id, l.company_id, l.search_profile_id,
			l.fit_score, l.timing_score, l.composite_score, l.status, l.scoring_breakdown,
			l.vacancy_count, l.oldest_vacancy_days, l.platform_count,
			l.scored_at, l.created_at, l.updated_at,
			c.name, c.normalized_name
		FROM leads l
		JOIN companies c ON c.id = l.company_id
		WHERE l.search_profile_id=$1
		ORDER BY l.composite_score DESC, l.id`
	args := []any{profileID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "lead: list")
	}
	defer rows.Close()

	var leads []LeadRow
	for rows.Next() {
		var r LeadRow
		var breakdown []byte
		if err := rows.Scan(
			&r.ID, &r.CompanyID, &r.SearchProfileID,
			&r.FitScore, &r.TimingScore, &r.CompositeScore, &r.Status, &breakdown,
			&r.VacancyCount, &r.OldestVacancyDays, &r.PlatformCount,
			&r.ScoredAt, &r.CreatedAt, &r.UpdatedAt,
			&r.CompanyName, &r.NormalizedName,
		); err != nil {
			return nil, eris.Wrap(err, "lead: scan")
		}
		if len(breakdown) > 0 {
			if err := json.Unmarshal(breakdown, &r.ScoringBreakdown); err != nil {
				return nil, eris.Wrap(err, "lead: decode breakdown")
			}
		}
		leads = append(leads, r)
	}
	return leads, rows.Err()
}
