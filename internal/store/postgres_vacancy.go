package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/leadwerk/leadgen-cli/internal/model"
)

const vacancyColumns = `v.id, v.source, v.external_id, v.search_profile_id, v.company_id,
	v.company_name_raw, v.job_title, v.location, v.raw_text,
	v.extracted_data, v.extraction_status, v.extraction_run_id,
	v.status, v.published_at, v.first_seen_at, v.last_seen_at`

func vacancyDests(v *model.Vacancy, extracted *[]byte) []any {
	return []any{
		&v.ID, &v.Source, &v.ExternalID, &v.SearchProfileID, &v.CompanyID,
		&v.CompanyNameRaw, &v.JobTitle, &v.Location, &v.RawText,
		extracted, &v.ExtractionStatus, &v.ExtractionRunID,
		&v.Status, &v.PublishedAt, &v.FirstSeenAt, &v.LastSeenAt,
	}
}

func scanVacancy(row pgx.Row) (*model.Vacancy, error) {
	v := &model.Vacancy{}
	var extracted []byte
	if err := row.Scan(vacancyDests(v, &extracted)...); err != nil {
		return nil, err
	}
	if len(extracted) > 0 {
		if err := json.Unmarshal(extracted, &v.ExtractedData); err != nil {
			return nil, eris.Wrap(err, "vacancy: decode extracted data")
		}
	}
	return v, nil
}

func scanVacancies(rows pgx.Rows) ([]model.Vacancy, error) {
	var vacancies []model.Vacancy
	for rows.Next() {
		var v model.Vacancy
		var extracted []byte
		if err := rows.Scan(vacancyDests(&v, &extracted)...); err != nil {
			return nil, eris.Wrap(err, "vacancy: scan")
		}
		if len(extracted) > 0 {
			if err := json.Unmarshal(extracted, &v.ExtractedData); err != nil {
				return nil, eris.Wrap(err, "vacancy: decode extracted data")
			}
		}
		vacancies = append(vacancies, v)
	}
	return vacancies, rows.Err()
}

// FindVacancy looks up a vacancy by its source identity.
func (s *PostgresStore) FindVacancy(ctx context.Context, source, externalID string) (*model.Vacancy, error) {
	v, err := scanVacancy(s.db.QueryRow(ctx,
		`SELECT `+vacancyColumns+` FROM vacancies v WHERE v.source=$1 AND v.external_id=$2`,
		source, externalID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "vacancy: find %s/%s", source, externalID)
	}
	return v, nil
}

// InsertVacancy inserts a new vacancy and fills the generated fields.
func (s *PostgresStore) InsertVacancy(ctx context.Context, v *model.Vacancy) error {
	err := s.db.QueryRow(ctx, `
		INSERT INTO vacancies (source, external_id, search_profile_id, company_id,
			company_name_raw, job_title, location, raw_text, status, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, first_seen_at, last_seen_at`,
		v.Source, v.ExternalID, v.SearchProfileID, v.CompanyID,
		v.CompanyNameRaw, v.JobTitle, v.Location, v.RawText,
		model.VacancyActive, v.PublishedAt,
	).Scan(&v.ID, &v.FirstSeenAt, &v.LastSeenAt)
	if err != nil {
		return eris.Wrap(err, "vacancy: insert")
	}
	v.Status = model.VacancyActive
	v.ExtractionStatus = model.ExtractionPending
	return nil
}

// TouchVacancy bumps last_seen_at for a re-observed posting.
func (s *PostgresStore) TouchVacancy(ctx context.Context, id int64, lastSeen time.Time) error {
	_, err := s.db.Exec(ctx,
		`UPDATE vacancies SET last_seen_at=$2 WHERE id=$1`, id, lastSeen)
	if err != nil {
		return eris.Wrapf(err, "vacancy: touch %d", id)
	}
	return nil
}

// ListPendingExtraction returns vacancies awaiting LLM extraction that
// carry posting text to extract from.
func (s *PostgresStore) ListPendingExtraction(ctx context.Context, profileID int64) ([]model.Vacancy, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+vacancyColumns+`
		FROM vacancies v
		WHERE v.search_profile_id=$1
		  AND v.extraction_status=$2
		  AND v.raw_text <> ''
		ORDER BY v.id`,
		profileID, string(model.ExtractionPending))
	if err != nil {
		return nil, eris.Wrap(err, "vacancy: list pending extraction")
	}
	defer rows.Close()
	return scanVacancies(rows)
}

// UpdateVacancyExtraction records the outcome of one extraction attempt.
func (s *PostgresStore) UpdateVacancyExtraction(ctx context.Context, id int64, data map[string]any, status model.ExtractionStatus, runID uuid.UUID) error {
	var blob []byte
	if data != nil {
		var err error
		blob, err = json.Marshal(data)
		if err != nil {
			return eris.Wrap(err, "vacancy: encode extracted data")
		}
	}
	_, err := s.db.Exec(ctx, `
		UPDATE vacancies SET extracted_data=$2, extraction_status=$3, extraction_run_id=$4
		WHERE id=$1`,
		id, blob, string(status), runID)
	if err != nil {
		return eris.Wrapf(err, "vacancy: update extraction %d", id)
	}
	return nil
}

// ListActiveVacancies returns a company's active vacancies within a profile.
func (s *PostgresStore) ListActiveVacancies(ctx context.Context, companyID, profileID int64) ([]model.Vacancy, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+vacancyColumns+`
		FROM vacancies v
		WHERE v.company_id=$1 AND v.search_profile_id=$2 AND v.status=$3
		ORDER BY v.id`,
		companyID, profileID, model.VacancyActive)
	if err != nil {
		return nil, eris.Wrapf(err, "vacancy: list active for company %d", companyID)
	}
	defer rows.Close()
	return scanVacancies(rows)
}

// ListCompletedExtractionVacancies returns a company's vacancies whose
// extraction succeeded, for quality averaging and data aggregation.
func (s *PostgresStore) ListCompletedExtractionVacancies(ctx context.Context, companyID, profileID int64) ([]model.Vacancy, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+vacancyColumns+`
		FROM vacancies v
		WHERE v.company_id=$1 AND v.search_profile_id=$2 AND v.extraction_status=$3
		ORDER BY v.id`,
		companyID, profileID, string(model.ExtractionCompleted))
	if err != nil {
		return nil, eris.Wrapf(err, "vacancy: list completed extraction for company %d", companyID)
	}
	defer rows.Close()
	return scanVacancies(rows)
}

func (s *PostgresStore) listCompanyIDs(ctx context.Context, query string, args ...any) ([]int64, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListCompanyIDsWithActiveVacancies returns the distinct companies that
// currently hold active vacancies in a profile.
func (s *PostgresStore) ListCompanyIDsWithActiveVacancies(ctx context.Context, profileID int64) ([]int64, error) {
	ids, err := s.listCompanyIDs(ctx, `
		SELECT DISTINCT company_id FROM vacancies
		WHERE search_profile_id=$1 AND status=$2 AND company_id IS NOT NULL
		ORDER BY company_id`,
		profileID, model.VacancyActive)
	if err != nil {
		return nil, eris.Wrap(err, "vacancy: list companies with active vacancies")
	}
	return ids, nil
}

// ListCompanyIDsWithCompletedExtraction returns the distinct companies with
// at least one completed extraction, for quality recomputation.
func (s *PostgresStore) ListCompanyIDsWithCompletedExtraction(ctx context.Context, profileID int64) ([]int64, error) {
	ids, err := s.listCompanyIDs(ctx, `
		SELECT DISTINCT company_id FROM vacancies
		WHERE search_profile_id=$1 AND extraction_status=$2 AND company_id IS NOT NULL
		ORDER BY company_id`,
		profileID, string(model.ExtractionCompleted))
	if err != nil {
		return nil, eris.Wrap(err, "vacancy: list companies with completed extraction")
	}
	return ids, nil
}
