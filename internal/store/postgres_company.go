package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/leadwerk/leadgen-cli/internal/model"
)

// companyColumns is the standard column list for company queries.
const companyColumns = `c.id, c.name, c.normalized_name, c.registry_number, c.sbi_codes,
	c.employee_range, c.revenue_range, c.entity_count,
	c.registry_data, c.firmographic_data, c.enrichment_data,
	c.extraction_quality, c.enrichment_status, c.enrichment_run_id, c.enriched_at,
	c.created_at, c.updated_at`

// companyDests returns scan destinations for a model.Company.
func companyDests(c *model.Company) []any {
	return []any{
		&c.ID, &c.Name, &c.NormalizedName, &c.RegistryNumber, &c.SBICodes,
		&c.EmployeeRange, &c.RevenueRange, &c.EntityCount,
		&c.RegistryData, &c.FirmographicData, &c.EnrichmentData,
		&c.ExtractionQuality, &c.EnrichmentStatus, &c.EnrichmentRunID, &c.EnrichedAt,
		&c.CreatedAt, &c.UpdatedAt,
	}
}

func scanCompanies(rows pgx.Rows) ([]model.Company, error) {
	var companies []model.Company
	for rows.Next() {
		var c model.Company
		if err := rows.Scan(companyDests(&c)...); err != nil {
			return nil, eris.Wrap(err, "company: scan")
		}
		companies = append(companies, c)
	}
	return companies, rows.Err()
}

// GetCompany fetches a company by ID.
func (s *PostgresStore) GetCompany(ctx context.Context, id int64) (*model.Company, error) {
	c := &model.Company{}
	err := s.db.QueryRow(ctx, `SELECT `+companyColumns+` FROM companies c WHERE c.id=$1`, id).
		Scan(companyDests(c)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "company: get %d", id)
	}
	return c, nil
}

// GetCompanyByNormalizedName fetches a company by its unique dedup key.
func (s *PostgresStore) GetCompanyByNormalizedName(ctx context.Context, normalized string) (*model.Company, error) {
	c := &model.Company{}
	err := s.db.QueryRow(ctx, `SELECT `+companyColumns+` FROM companies c WHERE c.normalized_name=$1`, normalized).
		Scan(companyDests(c)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "company: get by normalized name %q", normalized)
	}
	return c, nil
}

// InsertCompany inserts a new company, relying on the normalized_name
// unique constraint for concurrent harvest safety. Returns false without
// error when another writer won the race.
func (s *PostgresStore) InsertCompany(ctx context.Context, c *model.Company) (bool, error) {
	err := s.db.QueryRow(ctx, `
		INSERT INTO companies (name, normalized_name, enrichment_status)
		VALUES ($1, $2, $3)
		ON CONFLICT (normalized_name) DO NOTHING
		RETURNING id, created_at, updated_at`,
		c.Name, c.NormalizedName, string(model.EnrichmentPending),
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, eris.Wrap(err, "company: insert")
	}
	c.EnrichmentStatus = model.EnrichmentPending
	return true, nil
}

// UpdateCompanyEnrichment persists the fields mutated by the enrichment passes.
func (s *PostgresStore) UpdateCompanyEnrichment(ctx context.Context, c *model.Company) error {
	_, err := s.db.Exec(ctx, `
		UPDATE companies SET
			registry_number=$2, sbi_codes=$3, employee_range=$4, revenue_range=$5,
			entity_count=$6, registry_data=$7, firmographic_data=$8, enrichment_data=$9,
			enrichment_status=$10, enrichment_run_id=$11, enriched_at=$12,
			updated_at=now()
		WHERE id=$1`,
		c.ID,
		c.RegistryNumber, c.SBICodes, c.EmployeeRange, c.RevenueRange,
		c.EntityCount, c.RegistryData, c.FirmographicData, c.EnrichmentData,
		string(c.EnrichmentStatus), c.EnrichmentRunID, c.EnrichedAt,
	)
	if err != nil {
		return eris.Wrapf(err, "company: update enrichment %d", c.ID)
	}
	return nil
}

// UpdateCompanyQuality stores the averaged extraction quality for a company.
func (s *PostgresStore) UpdateCompanyQuality(ctx context.Context, companyID int64, quality float64) error {
	_, err := s.db.Exec(ctx,
		`UPDATE companies SET extraction_quality=$2, updated_at=now() WHERE id=$1`,
		companyID, quality,
	)
	if err != nil {
		return eris.Wrapf(err, "company: update quality %d", companyID)
	}
	return nil
}

// ListDuplicateRegistryNumbers returns registry numbers held by two or
// more company records.
func (s *PostgresStore) ListDuplicateRegistryNumbers(ctx context.Context) ([]string, error) {
	rows, err := s.db.Query(ctx, `
		SELECT registry_number FROM companies
		WHERE registry_number IS NOT NULL
		GROUP BY registry_number
		HAVING count(id) > 1`)
	if err != nil {
		return nil, eris.Wrap(err, "company: list duplicate registry numbers")
	}
	defer rows.Close()

	var numbers []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, eris.Wrap(err, "company: scan registry number")
		}
		numbers = append(numbers, n)
	}
	return numbers, rows.Err()
}

// ListCompaniesByRegistryNumber returns all companies holding a registry
// number, oldest first.
func (s *PostgresStore) ListCompaniesByRegistryNumber(ctx context.Context, registryNumber string) ([]model.Company, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+companyColumns+`
		FROM companies c
		WHERE c.registry_number=$1
		ORDER BY c.created_at`, registryNumber)
	if err != nil {
		return nil, eris.Wrapf(err, "company: list by registry number %s", registryNumber)
	}
	defer rows.Close()
	return scanCompanies(rows)
}

// MergeCompanies applies a merge group in one transaction: the survivor's
// merged fields are written, every loser's vacancies are re-pointed at the
// survivor, and the losers are deleted. A vacancy never references a
// deleted company, even transiently.
func (s *PostgresStore) MergeCompanies(ctx context.Context, survivor *model.Company, loserIDs []int64) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "company: begin merge")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	_, err = tx.Exec(ctx, `
		UPDATE companies SET
			registry_number=$2, sbi_codes=$3, employee_range=$4, revenue_range=$5,
			entity_count=$6, registry_data=$7, firmographic_data=$8, enrichment_data=$9,
			updated_at=now()
		WHERE id=$1`,
		survivor.ID,
		survivor.RegistryNumber, survivor.SBICodes, survivor.EmployeeRange, survivor.RevenueRange,
		survivor.EntityCount, survivor.RegistryData, survivor.FirmographicData, survivor.EnrichmentData,
	)
	if err != nil {
		return eris.Wrapf(err, "company: merge update survivor %d", survivor.ID)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE vacancies SET company_id=$1 WHERE company_id = ANY($2)`,
		survivor.ID, loserIDs,
	); err != nil {
		return eris.Wrap(err, "company: merge reassign vacancies")
	}

	if _, err := tx.Exec(ctx,
		`DELETE FROM leads WHERE company_id = ANY($1)`, loserIDs,
	); err != nil {
		return eris.Wrap(err, "company: merge delete loser leads")
	}

	if _, err := tx.Exec(ctx,
		`DELETE FROM companies WHERE id = ANY($1)`, loserIDs,
	); err != nil {
		return eris.Wrap(err, "company: merge delete losers")
	}

	return tx.Commit(ctx)
}

// ListEnrichmentCandidates returns companies qualifying for the external
// pass: at least one vacancy in the profile, enrichment pending, and
// extraction quality at or above the threshold.
func (s *PostgresStore) ListEnrichmentCandidates(ctx context.Context, profileID int64, minQuality float64) ([]model.Company, error) {
	rows, err := s.db.Query(ctx, `
		SELECT DISTINCT `+companyColumns+`
		FROM companies c
		JOIN vacancies v ON v.company_id = c.id
		WHERE v.search_profile_id=$1
		  AND c.enrichment_status=$2
		  AND c.extraction_quality >= $3`,
		profileID, string(model.EnrichmentPending), minQuality)
	if err != nil {
		return nil, eris.Wrap(err, "company: list enrichment candidates")
	}
	defer rows.Close()
	return scanCompanies(rows)
}
