// Package store persists companies, vacancies, leads, prompts, scoring
// configs, and run records in Postgres.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/leadwerk/leadgen-cli/internal/model"
)

// DB is the pgx query surface the store runs on. Both *pgxpool.Pool and
// pgxmock satisfy it.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// LeadRow is a lead joined with its company for listings and export.
type LeadRow struct {
	model.Lead
	CompanyName    string
	NormalizedName string
}

// Store is the persistence contract consumed by the pipeline.
type Store interface {
	// Companies.
	GetCompany(ctx context.Context, id int64) (*model.Company, error)
	GetCompanyByNormalizedName(ctx context.Context, normalized string) (*model.Company, error)
	InsertCompany(ctx context.Context, c *model.Company) (bool, error)
	UpdateCompanyEnrichment(ctx context.Context, c *model.Company) error
	UpdateCompanyQuality(ctx context.Context, companyID int64, quality float64) error
	ListDuplicateRegistryNumbers(ctx context.Context) ([]string, error)
	ListCompaniesByRegistryNumber(ctx context.Context, registryNumber string) ([]model.Company, error)
	MergeCompanies(ctx context.Context, survivor *model.Company, loserIDs []int64) error
	ListEnrichmentCandidates(ctx context.Context, profileID int64, minQuality float64) ([]model.Company, error)

	// Vacancies.
	FindVacancy(ctx context.Context, source, externalID string) (*model.Vacancy, error)
	InsertVacancy(ctx context.Context, v *model.Vacancy) error
	TouchVacancy(ctx context.Context, id int64, lastSeen time.Time) error
	ListPendingExtraction(ctx context.Context, profileID int64) ([]model.Vacancy, error)
	UpdateVacancyExtraction(ctx context.Context, id int64, data map[string]any, status model.ExtractionStatus, runID uuid.UUID) error
	ListActiveVacancies(ctx context.Context, companyID, profileID int64) ([]model.Vacancy, error)
	ListCompletedExtractionVacancies(ctx context.Context, companyID, profileID int64) ([]model.Vacancy, error)
	ListCompanyIDsWithActiveVacancies(ctx context.Context, profileID int64) ([]int64, error)
	ListCompanyIDsWithCompletedExtraction(ctx context.Context, profileID int64) ([]int64, error)

	// Profiles and prompts.
	CreateProfile(ctx context.Context, p *model.SearchProfile) error
	GetProfile(ctx context.Context, id int64) (*model.SearchProfile, error)
	GetActivePrompt(ctx context.Context, profileID int64) (*model.ExtractionPrompt, error)
	CreatePromptVersion(ctx context.Context, p *model.ExtractionPrompt) error

	// Scoring config.
	GetActiveScoringConfig(ctx context.Context, profileID int64) (*model.ScoringConfigRow, error)
	CreateScoringConfigVersion(ctx context.Context, row *model.ScoringConfigRow) error

	// Leads.
	GetLead(ctx context.Context, companyID, profileID int64) (*model.Lead, error)
	UpsertLead(ctx context.Context, l *model.Lead) error
	ListLeads(ctx context.Context, profileID int64, limit int) ([]LeadRow, error)

	// Run records.
	CreateEnrichmentRun(ctx context.Context, run *model.EnrichmentRun) error
	UpdateEnrichmentRun(ctx context.Context, run *model.EnrichmentRun) error
	CreateHarvestRun(ctx context.Context, run *model.HarvestRun) error
	UpdateHarvestRun(ctx context.Context, run *model.HarvestRun) error
}
