package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
)

// PostgresStore implements Store using pgx.
type PostgresStore struct {
	db      DB
	closeFn func()
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, maxConns, minConns int32) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	if maxConns <= 0 {
		maxConns = 10
	}
	if minConns <= 0 {
		minConns = 2
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{db: pool, closeFn: pool.Close}, nil
}

// NewPostgresWithDB wraps an existing query surface (used by tests).
func NewPostgresWithDB(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS search_profiles (
	id           BIGSERIAL PRIMARY KEY,
	name         TEXT NOT NULL,
	search_terms TEXT[] NOT NULL DEFAULT '{}',
	location     TEXT NOT NULL DEFAULT '',
	active       BOOLEAN NOT NULL DEFAULT true,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS companies (
	id                 BIGSERIAL PRIMARY KEY,
	name               TEXT NOT NULL,
	normalized_name    TEXT NOT NULL UNIQUE,
	registry_number    TEXT,
	sbi_codes          TEXT[],
	employee_range     TEXT,
	revenue_range      TEXT,
	entity_count       INTEGER,
	registry_data      JSONB,
	firmographic_data  JSONB,
	enrichment_data    JSONB,
	extraction_quality DOUBLE PRECISION,
	enrichment_status  TEXT NOT NULL DEFAULT 'pending',
	enrichment_run_id  UUID,
	enriched_at        TIMESTAMPTZ,
	created_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at         TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_companies_registry_number
	ON companies(registry_number) WHERE registry_number IS NOT NULL;
CREATE INDEX IF NOT EXISTS idx_companies_enrichment_status ON companies(enrichment_status);

CREATE TABLE IF NOT EXISTS vacancies (
	id                BIGSERIAL PRIMARY KEY,
	source            TEXT NOT NULL,
	external_id       TEXT NOT NULL DEFAULT '',
	search_profile_id BIGINT NOT NULL REFERENCES search_profiles(id),
	company_id        BIGINT REFERENCES companies(id),
	company_name_raw  TEXT NOT NULL DEFAULT '',
	job_title         TEXT NOT NULL DEFAULT '',
	location          TEXT NOT NULL DEFAULT '',
	raw_text          TEXT NOT NULL DEFAULT '',
	extracted_data    JSONB,
	extraction_status TEXT NOT NULL DEFAULT 'pending',
	extraction_run_id UUID,
	status            TEXT NOT NULL DEFAULT 'active',
	published_at      TIMESTAMPTZ,
	first_seen_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	last_seen_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_vacancies_source_external
	ON vacancies(source, external_id) WHERE external_id <> '';
CREATE INDEX IF NOT EXISTS idx_vacancies_company ON vacancies(company_id);
CREATE INDEX IF NOT EXISTS idx_vacancies_profile_status ON vacancies(search_profile_id, status);
CREATE INDEX IF NOT EXISTS idx_vacancies_extraction ON vacancies(search_profile_id, extraction_status);

CREATE TABLE IF NOT EXISTS extraction_prompts (
	id            BIGSERIAL PRIMARY KEY,
	profile_id    BIGINT NOT NULL REFERENCES search_profiles(id),
	version       INTEGER NOT NULL,
	system_prompt TEXT NOT NULL,
	schema        JSONB NOT NULL,
	is_active     BOOLEAN NOT NULL DEFAULT false,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (profile_id, version)
);

CREATE TABLE IF NOT EXISTS scoring_configs (
	id              BIGSERIAL PRIMARY KEY,
	profile_id      BIGINT NOT NULL REFERENCES search_profiles(id),
	version         INTEGER NOT NULL,
	fit_weight      DOUBLE PRECISION NOT NULL,
	timing_weight   DOUBLE PRECISION NOT NULL,
	fit_criteria    JSONB,
	timing_signals  JSONB,
	thresholds      JSONB,
	minimum_filters JSONB,
	exclusions      JSONB,
	is_active       BOOLEAN NOT NULL DEFAULT false,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (profile_id, version)
);

CREATE TABLE IF NOT EXISTS leads (
	id                  BIGSERIAL PRIMARY KEY,
	company_id          BIGINT NOT NULL REFERENCES companies(id) ON DELETE CASCADE,
	search_profile_id   BIGINT NOT NULL REFERENCES search_profiles(id),
	fit_score           DOUBLE PRECISION NOT NULL DEFAULT 0,
	timing_score        DOUBLE PRECISION NOT NULL DEFAULT 0,
	composite_score     DOUBLE PRECISION NOT NULL DEFAULT 0,
	status              TEXT NOT NULL DEFAULT 'monitor',
	scoring_breakdown   JSONB,
	vacancy_count       INTEGER NOT NULL DEFAULT 0,
	oldest_vacancy_days INTEGER NOT NULL DEFAULT 0,
	platform_count      INTEGER NOT NULL DEFAULT 0,
	scored_at           TIMESTAMPTZ NOT NULL DEFAULT now(),
	created_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (company_id, search_profile_id)
);

CREATE INDEX IF NOT EXISTS idx_leads_profile_status ON leads(search_profile_id, status);
CREATE INDEX IF NOT EXISTS idx_leads_composite ON leads(search_profile_id, composite_score DESC);

CREATE TABLE IF NOT EXISTS enrichment_runs (
	id              UUID PRIMARY KEY,
	profile_id      BIGINT NOT NULL REFERENCES search_profiles(id),
	pass_type       TEXT NOT NULL,
	status          TEXT NOT NULL DEFAULT 'pending',
	items_processed INTEGER NOT NULL DEFAULT 0,
	items_succeeded INTEGER NOT NULL DEFAULT 0,
	items_failed    INTEGER NOT NULL DEFAULT 0,
	tokens_input    BIGINT NOT NULL DEFAULT 0,
	tokens_output   BIGINT NOT NULL DEFAULT 0,
	cost_usd        DOUBLE PRECISION NOT NULL DEFAULT 0,
	started_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	completed_at    TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS harvest_runs (
	id                UUID PRIMARY KEY,
	profile_id        BIGINT NOT NULL REFERENCES search_profiles(id),
	source            TEXT NOT NULL,
	status            TEXT NOT NULL DEFAULT 'pending',
	vacancies_seen    INTEGER NOT NULL DEFAULT 0,
	vacancies_new     INTEGER NOT NULL DEFAULT 0,
	vacancies_updated INTEGER NOT NULL DEFAULT 0,
	companies_created INTEGER NOT NULL DEFAULT 0,
	error_message     TEXT NOT NULL DEFAULT '',
	started_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
	completed_at      TIMESTAMPTZ
);
`

// Migrate applies the schema. Idempotent.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.db.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

// Ping verifies connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.db.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}
