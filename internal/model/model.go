// Package model defines the domain records shared across the pipeline.
package model

import (
	"time"

	"github.com/google/uuid"
)

// EnrichmentStatus tracks where a company sits in the enrichment pipeline.
type EnrichmentStatus string

const (
	EnrichmentPending   EnrichmentStatus = "pending"
	EnrichmentCompleted EnrichmentStatus = "completed"
	EnrichmentFailed    EnrichmentStatus = "failed"
	EnrichmentSkipped   EnrichmentStatus = "skipped"
)

// ExtractionStatus tracks per-vacancy LLM extraction state.
type ExtractionStatus string

const (
	ExtractionPending   ExtractionStatus = "pending"
	ExtractionCompleted ExtractionStatus = "completed"
	ExtractionFailed    ExtractionStatus = "failed"
)

// LeadStatus is the classification of a scored lead.
type LeadStatus string

const (
	LeadHot       LeadStatus = "hot"
	LeadWarm      LeadStatus = "warm"
	LeadMonitor   LeadStatus = "monitor"
	LeadDismissed LeadStatus = "dismissed"
	LeadExcluded  LeadStatus = "excluded"
)

// RunStatus tracks harvest and enrichment run lifecycle.
type RunStatus string

const (
	RunPending   RunStatus = "pending"
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// Company is the canonical business entity produced by dedup and mutated
// by the enrichment passes.
type Company struct {
	ID             int64
	Name           string
	NormalizedName string
	RegistryNumber *string
	SBICodes       []string
	EmployeeRange  *string
	RevenueRange   *string
	EntityCount    *int

	// Raw blobs from each external source, kept for audit.
	RegistryData     []byte
	FirmographicData []byte
	EnrichmentData   []byte

	ExtractionQuality *float64
	EnrichmentStatus  EnrichmentStatus
	EnrichmentRunID   *uuid.UUID
	EnrichedAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Vacancy is one observed job posting. (Source, ExternalID) is unique
// when ExternalID is non-empty.
type Vacancy struct {
	ID              int64
	Source          string
	ExternalID      string
	SearchProfileID int64
	CompanyID       *int64
	CompanyNameRaw  string
	JobTitle        string
	Location        string
	RawText         string

	ExtractedData    map[string]any
	ExtractionStatus ExtractionStatus
	ExtractionRunID  *uuid.UUID

	Status      string // active, filled, expired
	PublishedAt *time.Time
	FirstSeenAt time.Time
	LastSeenAt  time.Time
}

// VacancyActive is the lifecycle status of postings that feed scoring.
const VacancyActive = "active"

// AgeDate returns the best-known posting date for age calculations,
// preferring the source's published date over first sighting.
func (v *Vacancy) AgeDate() time.Time {
	if v.PublishedAt != nil {
		return v.PublishedAt.UTC()
	}
	return v.FirstSeenAt.UTC()
}

// SearchProfile scopes harvesting, extraction, and scoring.
type SearchProfile struct {
	ID          int64
	Name        string
	SearchTerms []string
	Location    string
	Active      bool
	CreatedAt   time.Time
}

// ExtractionPrompt is a versioned schema + instruction set for structured
// extraction. Exactly one version per profile is active; rows are immutable.
type ExtractionPrompt struct {
	ID           int64
	ProfileID    int64
	Version      int
	SystemPrompt string
	Schema       map[string]string // field name -> description
	IsActive     bool
	CreatedAt    time.Time
}

// ScoringConfigRow is the persisted form of a versioned scoring config.
// The JSON blobs are resolved into a typed scorer config before use;
// nil blobs inherit defaults.
type ScoringConfigRow struct {
	ID             int64
	ProfileID      int64
	Version        int
	FitWeight      float64
	TimingWeight   float64
	FitCriteria    []byte
	TimingSignals  []byte
	Thresholds     []byte
	MinimumFilters []byte
	Exclusions     []byte
	IsActive       bool
	CreatedAt      time.Time
}

// Lead is the scored relationship between one company and one profile,
// unique per (CompanyID, SearchProfileID).
type Lead struct {
	ID              int64
	CompanyID       int64
	SearchProfileID int64

	FitScore       float64
	TimingScore    float64
	CompositeScore float64
	Status         LeadStatus

	ScoringBreakdown map[string]any

	VacancyCount      int
	OldestVacancyDays int
	PlatformCount     int

	ScoredAt  time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// EnrichmentRun is the audit record of one LLM or external pass.
type EnrichmentRun struct {
	ID        uuid.UUID
	ProfileID int64
	PassType  string // "llm" or "external"
	Status    RunStatus

	ItemsProcessed int
	ItemsSucceeded int
	ItemsFailed    int
	TokensInput    int64
	TokensOutput   int64
	CostUSD        float64

	StartedAt   time.Time
	CompletedAt *time.Time
}

// HarvestRun is the audit record of one harvest invocation.
type HarvestRun struct {
	ID        uuid.UUID
	ProfileID int64
	Source    string
	Status    RunStatus

	VacanciesSeen    int
	VacanciesNew     int
	VacanciesUpdated int
	CompaniesCreated int
	ErrorMessage     string

	StartedAt   time.Time
	CompletedAt *time.Time
}
