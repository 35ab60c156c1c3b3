package harvest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadwerk/leadgen-cli/internal/model"
	"github.com/leadwerk/leadgen-cli/internal/store"
)

type harvestStore struct {
	store.Store

	profile   *model.SearchProfile
	companies map[string]*model.Company
	vacancies map[string]*model.Vacancy // source/external_id

	inserted []model.Vacancy
	touched  []int64
	runs     []*model.HarvestRun
	nextID   int64
}

func newHarvestStore() *harvestStore {
	return &harvestStore{
		profile:   &model.SearchProfile{ID: 1, Name: "ap-automation", Active: true},
		companies: map[string]*model.Company{},
		vacancies: map[string]*model.Vacancy{},
	}
}

func (s *harvestStore) GetProfile(context.Context, int64) (*model.SearchProfile, error) {
	return s.profile, nil
}

func (s *harvestStore) GetCompanyByNormalizedName(_ context.Context, normalized string) (*model.Company, error) {
	return s.companies[normalized], nil
}

func (s *harvestStore) InsertCompany(_ context.Context, c *model.Company) (bool, error) {
	s.nextID++
	c.ID = s.nextID
	s.companies[c.NormalizedName] = c
	return true, nil
}

func (s *harvestStore) FindVacancy(_ context.Context, source, externalID string) (*model.Vacancy, error) {
	return s.vacancies[source+"/"+externalID], nil
}

func (s *harvestStore) InsertVacancy(_ context.Context, v *model.Vacancy) error {
	s.nextID++
	v.ID = s.nextID
	s.inserted = append(s.inserted, *v)
	if v.ExternalID != "" {
		s.vacancies[v.Source+"/"+v.ExternalID] = v
	}
	return nil
}

func (s *harvestStore) TouchVacancy(_ context.Context, id int64, _ time.Time) error {
	s.touched = append(s.touched, id)
	return nil
}

func (s *harvestStore) CreateHarvestRun(_ context.Context, run *model.HarvestRun) error {
	s.runs = append(s.runs, run)
	return nil
}

func (s *harvestStore) UpdateHarvestRun(context.Context, *model.HarvestRun) error {
	return nil
}

type fakeSource struct {
	name    string
	records []SourceRecord
	err     error
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Fetch(context.Context, *model.SearchProfile) ([]SourceRecord, error) {
	return f.records, f.err
}

func TestRunIngestsNewPostings(t *testing.T) {
	hs := newHarvestStore()
	published := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	src := &fakeSource{name: "indeed", records: []SourceRecord{
		IndeedRecord{JobKey: "a1", Company: "Jansen Bouw B.V.", Title: "Crediteurenbeheerder", Description: "tekst", PubDate: &published},
		IndeedRecord{JobKey: "a2", Company: "JANSEN BOUW", Title: "Finance Manager", Snippet: "snippet"},
		IndeedRecord{JobKey: "a3", Company: "De Vries Logistiek", Title: "Boekhouder", Description: "tekst"},
	}}

	run, err := NewHarvester(hs).Run(context.Background(), 1, src)
	require.NoError(t, err)

	assert.Equal(t, model.RunCompleted, run.Status)
	assert.Equal(t, 3, run.VacanciesSeen)
	assert.Equal(t, 3, run.VacanciesNew)
	assert.Zero(t, run.VacanciesUpdated)
	// Both Jansen Bouw spellings resolve to one company.
	assert.Equal(t, 2, run.CompaniesCreated)

	require.Len(t, hs.inserted, 3)
	first := hs.inserted[0]
	assert.Equal(t, "indeed", first.Source)
	assert.Equal(t, "a1", first.ExternalID)
	assert.Equal(t, "Jansen Bouw B.V.", first.CompanyNameRaw)
	assert.Equal(t, published, *first.PublishedAt)
	assert.Equal(t, *hs.inserted[0].CompanyID, *hs.inserted[1].CompanyID)

	// Snippet used when the full description is missing.
	assert.Equal(t, "snippet", hs.inserted[1].RawText)
}

func TestRunTouchesExistingPostings(t *testing.T) {
	hs := newHarvestStore()
	hs.vacancies["indeed/a1"] = &model.Vacancy{ID: 42, Source: "indeed", ExternalID: "a1"}

	src := &fakeSource{name: "indeed", records: []SourceRecord{
		IndeedRecord{JobKey: "a1", Company: "Jansen Bouw", Title: "Boekhouder", Description: "x"},
	}}

	run, err := NewHarvester(hs).Run(context.Background(), 1, src)
	require.NoError(t, err)

	assert.Equal(t, 1, run.VacanciesUpdated)
	assert.Zero(t, run.VacanciesNew)
	assert.Zero(t, run.CompaniesCreated)
	assert.Equal(t, []int64{42}, hs.touched)
	assert.Empty(t, hs.inserted)
}

func TestRunFetchFailureMarksRunFailed(t *testing.T) {
	hs := newHarvestStore()
	src := &fakeSource{name: "linkedin", err: assert.AnError}

	run, err := NewHarvester(hs).Run(context.Background(), 1, src)
	require.Error(t, err)
	assert.Equal(t, model.RunFailed, run.Status)
	assert.NotEmpty(t, run.ErrorMessage)
}

func TestLinkedInRecordAdapts(t *testing.T) {
	listed := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	p := LinkedInRecord{
		URN:             "urn:li:job:123",
		CompanyName:     "Acme",
		Title:           "AP Specialist",
		FormattedCity:   "Utrecht",
		DescriptionText: "tekst",
		ListedAt:        &listed,
	}.Posting()

	assert.Equal(t, "linkedin", p.Source)
	assert.Equal(t, "urn:li:job:123", p.ExternalID)
	assert.Equal(t, "Utrecht", p.Location)
	assert.Equal(t, listed, *p.PublishedAt)
}
