package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadwerk/leadgen-cli/internal/enrich"
	"github.com/leadwerk/leadgen-cli/internal/harvest"
	"github.com/leadwerk/leadgen-cli/internal/model"
	"github.com/leadwerk/leadgen-cli/internal/scorer"
	"github.com/leadwerk/leadgen-cli/internal/store"
)

type harvestCall struct {
	profileID int64
	source    string
}

type fakeHarvester struct {
	calls chan harvestCall
}

func (f *fakeHarvester) Run(_ context.Context, profileID int64, source harvest.Source) (*model.HarvestRun, error) {
	f.calls <- harvestCall{profileID: profileID, source: source.Name()}
	return &model.HarvestRun{Status: model.RunCompleted}, nil
}

type fakeEnricher struct {
	calls chan enrich.Pass
}

func (f *fakeEnricher) Run(_ context.Context, _ int64, pass enrich.Pass) (*enrich.Result, error) {
	f.calls <- pass
	return &enrich.Result{}, nil
}

type fakeScorer struct {
	summary *scorer.Summary
	err     error
}

func (f *fakeScorer) ScoreProfile(context.Context, int64) (*scorer.Summary, error) {
	return f.summary, f.err
}

type leadsStore struct {
	store.Store

	leads []store.LeadRow
	limit int
}

func (s *leadsStore) ListLeads(_ context.Context, _ int64, limit int) ([]store.LeadRow, error) {
	s.limit = limit
	return s.leads, nil
}

func jsonDecode(resp *http.Response, v any) error {
	return json.NewDecoder(resp.Body).Decode(v)
}

type stubSource struct{ name string }

func (s stubSource) Name() string { return s.name }

func (s stubSource) Fetch(context.Context, *model.SearchProfile) ([]harvest.SourceRecord, error) {
	return nil, nil
}

func newTestServer(ls *leadsStore) (*Server, *fakeHarvester, *fakeEnricher, *fakeScorer) {
	h := &fakeHarvester{calls: make(chan harvestCall, 1)}
	e := &fakeEnricher{calls: make(chan enrich.Pass, 1)}
	sc := &fakeScorer{summary: &scorer.Summary{Scored: 2, Hot: 1, Excluded: 1}}
	sources := map[string]harvest.Source{"indeed": stubSource{name: "indeed"}}
	return New(ls, sources, h, e, sc), h, e, sc
}

func TestHealthz(t *testing.T) {
	srv, _, _, _ := newTestServer(&leadsStore{})
	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHarvestTrigger(t *testing.T) {
	srv, h, _, _ := newTestServer(&leadsStore{})
	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/v1/profiles/7/harvest", "application/json",
		strings.NewReader(`{"source": "indeed"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	select {
	case call := <-h.calls:
		assert.Equal(t, int64(7), call.profileID)
		assert.Equal(t, "indeed", call.source)
	case <-time.After(time.Second):
		t.Fatal("harvest never ran")
	}
}

func TestHarvestTriggerUnknownSource(t *testing.T) {
	srv, _, _, _ := newTestServer(&leadsStore{})
	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/v1/profiles/7/harvest", "application/json",
		strings.NewReader(`{"source": "monster"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestEnrichTriggerDefaultsToBoth(t *testing.T) {
	srv, _, e, _ := newTestServer(&leadsStore{})
	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/v1/profiles/7/enrich", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	select {
	case pass := <-e.calls:
		assert.Equal(t, enrich.PassBoth, pass)
	case <-time.After(time.Second):
		t.Fatal("enrichment never ran")
	}
}

func TestEnrichTriggerBadPass(t *testing.T) {
	srv, _, _, _ := newTestServer(&leadsStore{})
	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/v1/profiles/7/enrich", "application/json",
		strings.NewReader(`{"pass": "psychic"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestScoreReturnsSummary(t *testing.T) {
	srv, _, _, _ := newTestServer(&leadsStore{})
	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/v1/profiles/7/score", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]int
	require.NoError(t, jsonDecode(resp, &body))
	assert.Equal(t, 2, body["scored"])
	assert.Equal(t, 1, body["hot"])
}

func TestLeadsListing(t *testing.T) {
	ls := &leadsStore{leads: []store.LeadRow{
		{
			Lead: model.Lead{
				CompanyID:      4,
				CompositeScore: 81.5,
				Status:         model.LeadHot,
				ScoredAt:       time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
			},
			CompanyName: "Jansen Bouw B.V.",
		},
	}}
	srv, _, _, _ := newTestServer(ls)
	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/v1/profiles/7/leads?limit=10")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 10, ls.limit)

	var body []map[string]any
	require.NoError(t, jsonDecode(resp, &body))
	require.Len(t, body, 1)
	assert.Equal(t, "Jansen Bouw B.V.", body[0]["company"])
	assert.Equal(t, "hot", body[0]["status"])
	assert.Equal(t, 81.5, body[0]["composite_score"])
}

func TestBadProfileID(t *testing.T) {
	srv, _, _, _ := newTestServer(&leadsStore{})
	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/v1/profiles/zero/leads")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
