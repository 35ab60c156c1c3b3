package extraction

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadwerk/leadgen-cli/internal/cost"
	"github.com/leadwerk/leadgen-cli/internal/model"
	"github.com/leadwerk/leadgen-cli/internal/store"
	"github.com/leadwerk/leadgen-cli/pkg/anthropic"
)

type fakeLLM struct {
	mu        sync.Mutex
	responses map[string]string // raw_text -> response body
	failFor   map[string]bool
	calls     int
}

func (f *fakeLLM) CreateMessage(_ context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	text := req.Messages[0].Content
	if f.failFor[text] {
		return nil, assert.AnError
	}
	return &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: f.responses[text]}},
		Usage:   anthropic.TokenUsage{InputTokens: 100, OutputTokens: 50},
	}, nil
}

type passStore struct {
	store.Store

	mu      sync.Mutex
	prompt  *model.ExtractionPrompt
	pending []model.Vacancy

	updates map[int64]model.ExtractionStatus
	data    map[int64]map[string]any
	quality map[int64]float64
	run     *model.EnrichmentRun
}

func newPassStore(prompt *model.ExtractionPrompt, pending []model.Vacancy) *passStore {
	return &passStore{
		prompt:  prompt,
		pending: pending,
		updates: map[int64]model.ExtractionStatus{},
		data:    map[int64]map[string]any{},
		quality: map[int64]float64{},
	}
}

func (s *passStore) GetActivePrompt(context.Context, int64) (*model.ExtractionPrompt, error) {
	return s.prompt, nil
}

func (s *passStore) ListPendingExtraction(context.Context, int64) ([]model.Vacancy, error) {
	return s.pending, nil
}

func (s *passStore) CreateEnrichmentRun(_ context.Context, run *model.EnrichmentRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.run = run
	return nil
}

func (s *passStore) UpdateEnrichmentRun(_ context.Context, run *model.EnrichmentRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.run = run
	return nil
}

func (s *passStore) UpdateVacancyExtraction(_ context.Context, id int64, data map[string]any, status model.ExtractionStatus, _ uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates[id] = status
	s.data[id] = data
	return nil
}

func (s *passStore) ListCompanyIDsWithCompletedExtraction(context.Context, int64) ([]int64, error) {
	return nil, nil
}

func (s *passStore) UpdateCompanyQuality(_ context.Context, companyID int64, q float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quality[companyID] = q
	return nil
}

func testPrompt() *model.ExtractionPrompt {
	return &model.ExtractionPrompt{
		ID: 1, ProfileID: 1, Version: 1, IsActive: true,
		SystemPrompt: "You extract AP automation signals.",
		Schema:       map[string]string{"erp_systems": "ERP in use", "automation_status": "automation state"},
	}
}

func TestRunExtractsPendingVacancies(t *testing.T) {
	pending := []model.Vacancy{
		{ID: 1, RawText: "vacancy one"},
		{ID: 2, RawText: "vacancy two"},
	}
	llm := &fakeLLM{responses: map[string]string{
		"vacancy one": "```json\n{\"erp_systems\": \"SAP\", \"automation_status\": \"geen\"}\n```",
		"vacancy two": "Here you go: {\"erp_systems\": null, \"automation_status\": \"Basware\"}",
	}}
	ps := newPassStore(testPrompt(), pending)

	r := NewRunner(ps, llm, cost.NewCalculator(cost.DefaultRates()), "claude-haiku-4-5-20251001", 1024, 2)
	run, err := r.Run(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, 2, run.ItemsProcessed)
	assert.Equal(t, 2, run.ItemsSucceeded)
	assert.Zero(t, run.ItemsFailed)
	assert.Equal(t, int64(200), run.TokensInput)
	assert.Equal(t, int64(100), run.TokensOutput)
	assert.Greater(t, run.CostUSD, 0.0)
	assert.Equal(t, model.RunCompleted, run.Status)
	require.NotNil(t, run.CompletedAt)

	assert.Equal(t, model.ExtractionCompleted, ps.updates[1])
	assert.Equal(t, "SAP", ps.data[1]["erp_systems"])
	assert.Equal(t, "Basware", ps.data[2]["automation_status"])
	assert.Nil(t, ps.data[2]["erp_systems"])
}

func TestRunIsolatesPerVacancyFailures(t *testing.T) {
	pending := []model.Vacancy{
		{ID: 1, RawText: "good"},
		{ID: 2, RawText: "bad"},
		{ID: 3, RawText: "not json"},
	}
	llm := &fakeLLM{
		responses: map[string]string{
			"good":     `{"erp_systems": "Exact", "automation_status": null}`,
			"not json": "I could not find any structured data.",
		},
		failFor: map[string]bool{"bad": true},
	}
	ps := newPassStore(testPrompt(), pending)

	r := NewRunner(ps, llm, cost.NewCalculator(nil), "m", 1024, 1)
	r.retryCfg.MaxAttempts = 1
	run, err := r.Run(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, 3, run.ItemsProcessed)
	assert.Equal(t, 1, run.ItemsSucceeded)
	assert.Equal(t, 2, run.ItemsFailed)
	assert.Equal(t, model.ExtractionCompleted, ps.updates[1])
	assert.Equal(t, model.ExtractionFailed, ps.updates[2])
	assert.Equal(t, model.ExtractionFailed, ps.updates[3])
}

func TestRunFatalWithoutActivePrompt(t *testing.T) {
	ps := newPassStore(nil, nil)
	r := NewRunner(ps, &fakeLLM{}, cost.NewCalculator(nil), "m", 1024, 1)
	_, err := r.Run(context.Background(), 1)
	assert.Error(t, err)
}

func TestParseObject(t *testing.T) {
	got, err := parseObject("prefix {\"a\": 1} suffix")
	require.NoError(t, err)
	assert.Equal(t, float64(1), got["a"])

	_, err = parseObject("no object here")
	assert.Error(t, err)
}
