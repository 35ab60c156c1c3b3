package extraction

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/leadwerk/leadgen-cli/internal/cost"
	"github.com/leadwerk/leadgen-cli/internal/model"
	"github.com/leadwerk/leadgen-cli/internal/resilience"
	"github.com/leadwerk/leadgen-cli/internal/store"
	"github.com/leadwerk/leadgen-cli/pkg/anthropic"
)

// Runner executes the LLM extraction pass for one profile.
type Runner struct {
	store       store.Store
	llm         anthropic.Client
	calc        *cost.Calculator
	model       string
	maxTokens   int64
	concurrency int
	retryCfg    resilience.RetryConfig
}

// NewRunner creates an extraction Runner.
func NewRunner(s store.Store, llm anthropic.Client, calc *cost.Calculator, modelID string, maxTokens int64, concurrency int) *Runner {
	if concurrency <= 0 {
		concurrency = 5
	}
	cfg := resilience.DefaultRetryConfig()
	cfg.ShouldRetry = resilience.IsTransient
	cfg.OnRetry = resilience.RetryLogger("anthropic", "create message")
	return &Runner{
		store:       s,
		llm:         llm,
		calc:        calc,
		model:       modelID,
		maxTokens:   maxTokens,
		concurrency: concurrency,
		retryCfg:    cfg,
	}
}

// Run extracts structured data from every pending vacancy in the profile.
// A missing active prompt is fatal; a single vacancy failing is not.
func (r *Runner) Run(ctx context.Context, profileID int64) (*model.EnrichmentRun, error) {
	prompt, err := r.store.GetActivePrompt(ctx, profileID)
	if err != nil {
		return nil, eris.Wrap(err, "extraction: load prompt")
	}
	if prompt == nil {
		return nil, eris.Errorf("extraction: no active prompt for profile %d", profileID)
	}

	pending, err := r.store.ListPendingExtraction(ctx, profileID)
	if err != nil {
		return nil, eris.Wrap(err, "extraction: list pending")
	}

	run := &model.EnrichmentRun{
		ID:        uuid.New(),
		ProfileID: profileID,
		PassType:  "llm",
		Status:    model.RunRunning,
	}
	if err := r.store.CreateEnrichmentRun(ctx, run); err != nil {
		return nil, eris.Wrap(err, "extraction: create run")
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for i := range pending {
		v := pending[i]
		g.Go(func() error {
			usage, err := r.extractOne(gctx, &v, prompt, run.ID)

			mu.Lock()
			defer mu.Unlock()
			run.ItemsProcessed++
			if err != nil {
				run.ItemsFailed++
				zap.L().Warn("vacancy extraction failed",
					zap.Int64("vacancy_id", v.ID),
					zap.Error(err))
				return nil
			}
			run.ItemsSucceeded++
			run.TokensInput += usage.InputTokens
			run.TokensOutput += usage.OutputTokens
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return run, eris.Wrap(err, "extraction: batch")
	}

	run.CostUSD = r.calc.Claude(r.model, run.TokensInput, run.TokensOutput)
	run.Status = model.RunCompleted
	now := time.Now().UTC()
	run.CompletedAt = &now
	if err := r.store.UpdateEnrichmentRun(ctx, run); err != nil {
		return run, eris.Wrap(err, "extraction: finalize run")
	}

	if err := r.refreshQuality(ctx, profileID, prompt.Schema); err != nil {
		return run, err
	}

	zap.L().Info("extraction pass complete",
		zap.Int64("profile_id", profileID),
		zap.Int("processed", run.ItemsProcessed),
		zap.Int("succeeded", run.ItemsSucceeded),
		zap.Int("failed", run.ItemsFailed),
		zap.Float64("cost_usd", run.CostUSD))
	return run, nil
}

func (r *Runner) extractOne(ctx context.Context, v *model.Vacancy, prompt *model.ExtractionPrompt, runID uuid.UUID) (anthropic.TokenUsage, error) {
	req := anthropic.MessageRequest{
		Model:     r.model,
		MaxTokens: r.maxTokens,
		System: []anthropic.SystemBlock{
			{Text: prompt.SystemPrompt, CacheControl: &anthropic.CacheControl{TTL: "5m"}},
			{Text: schemaInstructions(prompt.Schema)},
		},
		Messages: []anthropic.Message{
			{Role: "user", Content: v.RawText},
		},
	}

	resp, err := resilience.DoVal(ctx, r.retryCfg, func(ctx context.Context) (*anthropic.MessageResponse, error) {
		return r.llm.CreateMessage(ctx, req)
	})
	if err != nil {
		r.markFailed(ctx, v.ID, runID)
		return anthropic.TokenUsage{}, err
	}

	raw, err := parseObject(resp.Text())
	if err != nil {
		r.markFailed(ctx, v.ID, runID)
		return resp.Usage, err
	}

	data := Sanitize(raw, prompt.Schema)
	if err := r.store.UpdateVacancyExtraction(ctx, v.ID, data, model.ExtractionCompleted, runID); err != nil {
		return resp.Usage, eris.Wrapf(err, "extraction: store result for vacancy %d", v.ID)
	}
	return resp.Usage, nil
}

func (r *Runner) markFailed(ctx context.Context, vacancyID int64, runID uuid.UUID) {
	if err := r.store.UpdateVacancyExtraction(ctx, vacancyID, nil, model.ExtractionFailed, runID); err != nil {
		zap.L().Error("failed to mark vacancy extraction failed",
			zap.Int64("vacancy_id", vacancyID),
			zap.Error(err))
	}
}

// refreshQuality recomputes the averaged extraction quality for every
// company with completed extractions in the profile.
func (r *Runner) refreshQuality(ctx context.Context, profileID int64, schema map[string]string) error {
	ids, err := r.store.ListCompanyIDsWithCompletedExtraction(ctx, profileID)
	if err != nil {
		return eris.Wrap(err, "extraction: list companies for quality refresh")
	}
	for _, companyID := range ids {
		vacancies, err := r.store.ListCompletedExtractionVacancies(ctx, companyID, profileID)
		if err != nil {
			return eris.Wrapf(err, "extraction: load extractions for company %d", companyID)
		}
		extractions := make([]map[string]any, 0, len(vacancies))
		for i := range vacancies {
			extractions = append(extractions, vacancies[i].ExtractedData)
		}
		quality := CompanyQuality(extractions, schema)
		if err := r.store.UpdateCompanyQuality(ctx, companyID, quality); err != nil {
			return eris.Wrapf(err, "extraction: update quality for company %d", companyID)
		}
	}
	return nil
}

// schemaInstructions renders the schema as extraction instructions with a
// strict JSON-only output contract.
func schemaInstructions(schema map[string]string) string {
	var b strings.Builder
	b.WriteString("Extract the following fields from the vacancy text. ")
	b.WriteString("Respond with a single JSON object containing exactly these keys. ")
	b.WriteString("Use null for fields the text does not support.\n\n")
	for _, field := range sortedKeys(schema) {
		fmt.Fprintf(&b, "- %s: %s\n", field, schema[field])
	}
	return b.String()
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// parseObject pulls the first JSON object out of a model response,
// tolerating code fences and surrounding prose.
func parseObject(text string) (map[string]any, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, eris.New("extraction: response contains no JSON object")
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(text[start:end+1]), &out); err != nil {
		return nil, eris.Wrap(err, "extraction: decode response")
	}
	return out, nil
}
