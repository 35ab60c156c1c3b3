package main

import (
	"context"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/leadwerk/leadgen-cli/internal/apicache"
	"github.com/leadwerk/leadgen-cli/internal/cost"
	"github.com/leadwerk/leadgen-cli/internal/enrich"
	"github.com/leadwerk/leadgen-cli/internal/extraction"
	"github.com/leadwerk/leadgen-cli/internal/store"
	"github.com/leadwerk/leadgen-cli/pkg/anthropic"
	"github.com/leadwerk/leadgen-cli/pkg/apollo"
	"github.com/leadwerk/leadgen-cli/pkg/kvk"
)

// pipelineEnv holds the initialized store, API clients, and enrichment
// orchestrator shared by the enrich/serve commands.
type pipelineEnv struct {
	Store        *store.PostgresStore
	Cache        *apicache.Cache // may be nil
	Orchestrator *enrich.Orchestrator
}

// Close releases resources held by the pipeline environment.
func (pe *pipelineEnv) Close() {
	if pe.Cache != nil {
		_ = pe.Cache.Close()
	}
	if pe.Store != nil {
		_ = pe.Store.Close()
	}
}

// initStore connects to the database and applies migrations.
func initStore(ctx context.Context) (*store.PostgresStore, error) {
	if cfg.Store.DatabaseURL == "" {
		return nil, eris.New("store.database_url is required")
	}

	st, err := store.NewPostgres(ctx, cfg.Store.DatabaseURL, cfg.Store.MaxConns, cfg.Store.MinConns)
	if err != nil {
		return nil, eris.Wrap(err, "connect store")
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	return st, nil
}

// initPipeline sets up the store, external API clients, and the
// enrichment orchestrator. Callers should defer env.Close().
func initPipeline(ctx context.Context) (*pipelineEnv, error) {
	if cfg.Anthropic.Key == "" {
		return nil, eris.New("anthropic.key is required")
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	var cache *apicache.Cache
	if cfg.APICache.Enabled {
		cache, err = apicache.Open(cfg.APICache.Path, cfg.APICache.TTL())
		if err != nil {
			zap.L().Warn("api cache unavailable, external calls will not be cached", zap.Error(err))
			cache = nil
		}
	}

	llm := anthropic.NewClient(cfg.Anthropic.Key)
	calc := cost.NewCalculator(cost.DefaultRates())
	extractionRunner := extraction.NewRunner(st, llm, calc,
		cfg.Anthropic.Model, cfg.Anthropic.MaxTokens, cfg.Enrichment.ExtractionConcurrency)

	kvkOpts := []kvk.Option{
		kvk.WithBaseURL(cfg.KvK.BaseURL),
		kvk.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.KvK.TimeoutSecs) * time.Second}),
		kvk.WithRateLimit(cfg.KvK.RatePerSec),
	}
	apolloOpts := []apollo.Option{
		apollo.WithBaseURL(cfg.Apollo.BaseURL),
		apollo.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.Apollo.TimeoutSecs) * time.Second}),
		apollo.WithRateLimit(cfg.Apollo.RatePerSec),
	}
	if cache != nil {
		kvkOpts = append(kvkOpts, kvk.WithCache(cache))
		apolloOpts = append(apolloOpts, apollo.WithCache(cache))
	}

	registryClient := kvk.NewClient(cfg.KvK.Key, kvkOpts...)
	firmoClient := apollo.NewClient(cfg.Apollo.Key, apolloOpts...)
	externalRunner := enrich.NewExternalRunner(st, registryClient, firmoClient, cfg.Enrichment.MinQualityThreshold)

	return &pipelineEnv{
		Store:        st,
		Cache:        cache,
		Orchestrator: enrich.NewOrchestrator(extractionRunner, externalRunner),
	}, nil
}
