package enrich

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/leadwerk/leadgen-cli/internal/extraction"
	"github.com/leadwerk/leadgen-cli/internal/model"
)

// Pass selects which enrichment passes an invocation runs.
type Pass string

const (
	PassLLM      Pass = "llm"
	PassExternal Pass = "external"
	PassBoth     Pass = "both"
)

// ParsePass validates a pass flag value.
func ParsePass(s string) (Pass, error) {
	switch Pass(s) {
	case PassLLM, PassExternal, PassBoth:
		return Pass(s), nil
	default:
		return "", eris.Errorf("enrich: unknown pass %q (want llm, external, or both)", s)
	}
}

// Orchestrator sequences the LLM pass ahead of the external pass, so
// extraction quality is fresh when the external pass selects candidates.
type Orchestrator struct {
	extraction *extraction.Runner
	external   *ExternalRunner
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(extractionRunner *extraction.Runner, externalRunner *ExternalRunner) *Orchestrator {
	return &Orchestrator{extraction: extractionRunner, external: externalRunner}
}

// Result collects the run records of one invocation.
type Result struct {
	LLM      *model.EnrichmentRun
	External *model.EnrichmentRun
}

// Run executes the requested passes for a profile.
func (o *Orchestrator) Run(ctx context.Context, profileID int64, pass Pass) (*Result, error) {
	result := &Result{}

	if pass == PassLLM || pass == PassBoth {
		run, err := o.extraction.Run(ctx, profileID)
		result.LLM = run
		if err != nil {
			return result, eris.Wrap(err, "enrich: llm pass")
		}
	}

	if pass == PassExternal || pass == PassBoth {
		run, err := o.external.Run(ctx, profileID)
		result.External = run
		if err != nil {
			return result, eris.Wrap(err, "enrich: external pass")
		}
	}

	return result, nil
}
