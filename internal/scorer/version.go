package scorer

import (
	"context"
	"encoding/json"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/leadwerk/leadgen-cli/internal/model"
	"github.com/leadwerk/leadgen-cli/internal/store"
)

// ApplySpec is an operator-supplied partial config override, usually
// parsed from YAML. Absent fields inherit from the prior active version.
type ApplySpec struct {
	FitWeight      *float64       `yaml:"fit_weight"`
	TimingWeight   *float64       `yaml:"timing_weight"`
	FitCriteria    map[string]any `yaml:"fit_criteria"`
	TimingSignals  map[string]any `yaml:"timing_signals"`
	Thresholds     map[string]any `yaml:"thresholds"`
	MinimumFilters map[string]any `yaml:"minimum_filters"`
	Exclusions     map[string]any `yaml:"exclusions"`
}

// ParseApplySpec decodes an override file.
func ParseApplySpec(data []byte) (*ApplySpec, error) {
	var spec ApplySpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, eris.Wrap(err, "scorer: parse config override")
	}
	return &spec, nil
}

// ApplyVersion creates and activates a new config version for a profile:
// the override's fields layered over the prior active version, prior
// fields inherited where the override is silent. The new row's version
// number is assigned by the store; the prior version is deactivated.
func ApplyVersion(ctx context.Context, s store.Store, profileID int64, spec *ApplySpec) (*model.ScoringConfigRow, error) {
	prior, err := s.GetActiveScoringConfig(ctx, profileID)
	if err != nil {
		return nil, eris.Wrap(err, "scorer: load prior config")
	}

	row := &model.ScoringConfigRow{ProfileID: profileID}
	if prior != nil {
		row.FitWeight = prior.FitWeight
		row.TimingWeight = prior.TimingWeight
		row.FitCriteria = prior.FitCriteria
		row.TimingSignals = prior.TimingSignals
		row.Thresholds = prior.Thresholds
		row.MinimumFilters = prior.MinimumFilters
		row.Exclusions = prior.Exclusions
	} else {
		defaults := DefaultConfig()
		row.FitWeight = defaults.FitWeight
		row.TimingWeight = defaults.TimingWeight
	}

	if spec.FitWeight != nil {
		row.FitWeight = *spec.FitWeight
	}
	if spec.TimingWeight != nil {
		row.TimingWeight = *spec.TimingWeight
	}
	if err := ValidateWeights(row.FitWeight, row.TimingWeight); err != nil {
		return nil, err
	}

	sections := []struct {
		src map[string]any
		dst *[]byte
	}{
		{spec.FitCriteria, &row.FitCriteria},
		{spec.TimingSignals, &row.TimingSignals},
		{spec.Thresholds, &row.Thresholds},
		{spec.MinimumFilters, &row.MinimumFilters},
		{spec.Exclusions, &row.Exclusions},
	}
	for _, s := range sections {
		if s.src == nil {
			continue
		}
		blob, err := json.Marshal(s.src)
		if err != nil {
			return nil, eris.Wrap(err, "scorer: encode config section")
		}
		*s.dst = blob
	}

	// The merged row must decode into a valid typed config before it is
	// ever persisted.
	if _, err := ResolveConfig(row); err != nil {
		return nil, err
	}

	if err := s.CreateScoringConfigVersion(ctx, row); err != nil {
		return nil, eris.Wrap(err, "scorer: create version")
	}
	return row, nil
}
