package extraction

import (
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// PromptSpec is an operator-supplied extraction prompt, usually parsed
// from YAML. Applying one creates a new active prompt version.
type PromptSpec struct {
	SystemPrompt string            `yaml:"system_prompt"`
	Schema       map[string]string `yaml:"schema"`
}

// ParsePromptSpec decodes and validates a prompt file. The schema maps
// field names to the descriptions the extraction call presents to the
// model, so both sides must be non-empty.
func ParsePromptSpec(data []byte) (*PromptSpec, error) {
	var spec PromptSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, eris.Wrap(err, "extraction: parse prompt spec")
	}
	if strings.TrimSpace(spec.SystemPrompt) == "" {
		return nil, eris.New("extraction: prompt spec needs a system_prompt")
	}
	if len(spec.Schema) == 0 {
		return nil, eris.New("extraction: prompt spec needs at least one schema field")
	}
	for field, description := range spec.Schema {
		if strings.TrimSpace(field) == "" || strings.TrimSpace(description) == "" {
			return nil, eris.Errorf("extraction: schema field %q needs a description", field)
		}
	}
	return &spec, nil
}
