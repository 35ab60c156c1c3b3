package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	schema := map[string]string{
		"erp_systems":         "",
		"complexity_signals": "",
		"team_size":          "",
	}

	raw := map[string]any{
		"erp_systems":         "  SAP  ",
		"complexity_signals": []any{"international", nil, "  ", "multi-entity"},
		"team_size":          float64(12),
		"hallucinated_field": "dropped",
	}

	got := Sanitize(raw, schema)

	assert.Equal(t, "SAP", got["erp_systems"])
	assert.Equal(t, []string{"international", "multi-entity"}, got["complexity_signals"])
	assert.Nil(t, got["team_size"], "non-string scalars are discarded")
	assert.NotContains(t, got, "hallucinated_field")
	assert.Len(t, got, len(schema))
}

func TestSanitizeMissingAndBlank(t *testing.T) {
	schema := map[string]string{"a": "", "b": ""}
	got := Sanitize(map[string]any{"a": "   "}, schema)
	assert.Nil(t, got["a"])
	assert.Nil(t, got["b"])
}
