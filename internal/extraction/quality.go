// Package extraction runs the LLM pass: structured field extraction from
// vacancy text against a versioned prompt schema.
package extraction

// Quality scores how completely an extraction filled the schema: the
// fraction of schema fields holding a usable value. An empty schema
// scores 0.
func Quality(extracted map[string]any, schema map[string]string) float64 {
	if len(schema) == 0 {
		return 0
	}
	filled := 0
	for field := range schema {
		if hasValue(extracted[field]) {
			filled++
		}
	}
	return float64(filled) / float64(len(schema))
}

func hasValue(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case string:
		return val != ""
	case []any:
		return len(val) > 0
	case []string:
		return len(val) > 0
	default:
		return true
	}
}

// CompanyQuality averages the quality of a company's completed
// extractions against the schema. No completed extractions scores 0.
func CompanyQuality(extractions []map[string]any, schema map[string]string) float64 {
	if len(extractions) == 0 {
		return 0
	}
	var total float64
	for _, e := range extractions {
		total += Quality(e, schema)
	}
	return total / float64(len(extractions))
}
