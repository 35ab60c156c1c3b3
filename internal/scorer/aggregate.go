package scorer

import (
	"strings"

	"github.com/leadwerk/leadgen-cli/internal/model"
)

// Extracted is a company's vacancy extractions merged per schema field.
// Every field carries all distinct values observed across vacancies.
type Extracted map[string][]string

// Aggregate merges the extracted data of a company's completed
// extractions. String values and list elements union per field, first
// occurrence order, duplicates dropped case-insensitively.
func Aggregate(vacancies []model.Vacancy) Extracted {
	out := Extracted{}
	for i := range vacancies {
		for field, value := range vacancies[i].ExtractedData {
			out[field] = unionDedup(out[field], stringValues(value))
		}
	}
	return out
}

// Values returns the merged values for a field.
func (e Extracted) Values(field string) []string {
	return e[field]
}

// Joined returns the merged values as one lowercased string for keyword
// scanning.
func (e Extracted) Joined(field string) string {
	return strings.ToLower(strings.Join(e[field], " "))
}

// Display renders the merged values for a breakdown, preferring the
// longest value as the most informative one.
func (e Extracted) Display(field string) string {
	return preferLongestString(e[field])
}

func stringValues(v any) []string {
	switch val := v.(type) {
	case string:
		if val == "" {
			return nil
		}
		return []string{val}
	case []string:
		return val
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func unionDedup(existing, incoming []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, s := range existing {
		seen[strings.ToLower(s)] = true
	}
	for _, s := range incoming {
		key := strings.ToLower(s)
		if !seen[key] {
			existing = append(existing, s)
			seen[key] = true
		}
	}
	return existing
}

func preferLongestString(values []string) string {
	best := ""
	for _, s := range values {
		if len(s) > len(best) {
			best = s
		}
	}
	return best
}
