package extraction

import "strings"

// Sanitize filters a raw model response down to the prompt schema.
// Fields outside the schema are dropped. Lists keep their non-nil
// elements stringified; strings are trimmed, with blanks becoming nil;
// anything else is discarded. Missing fields stay nil so quality
// scoring counts them as unfilled.
func Sanitize(raw map[string]any, schema map[string]string) map[string]any {
	out := make(map[string]any, len(schema))
	for field := range schema {
		out[field] = sanitizeValue(raw[field])
	}
	return out
}

func sanitizeValue(v any) any {
	switch val := v.(type) {
	case []any:
		items := make([]string, 0, len(val))
		for _, item := range val {
			if item == nil {
				continue
			}
			if s, ok := item.(string); ok {
				if s = strings.TrimSpace(s); s != "" {
					items = append(items, s)
				}
			}
		}
		return items
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return nil
		}
		return s
	default:
		return nil
	}
}
