package harvest

import (
	"context"
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"

	"github.com/leadwerk/leadgen-cli/internal/model"
)

// FeedSource reads already-fetched postings from a JSON feed file. The
// file holds an array of raw board records in that board's field names.
type FeedSource struct {
	name string
	path string
}

// NewFeedSource creates a FeedSource for a known board.
func NewFeedSource(name, path string) (*FeedSource, error) {
	switch name {
	case "indeed", "linkedin":
		return &FeedSource{name: name, path: path}, nil
	default:
		return nil, eris.Errorf("harvest: unknown source %q (want indeed or linkedin)", name)
	}
}

// Name implements Source.
func (f *FeedSource) Name() string { return f.name }

// Fetch implements Source. The profile is unused; feed files are
// pre-scoped to a profile's search.
func (f *FeedSource) Fetch(_ context.Context, _ *model.SearchProfile) ([]SourceRecord, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, eris.Wrapf(err, "harvest: read feed %s", f.path)
	}

	switch f.name {
	case "indeed":
		var records []IndeedRecord
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, eris.Wrapf(err, "harvest: decode indeed feed %s", f.path)
		}
		out := make([]SourceRecord, len(records))
		for i, r := range records {
			out[i] = r
		}
		return out, nil
	default:
		var records []LinkedInRecord
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, eris.Wrapf(err, "harvest: decode linkedin feed %s", f.path)
		}
		out := make([]SourceRecord, len(records))
		for i, r := range records {
			out[i] = r
		}
		return out, nil
	}
}
