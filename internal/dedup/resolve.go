package dedup

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/leadwerk/leadgen-cli/internal/model"
	"github.com/leadwerk/leadgen-cli/internal/store"
)

// Resolver maps raw employer names onto canonical company records.
type Resolver struct {
	store store.Store
}

// NewResolver creates a Resolver backed by the given store.
func NewResolver(s store.Store) *Resolver {
	return &Resolver{store: s}
}

// FindOrCreate returns the company whose normalized name matches the raw
// name, creating it when absent. An existing record is returned unchanged;
// its stored display name is not overwritten by later raw spellings.
// The boolean reports whether a new record was created.
func (r *Resolver) FindOrCreate(ctx context.Context, rawName string) (*model.Company, bool, error) {
	normalized := Normalize(rawName)
	if normalized == "" {
		return nil, false, eris.Errorf("dedup: name %q normalizes to empty", rawName)
	}

	existing, err := r.store.GetCompanyByNormalizedName(ctx, normalized)
	if err != nil {
		return nil, false, eris.Wrap(err, "dedup: lookup company")
	}
	if existing != nil {
		return existing, false, nil
	}

	c := &model.Company{Name: rawName, NormalizedName: normalized}
	inserted, err := r.store.InsertCompany(ctx, c)
	if err != nil {
		return nil, false, eris.Wrap(err, "dedup: insert company")
	}
	if inserted {
		return c, true, nil
	}

	// Lost an insert race; the winner's record is authoritative.
	existing, err = r.store.GetCompanyByNormalizedName(ctx, normalized)
	if err != nil {
		return nil, false, eris.Wrap(err, "dedup: lookup after insert conflict")
	}
	if existing == nil {
		return nil, false, eris.Errorf("dedup: company %q vanished after insert conflict", normalized)
	}
	return existing, false, nil
}
