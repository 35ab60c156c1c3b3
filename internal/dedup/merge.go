package dedup

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/leadwerk/leadgen-cli/internal/model"
	"github.com/leadwerk/leadgen-cli/internal/store"
)

// Merger collapses company records that share a registry number.
type Merger struct {
	store store.Store
}

// NewMerger creates a Merger backed by the given store.
func NewMerger(s store.Store) *Merger {
	return &Merger{store: s}
}

// MergeByRegistryNumber finds registry numbers held by two or more
// companies and merges each group into its oldest record. Each group is
// applied in its own transaction, so a failure leaves other groups merged.
// Returns the number of records deleted.
func (m *Merger) MergeByRegistryNumber(ctx context.Context) (int, error) {
	numbers, err := m.store.ListDuplicateRegistryNumbers(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "dedup: list duplicates")
	}

	merged := 0
	for _, number := range numbers {
		group, err := m.store.ListCompaniesByRegistryNumber(ctx, number)
		if err != nil {
			return merged, eris.Wrapf(err, "dedup: load group %s", number)
		}
		if len(group) < 2 {
			continue
		}

		survivor := &group[0]
		losers := group[1:]
		loserIDs := make([]int64, 0, len(losers))
		for i := range losers {
			fillMissing(survivor, &losers[i])
			loserIDs = append(loserIDs, losers[i].ID)
		}

		if err := m.store.MergeCompanies(ctx, survivor, loserIDs); err != nil {
			return merged, eris.Wrapf(err, "dedup: merge group %s", number)
		}
		merged += len(loserIDs)

		zap.L().Info("merged duplicate companies",
			zap.String("registry_number", number),
			zap.Int64("survivor_id", survivor.ID),
			zap.Int("absorbed", len(loserIDs)))
	}
	return merged, nil
}

// fillMissing copies enrichment fields from a loser into the survivor
// where the survivor has none. The survivor's populated fields always win.
func fillMissing(survivor, loser *model.Company) {
	if survivor.SBICodes == nil {
		survivor.SBICodes = loser.SBICodes
	}
	if survivor.EmployeeRange == nil {
		survivor.EmployeeRange = loser.EmployeeRange
	}
	if survivor.RevenueRange == nil {
		survivor.RevenueRange = loser.RevenueRange
	}
	if survivor.EntityCount == nil {
		survivor.EntityCount = loser.EntityCount
	}
	if survivor.RegistryData == nil {
		survivor.RegistryData = loser.RegistryData
	}
	if survivor.FirmographicData == nil {
		survivor.FirmographicData = loser.FirmographicData
	}
	if survivor.EnrichmentData == nil {
		survivor.EnrichmentData = loser.EnrichmentData
	}
}
