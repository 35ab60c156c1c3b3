package dedup

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadwerk/leadgen-cli/internal/model"
	"github.com/leadwerk/leadgen-cli/internal/store"
)

type mergeStore struct {
	store.Store

	duplicates []string
	groups     map[string][]model.Company

	mergedSurvivors []*model.Company
	mergedLosers    [][]int64
}

func (m *mergeStore) ListDuplicateRegistryNumbers(context.Context) ([]string, error) {
	return m.duplicates, nil
}

func (m *mergeStore) ListCompaniesByRegistryNumber(_ context.Context, n string) ([]model.Company, error) {
	return m.groups[n], nil
}

func (m *mergeStore) MergeCompanies(_ context.Context, survivor *model.Company, loserIDs []int64) error {
	m.mergedSurvivors = append(m.mergedSurvivors, survivor)
	m.mergedLosers = append(m.mergedLosers, loserIDs)
	return nil
}

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func TestMergeByRegistryNumber(t *testing.T) {
	base := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	ms := &mergeStore{
		duplicates: []string{"12345678"},
		groups: map[string][]model.Company{
			"12345678": {
				{ID: 1, CreatedAt: base, EmployeeRange: strPtr("50-99")},
				{ID: 2, CreatedAt: base.Add(time.Hour), RevenueRange: strPtr("10M-50M"), EntityCount: intPtr(3)},
				{ID: 3, CreatedAt: base.Add(2 * time.Hour), EmployeeRange: strPtr("100-199"), SBICodes: []string{"6201"}},
			},
		},
	}

	merged, err := NewMerger(ms).MergeByRegistryNumber(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, merged)

	require.Len(t, ms.mergedSurvivors, 1)
	survivor := ms.mergedSurvivors[0]
	assert.Equal(t, int64(1), survivor.ID)
	assert.Equal(t, []int64{2, 3}, ms.mergedLosers[0])

	// Survivor keeps its own employee range and fills gaps from losers.
	assert.Equal(t, "50-99", *survivor.EmployeeRange)
	assert.Equal(t, "10M-50M", *survivor.RevenueRange)
	assert.Equal(t, 3, *survivor.EntityCount)
	assert.Equal(t, []string{"6201"}, survivor.SBICodes)
}

func TestMergeByRegistryNumberNoDuplicates(t *testing.T) {
	ms := &mergeStore{}
	merged, err := NewMerger(ms).MergeByRegistryNumber(context.Background())
	require.NoError(t, err)
	assert.Zero(t, merged)
	assert.Empty(t, ms.mergedSurvivors)
}

func TestMergeSkipsSingletonGroups(t *testing.T) {
	ms := &mergeStore{
		duplicates: []string{"99999999"},
		groups: map[string][]model.Company{
			"99999999": {{ID: 4}},
		},
	}
	merged, err := NewMerger(ms).MergeByRegistryNumber(context.Background())
	require.NoError(t, err)
	assert.Zero(t, merged)
}
