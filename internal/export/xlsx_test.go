package export

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/leadwerk/leadgen-cli/internal/model"
	"github.com/leadwerk/leadgen-cli/internal/store"
)

func TestWriteLeadsXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leads.xlsx")
	scored := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

	leads := []store.LeadRow{
		{
			Lead: model.Lead{
				CompositeScore:    91.4,
				FitScore:          88.0,
				TimingScore:       96.5,
				Status:            model.LeadHot,
				VacancyCount:      3,
				OldestVacancyDays: 75,
				PlatformCount:     2,
				ScoredAt:          scored,
			},
			CompanyName: "Jansen Bouw B.V.",
		},
		{
			Lead:        model.Lead{CompositeScore: 41.2, Status: model.LeadMonitor, ScoredAt: scored},
			CompanyName: "De Vries Logistiek",
		},
	}

	require.NoError(t, WriteLeadsXLSX(path, leads))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	sheet, ok := f.Sheet["Leads"]
	require.True(t, ok)
	require.Len(t, sheet.Rows, 3)

	assert.Equal(t, "Company", sheet.Rows[0].Cells[0].String())
	assert.Equal(t, "Jansen Bouw B.V.", sheet.Rows[1].Cells[0].String())
	assert.Equal(t, "hot", sheet.Rows[1].Cells[1].String())

	composite, err := sheet.Rows[1].Cells[2].Float()
	require.NoError(t, err)
	assert.InDelta(t, 91.4, composite, 1e-9)

	assert.Equal(t, "2026-03-01 09:30", sheet.Rows[1].Cells[8].String())
	assert.Equal(t, "monitor", sheet.Rows[2].Cells[1].String())
}

func TestWriteLeadsXLSXEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	require.NoError(t, WriteLeadsXLSX(path, nil))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, f.Sheet["Leads"].Rows, 1, "header only")
}
