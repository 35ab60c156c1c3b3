// Package export renders scored leads to files for handoff to sales.
package export

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/leadwerk/leadgen-cli/internal/store"
)

var leadHeader = []string{
	"Company",
	"Status",
	"Composite",
	"Fit",
	"Timing",
	"Vacancies",
	"Oldest (days)",
	"Platforms",
	"Scored At",
}

// WriteLeadsXLSX writes the leads to path as a single-sheet workbook,
// one row per lead in the order given.
func WriteLeadsXLSX(path string, leads []store.LeadRow) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Leads")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, name := range leadHeader {
		header.AddCell().SetString(name)
	}

	for _, lead := range leads {
		row := sheet.AddRow()
		row.AddCell().SetString(lead.CompanyName)
		row.AddCell().SetString(string(lead.Status))
		row.AddCell().SetFloat(lead.CompositeScore)
		row.AddCell().SetFloat(lead.FitScore)
		row.AddCell().SetFloat(lead.TimingScore)
		row.AddCell().SetInt(lead.VacancyCount)
		row.AddCell().SetInt(lead.OldestVacancyDays)
		row.AddCell().SetInt(lead.PlatformCount)
		row.AddCell().SetString(lead.ScoredAt.UTC().Format("2006-01-02 15:04"))
	}

	if err := f.Save(path); err != nil {
		return eris.Wrap(err, "export: save workbook")
	}
	return nil
}
