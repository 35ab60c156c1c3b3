// Package harvest ingests job postings from external boards into the
// vacancy pipeline, creating canonical companies as they appear.
package harvest

import (
	"context"
	"time"

	"github.com/leadwerk/leadgen-cli/internal/model"
)

// Posting is the canonical form every source record adapts to.
type Posting struct {
	Source      string
	ExternalID  string
	CompanyName string
	JobTitle    string
	Location    string
	RawText     string
	PublishedAt *time.Time
}

// SourceRecord is one raw posting from a specific board. Each board has
// its own record type carrying the fields that board exposes.
type SourceRecord interface {
	// Posting adapts the record to the canonical form.
	Posting() Posting
}

// Source fetches postings for a search profile from one board.
type Source interface {
	Name() string
	Fetch(ctx context.Context, profile *model.SearchProfile) ([]SourceRecord, error)
}

// IndeedRecord is a posting from the Indeed feed.
type IndeedRecord struct {
	JobKey      string     `json:"jobkey"`
	Company     string     `json:"company"`
	Title       string     `json:"jobtitle"`
	City        string     `json:"formattedLocation"`
	Snippet     string     `json:"snippet"`
	Description string     `json:"description"`
	PubDate     *time.Time `json:"date"`
}

// Posting implements SourceRecord. Indeed's description falls back to
// the search snippet when the full text is missing.
func (r IndeedRecord) Posting() Posting {
	text := r.Description
	if text == "" {
		text = r.Snippet
	}
	return Posting{
		Source:      "indeed",
		ExternalID:  r.JobKey,
		CompanyName: r.Company,
		JobTitle:    r.Title,
		Location:    r.City,
		RawText:     text,
		PublishedAt: r.PubDate,
	}
}

// LinkedInRecord is a posting from the LinkedIn jobs feed.
type LinkedInRecord struct {
	URN             string     `json:"entityUrn"`
	CompanyName     string     `json:"companyName"`
	Title           string     `json:"title"`
	FormattedCity   string     `json:"formattedLocation"`
	DescriptionText string     `json:"descriptionText"`
	ListedAt        *time.Time `json:"listedAt"`
}

// Posting implements SourceRecord.
func (r LinkedInRecord) Posting() Posting {
	return Posting{
		Source:      "linkedin",
		ExternalID:  r.URN,
		CompanyName: r.CompanyName,
		JobTitle:    r.Title,
		Location:    r.FormattedCity,
		RawText:     r.DescriptionText,
		PublishedAt: r.ListedAt,
	}
}
