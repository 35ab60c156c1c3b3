package scorer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/leadwerk/leadgen-cli/internal/model"
)

var scoringNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func vacancyAged(days int, source, title string) model.Vacancy {
	seen := scoringNow.AddDate(0, 0, -days)
	return model.Vacancy{
		Source:      source,
		JobTitle:    title,
		FirstSeenAt: seen,
		LastSeenAt:  seen,
	}
}

func TestTimingScoreAllSignals(t *testing.T) {
	old := vacancyAged(90, "indeed", "Financieel Manager")
	old.LastSeenAt = old.FirstSeenAt.AddDate(0, 0, 30)
	vacancies := []model.Vacancy{
		old,
		vacancyAged(10, "linkedin", "Crediteurenbeheerder"),
	}

	got := TimingScore(vacancies, DefaultConfig().Timing, scoringNow)
	assert.InDelta(t, 100.0, got.Score, 1e-9)
	assert.Equal(t, 14.0, got.Breakdown["total_points"])
	assert.Equal(t, 14.0, got.Breakdown["max_points"])
}

func TestTimingScoreNoSignalsFired(t *testing.T) {
	vacancies := []model.Vacancy{vacancyAged(5, "indeed", "Administratief medewerker")}

	got := TimingScore(vacancies, DefaultConfig().Timing, scoringNow)
	assert.Zero(t, got.Score)

	age := got.Breakdown["vacancy_age_over_60_days"].(map[string]any)
	assert.Equal(t, 0.0, age["points"])
	assert.Equal(t, 5, age["value"])
}

func TestTimingScorePartial(t *testing.T) {
	// Only multiple_vacancies_same_role (4) and multi_platform (2) fire.
	vacancies := []model.Vacancy{
		vacancyAged(5, "indeed", "Medewerker crediteuren"),
		vacancyAged(3, "linkedin", "Medewerker crediteuren"),
	}
	got := TimingScore(vacancies, DefaultConfig().Timing, scoringNow)
	assert.InDelta(t, 42.9, got.Score, 1e-9)
}

func TestTimingScoreNoConfiguredSignals(t *testing.T) {
	got := TimingScore([]model.Vacancy{vacancyAged(90, "indeed", "Manager")}, TimingSignals{}, scoringNow)
	assert.Zero(t, got.Score)
}

func TestTimingAgePrefersPublishedAt(t *testing.T) {
	published := scoringNow.AddDate(0, 0, -70)
	v := vacancyAged(5, "indeed", "Boekhouder")
	v.PublishedAt = &published

	got := TimingScore([]model.Vacancy{v}, DefaultConfig().Timing, scoringNow)
	age := got.Breakdown["vacancy_age_over_60_days"].(map[string]any)
	assert.Equal(t, 3.0, age["points"])
	assert.Equal(t, 70, age["value"])
}

func TestManagementTitleDetection(t *testing.T) {
	tests := []struct {
		title string
		want  bool
	}{
		{"Teamleider Administratie", true},
		{"Hoofd Financiële Administratie", true},
		{"Senior Accountant", true},
		{"Finance Director", true},
		{"Crediteurenbeheerder", false},
	}
	for _, tt := range tests {
		got := anyManagementTitle([]model.Vacancy{{JobTitle: tt.title}})
		assert.Equal(t, tt.want, got, tt.title)
	}
}

func TestRepublishedRequiresMoreThanTwoWeeks(t *testing.T) {
	v := vacancyAged(30, "indeed", "x")
	v.LastSeenAt = v.FirstSeenAt.AddDate(0, 0, 14)
	assert.False(t, anyRepublished([]model.Vacancy{v}))

	v.LastSeenAt = v.FirstSeenAt.Add(14*24*time.Hour + time.Hour)
	assert.True(t, anyRepublished([]model.Vacancy{v}))
}
