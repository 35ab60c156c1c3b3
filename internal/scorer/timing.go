package scorer

import (
	"strings"
	"time"

	"github.com/leadwerk/leadgen-cli/internal/model"
)

// TimingResult is a timing score with its per-signal breakdown.
type TimingResult struct {
	Score     float64
	Breakdown map[string]any
}

var managementTitleWords = []string{"manager", "teamleider", "hoofd", "director", "lead", "senior"}

// TimingScore rates hiring urgency as earned points over the configured
// maximum, on a 0-100 scale. No configured signals scores 0.
func TimingScore(vacancies []model.Vacancy, signals TimingSignals, now time.Time) TimingResult {
	breakdown := map[string]any{}
	var earned, maximum float64

	add := func(name string, points float64, fired bool, value any) {
		maximum += points
		got := 0.0
		if fired {
			got = points
			earned += points
		}
		breakdown[name] = map[string]any{"points": got, "value": value}
	}

	if p := signals.VacancyAgeOver60Days; p != nil {
		oldest := oldestAgeDays(vacancies, now)
		add("vacancy_age_over_60_days", *p, oldest > 60, oldest)
	}
	if p := signals.MultipleVacanciesSameRole; p != nil {
		add("multiple_vacancies_same_role", *p, len(vacancies) >= 2, len(vacancies))
	}
	if p := signals.RepeatedPublication; p != nil {
		add("repeated_publication", *p, anyRepublished(vacancies), nil)
	}
	if p := signals.MultiPlatform; p != nil {
		platforms := distinctSources(vacancies)
		add("multi_platform", *p, platforms >= 2, platforms)
	}
	if p := signals.ManagementVacancy; p != nil {
		add("management_vacancy", *p, anyManagementTitle(vacancies), nil)
	}

	breakdown["max_points"] = maximum
	breakdown["total_points"] = earned

	if maximum == 0 {
		return TimingResult{Score: 0, Breakdown: breakdown}
	}
	return TimingResult{Score: round1(earned / maximum * 100), Breakdown: breakdown}
}

// oldestAgeDays returns the age in days of the oldest posting.
func oldestAgeDays(vacancies []model.Vacancy, now time.Time) int {
	oldest := 0
	for i := range vacancies {
		days := int(now.UTC().Sub(vacancies[i].AgeDate()).Hours() / 24)
		if days > oldest {
			oldest = days
		}
	}
	return oldest
}

// anyRepublished reports whether any posting stayed visible for more
// than two weeks, a sign the role is not getting filled.
func anyRepublished(vacancies []model.Vacancy) bool {
	for i := range vacancies {
		if vacancies[i].LastSeenAt.Sub(vacancies[i].FirstSeenAt) > 14*24*time.Hour {
			return true
		}
	}
	return false
}

func distinctSources(vacancies []model.Vacancy) int {
	sources := map[string]bool{}
	for i := range vacancies {
		sources[vacancies[i].Source] = true
	}
	return len(sources)
}

func anyManagementTitle(vacancies []model.Vacancy) bool {
	for i := range vacancies {
		title := strings.ToLower(vacancies[i].JobTitle)
		for _, word := range managementTitleWords {
			if strings.Contains(title, word) {
				return true
			}
		}
	}
	return false
}
