package budget

import (
	"fmt"

	"github.com/Overland-East-Bay/trip-budget-api/internal/domain"
)

type Report struct {
	Summary          string                     `json:"summary"`
	CategoryAnalysis map[domain.Category]string `json:"categoryAnalysis"`
	Recommendations  []string                   `json:"recommendations"`
}

// GenerateBudgetReport summarizes a breakdown for display.
func (c *Calculator) GenerateBudgetReport(b domain.BudgetBreakdown) Report {
	r := Report{
		Summary:          fmt.Sprintf("Total planned: %s | Remaining: %s", b.Total, b.Remaining),
		CategoryAnalysis: make(map[domain.Category]string, len(domain.AllCategories)),
		Recommendations:  make([]string, 0, 2),
	}

	largest := domain.AllCategories[0]
	for i, cat := range domain.AllCategories {
		amount := b.Categories.Get(cat)
		r.CategoryAnalysis[cat] = fmt.Sprintf("%s (%s)", amount, percentOf(amount, b.Total))
		// Later categories win ties.
		if i > 0 && !(b.Categories.Get(largest) > amount) {
			largest = cat
		}
	}
	r.Recommendations = append(r.Recommendations, fmt.Sprintf("%s is your largest expense category", largest))

	switch {
	case b.Remaining < 0:
		r.Recommendations = append(r.Recommendations, "Consider the optimization suggestions to reduce costs")
	case b.Remaining.Exceeds(b.Total, c.rules.RoomToGrowPercent, 100):
		r.Recommendations = append(r.Recommendations, "You have room to add more activities or upgrade experiences")
	}
	return r
}

type AlternativeOption struct {
	Category        string       `json:"category"`
	Suggestion      string       `json:"suggestion"`
	PotentialSaving domain.Money `json:"potentialSaving"`
}

type Adjustments struct {
	Recommendations    []string            `json:"recommendations"`
	AlternativeOptions []AlternativeOption `json:"alternativeOptions"`
}

var alternatives = []struct {
	category   string
	suggestion string
	percent    int64
}{
	{"Accommodation", "Consider hostels or shared accommodations instead of hotels", 40},
	{"Transport", "Use public transport or budget airlines instead of premium options", 30},
	{"Food", "Mix restaurant meals with local markets and street food", 20},
	{"Activities", "Focus on free or low-cost activities like hiking, museums on free days", 10},
}

// SuggestBudgetAdjustments explains how far the current plan is from the target and where the
// difference could plausibly come from.
func SuggestBudgetAdjustments(current, target domain.Money) Adjustments {
	diff := current - target
	out := Adjustments{
		Recommendations:    make([]string, 0, 2),
		AlternativeOptions: make([]AlternativeOption, 0, len(alternatives)),
	}
	if diff <= 0 {
		out.Recommendations = append(out.Recommendations,
			"Your current plan is within budget!",
			fmt.Sprintf("You have %s to spare for additional activities or upgrades.", diff.Abs()),
		)
		return out
	}

	out.Recommendations = append(out.Recommendations, fmt.Sprintf("You need to reduce costs by %s to meet your budget.", diff))
	for _, a := range alternatives {
		out.AlternativeOptions = append(out.AlternativeOptions, AlternativeOption{
			Category:        a.category,
			Suggestion:      a.suggestion,
			PotentialSaving: diff.Percent(a.percent),
		})
	}
	return out
}
