package budget

import (
	"fmt"

	"github.com/Overland-East-Bay/trip-budget-api/internal/domain"
	"github.com/Overland-East-Bay/trip-budget-api/internal/ports/out/clock"
)

// Calculator aggregates itinerary costs, raises alerts and optimizes itineraries against a target.
// It holds no mutable state and is safe for concurrent use.
type Calculator struct {
	clock clock.Clock
	rules Rules
}

func NewCalculator(clk clock.Clock, rules Rules) *Calculator {
	return &Calculator{clock: clk, rules: rules}
}

// Rules returns the rule set the calculator was built with.
func (c *Calculator) Rules() Rules { return c.rules }

// CalculateTripBudget aggregates an itinerary into a breakdown against the trip's budget.
// Days sharing a date accumulate into one daily entry.
func (c *Calculator) CalculateTripBudget(it domain.Itinerary, trip domain.Trip) domain.BudgetBreakdown {
	var cats domain.Categories
	daily := make(map[string]domain.Money, len(it.Days))

	for _, day := range it.Days {
		var dayTotal domain.Money
		if day.Accommodation != nil {
			cats.Accommodation += day.Accommodation.TotalCost
			dayTotal += day.Accommodation.TotalCost
		}
		for _, t := range day.Transport {
			cats.Transport += t.Cost
			dayTotal += t.Cost
		}
		for _, m := range day.Meals {
			cats.Food += m.Cost
			dayTotal += m.Cost
		}
		for _, a := range day.Activities {
			cats.Activities += a.Cost
			dayTotal += a.Cost
		}
		daily[day.DateKey()] += dayTotal
	}

	total := cats.Sum()
	remaining := trip.TotalBudget - total

	return domain.BudgetBreakdown{
		Total:      total,
		Categories: cats,
		Daily:      daily,
		Remaining:  remaining,
		Alerts:     c.GenerateBudgetAlerts(cats, trip.TotalBudget, remaining),
	}
}

// GenerateBudgetAlerts evaluates the alert rules in fixed order: overrun or near-limit,
// per-category ceilings, then surplus recommendation.
func (c *Calculator) GenerateBudgetAlerts(cats domain.Categories, totalBudget, remaining domain.Money) []domain.BudgetAlert {
	now := c.clock.Now()
	total := cats.Sum()
	alerts := make([]domain.BudgetAlert, 0)

	if remaining < 0 {
		over := remaining.Abs()
		alerts = append(alerts, domain.BudgetAlert{
			Type:      domain.AlertTypeExceeded,
			Category:  domain.CategoryMiscellaneous,
			Message:   fmt.Sprintf("Budget exceeded by %s", over),
			Amount:    over,
			Timestamp: now,
		})
	} else if totalBudget > 0 && total.Exceeds(totalBudget, c.rules.NearLimitPercent, 100) {
		alerts = append(alerts, domain.BudgetAlert{
			Type:      domain.AlertTypeWarning,
			Category:  domain.CategoryMiscellaneous,
			Message:   fmt.Sprintf("Only %s remaining (%s of budget)", remaining, percentOf(remaining, totalBudget)),
			Amount:    remaining,
			Timestamp: now,
		})
	}

	for _, cl := range c.rules.ceilings() {
		spend := cats.Get(cl.category)
		if !spend.Exceeds(totalBudget, cl.percent, 100) {
			continue
		}
		limit := totalBudget.Percent(cl.percent)
		alerts = append(alerts, domain.BudgetAlert{
			Type:      domain.AlertTypeWarning,
			Category:  cl.category,
			Message:   fmt.Sprintf("%s spending (%s) exceeds recommended limit (%s)", cl.category, spend, limit),
			Amount:    spend - limit,
			Timestamp: now,
		})
	}

	if remaining.Exceeds(totalBudget, c.rules.SurplusPercent, 100) {
		alerts = append(alerts, domain.BudgetAlert{
			Type:      domain.AlertTypeRecommendation,
			Category:  domain.CategoryActivities,
			Message:   fmt.Sprintf("You have %s extra budget. Consider adding more activities or upgrading accommodations.", remaining),
			Amount:    remaining,
			Timestamp: now,
		})
	}

	return alerts
}

// CalculateDailyCosts estimates a day's cost from nightly accommodation rates rather than
// the booked total.
func CalculateDailyCosts(day domain.ItineraryDay) domain.Money {
	var sum domain.Money
	for _, a := range day.Activities {
		sum += a.Cost
	}
	for _, m := range day.Meals {
		sum += m.Cost
	}
	if day.Accommodation != nil {
		sum += day.Accommodation.CostPerNight
	}
	for _, t := range day.Transport {
		sum += t.Cost
	}
	return sum
}

// percentOf renders part/whole as a one-decimal percentage, "0.0%" when whole is zero.
func percentOf(part, whole domain.Money) string {
	if whole == 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", float64(part)/float64(whole)*100)
}
