package budget

import (
	"fmt"

	"github.com/Overland-East-Bay/trip-budget-api/internal/domain"
)

// SpendingVariance compares actual spend against a planned breakdown.
type SpendingVariance struct {
	// Variance is actual - planned for each of the six categories.
	Variance map[domain.Category]domain.Money `json:"variance"`
	// ProjectedTotal is actual + (planned - actual), which always equals the planned total.
	ProjectedTotal domain.Money         `json:"projectedTotal"`
	Actual         domain.Money         `json:"actualTotal"`
	Alerts         []domain.BudgetAlert `json:"alerts"`
}

// TrackRealTimeSpending reports per-category variance against the plan and raises alerts for
// categories running more than the configured percentage over, and for a total overrun.
func (c *Calculator) TrackRealTimeSpending(planned domain.BudgetBreakdown, actual map[domain.Category]domain.Money) SpendingVariance {
	now := c.clock.Now()
	out := SpendingVariance{
		Variance: make(map[domain.Category]domain.Money, len(domain.AllCategories)),
		Alerts:   make([]domain.BudgetAlert, 0),
	}

	for _, cat := range domain.AllCategories {
		p := planned.Categories.Get(cat)
		v := actual[cat] - p
		out.Variance[cat] = v
		if v.Exceeds(p, c.rules.CategoryVariancePercent, 100) {
			out.Alerts = append(out.Alerts, domain.BudgetAlert{
				Type:      domain.AlertTypeWarning,
				Category:  cat,
				Message:   fmt.Sprintf("%s spending is %s over planned", cat, v.Abs()),
				Amount:    v.Abs(),
				Timestamp: now,
			})
		}
	}

	var actualTotal domain.Money
	for _, v := range actual {
		actualTotal += v
	}
	plannedTotal := planned.Total
	out.Actual = actualTotal
	out.ProjectedTotal = actualTotal + (plannedTotal - actualTotal)

	if actualTotal.Exceeds(plannedTotal, c.rules.TotalOverrunPercent, 100) {
		out.Alerts = append(out.Alerts, domain.BudgetAlert{
			Type:      domain.AlertTypeExceeded,
			Category:  domain.CategoryMiscellaneous,
			Message:   "Total spending significantly over budget",
			Amount:    actualTotal - plannedTotal,
			Timestamp: now,
		})
	}

	return out
}

// SumExpenses totals recorded expenses per category.
func SumExpenses(expenses []domain.Expense) map[domain.Category]domain.Money {
	out := make(map[domain.Category]domain.Money, len(domain.AllCategories))
	for _, e := range expenses {
		out[e.Category] += e.Amount
	}
	return out
}
