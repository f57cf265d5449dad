package budget

import (
	"fmt"
	"sort"

	"github.com/Overland-East-Bay/trip-budget-api/internal/domain"
)

const withinLimitsChange = "Budget is already within limits"

// OptimizationResult is the outcome of a greedy reduction pass.
type OptimizationResult struct {
	Itinerary domain.Itinerary `json:"optimizedItinerary"`
	Savings   domain.Money     `json:"savings"`
	// Overage is the amount the input exceeded the target by (zero or negative when within it).
	Overage domain.Money `json:"overage"`
	Changes []string     `json:"changes"`
}

// FullyResolved reports whether the savings closed the whole overage.
func (r OptimizationResult) FullyResolved() bool {
	return r.Savings >= r.Overage
}

// OptimizeBudget greedily reduces costs until the itinerary fits targetBudget or every
// per-item cap is exhausted. Days are processed in order; within a day accommodation is
// reduced first, then the costlier half of the activities, then meals. The input is never
// mutated. The result is not guaranteed to close the overage.
func (c *Calculator) OptimizeBudget(it domain.Itinerary, targetBudget domain.Money) OptimizationResult {
	current := c.CalculateTripBudget(it, domain.Trip{TotalBudget: targetBudget})
	overage := current.Total - targetBudget
	if overage <= 0 {
		return OptimizationResult{
			Itinerary: it,
			Savings:   0,
			Overage:   overage,
			Changes:   []string{withinLimitsChange},
		}
	}

	out := it.Clone()
	o := reducer{remaining: overage, changes: make([]string, 0)}

	for i := range out.Days {
		day := &out.Days[i]
		touched := false

		if day.Accommodation != nil && o.remaining > 0 {
			if saving := o.cut(&day.Accommodation.TotalCost, c.rules.AccommodationCutPercent); saving > 0 {
				o.logf("Reduced accommodation cost by %s on %s", saving, day.Date.UTC().Format("Mon Jan 02 2006"))
				touched = true
			}
		}

		if o.remaining > 0 && len(day.Activities) > 0 {
			for _, idx := range costliestHalf(day.Activities) {
				if o.remaining <= 0 {
					break
				}
				a := &day.Activities[idx]
				if saving := o.cut(&a.Cost, c.rules.ActivityCutPercent); saving > 0 {
					o.logf("Found cheaper alternative for %s (saved %s)", a.Name, saving)
					touched = true
				}
			}
		}

		if o.remaining > 0 {
			for j := range day.Meals {
				if o.remaining <= 0 {
					break
				}
				m := &day.Meals[j]
				if saving := o.cut(&m.Cost, c.rules.MealCutPercent); saving > 0 {
					o.logf("Found budget-friendly option for %s (saved %s)", m.Name, saving)
					touched = true
				}
			}
		}

		if touched {
			day.RecomputeTotal()
		}
	}

	return OptimizationResult{
		Itinerary: out,
		Savings:   o.saved,
		Overage:   overage,
		Changes:   o.changes,
	}
}

type reducer struct {
	remaining domain.Money
	saved     domain.Money
	changes   []string
}

// cut reduces *cost by at most pct% of itself (floored to whole cents), bounded by what is
// still left to save. Negative costs are left alone.
func (r *reducer) cut(cost *domain.Money, pct int64) domain.Money {
	maxSaving := cost.NonNegative().Percent(pct)
	saving := domain.MinMoney(maxSaving, r.remaining)
	if saving <= 0 {
		return 0
	}
	*cost -= saving
	r.remaining -= saving
	r.saved += saving
	return saving
}

func (r *reducer) logf(format string, args ...any) {
	r.changes = append(r.changes, fmt.Sprintf(format, args...))
}

// costliestHalf returns the indices of the ceil(n/2) most expensive activities, in their
// original order. Equal costs keep their original relative order.
func costliestHalf(activities []domain.Activity) []int {
	idx := make([]int, len(activities))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return activities[idx[a]].Cost > activities[idx[b]].Cost
	})
	picked := idx[:(len(idx)+1)/2]
	sort.Ints(picked)
	return picked
}
