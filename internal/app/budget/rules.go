package budget

import (
	"fmt"

	"github.com/Overland-East-Bay/trip-budget-api/internal/domain"
)

// Ceilings are the recommended per-category spending caps, as whole percentages of the trip budget.
type Ceilings struct {
	Accommodation int64 `toml:"accommodation"`
	Transport     int64 `toml:"transport"`
	Food          int64 `toml:"food"`
	Activities    int64 `toml:"activities"`
}

// Rules holds the percentages driving alerts, optimization and reporting.
// All values are whole percentages.
type Rules struct {
	// NearLimitPercent triggers the "only X remaining" warning when spend exceeds it.
	NearLimitPercent int64 `toml:"near_limit_percent"`
	// SurplusPercent triggers the "extra budget" recommendation when remaining exceeds it.
	SurplusPercent int64    `toml:"surplus_percent"`
	Ceilings       Ceilings `toml:"ceilings"`

	AccommodationCutPercent int64 `toml:"accommodation_cut_percent"`
	ActivityCutPercent      int64 `toml:"activity_cut_percent"`
	MealCutPercent          int64 `toml:"meal_cut_percent"`

	CategoryVariancePercent int64 `toml:"category_variance_percent"`
	TotalOverrunPercent     int64 `toml:"total_overrun_percent"`

	// RoomToGrowPercent is the remaining/total ratio above which reports suggest upgrades.
	RoomToGrowPercent int64 `toml:"room_to_grow_percent"`
}

func DefaultRules() Rules {
	return Rules{
		NearLimitPercent: 90,
		SurplusPercent:   20,
		Ceilings: Ceilings{
			Accommodation: 40,
			Transport:     30,
			Food:          20,
			Activities:    10,
		},
		AccommodationCutPercent: 30,
		ActivityCutPercent:      20,
		MealCutPercent:          15,
		CategoryVariancePercent: 10,
		TotalOverrunPercent:     110,
		RoomToGrowPercent:       15,
	}
}

type ceiling struct {
	category domain.Category
	percent  int64
}

// ceilings returns the capped categories in fixed alert order.
func (r Rules) ceilings() []ceiling {
	return []ceiling{
		{domain.CategoryAccommodation, r.Ceilings.Accommodation},
		{domain.CategoryTransport, r.Ceilings.Transport},
		{domain.CategoryFood, r.Ceilings.Food},
		{domain.CategoryActivities, r.Ceilings.Activities},
	}
}

// Validate rejects rule sets that would break the optimizer's non-negativity guarantee
// or produce nonsensical alerts.
func (r Rules) Validate() error {
	pcts := map[string]int64{
		"near_limit_percent":        r.NearLimitPercent,
		"surplus_percent":           r.SurplusPercent,
		"ceilings.accommodation":    r.Ceilings.Accommodation,
		"ceilings.transport":        r.Ceilings.Transport,
		"ceilings.food":             r.Ceilings.Food,
		"ceilings.activities":       r.Ceilings.Activities,
		"accommodation_cut_percent": r.AccommodationCutPercent,
		"activity_cut_percent":      r.ActivityCutPercent,
		"meal_cut_percent":          r.MealCutPercent,
		"category_variance_percent": r.CategoryVariancePercent,
		"room_to_grow_percent":      r.RoomToGrowPercent,
	}
	for name, v := range pcts {
		if v < 0 || v > 100 {
			return fmt.Errorf("budget rules: %s must be within [0,100], got %d", name, v)
		}
	}
	if r.TotalOverrunPercent < 100 {
		return fmt.Errorf("budget rules: total_overrun_percent must be >= 100, got %d", r.TotalOverrunPercent)
	}
	return nil
}
