package itineraries

import (
	"math"
	"sort"
	"time"

	"github.com/Overland-East-Bay/trip-budget-api/internal/domain"
)

const (
	earthRadiusKm = 6371.0
	dayStartHour  = 9
	activityGap   = 30 * time.Minute
)

// DistanceKm is the great-circle (haversine) distance between two points.
func DistanceKm(a, b domain.Coordinates) float64 {
	rad := func(deg float64) float64 { return deg * math.Pi / 180 }
	dLat := rad(b.Lat - a.Lat)
	dLng := rad(b.Lng - a.Lng)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rad(a.Lat))*math.Cos(rad(b.Lat))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// OptimizeSchedule reorders each day's activities by distance from the day's first activity
// and lays them out back to back from 09:00 in loc with a 30 minute gap between them.
// Equal distances keep their original order. Nothing but activity order and time slots changes.
func OptimizeSchedule(it domain.Itinerary, loc *time.Location) domain.Itinerary {
	if loc == nil {
		loc = time.UTC
	}
	out := it.Clone()
	for i := range out.Days {
		day := &out.Days[i]
		if len(day.Activities) == 0 {
			continue
		}
		anchor := day.Activities[0].Location.Coordinates
		sort.SliceStable(day.Activities, func(a, b int) bool {
			return DistanceKm(anchor, day.Activities[a].Location.Coordinates) <
				DistanceKm(anchor, day.Activities[b].Location.Coordinates)
		})

		y, m, d := day.Date.UTC().Date()
		cursor := time.Date(y, m, d, dayStartHour, 0, 0, 0, loc)
		for j := range day.Activities {
			a := &day.Activities[j]
			end := cursor.Add(time.Duration(a.DurationMinutes) * time.Minute)
			a.TimeSlot = domain.TimeSlot{Start: cursor, End: end}
			cursor = end.Add(activityGap)
		}
	}
	return out
}

// Per-day fitting rules: items above a share of the daily target are cut by a fixed percentage
// while the day still runs over.
const (
	fitActivityFloorPercent = 10
	fitActivityCutPercent   = 30
	fitMealFloorPercent     = 5
	fitMealCutPercent       = 20
)

// FitDailyBudget spreads maxBudget evenly across the days and trims each day that runs over its
// share: activities costing more than 10% of the share lose 30%, then meals costing more than 5%
// lose 20%, in order, until the day fits. Days already within their share are untouched.
// It does not guarantee every day ends within its share.
func FitDailyBudget(it domain.Itinerary, maxBudget domain.Money) domain.Itinerary {
	out := it.Clone()
	if len(out.Days) == 0 {
		return out
	}
	target := maxBudget / domain.Money(len(out.Days))

	for i := range out.Days {
		day := &out.Days[i]
		dayCost := day.ChildrenCost()
		if dayCost <= target {
			continue
		}
		for j := range day.Activities {
			a := &day.Activities[j]
			if dayCost > target && a.Cost.Exceeds(target, fitActivityFloorPercent, 100) {
				cut := a.Cost.Percent(fitActivityCutPercent)
				a.Cost -= cut
				dayCost -= cut
			}
		}
		for j := range day.Meals {
			m := &day.Meals[j]
			if dayCost > target && m.Cost.Exceeds(target, fitMealFloorPercent, 100) {
				cut := m.Cost.Percent(fitMealCutPercent)
				m.Cost -= cut
				dayCost -= cut
			}
		}
		day.RecomputeTotal()
	}
	return out
}
