package domain

import (
	"reflect"
	"testing"
	"time"
)

func TestItinerary_CloneIsDeep(t *testing.T) {
	t.Parallel()

	rating := 4.0
	it := Itinerary{
		ID: "i1",
		Days: []ItineraryDay{{
			Date:          time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
			Activities:    []Activity{{Name: "Museum", Cost: 1000, Rating: &rating}},
			Meals:         []Meal{{Name: "Lunch", Cost: 500}},
			Accommodation: &Accommodation{Name: "Inn", TotalCost: 9000, Amenities: []string{"wifi"}},
		}},
		BudgetBreakdown: BudgetBreakdown{Daily: map[string]Money{"2024-03-04": 10500}},
		OptimizedRoutes: []Route{{Options: []TransportOption{{ID: "o1", Stops: []Location{{Name: "A"}}}}}},
	}

	cp := it.Clone()
	if !reflect.DeepEqual(cp, it) {
		t.Fatalf("clone differs")
	}

	cp.Days[0].Activities[0].Cost = 0
	*cp.Days[0].Activities[0].Rating = 1
	cp.Days[0].Meals[0].Cost = 0
	cp.Days[0].Accommodation.TotalCost = 0
	cp.Days[0].Accommodation.Amenities[0] = "pool"
	cp.BudgetBreakdown.Daily["2024-03-04"] = 0
	cp.OptimizedRoutes[0].Options[0].Stops[0].Name = "B"

	d := it.Days[0]
	if d.Activities[0].Cost != 1000 || *d.Activities[0].Rating != 4 || d.Meals[0].Cost != 500 ||
		d.Accommodation.TotalCost != 9000 || d.Accommodation.Amenities[0] != "wifi" ||
		it.BudgetBreakdown.Daily["2024-03-04"] != 10500 || it.OptimizedRoutes[0].Options[0].Stops[0].Name != "A" {
		t.Fatalf("clone aliased original data")
	}
}

func TestItineraryDay_RecomputeTotal(t *testing.T) {
	t.Parallel()

	d := ItineraryDay{
		Activities:    []Activity{{Cost: 100}},
		Meals:         []Meal{{Cost: 200}},
		Transport:     []Transportation{{Cost: 300}},
		Accommodation: &Accommodation{CostPerNight: 999, TotalCost: 400},
	}
	d.RecomputeTotal()
	if d.TotalCost != 1000 {
		t.Fatalf("total=%d", d.TotalCost)
	}
	if d.DateKey() != "0001-01-01" {
		t.Fatalf("key=%s", d.DateKey())
	}
}

func TestTrip_DurationAndTransitions(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		end  time.Time
		want int
	}{
		{start, 1},
		{start.AddDate(0, 0, 3), 3},
		{start.Add(50 * time.Hour), 3},
		{start.Add(-time.Hour), 1},
	}
	for _, tc := range cases {
		if got := (Trip{StartDate: start, EndDate: tc.end}).DurationDays(); got != tc.want {
			t.Fatalf("end=%v days=%d want=%d", tc.end, got, tc.want)
		}
	}

	if !TripStatusPlanning.CanTransitionTo(TripStatusConfirmed) || TripStatusPlanning.CanTransitionTo(TripStatusCompleted) {
		t.Fatalf("planning transitions wrong")
	}
	if !TripStatusActive.CanTransitionTo(TripStatusCompleted) || TripStatusCompleted.CanTransitionTo(TripStatusPlanning) {
		t.Fatalf("active/completed transitions wrong")
	}
	if !TripStatusCancelled.Terminal() || TripStatusActive.Terminal() || TripStatus("bogus").Valid() {
		t.Fatalf("status predicates wrong")
	}
}
