package budget_test

import (
	"math/rand"
	"reflect"
	"testing"

	"github.com/Overland-East-Bay/trip-budget-api/internal/domain"
)

func TestOptimizeBudget_WithinLimitsIsNoOp(t *testing.T) {
	t.Parallel()

	c := newCalculator()
	it := sampleItineraries()[0]
	total := c.CalculateTripBudget(it, domain.Trip{}).Total

	res := c.OptimizeBudget(it, total)
	if res.Savings != 0 {
		t.Fatalf("savings=%s", res.Savings)
	}
	if !reflect.DeepEqual(res.Changes, []string{"Budget is already within limits"}) {
		t.Fatalf("changes=%v", res.Changes)
	}
	if !reflect.DeepEqual(res.Itinerary, it) {
		t.Fatalf("itinerary changed")
	}
	if !res.FullyResolved() {
		t.Fatalf("expected resolved")
	}
}

func TestOptimizeBudget_GreedyPasses(t *testing.T) {
	t.Parallel()

	d := day("2024-03-04")
	d.Accommodation = &domain.Accommodation{Name: "Hotel", CostPerNight: m(100), TotalCost: m(100)}
	d.Activities = []domain.Activity{
		{Name: "Cheap", Cost: m(20)},
		{Name: "Pricey", Cost: m(50)},
		{Name: "Mid", Cost: m(30)},
	}
	d.Meals = []domain.Meal{{Name: "Lunch", Cost: m(10)}}
	d.RecomputeTotal()
	it := domain.Itinerary{ID: "it1", TripID: "t1", Days: []domain.ItineraryDay{d}}
	before := it.Clone()

	res := newCalculator().OptimizeBudget(it, m(150))

	if res.Overage != m(60) {
		t.Fatalf("overage=%s", res.Overage)
	}
	// 30 (accommodation) + 10 (Pricey) + 6 (Mid) + 1.50 (Lunch).
	if res.Savings != m(47.5) {
		t.Fatalf("savings=%s", res.Savings)
	}
	if res.FullyResolved() {
		t.Fatalf("caps cannot close a 60.00 overage here")
	}
	wantChanges := []string{
		"Reduced accommodation cost by 30.00 on Mon Mar 04 2024",
		"Found cheaper alternative for Pricey (saved 10.00)",
		"Found cheaper alternative for Mid (saved 6.00)",
		"Found budget-friendly option for Lunch (saved 1.50)",
	}
	if !reflect.DeepEqual(res.Changes, wantChanges) {
		t.Fatalf("changes=%q", res.Changes)
	}

	got := res.Itinerary.Days[0]
	if got.Accommodation.TotalCost != m(70) {
		t.Fatalf("accommodation=%s", got.Accommodation.TotalCost)
	}
	if got.Activities[0].Cost != m(20) || got.Activities[1].Cost != m(40) || got.Activities[2].Cost != m(24) {
		t.Fatalf("activities=%+v", got.Activities)
	}
	if got.Meals[0].Cost != m(8.5) {
		t.Fatalf("meal=%s", got.Meals[0].Cost)
	}
	if got.TotalCost != m(162.5) {
		t.Fatalf("day total=%s", got.TotalCost)
	}
	if res.Itinerary.ID != "it1" || res.Itinerary.TripID != "t1" {
		t.Fatalf("identity fields changed: %+v", res.Itinerary)
	}
	if !reflect.DeepEqual(it, before) {
		t.Fatalf("input itinerary mutated")
	}
}

func TestOptimizeBudget_StopsAtOverage(t *testing.T) {
	t.Parallel()

	d := day("2024-03-04")
	d.Accommodation = &domain.Accommodation{Name: "Hotel", TotalCost: m(100)}
	d.Meals = []domain.Meal{{Name: "Lunch", Cost: m(10)}}
	it := domain.Itinerary{Days: []domain.ItineraryDay{d}}

	res := newCalculator().OptimizeBudget(it, m(105))
	if res.Savings != m(5) || !res.FullyResolved() {
		t.Fatalf("savings=%s overage=%s", res.Savings, res.Overage)
	}
	if len(res.Changes) != 1 || res.Changes[0] != "Reduced accommodation cost by 5.00 on Mon Mar 04 2024" {
		t.Fatalf("changes=%q", res.Changes)
	}
	if res.Itinerary.Days[0].Meals[0].Cost != m(10) {
		t.Fatalf("meal should be untouched once the overage is closed")
	}
}

func TestOptimizeBudget_NegativeCostsAreNotReduced(t *testing.T) {
	t.Parallel()

	d := day("2024-03-04")
	d.Activities = []domain.Activity{{Name: "Refund", Cost: m(-10)}, {Name: "Tour", Cost: m(40)}}
	d.Meals = []domain.Meal{{Name: "Voucher", Cost: m(-5)}}
	it := domain.Itinerary{Days: []domain.ItineraryDay{d}}

	res := newCalculator().OptimizeBudget(it, 0)
	if res.Savings != m(8) {
		t.Fatalf("savings=%s", res.Savings)
	}
	got := res.Itinerary.Days[0]
	if got.Activities[0].Cost != m(-10) || got.Meals[0].Cost != m(-5) {
		t.Fatalf("negative items were reduced: %+v %+v", got.Activities, got.Meals)
	}
}

func TestOptimizeBudget_Properties(t *testing.T) {
	t.Parallel()

	c := newCalculator()
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 200; i++ {
		it := randomItinerary(rng)
		total := c.CalculateTripBudget(it, domain.Trip{}).Total
		target := domain.Money(rng.Int63n(int64(total) + 1))

		res := c.OptimizeBudget(it, target)
		if res.Savings < 0 {
			t.Fatalf("case %d: negative savings %s", i, res.Savings)
		}
		if res.Overage > 0 && res.Savings > res.Overage {
			t.Fatalf("case %d: savings %s exceed overage %s", i, res.Savings, res.Overage)
		}
		after := c.CalculateTripBudget(res.Itinerary, domain.Trip{}).Total
		if after != total-res.Savings {
			t.Fatalf("case %d: total after=%s want=%s", i, after, total-res.Savings)
		}
		for _, d := range res.Itinerary.Days {
			if d.TotalCost != d.ChildrenCost() && res.Overage > 0 {
				t.Fatalf("case %d: stale day total", i)
			}
			if d.Accommodation != nil && d.Accommodation.TotalCost < 0 {
				t.Fatalf("case %d: negative accommodation", i)
			}
			for _, a := range d.Activities {
				if a.Cost < 0 {
					t.Fatalf("case %d: negative activity", i)
				}
			}
			for _, ml := range d.Meals {
				if ml.Cost < 0 {
					t.Fatalf("case %d: negative meal", i)
				}
			}
		}
	}
}

func TestOptimizeBudget_SavingsMonotonicInReducibleItems(t *testing.T) {
	t.Parallel()

	c := newCalculator()
	rng := rand.New(rand.NewSource(11))

	d := day("2024-03-04")
	var prev domain.Money
	for i := 0; i < 25; i++ {
		switch i % 3 {
		case 0:
			d.Activities = append(d.Activities, domain.Activity{Name: "A", Cost: domain.Money(rng.Int63n(20000))})
		case 1:
			d.Meals = append(d.Meals, domain.Meal{Name: "M", Cost: domain.Money(rng.Int63n(8000))})
		default:
			if d.Accommodation == nil {
				d.Accommodation = &domain.Accommodation{Name: "H", TotalCost: domain.Money(rng.Int63n(30000))}
			} else {
				d.Activities = append(d.Activities, domain.Activity{Name: "B", Cost: domain.Money(rng.Int63n(20000))})
			}
		}
		it := domain.Itinerary{Days: []domain.ItineraryDay{d.Clone()}}
		res := c.OptimizeBudget(it, 0)
		if res.Savings < prev {
			t.Fatalf("step %d: savings decreased from %s to %s", i, prev, res.Savings)
		}
		prev = res.Savings
	}
}

func randomItinerary(rng *rand.Rand) domain.Itinerary {
	days := make([]domain.ItineraryDay, 1+rng.Intn(4))
	for i := range days {
		d := day("2024-03-04")
		d.Date = d.Date.AddDate(0, 0, i)
		if rng.Intn(2) == 0 {
			d.Accommodation = &domain.Accommodation{Name: "H", TotalCost: domain.Money(rng.Int63n(50000))}
		}
		for j := rng.Intn(5); j > 0; j-- {
			d.Activities = append(d.Activities, domain.Activity{Name: "A", Cost: domain.Money(rng.Int63n(20000))})
		}
		for j := rng.Intn(4); j > 0; j-- {
			d.Meals = append(d.Meals, domain.Meal{Name: "M", Cost: domain.Money(rng.Int63n(6000))})
		}
		for j := rng.Intn(2); j > 0; j-- {
			d.Transport = append(d.Transport, domain.Transportation{Cost: domain.Money(rng.Int63n(9000))})
		}
		d.RecomputeTotal()
		days[i] = d
	}
	return domain.Itinerary{Days: days}
}
