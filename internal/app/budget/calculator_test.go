package budget_test

import (
	"testing"
	"time"

	memclock "github.com/Overland-East-Bay/trip-budget-api/internal/adapters/memory/clock"
	"github.com/Overland-East-Bay/trip-budget-api/internal/app/budget"
	"github.com/Overland-East-Bay/trip-budget-api/internal/domain"
)

var evalTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newCalculatorClock() *memclock.ManualClock { return memclock.NewManualClock(evalTime) }

func newCalculator() *budget.Calculator {
	return budget.NewCalculator(newCalculatorClock(), budget.DefaultRules())
}

func m(v float64) domain.Money { return domain.FromMajor(v) }

func day(date string) domain.ItineraryDay {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	return domain.ItineraryDay{Date: d}
}

func TestGenerateBudgetAlerts_CategoryCeilingAndSurplus(t *testing.T) {
	t.Parallel()

	c := newCalculator()
	cats := domain.Categories{Accommodation: m(500), Transport: m(100), Food: m(100), Activities: m(50)}

	alerts := c.GenerateBudgetAlerts(cats, m(1000), m(250))
	if len(alerts) != 2 {
		t.Fatalf("alerts=%+v", alerts)
	}

	a := alerts[0]
	if a.Type != domain.AlertTypeWarning || a.Category != domain.CategoryAccommodation || a.Amount != m(100) {
		t.Fatalf("ceiling alert=%+v", a)
	}
	if a.Message != "accommodation spending (500.00) exceeds recommended limit (400.00)" {
		t.Fatalf("message=%q", a.Message)
	}
	if !a.Timestamp.Equal(evalTime) {
		t.Fatalf("timestamp=%v", a.Timestamp)
	}

	r := alerts[1]
	if r.Type != domain.AlertTypeRecommendation || r.Category != domain.CategoryActivities || r.Amount != m(250) {
		t.Fatalf("recommendation=%+v", r)
	}
	for _, al := range alerts {
		if al.Type == domain.AlertTypeExceeded {
			t.Fatalf("unexpected exceeded alert: %+v", al)
		}
	}
}

func TestGenerateBudgetAlerts_Exceeded(t *testing.T) {
	t.Parallel()

	c := newCalculator()
	cats := domain.Categories{Accommodation: m(150)}

	alerts := c.GenerateBudgetAlerts(cats, m(100), m(-50))
	if len(alerts) != 2 {
		t.Fatalf("alerts=%+v", alerts)
	}
	if alerts[0].Type != domain.AlertTypeExceeded || alerts[0].Category != domain.CategoryMiscellaneous || alerts[0].Amount != m(50) {
		t.Fatalf("exceeded=%+v", alerts[0])
	}
	if alerts[0].Message != "Budget exceeded by 50.00" {
		t.Fatalf("message=%q", alerts[0].Message)
	}
	if alerts[1].Category != domain.CategoryAccommodation || alerts[1].Amount != m(110) {
		t.Fatalf("ceiling=%+v", alerts[1])
	}
}

func TestGenerateBudgetAlerts_NearLimit(t *testing.T) {
	t.Parallel()

	c := newCalculator()
	cats := domain.Categories{Food: m(950)}

	alerts := c.GenerateBudgetAlerts(cats, m(1000), m(50))
	if len(alerts) != 2 {
		t.Fatalf("alerts=%+v", alerts)
	}
	if alerts[0].Type != domain.AlertTypeWarning || alerts[0].Category != domain.CategoryMiscellaneous || alerts[0].Amount != m(50) {
		t.Fatalf("near-limit=%+v", alerts[0])
	}
	if alerts[0].Message != "Only 50.00 remaining (5.0% of budget)" {
		t.Fatalf("message=%q", alerts[0].Message)
	}
	if alerts[1].Category != domain.CategoryFood || alerts[1].Amount != m(750) {
		t.Fatalf("food ceiling=%+v", alerts[1])
	}
}

func TestGenerateBudgetAlerts_ExactlyAtThresholdsIsQuiet(t *testing.T) {
	t.Parallel()

	c := newCalculator()
	// 900/1000 is exactly 90%; accommodation exactly at its 40% ceiling; remaining exactly 10%.
	cats := domain.Categories{Accommodation: m(400), Transport: m(300), Food: m(200)}

	alerts := c.GenerateBudgetAlerts(cats, m(1000), m(100))
	if len(alerts) != 0 {
		t.Fatalf("alerts=%+v", alerts)
	}
}

func TestGenerateBudgetAlerts_ZeroBudget(t *testing.T) {
	t.Parallel()

	c := newCalculator()
	alerts := c.GenerateBudgetAlerts(domain.Categories{}, 0, 0)
	if len(alerts) != 0 {
		t.Fatalf("alerts=%+v", alerts)
	}
}

func TestCalculateTripBudget_Aggregates(t *testing.T) {
	t.Parallel()

	d1 := day("2024-03-04")
	d1.Accommodation = &domain.Accommodation{Name: "Inn", CostPerNight: m(80), TotalCost: m(90)}
	d1.Transport = []domain.Transportation{{Cost: m(15)}, {Cost: m(5.5)}}
	d1.Meals = []domain.Meal{{Name: "Breakfast", Cost: m(12.25)}}
	d1.Activities = []domain.Activity{{Name: "Museum", Cost: m(20)}}

	d2 := day("2024-03-05")
	d2.Meals = []domain.Meal{{Name: "Dinner", Cost: m(30)}}
	d2.Activities = []domain.Activity{{Name: "Walk", Cost: 0}}

	it := domain.Itinerary{Days: []domain.ItineraryDay{d1, d2}}
	b := newCalculator().CalculateTripBudget(it, domain.Trip{TotalBudget: m(1000)})

	want := domain.Categories{Accommodation: m(90), Transport: m(20.5), Food: m(42.25), Activities: m(20)}
	if b.Categories != want {
		t.Fatalf("categories=%+v want=%+v", b.Categories, want)
	}
	if b.Total != m(172.75) {
		t.Fatalf("total=%s", b.Total)
	}
	if b.Remaining != m(827.25) {
		t.Fatalf("remaining=%s", b.Remaining)
	}
	if b.Daily["2024-03-04"] != m(142.75) || b.Daily["2024-03-05"] != m(30) || len(b.Daily) != 2 {
		t.Fatalf("daily=%v", b.Daily)
	}
	if b.Categories.Shopping != 0 || b.Categories.Miscellaneous != 0 {
		t.Fatalf("reserved categories must stay zero: %+v", b.Categories)
	}
}

func TestCalculateTripBudget_SumInvariant(t *testing.T) {
	t.Parallel()

	c := newCalculator()
	for i, it := range sampleItineraries() {
		b := c.CalculateTripBudget(it, domain.Trip{TotalBudget: m(500)})
		var daily domain.Money
		for _, v := range b.Daily {
			daily += v
		}
		if b.Total != b.Categories.Sum() || b.Total != daily {
			t.Fatalf("case %d: total=%s categories=%s daily=%s", i, b.Total, b.Categories.Sum(), daily)
		}
		if b.Remaining != m(500)-b.Total {
			t.Fatalf("case %d: remaining=%s", i, b.Remaining)
		}
	}
}

func TestCalculateTripBudget_SharedDateAccumulates(t *testing.T) {
	t.Parallel()

	a := day("2024-03-04")
	a.Meals = []domain.Meal{{Cost: m(10)}}
	b := day("2024-03-04")
	b.Meals = []domain.Meal{{Cost: m(5)}}

	bd := newCalculator().CalculateTripBudget(domain.Itinerary{Days: []domain.ItineraryDay{a, b}}, domain.Trip{})
	if bd.Daily["2024-03-04"] != m(15) || bd.Total != m(15) {
		t.Fatalf("daily=%v total=%s", bd.Daily, bd.Total)
	}
}

func TestCalculateTripBudget_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	it := sampleItineraries()[0]
	before := it.Clone()
	_ = newCalculator().CalculateTripBudget(it, domain.Trip{TotalBudget: m(10)})
	if it.Days[0].Activities[0].Cost != before.Days[0].Activities[0].Cost || len(it.BudgetBreakdown.Alerts) != len(before.BudgetBreakdown.Alerts) {
		t.Fatalf("input mutated")
	}
}

func TestCalculateDailyCosts_UsesNightlyRate(t *testing.T) {
	t.Parallel()

	d := day("2024-03-04")
	d.Accommodation = &domain.Accommodation{CostPerNight: m(80), TotalCost: m(240)}
	d.Meals = []domain.Meal{{Cost: m(10)}}
	d.Activities = []domain.Activity{{Cost: m(5)}}
	d.Transport = []domain.Transportation{{Cost: m(2.5)}}

	if got := budget.CalculateDailyCosts(d); got != m(97.5) {
		t.Fatalf("daily cost=%s", got)
	}
}

// sampleItineraries returns a few itineraries with a mix of present and missing components.
func sampleItineraries() []domain.Itinerary {
	d1 := day("2024-03-04")
	d1.Accommodation = &domain.Accommodation{Name: "Hotel", CostPerNight: m(120), TotalCost: m(120)}
	d1.Activities = []domain.Activity{
		{Name: "Tour", Cost: m(45.5)},
		{Name: "Museum", Cost: m(18)},
		{Name: "Park", Cost: 0},
	}
	d1.Meals = []domain.Meal{{Name: "Lunch", Cost: m(22.4)}, {Name: "Dinner", Cost: m(41.1)}}
	d1.Transport = []domain.Transportation{{Mode: domain.TransportModeTrain, Cost: m(33.33)}}

	d2 := day("2024-03-05")
	d2.Activities = []domain.Activity{{Name: "Hike", Cost: m(9.99)}}

	d3 := day("2024-03-06")
	d3.Accommodation = &domain.Accommodation{Name: "Hostel", CostPerNight: m(35), TotalCost: m(35)}
	d3.Meals = []domain.Meal{{Name: "Street food", Cost: m(6.75)}}

	return []domain.Itinerary{
		{Days: []domain.ItineraryDay{d1, d2, d3}},
		{Days: []domain.ItineraryDay{d2}},
		{Days: nil},
		{Days: []domain.ItineraryDay{d3, d1}},
	}
}
