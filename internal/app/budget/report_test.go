package budget_test

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/Overland-East-Bay/trip-budget-api/internal/app/budget"
	"github.com/Overland-East-Bay/trip-budget-api/internal/domain"
)

func TestTrackRealTimeSpending(t *testing.T) {
	t.Parallel()

	planned := domain.BudgetBreakdown{
		Total:      m(150),
		Categories: domain.Categories{Accommodation: m(100), Food: m(50)},
	}
	actual := map[domain.Category]domain.Money{
		domain.CategoryAccommodation: m(120),
		domain.CategoryFood:          m(52),
		domain.CategoryShopping:      m(10),
	}

	v := newCalculator().TrackRealTimeSpending(planned, actual)

	if v.Variance[domain.CategoryAccommodation] != m(20) || v.Variance[domain.CategoryFood] != m(2) || v.Variance[domain.CategoryTransport] != 0 {
		t.Fatalf("variance=%v", v.Variance)
	}
	if len(v.Variance) != len(domain.AllCategories) {
		t.Fatalf("variance must cover all categories: %v", v.Variance)
	}
	if v.ProjectedTotal != m(150) {
		t.Fatalf("projected=%s", v.ProjectedTotal)
	}
	if v.Actual != m(182) {
		t.Fatalf("actual=%s", v.Actual)
	}
	if len(v.Alerts) != 3 {
		t.Fatalf("alerts=%+v", v.Alerts)
	}
	if v.Alerts[0].Category != domain.CategoryAccommodation || v.Alerts[0].Message != "accommodation spending is 20.00 over planned" {
		t.Fatalf("alert0=%+v", v.Alerts[0])
	}
	if v.Alerts[1].Category != domain.CategoryShopping || v.Alerts[1].Amount != m(10) {
		t.Fatalf("alert1=%+v", v.Alerts[1])
	}
	if v.Alerts[2].Type != domain.AlertTypeExceeded || v.Alerts[2].Amount != m(32) || v.Alerts[2].Message != "Total spending significantly over budget" {
		t.Fatalf("alert2=%+v", v.Alerts[2])
	}
}

func TestTrackRealTimeSpending_UnderPlanIsQuiet(t *testing.T) {
	t.Parallel()

	planned := domain.BudgetBreakdown{Total: m(100), Categories: domain.Categories{Food: m(100)}}
	v := newCalculator().TrackRealTimeSpending(planned, map[domain.Category]domain.Money{domain.CategoryFood: m(40)})
	if len(v.Alerts) != 0 {
		t.Fatalf("alerts=%+v", v.Alerts)
	}
	if v.Variance[domain.CategoryFood] != m(-60) {
		t.Fatalf("variance=%v", v.Variance)
	}
}

func TestGenerateBudgetReport(t *testing.T) {
	t.Parallel()

	b := domain.BudgetBreakdown{
		Total:      m(750),
		Remaining:  m(250),
		Categories: domain.Categories{Accommodation: m(500), Transport: m(100), Food: m(100), Activities: m(50)},
	}
	r := newCalculator().GenerateBudgetReport(b)

	if r.Summary != "Total planned: 750.00 | Remaining: 250.00" {
		t.Fatalf("summary=%q", r.Summary)
	}
	if r.CategoryAnalysis[domain.CategoryAccommodation] != "500.00 (66.7%)" || r.CategoryAnalysis[domain.CategoryShopping] != "0.00 (0.0%)" {
		t.Fatalf("analysis=%v", r.CategoryAnalysis)
	}
	want := []string{
		"accommodation is your largest expense category",
		"You have room to add more activities or upgrade experiences",
	}
	if !reflect.DeepEqual(r.Recommendations, want) {
		t.Fatalf("recommendations=%q", r.Recommendations)
	}
}

func TestGenerateBudgetReport_ZeroTotalAndTies(t *testing.T) {
	t.Parallel()

	c := newCalculator()

	r := c.GenerateBudgetReport(domain.BudgetBreakdown{})
	for _, cat := range domain.AllCategories {
		if r.CategoryAnalysis[cat] != "0.00 (0.0%)" {
			t.Fatalf("%s=%q", cat, r.CategoryAnalysis[cat])
		}
	}
	if !reflect.DeepEqual(r.Recommendations, []string{"miscellaneous is your largest expense category"}) {
		t.Fatalf("recommendations=%q", r.Recommendations)
	}

	tied := domain.BudgetBreakdown{
		Total:      m(200),
		Remaining:  m(-1),
		Categories: domain.Categories{Accommodation: m(100), Transport: m(100)},
	}
	r = c.GenerateBudgetReport(tied)
	want := []string{
		"transport is your largest expense category",
		"Consider the optimization suggestions to reduce costs",
	}
	if !reflect.DeepEqual(r.Recommendations, want) {
		t.Fatalf("recommendations=%q", r.Recommendations)
	}
}

func TestSuggestBudgetAdjustments(t *testing.T) {
	t.Parallel()

	over := budget.SuggestBudgetAdjustments(m(1200), m(1000))
	if !reflect.DeepEqual(over.Recommendations, []string{"You need to reduce costs by 200.00 to meet your budget."}) {
		t.Fatalf("recommendations=%q", over.Recommendations)
	}
	var savings []domain.Money
	for _, o := range over.AlternativeOptions {
		savings = append(savings, o.PotentialSaving)
	}
	if !reflect.DeepEqual(savings, []domain.Money{m(80), m(60), m(40), m(20)}) {
		t.Fatalf("savings=%v", savings)
	}
	if over.AlternativeOptions[0].Category != "Accommodation" {
		t.Fatalf("first option=%+v", over.AlternativeOptions[0])
	}

	under := budget.SuggestBudgetAdjustments(m(800), m(1000))
	want := []string{
		"Your current plan is within budget!",
		"You have 200.00 to spare for additional activities or upgrades.",
	}
	if !reflect.DeepEqual(under.Recommendations, want) || len(under.AlternativeOptions) != 0 {
		t.Fatalf("under=%+v", under)
	}
}

func TestLoadRules(t *testing.T) {
	t.Parallel()

	def, err := budget.LoadRules("")
	if err != nil {
		t.Fatalf("LoadRules(empty): %v", err)
	}
	if def != budget.DefaultRules() {
		t.Fatalf("defaults=%+v", def)
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "rules.toml")
	if err := os.WriteFile(path, []byte("surplus_percent = 25\n\n[ceilings]\naccommodation = 50\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	r, err := budget.LoadRules(path)
	if err != nil {
		t.Fatalf("LoadRules: %v", err)
	}
	if r.SurplusPercent != 25 || r.Ceilings.Accommodation != 50 {
		t.Fatalf("overrides not applied: %+v", r)
	}
	if r.Ceilings.Transport != 30 || r.MealCutPercent != 15 {
		t.Fatalf("defaults lost: %+v", r)
	}

	bad := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(bad, []byte("meal_cut_percent = 150\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := budget.LoadRules(bad); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestCalculator_CustomRules(t *testing.T) {
	t.Parallel()

	rules := budget.DefaultRules()
	rules.Ceilings.Accommodation = 60
	c := budget.NewCalculator(newCalculatorClock(), rules)

	alerts := c.GenerateBudgetAlerts(domain.Categories{Accommodation: m(500)}, m(1000), m(500))
	for _, a := range alerts {
		if a.Category == domain.CategoryAccommodation {
			t.Fatalf("accommodation under a 60%% ceiling should not alert: %+v", a)
		}
	}
}
