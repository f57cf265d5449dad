package gamification_test

import (
	"reflect"
	"testing"
	"time"

	memclock "github.com/Overland-East-Bay/trip-budget-api/internal/adapters/memory/clock"
	"github.com/Overland-East-Bay/trip-budget-api/internal/app/gamification"
	"github.com/Overland-East-Bay/trip-budget-api/internal/domain"
)

var today = time.Date(2024, 6, 10, 15, 0, 0, 0, time.UTC)

func newEngine() *gamification.Engine {
	return gamification.NewEngine(gamification.DefaultCatalog(), memclock.NewManualClock(today))
}

func TestDefaultCatalog_IsSharedAndImmutable(t *testing.T) {
	t.Parallel()

	a := gamification.DefaultCatalog()
	b := gamification.DefaultCatalog()
	if a != b {
		t.Fatalf("catalog rebuilt")
	}
	if a.Len() != 10 {
		t.Fatalf("len=%d", a.Len())
	}

	all := a.All()
	all[0].Name = "mutated"
	if got, _ := a.ByID(all[0].ID); got.Name == "mutated" {
		t.Fatalf("All must return a copy")
	}
	if _, ok := a.ByID("nope"); ok {
		t.Fatalf("unknown badge found")
	}
}

func TestCalculateRank_Boundaries(t *testing.T) {
	t.Parallel()

	e := newEngine()
	cases := []struct {
		name  string
		stats domain.UserStats
		want  domain.TravelerRank
	}{
		{"zero", domain.UserStats{}, domain.TravelerRank{Name: "Novice Traveler", Level: 1, PointsToNext: 100}},
		{"99 points", domain.UserStats{TripsCompleted: 4, CountriesVisited: 1, ActivitiesCompleted: 2}, domain.TravelerRank{Name: "Novice Traveler", Level: 1, PointsToNext: 1}},
		{"exactly 100", domain.UserStats{TripsCompleted: 5}, domain.TravelerRank{Name: "Explorer", Level: 2, PointsToNext: 200}},
		{"budget saved counts per 100", domain.UserStats{TripsCompleted: 4, TotalBudgetSaved: domain.FromMajor(2099.99)}, domain.TravelerRank{Name: "Explorer", Level: 2, PointsToNext: 200}},
		{"3999", domain.UserStats{TripsCompleted: 199, CountriesVisited: 1, ActivitiesCompleted: 2}, domain.TravelerRank{Name: "Travel Master", Level: 7, PointsToNext: 1}},
		{"top", domain.UserStats{TripsCompleted: 200}, domain.TravelerRank{Name: "Legendary Explorer", Level: 8, PointsToNext: 0}},
		{"beyond top", domain.UserStats{TripsCompleted: 1000}, domain.TravelerRank{Name: "Legendary Explorer", Level: 8, PointsToNext: 0}},
	}
	for _, tc := range cases {
		if got := e.CalculateRank(tc.stats); got != tc.want {
			t.Fatalf("%s: rank=%+v want=%+v (points=%d)", tc.name, got, tc.want, gamification.RankPoints(tc.stats))
		}
	}
}

func TestCheckBadgeEligibility(t *testing.T) {
	t.Parallel()

	e := newEngine()

	got := e.CheckBadgeEligibility("u1", domain.UserStats{TripsCompleted: 1})
	if len(got) != 1 || got[0].BadgeID != "first_trip" || got[0].Progress != 100 || got[0].UserID != "u1" {
		t.Fatalf("badges=%+v", got)
	}
	if !got[0].EarnedDate.Equal(today) {
		t.Fatalf("earned=%v", got[0].EarnedDate)
	}

	got = e.CheckBadgeEligibility("u1", domain.UserStats{TotalBudgetSaved: domain.FromMajor(19.99)})
	if len(got) != 0 {
		t.Fatalf("19.99 saved should earn nothing: %+v", got)
	}
	got = e.CheckBadgeEligibility("u1", domain.UserStats{TotalBudgetSaved: domain.FromMajor(20)})
	if len(got) != 1 || got[0].BadgeID != "budget_saver" {
		t.Fatalf("badges=%+v", got)
	}

	// Far past a threshold, progress is capped.
	got = e.CheckBadgeEligibility("u1", domain.UserStats{TripsCompleted: 12})
	ids := make([]string, 0, len(got))
	for _, b := range got {
		ids = append(ids, b.BadgeID)
		if b.Progress != 100 {
			t.Fatalf("progress for %s=%v", b.BadgeID, b.Progress)
		}
	}
	want := []string{"first_trip", "frequent_traveler", "solo_adventurer", "group_organizer"}
	if !reflect.DeepEqual(ids, want) {
		t.Fatalf("ids=%v", ids)
	}
}

func TestCalculateAchievements(t *testing.T) {
	t.Parallel()

	s := domain.UserStats{
		CountriesVisited:    7,
		TotalBudgetSaved:    domain.FromMajor(2500.5),
		ActivitiesCompleted: 9,
		RestaurantsVisited:  30,
		PhotoActivities:     17,
	}
	got := newEngine().CalculateAchievements("u1", s)
	want := []domain.Achievement{
		{UserID: "u1", Type: domain.AchievementExplorer, Level: 3, Progress: 1, MaxProgress: 3, Rewards: []string{"Unlock destination recommendations for level 3"}},
		{UserID: "u1", Type: domain.AchievementSaver, Level: 3, Progress: 500.5, MaxProgress: 1000, Rewards: []string{"15% discount on premium features"}},
		{UserID: "u1", Type: domain.AchievementAdventurer, Level: 1, Progress: 9, MaxProgress: 10, Rewards: []string{"Unlock 2 new activity categories"}},
		{UserID: "u1", Type: domain.AchievementFoodie, Level: 3, Progress: 0, MaxProgress: 15, Rewards: []string{"Access to 9 exclusive restaurant recommendations"}},
		{UserID: "u1", Type: domain.AchievementPhotographer, Level: 3, Progress: 1, MaxProgress: 8, Rewards: []string{"Unlock 6 scenic photography spots per destination"}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("achievements=%+v", got)
	}
}

func TestGenerateProgressReport(t *testing.T) {
	t.Parallel()

	s := domain.UserStats{TripsCompleted: 3, CountriesVisited: 5, CurrentStreak: 2, LongestStreak: 4}
	earned := []domain.UserBadge{
		{UserID: "u1", BadgeID: "first_trip"},
		{UserID: "u1", BadgeID: "explorer"},
	}
	r := newEngine().GenerateProgressReport(s, earned)

	if r.CompletionPercentage != 20 || r.EarnedBadges != 2 || r.TotalBadges != 10 {
		t.Fatalf("counts=%+v", r)
	}
	if r.RarityStats != (domain.RarityStats{Common: 1, Rare: 1}) || r.TotalPoints != 35 {
		t.Fatalf("rarity=%+v points=%d", r.RarityStats, r.TotalPoints)
	}
	ids := make([]string, 0, len(r.NextBadges))
	for _, n := range r.NextBadges {
		ids = append(ids, n.Badge.ID)
	}
	want := []string{"solo_adventurer", "group_organizer", "frequent_traveler", "continent_collector", "budget_saver"}
	if !reflect.DeepEqual(ids, want) {
		t.Fatalf("next=%v", ids)
	}
	if r.NextBadges[1].Remaining != 2 || r.NextBadges[1].Progress != 60 {
		t.Fatalf("group organizer=%+v", r.NextBadges[1])
	}
	// 3*20 + 5*15 = 135 points.
	if r.Rank.Name != "Explorer" || r.Rank.PointsToNext != 165 {
		t.Fatalf("rank=%+v", r.Rank)
	}
	if r.StreakData.CurrentStreak != 2 || r.StreakData.LongestStreak != 4 || !r.StreakData.LastActivity.Equal(today) {
		t.Fatalf("streak=%+v", r.StreakData)
	}
}

func TestGenerateProgressReport_RoundsCompletion(t *testing.T) {
	t.Parallel()

	catalog := gamification.NewCatalog(gamification.DefaultCatalog().All()[:3])
	e := gamification.NewEngine(catalog, memclock.NewManualClock(today))

	r := e.GenerateProgressReport(domain.UserStats{}, []domain.UserBadge{{BadgeID: "first_trip"}})
	if r.CompletionPercentage != 33 {
		t.Fatalf("1/3=%d", r.CompletionPercentage)
	}
	r = e.GenerateProgressReport(domain.UserStats{}, []domain.UserBadge{{BadgeID: "first_trip"}, {BadgeID: "explorer"}})
	if r.CompletionPercentage != 67 {
		t.Fatalf("2/3=%d", r.CompletionPercentage)
	}
}

func TestUpdateUserStats_NotCompletedIsNoOp(t *testing.T) {
	t.Parallel()

	s := domain.UserStats{TripsCompleted: 2, VisitedCountries: []string{"JP"}, CountriesVisited: 1}
	got := newEngine().UpdateUserStats(s, domain.Trip{TotalBudget: domain.FromMajor(100)}, false)
	if !reflect.DeepEqual(got, s) {
		t.Fatalf("stats=%+v", got)
	}
}

func TestUpdateUserStats_Completion(t *testing.T) {
	t.Parallel()

	visited := []string{"JP"}
	s := domain.UserStats{
		UserID:           "u1",
		TripsCompleted:   1,
		VisitedCountries: visited,
		CountriesVisited: 1,
		TotalBudgetSaved: domain.FromMajor(10),
	}
	e := newEngine()

	got := e.UpdateUserStats(s, domain.Trip{Destination: domain.Destination{Country: "FR"}, TotalBudget: domain.FromMajor(1200)}, true)
	if got.TripsCompleted != 2 || got.CountriesVisited != 2 || !reflect.DeepEqual(got.VisitedCountries, []string{"JP", "FR"}) {
		t.Fatalf("stats=%+v", got)
	}
	if got.TotalBudgetSaved != domain.FromMajor(1210) {
		t.Fatalf("saved=%s", got.TotalBudgetSaved)
	}
	if got.ActivitiesCompleted != 5 || got.RestaurantsVisited != 3 || got.PhotoActivities != 2 {
		t.Fatalf("estimates=%+v", got)
	}
	if got.LastActivityDate == nil || !got.LastActivityDate.Equal(today) {
		t.Fatalf("last=%v", got.LastActivityDate)
	}
	if len(visited) != 1 || s.TripsCompleted != 1 {
		t.Fatalf("input mutated")
	}

	again := e.UpdateUserStats(got, domain.Trip{Destination: domain.Destination{Country: "JP"}, TotalBudget: domain.FromMajor(-50)}, true)
	if again.CountriesVisited != 2 {
		t.Fatalf("country should dedupe: %+v", again.VisitedCountries)
	}
	if again.TotalBudgetSaved != got.TotalBudgetSaved {
		t.Fatalf("negative budget must not reduce savings: %s", again.TotalBudgetSaved)
	}
}

func TestUpdateUserStats_Streak(t *testing.T) {
	t.Parallel()

	e := newEngine()
	at := func(d time.Duration) *time.Time {
		v := today.Add(-d)
		return &v
	}
	cases := []struct {
		name        string
		last        *time.Time
		current     int
		longest     int
		wantCurrent int
		wantLongest int
	}{
		{"one day", at(24 * time.Hour), 3, 3, 4, 4},
		{"just under two days", at(47 * time.Hour), 3, 5, 4, 5},
		{"two days", at(48 * time.Hour), 3, 6, 1, 6},
		{"same day", at(2 * time.Hour), 3, 3, 3, 3},
		{"never", nil, 0, 0, 1, 1},
	}
	for _, tc := range cases {
		s := domain.UserStats{CurrentStreak: tc.current, LongestStreak: tc.longest, LastActivityDate: tc.last}
		got := e.UpdateUserStats(s, domain.Trip{}, true)
		if got.CurrentStreak != tc.wantCurrent || got.LongestStreak != tc.wantLongest {
			t.Fatalf("%s: current=%d longest=%d", tc.name, got.CurrentStreak, got.LongestStreak)
		}
	}
}

func TestGenerateChallenges(t *testing.T) {
	t.Parallel()

	e := newEngine()

	cs := e.GenerateChallenges(domain.UserStats{CountriesVisited: 2, MonthlyBudgetSaved: domain.FromMajor(120)})
	if len(cs) != 3 {
		t.Fatalf("challenges=%+v", cs)
	}
	if cs[0].ID != "weekly_planner" || !cs[0].ExpiryDate.Equal(today.Add(7*24*time.Hour)) || cs[0].Difficulty != domain.DifficultyEasy {
		t.Fatalf("weekly=%+v", cs[0])
	}
	if cs[1].ID != "budget_optimizer" || cs[1].Current != 120 || !cs[1].ExpiryDate.Equal(today.Add(30*24*time.Hour)) {
		t.Fatalf("monthly=%+v", cs[1])
	}
	if cs[2].ID != "country_explorer" || cs[2].Description != "Visit 3 more countries" || cs[2].Current != 2 || !cs[2].ExpiryDate.Equal(today.Add(90*24*time.Hour)) {
		t.Fatalf("personal=%+v", cs[2])
	}

	if cs := e.GenerateChallenges(domain.UserStats{CountriesVisited: 5}); len(cs) != 2 {
		t.Fatalf("explorers get no country challenge: %+v", cs)
	}
}
