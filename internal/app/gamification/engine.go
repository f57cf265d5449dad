package gamification

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/Overland-East-Bay/trip-budget-api/internal/domain"
	"github.com/Overland-East-Bay/trip-budget-api/internal/ports/out/clock"
)

const (
	estimatedActivitiesPerTrip  = 5
	estimatedRestaurantsPerTrip = 3
	estimatedPhotosPerTrip      = 2

	nextBadgesLimit = 5
)

// Engine derives badges, achievements, ranks and challenges from user stats.
// It never mutates its inputs and is safe for concurrent use.
type Engine struct {
	catalog *Catalog
	clock   clock.Clock
}

func NewEngine(catalog *Catalog, clk clock.Clock) *Engine {
	return &Engine{catalog: catalog, clock: clk}
}

func (e *Engine) Catalog() *Catalog { return e.catalog }

// criteriaValue returns the stat a badge criterion measures, in the criterion's units
// (budget saved is in major currency units).
func criteriaValue(t domain.BadgeCriteriaType, s domain.UserStats) float64 {
	switch t {
	case domain.CriteriaTripsCompleted:
		return float64(s.TripsCompleted)
	case domain.CriteriaCountriesVisited:
		return float64(s.CountriesVisited)
	case domain.CriteriaBudgetSaved:
		return s.TotalBudgetSaved.Major()
	case domain.CriteriaActivitiesDone:
		return float64(s.ActivitiesCompleted)
	default:
		return 0
	}
}

func meetsCriteria(b domain.Badge, s domain.UserStats) bool {
	switch b.Criteria.Type {
	case domain.CriteriaBudgetSaved:
		return s.TotalBudgetSaved >= domain.FromMajor(b.Criteria.Threshold)
	case domain.CriteriaTripsCompleted, domain.CriteriaCountriesVisited, domain.CriteriaActivitiesDone:
		return criteriaValue(b.Criteria.Type, s) >= b.Criteria.Threshold
	default:
		return false
	}
}

func badgeProgress(b domain.Badge, s domain.UserStats) float64 {
	if b.Criteria.Threshold <= 0 {
		return 100
	}
	return math.Min(criteriaValue(b.Criteria.Type, s)/b.Criteria.Threshold*100, 100)
}

// CheckBadgeEligibility returns a UserBadge for every catalog badge the stats satisfy.
// Already-earned badges are included again; callers dedupe against what they store.
func (e *Engine) CheckBadgeEligibility(userID domain.UserID, s domain.UserStats) []domain.UserBadge {
	now := e.clock.Now()
	out := make([]domain.UserBadge, 0)
	for _, b := range e.catalog.badges {
		if !meetsCriteria(b, s) {
			continue
		}
		out = append(out, domain.UserBadge{
			UserID:     userID,
			BadgeID:    b.ID,
			EarnedDate: now,
			Progress:   badgeProgress(b, s),
		})
	}
	return out
}

// CalculateAchievements computes the five leveled achievements. Levels are unbounded.
func (e *Engine) CalculateAchievements(userID domain.UserID, s domain.UserStats) []domain.Achievement {
	leveled := func(t domain.AchievementType, metric, divisor int, reward func(level int) string) domain.Achievement {
		level := metric/divisor + 1
		return domain.Achievement{
			UserID:      userID,
			Type:        t,
			Level:       level,
			Progress:    float64(metric % divisor),
			MaxProgress: float64(divisor),
			Rewards:     []string{reward(level)},
		}
	}

	// Saved budget levels every 1000 major units; keep cents in the progress value.
	const saverDivisor = 1000 * 100
	saved := int64(s.TotalBudgetSaved.NonNegative())
	saverLevel := int(saved/saverDivisor) + 1
	saver := domain.Achievement{
		UserID:      userID,
		Type:        domain.AchievementSaver,
		Level:       saverLevel,
		Progress:    domain.Money(saved % saverDivisor).Major(),
		MaxProgress: 1000,
		Rewards:     []string{fmt.Sprintf("%d%% discount on premium features", saverLevel*5)},
	}

	return []domain.Achievement{
		leveled(domain.AchievementExplorer, s.CountriesVisited, 3, func(l int) string {
			return fmt.Sprintf("Unlock destination recommendations for level %d", l)
		}),
		saver,
		leveled(domain.AchievementAdventurer, s.ActivitiesCompleted, 10, func(l int) string {
			return fmt.Sprintf("Unlock %d new activity categories", l*2)
		}),
		leveled(domain.AchievementFoodie, s.RestaurantsVisited, 15, func(l int) string {
			return fmt.Sprintf("Access to %d exclusive restaurant recommendations", l*3)
		}),
		leveled(domain.AchievementPhotographer, s.PhotoActivities, 8, func(l int) string {
			return fmt.Sprintf("Unlock %d scenic photography spots per destination", l*2)
		}),
	}
}

type rankStep struct {
	below int
	name  string
}

// rankLadder is strictly ascending; points at or beyond the last step resolve to the top rank.
var rankLadder = []rankStep{
	{100, "Novice Traveler"},
	{300, "Explorer"},
	{600, "Seasoned Traveler"},
	{1000, "Travel Expert"},
	{1500, "Globetrotter"},
	{2500, "World Navigator"},
	{4000, "Travel Master"},
}

const topRankName = "Legendary Explorer"

// RankPoints is the weighted score the rank ladder is evaluated against.
func RankPoints(s domain.UserStats) int {
	return s.TripsCompleted*20 +
		s.CountriesVisited*15 +
		s.ActivitiesCompleted*2 +
		int(int64(s.TotalBudgetSaved)/10000)
}

func (e *Engine) CalculateRank(s domain.UserStats) domain.TravelerRank {
	points := RankPoints(s)
	for i, step := range rankLadder {
		if points < step.below {
			return domain.TravelerRank{Name: step.name, Level: i + 1, PointsToNext: step.below - points}
		}
	}
	return domain.TravelerRank{Name: topRankName, Level: len(rankLadder) + 1, PointsToNext: 0}
}

var rarityPoints = map[domain.Rarity]int{
	domain.RarityCommon:    10,
	domain.RarityRare:      25,
	domain.RarityEpic:      50,
	domain.RarityLegendary: 100,
}

// GenerateProgressReport summarizes badge completion, rank and streak state.
// Earned badges not present in the catalog are counted but earn no points.
func (e *Engine) GenerateProgressReport(s domain.UserStats, earned []domain.UserBadge) domain.GameProgressReport {
	total := e.catalog.Len()
	completion := 0
	if total > 0 {
		completion = int(math.Floor(float64(len(earned))/float64(total)*100 + 0.5))
	}

	earnedIDs := make(map[string]struct{}, len(earned))
	var rarity domain.RarityStats
	points := 0
	for _, ub := range earned {
		earnedIDs[ub.BadgeID] = struct{}{}
		b, ok := e.catalog.ByID(ub.BadgeID)
		if !ok {
			continue
		}
		switch b.Rarity {
		case domain.RarityCommon:
			rarity.Common++
		case domain.RarityRare:
			rarity.Rare++
		case domain.RarityEpic:
			rarity.Epic++
		case domain.RarityLegendary:
			rarity.Legendary++
		}
		points += rarityPoints[b.Rarity]
	}

	next := make([]domain.NextBadgeInfo, 0, e.catalog.Len())
	for _, b := range e.catalog.badges {
		if _, ok := earnedIDs[b.ID]; ok {
			continue
		}
		next = append(next, domain.NextBadgeInfo{
			Badge:     b,
			Progress:  badgeProgress(b, s),
			Remaining: b.Criteria.Threshold - criteriaValue(b.Criteria.Type, s),
		})
	}
	sort.SliceStable(next, func(i, j int) bool { return next[i].Progress > next[j].Progress })
	if len(next) > nextBadgesLimit {
		next = next[:nextBadgesLimit]
	}

	last := e.clock.Now()
	if s.LastActivityDate != nil {
		last = *s.LastActivityDate
	}

	return domain.GameProgressReport{
		CompletionPercentage: completion,
		EarnedBadges:         len(earned),
		TotalBadges:          total,
		NextBadges:           next,
		RarityStats:          rarity,
		TotalPoints:          points,
		Rank:                 e.CalculateRank(s),
		StreakData: domain.StreakData{
			CurrentStreak: s.CurrentStreak,
			LongestStreak: s.LongestStreak,
			LastActivity:  last,
		},
	}
}

// UpdateUserStats folds a trip into the stats. It returns the input unchanged unless completed
// is true. Activity, restaurant and photo counts grow by fixed per-trip estimates.
func (e *Engine) UpdateUserStats(s domain.UserStats, trip domain.Trip, completed bool) domain.UserStats {
	if !completed {
		return s
	}

	out := s.Clone()
	out.TripsCompleted++

	if c := trip.Destination.Country; c != "" && !containsString(out.VisitedCountries, c) {
		out.VisitedCountries = append(out.VisitedCountries, c)
	}
	out.CountriesVisited = len(out.VisitedCountries)

	// Actual spend is not folded in yet, so the whole budget counts as saved.
	var actualSpent domain.Money
	saved := (trip.TotalBudget - actualSpent).NonNegative()
	out.TotalBudgetSaved += saved

	out.ActivitiesCompleted += estimatedActivitiesPerTrip
	out.RestaurantsVisited += estimatedRestaurantsPerTrip
	out.PhotoActivities += estimatedPhotosPerTrip

	now := e.clock.Now()
	switch gap := daysSince(out.LastActivityDate, now); {
	case gap == 1:
		out.CurrentStreak++
	case gap > 1:
		out.CurrentStreak = 1
	}
	if out.CurrentStreak > out.LongestStreak {
		out.LongestStreak = out.CurrentStreak
	}
	out.LastActivityDate = &now
	return out
}

// daysSince is the number of whole 24h periods between last and now. A nil last counts as
// an arbitrarily long gap.
func daysSince(last *time.Time, now time.Time) int {
	if last == nil {
		return math.MaxInt32
	}
	return int(math.Floor(float64(now.Sub(*last)) / float64(24*time.Hour)))
}

func containsString(xs []string, v string) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}

// GenerateChallenges returns the current weekly, monthly and personal challenges.
func (e *Engine) GenerateChallenges(s domain.UserStats) []domain.Challenge {
	now := e.clock.Now()
	out := []domain.Challenge{
		{
			ID:          "weekly_planner",
			Title:       "Weekly Planner",
			Description: "Plan 2 trips this week",
			Type:        domain.ChallengeWeekly,
			Target:      2,
			Current:     0,
			Reward:      "Unlock premium destination suggestions",
			ExpiryDate:  now.Add(7 * 24 * time.Hour),
			Difficulty:  domain.DifficultyEasy,
		},
		{
			ID:          "budget_optimizer",
			Title:       "Budget Optimizer",
			Description: "Save $500 total across all trips this month",
			Type:        domain.ChallengeMonthly,
			Target:      500,
			Current:     s.MonthlyBudgetSaved.Major(),
			Reward:      "25% discount on premium features",
			ExpiryDate:  now.Add(30 * 24 * time.Hour),
			Difficulty:  domain.DifficultyMedium,
		},
	}
	if s.CountriesVisited < 5 {
		out = append(out, domain.Challenge{
			ID:          "country_explorer",
			Title:       "Country Explorer",
			Description: fmt.Sprintf("Visit %d more countries", 5-s.CountriesVisited),
			Type:        domain.ChallengePersonal,
			Target:      5,
			Current:     float64(s.CountriesVisited),
			Reward:      "World Explorer badge",
			ExpiryDate:  now.Add(90 * 24 * time.Hour),
			Difficulty:  domain.DifficultyHard,
		})
	}
	return out
}
