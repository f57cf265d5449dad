package domain

import "time"

// UserStats is a per-user snapshot replaced (never mutated in place) when a trip completes.
type UserStats struct {
	UserID UserID `json:"userId"`

	TripsCompleted      int      `json:"tripsCompleted"`
	CountriesVisited    int      `json:"countriesVisited"`
	VisitedCountries    []string `json:"visitedCountries"`
	TotalBudgetSaved    Money    `json:"totalBudgetSaved"`
	MonthlyBudgetSaved  Money    `json:"monthlyBudgetSaved"`
	ActivitiesCompleted int      `json:"activitiesCompleted"`
	RestaurantsVisited  int      `json:"restaurantsVisited"`
	PhotoActivities     int      `json:"photoActivities"`

	CurrentStreak int `json:"currentStreak"`
	LongestStreak int `json:"longestStreak"`
	// LastActivityDate is nil until the first completed trip.
	LastActivityDate *time.Time `json:"lastActivityDate,omitempty"`
}

// Clone deep-copies the snapshot.
func (s UserStats) Clone() UserStats {
	cp := s
	cp.VisitedCountries = cloneSlice(s.VisitedCountries)
	if s.LastActivityDate != nil {
		t := *s.LastActivityDate
		cp.LastActivityDate = &t
	}
	return cp
}

type BadgeCriteriaType string

const (
	CriteriaTripsCompleted   BadgeCriteriaType = "trips_completed"
	CriteriaCountriesVisited BadgeCriteriaType = "countries_visited"
	CriteriaBudgetSaved      BadgeCriteriaType = "budget_saved"
	CriteriaActivitiesDone   BadgeCriteriaType = "activities_done"
)

type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

type BadgeCriteria struct {
	Type      BadgeCriteriaType `json:"type"`
	Threshold float64           `json:"threshold"`
}

// Badge is a static catalog entry.
type Badge struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	ImageURL    string        `json:"imageUrl"`
	Criteria    BadgeCriteria `json:"criteria"`
	Rarity      Rarity        `json:"rarity"`
}

// UserBadge records that a user earned a badge. Callers dedupe by (UserID, BadgeID).
type UserBadge struct {
	UserID     UserID    `json:"userId"`
	BadgeID    string    `json:"badgeId"`
	EarnedDate time.Time `json:"earnedDate"`
	Progress   float64   `json:"progress"`
}

type AchievementType string

const (
	AchievementExplorer     AchievementType = "explorer"
	AchievementSaver        AchievementType = "saver"
	AchievementAdventurer   AchievementType = "adventurer"
	AchievementFoodie       AchievementType = "foodie"
	AchievementPhotographer AchievementType = "photographer"
)

// Achievement is computed on demand from UserStats; it is never stored.
type Achievement struct {
	UserID      UserID          `json:"userId"`
	Type        AchievementType `json:"type"`
	Level       int             `json:"level"`
	Progress    float64         `json:"progress"`
	MaxProgress float64         `json:"maxProgress"`
	Rewards     []string        `json:"rewards"`
}

type TravelerRank struct {
	Name         string `json:"name"`
	Level        int    `json:"level"`
	PointsToNext int    `json:"pointsToNext"`
}

type NextBadgeInfo struct {
	Badge     Badge   `json:"badge"`
	Progress  float64 `json:"progress"`
	Remaining float64 `json:"remaining"`
}

type RarityStats struct {
	Common    int `json:"common"`
	Rare      int `json:"rare"`
	Epic      int `json:"epic"`
	Legendary int `json:"legendary"`
}

type StreakData struct {
	CurrentStreak int       `json:"currentStreak"`
	LongestStreak int       `json:"longestStreak"`
	LastActivity  time.Time `json:"lastActivity"`
}

type GameProgressReport struct {
	CompletionPercentage int             `json:"completionPercentage"`
	EarnedBadges         int             `json:"earnedBadges"`
	TotalBadges          int             `json:"totalBadges"`
	NextBadges           []NextBadgeInfo `json:"nextBadges"`
	RarityStats          RarityStats     `json:"rarityStats"`
	TotalPoints          int             `json:"totalPoints"`
	Rank                 TravelerRank    `json:"rank"`
	StreakData           StreakData      `json:"streakData"`
}

type ChallengeType string

const (
	ChallengeDaily    ChallengeType = "daily"
	ChallengeWeekly   ChallengeType = "weekly"
	ChallengeMonthly  ChallengeType = "monthly"
	ChallengePersonal ChallengeType = "personal"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

type Challenge struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Type        ChallengeType `json:"type"`
	Target      float64       `json:"target"`
	Current     float64       `json:"current"`
	Reward      string        `json:"reward"`
	ExpiryDate  time.Time     `json:"expiryDate"`
	Difficulty  Difficulty    `json:"difficulty"`
}
