package gamification

import (
	"sync"

	"github.com/Overland-East-Bay/trip-budget-api/internal/domain"
)

// Catalog is an immutable, ordered set of badges. Share it by pointer.
type Catalog struct {
	badges []domain.Badge
	byID   map[string]int
}

// NewCatalog copies badges into a catalog. Later duplicates of an ID are ignored.
func NewCatalog(badges []domain.Badge) *Catalog {
	c := &Catalog{
		badges: make([]domain.Badge, 0, len(badges)),
		byID:   make(map[string]int, len(badges)),
	}
	for _, b := range badges {
		if _, dup := c.byID[b.ID]; dup {
			continue
		}
		c.byID[b.ID] = len(c.badges)
		c.badges = append(c.badges, b)
	}
	return c
}

// All returns a copy of the badges in catalog order.
func (c *Catalog) All() []domain.Badge {
	return append([]domain.Badge(nil), c.badges...)
}

func (c *Catalog) ByID(id string) (domain.Badge, bool) {
	i, ok := c.byID[id]
	if !ok {
		return domain.Badge{}, false
	}
	return c.badges[i], true
}

func (c *Catalog) Len() int { return len(c.badges) }

// DefaultCatalog returns the built-in badge set. It is constructed once per process.
var DefaultCatalog = sync.OnceValue(func() *Catalog {
	return NewCatalog(defaultBadges)
})

const badgeImageBase = "https://placehold.co/200x200?text="

var defaultBadges = []domain.Badge{
	{
		ID:          "first_trip",
		Name:        "First Journey",
		Description: "Complete your first trip planning",
		ImageURL:    badgeImageBase + "First+Journey+Badge",
		Criteria:    domain.BadgeCriteria{Type: domain.CriteriaTripsCompleted, Threshold: 1},
		Rarity:      domain.RarityCommon,
	},
	{
		ID:          "budget_saver",
		Name:        "Budget Master",
		Description: "Save 20% or more from original budget",
		ImageURL:    badgeImageBase + "Budget+Master+Badge",
		Criteria:    domain.BadgeCriteria{Type: domain.CriteriaBudgetSaved, Threshold: 20},
		Rarity:      domain.RarityRare,
	},
	{
		ID:          "explorer",
		Name:        "World Explorer",
		Description: "Visit 5 different countries",
		ImageURL:    badgeImageBase + "World+Explorer+Badge",
		Criteria:    domain.BadgeCriteria{Type: domain.CriteriaCountriesVisited, Threshold: 5},
		Rarity:      domain.RarityRare,
	},
	{
		ID:          "activity_enthusiast",
		Name:        "Activity Enthusiast",
		Description: "Complete 50 different activities",
		ImageURL:    badgeImageBase + "Activity+Enthusiast+Badge",
		Criteria:    domain.BadgeCriteria{Type: domain.CriteriaActivitiesDone, Threshold: 50},
		Rarity:      domain.RarityEpic,
	},
	{
		ID:          "frequent_traveler",
		Name:        "Frequent Traveler",
		Description: "Complete 10 trips",
		ImageURL:    badgeImageBase + "Frequent+Traveler+Badge",
		Criteria:    domain.BadgeCriteria{Type: domain.CriteriaTripsCompleted, Threshold: 10},
		Rarity:      domain.RarityEpic,
	},
	{
		ID:          "continent_collector",
		Name:        "Continent Collector",
		Description: "Visit all 7 continents",
		ImageURL:    badgeImageBase + "Continent+Collector+Badge",
		Criteria:    domain.BadgeCriteria{Type: domain.CriteriaCountriesVisited, Threshold: 20},
		Rarity:      domain.RarityLegendary,
	},
	{
		ID:          "budget_guru",
		Name:        "Budget Guru",
		Description: "Save over $10,000 total across all trips",
		ImageURL:    badgeImageBase + "Budget+Guru+Badge",
		Criteria:    domain.BadgeCriteria{Type: domain.CriteriaBudgetSaved, Threshold: 10000},
		Rarity:      domain.RarityLegendary,
	},
	{
		ID:          "solo_adventurer",
		Name:        "Solo Adventurer",
		Description: "Complete 3 solo trips",
		ImageURL:    badgeImageBase + "Solo+Adventurer+Badge",
		Criteria:    domain.BadgeCriteria{Type: domain.CriteriaTripsCompleted, Threshold: 3},
		Rarity:      domain.RarityRare,
	},
	{
		ID:          "group_organizer",
		Name:        "Group Organizer",
		Description: "Organize 5 group trips (3+ people)",
		ImageURL:    badgeImageBase + "Group+Organizer+Badge",
		Criteria:    domain.BadgeCriteria{Type: domain.CriteriaTripsCompleted, Threshold: 5},
		Rarity:      domain.RarityEpic,
	},
	{
		ID:          "culture_seeker",
		Name:        "Culture Seeker",
		Description: "Visit 25 museums and cultural sites",
		ImageURL:    badgeImageBase + "Culture+Seeker+Badge",
		Criteria:    domain.BadgeCriteria{Type: domain.CriteriaActivitiesDone, Threshold: 25},
		Rarity:      domain.RarityRare,
	},
}
