package domain

import "time"

// Category is one of the six fixed budget categories.
type Category string

const (
	CategoryAccommodation Category = "accommodation"
	CategoryTransport     Category = "transport"
	CategoryFood          Category = "food"
	CategoryActivities    Category = "activities"
	CategoryShopping      Category = "shopping"
	CategoryMiscellaneous Category = "miscellaneous"
)

// AllCategories is the fixed category order used for iteration, reporting and alerts.
var AllCategories = [...]Category{
	CategoryAccommodation,
	CategoryTransport,
	CategoryFood,
	CategoryActivities,
	CategoryShopping,
	CategoryMiscellaneous,
}

// Valid reports whether c is one of the six categories.
func (c Category) Valid() bool {
	for _, k := range AllCategories {
		if k == c {
			return true
		}
	}
	return false
}

// Categories holds a non-negative amount per budget category.
type Categories struct {
	Accommodation Money `json:"accommodation"`
	Transport     Money `json:"transport"`
	Food          Money `json:"food"`
	Activities    Money `json:"activities"`
	Shopping      Money `json:"shopping"`
	Miscellaneous Money `json:"miscellaneous"`
}

func (c *Categories) slot(k Category) *Money {
	switch k {
	case CategoryAccommodation:
		return &c.Accommodation
	case CategoryTransport:
		return &c.Transport
	case CategoryFood:
		return &c.Food
	case CategoryActivities:
		return &c.Activities
	case CategoryShopping:
		return &c.Shopping
	case CategoryMiscellaneous:
		return &c.Miscellaneous
	default:
		return nil
	}
}

// Get returns the amount for k (zero for unknown categories).
func (c Categories) Get(k Category) Money {
	if p := c.slot(k); p != nil {
		return *p
	}
	return 0
}

// Add adds v to category k. Unknown categories are ignored.
func (c *Categories) Add(k Category, v Money) {
	if p := c.slot(k); p != nil {
		*p += v
	}
}

// Sum totals all six categories.
func (c Categories) Sum() Money {
	var s Money
	for _, k := range AllCategories {
		s += c.Get(k)
	}
	return s
}

type AlertType string

const (
	AlertTypeWarning        AlertType = "warning"
	AlertTypeExceeded       AlertType = "exceeded"
	AlertTypeRecommendation AlertType = "recommendation"
)

// BudgetAlert is generated fresh on every evaluation; alerts are never persisted state.
type BudgetAlert struct {
	Type      AlertType `json:"type"`
	Category  Category  `json:"category"`
	Message   string    `json:"message"`
	Amount    Money     `json:"amount"`
	Timestamp time.Time `json:"timestamp"`
}

// BudgetBreakdown is the aggregated per-category and per-day cost snapshot of an itinerary.
// Total == Categories.Sum() == sum(Daily).
type BudgetBreakdown struct {
	Total      Money            `json:"total"`
	Categories Categories       `json:"categories"`
	Daily      map[string]Money `json:"daily"`
	Remaining  Money            `json:"remaining"`
	Alerts     []BudgetAlert    `json:"alerts"`
}

// Clone deep-copies the breakdown.
func (b BudgetBreakdown) Clone() BudgetBreakdown {
	cp := b
	if b.Daily != nil {
		cp.Daily = make(map[string]Money, len(b.Daily))
		for k, v := range b.Daily {
			cp.Daily[k] = v
		}
	}
	cp.Alerts = cloneSlice(b.Alerts)
	return cp
}

// Expense is an actual spend recorded against a trip, used for variance tracking.
type Expense struct {
	ID          ExpenseID `json:"id"`
	TripID      TripID    `json:"tripId"`
	Category    Category  `json:"category"`
	Amount      Money     `json:"amount"`
	Description string    `json:"description,omitempty"`
	SpentAt     time.Time `json:"spentAt"`
	CreatedAt   time.Time `json:"createdAt"`
}
