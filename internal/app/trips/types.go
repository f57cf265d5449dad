package trips

import (
	"time"

	"github.com/Overland-East-Bay/trip-budget-api/internal/domain"
)

// Optional is a tri-state field used to distinguish:
// - unspecified (omitted)
// - specified as null
// - specified with a value
type Optional[T any] struct {
	specified bool
	isNull    bool
	value     T
}

func Unspecified[T any]() Optional[T] { return Optional[T]{} }
func Null[T any]() Optional[T]        { return Optional[T]{specified: true, isNull: true} }
func Some[T any](v T) Optional[T]     { return Optional[T]{specified: true, value: v} }

func (o Optional[T]) IsSpecified() bool { return o.specified }
func (o Optional[T]) IsNull() bool      { return o.specified && o.isNull }
func (o Optional[T]) Value() T          { return o.value }

type CreateTripInput struct {
	Title       string
	Destination domain.Destination
	StartDate   time.Time
	EndDate     time.Time
	TotalBudget domain.Money
	// Currency defaults to USD when empty.
	Currency  string
	Travelers []domain.Traveler
}

type UpdateTripInput struct {
	// Title, Destination, StartDate, EndDate, TotalBudget and Currency cannot be null.
	Title       Optional[string]
	Destination Optional[domain.Destination]
	StartDate   Optional[time.Time]
	EndDate     Optional[time.Time]
	TotalBudget Optional[domain.Money]
	Currency    Optional[string]

	Travelers Optional[[]domain.Traveler] // null clears all travelers
}
