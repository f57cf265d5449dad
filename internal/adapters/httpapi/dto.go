package httpapi

import (
	"time"

	"github.com/oapi-codegen/nullable"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/Overland-East-Bay/trip-budget-api/internal/app/trips"
	"github.com/Overland-East-Bay/trip-budget-api/internal/domain"
)

// Trip is the wire shape of domain.Trip; start and end are date-only.
type Trip struct {
	ID          domain.TripID      `json:"id"`
	UserID      domain.UserID      `json:"userId"`
	Title       string             `json:"title"`
	Destination domain.Destination `json:"destination"`
	StartDate   openapi_types.Date `json:"startDate"`
	EndDate     openapi_types.Date `json:"endDate"`
	TotalBudget domain.Money       `json:"totalBudget"`
	Currency    string             `json:"currency"`
	Status      domain.TripStatus  `json:"status"`
	Travelers   []domain.Traveler  `json:"travelers"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

type TripResponse struct {
	Trip Trip `json:"trip"`
}

type TripsResponse struct {
	Trips []Trip `json:"trips"`
}

type CreateTripRequest struct {
	Title       string             `json:"title"`
	Destination domain.Destination `json:"destination"`
	StartDate   openapi_types.Date `json:"startDate"`
	EndDate     openapi_types.Date `json:"endDate"`
	TotalBudget domain.Money       `json:"totalBudget"`
	Currency    string             `json:"currency,omitempty"`
	Travelers   []domain.Traveler  `json:"travelers,omitempty"`
}

// UpdateTripRequest distinguishes omitted fields from explicit nulls.
type UpdateTripRequest struct {
	Title       nullable.Nullable[string]             `json:"title,omitempty"`
	Destination nullable.Nullable[domain.Destination] `json:"destination,omitempty"`
	StartDate   nullable.Nullable[openapi_types.Date] `json:"startDate,omitempty"`
	EndDate     nullable.Nullable[openapi_types.Date] `json:"endDate,omitempty"`
	TotalBudget nullable.Nullable[domain.Money]       `json:"totalBudget,omitempty"`
	Currency    nullable.Nullable[string]             `json:"currency,omitempty"`
	Travelers   nullable.Nullable[[]domain.Traveler]  `json:"travelers,omitempty"`
}

type TransitionTripRequest struct {
	Status domain.TripStatus `json:"status"`
}

type GenerateItineraryRequest struct {
	Preferences domain.TravelPreferences `json:"preferences"`
}

type ItineraryResponse struct {
	Itinerary domain.Itinerary `json:"itinerary"`
	Source    string           `json:"source,omitempty"`
}

type ReplaceItineraryRequest struct {
	Days []domain.ItineraryDay `json:"days"`
}

type FitDailyBudgetRequest struct {
	// MaxBudget defaults to the trip's total budget.
	MaxBudget *domain.Money `json:"maxBudget,omitempty"`
}

type BudgetResponse struct {
	Budget domain.BudgetBreakdown `json:"budget"`
}

type OptimizeBudgetRequest struct {
	// Target defaults to the trip's total budget.
	Target *domain.Money `json:"target,omitempty"`
}

type OptimizeBudgetResponse struct {
	Itinerary domain.Itinerary `json:"optimizedItinerary"`
	Savings   domain.Money     `json:"savings"`
	Overage   domain.Money     `json:"overage"`
	Resolved  bool             `json:"resolved"`
	Changes   []string         `json:"changes"`
}

type RecordExpenseRequest struct {
	Category    domain.Category `json:"category"`
	Amount      domain.Money    `json:"amount"`
	Description string          `json:"description,omitempty"`
	SpentAt     *time.Time      `json:"spentAt,omitempty"`
}

type ExpenseResponse struct {
	Expense domain.Expense `json:"expense"`
}

type ExpensesResponse struct {
	Expenses []domain.Expense `json:"expenses"`
}

type BadgesResponse struct {
	Badges []domain.Badge `json:"badges"`
}

type ChallengesResponse struct {
	Challenges []domain.Challenge `json:"challenges"`
}

func tripFromDomain(t domain.Trip) Trip {
	travelers := t.Travelers
	if travelers == nil {
		travelers = []domain.Traveler{}
	}
	return Trip{
		ID:          t.ID,
		UserID:      t.UserID,
		Title:       t.Title,
		Destination: t.Destination,
		StartDate:   openapi_types.Date{Time: t.StartDate},
		EndDate:     openapi_types.Date{Time: t.EndDate},
		TotalBudget: t.TotalBudget,
		Currency:    t.Currency,
		Status:      t.Status,
		Travelers:   travelers,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func createTripInputFromRequest(b CreateTripRequest) trips.CreateTripInput {
	return trips.CreateTripInput{
		Title:       b.Title,
		Destination: b.Destination,
		StartDate:   b.StartDate.Time,
		EndDate:     b.EndDate.Time,
		TotalBudget: b.TotalBudget,
		Currency:    b.Currency,
		Travelers:   b.Travelers,
	}
}

func updateTripInputFromRequest(b UpdateTripRequest) trips.UpdateTripInput {
	return trips.UpdateTripInput{
		Title:       optionalFromNullable(b.Title),
		Destination: optionalFromNullable(b.Destination),
		StartDate:   optionalTimeFromNullableDate(b.StartDate),
		EndDate:     optionalTimeFromNullableDate(b.EndDate),
		TotalBudget: optionalFromNullable(b.TotalBudget),
		Currency:    optionalFromNullable(b.Currency),
		Travelers:   optionalFromNullable(b.Travelers),
	}
}

func optionalFromNullable[T any](n nullable.Nullable[T]) trips.Optional[T] {
	if !n.IsSpecified() {
		return trips.Unspecified[T]()
	}
	if n.IsNull() {
		return trips.Null[T]()
	}
	v, err := n.Get()
	if err != nil {
		return trips.Unspecified[T]()
	}
	return trips.Some(v)
}

func optionalTimeFromNullableDate(n nullable.Nullable[openapi_types.Date]) trips.Optional[time.Time] {
	d := optionalFromNullable(n)
	if !d.IsSpecified() {
		return trips.Unspecified[time.Time]()
	}
	if d.IsNull() {
		return trips.Null[time.Time]()
	}
	return trips.Some(d.Value().Time)
}
