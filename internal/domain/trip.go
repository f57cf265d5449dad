package domain

import "time"

type TripStatus string

const (
	TripStatusPlanning  TripStatus = "planning"
	TripStatusConfirmed TripStatus = "confirmed"
	TripStatusActive    TripStatus = "active"
	TripStatusCompleted TripStatus = "completed"
	TripStatusCancelled TripStatus = "cancelled"
)

// Valid reports whether s is a known status.
func (s TripStatus) Valid() bool {
	switch s {
	case TripStatusPlanning, TripStatusConfirmed, TripStatusActive, TripStatusCompleted, TripStatusCancelled:
		return true
	default:
		return false
	}
}

// Terminal statuses cannot be left and freeze the trip.
func (s TripStatus) Terminal() bool {
	return s == TripStatusCompleted || s == TripStatusCancelled
}

var tripTransitions = map[TripStatus][]TripStatus{
	TripStatusPlanning:  {TripStatusConfirmed, TripStatusCancelled},
	TripStatusConfirmed: {TripStatusPlanning, TripStatusActive, TripStatusCancelled},
	TripStatusActive:    {TripStatusCompleted, TripStatusCancelled},
}

// CanTransitionTo reports whether a trip in status s may move to next.
func (s TripStatus) CanTransitionTo(next TripStatus) bool {
	for _, n := range tripTransitions[s] {
		if n == next {
			return true
		}
	}
	return false
}

type TravelerRole string

const (
	TravelerRoleOrganizer TravelerRole = "organizer"
	TravelerRoleTraveler  TravelerRole = "traveler"
)

type Traveler struct {
	ID    string       `json:"id"`
	Name  string       `json:"name"`
	Email string       `json:"email,omitempty"`
	Age   int          `json:"age,omitempty"`
	Role  TravelerRole `json:"role"`
}

type Destination struct {
	Name        string      `json:"name"`
	Country     string      `json:"country"`
	City        string      `json:"city,omitempty"`
	Coordinates Coordinates `json:"coordinates"`
	Timezone    string      `json:"timezone,omitempty"`
	Currency    string      `json:"currency,omitempty"`
}

// Trip is the planning aggregate an itinerary and its budget belong to.
// TotalBudget is a read-only input to budget optimization.
type Trip struct {
	ID          TripID      `json:"id"`
	UserID      UserID      `json:"userId"`
	Title       string      `json:"title"`
	Destination Destination `json:"destination"`

	StartDate time.Time `json:"startDate"` // date-only semantics at the edges
	EndDate   time.Time `json:"endDate"`   // date-only semantics at the edges

	TotalBudget Money      `json:"totalBudget"`
	Currency    string     `json:"currency"`
	Status      TripStatus `json:"status"`
	Travelers   []Traveler `json:"travelers"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DurationDays is the number of calendar days covered by the trip, rounded up and never below 1.
func (t Trip) DurationDays() int {
	d := t.EndDate.Sub(t.StartDate)
	days := int(d / (24 * time.Hour))
	if d%(24*time.Hour) != 0 {
		days++
	}
	if days < 1 {
		return 1
	}
	return days
}
