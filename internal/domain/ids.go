package domain

// SubjectID is the authenticated subject extracted from JWT claims (typically "sub").
// We model it as an opaque identifier: its format is controlled by the IdP.
type SubjectID string

// UserID identifies the owner of trips, stats and badges. In v1 it is the authenticated subject.
type UserID string

// TripID is an internal identifier for a trip record.
type TripID string

// ItineraryID is an internal identifier for an itinerary record.
type ItineraryID string

// ExpenseID is an internal identifier for a recorded expense.
type ExpenseID string

// UserIDFromSubject maps an authenticated subject to the owning user.
func UserIDFromSubject(s SubjectID) UserID { return UserID(s) }
