package itineraries

import "github.com/Overland-East-Bay/trip-budget-api/internal/domain"

// Error is an application-layer error that can be mapped to an HTTP response.
type Error struct {
	Status  int
	Code    string
	Message string
	Details map[string]any
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	return e.Code
}

func errTripNotFound() *Error {
	return &Error{Status: 404, Code: "TRIP_NOT_FOUND", Message: "trip not found"}
}

func errItineraryNotFound() *Error {
	return &Error{Status: 404, Code: "ITINERARY_NOT_FOUND", Message: "trip has no itinerary"}
}

func errTripImmutable(status domain.TripStatus) *Error {
	return &Error{Status: 409, Code: "TRIP_IMMUTABLE", Message: "trip is " + string(status) + " and cannot be modified"}
}

func errValidation(msg string, details map[string]any) *Error {
	return &Error{Status: 422, Code: "VALIDATION_ERROR", Message: msg, Details: details}
}
