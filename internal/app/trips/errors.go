package trips

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

func errTripImmutable(status domain.TripStatus) *Error {
	return &Error{Status: 409, Code: "TRIP_IMMUTABLE", Message: "trip is " + string(status) + " and cannot be modified"}
}

func errInvalidTransition(from, to domain.TripStatus) *Error {
	return &Error{
		Status:  409,
		Code:    "INVALID_STATUS_TRANSITION",
		Message: "cannot move trip from " + string(from) + " to " + string(to),
		Details: map[string]any{"from": string(from), "to": string(to)},
	}
}

func errStatusChanged() *Error {
	return &Error{Status: 409, Code: "TRIP_STATUS_CHANGED", Message: "trip status changed while updating; reload and retry"}
}

func errCompletionNotRecorded() *Error {
	return &Error{Status: 503, Code: "COMPLETION_NOT_RECORDED", Message: "trip is completed but progress was not updated; send status completed again to retry"}
}
