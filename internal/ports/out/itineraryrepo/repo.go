package itineraryrepo

import (
	"context"
	"errors"

	"github.com/Overland-East-Bay/trip-budget-api/internal/domain"
)

var ErrNotFound = errors.New("itinerary not found")

// Repository stores at most one itinerary per trip.
type Repository interface {
	// Save upserts the itinerary keyed by its TripID.
	Save(ctx context.Context, it domain.Itinerary) error
	GetByTripID(ctx context.Context, tripID domain.TripID) (domain.Itinerary, error)
}
