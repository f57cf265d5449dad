package generator

import (
	"context"
	"errors"

	"github.com/Overland-East-Bay/trip-budget-api/internal/domain"
)

// ErrUnavailable is returned when no generation backend is configured.
var ErrUnavailable = errors.New("itinerary generator unavailable")

// Request carries everything an external planner needs to draft an itinerary.
type Request struct {
	Trip        domain.Trip
	Preferences domain.TravelPreferences
}

// CandidateItinerary is a partially-filled itinerary as returned by a generator.
// Any field may be missing; callers enhance it before use.
type CandidateItinerary struct {
	Days []domain.ItineraryDay `json:"days"`
}

// Generator drafts itineraries. Implementations perform network I/O and must honor ctx.
type Generator interface {
	Generate(ctx context.Context, req Request) (CandidateItinerary, error)
}
