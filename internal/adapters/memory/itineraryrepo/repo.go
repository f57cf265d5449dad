package itineraryrepo

import (
	"context"
	"sync"

	"github.com/Overland-East-Bay/trip-budget-api/internal/domain"
	"github.com/Overland-East-Bay/trip-budget-api/internal/ports/out/itineraryrepo"
)

// Repo is an in-memory implementation of itineraryrepo.Repository.
// It is safe for concurrent use.
type Repo struct {
	mu     sync.RWMutex
	byTrip map[domain.TripID]domain.Itinerary
}

func NewRepo() *Repo {
	return &Repo{
		byTrip: make(map[domain.TripID]domain.Itinerary),
	}
}

func (r *Repo) Save(ctx context.Context, it domain.Itinerary) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byTrip[it.TripID] = it.Clone()
	return nil
}

func (r *Repo) GetByTripID(ctx context.Context, tripID domain.TripID) (domain.Itinerary, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	it, ok := r.byTrip[tripID]
	if !ok {
		return domain.Itinerary{}, itineraryrepo.ErrNotFound
	}
	return it.Clone(), nil
}
