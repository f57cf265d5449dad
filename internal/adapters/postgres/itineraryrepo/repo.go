package itineraryrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Overland-East-Bay/trip-budget-api/internal/domain"
	"github.com/Overland-East-Bay/trip-budget-api/internal/ports/out/itineraryrepo"
)

// Repo is a Postgres implementation of itineraryrepo.Repository.
// Days, breakdown and routes are stored as JSONB documents, one row per trip.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

func (r *Repo) Save(ctx context.Context, it domain.Itinerary) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	tripUUID, err := uuid.Parse(string(it.TripID))
	if err != nil {
		return fmt.Errorf("invalid trip id: %w", err)
	}
	itUUID, err := uuid.Parse(string(it.ID))
	if err != nil {
		return fmt.Errorf("invalid itinerary id: %w", err)
	}

	days := it.Days
	if days == nil {
		days = []domain.ItineraryDay{}
	}
	routes := it.OptimizedRoutes
	if routes == nil {
		routes = []domain.Route{}
	}
	daysJSON, err := json.Marshal(days)
	if err != nil {
		return fmt.Errorf("encode days: %w", err)
	}
	breakdownJSON, err := json.Marshal(it.BudgetBreakdown)
	if err != nil {
		return fmt.Errorf("encode breakdown: %w", err)
	}
	routesJSON, err := json.Marshal(routes)
	if err != nil {
		return fmt.Errorf("encode routes: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO itineraries (trip_id, id, days, budget_breakdown, optimized_routes, updated_at)
		VALUES ($1,$2,$3,$4,$5, now())
		ON CONFLICT (trip_id) DO UPDATE SET
			id = EXCLUDED.id,
			days = EXCLUDED.days,
			budget_breakdown = EXCLUDED.budget_breakdown,
			optimized_routes = EXCLUDED.optimized_routes,
			updated_at = EXCLUDED.updated_at
	`, tripUUID, itUUID, daysJSON, breakdownJSON, routesJSON)
	return err
}

func (r *Repo) GetByTripID(ctx context.Context, tripID domain.TripID) (domain.Itinerary, error) {
	if r.pool == nil {
		return domain.Itinerary{}, errors.New("nil postgres pool")
	}
	tripUUID, err := uuid.Parse(string(tripID))
	if err != nil {
		return domain.Itinerary{}, itineraryrepo.ErrNotFound
	}

	var (
		id                      uuid.UUID
		days, breakdown, routes []byte
	)
	err = r.pool.QueryRow(ctx, `
		SELECT id, days, budget_breakdown, optimized_routes
		FROM itineraries
		WHERE trip_id = $1
	`, tripUUID).Scan(&id, &days, &breakdown, &routes)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Itinerary{}, itineraryrepo.ErrNotFound
		}
		return domain.Itinerary{}, err
	}

	it := domain.Itinerary{ID: domain.ItineraryID(id.String()), TripID: tripID}
	if err := json.Unmarshal(days, &it.Days); err != nil {
		return domain.Itinerary{}, fmt.Errorf("decode days: %w", err)
	}
	if err := json.Unmarshal(breakdown, &it.BudgetBreakdown); err != nil {
		return domain.Itinerary{}, fmt.Errorf("decode breakdown: %w", err)
	}
	if err := json.Unmarshal(routes, &it.OptimizedRoutes); err != nil {
		return domain.Itinerary{}, fmt.Errorf("decode routes: %w", err)
	}
	return it, nil
}
