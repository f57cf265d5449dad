package expenserepo

import (
	"context"
	"errors"

	"github.com/Overland-East-Bay/trip-budget-api/internal/domain"
)

var ErrAlreadyExists = errors.New("expense already exists")

// Repository records actual spend against trips.
type Repository interface {
	Add(ctx context.Context, e domain.Expense) error
	// ListByTrip returns expenses ordered by SpentAt, then CreatedAt, then ID.
	ListByTrip(ctx context.Context, tripID domain.TripID) ([]domain.Expense, error)
}
