package triprepo

import (
	"context"
	"time"

	"github.com/Overland-East-Bay/trip-budget-api/internal/domain"
)

// Repository provides access to persisted trips.
//
// Result ordering expectations:
// - ListByUser returns trips ordered by start date ascending, then creation time, then ID.
type Repository interface {
	Create(ctx context.Context, t domain.Trip) error
	// SaveIfStatus stores t only while the stored trip still has status expected.
	// It returns ErrConflict when the stored status differs and ErrNotFound when
	// the trip does not exist.
	SaveIfStatus(ctx context.Context, t domain.Trip, expected domain.TripStatus) error
	// UpdateStatus moves trip id from status from to status to, leaving other fields as stored.
	// It returns ErrConflict when the stored status is no longer from.
	UpdateStatus(ctx context.Context, id domain.TripID, from, to domain.TripStatus, updatedAt time.Time) error

	GetByID(ctx context.Context, id domain.TripID) (domain.Trip, error)

	// ListByUser returns trips owned by the given user.
	ListByUser(ctx context.Context, userID domain.UserID) ([]domain.Trip, error)
}
