package statsrepo

import (
	"context"
	"errors"

	"github.com/Overland-East-Bay/trip-budget-api/internal/domain"
)

// ErrAlreadyRecorded is returned by RecordCompletion for a trip that was folded in before.
var ErrAlreadyRecorded = errors.New("trip completion already recorded")

// CompletionUpdate derives a user's next stats and newly earned badges from the stored ones.
type CompletionUpdate func(stats domain.UserStats, held []domain.UserBadge) (domain.UserStats, []domain.UserBadge, error)

// Repository persists gamification state per user.
type Repository interface {
	// GetStats returns zero-valued stats (with UserID set) when the user has none yet.
	GetStats(ctx context.Context, userID domain.UserID) (domain.UserStats, error)
	// ListBadges returns earned badges ordered by EarnedDate, then BadgeID.
	ListBadges(ctx context.Context, userID domain.UserID) ([]domain.UserBadge, error)

	// RecordCompletion loads the user's stats and badges, applies update, and stores the
	// resulting stats, the new badges and a marker for tripID as one unit. Badges the user
	// already holds are ignored. Calls for the same user are serialized. If tripID is
	// already marked, update is not called and ErrAlreadyRecorded is returned. If update
	// or any write fails, nothing is stored.
	RecordCompletion(ctx context.Context, userID domain.UserID, tripID domain.TripID, update CompletionUpdate) error
}
