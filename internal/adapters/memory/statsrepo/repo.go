package statsrepo

import (
	"context"
	"sort"
	"sync"

	"github.com/Overland-East-Bay/trip-budget-api/internal/domain"
	"github.com/Overland-East-Bay/trip-budget-api/internal/ports/out/statsrepo"
)

// Repo is an in-memory implementation of statsrepo.Repository.
// It is safe for concurrent use.
type Repo struct {
	mu        sync.RWMutex
	stats     map[domain.UserID]domain.UserStats
	badges    map[domain.UserID]map[string]domain.UserBadge
	completed map[domain.UserID]map[domain.TripID]struct{}
}

func NewRepo() *Repo {
	return &Repo{
		stats:     make(map[domain.UserID]domain.UserStats),
		badges:    make(map[domain.UserID]map[string]domain.UserBadge),
		completed: make(map[domain.UserID]map[domain.TripID]struct{}),
	}
}

func (r *Repo) GetStats(ctx context.Context, userID domain.UserID) (domain.UserStats, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.stats[userID]
	if !ok {
		return domain.UserStats{UserID: userID, VisitedCountries: []string{}}, nil
	}
	return s.Clone(), nil
}

func (r *Repo) ListBadges(ctx context.Context, userID domain.UserID) ([]domain.UserBadge, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.listBadgesLocked(userID), nil
}

func (r *Repo) listBadgesLocked(userID domain.UserID) []domain.UserBadge {
	out := make([]domain.UserBadge, 0, len(r.badges[userID]))
	for _, b := range r.badges[userID] {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].EarnedDate.Equal(out[j].EarnedDate) {
			return out[i].EarnedDate.Before(out[j].EarnedDate)
		}
		return out[i].BadgeID < out[j].BadgeID
	})
	return out
}

func (r *Repo) addBadgesLocked(badges []domain.UserBadge) {
	for _, b := range badges {
		held, ok := r.badges[b.UserID]
		if !ok {
			held = make(map[string]domain.UserBadge)
			r.badges[b.UserID] = held
		}
		if _, dup := held[b.BadgeID]; dup {
			continue
		}
		held[b.BadgeID] = b
	}
}

func (r *Repo) RecordCompletion(ctx context.Context, userID domain.UserID, tripID domain.TripID, update statsrepo.CompletionUpdate) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, done := r.completed[userID][tripID]; done {
		return statsrepo.ErrAlreadyRecorded
	}

	cur, ok := r.stats[userID]
	if !ok {
		cur = domain.UserStats{UserID: userID, VisitedCountries: []string{}}
	}
	next, fresh, err := update(cur.Clone(), r.listBadgesLocked(userID))
	if err != nil {
		return err
	}

	next.UserID = userID
	r.stats[userID] = next.Clone()
	r.addBadgesLocked(fresh)
	if r.completed[userID] == nil {
		r.completed[userID] = make(map[domain.TripID]struct{})
	}
	r.completed[userID][tripID] = struct{}{}
	return nil
}
