package expenserepo

import (
	"context"
	"sort"
	"sync"

	"github.com/Overland-East-Bay/trip-budget-api/internal/domain"
	"github.com/Overland-East-Bay/trip-budget-api/internal/ports/out/expenserepo"
)

// Repo is an in-memory implementation of expenserepo.Repository.
// It is safe for concurrent use.
type Repo struct {
	mu     sync.RWMutex
	ids    map[domain.ExpenseID]struct{}
	byTrip map[domain.TripID][]domain.Expense
}

func NewRepo() *Repo {
	return &Repo{
		ids:    make(map[domain.ExpenseID]struct{}),
		byTrip: make(map[domain.TripID][]domain.Expense),
	}
}

func (r *Repo) Add(ctx context.Context, e domain.Expense) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.ids[e.ID]; ok {
		return expenserepo.ErrAlreadyExists
	}
	r.ids[e.ID] = struct{}{}
	r.byTrip[e.TripID] = append(r.byTrip[e.TripID], e)
	return nil
}

func (r *Repo) ListByTrip(ctx context.Context, tripID domain.TripID) ([]domain.Expense, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := append(make([]domain.Expense, 0, len(r.byTrip[tripID])), r.byTrip[tripID]...)
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.SpentAt.Equal(b.SpentAt) {
			return a.SpentAt.Before(b.SpentAt)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return string(a.ID) < string(b.ID)
	})
	return out, nil
}
