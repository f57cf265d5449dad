package expenserepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/Overland-East-Bay/trip-budget-api/internal/adapters/postgres"
	"github.com/Overland-East-Bay/trip-budget-api/internal/domain"
	"github.com/Overland-East-Bay/trip-budget-api/internal/ports/out/expenserepo"
)

// Repo is a Postgres implementation of expenserepo.Repository.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

func (r *Repo) Add(ctx context.Context, e domain.Expense) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	id, err := uuid.Parse(string(e.ID))
	if err != nil {
		return fmt.Errorf("invalid expense id: %w", err)
	}
	tripUUID, err := uuid.Parse(string(e.TripID))
	if err != nil {
		return fmt.Errorf("invalid trip id: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO expenses (id, trip_id, category, amount_cents, description, spent_at, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`,
		id,
		tripUUID,
		string(e.Category),
		int64(e.Amount),
		e.Description,
		e.SpentAt.UTC(),
		e.CreatedAt.UTC(),
	)
	if err != nil {
		if postgres.IsUniqueViolation(err, "expenses_pkey") {
			return expenserepo.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *Repo) ListByTrip(ctx context.Context, tripID domain.TripID) ([]domain.Expense, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	out := make([]domain.Expense, 0)
	tripUUID, err := uuid.Parse(string(tripID))
	if err != nil {
		return out, nil
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, category, amount_cents, description, spent_at, created_at
		FROM expenses
		WHERE trip_id = $1
		ORDER BY spent_at ASC, created_at ASC, id ASC
	`, tripUUID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id       uuid.UUID
			category string
			amount   int64
			e        domain.Expense
			spent    time.Time
			created  time.Time
		)
		if err := rows.Scan(&id, &category, &amount, &e.Description, &spent, &created); err != nil {
			return nil, err
		}
		e.ID = domain.ExpenseID(id.String())
		e.TripID = tripID
		e.Category = domain.Category(category)
		e.Amount = domain.Money(amount)
		e.SpentAt = spent.UTC()
		e.CreatedAt = created.UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}
