package triprepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/Overland-East-Bay/trip-budget-api/internal/adapters/postgres"
	"github.com/Overland-East-Bay/trip-budget-api/internal/domain"
	"github.com/Overland-East-Bay/trip-budget-api/internal/ports/out/triprepo"
)

// Repo is a Postgres implementation of triprepo.Repository.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const selectTrip = `
	SELECT id, user_id, title, destination, start_date, end_date,
	       total_budget_cents, currency, status, travelers, created_at, updated_at
	FROM trips
`

func (r *Repo) Create(ctx context.Context, t domain.Trip) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	id, err := uuid.Parse(string(t.ID))
	if err != nil {
		return fmt.Errorf("invalid trip id: %w", err)
	}
	dest, travelers, err := encodeJSON(t)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO trips (
			id, user_id, title, destination, start_date, end_date,
			total_budget_cents, currency, status, travelers, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`,
		id,
		string(t.UserID),
		t.Title,
		dest,
		toDate(t.StartDate),
		toDate(t.EndDate),
		int64(t.TotalBudget),
		t.Currency,
		string(t.Status),
		travelers,
		t.CreatedAt.UTC(),
		t.UpdatedAt.UTC(),
	)
	if err != nil {
		if postgres.IsUniqueViolation(err, "trips_pkey") {
			return triprepo.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *Repo) SaveIfStatus(ctx context.Context, t domain.Trip, expected domain.TripStatus) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	id, err := uuid.Parse(string(t.ID))
	if err != nil {
		return triprepo.ErrNotFound
	}
	dest, travelers, err := encodeJSON(t)
	if err != nil {
		return err
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE trips SET
			user_id = $2,
			title = $3,
			destination = $4,
			start_date = $5,
			end_date = $6,
			total_budget_cents = $7,
			currency = $8,
			status = $9,
			travelers = $10,
			updated_at = $11
		WHERE id = $1 AND status = $12
	`,
		id,
		string(t.UserID),
		t.Title,
		dest,
		toDate(t.StartDate),
		toDate(t.EndDate),
		int64(t.TotalBudget),
		t.Currency,
		string(t.Status),
		travelers,
		t.UpdatedAt.UTC(),
		string(expected),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	return r.conflictOrMissing(ctx, id)
}

func (r *Repo) UpdateStatus(ctx context.Context, tripID domain.TripID, from, to domain.TripStatus, updatedAt time.Time) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	id, err := uuid.Parse(string(tripID))
	if err != nil {
		return triprepo.ErrNotFound
	}
	tag, err := r.pool.Exec(ctx, `
		UPDATE trips SET status = $3, updated_at = $4
		WHERE id = $1 AND status = $2
	`, id, string(from), string(to), updatedAt.UTC())
	if err != nil {
		return err
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	return r.conflictOrMissing(ctx, id)
}

// conflictOrMissing explains a conditional update that matched no row.
func (r *Repo) conflictOrMissing(ctx context.Context, id uuid.UUID) error {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM trips WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return triprepo.ErrNotFound
	}
	return triprepo.ErrConflict
}

func (r *Repo) GetByID(ctx context.Context, id domain.TripID) (domain.Trip, error) {
	if r.pool == nil {
		return domain.Trip{}, errors.New("nil postgres pool")
	}
	tripUUID, err := uuid.Parse(string(id))
	if err != nil {
		return domain.Trip{}, triprepo.ErrNotFound
	}
	t, err := scanTrip(r.pool.QueryRow(ctx, selectTrip+` WHERE id = $1`, tripUUID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Trip{}, triprepo.ErrNotFound
		}
		return domain.Trip{}, err
	}
	return t, nil
}

func (r *Repo) ListByUser(ctx context.Context, userID domain.UserID) ([]domain.Trip, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	rows, err := r.pool.Query(ctx, selectTrip+`
		WHERE user_id = $1
		ORDER BY start_date ASC, created_at ASC, id ASC
	`, string(userID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Trip, 0)
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func scanTrip(row pgx.Row) (domain.Trip, error) {
	var (
		id          uuid.UUID
		userID      string
		t           domain.Trip
		dest        []byte
		start, end  pgtype.Date
		budget      int64
		status      string
		travelers   []byte
		created, up time.Time
	)
	if err := row.Scan(&id, &userID, &t.Title, &dest, &start, &end, &budget, &t.Currency, &status, &travelers, &created, &up); err != nil {
		return domain.Trip{}, err
	}
	if err := json.Unmarshal(dest, &t.Destination); err != nil {
		return domain.Trip{}, fmt.Errorf("decode destination: %w", err)
	}
	if err := json.Unmarshal(travelers, &t.Travelers); err != nil {
		return domain.Trip{}, fmt.Errorf("decode travelers: %w", err)
	}
	if t.Travelers == nil {
		t.Travelers = []domain.Traveler{}
	}
	t.ID = domain.TripID(id.String())
	t.UserID = domain.UserID(userID)
	t.StartDate = fromDate(start)
	t.EndDate = fromDate(end)
	t.TotalBudget = domain.Money(budget)
	t.Status = domain.TripStatus(status)
	t.CreatedAt = created.UTC()
	t.UpdatedAt = up.UTC()
	return t, nil
}

func encodeJSON(t domain.Trip) (dest, travelers []byte, err error) {
	dest, err = json.Marshal(t.Destination)
	if err != nil {
		return nil, nil, fmt.Errorf("encode destination: %w", err)
	}
	tr := t.Travelers
	if tr == nil {
		tr = []domain.Traveler{}
	}
	travelers, err = json.Marshal(tr)
	if err != nil {
		return nil, nil, fmt.Errorf("encode travelers: %w", err)
	}
	return dest, travelers, nil
}

func toDate(t time.Time) pgtype.Date {
	if t.IsZero() {
		return pgtype.Date{}
	}
	u := t.UTC()
	return pgtype.Date{Time: time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC), Valid: true}
}

func fromDate(d pgtype.Date) time.Time {
	if !d.Valid {
		return time.Time{}
	}
	return time.Date(d.Time.Year(), d.Time.Month(), d.Time.Day(), 0, 0, 0, 0, time.UTC)
}
