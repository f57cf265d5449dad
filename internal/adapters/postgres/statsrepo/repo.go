package statsrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Overland-East-Bay/trip-budget-api/internal/domain"
	"github.com/Overland-East-Bay/trip-budget-api/internal/ports/out/statsrepo"
)

// Repo is a Postgres implementation of statsrepo.Repository.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (r *Repo) GetStats(ctx context.Context, userID domain.UserID) (domain.UserStats, error) {
	if r.pool == nil {
		return domain.UserStats{}, errors.New("nil postgres pool")
	}
	return getStats(ctx, r.pool, userID)
}

func getStats(ctx context.Context, q querier, userID domain.UserID) (domain.UserStats, error) {
	var (
		s            = domain.UserStats{UserID: userID}
		countries    []byte
		total, month int64
		last         *time.Time
	)
	err := q.QueryRow(ctx, `
		SELECT trips_completed, countries_visited, visited_countries,
		       total_budget_saved_cents, monthly_budget_saved_cents,
		       activities_completed, restaurants_visited, photo_activities,
		       current_streak, longest_streak, last_activity_date
		FROM user_stats
		WHERE user_id = $1
	`, string(userID)).Scan(
		&s.TripsCompleted,
		&s.CountriesVisited,
		&countries,
		&total,
		&month,
		&s.ActivitiesCompleted,
		&s.RestaurantsVisited,
		&s.PhotoActivities,
		&s.CurrentStreak,
		&s.LongestStreak,
		&last,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.UserStats{UserID: userID, VisitedCountries: []string{}}, nil
		}
		return domain.UserStats{}, err
	}
	if err := json.Unmarshal(countries, &s.VisitedCountries); err != nil {
		return domain.UserStats{}, fmt.Errorf("decode visited countries: %w", err)
	}
	if s.VisitedCountries == nil {
		s.VisitedCountries = []string{}
	}
	s.TotalBudgetSaved = domain.Money(total)
	s.MonthlyBudgetSaved = domain.Money(month)
	if last != nil {
		u := last.UTC()
		s.LastActivityDate = &u
	}
	return s, nil
}

func saveStats(ctx context.Context, q querier, s domain.UserStats) error {
	visited := s.VisitedCountries
	if visited == nil {
		visited = []string{}
	}
	countries, err := json.Marshal(visited)
	if err != nil {
		return fmt.Errorf("encode visited countries: %w", err)
	}
	var last *time.Time
	if s.LastActivityDate != nil {
		u := s.LastActivityDate.UTC()
		last = &u
	}

	_, err = q.Exec(ctx, `
		INSERT INTO user_stats (
			user_id, trips_completed, countries_visited, visited_countries,
			total_budget_saved_cents, monthly_budget_saved_cents,
			activities_completed, restaurants_visited, photo_activities,
			current_streak, longest_streak, last_activity_date
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		ON CONFLICT (user_id) DO UPDATE SET
			trips_completed = EXCLUDED.trips_completed,
			countries_visited = EXCLUDED.countries_visited,
			visited_countries = EXCLUDED.visited_countries,
			total_budget_saved_cents = EXCLUDED.total_budget_saved_cents,
			monthly_budget_saved_cents = EXCLUDED.monthly_budget_saved_cents,
			activities_completed = EXCLUDED.activities_completed,
			restaurants_visited = EXCLUDED.restaurants_visited,
			photo_activities = EXCLUDED.photo_activities,
			current_streak = EXCLUDED.current_streak,
			longest_streak = EXCLUDED.longest_streak,
			last_activity_date = EXCLUDED.last_activity_date
	`,
		string(s.UserID),
		s.TripsCompleted,
		s.CountriesVisited,
		countries,
		int64(s.TotalBudgetSaved),
		int64(s.MonthlyBudgetSaved),
		s.ActivitiesCompleted,
		s.RestaurantsVisited,
		s.PhotoActivities,
		s.CurrentStreak,
		s.LongestStreak,
		last,
	)
	return err
}

func (r *Repo) ListBadges(ctx context.Context, userID domain.UserID) ([]domain.UserBadge, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	return listBadges(ctx, r.pool, userID)
}

func listBadges(ctx context.Context, q querier, userID domain.UserID) ([]domain.UserBadge, error) {
	rows, err := q.Query(ctx, `
		SELECT badge_id, earned_date, progress
		FROM user_badges
		WHERE user_id = $1
		ORDER BY earned_date ASC, badge_id ASC
	`, string(userID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.UserBadge, 0)
	for rows.Next() {
		b := domain.UserBadge{UserID: userID}
		if err := rows.Scan(&b.BadgeID, &b.EarnedDate, &b.Progress); err != nil {
			return nil, err
		}
		b.EarnedDate = b.EarnedDate.UTC()
		out = append(out, b)
	}
	return out, rows.Err()
}

// insertBadges ignores badges the user already holds.
func insertBadges(ctx context.Context, q querier, badges []domain.UserBadge) error {
	for _, b := range badges {
		if _, err := q.Exec(ctx, `
			INSERT INTO user_badges (user_id, badge_id, earned_date, progress)
			VALUES ($1,$2,$3,$4)
			ON CONFLICT (user_id, badge_id) DO NOTHING
		`, string(b.UserID), b.BadgeID, b.EarnedDate.UTC(), b.Progress); err != nil {
			return err
		}
	}
	return nil
}

// RecordCompletion runs in one transaction holding a per-user advisory lock, so
// concurrent completions for the same user across API instances apply in sequence.
func (r *Repo) RecordCompletion(ctx context.Context, userID domain.UserID, tripID domain.TripID, update statsrepo.CompletionUpdate) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, "user_stats:"+string(userID)); err != nil {
			return fmt.Errorf("lock user stats: %w", err)
		}
		tag, err := tx.Exec(ctx, `
			INSERT INTO completed_trips (user_id, trip_id)
			VALUES ($1,$2)
			ON CONFLICT (user_id, trip_id) DO NOTHING
		`, string(userID), string(tripID))
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return statsrepo.ErrAlreadyRecorded
		}

		cur, err := getStats(ctx, tx, userID)
		if err != nil {
			return err
		}
		held, err := listBadges(ctx, tx, userID)
		if err != nil {
			return err
		}
		next, fresh, err := update(cur, held)
		if err != nil {
			return err
		}
		next.UserID = userID
		if err := saveStats(ctx, tx, next); err != nil {
			return err
		}
		return insertBadges(ctx, tx, fresh)
	})
}
