// Package statsrepo is a SQLite-backed statsrepo.Repository for local, single-user tooling.
package statsrepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // register sqlite driver

	"github.com/Overland-East-Bay/trip-budget-api/internal/domain"
	"github.com/Overland-East-Bay/trip-budget-api/internal/ports/out/statsrepo"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS user_stats (
	user_id TEXT PRIMARY KEY,
	trips_completed INTEGER NOT NULL DEFAULT 0,
	countries_visited INTEGER NOT NULL DEFAULT 0,
	visited_countries TEXT NOT NULL DEFAULT '[]',
	total_budget_saved_cents INTEGER NOT NULL DEFAULT 0,
	monthly_budget_saved_cents INTEGER NOT NULL DEFAULT 0,
	activities_completed INTEGER NOT NULL DEFAULT 0,
	restaurants_visited INTEGER NOT NULL DEFAULT 0,
	photo_activities INTEGER NOT NULL DEFAULT 0,
	current_streak INTEGER NOT NULL DEFAULT 0,
	longest_streak INTEGER NOT NULL DEFAULT 0,
	last_activity_date TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS user_badges (
	user_id TEXT NOT NULL,
	badge_id TEXT NOT NULL,
	earned_date TEXT NOT NULL,
	progress REAL NOT NULL DEFAULT 100,
	PRIMARY KEY (user_id, badge_id)
);

CREATE TABLE IF NOT EXISTS completed_trips (
	user_id TEXT NOT NULL,
	trip_id TEXT NOT NULL,
	PRIMARY KEY (user_id, trip_id)
);
`

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Repo stores stats and badges in a SQLite file.
type Repo struct {
	db *sql.DB
}

// Open opens or creates the database at dbPath. Use ":memory:" for a throwaway store.
func Open(dbPath string) (*Repo, error) {
	dsn := ":memory:"
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
			return nil, fmt.Errorf("creating stats dir: %w", err)
		}
		dsn = dbPath + "?_pragma=journal_mode(wal)&_pragma=synchronous(normal)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening stats db: %w", err)
	}
	// ":memory:" databases live per connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &Repo{db: db}, nil
}

func (r *Repo) Close() error {
	return r.db.Close()
}

func (r *Repo) GetStats(ctx context.Context, userID domain.UserID) (domain.UserStats, error) {
	return getStats(ctx, r.db, userID)
}

func getStats(ctx context.Context, q dbtx, userID domain.UserID) (domain.UserStats, error) {
	var (
		s            = domain.UserStats{UserID: userID}
		countries    string
		total, month int64
		last         string
	)
	err := q.QueryRowContext(ctx, `SELECT
		trips_completed, countries_visited, visited_countries,
		total_budget_saved_cents, monthly_budget_saved_cents,
		activities_completed, restaurants_visited, photo_activities,
		current_streak, longest_streak, last_activity_date
		FROM user_stats WHERE user_id = ?`, string(userID)).Scan(
		&s.TripsCompleted, &s.CountriesVisited, &countries,
		&total, &month,
		&s.ActivitiesCompleted, &s.RestaurantsVisited, &s.PhotoActivities,
		&s.CurrentStreak, &s.LongestStreak, &last,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.UserStats{UserID: userID, VisitedCountries: []string{}}, nil
		}
		return domain.UserStats{}, err
	}
	if err := json.Unmarshal([]byte(countries), &s.VisitedCountries); err != nil {
		return domain.UserStats{}, fmt.Errorf("decode visited countries: %w", err)
	}
	if s.VisitedCountries == nil {
		s.VisitedCountries = []string{}
	}
	s.TotalBudgetSaved = domain.Money(total)
	s.MonthlyBudgetSaved = domain.Money(month)
	if last != "" {
		t, err := time.Parse(time.RFC3339Nano, last)
		if err != nil {
			return domain.UserStats{}, fmt.Errorf("decode last activity: %w", err)
		}
		s.LastActivityDate = &t
	}
	return s, nil
}

func saveStats(ctx context.Context, q dbtx, s domain.UserStats) error {
	visited := s.VisitedCountries
	if visited == nil {
		visited = []string{}
	}
	countries, err := json.Marshal(visited)
	if err != nil {
		return fmt.Errorf("encode visited countries: %w", err)
	}
	last := ""
	if s.LastActivityDate != nil {
		last = s.LastActivityDate.UTC().Format(time.RFC3339Nano)
	}

	_, err = q.ExecContext(ctx, `INSERT OR REPLACE INTO user_stats
		(user_id, trips_completed, countries_visited, visited_countries,
		 total_budget_saved_cents, monthly_budget_saved_cents,
		 activities_completed, restaurants_visited, photo_activities,
		 current_streak, longest_streak, last_activity_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(s.UserID), s.TripsCompleted, s.CountriesVisited, string(countries),
		int64(s.TotalBudgetSaved), int64(s.MonthlyBudgetSaved),
		s.ActivitiesCompleted, s.RestaurantsVisited, s.PhotoActivities,
		s.CurrentStreak, s.LongestStreak, last,
	)
	return err
}

func (r *Repo) ListBadges(ctx context.Context, userID domain.UserID) ([]domain.UserBadge, error) {
	return listBadges(ctx, r.db, userID)
}

func listBadges(ctx context.Context, q dbtx, userID domain.UserID) ([]domain.UserBadge, error) {
	rows, err := q.QueryContext(ctx, `SELECT badge_id, earned_date, progress
		FROM user_badges WHERE user_id = ?`, string(userID))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := make([]domain.UserBadge, 0)
	for rows.Next() {
		var (
			b      = domain.UserBadge{UserID: userID}
			earned string
		)
		if err := rows.Scan(&b.BadgeID, &earned, &b.Progress); err != nil {
			return nil, err
		}
		if b.EarnedDate, err = time.Parse(time.RFC3339Nano, earned); err != nil {
			return nil, fmt.Errorf("decode earned date: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sortBadges(out)
	return out, nil
}

func insertBadges(ctx context.Context, q dbtx, badges []domain.UserBadge) error {
	for _, b := range badges {
		if _, err := q.ExecContext(ctx, `INSERT OR IGNORE INTO user_badges
			(user_id, badge_id, earned_date, progress) VALUES (?, ?, ?, ?)`,
			string(b.UserID), b.BadgeID, b.EarnedDate.UTC().Format(time.RFC3339Nano), b.Progress,
		); err != nil {
			return err
		}
	}
	return nil
}

// RecordCompletion writes the trip marker first so the transaction takes the
// database write lock before reading the current stats.
func (r *Repo) RecordCompletion(ctx context.Context, userID domain.UserID, tripID domain.TripID, update statsrepo.CompletionUpdate) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO completed_trips (user_id, trip_id) VALUES (?, ?)`,
		string(userID), string(tripID))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
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
	if err := insertBadges(ctx, tx, fresh); err != nil {
		return err
	}
	return tx.Commit()
}
