package contracttest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Overland-East-Bay/trip-budget-api/internal/domain"
	expenserepoport "github.com/Overland-East-Bay/trip-budget-api/internal/ports/out/expenserepo"
	idempotencyport "github.com/Overland-East-Bay/trip-budget-api/internal/ports/out/idempotency"
	itineraryrepoport "github.com/Overland-East-Bay/trip-budget-api/internal/ports/out/itineraryrepo"
	statsrepoport "github.com/Overland-East-Bay/trip-budget-api/internal/ports/out/statsrepo"
	triprepoport "github.com/Overland-East-Bay/trip-budget-api/internal/ports/out/triprepo"
)

type CleanupFunc = func()

type TripRepoFactory func(t *testing.T) (triprepoport.Repository, CleanupFunc)
type ItineraryRepoFactory func(t *testing.T) (triprepoport.Repository, itineraryrepoport.Repository, CleanupFunc)
type ExpenseRepoFactory func(t *testing.T) (triprepoport.Repository, expenserepoport.Repository, CleanupFunc)
type StatsRepoFactory func(t *testing.T) (statsrepoport.Repository, CleanupFunc)
type IdemStoreFactory func(t *testing.T) (idempotencyport.Store, CleanupFunc)

func RunIdempotencyStore(t *testing.T, newStore IdemStoreFactory) {
	t.Helper()
	ctx := context.Background()

	store, cleanup := newStore(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	fp := idempotencyport.Fingerprint{
		Key:      idempotencyport.Key("k-" + uuid.NewString()),
		Subject:  domain.SubjectID("sub-1"),
		Method:   "POST",
		Route:    "/trips/{tripId}/budget/optimize",
		BodyHash: "",
	}
	if _, ok, err := store.Get(ctx, fp); err != nil || ok {
		t.Fatalf("Get before Put: ok=%v err=%v", ok, err)
	}

	rec := idempotencyport.Record{
		StatusCode:  200,
		ContentType: "application/json",
		Body:        []byte(`{"savings":1}`),
		CreatedAt:   time.Unix(123, 0).UTC(),
	}
	if err := store.Put(ctx, fp, rec); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok, err := store.Get(ctx, fp)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatalf("expected ok=true")
	}
	if string(got.Body) != `{"savings":1}` || got.ContentType != "application/json" || got.StatusCode != 200 {
		t.Fatalf("unexpected record: %+v", got)
	}

	// Overwrite semantics.
	rec2 := rec
	rec2.Body = []byte(`{"savings":2}`)
	if err := store.Put(ctx, fp, rec2); err != nil {
		t.Fatalf("Put overwrite: %v", err)
	}
	got, ok, err = store.Get(ctx, fp)
	if err != nil || !ok || string(got.Body) != `{"savings":2}` {
		t.Fatalf("expected overwritten record, got ok=%v err=%v body=%q", ok, err, string(got.Body))
	}

	// A different body hash is a different request.
	other := fp
	other.BodyHash = "abc"
	if _, ok, err := store.Get(ctx, other); err != nil || ok {
		t.Fatalf("Get other fingerprint: ok=%v err=%v", ok, err)
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NewTrip returns a fully populated trip owned by userID, suitable for seeding repositories.
func NewTrip(userID domain.UserID, start time.Time, createdAt time.Time) domain.Trip {
	return domain.Trip{
		ID:     domain.TripID(uuid.NewString()),
		UserID: userID,
		Title:  "Kyoto in spring",
		Destination: domain.Destination{
			Name:        "Kyoto",
			Country:     "Japan",
			City:        "Kyoto",
			Coordinates: domain.Coordinates{Lat: 35.0116, Lng: 135.7681},
			Timezone:    "Asia/Tokyo",
			Currency:    "JPY",
		},
		StartDate:   start,
		EndDate:     start.AddDate(0, 0, 3),
		TotalBudget: domain.FromMajor(1500),
		Currency:    "USD",
		Status:      domain.TripStatusPlanning,
		Travelers: []domain.Traveler{
			{ID: "tr-1", Name: "Ada", Email: "ada@example.com", Role: domain.TravelerRoleOrganizer},
		},
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func RunTripRepo(t *testing.T, newRepo TripRepoFactory) {
	t.Helper()
	ctx := context.Background()

	trips, cleanup := newRepo(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	owner := domain.UserID("user-" + uuid.NewString())
	other := domain.UserID("user-" + uuid.NewString())

	tr := NewTrip(owner, date(2026, 4, 2), time.Unix(2000, 0).UTC())
	if err := trips.Create(ctx, tr); err != nil {
		t.Fatalf("Create trip: %v", err)
	}
	if err := trips.Create(ctx, tr); !errors.Is(err, triprepoport.ErrAlreadyExists) {
		t.Fatalf("Create duplicate: err=%v, want ErrAlreadyExists", err)
	}

	got, err := trips.GetByID(ctx, tr.ID)
	if err != nil {
		t.Fatalf("GetByID trip: %v", err)
	}
	if got.ID != tr.ID || got.UserID != owner || got.Title != tr.Title || got.Status != domain.TripStatusPlanning {
		t.Fatalf("unexpected trip: %#v", got)
	}
	if got.Destination != tr.Destination || got.TotalBudget != tr.TotalBudget || got.Currency != "USD" {
		t.Fatalf("unexpected trip details: %#v", got)
	}
	if !got.StartDate.Equal(tr.StartDate) || !got.EndDate.Equal(tr.EndDate) || !got.CreatedAt.Equal(tr.CreatedAt) {
		t.Fatalf("unexpected trip times: %#v", got)
	}
	if len(got.Travelers) != 1 || got.Travelers[0] != tr.Travelers[0] {
		t.Fatalf("unexpected travelers: %#v", got.Travelers)
	}

	if _, err := trips.GetByID(ctx, domain.TripID(uuid.NewString())); !errors.Is(err, triprepoport.ErrNotFound) {
		t.Fatalf("GetByID missing: err=%v, want ErrNotFound", err)
	}

	got.Status = domain.TripStatusConfirmed
	got.Title = "Kyoto and Osaka"
	got.UpdatedAt = time.Unix(2100, 0).UTC()
	if err := trips.SaveIfStatus(ctx, got, domain.TripStatusPlanning); err != nil {
		t.Fatalf("SaveIfStatus: %v", err)
	}
	saved, err := trips.GetByID(ctx, tr.ID)
	if err != nil {
		t.Fatalf("GetByID after SaveIfStatus: %v", err)
	}
	if saved.Status != domain.TripStatusConfirmed || saved.Title != "Kyoto and Osaka" || !saved.UpdatedAt.Equal(got.UpdatedAt) {
		t.Fatalf("unexpected saved trip: %#v", saved)
	}

	missing := NewTrip(owner, date(2026, 1, 1), time.Unix(1, 0).UTC())

	// The write only applies while the stored status matches.
	saved.Status = domain.TripStatusActive
	if err := trips.SaveIfStatus(ctx, saved, domain.TripStatusPlanning); !errors.Is(err, triprepoport.ErrConflict) {
		t.Fatalf("SaveIfStatus stale: err=%v, want ErrConflict", err)
	}
	if err := trips.SaveIfStatus(ctx, saved, domain.TripStatusConfirmed); err != nil {
		t.Fatalf("SaveIfStatus confirmed->active: %v", err)
	}
	if cur, err := trips.GetByID(ctx, tr.ID); err != nil || cur.Status != domain.TripStatusActive {
		t.Fatalf("after SaveIfStatus: status=%s err=%v", cur.Status, err)
	}
	if err := trips.SaveIfStatus(ctx, saved, domain.TripStatusConfirmed); !errors.Is(err, triprepoport.ErrConflict) {
		t.Fatalf("SaveIfStatus replay: err=%v, want ErrConflict", err)
	}
	if err := trips.SaveIfStatus(ctx, missing, domain.TripStatusPlanning); !errors.Is(err, triprepoport.ErrNotFound) {
		t.Fatalf("SaveIfStatus missing: err=%v, want ErrNotFound", err)
	}

	stamp := time.Unix(2200, 0).UTC()
	if err := trips.UpdateStatus(ctx, tr.ID, domain.TripStatusActive, domain.TripStatusCompleted, stamp); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if err := trips.UpdateStatus(ctx, tr.ID, domain.TripStatusActive, domain.TripStatusCompleted, stamp); !errors.Is(err, triprepoport.ErrConflict) {
		t.Fatalf("UpdateStatus replay: err=%v, want ErrConflict", err)
	}
	if err := trips.UpdateStatus(ctx, missing.ID, domain.TripStatusActive, domain.TripStatusCompleted, stamp); !errors.Is(err, triprepoport.ErrNotFound) {
		t.Fatalf("UpdateStatus missing: err=%v, want ErrNotFound", err)
	}
	done, err := trips.GetByID(ctx, tr.ID)
	if err != nil {
		t.Fatalf("GetByID after UpdateStatus: %v", err)
	}
	if done.Status != domain.TripStatusCompleted || !done.UpdatedAt.Equal(stamp) || done.Title != "Kyoto and Osaka" {
		t.Fatalf("unexpected trip after UpdateStatus: %#v", done)
	}

	// Ordering: start date, then creation time.
	early := NewTrip(owner, date(2026, 3, 1), time.Unix(3000, 0).UTC())
	sameDayLater := NewTrip(owner, date(2026, 4, 2), time.Unix(4000, 0).UTC())
	foreign := NewTrip(other, date(2026, 1, 1), time.Unix(1000, 0).UTC())
	for _, x := range []domain.Trip{sameDayLater, foreign, early} {
		if err := trips.Create(ctx, x); err != nil {
			t.Fatalf("Create %s: %v", x.ID, err)
		}
	}

	list, err := trips.ListByUser(ctx, owner)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("ListByUser len=%d, want 3", len(list))
	}
	if list[0].ID != early.ID || list[1].ID != tr.ID || list[2].ID != sameDayLater.ID {
		t.Fatalf("ListByUser order=%v", []domain.TripID{list[0].ID, list[1].ID, list[2].ID})
	}

	none, err := trips.ListByUser(ctx, domain.UserID("user-"+uuid.NewString()))
	if err != nil || none == nil || len(none) != 0 {
		t.Fatalf("ListByUser unknown: %v err=%v", none, err)
	}
}

func sampleItinerary(tripID domain.TripID) domain.Itinerary {
	rating := 4.5
	d := domain.ItineraryDay{
		Date: date(2026, 4, 2),
		Activities: []domain.Activity{{
			ID:              "a1",
			Name:            "Fushimi Inari",
			Type:            domain.ActivityTypeCultural,
			Location:        domain.Location{Name: "Fushimi", Coordinates: domain.Coordinates{Lat: 34.9671, Lng: 135.7727}},
			DurationMinutes: 120,
			Cost:            domain.FromMajor(12.5),
			Rating:          &rating,
		}},
		Meals: []domain.Meal{{ID: "m1", Name: "Ramen", Type: domain.MealTypeDinner, Cost: domain.FromMajor(14)}},
		Accommodation: &domain.Accommodation{
			ID:           "h1",
			Name:         "Ryokan",
			Type:         domain.AccommodationTypeGuesthouse,
			CostPerNight: domain.FromMajor(180),
			TotalCost:    domain.FromMajor(180),
			Amenities:    []string{"wifi"},
		},
		Transport: []domain.Transportation{{ID: "t1", Mode: domain.TransportModeTrain, Cost: domain.FromMajor(3.2)}},
	}
	d.RecomputeTotal()
	return domain.Itinerary{
		ID:     domain.ItineraryID(uuid.NewString()),
		TripID: tripID,
		Days:   []domain.ItineraryDay{d},
		BudgetBreakdown: domain.BudgetBreakdown{
			Total:      d.TotalCost,
			Categories: domain.Categories{Accommodation: domain.FromMajor(180), Transport: domain.FromMajor(3.2), Food: domain.FromMajor(14), Activities: domain.FromMajor(12.5)},
			Daily:      map[string]domain.Money{"2026-04-02": d.TotalCost},
			Remaining:  domain.FromMajor(1500) - d.TotalCost,
			Alerts:     []domain.BudgetAlert{},
		},
		OptimizedRoutes: []domain.Route{},
	}
}

func RunItineraryRepo(t *testing.T, newRepos ItineraryRepoFactory) {
	t.Helper()
	ctx := context.Background()

	trips, itineraries, cleanup := newRepos(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	tr := NewTrip(domain.UserID("user-"+uuid.NewString()), date(2026, 4, 2), time.Unix(2000, 0).UTC())
	if err := trips.Create(ctx, tr); err != nil {
		t.Fatalf("seed trip: %v", err)
	}

	if _, err := itineraries.GetByTripID(ctx, tr.ID); !errors.Is(err, itineraryrepoport.ErrNotFound) {
		t.Fatalf("GetByTripID before Save: err=%v, want ErrNotFound", err)
	}

	it := sampleItinerary(tr.ID)
	if err := itineraries.Save(ctx, it); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := itineraries.GetByTripID(ctx, tr.ID)
	if err != nil {
		t.Fatalf("GetByTripID: %v", err)
	}
	if got.ID != it.ID || got.TripID != tr.ID || len(got.Days) != 1 {
		t.Fatalf("unexpected itinerary: %#v", got)
	}
	day := got.Days[0]
	if !day.Date.Equal(it.Days[0].Date) || day.TotalCost != it.Days[0].TotalCost {
		t.Fatalf("unexpected day: %#v", day)
	}
	if len(day.Activities) != 1 || day.Activities[0].Cost != domain.FromMajor(12.5) || day.Activities[0].Rating == nil || *day.Activities[0].Rating != 4.5 {
		t.Fatalf("unexpected activities: %#v", day.Activities)
	}
	if day.Accommodation == nil || day.Accommodation.TotalCost != domain.FromMajor(180) {
		t.Fatalf("unexpected accommodation: %#v", day.Accommodation)
	}
	if got.BudgetBreakdown.Total != it.BudgetBreakdown.Total || got.BudgetBreakdown.Daily["2026-04-02"] != it.Days[0].TotalCost {
		t.Fatalf("unexpected breakdown: %#v", got.BudgetBreakdown)
	}

	// Mutating the caller's copy must not leak into the store.
	it.Days[0].Activities[0].Cost = 0
	again, err := itineraries.GetByTripID(ctx, tr.ID)
	if err != nil {
		t.Fatalf("GetByTripID again: %v", err)
	}
	if again.Days[0].Activities[0].Cost != domain.FromMajor(12.5) {
		t.Fatalf("store aliased caller data")
	}

	// Save upserts by trip.
	replacement := sampleItinerary(tr.ID)
	replacement.Days[0].Meals[0].Cost = domain.FromMajor(9)
	replacement.Days[0].RecomputeTotal()
	if err := itineraries.Save(ctx, replacement); err != nil {
		t.Fatalf("Save replacement: %v", err)
	}
	got, err = itineraries.GetByTripID(ctx, tr.ID)
	if err != nil {
		t.Fatalf("GetByTripID replacement: %v", err)
	}
	if got.ID != replacement.ID || got.Days[0].Meals[0].Cost != domain.FromMajor(9) {
		t.Fatalf("unexpected replacement: %#v", got)
	}
}

func RunExpenseRepo(t *testing.T, newRepos ExpenseRepoFactory) {
	t.Helper()
	ctx := context.Background()

	trips, expenses, cleanup := newRepos(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	owner := domain.UserID("user-" + uuid.NewString())
	tr := NewTrip(owner, date(2026, 4, 2), time.Unix(2000, 0).UTC())
	otherTrip := NewTrip(owner, date(2026, 5, 2), time.Unix(2001, 0).UTC())
	for _, x := range []domain.Trip{tr, otherTrip} {
		if err := trips.Create(ctx, x); err != nil {
			t.Fatalf("seed trip: %v", err)
		}
	}

	empty, err := expenses.ListByTrip(ctx, tr.ID)
	if err != nil || empty == nil || len(empty) != 0 {
		t.Fatalf("ListByTrip empty: %v err=%v", empty, err)
	}

	later := domain.Expense{
		ID:          domain.ExpenseID(uuid.NewString()),
		TripID:      tr.ID,
		Category:    domain.CategoryFood,
		Amount:      domain.FromMajor(18.75),
		Description: "Dinner",
		SpentAt:     time.Unix(5000, 0).UTC(),
		CreatedAt:   time.Unix(5001, 0).UTC(),
	}
	earlier := domain.Expense{
		ID:        domain.ExpenseID(uuid.NewString()),
		TripID:    tr.ID,
		Category:  domain.CategoryTransport,
		Amount:    domain.FromMajor(4),
		SpentAt:   time.Unix(4000, 0).UTC(),
		CreatedAt: time.Unix(5002, 0).UTC(),
	}
	elsewhere := domain.Expense{
		ID:        domain.ExpenseID(uuid.NewString()),
		TripID:    otherTrip.ID,
		Category:  domain.CategoryShopping,
		Amount:    domain.FromMajor(60),
		SpentAt:   time.Unix(3000, 0).UTC(),
		CreatedAt: time.Unix(3000, 0).UTC(),
	}
	for _, e := range []domain.Expense{later, earlier, elsewhere} {
		if err := expenses.Add(ctx, e); err != nil {
			t.Fatalf("Add %s: %v", e.ID, err)
		}
	}
	if err := expenses.Add(ctx, later); !errors.Is(err, expenserepoport.ErrAlreadyExists) {
		t.Fatalf("Add duplicate: err=%v, want ErrAlreadyExists", err)
	}

	list, err := expenses.ListByTrip(ctx, tr.ID)
	if err != nil {
		t.Fatalf("ListByTrip: %v", err)
	}
	if len(list) != 2 || list[0].ID != earlier.ID || list[1].ID != later.ID {
		t.Fatalf("ListByTrip=%#v", list)
	}
	if list[1].Amount != later.Amount || list[1].Category != domain.CategoryFood || list[1].Description != "Dinner" || !list[1].SpentAt.Equal(later.SpentAt) {
		t.Fatalf("unexpected expense: %#v", list[1])
	}
}

func RunStatsRepo(t *testing.T, newRepo StatsRepoFactory) {
	t.Helper()
	ctx := context.Background()

	stats, cleanup := newRepo(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	user := domain.UserID("user-" + uuid.NewString())
	zero, err := stats.GetStats(ctx, user)
	if err != nil {
		t.Fatalf("GetStats unknown: %v", err)
	}
	if zero.UserID != user || zero.TripsCompleted != 0 || zero.LastActivityDate != nil || len(zero.VisitedCountries) != 0 {
		t.Fatalf("unexpected zero stats: %#v", zero)
	}
	badges, err := stats.ListBadges(ctx, user)
	if err != nil || badges == nil || len(badges) != 0 {
		t.Fatalf("ListBadges empty: %v err=%v", badges, err)
	}

	last := time.Unix(86400*3, 0).UTC()
	st := domain.UserStats{
		UserID:              user,
		TripsCompleted:      2,
		CountriesVisited:    2,
		VisitedCountries:    []string{"Japan", "France"},
		TotalBudgetSaved:    domain.FromMajor(2400.5),
		MonthlyBudgetSaved:  domain.FromMajor(40),
		ActivitiesCompleted: 10,
		RestaurantsVisited:  6,
		PhotoActivities:     4,
		CurrentStreak:       2,
		LongestStreak:       3,
		LastActivityDate:    &last,
	}
	b1 := domain.UserBadge{UserID: user, BadgeID: "first_trip", EarnedDate: time.Unix(100, 0).UTC(), Progress: 100}
	b2 := domain.UserBadge{UserID: user, BadgeID: "budget_saver", EarnedDate: time.Unix(100, 0).UTC(), Progress: 100}
	b3 := domain.UserBadge{UserID: user, BadgeID: "explorer", EarnedDate: time.Unix(50, 0).UTC(), Progress: 100}
	record := func(next domain.UserStats, fresh ...domain.UserBadge) {
		t.Helper()
		err := stats.RecordCompletion(ctx, user, domain.TripID(uuid.NewString()), func(domain.UserStats, []domain.UserBadge) (domain.UserStats, []domain.UserBadge, error) {
			return next, fresh, nil
		})
		if err != nil {
			t.Fatalf("RecordCompletion: %v", err)
		}
	}
	record(st, b1, b2)

	got, err := stats.GetStats(ctx, user)
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if got.TripsCompleted != 2 || got.TotalBudgetSaved != st.TotalBudgetSaved || got.MonthlyBudgetSaved != st.MonthlyBudgetSaved ||
		got.ActivitiesCompleted != 10 || got.RestaurantsVisited != 6 || got.PhotoActivities != 4 ||
		got.CurrentStreak != 2 || got.LongestStreak != 3 || got.CountriesVisited != 2 {
		t.Fatalf("unexpected stats: %#v", got)
	}
	if len(got.VisitedCountries) != 2 || got.VisitedCountries[0] != "Japan" || got.VisitedCountries[1] != "France" {
		t.Fatalf("unexpected countries: %#v", got.VisitedCountries)
	}
	if got.LastActivityDate == nil || !got.LastActivityDate.Equal(last) {
		t.Fatalf("unexpected last activity: %v", got.LastActivityDate)
	}

	// Overwrite; a badge already held keeps its original earned date.
	st.TripsCompleted = 3
	dup := b1
	dup.EarnedDate = time.Unix(999, 0).UTC()
	record(st, dup, b3)
	if got, err := stats.GetStats(ctx, user); err != nil || got.TripsCompleted != 3 {
		t.Fatalf("GetStats overwrite: %#v err=%v", got, err)
	}

	badges, err = stats.ListBadges(ctx, user)
	if err != nil {
		t.Fatalf("ListBadges: %v", err)
	}
	if len(badges) != 3 {
		t.Fatalf("ListBadges len=%d: %#v", len(badges), badges)
	}
	if badges[0].BadgeID != "explorer" || badges[1].BadgeID != "budget_saver" || badges[2].BadgeID != "first_trip" {
		t.Fatalf("ListBadges order=%v", []string{badges[0].BadgeID, badges[1].BadgeID, badges[2].BadgeID})
	}
	if !badges[2].EarnedDate.Equal(b1.EarnedDate) {
		t.Fatalf("duplicate overwrote earned date: %v", badges[2].EarnedDate)
	}

	// Badges are per user.
	if others, err := stats.ListBadges(ctx, domain.UserID("user-"+uuid.NewString())); err != nil || len(others) != 0 {
		t.Fatalf("ListBadges other user: %v err=%v", others, err)
	}

	runRecordCompletion(t, stats)
}

func runRecordCompletion(t *testing.T, stats statsrepoport.Repository) {
	t.Helper()
	ctx := context.Background()

	user := domain.UserID("user-" + uuid.NewString())
	trip := domain.TripID(uuid.NewString())
	earned := time.Unix(200, 0).UTC()

	// A failing update stores nothing and leaves the trip unmarked.
	boom := errors.New("boom")
	err := stats.RecordCompletion(ctx, user, trip, func(st domain.UserStats, held []domain.UserBadge) (domain.UserStats, []domain.UserBadge, error) {
		return st, nil, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("RecordCompletion failing update: err=%v, want boom", err)
	}
	if st, err := stats.GetStats(ctx, user); err != nil || st.TripsCompleted != 0 {
		t.Fatalf("stats after failed update: %#v err=%v", st, err)
	}

	calls := 0
	apply := func(st domain.UserStats, held []domain.UserBadge) (domain.UserStats, []domain.UserBadge, error) {
		calls++
		if st.UserID != user {
			t.Fatalf("update got stats for %q", st.UserID)
		}
		st.TripsCompleted++
		st.VisitedCountries = append(st.VisitedCountries, "Japan")
		st.CountriesVisited = len(st.VisitedCountries)
		var fresh []domain.UserBadge
		if len(held) == 0 {
			fresh = []domain.UserBadge{{UserID: user, BadgeID: "first_trip", EarnedDate: earned, Progress: 100}}
		}
		return st, fresh, nil
	}
	if err := stats.RecordCompletion(ctx, user, trip, apply); err != nil {
		t.Fatalf("RecordCompletion: %v", err)
	}
	if err := stats.RecordCompletion(ctx, user, trip, apply); !errors.Is(err, statsrepoport.ErrAlreadyRecorded) {
		t.Fatalf("RecordCompletion replay: err=%v, want ErrAlreadyRecorded", err)
	}
	if calls != 1 {
		t.Fatalf("update calls=%d, want 1", calls)
	}

	st, err := stats.GetStats(ctx, user)
	if err != nil || st.TripsCompleted != 1 || st.CountriesVisited != 1 {
		t.Fatalf("stats after RecordCompletion: %#v err=%v", st, err)
	}
	badges, err := stats.ListBadges(ctx, user)
	if err != nil || len(badges) != 1 || badges[0].BadgeID != "first_trip" || !badges[0].EarnedDate.Equal(earned) {
		t.Fatalf("badges after RecordCompletion: %#v err=%v", badges, err)
	}

	// A second trip sees the stored progress.
	if err := stats.RecordCompletion(ctx, user, domain.TripID(uuid.NewString()), apply); err != nil {
		t.Fatalf("RecordCompletion second trip: %v", err)
	}
	if st, err := stats.GetStats(ctx, user); err != nil || st.TripsCompleted != 2 {
		t.Fatalf("stats after second trip: %#v err=%v", st, err)
	}
	if badges, err := stats.ListBadges(ctx, user); err != nil || len(badges) != 1 {
		t.Fatalf("badges after second trip: %#v err=%v", badges, err)
	}
}
