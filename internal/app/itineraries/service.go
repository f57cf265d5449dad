package itineraries

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Overland-East-Bay/trip-budget-api/internal/app/budget"
	"github.com/Overland-East-Bay/trip-budget-api/internal/domain"
	"github.com/Overland-East-Bay/trip-budget-api/internal/ports/out/clock"
	"github.com/Overland-East-Bay/trip-budget-api/internal/ports/out/generator"
	"github.com/Overland-East-Bay/trip-budget-api/internal/ports/out/itineraryrepo"
	"github.com/Overland-East-Bay/trip-budget-api/internal/ports/out/triprepo"
)

const DefaultGenerateTimeout = 20 * time.Second

type Source string

const (
	SourceGenerator Source = "generator"
	SourceFallback  Source = "fallback"
)

type Options struct {
	// Generator drafts itineraries. Nil means every generation uses the fallback plan.
	Generator       generator.Generator
	GenerateTimeout time.Duration
}

type Service struct {
	trips       triprepo.Repository
	itineraries itineraryrepo.Repository
	gen         generator.Generator
	fallback    generator.Generator
	calc        *budget.Calculator
	clock       clock.Clock
	log         logrus.FieldLogger
	timeout     time.Duration

	newItineraryID func() domain.ItineraryID
}

func NewService(
	tripsRepo triprepo.Repository,
	itinerariesRepo itineraryrepo.Repository,
	calc *budget.Calculator,
	clk clock.Clock,
	log logrus.FieldLogger,
	opts Options,
) *Service {
	timeout := opts.GenerateTimeout
	if timeout <= 0 {
		timeout = DefaultGenerateTimeout
	}
	return &Service{
		trips:       tripsRepo,
		itineraries: itinerariesRepo,
		gen:         opts.Generator,
		fallback:    FallbackGenerator{},
		calc:        calc,
		clock:       clk,
		log:         log,
		timeout:     timeout,
		newItineraryID: func() domain.ItineraryID {
			return domain.ItineraryID(uuid.NewString())
		},
	}
}

// SetNewItineraryIDForTest overrides itinerary ID generation for deterministic tests.
// It should not be used in production code.
func (s *Service) SetNewItineraryIDForTest(fn func() domain.ItineraryID) {
	if fn != nil {
		s.newItineraryID = fn
	}
}

type GenerateResult struct {
	Itinerary domain.Itinerary `json:"itinerary"`
	Source    Source           `json:"source"`
}

// Generate drafts an itinerary for the trip and stores it, replacing any previous one.
// Generator failures, timeouts, and empty or invalid drafts degrade to the fallback plan.
func (s *Service) Generate(ctx context.Context, caller domain.UserID, tripID domain.TripID, prefs domain.TravelPreferences) (GenerateResult, error) {
	t, err := s.loadMutableTrip(ctx, caller, tripID)
	if err != nil {
		return GenerateResult{}, err
	}

	req := generator.Request{Trip: t, Preferences: prefs}
	source := SourceFallback
	var cand generator.CandidateItinerary
	if s.gen != nil {
		cand, err = s.draft(ctx, req)
		switch {
		case err != nil:
			s.log.WithError(err).WithField("tripId", t.ID).Warn("itinerary generator failed; using fallback")
		case len(cand.Days) == 0:
			s.log.WithField("tripId", t.ID).Warn("itinerary generator returned no days; using fallback")
		default:
			if details := validateDays(cand.Days); len(details) > 0 {
				s.log.WithFields(logrus.Fields{"tripId": t.ID, "invalid": details}).Warn("itinerary generator returned an invalid draft; using fallback")
				break
			}
			source = SourceGenerator
		}
	}
	if source == SourceFallback {
		if cand, err = s.fallback.Generate(ctx, req); err != nil {
			return GenerateResult{}, fmt.Errorf("fallback itinerary: %w", err)
		}
	}

	id, err := s.itineraryIDFor(ctx, t.ID, source)
	if err != nil {
		return GenerateResult{}, err
	}
	it := Enhance(cand, t.ID, id)
	it.BudgetBreakdown = s.calc.CalculateTripBudget(it, t)
	if err := s.itineraries.Save(ctx, it); err != nil {
		return GenerateResult{}, err
	}

	s.log.WithFields(logrus.Fields{
		"tripId": t.ID,
		"source": source,
		"days":   len(it.Days),
		"total":  it.BudgetBreakdown.Total.String(),
	}).Info("itinerary generated")

	return GenerateResult{Itinerary: it, Source: source}, nil
}

func (s *Service) draft(ctx context.Context, req generator.Request) (generator.CandidateItinerary, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.gen.Generate(ctx, req)
}

// itineraryIDFor keeps the id of an existing itinerary. New fallback plans get an id derived
// from the trip id; generated ones get a random id.
func (s *Service) itineraryIDFor(ctx context.Context, tripID domain.TripID, source Source) (domain.ItineraryID, error) {
	existing, err := s.itineraries.GetByTripID(ctx, tripID)
	switch {
	case err == nil:
		return existing.ID, nil
	case !errors.Is(err, itineraryrepo.ErrNotFound):
		return "", err
	}
	if source == SourceFallback {
		return domain.ItineraryID(uuid.NewSHA1(uuid.NameSpaceOID, []byte("trip/"+string(tripID)+"/itinerary")).String()), nil
	}
	return s.newItineraryID(), nil
}

func (s *Service) Get(ctx context.Context, caller domain.UserID, tripID domain.TripID) (domain.Itinerary, error) {
	if _, err := s.loadTrip(ctx, caller, tripID); err != nil {
		return domain.Itinerary{}, err
	}
	return s.loadItinerary(ctx, tripID)
}

type ReplaceInput struct {
	Days []domain.ItineraryDay
}

// Replace stores client-edited days. Costs must be non-negative; ids, day totals and the
// breakdown are recomputed as for a generated itinerary.
func (s *Service) Replace(ctx context.Context, caller domain.UserID, tripID domain.TripID, in ReplaceInput) (domain.Itinerary, error) {
	t, err := s.loadMutableTrip(ctx, caller, tripID)
	if err != nil {
		return domain.Itinerary{}, err
	}
	if details := validateDays(in.Days); len(details) > 0 {
		return domain.Itinerary{}, errValidation("invalid itinerary", details)
	}

	id, err := s.itineraryIDFor(ctx, t.ID, SourceGenerator)
	if err != nil {
		return domain.Itinerary{}, err
	}
	it := Enhance(generator.CandidateItinerary{Days: in.Days}, t.ID, id)
	return s.store(ctx, t, it)
}

// OptimizeSchedule reorders and retimes each day's activities in the destination's time zone.
func (s *Service) OptimizeSchedule(ctx context.Context, caller domain.UserID, tripID domain.TripID) (domain.Itinerary, error) {
	t, err := s.loadMutableTrip(ctx, caller, tripID)
	if err != nil {
		return domain.Itinerary{}, err
	}
	it, err := s.loadItinerary(ctx, tripID)
	if err != nil {
		return domain.Itinerary{}, err
	}
	return s.store(ctx, t, OptimizeSchedule(it, s.location(t)))
}

// FitDailyBudget trims each day toward an even share of maxBudget (the trip budget when nil).
func (s *Service) FitDailyBudget(ctx context.Context, caller domain.UserID, tripID domain.TripID, maxBudget *domain.Money) (domain.Itinerary, error) {
	t, err := s.loadMutableTrip(ctx, caller, tripID)
	if err != nil {
		return domain.Itinerary{}, err
	}
	limit := t.TotalBudget
	if maxBudget != nil {
		limit = *maxBudget
	}
	if limit < 0 {
		return domain.Itinerary{}, errValidation("invalid budget", map[string]any{"maxBudget": "must be >= 0"})
	}
	it, err := s.loadItinerary(ctx, tripID)
	if err != nil {
		return domain.Itinerary{}, err
	}
	return s.store(ctx, t, FitDailyBudget(it, limit))
}

func (s *Service) store(ctx context.Context, t domain.Trip, it domain.Itinerary) (domain.Itinerary, error) {
	it.BudgetBreakdown = s.calc.CalculateTripBudget(it, t)
	if err := s.itineraries.Save(ctx, it); err != nil {
		return domain.Itinerary{}, err
	}
	return it, nil
}

func (s *Service) location(t domain.Trip) *time.Location {
	if t.Destination.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(t.Destination.Timezone)
	if err != nil {
		s.log.WithError(err).WithField("timezone", t.Destination.Timezone).Warn("unknown destination timezone; scheduling in UTC")
		return time.UTC
	}
	return loc
}

func (s *Service) loadTrip(ctx context.Context, caller domain.UserID, tripID domain.TripID) (domain.Trip, error) {
	t, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		if errors.Is(err, triprepo.ErrNotFound) {
			return domain.Trip{}, errTripNotFound()
		}
		return domain.Trip{}, err
	}
	if t.UserID != caller {
		return domain.Trip{}, errTripNotFound()
	}
	return t, nil
}

func (s *Service) loadMutableTrip(ctx context.Context, caller domain.UserID, tripID domain.TripID) (domain.Trip, error) {
	t, err := s.loadTrip(ctx, caller, tripID)
	if err != nil {
		return domain.Trip{}, err
	}
	if t.Status.Terminal() {
		return domain.Trip{}, errTripImmutable(t.Status)
	}
	return t, nil
}

func (s *Service) loadItinerary(ctx context.Context, tripID domain.TripID) (domain.Itinerary, error) {
	it, err := s.itineraries.GetByTripID(ctx, tripID)
	if err != nil {
		if errors.Is(err, itineraryrepo.ErrNotFound) {
			return domain.Itinerary{}, errItineraryNotFound()
		}
		return domain.Itinerary{}, err
	}
	return it, nil
}

func validateDays(days []domain.ItineraryDay) map[string]any {
	details := map[string]any{}
	if len(days) == 0 {
		details["days"] = "must contain at least one day"
	}
	for i, d := range days {
		if d.Date.IsZero() {
			details[fmt.Sprintf("days[%d].date", i)] = "is required"
		}
		for j, a := range d.Activities {
			if badCost(a.Cost) {
				details[fmt.Sprintf("days[%d].activities[%d].cost", i, j)] = costRangeMsg
			}
		}
		for j, m := range d.Meals {
			if badCost(m.Cost) {
				details[fmt.Sprintf("days[%d].meals[%d].cost", i, j)] = costRangeMsg
			}
		}
		for j, tr := range d.Transport {
			if badCost(tr.Cost) {
				details[fmt.Sprintf("days[%d].transport[%d].cost", i, j)] = costRangeMsg
			}
		}
		if a := d.Accommodation; a != nil && (badCost(a.CostPerNight) || badCost(a.TotalCost)) {
			details[fmt.Sprintf("days[%d].accommodation", i)] = "costs " + costRangeMsg
		}
	}
	return details
}

const (
	maxCost      = domain.Money(domain.MaxMajor * 100)
	costRangeMsg = "must be between 0 and 1e12"
)

func badCost(c domain.Money) bool { return c < 0 || c > maxCost }
