package trips

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Overland-East-Bay/trip-budget-api/internal/domain"
	"github.com/Overland-East-Bay/trip-budget-api/internal/ports/out/clock"
	"github.com/Overland-East-Bay/trip-budget-api/internal/ports/out/triprepo"
)

const defaultCurrency = "USD"

// CompletionRecorder is notified after a trip has been persisted as completed.
type CompletionRecorder interface {
	TripCompleted(ctx context.Context, t domain.Trip) error
}

type Service struct {
	trips    triprepo.Repository
	clock    clock.Clock
	recorder CompletionRecorder
	log      logrus.FieldLogger

	newTripID func() domain.TripID
}

// NewService wires the trip service. recorder may be nil.
func NewService(tripsRepo triprepo.Repository, clk clock.Clock, recorder CompletionRecorder, log logrus.FieldLogger) *Service {
	return &Service{
		trips:    tripsRepo,
		clock:    clk,
		recorder: recorder,
		log:      log,
		newTripID: func() domain.TripID {
			return domain.TripID(uuid.NewString())
		},
	}
}

// SetNewTripIDForTest overrides trip ID generation for deterministic tests.
// It should not be used in production code.
func (s *Service) SetNewTripIDForTest(fn func() domain.TripID) {
	if fn != nil {
		s.newTripID = fn
	}
}

func (s *Service) ListMyTrips(ctx context.Context, caller domain.UserID) ([]domain.Trip, error) {
	return s.trips.ListByUser(ctx, caller)
}

func (s *Service) GetTrip(ctx context.Context, caller domain.UserID, tripID domain.TripID) (domain.Trip, error) {
	t, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		if errors.Is(err, triprepo.ErrNotFound) {
			return domain.Trip{}, errTripNotFound()
		}
		return domain.Trip{}, err
	}
	// Trips owned by someone else are reported as missing.
	if t.UserID != caller {
		return domain.Trip{}, errTripNotFound()
	}
	return t, nil
}

func (s *Service) CreateTrip(ctx context.Context, caller domain.UserID, in CreateTripInput) (domain.Trip, error) {
	if caller == "" {
		return domain.Trip{}, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid caller", Details: map[string]any{"userId": "must be non-empty"}}
	}

	now := s.clock.Now().UTC()
	t := domain.Trip{
		ID:          s.newTripID(),
		UserID:      caller,
		Title:       in.Title,
		Destination: in.Destination,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		TotalBudget: in.TotalBudget,
		Currency:    in.Currency,
		Status:      domain.TripStatusPlanning,
		Travelers:   in.Travelers,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if t.Currency == "" {
		t.Currency = defaultCurrency
	}
	if err := s.normalizeAndValidate(&t); err != nil {
		return domain.Trip{}, err
	}

	if err := s.trips.Create(ctx, t); err != nil {
		if errors.Is(err, triprepo.ErrAlreadyExists) {
			// Extremely unlikely (UUID collision); treat as conflict.
			return domain.Trip{}, &Error{Status: 409, Code: "TRIP_ID_CONFLICT", Message: "trip id conflict"}
		}
		return domain.Trip{}, err
	}
	return t, nil
}

func (s *Service) UpdateTrip(ctx context.Context, caller domain.UserID, tripID domain.TripID, in UpdateTripInput) (domain.Trip, error) {
	t, err := s.GetTrip(ctx, caller, tripID)
	if err != nil {
		return domain.Trip{}, err
	}
	if t.Status.Terminal() {
		return domain.Trip{}, errTripImmutable(t.Status)
	}

	notNull := map[string]bool{
		"title":       in.Title.IsNull(),
		"destination": in.Destination.IsNull(),
		"startDate":   in.StartDate.IsNull(),
		"endDate":     in.EndDate.IsNull(),
		"totalBudget": in.TotalBudget.IsNull(),
		"currency":    in.Currency.IsNull(),
	}
	details := map[string]any{}
	for field, isNull := range notNull {
		if isNull {
			details[field] = "cannot be null"
		}
	}
	if len(details) > 0 {
		return domain.Trip{}, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid trip", Details: details}
	}

	if in.Title.IsSpecified() {
		t.Title = in.Title.Value()
	}
	if in.Destination.IsSpecified() {
		t.Destination = in.Destination.Value()
	}
	if in.StartDate.IsSpecified() {
		t.StartDate = in.StartDate.Value()
	}
	if in.EndDate.IsSpecified() {
		t.EndDate = in.EndDate.Value()
	}
	if in.TotalBudget.IsSpecified() {
		t.TotalBudget = in.TotalBudget.Value()
	}
	if in.Currency.IsSpecified() {
		t.Currency = in.Currency.Value()
	}
	if in.Travelers.IsSpecified() {
		if in.Travelers.IsNull() {
			t.Travelers = []domain.Traveler{}
		} else {
			t.Travelers = in.Travelers.Value()
		}
	}

	if err := s.normalizeAndValidate(&t); err != nil {
		return domain.Trip{}, err
	}

	t.UpdatedAt = s.clock.Now().UTC()
	if err := s.trips.SaveIfStatus(ctx, t, t.Status); err != nil {
		if errors.Is(err, triprepo.ErrConflict) {
			return domain.Trip{}, errStatusChanged()
		}
		return domain.Trip{}, err
	}
	return t, nil
}

// TransitionStatus moves a trip through its lifecycle. The status write is conditional on the
// status that was read, so of two racing requests only one succeeds and only that one notifies
// the CompletionRecorder. Re-applying "completed" re-runs the recorder, which must be idempotent
// per trip; this is how a client retries after COMPLETION_NOT_RECORDED.
func (s *Service) TransitionStatus(ctx context.Context, caller domain.UserID, tripID domain.TripID, next domain.TripStatus) (domain.Trip, error) {
	if !next.Valid() {
		return domain.Trip{}, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid status", Details: map[string]any{"status": "must be one of planning, confirmed, active, completed, cancelled"}}
	}
	t, err := s.GetTrip(ctx, caller, tripID)
	if err != nil {
		return domain.Trip{}, err
	}
	if t.Status == next {
		if next == domain.TripStatusCompleted {
			if err := s.recordCompletion(ctx, t); err != nil {
				return domain.Trip{}, err
			}
		}
		return t, nil
	}
	if !t.Status.CanTransitionTo(next) {
		return domain.Trip{}, errInvalidTransition(t.Status, next)
	}

	prev := t.Status
	t.Status = next
	t.UpdatedAt = s.clock.Now().UTC()
	if err := s.trips.UpdateStatus(ctx, t.ID, prev, next, t.UpdatedAt); err != nil {
		if !errors.Is(err, triprepo.ErrConflict) {
			return domain.Trip{}, err
		}
		// Another request moved the trip first.
		cur, getErr := s.GetTrip(ctx, caller, tripID)
		if getErr != nil {
			return domain.Trip{}, getErr
		}
		if cur.Status == next {
			return cur, nil
		}
		return domain.Trip{}, errInvalidTransition(cur.Status, next)
	}

	if next == domain.TripStatusCompleted {
		if err := s.recordCompletion(ctx, t); err != nil {
			return domain.Trip{}, err
		}
	}
	return t, nil
}

// recordCompletion notifies the recorder. The trip is already stored as completed, so a
// failure is reported as retryable rather than undoing the transition.
func (s *Service) recordCompletion(ctx context.Context, t domain.Trip) error {
	if s.recorder == nil {
		return nil
	}
	if err := s.recorder.TripCompleted(ctx, t); err != nil {
		s.log.WithError(err).WithField("tripId", t.ID).Error("record trip completion")
		return errCompletionNotRecorded()
	}
	return nil
}

func (s *Service) normalizeAndValidate(t *domain.Trip) error {
	t.Title = domain.NormalizeHumanName(t.Title)
	t.Destination.Name = domain.NormalizeHumanName(t.Destination.Name)
	t.Destination.Country = domain.NormalizeHumanName(t.Destination.Country)
	t.Destination.City = domain.NormalizeHumanName(t.Destination.City)
	t.Destination.Currency = domain.NormalizeCurrency(t.Destination.Currency)
	t.Currency = domain.NormalizeCurrency(t.Currency)
	t.StartDate = dateOnly(t.StartDate)
	t.EndDate = dateOnly(t.EndDate)

	details := map[string]any{}
	if t.Title == "" {
		details["title"] = "must be non-empty"
	}
	if t.Destination.Name == "" {
		details["destination.name"] = "must be non-empty"
	}
	if t.Destination.Country == "" {
		details["destination.country"] = "must be non-empty"
	}
	if t.Destination.Currency != "" && !domain.ValidCurrency(t.Destination.Currency) {
		details["destination.currency"] = "must be a 3-letter ISO 4217 code"
	}
	if !domain.ValidCurrency(t.Currency) {
		details["currency"] = "must be a 3-letter ISO 4217 code"
	}
	if t.StartDate.IsZero() {
		details["startDate"] = "is required"
	}
	if t.EndDate.IsZero() {
		details["endDate"] = "is required"
	}
	if !t.StartDate.IsZero() && !t.EndDate.IsZero() && t.EndDate.Before(t.StartDate) {
		details["endDate"] = "must be on or after startDate"
	}
	if t.TotalBudget < 0 {
		details["totalBudget"] = "must be >= 0"
	}

	travelers := make([]domain.Traveler, 0, len(t.Travelers))
	for i, tr := range t.Travelers {
		tr.Name = domain.NormalizeHumanName(tr.Name)
		if tr.Name == "" {
			details["travelers"] = "every traveler needs a name"
		}
		if tr.Role == "" {
			tr.Role = domain.TravelerRoleTraveler
		}
		if tr.Role != domain.TravelerRoleOrganizer && tr.Role != domain.TravelerRoleTraveler {
			details["travelers"] = "role must be organizer or traveler"
		}
		if tr.ID == "" {
			tr.ID = uuid.NewSHA1(uuid.NameSpaceOID, []byte(string(t.ID)+"/traveler/"+strconv.Itoa(i))).String()
		}
		travelers = append(travelers, tr)
	}
	t.Travelers = travelers

	if len(details) > 0 {
		return &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid trip", Details: details}
	}
	return nil
}

func dateOnly(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
