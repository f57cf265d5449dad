package budget

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Overland-East-Bay/trip-budget-api/internal/domain"
	"github.com/Overland-East-Bay/trip-budget-api/internal/ports/out/clock"
	"github.com/Overland-East-Bay/trip-budget-api/internal/ports/out/expenserepo"
	"github.com/Overland-East-Bay/trip-budget-api/internal/ports/out/itineraryrepo"
	"github.com/Overland-East-Bay/trip-budget-api/internal/ports/out/triprepo"
)

type Service struct {
	trips       triprepo.Repository
	itineraries itineraryrepo.Repository
	expenses    expenserepo.Repository
	calc        *Calculator
	clock       clock.Clock
	log         logrus.FieldLogger

	newExpenseID func() domain.ExpenseID
}

func NewService(
	tripsRepo triprepo.Repository,
	itinerariesRepo itineraryrepo.Repository,
	expensesRepo expenserepo.Repository,
	calc *Calculator,
	clk clock.Clock,
	log logrus.FieldLogger,
) *Service {
	return &Service{
		trips:       tripsRepo,
		itineraries: itinerariesRepo,
		expenses:    expensesRepo,
		calc:        calc,
		clock:       clk,
		log:         log,
		newExpenseID: func() domain.ExpenseID {
			return domain.ExpenseID(uuid.NewString())
		},
	}
}

// SetNewExpenseIDForTest overrides expense ID generation for deterministic tests.
// It should not be used in production code.
func (s *Service) SetNewExpenseIDForTest(fn func() domain.ExpenseID) {
	if fn != nil {
		s.newExpenseID = fn
	}
}

// Breakdown recomputes the trip's budget breakdown from its current itinerary.
func (s *Service) Breakdown(ctx context.Context, caller domain.UserID, tripID domain.TripID) (domain.BudgetBreakdown, error) {
	t, it, err := s.loadPlan(ctx, caller, tripID)
	if err != nil {
		return domain.BudgetBreakdown{}, err
	}
	return s.calc.CalculateTripBudget(it, t), nil
}

type OptimizeInput struct {
	// Target defaults to the trip's total budget when nil.
	Target *domain.Money
}

// Optimize reduces the stored itinerary toward the target and persists the result with a
// recomputed breakdown. An itinerary already within the target is left untouched.
func (s *Service) Optimize(ctx context.Context, caller domain.UserID, tripID domain.TripID, in OptimizeInput) (OptimizationResult, error) {
	t, it, err := s.loadPlan(ctx, caller, tripID)
	if err != nil {
		return OptimizationResult{}, err
	}
	if t.Status.Terminal() {
		return OptimizationResult{}, &Error{Status: 409, Code: "TRIP_IMMUTABLE", Message: "trip is " + string(t.Status) + " and cannot be modified"}
	}

	target := t.TotalBudget
	if in.Target != nil {
		target = *in.Target
	}
	if target < 0 {
		return OptimizationResult{}, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid target", Details: map[string]any{"target": "must be >= 0"}}
	}

	res := s.calc.OptimizeBudget(it, target)
	if res.Overage <= 0 {
		return res, nil
	}

	res.Itinerary.BudgetBreakdown = s.calc.CalculateTripBudget(res.Itinerary, t)
	if err := s.itineraries.Save(ctx, res.Itinerary); err != nil {
		return OptimizationResult{}, err
	}

	s.log.WithFields(logrus.Fields{
		"tripId":   t.ID,
		"overage":  res.Overage.String(),
		"savings":  res.Savings.String(),
		"resolved": res.FullyResolved(),
		"changes":  len(res.Changes),
	}).Info("itinerary optimized")

	return res, nil
}

func (s *Service) Report(ctx context.Context, caller domain.UserID, tripID domain.TripID) (Report, error) {
	b, err := s.Breakdown(ctx, caller, tripID)
	if err != nil {
		return Report{}, err
	}
	return s.calc.GenerateBudgetReport(b), nil
}

// Adjustments compares the itinerary's current total to target (the trip budget when nil).
func (s *Service) Adjustments(ctx context.Context, caller domain.UserID, tripID domain.TripID, target *domain.Money) (Adjustments, error) {
	t, it, err := s.loadPlan(ctx, caller, tripID)
	if err != nil {
		return Adjustments{}, err
	}
	goal := t.TotalBudget
	if target != nil {
		goal = *target
	}
	if goal < 0 {
		return Adjustments{}, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid target", Details: map[string]any{"target": "must be >= 0"}}
	}
	b := s.calc.CalculateTripBudget(it, t)
	return SuggestBudgetAdjustments(b.Total, goal), nil
}

type RecordExpenseInput struct {
	Category    domain.Category
	Amount      domain.Money
	Description string
	// SpentAt defaults to now when nil.
	SpentAt *time.Time
}

func (s *Service) RecordExpense(ctx context.Context, caller domain.UserID, tripID domain.TripID, in RecordExpenseInput) (domain.Expense, error) {
	t, err := s.loadTrip(ctx, caller, tripID)
	if err != nil {
		return domain.Expense{}, err
	}
	if t.Status == domain.TripStatusCancelled {
		return domain.Expense{}, &Error{Status: 409, Code: "TRIP_CANCELLED", Message: "trip is cancelled"}
	}

	details := map[string]any{}
	if !in.Category.Valid() {
		details["category"] = "must be one of accommodation, transport, food, activities, shopping, miscellaneous"
	}
	if in.Amount <= 0 {
		details["amount"] = "must be > 0"
	}
	if len(details) > 0 {
		return domain.Expense{}, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid expense", Details: details}
	}

	now := s.clock.Now().UTC()
	spentAt := now
	if in.SpentAt != nil {
		spentAt = in.SpentAt.UTC()
	}
	e := domain.Expense{
		ID:          s.newExpenseID(),
		TripID:      t.ID,
		Category:    in.Category,
		Amount:      in.Amount,
		Description: strings.TrimSpace(in.Description),
		SpentAt:     spentAt,
		CreatedAt:   now,
	}
	if err := s.expenses.Add(ctx, e); err != nil {
		if errors.Is(err, expenserepo.ErrAlreadyExists) {
			return domain.Expense{}, &Error{Status: 409, Code: "EXPENSE_ID_CONFLICT", Message: "expense id conflict"}
		}
		return domain.Expense{}, err
	}
	return e, nil
}

func (s *Service) ListExpenses(ctx context.Context, caller domain.UserID, tripID domain.TripID) ([]domain.Expense, error) {
	if _, err := s.loadTrip(ctx, caller, tripID); err != nil {
		return nil, err
	}
	return s.expenses.ListByTrip(ctx, tripID)
}

// Variance compares recorded expenses against the itinerary's planned breakdown.
func (s *Service) Variance(ctx context.Context, caller domain.UserID, tripID domain.TripID) (SpendingVariance, error) {
	t, it, err := s.loadPlan(ctx, caller, tripID)
	if err != nil {
		return SpendingVariance{}, err
	}
	es, err := s.expenses.ListByTrip(ctx, tripID)
	if err != nil {
		return SpendingVariance{}, err
	}
	planned := s.calc.CalculateTripBudget(it, t)
	return s.calc.TrackRealTimeSpending(planned, SumExpenses(es)), nil
}

func (s *Service) loadTrip(ctx context.Context, caller domain.UserID, tripID domain.TripID) (domain.Trip, error) {
	t, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		if errors.Is(err, triprepo.ErrNotFound) {
			return domain.Trip{}, errTripNotFound()
		}
		return domain.Trip{}, err
	}
	// Foreign trips are indistinguishable from missing ones.
	if t.UserID != caller {
		return domain.Trip{}, errTripNotFound()
	}
	return t, nil
}

func (s *Service) loadPlan(ctx context.Context, caller domain.UserID, tripID domain.TripID) (domain.Trip, domain.Itinerary, error) {
	t, err := s.loadTrip(ctx, caller, tripID)
	if err != nil {
		return domain.Trip{}, domain.Itinerary{}, err
	}
	it, err := s.itineraries.GetByTripID(ctx, tripID)
	if err != nil {
		if errors.Is(err, itineraryrepo.ErrNotFound) {
			return domain.Trip{}, domain.Itinerary{}, errItineraryNotFound()
		}
		return domain.Trip{}, domain.Itinerary{}, err
	}
	return t, it, nil
}
