package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/Overland-East-Bay/trip-budget-api/internal/app/budget"
	"github.com/Overland-East-Bay/trip-budget-api/internal/app/gamification"
	"github.com/Overland-East-Bay/trip-budget-api/internal/app/itineraries"
	"github.com/Overland-East-Bay/trip-budget-api/internal/app/trips"
	"github.com/Overland-East-Bay/trip-budget-api/internal/domain"
	"github.com/Overland-East-Bay/trip-budget-api/internal/ports/out/clock"
	"github.com/Overland-East-Bay/trip-budget-api/internal/ports/out/idempotency"
)

const maxBodyBytes = 1 << 20

// Server holds the application services the HTTP handlers delegate to.
type Server struct {
	trips        *trips.Service
	itineraries  *itineraries.Service
	budget       *budget.Service
	gamification *gamification.Service
	idem         idempotency.Store
	clock        clock.Clock
	log          logrus.FieldLogger
}

type ServerDeps struct {
	Trips        *trips.Service
	Itineraries  *itineraries.Service
	Budget       *budget.Service
	Gamification *gamification.Service
	Clock        clock.Clock
	Log          logrus.FieldLogger

	// Idem is optional; without it Idempotency-Key headers are ignored.
	Idem idempotency.Store
}

func NewServer(d ServerDeps) *Server {
	return &Server{
		trips:        d.Trips,
		itineraries:  d.Itineraries,
		budget:       d.Budget,
		gamification: d.Gamification,
		idem:         d.Idem,
		clock:        d.Clock,
		log:          d.Log,
	}
}

func callerFrom(w http.ResponseWriter, r *http.Request) (domain.UserID, bool) {
	sub, ok := SubjectFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing subject", nil)
		return "", false
	}
	return domain.UserIDFromSubject(sub), true
}

func tripIDParam(r *http.Request) domain.TripID {
	return domain.TripID(chi.URLParam(r, "tripId"))
}

// readBody reads at most maxBodyBytes of the request body.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			writeError(w, r, http.StatusRequestEntityTooLarge, "BODY_TOO_LARGE", "request body too large", nil)
			return nil, false
		}
		writeError(w, r, http.StatusBadRequest, "BAD_REQUEST", "could not read request body", nil)
		return nil, false
	}
	return raw, true
}

// decodeBody decodes a JSON body into v. An empty body is accepted when optional is true.
func decodeBody(w http.ResponseWriter, r *http.Request, raw []byte, v any, optional bool) bool {
	if len(strings.TrimSpace(string(raw))) == 0 {
		if optional {
			return true
		}
		writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "missing request body", nil)
		return false
	}
	if err := json.Unmarshal(raw, v); err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "invalid JSON body", map[string]any{"body": err.Error()})
		return false
	}
	return true
}

func (s *Server) readJSON(w http.ResponseWriter, r *http.Request, v any, optional bool) bool {
	raw, ok := readBody(w, r)
	if !ok {
		return false
	}
	return decodeBody(w, r, raw, v, optional)
}

// Trips.

func (s *Server) createTrip(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	var body CreateTripRequest
	if !s.readJSON(w, r, &body, false) {
		return
	}
	t, err := s.trips.CreateTrip(r.Context(), caller, createTripInputFromRequest(body))
	if err != nil {
		writeServiceError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, TripResponse{Trip: tripFromDomain(t)})
}

func (s *Server) listMyTrips(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	ts, err := s.trips.ListMyTrips(r.Context(), caller)
	if err != nil {
		writeServiceError(w, r, s.log, err)
		return
	}
	out := make([]Trip, 0, len(ts))
	for _, t := range ts {
		out = append(out, tripFromDomain(t))
	}
	writeJSON(w, http.StatusOK, TripsResponse{Trips: out})
}

func (s *Server) getTrip(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	t, err := s.trips.GetTrip(r.Context(), caller, tripIDParam(r))
	if err != nil {
		writeServiceError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, TripResponse{Trip: tripFromDomain(t)})
}

func (s *Server) updateTrip(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	var body UpdateTripRequest
	if !s.readJSON(w, r, &body, false) {
		return
	}
	t, err := s.trips.UpdateTrip(r.Context(), caller, tripIDParam(r), updateTripInputFromRequest(body))
	if err != nil {
		writeServiceError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, TripResponse{Trip: tripFromDomain(t)})
}

func (s *Server) transitionTrip(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	var body TransitionTripRequest
	if !s.readJSON(w, r, &body, false) {
		return
	}
	t, err := s.trips.TransitionStatus(r.Context(), caller, tripIDParam(r), body.Status)
	if err != nil {
		writeServiceError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, TripResponse{Trip: tripFromDomain(t)})
}

// Itineraries.

func (s *Server) generateItinerary(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	var body GenerateItineraryRequest
	if !s.readJSON(w, r, &body, true) {
		return
	}
	res, err := s.itineraries.Generate(r.Context(), caller, tripIDParam(r), body.Preferences)
	if err != nil {
		writeServiceError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, ItineraryResponse{Itinerary: res.Itinerary, Source: string(res.Source)})
}

func (s *Server) getItinerary(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	it, err := s.itineraries.Get(r.Context(), caller, tripIDParam(r))
	if err != nil {
		writeServiceError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, ItineraryResponse{Itinerary: it})
}

func (s *Server) replaceItinerary(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	var body ReplaceItineraryRequest
	if !s.readJSON(w, r, &body, false) {
		return
	}
	it, err := s.itineraries.Replace(r.Context(), caller, tripIDParam(r), itineraries.ReplaceInput{Days: body.Days})
	if err != nil {
		writeServiceError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, ItineraryResponse{Itinerary: it})
}

func (s *Server) optimizeSchedule(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	it, err := s.itineraries.OptimizeSchedule(r.Context(), caller, tripIDParam(r))
	if err != nil {
		writeServiceError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, ItineraryResponse{Itinerary: it})
}

func (s *Server) fitDailyBudget(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	var body FitDailyBudgetRequest
	if !s.readJSON(w, r, &body, true) {
		return
	}
	it, err := s.itineraries.FitDailyBudget(r.Context(), caller, tripIDParam(r), body.MaxBudget)
	if err != nil {
		writeServiceError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, ItineraryResponse{Itinerary: it})
}

// Budget.

func (s *Server) getBudget(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	b, err := s.budget.Breakdown(r.Context(), caller, tripIDParam(r))
	if err != nil {
		writeServiceError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, BudgetResponse{Budget: b})
}

func (s *Server) getBudgetReport(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	rep, err := s.budget.Report(r.Context(), caller, tripIDParam(r))
	if err != nil {
		writeServiceError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) getBudgetAdjustments(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	var target *domain.Money
	if raw := strings.TrimSpace(r.URL.Query().Get("target")); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "invalid target", map[string]any{"target": "must be a number"})
			return
		}
		m, err := domain.ParseMajor(v)
		if err != nil {
			writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "invalid target", map[string]any{"target": "must be a finite number within 1e12"})
			return
		}
		target = &m
	}
	adj, err := s.budget.Adjustments(r.Context(), caller, tripIDParam(r), target)
	if err != nil {
		writeServiceError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, adj)
}

func (s *Server) getBudgetVariance(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	v, err := s.budget.Variance(r.Context(), caller, tripIDParam(r))
	if err != nil {
		writeServiceError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) recordExpense(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	var body RecordExpenseRequest
	if !s.readJSON(w, r, &body, false) {
		return
	}
	e, err := s.budget.RecordExpense(r.Context(), caller, tripIDParam(r), budget.RecordExpenseInput{
		Category:    body.Category,
		Amount:      body.Amount,
		Description: body.Description,
		SpentAt:     body.SpentAt,
	})
	if err != nil {
		writeServiceError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, ExpenseResponse{Expense: e})
}

func (s *Server) listExpenses(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	es, err := s.budget.ListExpenses(r.Context(), caller, tripIDParam(r))
	if err != nil {
		writeServiceError(w, r, s.log, err)
		return
	}
	if es == nil {
		es = []domain.Expense{}
	}
	writeJSON(w, http.StatusOK, ExpensesResponse{Expenses: es})
}

// Gamification.

func (s *Server) listBadges(w http.ResponseWriter, r *http.Request) {
	if _, ok := callerFrom(w, r); !ok {
		return
	}
	writeJSON(w, http.StatusOK, BadgesResponse{Badges: s.gamification.Catalog()})
}

func (s *Server) getMyProgress(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	p, err := s.gamification.Progress(r.Context(), caller)
	if err != nil {
		writeServiceError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) getMyChallenges(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	cs, err := s.gamification.Challenges(r.Context(), caller)
	if err != nil {
		writeServiceError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, ChallengesResponse{Challenges: cs})
}
