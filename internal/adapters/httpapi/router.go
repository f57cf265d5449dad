package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
)

type RouterOptions struct {
	// AuthMiddleware is required for every route except /healthz.
	AuthMiddleware func(http.Handler) http.Handler
	// RateLimiter is optional; nil disables throttling.
	RateLimiter *RateLimiter
	// Logger defaults to the server's logger.
	Logger logrus.FieldLogger
	// CORSAllowedOrigins defaults to "*".
	CORSAllowedOrigins []string
}

// NewRouter constructs the API HTTP router.
func NewRouter(s *Server, opts RouterOptions) http.Handler {
	log := opts.Logger
	if log == nil {
		log = s.log
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(responseHeaders)

	// Health endpoint is unauthenticated (used for infra checks).
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Group(func(r chi.Router) {
		if opts.AuthMiddleware != nil {
			r.Use(opts.AuthMiddleware)
		}
		if opts.RateLimiter != nil {
			r.Use(opts.RateLimiter.Middleware)
		}

		r.Route("/trips", func(r chi.Router) {
			r.Post("/", s.createTrip)
			r.Get("/", s.listMyTrips)

			r.Route("/{tripId}", func(r chi.Router) {
				r.Get("/", s.getTrip)
				r.Patch("/", s.updateTrip)
				r.Post("/status", s.transitionTrip)

				r.Post("/itinerary", s.generateItinerary)
				r.Get("/itinerary", s.getItinerary)
				r.Put("/itinerary", s.replaceItinerary)
				r.Post("/itinerary/schedule", s.optimizeSchedule)
				r.Post("/itinerary/fit-daily", s.fitDailyBudget)

				r.Get("/budget", s.getBudget)
				r.Post("/budget/optimize", s.optimizeBudget)
				r.Get("/budget/report", s.getBudgetReport)
				r.Get("/budget/adjustments", s.getBudgetAdjustments)
				r.Get("/budget/variance", s.getBudgetVariance)

				r.Post("/expenses", s.recordExpense)
				r.Get("/expenses", s.listExpenses)
			})
		})

		r.Get("/badges", s.listBadges)
		r.Get("/me/progress", s.getMyProgress)
		r.Get("/me/challenges", s.getMyChallenges)
	})

	origins := opts.CORSAllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", "Idempotency-Key", "X-Debug-Subject", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id", "Idempotent-Replayed"},
		MaxAge:         300,
	})
	return c.Handler(r)
}
