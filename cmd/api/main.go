package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Overland-East-Bay/trip-budget-api/internal/adapters/httpapi"
	"github.com/Overland-East-Bay/trip-budget-api/internal/adapters/llm"
	memexpenserepo "github.com/Overland-East-Bay/trip-budget-api/internal/adapters/memory/expenserepo"
	memidempotency "github.com/Overland-East-Bay/trip-budget-api/internal/adapters/memory/idempotency"
	memitineraryrepo "github.com/Overland-East-Bay/trip-budget-api/internal/adapters/memory/itineraryrepo"
	memstatsrepo "github.com/Overland-East-Bay/trip-budget-api/internal/adapters/memory/statsrepo"
	memtriprepo "github.com/Overland-East-Bay/trip-budget-api/internal/adapters/memory/triprepo"
	postgres "github.com/Overland-East-Bay/trip-budget-api/internal/adapters/postgres"
	pgexpenserepo "github.com/Overland-East-Bay/trip-budget-api/internal/adapters/postgres/expenserepo"
	pgidempotency "github.com/Overland-East-Bay/trip-budget-api/internal/adapters/postgres/idempotency"
	pgitineraryrepo "github.com/Overland-East-Bay/trip-budget-api/internal/adapters/postgres/itineraryrepo"
	pgstatsrepo "github.com/Overland-East-Bay/trip-budget-api/internal/adapters/postgres/statsrepo"
	pgtriprepo "github.com/Overland-East-Bay/trip-budget-api/internal/adapters/postgres/triprepo"
	"github.com/Overland-East-Bay/trip-budget-api/internal/app/budget"
	"github.com/Overland-East-Bay/trip-budget-api/internal/app/gamification"
	"github.com/Overland-East-Bay/trip-budget-api/internal/app/itineraries"
	"github.com/Overland-East-Bay/trip-budget-api/internal/app/trips"
	"github.com/Overland-East-Bay/trip-budget-api/internal/platform/auth/jwtverifier"
	platformclock "github.com/Overland-East-Bay/trip-budget-api/internal/platform/clock"
	"github.com/Overland-East-Bay/trip-budget-api/internal/platform/config"
	"github.com/Overland-East-Bay/trip-budget-api/internal/platform/logging"
	expenserepoport "github.com/Overland-East-Bay/trip-budget-api/internal/ports/out/expenserepo"
	"github.com/Overland-East-Bay/trip-budget-api/internal/ports/out/generator"
	idempotencyport "github.com/Overland-East-Bay/trip-budget-api/internal/ports/out/idempotency"
	itineraryrepoport "github.com/Overland-East-Bay/trip-budget-api/internal/ports/out/itineraryrepo"
	statsrepoport "github.com/Overland-East-Bay/trip-budget-api/internal/ports/out/statsrepo"
	triprepoport "github.com/Overland-East-Bay/trip-budget-api/internal/ports/out/triprepo"
)

const idempotencyPruneInterval = time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("invalid config: %v", err)
	}

	log, logCloser, err := logging.New(cfg.Logging)
	if err != nil {
		logrus.Fatalf("invalid logging config: %v", err)
	}
	defer logCloser.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Auth configuration:
	// - Production: require JWT_* env vars and enforce bearer auth
	// - Local dev: set AUTH_MODE=dev to bypass JWT verification and use X-Debug-Subject
	var authMW func(http.Handler) http.Handler
	authIssuer := cfg.Auth.DevIssuer
	switch cfg.Auth.Mode {
	case "dev":
		log.Warn("AUTH_MODE=dev: bearer tokens are not verified")
		authMW = httpapi.NewDevAuthMiddleware(cfg.Auth.DevSubject)
	default:
		jwtCfg, err := config.LoadJWTConfigFromEnv()
		if err != nil {
			log.Fatalf("invalid auth config: %v", err)
		}
		authMW = httpapi.NewAuthMiddleware(jwtverifier.New(jwtCfg))
		authIssuer = jwtCfg.Issuer
	}

	clk := platformclock.NewSystemClock()

	var (
		tripRepo    triprepoport.Repository
		itRepo      itineraryrepoport.Repository
		expenseRepo expenserepoport.Repository
		statsRepo   statsrepoport.Repository
		idemStore   idempotencyport.Store
	)

	switch cfg.Storage.Backend {
	case "postgres":
		pool, err := postgres.NewPool(ctx, cfg.Storage.DatabaseURL, postgres.PoolOptions{MaxConns: int32(cfg.Storage.MaxConns)})
		if err != nil {
			log.Fatalf("connect postgres: %v", err)
		}
		defer pool.Close()
		if err := postgres.Migrate(ctx, pool); err != nil {
			log.Fatalf("migrate postgres: %v", err)
		}

		tripRepo = pgtriprepo.NewRepo(pool)
		itRepo = pgitineraryrepo.NewRepo(pool)
		expenseRepo = pgexpenserepo.NewRepo(pool)
		statsRepo = pgstatsrepo.NewRepo(pool)
		store := pgidempotency.NewStore(pool, authIssuer)
		idemStore = store
		go pruneIdempotency(ctx, store, log)
	default:
		tripRepo = memtriprepo.NewRepo()
		itRepo = memitineraryrepo.NewRepo()
		expenseRepo = memexpenserepo.NewRepo()
		statsRepo = memstatsrepo.NewRepo()
		idemStore = memidempotency.NewStore()
	}
	log.WithField("backend", cfg.Storage.Backend).Info("storage ready")

	rules, err := budget.LoadRules(cfg.BudgetRulesPath)
	if err != nil {
		log.Fatalf("budget rules: %v", err)
	}
	calc := budget.NewCalculator(clk, rules)

	var gen generator.Generator
	if cfg.Generator.Provider == "llm" {
		gen = llm.NewClient(llm.Options{
			BaseURL:           cfg.Generator.BaseURL,
			APIKey:            cfg.Generator.APIKey,
			Model:             cfg.Generator.Model,
			RequestsPerMinute: cfg.Generator.RequestsPerMinute,
		})
	}

	gameSvc := gamification.NewService(statsRepo, gamification.NewEngine(gamification.DefaultCatalog(), clk), log)
	api := httpapi.NewServer(httpapi.ServerDeps{
		Trips: trips.NewService(tripRepo, clk, gameSvc, log),
		Itineraries: itineraries.NewService(tripRepo, itRepo, calc, clk, log, itineraries.Options{
			Generator:       gen,
			GenerateTimeout: cfg.Generator.Timeout,
		}),
		Budget:       budget.NewService(tripRepo, itRepo, expenseRepo, calc, clk, log),
		Gamification: gameSvc,
		Clock:        clk,
		Log:          log,
		Idem:         idemStore,
	})

	opts := httpapi.RouterOptions{
		AuthMiddleware:     authMW,
		Logger:             log,
		CORSAllowedOrigins: cfg.Server.CORSAllowedOrigins,
	}
	if cfg.RateLimit.Enabled {
		opts.RateLimiter = httpapi.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, log)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           httpapi.NewRouter(api, opts),
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
	}

	go func() {
		log.WithField("addr", srv.Addr).Info("api listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("shutdown")
	}
}

func pruneIdempotency(ctx context.Context, store *pgidempotency.Store, log logrus.FieldLogger) {
	ticker := time.NewTicker(idempotencyPruneInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := store.Prune(ctx)
			if err != nil {
				log.WithError(err).Warn("prune idempotency keys")
				continue
			}
			if n > 0 {
				log.WithField("deleted", n).Debug("pruned idempotency keys")
			}
		}
	}
}
