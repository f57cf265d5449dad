package itest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	logtest "github.com/sirupsen/logrus/hooks/test"

	"github.com/Overland-East-Bay/trip-budget-api/internal/adapters/httpapi"
	memclock "github.com/Overland-East-Bay/trip-budget-api/internal/adapters/memory/clock"
	memexpenserepo "github.com/Overland-East-Bay/trip-budget-api/internal/adapters/memory/expenserepo"
	memidempotency "github.com/Overland-East-Bay/trip-budget-api/internal/adapters/memory/idempotency"
	memitineraryrepo "github.com/Overland-East-Bay/trip-budget-api/internal/adapters/memory/itineraryrepo"
	memstatsrepo "github.com/Overland-East-Bay/trip-budget-api/internal/adapters/memory/statsrepo"
	memtriprepo "github.com/Overland-East-Bay/trip-budget-api/internal/adapters/memory/triprepo"
	pgexpenserepo "github.com/Overland-East-Bay/trip-budget-api/internal/adapters/postgres/expenserepo"
	pgidempotency "github.com/Overland-East-Bay/trip-budget-api/internal/adapters/postgres/idempotency"
	pgitineraryrepo "github.com/Overland-East-Bay/trip-budget-api/internal/adapters/postgres/itineraryrepo"
	pgstatsrepo "github.com/Overland-East-Bay/trip-budget-api/internal/adapters/postgres/statsrepo"
	postgres_testutil "github.com/Overland-East-Bay/trip-budget-api/internal/adapters/postgres/testutil"
	pgtriprepo "github.com/Overland-East-Bay/trip-budget-api/internal/adapters/postgres/triprepo"
	"github.com/Overland-East-Bay/trip-budget-api/internal/app/budget"
	"github.com/Overland-East-Bay/trip-budget-api/internal/app/gamification"
	"github.com/Overland-East-Bay/trip-budget-api/internal/app/itineraries"
	"github.com/Overland-East-Bay/trip-budget-api/internal/app/trips"
	expenserepoport "github.com/Overland-East-Bay/trip-budget-api/internal/ports/out/expenserepo"
	idempotencyport "github.com/Overland-East-Bay/trip-budget-api/internal/ports/out/idempotency"
	itineraryrepoport "github.com/Overland-East-Bay/trip-budget-api/internal/ports/out/itineraryrepo"
	statsrepoport "github.com/Overland-East-Bay/trip-budget-api/internal/ports/out/statsrepo"
	triprepoport "github.com/Overland-East-Bay/trip-budget-api/internal/ports/out/triprepo"
)

type backend string

const (
	backendMemory   backend = "memory"
	backendPostgres backend = "postgres"
)

func backendsFromEnv(t *testing.T) []backend {
	t.Helper()
	switch strings.ToLower(strings.TrimSpace(os.Getenv("ITEST_BACKEND"))) {
	case "", "memory":
		return []backend{backendMemory}
	case "postgres":
		return []backend{backendPostgres}
	case "all":
		return []backend{backendMemory, backendPostgres}
	default:
		t.Fatalf("unknown ITEST_BACKEND value (expected memory|postgres|all)")
		return nil
	}
}

type testServer struct {
	baseURL string
	client  *http.Client
}

func newTestServer(t *testing.T, b backend) *testServer {
	t.Helper()

	const issuer = "itest-issuer"
	clk := memclock.NewManualClock(time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC))
	log, _ := logtest.NewNullLogger()

	var (
		tripRepo    triprepoport.Repository
		itRepo      itineraryrepoport.Repository
		expenseRepo expenserepoport.Repository
		statsRepo   statsrepoport.Repository
		idemStore   idempotencyport.Store
	)

	switch b {
	case backendPostgres:
		pool := postgres_testutil.OpenMigratedPool(t)
		tripRepo = pgtriprepo.NewRepo(pool)
		itRepo = pgitineraryrepo.NewRepo(pool)
		expenseRepo = pgexpenserepo.NewRepo(pool)
		statsRepo = pgstatsrepo.NewRepo(pool)
		idemStore = pgidempotency.NewStore(pool, issuer)
	case backendMemory:
		tripRepo = memtriprepo.NewRepo()
		itRepo = memitineraryrepo.NewRepo()
		expenseRepo = memexpenserepo.NewRepo()
		statsRepo = memstatsrepo.NewRepo()
		idemStore = memidempotency.NewStore()
	default:
		t.Fatalf("unknown backend: %s", b)
	}

	calc := budget.NewCalculator(clk, budget.DefaultRules())
	gameSvc := gamification.NewService(statsRepo, gamification.NewEngine(gamification.DefaultCatalog(), clk), log)
	api := httpapi.NewServer(httpapi.ServerDeps{
		Trips:        trips.NewService(tripRepo, clk, gameSvc, log),
		Itineraries:  itineraries.NewService(tripRepo, itRepo, calc, clk, log, itineraries.Options{}),
		Budget:       budget.NewService(tripRepo, itRepo, expenseRepo, calc, clk, log),
		Gamification: gameSvc,
		Clock:        clk,
		Log:          log,
		Idem:         idemStore,
	})

	// An empty default subject forces every request to carry X-Debug-Subject.
	handler := httpapi.NewRouter(api, httpapi.RouterOptions{AuthMiddleware: httpapi.NewDevAuthMiddleware(""), Logger: log})

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return &testServer{
		baseURL: srv.URL,
		client:  srv.Client(),
	}
}

func (s *testServer) url(path string) string {
	if strings.HasPrefix(path, "/") {
		return s.baseURL + path
	}
	return s.baseURL + "/" + path
}

func (s *testServer) doJSON(t *testing.T, method, path, subject string, body any, headers ...string) (int, []byte, http.Header) {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, s.url(path), r)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if subject != "" {
		req.Header.Set("X-Debug-Subject", subject)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := s.client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()
	out, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, out, resp.Header
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func mustUnmarshal[T any](t *testing.T, b []byte) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v\nbody=%s", err, string(b))
	}
	return out
}

func requireErrorCode(t *testing.T, status int, body []byte, wantStatus int, wantCode string) {
	t.Helper()
	if status != wantStatus {
		t.Fatalf("status=%d want=%d body=%s", status, wantStatus, string(body))
	}
	got := mustUnmarshal[errorResponse](t, body)
	if got.Error.Code != wantCode {
		t.Fatalf("error.code=%q want=%q body=%s", got.Error.Code, wantCode, string(body))
	}
}

func requireHeaderPresent(t *testing.T, h http.Header, key string) {
	t.Helper()
	if strings.TrimSpace(h.Get(key)) == "" {
		t.Fatalf("expected header %q to be present", key)
	}
}
