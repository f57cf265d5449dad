package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	logtest "github.com/sirupsen/logrus/hooks/test"

	memclock "github.com/Overland-East-Bay/trip-budget-api/internal/adapters/memory/clock"
	memexpenserepo "github.com/Overland-East-Bay/trip-budget-api/internal/adapters/memory/expenserepo"
	memidempotency "github.com/Overland-East-Bay/trip-budget-api/internal/adapters/memory/idempotency"
	memitineraryrepo "github.com/Overland-East-Bay/trip-budget-api/internal/adapters/memory/itineraryrepo"
	memstatsrepo "github.com/Overland-East-Bay/trip-budget-api/internal/adapters/memory/statsrepo"
	memtriprepo "github.com/Overland-East-Bay/trip-budget-api/internal/adapters/memory/triprepo"
	"github.com/Overland-East-Bay/trip-budget-api/internal/app/budget"
	"github.com/Overland-East-Bay/trip-budget-api/internal/app/gamification"
	"github.com/Overland-East-Bay/trip-budget-api/internal/app/itineraries"
	"github.com/Overland-East-Bay/trip-budget-api/internal/app/trips"
)

type testAPI struct {
	server *Server
	clock  *memclock.ManualClock
}

func newTestAPI(t *testing.T) testAPI {
	t.Helper()

	log, _ := logtest.NewNullLogger()
	clk := memclock.NewManualClock(time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC))

	tripRepo := memtriprepo.NewRepo()
	itRepo := memitineraryrepo.NewRepo()
	calc := budget.NewCalculator(clk, budget.DefaultRules())

	gameSvc := gamification.NewService(memstatsrepo.NewRepo(), gamification.NewEngine(gamification.DefaultCatalog(), clk), log)
	tripSvc := trips.NewService(tripRepo, clk, gameSvc, log)
	itSvc := itineraries.NewService(tripRepo, itRepo, calc, clk, log, itineraries.Options{})
	budgetSvc := budget.NewService(tripRepo, itRepo, memexpenserepo.NewRepo(), calc, clk, log)

	return testAPI{
		server: NewServer(ServerDeps{
			Trips:        tripSvc,
			Itineraries:  itSvc,
			Budget:       budgetSvc,
			Gamification: gameSvc,
			Clock:        clk,
			Log:          log,
			Idem:         memidempotency.NewStore(),
		}),
		clock: clk,
	}
}

// newDevRouter serves the API behind the dev auth shim with no default subject.
func newDevRouter(t *testing.T) http.Handler {
	t.Helper()
	api := newTestAPI(t)
	return NewRouter(api.server, RouterOptions{AuthMiddleware: NewDevAuthMiddleware("")})
}

func do(t *testing.T, h http.Handler, method, path, subject string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, jsonBody(t, body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if subject != "" {
		req.Header.Set("X-Debug-Subject", subject)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// jsonBody encodes body as JSON; strings are sent verbatim and nil yields an empty body.
func jsonBody(t *testing.T, body any) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		if err := json.NewEncoder(&buf).Encode(b); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	return &buf
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v\nbody=%s", err, rec.Body.String())
	}
	return out
}

func requireStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status=%d want=%d body=%s", rec.Code, want, rec.Body.String())
	}
}

func requireErrorCode(t *testing.T, rec *httptest.ResponseRecorder, wantStatus int, wantCode string) {
	t.Helper()
	requireStatus(t, rec, wantStatus)
	er := decode[ErrorResponse](t, rec)
	if er.Error.Code != wantCode {
		t.Fatalf("error.code=%q want=%q body=%s", er.Error.Code, wantCode, rec.Body.String())
	}
}

var lisbonTrip = map[string]any{
	"title": "Lisbon long weekend",
	"destination": map[string]any{
		"name":        "Lisbon",
		"country":     "Portugal",
		"city":        "Lisbon",
		"coordinates": map[string]any{"lat": 38.7223, "lng": -9.1393},
		"timezone":    "Europe/Lisbon",
		"currency":    "EUR",
	},
	"startDate":   "2024-03-01",
	"endDate":     "2024-03-04",
	"totalBudget": 900,
	"currency":    "EUR",
}

func createTrip(t *testing.T, h http.Handler, subject string) Trip {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/trips", subject, lisbonTrip)
	requireStatus(t, rec, http.StatusCreated)
	return decode[TripResponse](t, rec).Trip
}
