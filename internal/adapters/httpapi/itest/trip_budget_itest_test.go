package itest

import (
	"net/http"
	"testing"
)

type tripEnvelope struct {
	Trip struct {
		ID          string  `json:"id"`
		Status      string  `json:"status"`
		TotalBudget float64 `json:"totalBudget"`
	} `json:"trip"`
}

type budgetEnvelope struct {
	Budget struct {
		Total     float64 `json:"total"`
		Remaining float64 `json:"remaining"`
	} `json:"budget"`
}

func TestTripBudget_ITest(t *testing.T) {
	for _, b := range backendsFromEnv(t) {
		t.Run(string(b), func(t *testing.T) {
			srv := newTestServer(t, b)

			{
				status, body, hdr := srv.doJSON(t, http.MethodGet, "/trips", "", nil)
				requireErrorCode(t, status, body, http.StatusUnauthorized, "UNAUTHORIZED")
				requireHeaderPresent(t, hdr, "X-Request-Id")
			}

			const alice = "itest|alice"
			const bob = "itest|bob"

			var tripID string
			{
				status, body, _ := srv.doJSON(t, http.MethodPost, "/trips", alice, map[string]any{
					"title": "Porto wine weekend",
					"destination": map[string]any{
						"name":        "Porto",
						"country":     "Portugal",
						"coordinates": map[string]any{"lat": 41.1579, "lng": -8.6291},
						"timezone":    "Europe/Lisbon",
					},
					"startDate":   "2024-03-01",
					"endDate":     "2024-03-04",
					"totalBudget": 900,
					"currency":    "EUR",
				})
				if status != http.StatusCreated {
					t.Fatalf("status=%d want=%d body=%s", status, http.StatusCreated, string(body))
				}
				got := mustUnmarshal[tripEnvelope](t, body)
				if got.Trip.ID == "" || got.Trip.Status != "planning" || got.Trip.TotalBudget != 900 {
					t.Fatalf("unexpected trip: %s", string(body))
				}
				tripID = got.Trip.ID
			}
			base := "/trips/" + tripID

			// Trips are private to their owner.
			{
				status, body, _ := srv.doJSON(t, http.MethodGet, base, bob, nil)
				requireErrorCode(t, status, body, http.StatusNotFound, "TRIP_NOT_FOUND")
			}

			{
				status, body, _ := srv.doJSON(t, http.MethodPost, base+"/itinerary", alice, nil)
				if status != http.StatusCreated {
					t.Fatalf("status=%d want=%d body=%s", status, http.StatusCreated, string(body))
				}
			}

			{
				status, body, _ := srv.doJSON(t, http.MethodGet, base+"/budget", alice, nil)
				if status != http.StatusOK {
					t.Fatalf("status=%d body=%s", status, string(body))
				}
				got := mustUnmarshal[budgetEnvelope](t, body)
				if got.Budget.Total != 630 || got.Budget.Remaining != 270 {
					t.Fatalf("unexpected budget: %s", string(body))
				}
			}

			// Optimize with an idempotency key, then retry the same request.
			{
				req := map[string]any{"target": 600}
				status, first, hdr := srv.doJSON(t, http.MethodPost, base+"/budget/optimize", alice, req, "Idempotency-Key", "itest-opt")
				if status != http.StatusOK {
					t.Fatalf("status=%d body=%s", status, string(first))
				}
				if hdr.Get("Idempotent-Replayed") != "" {
					t.Fatalf("first call marked as replay")
				}
				status, again, hdr := srv.doJSON(t, http.MethodPost, base+"/budget/optimize", alice, req, "Idempotency-Key", "itest-opt")
				if status != http.StatusOK || hdr.Get("Idempotent-Replayed") != "true" {
					t.Fatalf("replay status=%d header=%q", status, hdr.Get("Idempotent-Replayed"))
				}
				if string(first) != string(again) {
					t.Fatalf("replayed body differs:\n%s\n%s", first, again)
				}

				status, body, _ := srv.doJSON(t, http.MethodPost, base+"/budget/optimize", alice, map[string]any{"target": 550}, "Idempotency-Key", "itest-opt")
				requireErrorCode(t, status, body, http.StatusConflict, "IDEMPOTENCY_KEY_REUSE")
			}

			{
				status, body, _ := srv.doJSON(t, http.MethodPost, base+"/expenses", alice, map[string]any{
					"category":    "food",
					"amount":      42.5,
					"description": "Francesinha",
					"spentAt":     "2024-03-02T13:00:00Z",
				})
				if status != http.StatusCreated {
					t.Fatalf("status=%d body=%s", status, string(body))
				}
				status, body, _ = srv.doJSON(t, http.MethodGet, base+"/expenses", alice, nil)
				got := mustUnmarshal[struct {
					Expenses []struct {
						Amount float64 `json:"amount"`
					} `json:"expenses"`
				}](t, body)
				if status != http.StatusOK || len(got.Expenses) != 1 || got.Expenses[0].Amount != 42.5 {
					t.Fatalf("status=%d body=%s", status, string(body))
				}
			}

			for _, next := range []string{"confirmed", "active", "completed"} {
				status, body, _ := srv.doJSON(t, http.MethodPost, base+"/status", alice, map[string]any{"status": next})
				if status != http.StatusOK {
					t.Fatalf("transition to %s: status=%d body=%s", next, status, string(body))
				}
			}

			{
				status, body, _ := srv.doJSON(t, http.MethodPost, base+"/itinerary", alice, nil)
				requireErrorCode(t, status, body, http.StatusConflict, "TRIP_IMMUTABLE")
			}

			{
				status, body, _ := srv.doJSON(t, http.MethodGet, "/me/progress", alice, nil)
				if status != http.StatusOK {
					t.Fatalf("status=%d body=%s", status, string(body))
				}
				got := mustUnmarshal[struct {
					Stats struct {
						TripsCompleted   int      `json:"tripsCompleted"`
						VisitedCountries []string `json:"visitedCountries"`
					} `json:"stats"`
					Badges []struct {
						BadgeID string `json:"badgeId"`
					} `json:"badges"`
				}](t, body)
				if got.Stats.TripsCompleted != 1 || len(got.Stats.VisitedCountries) != 1 {
					t.Fatalf("unexpected stats: %s", string(body))
				}
				hasFirst := false
				for _, bd := range got.Badges {
					hasFirst = hasFirst || bd.BadgeID == "first_trip"
				}
				if !hasFirst {
					t.Fatalf("first_trip badge missing: %s", string(body))
				}
			}
		})
	}
}
