package llm_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Overland-East-Bay/trip-budget-api/internal/adapters/llm"
	"github.com/Overland-East-Bay/trip-budget-api/internal/domain"
	"github.com/Overland-East-Bay/trip-budget-api/internal/ports/out/generator"
)

const modelReply = "Here is your plan:\n```json\n" + `{"days":[{"date":"2024-03-01","activities":[{"name":"Belem Tower","cost":12.5,"duration":90,"location":{"name":"Belem","coordinates":{"lat":38.69,"lng":-9.21}},"timeSlot":{"start":"2024-03-01T09:00:00Z","end":"2024-03-01T10:30:00Z"}}],"meals":[{"name":"Pasteis","type":"breakfast","cost":4,"time":"2024-03-01T08:00:00Z"}],"accommodation":{"name":"Alfama Flat","type":"airbnb","costPerNight":80},"transport":[]}]}` + "\n```\nEnjoy!"

func trip() domain.Trip {
	return domain.Trip{
		ID:          "t1",
		Destination: domain.Destination{Name: "Lisbon", Country: "Portugal"},
		StartDate:   time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC),
		TotalBudget: domain.FromMajor(600),
		Currency:    "EUR",
	}
}

func TestClient_Generate(t *testing.T) {
	t.Parallel()

	var gotAuth, gotModel, gotPrompt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		gotAuth = r.Header.Get("Authorization")
		var body struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		gotModel = body.Model
		if len(body.Messages) == 2 {
			gotPrompt = body.Messages[1].Content
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []any{map[string]any{"message": map[string]any{"role": "assistant", "content": modelReply}}},
		})
	}))
	defer srv.Close()

	c := llm.NewClient(llm.Options{BaseURL: srv.URL + "/v1/", APIKey: "k", Model: "planner-1"})
	cand, err := c.Generate(context.Background(), generator.Request{Trip: trip()})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if gotAuth != "Bearer k" || gotModel != "planner-1" {
		t.Fatalf("auth=%q model=%q", gotAuth, gotModel)
	}
	if !strings.Contains(gotPrompt, "2-day travel itinerary for Lisbon, Portugal") || !strings.Contains(gotPrompt, "Budget: 600.00 EUR") {
		t.Fatalf("prompt=%q", gotPrompt)
	}
	if len(cand.Days) != 1 {
		t.Fatalf("days=%d", len(cand.Days))
	}
	d := cand.Days[0]
	if !d.Date.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("date=%v", d.Date)
	}
	if d.Activities[0].Cost != domain.FromMajor(12.5) || d.Activities[0].DurationMinutes != 90 {
		t.Fatalf("activity=%+v", d.Activities[0])
	}
	if d.Accommodation == nil || d.Accommodation.CostPerNight != domain.FromMajor(80) || d.Meals[0].Cost != domain.FromMajor(4) {
		t.Fatalf("day=%+v", d)
	}
}

func TestClient_Generate_Errors(t *testing.T) {
	t.Parallel()

	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer failing.Close()
	if _, err := llm.NewClient(llm.Options{BaseURL: failing.URL}).Generate(context.Background(), generator.Request{Trip: trip()}); err == nil || !strings.Contains(err.Error(), "status=502") {
		t.Fatalf("err=%v", err)
	}

	empty := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer empty.Close()
	if _, err := llm.NewClient(llm.Options{BaseURL: empty.URL}).Generate(context.Background(), generator.Request{Trip: trip()}); err != llm.ErrNoContent {
		t.Fatalf("err=%v", err)
	}
}

func TestClient_RateLimitHonorsContext(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{\"days\":[]}"}}]}`))
	}))
	defer srv.Close()

	c := llm.NewClient(llm.Options{BaseURL: srv.URL, RequestsPerMinute: 1})
	if _, err := c.Generate(context.Background(), generator.Request{Trip: trip()}); err != nil {
		t.Fatalf("first call: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := c.Generate(ctx, generator.Request{Trip: trip()}); err == nil || !strings.Contains(err.Error(), "rate limit") {
		t.Fatalf("second call err=%v", err)
	}
}

func TestParseItinerary_Rejects(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"no json here", `{"days":[{"date":"March 1"}]}`, `{"days": [}`} {
		if _, err := llm.ParseItinerary(in); err == nil {
			t.Fatalf("expected error for %q", in)
		}
	}
}
