package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/Overland-East-Bay/trip-budget-api/internal/domain"
	"github.com/Overland-East-Bay/trip-budget-api/internal/ports/out/generator"
)

const systemPrompt = "You are an expert travel planner. Generate detailed, budget-optimized itineraries based on user preferences. Return only valid JSON."

var ErrNoContent = errors.New("llm: response has no content")

type Options struct {
	BaseURL string
	APIKey  string
	Model   string
	// RequestsPerMinute bounds outgoing calls. Zero or less disables limiting.
	RequestsPerMinute int
	HTTPClient        *http.Client
}

// Client drafts itineraries through an OpenAI-compatible chat completions endpoint.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	http    *http.Client
	limiter *rate.Limiter
}

var _ generator.Generator = (*Client)(nil)

func NewClient(opts Options) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 60 * time.Second}
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.RequestsPerMinute)), 1)
	}
	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		apiKey:  opts.APIKey,
		model:   opts.Model,
		http:    hc,
		limiter: limiter,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model,omitempty"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (c *Client) Generate(ctx context.Context, req generator.Request) (generator.CandidateItinerary, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return generator.CandidateItinerary{}, fmt.Errorf("llm: rate limit: %w", err)
	}

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: BuildPrompt(req.Trip, req.Preferences)},
		},
	})
	if err != nil {
		return generator.CandidateItinerary{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return generator.CandidateItinerary{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return generator.CandidateItinerary{}, fmt.Errorf("llm: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return generator.CandidateItinerary{}, fmt.Errorf("llm: status=%d", resp.StatusCode)
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return generator.CandidateItinerary{}, fmt.Errorf("llm: decode response: %w", err)
	}
	if len(cr.Choices) == 0 || strings.TrimSpace(cr.Choices[0].Message.Content) == "" {
		return generator.CandidateItinerary{}, ErrNoContent
	}
	return ParseItinerary(cr.Choices[0].Message.Content)
}

type wireDay struct {
	Date          string                  `json:"date"`
	Activities    []domain.Activity       `json:"activities"`
	Meals         []domain.Meal           `json:"meals"`
	Accommodation *domain.Accommodation   `json:"accommodation"`
	Transport     []domain.Transportation `json:"transport"`
}

// ParseItinerary extracts the outermost JSON object from model output (which may be wrapped in
// prose or code fences) and decodes its days. Dates may be YYYY-MM-DD or RFC 3339.
func ParseItinerary(content string) (generator.CandidateItinerary, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end < start {
		return generator.CandidateItinerary{}, errors.New("llm: no JSON object in response")
	}

	var wire struct {
		Days []wireDay `json:"days"`
	}
	if err := json.Unmarshal([]byte(content[start:end+1]), &wire); err != nil {
		return generator.CandidateItinerary{}, fmt.Errorf("llm: decode itinerary: %w", err)
	}

	out := generator.CandidateItinerary{Days: make([]domain.ItineraryDay, 0, len(wire.Days))}
	for i, d := range wire.Days {
		date, err := parseDate(d.Date)
		if err != nil {
			return generator.CandidateItinerary{}, fmt.Errorf("llm: day %d: %w", i, err)
		}
		out.Days = append(out.Days, domain.ItineraryDay{
			Date:          date,
			Activities:    d.Activities,
			Meals:         d.Meals,
			Accommodation: d.Accommodation,
			Transport:     d.Transport,
		})
	}
	return out, nil
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
