package llm

import (
	"fmt"
	"strings"

	"github.com/Overland-East-Bay/trip-budget-api/internal/domain"
)

const responseShape = `{
  "days": [
    {
      "date": "YYYY-MM-DD",
      "activities": [
        {
          "name": "Activity Name",
          "description": "Description",
          "type": "sightseeing|adventure|cultural|etc",
          "duration": 120,
          "cost": 25,
          "location": {"name": "Location Name", "address": "Address", "coordinates": {"lat": 0, "lng": 0}},
          "timeSlot": {"start": "2024-01-01T09:00:00Z", "end": "2024-01-01T11:00:00Z"}
        }
      ],
      "meals": [
        {
          "name": "Restaurant Name",
          "type": "breakfast|lunch|dinner",
          "cost": 15,
          "cuisine": "local",
          "location": {"name": "Restaurant Name", "address": "Address", "coordinates": {"lat": 0, "lng": 0}},
          "time": "2024-01-01T12:00:00Z"
        }
      ],
      "accommodation": {
        "name": "Hotel Name",
        "type": "hotel|hostel|airbnb",
        "costPerNight": 80,
        "location": {"name": "Hotel Name", "address": "Address", "coordinates": {"lat": 0, "lng": 0}},
        "amenities": ["wifi", "breakfast"]
      },
      "transport": [
        {
          "mode": "bus|train|flight|walk",
          "from": {"name": "Origin", "address": "Address", "coordinates": {"lat": 0, "lng": 0}},
          "to": {"name": "Destination", "address": "Address", "coordinates": {"lat": 0, "lng": 0}},
          "cost": 10,
          "duration": 30,
          "departure": "2024-01-01T08:00:00Z",
          "arrival": "2024-01-01T08:30:00Z"
        }
      ]
    }
  ]
}`

// BuildPrompt renders the planning request for one trip.
func BuildPrompt(t domain.Trip, p domain.TravelPreferences) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create a detailed %d-day travel itinerary for %s, %s.\n\n", t.DurationDays(), t.Destination.Name, t.Destination.Country)
	b.WriteString("Trip Details:\n")
	fmt.Fprintf(&b, "- Budget: %s %s\n", t.TotalBudget, t.Currency)
	fmt.Fprintf(&b, "- Travelers: %d person(s)\n", max(len(t.Travelers), 1))
	fmt.Fprintf(&b, "- Dates: %s to %s\n\n", t.StartDate.Format("Mon Jan 02 2006"), t.EndDate.Format("Mon Jan 02 2006"))
	b.WriteString("Preferences:\n")
	fmt.Fprintf(&b, "- Accommodation: %s\n", joinOr(p.AccommodationTypes, "any"))
	fmt.Fprintf(&b, "- Activities: %s\n", joinOr(p.Activities, "general tourism"))
	fmt.Fprintf(&b, "- Transport: %s\n", joinOr(p.TransportModes, "any"))
	fmt.Fprintf(&b, "- Dietary: %s\n", joinOr(p.DietaryRestrictions, "none"))
	if p.Accessibility {
		b.WriteString("- Accessibility: step-free venues required\n")
	}
	b.WriteString("\nPlease provide a JSON response with this structure:\n")
	b.WriteString(responseShape)
	b.WriteString("\n\nFocus on:\n1. Budget-conscious recommendations\n2. Logical geographic flow\n3. Time-efficient scheduling\n4. Local authentic experiences\n5. Mix of must-see attractions and hidden gems\n")
	return b.String()
}

func joinOr[T ~string](xs []T, empty string) string {
	if len(xs) == 0 {
		return empty
	}
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = string(x)
	}
	return strings.Join(parts, ", ")
}
