package itineraries

import (
	"context"
	"fmt"
	"time"

	"github.com/Overland-East-Bay/trip-budget-api/internal/domain"
	"github.com/Overland-East-Bay/trip-budget-api/internal/ports/out/generator"
)

// Shares of the daily budget used by the fallback plan.
const (
	fallbackOldTownPercent   = 15
	fallbackMuseumPercent    = 10
	fallbackBreakfastPercent = 10
	fallbackDinnerPercent    = 20
	fallbackLodgingPercent   = 40
)

var fallbackAirportTransfer = domain.FromMajor(15)

// FallbackGenerator builds a modest plan purely from trip data: two cultural activities and
// two meals per day, lodging and an airport transfer on the first day. It never fails and
// the same trip always yields the same plan.
type FallbackGenerator struct{}

var _ generator.Generator = FallbackGenerator{}

func (FallbackGenerator) Generate(ctx context.Context, req generator.Request) (generator.CandidateItinerary, error) {
	_ = ctx
	t := req.Trip
	dest := t.Destination
	duration := t.DurationDays()
	daily := t.TotalBudget / domain.Money(duration)

	days := make([]domain.ItineraryDay, 0, duration)
	for i := 0; i < duration; i++ {
		date := t.StartDate.UTC().AddDate(0, 0, i)
		at := func(h, m int) time.Time {
			return time.Date(date.Year(), date.Month(), date.Day(), h, m, 0, 0, time.UTC)
		}

		day := domain.ItineraryDay{
			Date: date,
			Activities: []domain.Activity{
				{
					Name:            fmt.Sprintf("Explore %s Old Town", dest.Name),
					Description:     "Walking tour of the historic city center",
					Type:            domain.ActivityTypeCultural,
					Location:        fallbackPlace(dest, dest.Name+" Old Town", "Historic Center"),
					DurationMinutes: 180,
					Cost:            daily.Percent(fallbackOldTownPercent),
					Rating:          rating(4.2),
					TimeSlot:        domain.TimeSlot{Start: at(9, 0), End: at(12, 0)},
				},
				{
					Name:            fmt.Sprintf("%s Main Museum", dest.Name),
					Description:     "Visit to the city's primary cultural museum",
					Type:            domain.ActivityTypeCultural,
					Location:        fallbackPlace(dest, dest.Name+" Museum", "Museum District"),
					DurationMinutes: 120,
					Cost:            daily.Percent(fallbackMuseumPercent),
					Rating:          rating(4.5),
					TimeSlot:        domain.TimeSlot{Start: at(12, 30), End: at(14, 30)},
					BookingRequired: true,
				},
			},
			Meals: []domain.Meal{
				{
					Name:     "Local Breakfast Spot",
					Type:     domain.MealTypeBreakfast,
					Location: fallbackPlace(dest, dest.Name+" Cafe", "City Center"),
					Cost:     daily.Percent(fallbackBreakfastPercent),
					Cuisine:  "local",
					Rating:   rating(4.0),
					Time:     at(8, 0),
				},
				{
					Name:     "Traditional Restaurant",
					Type:     domain.MealTypeDinner,
					Location: fallbackPlace(dest, dest.Name+" Restaurant", "Restaurant District"),
					Cost:     daily.Percent(fallbackDinnerPercent),
					Cuisine:  "traditional",
					Rating:   rating(4.3),
					Time:     at(19, 0),
				},
			},
			Transport: []domain.Transportation{},
		}

		if i == 0 {
			lodging := daily.Percent(fallbackLodgingPercent)
			day.Accommodation = &domain.Accommodation{
				Name:         dest.Name + " Budget Hotel",
				Type:         domain.AccommodationTypeHotel,
				Location:     fallbackPlace(dest, "Budget Hotel "+dest.Name, "City Center"),
				CostPerNight: lodging,
				TotalCost:    lodging,
				Rating:       rating(3.8),
				Amenities:    []string{"wifi", "breakfast", "ac"},
			}
			airport := dest.Coordinates
			airport.Lat += 0.1
			airport.Lng += 0.1
			day.Transport = append(day.Transport, domain.Transportation{
				Mode:            domain.TransportModeBus,
				From:            domain.Location{Name: "Airport", Address: dest.Name + " Airport", Coordinates: airport},
				To:              domain.Location{Name: "City Center", Address: dest.Name + " City Center", Coordinates: dest.Coordinates},
				Departure:       at(7, 0),
				Arrival:         at(7, 45),
				Cost:            fallbackAirportTransfer,
				DurationMinutes: 45,
			})
		}

		days = append(days, day)
	}

	return generator.CandidateItinerary{Days: days}, nil
}

func fallbackPlace(dest domain.Destination, name, area string) domain.Location {
	return domain.Location{
		Name:        name,
		Address:     fmt.Sprintf("%s, %s", area, dest.Name),
		Coordinates: dest.Coordinates,
	}
}

func rating(v float64) *float64 { return &v }
