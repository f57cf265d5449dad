package itineraries

import (
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/Overland-East-Bay/trip-budget-api/internal/domain"
	"github.com/Overland-East-Bay/trip-budget-api/internal/ports/out/generator"
)

var bookingThreshold = domain.FromMajor(20)

var accommodationViews = []string{
	"exterior view with modern architecture and welcoming entrance",
	"comfortable guest room with modern amenities and cozy atmosphere",
	"lobby area with elegant design and comfortable seating",
}

// Enhance turns a candidate into a complete itinerary for the trip. Missing ids are derived
// from the itinerary id and the item's position, so enhancing the same candidate twice yields
// identical ids. Accommodation without a TotalCost is billed one night, check-in/out default
// to the day and the following day, and every day's TotalCost is recomputed.
// The breakdown is left for the caller to compute.
func Enhance(c generator.CandidateItinerary, tripID domain.TripID, itineraryID domain.ItineraryID) domain.Itinerary {
	ns := uuid.NewSHA1(uuid.NameSpaceOID, []byte(string(itineraryID)))
	idFor := func(format string, args ...any) string {
		return uuid.NewSHA1(ns, []byte(fmt.Sprintf(format, args...))).String()
	}

	it := domain.Itinerary{
		ID:              itineraryID,
		TripID:          tripID,
		Days:            make([]domain.ItineraryDay, 0, len(c.Days)),
		OptimizedRoutes: []domain.Route{},
	}

	for i, src := range c.Days {
		day := src.Clone()
		y, m, d := day.Date.UTC().Date()
		day.Date = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

		if day.Activities == nil {
			day.Activities = []domain.Activity{}
		}
		for j := range day.Activities {
			a := &day.Activities[j]
			if a.ID == "" {
				a.ID = idFor("day/%d/activity/%d", i, j)
			}
			if a.Cost > bookingThreshold {
				a.BookingRequired = true
			}
		}

		if day.Meals == nil {
			day.Meals = []domain.Meal{}
		}
		for j := range day.Meals {
			if day.Meals[j].ID == "" {
				day.Meals[j].ID = idFor("day/%d/meal/%d", i, j)
			}
		}

		if day.Transport == nil {
			day.Transport = []domain.Transportation{}
		}
		for j := range day.Transport {
			if day.Transport[j].ID == "" {
				day.Transport[j].ID = idFor("day/%d/transport/%d", i, j)
			}
		}

		if a := day.Accommodation; a != nil {
			if a.ID == "" {
				a.ID = idFor("day/%d/accommodation", i)
			}
			if a.CheckIn.IsZero() {
				a.CheckIn = day.Date
			}
			if a.CheckOut.IsZero() {
				a.CheckOut = day.Date.Add(24 * time.Hour)
			}
			if a.TotalCost == 0 {
				a.TotalCost = a.CostPerNight
			}
			if len(a.Images) == 0 {
				a.Images = accommodationImages(a.Name)
			}
		}

		day.RecomputeTotal()
		it.Days = append(it.Days, day)
	}
	return it
}

func accommodationImages(name string) []string {
	out := make([]string, 0, len(accommodationViews))
	for _, v := range accommodationViews {
		out = append(out, "https://placehold.co/800x600?text="+url.QueryEscape(name+" "+v))
	}
	return out
}
