package domain

import "time"

type ActivityType string

const (
	ActivityTypeSightseeing ActivityType = "sightseeing"
	ActivityTypeAdventure   ActivityType = "adventure"
	ActivityTypeCultural    ActivityType = "cultural"
	ActivityTypeNightlife   ActivityType = "nightlife"
	ActivityTypeShopping    ActivityType = "shopping"
	ActivityTypeFood        ActivityType = "food"
	ActivityTypeNature      ActivityType = "nature"
	ActivityTypeRelaxation  ActivityType = "relaxation"
	ActivityTypePhotography ActivityType = "photography"
	ActivityTypeHistory     ActivityType = "history"
)

type MealType string

const (
	MealTypeBreakfast MealType = "breakfast"
	MealTypeLunch     MealType = "lunch"
	MealTypeDinner    MealType = "dinner"
	MealTypeSnack     MealType = "snack"
)

type AccommodationType string

const (
	AccommodationTypeHotel      AccommodationType = "hotel"
	AccommodationTypeHostel     AccommodationType = "hostel"
	AccommodationTypeAirbnb     AccommodationType = "airbnb"
	AccommodationTypeGuesthouse AccommodationType = "guesthouse"
	AccommodationTypeResort     AccommodationType = "resort"
	AccommodationTypeCamping    AccommodationType = "camping"
	AccommodationTypeBoutique   AccommodationType = "boutique"
)

type TransportMode string

const (
	TransportModeFlight    TransportMode = "flight"
	TransportModeTrain     TransportMode = "train"
	TransportModeBus       TransportMode = "bus"
	TransportModeCar       TransportMode = "car"
	TransportModeBike      TransportMode = "bike"
	TransportModeWalk      TransportMode = "walk"
	TransportModeFerry     TransportMode = "ferry"
	TransportModeRideshare TransportMode = "rideshare"
)

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Location struct {
	Name        string      `json:"name"`
	Address     string      `json:"address,omitempty"`
	Coordinates Coordinates `json:"coordinates"`
	PlaceID     string      `json:"placeId,omitempty"`
}

type TimeSlot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type Activity struct {
	ID              string       `json:"id"`
	Name            string       `json:"name"`
	Description     string       `json:"description,omitempty"`
	Type            ActivityType `json:"type,omitempty"`
	Location        Location     `json:"location"`
	DurationMinutes int          `json:"duration"`
	Cost            Money        `json:"cost"`
	Rating          *float64     `json:"rating,omitempty"`
	TimeSlot        TimeSlot     `json:"timeSlot"`
	BookingRequired bool         `json:"bookingRequired"`
	BookingURL      string       `json:"bookingUrl,omitempty"`
}

type Meal struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Type     MealType  `json:"type,omitempty"`
	Location Location  `json:"location"`
	Cost     Money     `json:"cost"`
	Cuisine  string    `json:"cuisine,omitempty"`
	Rating   *float64  `json:"rating,omitempty"`
	Time     time.Time `json:"time"`
}

type Accommodation struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Type         AccommodationType `json:"type,omitempty"`
	Location     Location          `json:"location"`
	CheckIn      time.Time         `json:"checkIn"`
	CheckOut     time.Time         `json:"checkOut"`
	CostPerNight Money             `json:"costPerNight"`
	TotalCost    Money             `json:"totalCost"`
	Rating       *float64          `json:"rating,omitempty"`
	Amenities    []string          `json:"amenities,omitempty"`
	BookingURL   string            `json:"bookingUrl,omitempty"`
	Images       []string          `json:"images,omitempty"`
}

type Transportation struct {
	ID              string        `json:"id"`
	Mode            TransportMode `json:"mode"`
	From            Location      `json:"from"`
	To              Location      `json:"to"`
	Departure       time.Time     `json:"departure"`
	Arrival         time.Time     `json:"arrival"`
	Cost            Money         `json:"cost"`
	DurationMinutes int           `json:"duration"`
	Provider        string        `json:"provider,omitempty"`
	BookingURL      string        `json:"bookingUrl,omitempty"`
}

// ItineraryDay is one calendar date of an itinerary. TotalCost is a cached sum of the
// day's children and must be refreshed with RecomputeTotal after any cost change.
type ItineraryDay struct {
	Date          time.Time        `json:"date"`
	Activities    []Activity       `json:"activities"`
	Meals         []Meal           `json:"meals"`
	Accommodation *Accommodation   `json:"accommodation,omitempty"`
	Transport     []Transportation `json:"transport"`
	TotalCost     Money            `json:"totalCost"`
}

// DateKey is the day's date as YYYY-MM-DD (UTC), used to key daily budget ledgers.
func (d ItineraryDay) DateKey() string {
	return d.Date.UTC().Format("2006-01-02")
}

// ChildrenCost sums accommodation TotalCost, transport, meals and activities.
func (d ItineraryDay) ChildrenCost() Money {
	var sum Money
	if d.Accommodation != nil {
		sum += d.Accommodation.TotalCost
	}
	for _, t := range d.Transport {
		sum += t.Cost
	}
	for _, m := range d.Meals {
		sum += m.Cost
	}
	for _, a := range d.Activities {
		sum += a.Cost
	}
	return sum
}

// RecomputeTotal refreshes the cached TotalCost.
func (d *ItineraryDay) RecomputeTotal() {
	d.TotalCost = d.ChildrenCost()
}

// Clone deep-copies the day, including every nested slice and pointer.
func (d ItineraryDay) Clone() ItineraryDay {
	cp := d
	cp.Activities = cloneActivities(d.Activities)
	cp.Meals = cloneMeals(d.Meals)
	cp.Transport = cloneSlice(d.Transport)
	if d.Accommodation != nil {
		a := *d.Accommodation
		a.Amenities = cloneSlice(d.Accommodation.Amenities)
		a.Images = cloneSlice(d.Accommodation.Images)
		a.Rating = cloneFloatPtr(d.Accommodation.Rating)
		cp.Accommodation = &a
	}
	return cp
}

type TransportOption struct {
	ID              string        `json:"id"`
	Mode            TransportMode `json:"mode"`
	DurationMinutes int           `json:"duration"`
	Cost            Money         `json:"cost"`
	Provider        string        `json:"provider,omitempty"`
	Stops           []Location    `json:"stops,omitempty"`
	CarbonFootprint *float64      `json:"carbonFootprint,omitempty"`
}

type Route struct {
	From        Location          `json:"from"`
	To          Location          `json:"to"`
	Options     []TransportOption `json:"options"`
	Recommended string            `json:"recommended"`
}

// Itinerary is a value recomputed whenever optimization runs; transformations return a new
// value and never mutate the receiver's nested data.
type Itinerary struct {
	ID              ItineraryID     `json:"id"`
	TripID          TripID          `json:"tripId"`
	Days            []ItineraryDay  `json:"days"`
	BudgetBreakdown BudgetBreakdown `json:"budgetBreakdown"`
	OptimizedRoutes []Route         `json:"optimizedRoutes"`
}

// Clone deep-copies the itinerary.
func (it Itinerary) Clone() Itinerary {
	cp := it
	if it.Days != nil {
		cp.Days = make([]ItineraryDay, len(it.Days))
		for i, d := range it.Days {
			cp.Days[i] = d.Clone()
		}
	}
	cp.BudgetBreakdown = it.BudgetBreakdown.Clone()
	if it.OptimizedRoutes != nil {
		cp.OptimizedRoutes = make([]Route, len(it.OptimizedRoutes))
		for i, r := range it.OptimizedRoutes {
			rc := r
			rc.Options = cloneSlice(r.Options)
			for j, o := range rc.Options {
				rc.Options[j].Stops = cloneSlice(o.Stops)
				rc.Options[j].CarbonFootprint = cloneFloatPtr(o.CarbonFootprint)
			}
			cp.OptimizedRoutes[i] = rc
		}
	}
	return cp
}

type TravelPreferences struct {
	Destinations        []string            `json:"destinations,omitempty"`
	Activities          []ActivityType      `json:"activities,omitempty"`
	AccommodationTypes  []AccommodationType `json:"accommodationType,omitempty"`
	TransportModes      []TransportMode     `json:"transportModes,omitempty"`
	DietaryRestrictions []string            `json:"dietaryRestrictions,omitempty"`
	Accessibility       bool                `json:"accessibility,omitempty"`
	Languages           []string            `json:"languagePreference,omitempty"`
}

func cloneActivities(in []Activity) []Activity {
	if in == nil {
		return nil
	}
	out := make([]Activity, len(in))
	for i, a := range in {
		a.Rating = cloneFloatPtr(a.Rating)
		out[i] = a
	}
	return out
}

func cloneMeals(in []Meal) []Meal {
	if in == nil {
		return nil
	}
	out := make([]Meal, len(in))
	for i, m := range in {
		m.Rating = cloneFloatPtr(m.Rating)
		out[i] = m
	}
	return out
}

// cloneSlice copies a slice, preserving the nil/empty distinction.
func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}

func cloneFloatPtr(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
