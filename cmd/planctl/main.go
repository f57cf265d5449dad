// Command planctl works with itinerary files and local travel progress offline.
package main

import (
	"os"

	platformclock "github.com/Overland-East-Bay/trip-budget-api/internal/platform/clock"
)

func main() {
	if err := newRootCmd(&app{clock: platformclock.NewSystemClock()}).Execute(); err != nil {
		os.Exit(1)
	}
}
