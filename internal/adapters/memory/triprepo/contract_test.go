package triprepo

import (
	"testing"

	"github.com/Overland-East-Bay/trip-budget-api/internal/adapters/contracttest"
	triprepoport "github.com/Overland-East-Bay/trip-budget-api/internal/ports/out/triprepo"
)

func TestContract_TripRepo(t *testing.T) {
	contracttest.RunTripRepo(t, func(t *testing.T) (triprepoport.Repository, func()) {
		t.Helper()
		return NewRepo(), nil
	})
}
