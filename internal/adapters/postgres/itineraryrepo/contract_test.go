package itineraryrepo

import (
	"testing"

	"github.com/Overland-East-Bay/trip-budget-api/internal/adapters/contracttest"
	"github.com/Overland-East-Bay/trip-budget-api/internal/adapters/postgres/testutil"
	"github.com/Overland-East-Bay/trip-budget-api/internal/adapters/postgres/triprepo"
	itineraryrepoport "github.com/Overland-East-Bay/trip-budget-api/internal/ports/out/itineraryrepo"
	triprepoport "github.com/Overland-East-Bay/trip-budget-api/internal/ports/out/triprepo"
)

func TestContract_PostgresItineraryRepo(t *testing.T) {
	pool := testutil.OpenMigratedPool(t)

	contracttest.RunItineraryRepo(t, func(t *testing.T) (triprepoport.Repository, itineraryrepoport.Repository, func()) {
		t.Helper()
		return triprepo.NewRepo(pool), NewRepo(pool), nil
	})
}
