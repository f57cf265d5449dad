package statsrepo

import (
	"testing"

	"github.com/Overland-East-Bay/trip-budget-api/internal/adapters/contracttest"
	"github.com/Overland-East-Bay/trip-budget-api/internal/adapters/postgres/testutil"
	statsrepoport "github.com/Overland-East-Bay/trip-budget-api/internal/ports/out/statsrepo"
)

func TestContract_PostgresStatsRepo(t *testing.T) {
	pool := testutil.OpenMigratedPool(t)

	contracttest.RunStatsRepo(t, func(t *testing.T) (statsrepoport.Repository, func()) {
		t.Helper()
		return NewRepo(pool), nil
	})
}
