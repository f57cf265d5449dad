package idempotency

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Overland-East-Bay/trip-budget-api/internal/adapters/contracttest"
	"github.com/Overland-East-Bay/trip-budget-api/internal/adapters/postgres/testutil"
	"github.com/Overland-East-Bay/trip-budget-api/internal/domain"
	idempotencyport "github.com/Overland-East-Bay/trip-budget-api/internal/ports/out/idempotency"
)

func TestContract_PostgresIdempotencyStore(t *testing.T) {
	pool := testutil.OpenMigratedPool(t)
	issuer := "https://issuer.test"

	contracttest.RunIdempotencyStore(t, func(t *testing.T) (idempotencyport.Store, func()) {
		t.Helper()
		return NewStore(pool, issuer).WithRetention(0), nil
	})
}

func TestStore_ExpiredRecordsAreHiddenAndPruned(t *testing.T) {
	pool := testutil.OpenMigratedPool(t)
	ctx := context.Background()

	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	store := NewStore(pool, "https://issuer.test").WithRetention(time.Hour)
	store.now = func() time.Time { return now }

	fp := idempotencyport.Fingerprint{
		Key:     idempotencyport.Key("k-" + uuid.NewString()),
		Subject: domain.SubjectID("sub-" + uuid.NewString()),
		Method:  "POST",
		Route:   "/trips/{tripId}/budget/optimize",
	}
	rec := idempotencyport.Record{StatusCode: 200, ContentType: "application/json", Body: []byte(`{}`), CreatedAt: now.Add(-2 * time.Hour)}
	if err := store.Put(ctx, fp, rec); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, ok, err := store.Get(ctx, fp); err != nil || ok {
		t.Fatalf("Get expired: ok=%v err=%v", ok, err)
	}
	n, err := store.Prune(ctx)
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if n < 1 {
		t.Fatalf("Prune removed %d rows, want >= 1", n)
	}
}
