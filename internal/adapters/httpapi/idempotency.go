package httpapi

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/Overland-East-Bay/trip-budget-api/internal/app/budget"
	"github.com/Overland-East-Bay/trip-budget-api/internal/domain"
	"github.com/Overland-East-Bay/trip-budget-api/internal/ports/out/idempotency"
)

const (
	idempotencyKeyHeader = "Idempotency-Key"
	replayedHeader       = "Idempotent-Replayed"
	optimizeRoute        = "/trips/{tripId}/budget/optimize"
)

func hashOptimizeBody(tripID domain.TripID, b OptimizeBudgetRequest) (string, error) {
	raw, err := json.Marshal(struct {
		TripID domain.TripID         `json:"tripId"`
		Body   OptimizeBudgetRequest `json:"body"`
	}{
		TripID: tripID,
		Body:   b,
	})
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}

// optimizeBudget runs the greedy optimizer. With an Idempotency-Key header, a retry of the
// same request replays the first response, and reusing the key with a different payload is a 409.
func (s *Server) optimizeBudget(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}
	raw, ok := readBody(w, r)
	if !ok {
		return
	}
	var body OptimizeBudgetRequest
	if !decodeBody(w, r, raw, &body, true) {
		return
	}
	ctx := r.Context()
	tripID := tripIDParam(r)
	sub, _ := SubjectFromContext(ctx)

	idemKey := strings.TrimSpace(r.Header.Get(idempotencyKeyHeader))
	useIdem := idemKey != "" && s.idem != nil
	var respFP idempotency.Fingerprint
	if useIdem {
		bodyHash, err := hashOptimizeBody(tripID, body)
		if err != nil {
			writeServiceError(w, r, s.log, err)
			return
		}
		metaFP := idempotency.Fingerprint{
			Key:     idempotency.Key(idemKey),
			Subject: sub,
			Method:  http.MethodPost,
			Route:   optimizeRoute,
		}
		meta, found, err := s.idem.Get(ctx, metaFP)
		if err != nil {
			writeServiceError(w, r, s.log, err)
			return
		}
		if found && string(meta.Body) != bodyHash {
			writeError(w, r, http.StatusConflict, "IDEMPOTENCY_KEY_REUSE", "idempotency key reuse with different payload", nil)
			return
		}
		if !found {
			if err := s.idem.Put(ctx, metaFP, idempotency.Record{
				ContentType: "text/plain",
				Body:        []byte(bodyHash),
				CreatedAt:   s.clock.Now().UTC(),
			}); err != nil {
				s.log.WithError(err).Warn("store idempotency key")
			}
		}

		respFP = metaFP
		respFP.BodyHash = bodyHash
		rec, found, err := s.idem.Get(ctx, respFP)
		if err != nil {
			writeServiceError(w, r, s.log, err)
			return
		}
		if found && rec.StatusCode == http.StatusOK && strings.HasPrefix(rec.ContentType, "application/json") {
			w.Header().Set("Content-Type", rec.ContentType)
			w.Header().Set(replayedHeader, "true")
			w.WriteHeader(rec.StatusCode)
			_, _ = w.Write(rec.Body)
			return
		}
	}

	res, err := s.budget.Optimize(ctx, caller, tripID, budget.OptimizeInput{Target: body.Target})
	if err != nil {
		writeServiceError(w, r, s.log, err)
		return
	}
	changes := res.Changes
	if changes == nil {
		changes = []string{}
	}
	payload, err := json.Marshal(OptimizeBudgetResponse{
		Itinerary: res.Itinerary,
		Savings:   res.Savings,
		Overage:   res.Overage,
		Resolved:  res.FullyResolved(),
		Changes:   changes,
	})
	if err != nil {
		writeServiceError(w, r, s.log, err)
		return
	}

	if useIdem {
		if err := s.idem.Put(ctx, respFP, idempotency.Record{
			StatusCode:  http.StatusOK,
			ContentType: "application/json",
			Body:        payload,
			CreatedAt:   s.clock.Now().UTC(),
		}); err != nil {
			s.log.WithError(err).Warn("store idempotent response")
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}
