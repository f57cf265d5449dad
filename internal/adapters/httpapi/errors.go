package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/oapi-codegen/nullable"
	"github.com/sirupsen/logrus"

	"github.com/Overland-East-Bay/trip-budget-api/internal/app/budget"
	"github.com/Overland-East-Bay/trip-budget-api/internal/app/itineraries"
	"github.com/Overland-East-Bay/trip-budget-api/internal/app/trips"
)

type ErrorBody struct {
	Code      string                            `json:"code"`
	Message   string                            `json:"message"`
	Details   nullable.Nullable[map[string]any] `json:"details,omitempty"`
	RequestID nullable.Nullable[string]         `json:"requestId,omitempty"`
}

// ErrorResponse is the envelope every non-2xx response uses.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code string, message string, details map[string]any) {
	var er ErrorResponse
	er.Error.Code = code
	er.Error.Message = message
	if details != nil {
		er.Error.Details = nullable.NewNullableWithValue(details)
	}
	if rid := middleware.GetReqID(r.Context()); rid != "" {
		er.Error.RequestID = nullable.NewNullableWithValue(rid)
	}
	writeJSON(w, status, er)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type appError struct {
	status  int
	code    string
	message string
	details map[string]any
}

func asAppError(err error) (appError, bool) {
	if te := (*trips.Error)(nil); errors.As(err, &te) {
		return appError{te.Status, te.Code, te.Message, te.Details}, true
	}
	if ie := (*itineraries.Error)(nil); errors.As(err, &ie) {
		return appError{ie.Status, ie.Code, ie.Message, ie.Details}, true
	}
	if be := (*budget.Error)(nil); errors.As(err, &be) {
		return appError{be.Status, be.Code, be.Message, be.Details}, true
	}
	return appError{}, false
}

// writeServiceError maps application errors to their status; anything else is logged and hidden behind a 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, log logrus.FieldLogger, err error) {
	if ae, ok := asAppError(err); ok {
		writeError(w, r, ae.status, ae.code, ae.message, ae.details)
		return
	}
	log.WithError(err).WithFields(logrus.Fields{
		"requestId": middleware.GetReqID(r.Context()),
		"method":    r.Method,
		"path":      r.URL.Path,
	}).Error("request failed")
	writeError(w, r, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
}
