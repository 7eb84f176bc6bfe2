package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/shift-payroll-backend/internal/domain/payroll"
	"github.com/cmlabs-hris/shift-payroll-backend/internal/domain/user"
	"github.com/cmlabs-hris/shift-payroll-backend/internal/handler/http/middleware"
	"github.com/cmlabs-hris/shift-payroll-backend/internal/handler/http/response"
	"github.com/cmlabs-hris/shift-payroll-backend/internal/pkg/validator"
)

// decodeJSON decodes the request body into dst. An empty body leaves dst
// untouched. It writes a 400 and returns false on malformed input.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		slog.Debug("Failed to decode request body", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return false
	}
	return true
}

// currentActor returns the caller set by middleware.AuthRequired.
func currentActor(w http.ResponseWriter, r *http.Request) (user.Actor, bool) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		response.HandleError(w, user.ErrInvalidToken)
		return user.Actor{}, false
	}
	return actor, true
}

func queryString(r *http.Request, key string) *string {
	if v := r.URL.Query().Get(key); v != "" {
		return &v
	}
	return nil
}

// queryInt parses an optional integer query parameter, recording a field
// error when it is malformed.
func queryInt(r *http.Request, key string, errs *validator.ValidationErrors) *int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		errs.Add(key, key+" must be an integer")
		return nil
	}
	return &n
}

func queryBool(r *http.Request, key string, errs *validator.ValidationErrors) *bool {
	v := r.URL.Query().Get(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		errs.Add(key, key+" must be true or false")
		return nil
	}
	return &b
}

func intOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

// queryCyclePeriod reads year, month and cycle_start_day.
func queryCyclePeriod(r *http.Request, errs *validator.ValidationErrors) payroll.CyclePeriod {
	return payroll.CyclePeriod{
		Year:          intOrZero(queryInt(r, "year", errs)),
		Month:         intOrZero(queryInt(r, "month", errs)),
		CycleStartDay: queryInt(r, "cycle_start_day", errs),
	}
}
