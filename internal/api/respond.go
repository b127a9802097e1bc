package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/delivery-cli/internal/backend"
	"github.com/sells-group/delivery-cli/internal/checkout"
	"github.com/sells-group/delivery-cli/internal/delivery"
	"github.com/sells-group/delivery-cli/internal/geo"
	"github.com/sells-group/delivery-cli/internal/resilience"
	"github.com/sells-group/delivery-cli/internal/review"
)

var errBadQuery = eris.New("invalid query parameter")

type errorResponse struct {
	Error       string           `json:"error"`
	Eligibility *delivery.Result `json:"eligibility,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	writeJSONBody(w, status, v)
}

// writeJSONBody keeps any Content-Type the caller already set.
func writeJSONBody(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("api: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeErr maps a domain error to a status code and JSON body.
func writeErr(w http.ResponseWriter, err error) {
	var oor *checkout.OutOfRangeError
	if errors.As(err, &oor) {
		res := oor.Result
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: res.Reason, Eligibility: &res})
		return
	}

	status := statusFor(err)
	if status == http.StatusInternalServerError {
		zap.L().Error("api: request failed", zap.Error(err))
		writeError(w, status, "internal error")
		return
	}
	if status == http.StatusServiceUnavailable {
		zap.L().Warn("api: backend unavailable", zap.Error(err))
	}
	writeError(w, status, message(err))
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, checkout.ErrOutOfRange):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errBadQuery),
		errors.Is(err, geo.ErrInvalidCoordinate),
		errors.Is(err, backend.ErrValidation),
		errors.Is(err, checkout.ErrEmptyCart),
		errors.Is(err, checkout.ErrUnknownBranch),
		errors.Is(err, checkout.ErrLocationRequired),
		errors.Is(err, review.ErrRatingRequired),
		errors.Is(err, review.ErrInvalidRating),
		errors.Is(err, review.ErrNameRequired):
		return http.StatusBadRequest
	case errors.Is(err, backend.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, backend.ErrUnavailable),
		errors.Is(err, backend.ErrNotConfigured),
		errors.Is(err, resilience.ErrCircuitOpen),
		errors.Is(err, delivery.ErrEmptyRegistry):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// message prefers the customer-facing text of known sentinels.
func message(err error) string {
	for _, sentinel := range []error{
		review.ErrRatingRequired,
		review.ErrNameRequired,
		checkout.ErrEmptyCart,
		checkout.ErrLocationRequired,
		backend.ErrNotConfigured,
		resilience.ErrCircuitOpen,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}

func queryCoordinate(r *http.Request) (geo.Coordinate, error) {
	lat, err := queryFloat(r, "lat")
	if err != nil {
		return geo.Coordinate{}, err
	}
	lng, err := queryFloat(r, "lng")
	if err != nil {
		return geo.Coordinate{}, err
	}
	c := geo.Coordinate{Lat: lat, Lng: lng}
	if err := c.Validate(); err != nil {
		return geo.Coordinate{}, err
	}
	return c, nil
}

func queryFloat(r *http.Request, name string) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, eris.Wrapf(errBadQuery, "%s is required", name)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, eris.Wrapf(errBadQuery, "%s must be a number", name)
	}
	return v, nil
}

// queryInt returns def when the parameter is absent.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, eris.Wrapf(errBadQuery, "%s must be an integer", name)
	}
	return v, nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return eris.Wrap(errBadQuery, "invalid request body")
	}
	return nil
}
