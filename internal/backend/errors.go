package backend

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rotisserie/eris"

	"github.com/sells-group/delivery-cli/internal/resilience"
)

var (
	// ErrValidation means the backend rejected the data.
	ErrValidation = eris.New("backend: validation failed")
	// ErrConflict means the write clashes with existing data.
	ErrConflict = eris.New("backend: conflict")
	// ErrUnavailable means the backend could not be reached; retrying may help.
	ErrUnavailable = eris.New("backend: unavailable")
	// ErrNotConfigured means no backend is set up.
	ErrNotConfigured = eris.New("backend: not configured")
)

// Error carries an error kind alongside the underlying cause so both match
// errors.Is.
type Error struct {
	Kind error
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return e.Op + ": " + e.Kind.Error() + ": " + e.Err.Error()
}

func (e *Error) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

func kindError(kind error, op string, err error) error {
	if errors.Is(kind, ErrUnavailable) {
		err = resilience.NewTransientError(err, 0)
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// classifyPg maps a Postgres error to a kind using its SQLSTATE. Unknown
// errors are wrapped unchanged.
func classifyPg(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return eris.Wrap(err, op)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		code := pgErr.Code
		switch {
		case code == "23505":
			return kindError(ErrConflict, op, err)
		case code == "42883", code == "3F000":
			// undefined_function, invalid_schema_name
			return kindError(ErrNotConfigured, op, err)
		case code == "P0001":
			// raise_exception from the order function
			return kindError(ErrValidation, op, err)
		case code == "40001", code == "40P01", code == "57P01", code == "57P03":
			return kindError(ErrUnavailable, op, err)
		}
		class := ""
		if len(code) >= 2 {
			class = code[:2]
		}
		switch class {
		case "22", "23":
			return kindError(ErrValidation, op, err)
		case "08", "53":
			return kindError(ErrUnavailable, op, err)
		}
		return eris.Wrapf(err, "%s: sqlstate %s", op, code)
	}

	if pgconn.SafeToRetry(err) || resilience.IsTransient(err) {
		return kindError(ErrUnavailable, op, err)
	}
	return eris.Wrap(err, op)
}

func itoa(i int) string { return strconv.Itoa(i) }

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
