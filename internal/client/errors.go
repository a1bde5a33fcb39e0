package client

import (
	"errors"
	"fmt"

	"github.com/erazemk/zbirka/internal/api"
	"github.com/erazemk/zbirka/internal/filter"
	"github.com/erazemk/zbirka/internal/imaging"
	"github.com/erazemk/zbirka/internal/model"
	"github.com/erazemk/zbirka/internal/store"
)

// Category decides whether a failed call is worth retrying.
type Category int

const (
	// Recoverable errors are retried with exponential backoff: 5xx, 408,
	// 429 and network failures.
	Recoverable Category = iota
	// Irrecoverable errors fail at once: every other 4xx.
	Irrecoverable
)

func (c Category) String() string {
	switch c {
	case Recoverable:
		return "recoverable"
	case Irrecoverable:
		return "irrecoverable"
	default:
		return fmt.Sprintf("Category(%d)", int(c))
	}
}

var (
	// ErrUnauthorized is returned for 401 responses.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrBadRequest is returned for a rejected request with no more specific cause.
	ErrBadRequest = errors.New("bad request")
)

// StatusError is a failed call, classified for retry. It unwraps to the
// typed error the server reported where one exists, so callers can use
// errors.Is and errors.As exactly as with the local backend.
type StatusError struct {
	Op         string
	Category   Category
	StatusCode int // 0 for network failures
	Body       api.ErrorBody
	Err        error
}

func (e *StatusError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: HTTP %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StatusError) Unwrap() error { return e.Err }

// IsIrrecoverable reports whether err must not be retried.
func IsIrrecoverable(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Category == Irrecoverable
}

func classify(status int) Category {
	switch {
	case status == 408, status == 429:
		return Recoverable
	case status >= 400 && status < 500:
		return Irrecoverable
	default:
		return Recoverable
	}
}

func networkError(op string, err error) *StatusError {
	return &StatusError{Op: op, Category: Recoverable, Err: err}
}

// httpError rebuilds the server's error from its status and body.
func httpError(op string, status int, body api.ErrorBody) *StatusError {
	return &StatusError{
		Op:         op,
		Category:   classify(status),
		StatusCode: status,
		Body:       body,
		Err:        cause(status, body),
	}
}

func cause(status int, body api.ErrorBody) error {
	switch body.Kind {
	case api.KindValidation:
		return &model.ValidationError{Problems: body.Problems}
	case api.KindParse:
		kind := filter.KindString
		if f, op, ok := filter.Lookup(body.Key); ok && op != filter.OpContains {
			kind = f.Kind
		}
		return &filter.ParseError{Key: body.Key, Value: body.Value, Kind: kind, Err: errors.New(body.Error)}
	case api.KindNotFound:
		return store.ErrNotFound
	case api.KindBadQuery:
		return fmt.Errorf("%w: %s", filter.ErrInvalidQuery, body.Error)
	case api.KindBadImage:
		if status == 413 {
			return fmt.Errorf("%w: %s", imaging.ErrTooLarge, body.Error)
		}
		return fmt.Errorf("%w: %s", imaging.ErrUnsupportedFormat, body.Error)
	}

	msg := body.Error
	if msg == "" {
		msg = "no error message"
	}
	switch {
	case status == 401:
		return fmt.Errorf("%w: %s", ErrUnauthorized, msg)
	case status >= 400 && status < 500:
		return fmt.Errorf("%w: %s", ErrBadRequest, msg)
	default:
		return errors.New(msg)
	}
}
