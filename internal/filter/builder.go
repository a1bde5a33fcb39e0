package filter

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"sort"
	"strconv"

	"github.com/erazemk/zbirka/internal/model"
)

var (
	// ErrUnknownField is returned when an update names a field outside the schema.
	ErrUnknownField = errors.New("unknown field")
	// ErrReadOnlyField is returned when an update names a backend-assigned field.
	ErrReadOnlyField = errors.New("read-only field")
	// ErrInvalidQuery is returned for a query string that is not valid URL encoding.
	ErrInvalidQuery = errors.New("invalid query string")
)

// ParseError reports a non-blank value that cannot be coerced to its
// declared numeric kind.
type ParseError struct {
	Key   string
	Value string
	Kind  Kind
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %s=%q as %s: %v", e.Key, e.Value, e.Kind, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

var errNotFinite = errors.New("not a finite number")

// Pair is one raw key/value input.
type Pair struct {
	Key   string
	Value string
}

// Filter is a sparse set of constraints keyed by field or range name.
// Absent keys mean no constraint.
type Filter map[string]Value

// Build coerces raw pairs into a Filter. Blank values are omitted; when a
// key repeats, the last non-blank value wins. Keys unknown to the schema
// pass through as strings. Any numeric coercion failure aborts the build.
func Build(pairs []Pair) (Filter, error) {
	f := Filter{}
	for _, p := range pairs {
		if p.Value == "" {
			continue
		}
		v, err := coerce(p.Key, p.Value)
		if err != nil {
			return nil, err
		}
		f[p.Key] = v
	}
	return f, nil
}

// FromValues builds a Filter from decoded query parameters.
func FromValues(values url.Values) (Filter, error) {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var pairs []Pair
	for _, k := range keys {
		for _, v := range values[k] {
			pairs = append(pairs, Pair{Key: k, Value: v})
		}
	}
	return Build(pairs)
}

// Parse builds a Filter from a raw URL query string.
func Parse(rawQuery string) (Filter, error) {
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}
	return FromValues(values)
}

// Values returns the canonical string form of the filter.
func (f Filter) Values() url.Values {
	return canonical(f)
}

// Encode returns the canonical query string; keys are sorted.
func (f Filter) Encode() string {
	return f.Values().Encode()
}

// Keys returns the filter's keys in sorted order.
func (f Filter) Keys() []string {
	return sortedKeys(f)
}

// coerce converts one non-blank raw value to the kind declared for key.
func coerce(key, raw string) (Value, error) {
	kind := kindOf(key)
	switch kind {
	case KindInteger:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Value{}, &ParseError{Key: key, Value: raw, Kind: kind, Err: unwrapNum(err)}
		}
		return Integer(n), nil
	case KindFloat:
		x, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Value{}, &ParseError{Key: key, Value: raw, Kind: kind, Err: unwrapNum(err)}
		}
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return Value{}, &ParseError{Key: key, Value: raw, Kind: kind, Err: errNotFinite}
		}
		return Float(x), nil
	case KindBoolean:
		return Bool(model.ParseTriState(raw)), nil
	case KindDate:
		return Date(raw), nil
	default:
		return String(raw), nil
	}
}

func unwrapNum(err error) error {
	var numErr *strconv.NumError
	if errors.As(err, &numErr) {
		return numErr.Err
	}
	return err
}

func canonical(m map[string]Value) url.Values {
	values := make(url.Values, len(m))
	for k, v := range m {
		values.Set(k, v.String())
	}
	return values
}

func sortedKeys(m map[string]Value) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
