package filter

import (
	"strconv"

	"github.com/erazemk/zbirka/internal/model"
)

// Value is a typed filter or update value. Exactly one of its payloads is
// meaningful, selected by Kind.
type Value struct {
	kind Kind
	str  string
	num  int64
	real float64
	tri  model.TriState
}

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Integer returns an integer value.
func Integer(n int64) Value { return Value{kind: KindInteger, num: n} }

// Float returns a float value.
func Float(f float64) Value { return Value{kind: KindFloat, real: f} }

// Date returns a date value. The text is not validated.
func Date(s string) Value { return Value{kind: KindDate, str: s} }

// Bool returns a tri-state boolean value.
func Bool(t model.TriState) Value { return Value{kind: KindBoolean, tri: t} }

// Kind reports which payload the value carries.
func (v Value) Kind() Kind { return v.kind }

// Text returns the payload of a string or date value.
func (v Value) Text() string { return v.str }

// Int returns the payload of an integer value.
func (v Value) Int() int64 { return v.num }

// Float returns the payload of a float value.
func (v Value) Float() float64 { return v.real }

// TriState returns the payload of a boolean value.
func (v Value) TriState() model.TriState { return v.tri }

// String returns the canonical string form: base-10 integers, shortest
// decimal floats, "true"/"false"/"unknown" booleans, and text verbatim.
func (v Value) String() string {
	switch v.kind {
	case KindInteger:
		return strconv.FormatInt(v.num, 10)
	case KindFloat:
		return strconv.FormatFloat(v.real, 'f', -1, 64)
	case KindBoolean:
		return v.tri.String()
	default:
		return v.str
	}
}

// SQLArg returns the value as a database/sql argument. Known booleans map
// to 1 and 0; Unknown maps to nil.
func (v Value) SQLArg() any {
	switch v.kind {
	case KindInteger:
		return v.num
	case KindFloat:
		return v.real
	case KindBoolean:
		switch v.tri {
		case model.True:
			return 1
		case model.False:
			return 0
		default:
			return nil
		}
	default:
		return v.str
	}
}
