// Package filter turns loosely typed key/value input (query strings, form
// fields, command line arguments) into typed filters and update payloads.
package filter

import "strings"

// Kind is the declared type of a field.
type Kind int

const (
	KindString Kind = iota + 1
	KindInteger
	KindFloat
	KindBoolean
	KindDate
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindBoolean:
		return "boolean"
	case KindDate:
		return "date"
	default:
		return "unknown"
	}
}

// Field is one entry of the item schema.
type Field struct {
	Name string
	Kind Kind

	// Editable fields are scanned by BuildUpdate.
	Editable bool
	// Ranged fields accept <name>_min and <name>_max bounds.
	Ranged bool
	// Searchable fields accept a <name>_contains substring match.
	Searchable bool
}

// Op is the comparison a filter key asks for.
type Op int

const (
	OpEq Op = iota
	OpMin
	OpMax
	OpContains
)

const (
	suffixMin      = "_min"
	suffixMax      = "_max"
	suffixContains = "_contains"
)

// Schema is the item schema. Every name appears exactly once.
var Schema = []Field{
	{Name: "name", Kind: KindString, Editable: true, Searchable: true},
	{Name: "description", Kind: KindString, Editable: true, Searchable: true},
	{Name: "category", Kind: KindString, Editable: true},
	{Name: "action", Kind: KindString, Editable: true},
	{Name: "creator", Kind: KindString, Editable: true, Searchable: true},
	{Name: "provenance", Kind: KindString, Editable: true, Searchable: true},
	{Name: "age_years", Kind: KindInteger, Editable: true, Ranged: true},
	{Name: "purchase_price", Kind: KindFloat, Editable: true, Ranged: true},
	{Name: "estimated_value", Kind: KindFloat, Editable: true, Ranged: true},
	{Name: "date_acquired", Kind: KindDate, Editable: true, Ranged: true},
	{Name: "date_added", Kind: KindDate, Ranged: true},
	{Name: "last_updated", Kind: KindDate, Ranged: true},
	{Name: "working", Kind: KindBoolean, Editable: true},
	{Name: "deleted", Kind: KindBoolean},
}

var fieldsByName = func() map[string]Field {
	m := make(map[string]Field, len(Schema))
	for _, f := range Schema {
		if _, dup := m[f.Name]; dup {
			panic("filter: duplicate field " + f.Name)
		}
		m[f.Name] = f
	}
	return m
}()

// LookupField returns the schema entry for a plain field name.
func LookupField(name string) (Field, bool) {
	f, ok := fieldsByName[name]
	return f, ok
}

// Lookup resolves a filter key to its field and comparison. It reports false
// for keys the schema does not know.
func Lookup(key string) (Field, Op, bool) {
	if f, ok := fieldsByName[key]; ok {
		return f, OpEq, true
	}
	if base, ok := strings.CutSuffix(key, suffixMin); ok {
		if f, ok := fieldsByName[base]; ok && f.Ranged {
			return f, OpMin, true
		}
	}
	if base, ok := strings.CutSuffix(key, suffixMax); ok {
		if f, ok := fieldsByName[base]; ok && f.Ranged {
			return f, OpMax, true
		}
	}
	if base, ok := strings.CutSuffix(key, suffixContains); ok {
		if f, ok := fieldsByName[base]; ok && f.Searchable {
			return f, OpContains, true
		}
	}
	return Field{}, OpEq, false
}

// kindOf is the kind a key's value coerces to. Substring keys are always
// strings; unknown keys pass through as strings.
func kindOf(key string) Kind {
	f, op, ok := Lookup(key)
	if !ok || op == OpContains {
		return KindString
	}
	return f.Kind
}
