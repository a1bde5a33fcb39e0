package filter

import (
	"fmt"
	"net/url"

	"github.com/erazemk/zbirka/internal/model"
)

// Form yields the submitted value of a field; url.Values satisfies it.
type Form interface {
	Get(key string) string
}

// Fields is a Form backed by a plain map.
type Fields map[string]string

// Get returns the value for key, or "" when absent.
func (f Fields) Get(key string) string { return f[key] }

// Update is a sparse partial update. Only fields with a non-blank submitted
// value appear, so an Update can never clear a field.
type Update map[string]Value

// BuildUpdate scans every editable schema field in form and keeps the
// non-blank ones, coerced by the same rules as Build.
func BuildUpdate(form Form) (Update, error) {
	u := Update{}
	for _, f := range Schema {
		if !f.Editable {
			continue
		}
		raw := form.Get(f.Name)
		if raw == "" {
			continue
		}
		v, err := coerce(f.Name, raw)
		if err != nil {
			return nil, err
		}
		u[f.Name] = v
	}
	return u, nil
}

// UpdateFromStrings rebuilds an Update received as canonical strings.
// Blank values are dropped; keys are not restricted to editable fields so
// that delete and restore payloads survive the trip.
func UpdateFromStrings(m map[string]string) (Update, error) {
	pairs := make([]Pair, 0, len(m))
	for k, v := range m {
		pairs = append(pairs, Pair{Key: k, Value: v})
	}
	f, err := Build(pairs)
	if err != nil {
		return nil, err
	}
	return Update(f), nil
}

// SetDeleted returns the payload that soft-deletes or restores an item.
func SetDeleted(deleted bool) Update {
	return Update{"deleted": Bool(model.TriStateOf(deleted))}
}

// Strings returns the canonical string form of the update.
func (u Update) Strings() map[string]string {
	m := make(map[string]string, len(u))
	for k, v := range u {
		m[k] = v.String()
	}
	return m
}

// Values returns the update as url.Values, e.g. to prefill a form.
func (u Update) Values() url.Values {
	return canonical(u)
}

// Empty reports whether applying u would change no field. Unknown
// tri-state values carry no information, so a payload of only those is empty.
func (u Update) Empty() bool {
	for _, v := range u {
		if v.Kind() != KindBoolean || v.TriState().Known() {
			return false
		}
	}
	return true
}

// Keys returns the update's keys in sorted order.
func (u Update) Keys() []string {
	return sortedKeys(u)
}

// ApplyTo writes every value of the update onto item. Unknown keys fail
// with ErrUnknownField, backend-assigned dates with ErrReadOnlyField, and a
// value whose kind disagrees with the schema with a *ParseError.
func (u Update) ApplyTo(item *model.Item) error {
	for _, key := range u.Keys() {
		v := u[key]
		f, ok := LookupField(key)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownField, key)
		}
		if key == "date_added" || key == "last_updated" {
			return fmt.Errorf("%w: %s", ErrReadOnlyField, key)
		}
		if v.Kind() != f.Kind {
			return &ParseError{Key: key, Value: v.String(), Kind: f.Kind, Err: fmt.Errorf("got %s value", v.Kind())}
		}

		switch key {
		case "name":
			item.Name = v.Text()
		case "description":
			item.Description = v.Text()
		case "category":
			item.Category = model.Category(v.Text())
		case "action":
			item.Action = model.Action(v.Text())
		case "creator":
			item.Creator = v.Text()
		case "provenance":
			item.Provenance = v.Text()
		case "age_years":
			n := v.Int()
			item.AgeYears = &n
		case "purchase_price":
			x := v.Float()
			item.PurchasePrice = &x
		case "estimated_value":
			x := v.Float()
			item.EstimatedValue = &x
		case "date_acquired":
			item.DateAcquired = v.Text()
		case "working":
			// An unrecognized value carries no information and leaves the field alone.
			if v.TriState().Known() {
				item.Working = v.TriState()
			}
		case "deleted":
			if v.TriState().Known() {
				item.Deleted = v.TriState() == model.True
			}
		}
	}
	return nil
}

// EditBuffer renders an item's editable fields as form strings. Missing
// optionals and an unknown working state render blank.
func EditBuffer(item *model.Item) Fields {
	buf := Fields{
		"name":          item.Name,
		"description":   item.Description,
		"category":      string(item.Category),
		"action":        string(item.Action),
		"creator":       item.Creator,
		"provenance":    item.Provenance,
		"date_acquired": item.DateAcquired,
	}
	if item.AgeYears != nil {
		buf["age_years"] = Integer(*item.AgeYears).String()
	} else {
		buf["age_years"] = ""
	}
	if item.PurchasePrice != nil {
		buf["purchase_price"] = Float(*item.PurchasePrice).String()
	} else {
		buf["purchase_price"] = ""
	}
	if item.EstimatedValue != nil {
		buf["estimated_value"] = Float(*item.EstimatedValue).String()
	} else {
		buf["estimated_value"] = ""
	}
	if item.Working.Known() {
		buf["working"] = item.Working.String()
	} else {
		buf["working"] = ""
	}
	return buf
}
