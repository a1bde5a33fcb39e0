package filter

import (
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/zbirka/internal/model"
)

func TestSchemaNamesAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, f := range Schema {
		assert.False(t, seen[f.Name], "duplicate field %s", f.Name)
		seen[f.Name] = true
	}
}

func TestLookup(t *testing.T) {
	tests := []struct {
		key    string
		field  string
		op     Op
		wantOK bool
	}{
		{"name", "name", OpEq, true},
		{"name_contains", "name", OpContains, true},
		{"age_years_min", "age_years", OpMin, true},
		{"purchase_price_max", "purchase_price", OpMax, true},
		{"date_added_min", "date_added", OpMin, true},
		{"working", "working", OpEq, true},
		{"name_min", "", OpEq, false},
		{"category_contains", "", OpEq, false},
		{"colour", "", OpEq, false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			f, op, ok := Lookup(tt.key)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.field, f.Name)
				assert.Equal(t, tt.op, op)
			}
		})
	}
}

func TestParseScenario(t *testing.T) {
	f, err := Parse("name=Lamp&age_years_min=5&working=true")
	require.NoError(t, err)

	assert.Equal(t, Filter{
		"name":          String("Lamp"),
		"age_years_min": Integer(5),
		"working":       Bool(model.True),
	}, f)
}

func TestParseNumericErrorProducesNoFilter(t *testing.T) {
	f, err := Parse("age_years_min=abc")
	assert.Nil(t, f)

	var perr *ParseError
	require.True(t, errors.As(err, &perr), "expected *ParseError, got %v", err)
	assert.Equal(t, "age_years_min", perr.Key)
	assert.Equal(t, "abc", perr.Value)
	assert.Equal(t, KindInteger, perr.Kind)
}

func TestParseMalformedQuery(t *testing.T) {
	f, err := Parse("name=%zz")
	assert.Nil(t, f)
	assert.ErrorIs(t, err, ErrInvalidQuery)

	var perr *ParseError
	assert.False(t, errors.As(err, &perr))
}

func TestBuildNumericFields(t *testing.T) {
	tests := []struct {
		key     string
		raw     string
		want    Value
		wantErr bool
	}{
		{"age_years", "12", Integer(12), false},
		{"age_years_max", "-1", Integer(-1), false},
		{"age_years", "1.5", Value{}, true},
		{"age_years", " 7", Value{}, true},
		{"purchase_price", "19.99", Float(19.99), false},
		{"purchase_price_min", "3", Float(3), false},
		{"estimated_value_max", "1e3", Float(1000), false},
		{"estimated_value", "ten", Value{}, true},
		{"estimated_value", "NaN", Value{}, true},
		{"purchase_price", "Inf", Value{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.raw, func(t *testing.T) {
			f, err := Build([]Pair{{Key: tt.key, Value: tt.raw}})
			if tt.wantErr {
				var perr *ParseError
				assert.True(t, errors.As(err, &perr), "expected *ParseError, got %v", err)
				assert.Nil(t, f)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, f[tt.key])
		})
	}
}

func TestBuildOmitsBlanks(t *testing.T) {
	f, err := Build([]Pair{
		{Key: "name", Value: ""},
		{Key: "age_years_min", Value: ""},
		{Key: "working", Value: ""},
		{Key: "creator", Value: "Tiffany"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"creator"}, f.Keys())
}

func TestBuildTriState(t *testing.T) {
	tests := []struct {
		raw  string
		want model.TriState
	}{
		{"true", model.True},
		{"false", model.False},
		{"maybe", model.Unknown},
		{"False", model.Unknown},
		{"1", model.Unknown},
	}

	for _, key := range []string{"working", "deleted"} {
		for _, tt := range tests {
			t.Run(key+"="+tt.raw, func(t *testing.T) {
				f, err := Build([]Pair{{Key: key, Value: tt.raw}})
				require.NoError(t, err)
				v, ok := f[key]
				require.True(t, ok, "non-blank tri-state must not be dropped")
				assert.Equal(t, KindBoolean, v.Kind())
				assert.Equal(t, tt.want, v.TriState())
			})
		}
	}
}

func TestBuildPassesThroughStringsAndDates(t *testing.T) {
	f, err := Build([]Pair{
		{Key: "name_contains", Value: "  lamp "},
		{Key: "date_added_min", Value: "not-a-date"},
		{Key: "colour", Value: "red"},
		{Key: "category", Value: "Decor"},
	})
	require.NoError(t, err)

	assert.Equal(t, String("  lamp "), f["name_contains"])
	assert.Equal(t, Date("not-a-date"), f["date_added_min"])
	assert.Equal(t, String("red"), f["colour"])
	assert.Equal(t, String("Decor"), f["category"])
}

func TestBuildLastValueWins(t *testing.T) {
	f, err := Build([]Pair{
		{Key: "name", Value: "first"},
		{Key: "name", Value: "second"},
		{Key: "name", Value: ""},
	})
	require.NoError(t, err)
	assert.Equal(t, String("second"), f["name"])
}

func TestEncodeIsIdempotent(t *testing.T) {
	queries := []string{
		"name=Lamp&age_years_min=5&working=true",
		"purchase_price_min=0.1&estimated_value_max=2500.75&deleted=false",
		"working=sometimes&date_acquired_max=2024-01-31&provenance_contains=estate+sale",
		"colour=blue&category=MineralSpecimen&age_years=0",
	}

	for _, q := range queries {
		t.Run(q, func(t *testing.T) {
			first, err := Parse(q)
			require.NoError(t, err)

			second, err := Parse(first.Encode())
			require.NoError(t, err)

			assert.Equal(t, first, second)
			assert.Equal(t, first.Encode(), second.Encode())
		})
	}
}

func TestCanonicalForms(t *testing.T) {
	f := Filter{
		"age_years":      Integer(42),
		"purchase_price": Float(10),
		"working":        Bool(model.Unknown),
		"deleted":        Bool(model.False),
	}
	assert.Equal(t, url.Values{
		"age_years":      {"42"},
		"purchase_price": {"10"},
		"working":        {"unknown"},
		"deleted":        {"false"},
	}, f.Values())
}

func TestBuildUpdateScansEditableFields(t *testing.T) {
	form := url.Values{
		"name":           {"Brass lamp"},
		"description":    {""},
		"age_years":      {"80"},
		"purchase_price": {"12.5"},
		"working":        {"false"},
		"deleted":        {"true"},
		"date_added":     {"2020-01-01"},
		"colour":         {"gold"},
	}

	u, err := BuildUpdate(form)
	require.NoError(t, err)

	assert.Equal(t, Update{
		"name":           String("Brass lamp"),
		"age_years":      Integer(80),
		"purchase_price": Float(12.5),
		"working":        Bool(model.False),
	}, u)
}

func TestBuildUpdateAllBlankIsEmpty(t *testing.T) {
	u, err := BuildUpdate(Fields{"name": "", "description": ""})
	require.NoError(t, err)
	assert.Empty(t, u)
}

func TestUpdateEmpty(t *testing.T) {
	tests := []struct {
		name string
		u    Update
		want bool
	}{
		{name: "nil", u: nil, want: true},
		{name: "unknown tri-state only", u: Update{"working": Bool(model.Unknown)}, want: true},
		{name: "known tri-state", u: Update{"working": Bool(model.False)}, want: false},
		{name: "restore", u: SetDeleted(false), want: false},
		{name: "unknown plus text", u: Update{"working": Bool(model.Unknown), "name": String("x")}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.u.Empty())
		})
	}
}

func TestBuildUpdateParseError(t *testing.T) {
	_, err := BuildUpdate(Fields{"estimated_value": "priceless"})
	var perr *ParseError
	assert.True(t, errors.As(err, &perr))
}

func TestUpdateRoundTripsThroughStrings(t *testing.T) {
	u := Update{
		"name":            String("Clock"),
		"estimated_value": Float(99.95),
		"working":         Bool(model.True),
		"deleted":         Bool(model.False),
	}

	got, err := UpdateFromStrings(u.Strings())
	require.NoError(t, err)
	assert.Equal(t, u, got)
}

func TestApplyTo(t *testing.T) {
	item := &model.Item{Name: "Old", Description: "d", Working: model.True}

	u := Update{
		"name":          String("New"),
		"category":      String("Tool"),
		"age_years":     Integer(3),
		"date_acquired": Date("2021-06-01"),
		"working":       Bool(model.Unknown),
		"deleted":       Bool(model.True),
	}
	require.NoError(t, u.ApplyTo(item))

	assert.Equal(t, "New", item.Name)
	assert.Equal(t, model.CategoryTool, item.Category)
	require.NotNil(t, item.AgeYears)
	assert.Equal(t, int64(3), *item.AgeYears)
	assert.Equal(t, "2021-06-01", item.DateAcquired)
	assert.Equal(t, model.True, item.Working, "unknown must not overwrite")
	assert.True(t, item.Deleted)
}

func TestApplyToRejects(t *testing.T) {
	tests := []struct {
		name string
		u    Update
		want error
	}{
		{"unknown", Update{"colour": String("red")}, ErrUnknownField},
		{"range key", Update{"age_years_min": Integer(1)}, ErrUnknownField},
		{"read only", Update{"date_added": Date("2020-01-01")}, ErrReadOnlyField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.u.ApplyTo(&model.Item{})
			assert.ErrorIs(t, err, tt.want)
		})
	}

	var perr *ParseError
	err := Update{"age_years": String("old")}.ApplyTo(&model.Item{})
	assert.True(t, errors.As(err, &perr))
}

func TestSetDeleted(t *testing.T) {
	assert.Equal(t, map[string]string{"deleted": "true"}, SetDeleted(true).Strings())
	assert.Equal(t, map[string]string{"deleted": "false"}, SetDeleted(false).Strings())
}

func TestEditBuffer(t *testing.T) {
	age := int64(15)
	item := &model.Item{
		Name:        "Radio",
		Description: "Valve radio",
		Category:    model.CategoryElectronicDevice,
		Action:      model.ActionSell,
		AgeYears:    &age,
		Working:     model.False,
	}

	buf := EditBuffer(item)
	assert.Equal(t, "Radio", buf.Get("name"))
	assert.Equal(t, "ElectronicDevice", buf.Get("category"))
	assert.Equal(t, "15", buf.Get("age_years"))
	assert.Equal(t, "", buf.Get("purchase_price"))
	assert.Equal(t, "false", buf.Get("working"))

	item.Working = model.Unknown
	assert.Equal(t, "", EditBuffer(item).Get("working"))

	// Rebuilding from an untouched buffer reproduces the item's values.
	u, err := BuildUpdate(buf)
	require.NoError(t, err)
	assert.Equal(t, Integer(15), u["age_years"])
	assert.Equal(t, String("Sell"), u["action"])
}
