package model

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func validItem() Item {
	return Item{
		Name:        "Oak chest",
		Description: "Hand carved, 19th century",
		Category:    CategoryFurniture,
		Action:      ActionKeep,
	}
}

func TestValidateAcceptsMinimalItem(t *testing.T) {
	item := validItem()
	if err := item.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateCollectsAllProblems(t *testing.T) {
	price := -1.0
	age := int64(-3)
	item := Item{
		Name:          strings.Repeat("x", 51),
		Category:      "Spaceship",
		Action:        ActionSell,
		PurchasePrice: &price,
		AgeYears:      &age,
		DateAcquired:  "03/04/2020",
	}

	err := item.Validate()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}

	want := []string{
		"name cannot be more than 50 characters",
		"description cannot be empty",
		"unknown category Spaceship",
		"age cannot be negative",
		"purchase price cannot be negative",
		"date acquired must be YYYY-MM-DD",
	}
	if len(verr.Problems) != len(want) {
		t.Fatalf("expected %d problems, got %d: %v", len(want), len(verr.Problems), verr.Problems)
	}
	for i, p := range want {
		if verr.Problems[i] != p {
			t.Errorf("problem %d: expected %q, got %q", i, p, verr.Problems[i])
		}
	}
	if !strings.Contains(err.Error(), "; ") {
		t.Errorf("expected problems joined with '; ', got %q", err.Error())
	}
}

func TestValidateNameLengthCountsCharacters(t *testing.T) {
	item := validItem()
	item.Name = strings.Repeat("č", 50)
	if err := item.Validate(); err != nil {
		t.Errorf("50 multi-byte characters should be accepted: %v", err)
	}
}

func TestApplyDefaults(t *testing.T) {
	item := Item{Name: "x", Description: "y"}
	item.ApplyDefaults()
	if item.Category != CategoryOther {
		t.Errorf("expected category Other, got %q", item.Category)
	}
	if item.Action != ActionKeep {
		t.Errorf("expected action Keep, got %q", item.Action)
	}
}

func TestCategoryLabel(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"ElectronicDevice", "Electronic device"},
		{"HouseholdItem", "Household item"},
		{"MineralSpecimen", "Mineral specimen"},
		{"Book", "Book"},
		{"Other", "Other"},
		// Unmapped codes display as themselves.
		{"Vinyl", "Vinyl"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := CategoryLabel(tt.code); got != tt.want {
			t.Errorf("CategoryLabel(%q) = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestParseTriState(t *testing.T) {
	tests := []struct {
		in   string
		want TriState
	}{
		{"true", True},
		{"false", False},
		{"", Unknown},
		{"yes", Unknown},
		{"FALSE", Unknown},
		{"0", Unknown},
	}

	for _, tt := range tests {
		if got := ParseTriState(tt.in); got != tt.want {
			t.Errorf("ParseTriState(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestTriStateJSON(t *testing.T) {
	type wrapper struct {
		Working TriState `json:"working"`
	}

	tests := []struct {
		state TriState
		json  string
	}{
		{True, `{"working":true}`},
		{False, `{"working":false}`},
		{Unknown, `{"working":null}`},
	}

	for _, tt := range tests {
		data, err := json.Marshal(wrapper{Working: tt.state})
		if err != nil {
			t.Fatalf("Marshal: %v", err)
		}
		if string(data) != tt.json {
			t.Errorf("Marshal(%v) = %s, want %s", tt.state, data, tt.json)
		}

		var got wrapper
		if err := json.Unmarshal([]byte(tt.json), &got); err != nil {
			t.Fatalf("Unmarshal: %v", err)
		}
		if got.Working != tt.state {
			t.Errorf("Unmarshal(%s) = %v, want %v", tt.json, got.Working, tt.state)
		}
	}
}

func TestTriStateLabel(t *testing.T) {
	if True.Label() != "Yes" || False.Label() != "No" || Unknown.Label() != "Unknown" {
		t.Errorf("unexpected labels: %q %q %q", True.Label(), False.Label(), Unknown.Label())
	}
}
