package model

import (
	"strings"
	"time"
	"unicode/utf8"
)

// DateLayout is the format of every date stored on an item.
const DateLayout = "2006-01-02"

// MaxNameLength is the longest accepted item name, in characters.
const MaxNameLength = 50

// Item is one entry in the collection catalogue.
type Item struct {
	ID             int64    `json:"id" yaml:"id"`
	Name           string   `json:"name" yaml:"name"`
	Description    string   `json:"description" yaml:"description"`
	Category       Category `json:"category" yaml:"category"`
	Action         Action   `json:"action" yaml:"action"`
	DateAdded      string   `json:"date_added" yaml:"date_added"`
	LastUpdated    string   `json:"last_updated" yaml:"last_updated"`
	Deleted        bool     `json:"deleted" yaml:"deleted"`
	AgeYears       *int64   `json:"age_years,omitempty" yaml:"age_years,omitempty"`
	DateAcquired   string   `json:"date_acquired,omitempty" yaml:"date_acquired,omitempty"`
	PurchasePrice  *float64 `json:"purchase_price,omitempty" yaml:"purchase_price,omitempty"`
	EstimatedValue *float64 `json:"estimated_value,omitempty" yaml:"estimated_value,omitempty"`
	Creator        string   `json:"creator,omitempty" yaml:"creator,omitempty"`
	Working        TriState `json:"working" yaml:"working"`
	Provenance     string   `json:"provenance,omitempty" yaml:"provenance,omitempty"`
	ImageMime      string   `json:"image_mime,omitempty" yaml:"image_mime,omitempty"`
}

// Action says what the owner intends to do with an item.
type Action string

// Item actions.
const (
	ActionKeep Action = "Keep"
	ActionSell Action = "Sell"
)

// Valid reports whether a is a known action.
func (a Action) Valid() bool {
	return a == ActionKeep || a == ActionSell
}

// Today returns the current local date in DateLayout.
func Today() string {
	return time.Now().Format(DateLayout)
}

// ValidationError collects every problem found on an item.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Problems, "; ")
}

// Validate checks the item's fields and returns a *ValidationError listing
// all problems, or nil.
func (i *Item) Validate() error {
	var problems []string

	switch {
	case strings.TrimSpace(i.Name) == "":
		problems = append(problems, "name cannot be empty")
	case utf8.RuneCountInString(i.Name) > MaxNameLength:
		problems = append(problems, "name cannot be more than 50 characters")
	}
	if strings.TrimSpace(i.Description) == "" {
		problems = append(problems, "description cannot be empty")
	}
	if !i.Category.Valid() {
		problems = append(problems, "unknown category "+string(i.Category))
	}
	if !i.Action.Valid() {
		problems = append(problems, "unknown action "+string(i.Action))
	}
	if i.AgeYears != nil && *i.AgeYears < 0 {
		problems = append(problems, "age cannot be negative")
	}
	if i.PurchasePrice != nil && *i.PurchasePrice < 0 {
		problems = append(problems, "purchase price cannot be negative")
	}
	if i.EstimatedValue != nil && *i.EstimatedValue < 0 {
		problems = append(problems, "estimated value cannot be negative")
	}
	if i.DateAcquired != "" {
		if _, err := time.Parse(DateLayout, i.DateAcquired); err != nil {
			problems = append(problems, "date acquired must be YYYY-MM-DD")
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// ApplyDefaults fills the category and action of a new item when omitted.
func (i *Item) ApplyDefaults() {
	if i.Category == "" {
		i.Category = CategoryOther
	}
	if i.Action == "" {
		i.Action = ActionKeep
	}
}
