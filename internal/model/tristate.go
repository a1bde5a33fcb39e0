package model

import (
	"encoding/json"
	"fmt"
)

// TriState is a boolean that may also be unknown. The zero value is Unknown.
type TriState int

const (
	Unknown TriState = iota
	True
	False
)

// ParseTriState maps "true" and "false" to True and False. Every other
// string, including the empty one, is Unknown.
func ParseTriState(s string) TriState {
	switch s {
	case "true":
		return True
	case "false":
		return False
	default:
		return Unknown
	}
}

// TriStateOf converts a plain bool.
func TriStateOf(b bool) TriState {
	if b {
		return True
	}
	return False
}

// TriStateFromPtr converts a nullable bool; nil is Unknown.
func TriStateFromPtr(b *bool) TriState {
	if b == nil {
		return Unknown
	}
	return TriStateOf(*b)
}

// Ptr returns the state as a nullable bool.
func (t TriState) Ptr() *bool {
	switch t {
	case True:
		v := true
		return &v
	case False:
		v := false
		return &v
	default:
		return nil
	}
}

// Known reports whether the state is True or False.
func (t TriState) Known() bool {
	return t == True || t == False
}

// String returns the canonical form: "true", "false" or "unknown".
func (t TriState) String() string {
	switch t {
	case True:
		return "true"
	case False:
		return "false"
	default:
		return "unknown"
	}
}

// Label returns the human readable form.
func (t TriState) Label() string {
	switch t {
	case True:
		return "Yes"
	case False:
		return "No"
	default:
		return "Unknown"
	}
}

func (t TriState) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Ptr())
}

func (t *TriState) UnmarshalJSON(data []byte) error {
	var b *bool
	if err := json.Unmarshal(data, &b); err != nil {
		return fmt.Errorf("decoding tri-state: %w", err)
	}
	*t = TriStateFromPtr(b)
	return nil
}

func (t TriState) MarshalYAML() (any, error) {
	return t.Ptr(), nil
}
