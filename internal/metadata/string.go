package metadata

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// String is an on-chain metadata value that is either a single string or an
// array of strings. Ledger metadata splits long strings into arrays, so both
// shapes are accepted for the same field.
type String []string

// UnmarshalJSON accepts a JSON string, an array of strings or null
func (s *String) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = nil
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var single string
		if err := json.Unmarshal(data, &single); err != nil {
			return err
		}
		*s = String{single}
		return nil
	}

	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("expected string or array of strings: %w", err)
	}
	*s = String(many)
	return nil
}

// First returns the canonical representative of the value, or "" when empty
func (s String) First() string {
	if len(s) == 0 {
		return ""
	}
	return s[0]
}

// Normalize converts a string-or-array metadata value into a single string.
// Absent or empty values normalize to nil; arrays yield their first element.
func Normalize(v *String) *string {
	if v == nil || len(*v) == 0 {
		return nil
	}
	first := (*v)[0]
	return &first
}
