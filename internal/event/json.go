package event

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/telecontrol-mt/calendario/internal/textfmt"
)

var jsonNull = []byte("null")

// ID is an opaque record identity. The backend sends numeric ids; an empty
// ID is a record that has not been created yet.
type ID string

// String implements fmt.Stringer.
func (id ID) String() string { return string(id) }

// MarshalJSON writes all-digit ids as numbers, empty ids as null and
// anything else as a string.
func (id ID) MarshalJSON() ([]byte, error) {
	if id == "" {
		return jsonNull, nil
	}
	if isDigits(string(id)) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// UnmarshalJSON accepts numbers, strings and null.
func (id *ID) UnmarshalJSON(data []byte) error {
	s, err := scalarText(data)
	if err != nil {
		return fmt.Errorf("decoding id: %w", err)
	}
	*id = ID(s)
	return nil
}

func isDigits(s string) bool {
	if s == "" || (len(s) > 1 && s[0] == '0') {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Text is a string column that the backend may send as a number, a
// boolean or null.
type Text string

// String implements fmt.Stringer.
func (t Text) String() string { return string(t) }

// Trim returns the value without surrounding space.
func (t Text) Trim() string { return strings.TrimSpace(string(t)) }

// UnmarshalJSON accepts any JSON scalar.
func (t *Text) UnmarshalJSON(data []byte) error {
	s, err := scalarText(data)
	if err != nil {
		return err
	}
	*t = Text(s)
	return nil
}

// Flag is a boolean column stored as 0/1, true/false or text.
type Flag bool

// UnmarshalJSON accepts booleans, numbers (non-zero is true), strings
// (si, sí, true, 1, x are true) and null.
func (f *Flag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, jsonNull):
		*f = false
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = Flag(textfmt.IsTruthy(s))
	case bytes.Equal(data, []byte("true")):
		*f = true
	case bytes.Equal(data, []byte("false")):
		*f = false
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("decoding flag %s: %w", data, err)
		}
		v, err := n.Float64()
		if err != nil {
			return fmt.Errorf("decoding flag %s: %w", data, err)
		}
		*f = v != 0
	}
	return nil
}

// scalarText renders a JSON scalar as text; null becomes "".
func scalarText(data []byte) (string, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, jsonNull) {
		return "", nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return "", err
		}
		return s, nil
	case '{', '[':
		return "", fmt.Errorf("unexpected JSON value %s", data)
	default:
		return string(data), nil
	}
}
