package dto

import (
	"bytes"
	"encoding/json"
	"errors"
)

// Field records whether a JSON key was sent, whether it was null, and its decoded value.
// A value of the wrong JSON type sets Err instead of failing the whole body,
// so validation can report every bad field at once.
type Field[T any] struct {
	Present bool
	Null    bool
	Value   T
	Err     error
}

// UnmarshalJSON starts from a zero Field, so a repeated key is judged on its last value only.
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	*f = Field[T]{Present: true}
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		f.Null = true
		return nil
	}
	if err := json.Unmarshal(data, &f.Value); err != nil {
		f.Err = err
	}
	return nil
}

var errNotBoolean = errors.New("not a boolean")

// Flag is a boolean that also accepts 1/0 and "1"/"0"/"true"/"false".
type Flag bool

func (f *Flag) UnmarshalJSON(data []byte) error {
	switch string(bytes.TrimSpace(data)) {
	case "true", "1", `"1"`, `"true"`:
		*f = true
	case "false", "0", `"0"`, `"false"`:
		*f = false
	default:
		return errNotBoolean
	}
	return nil
}
