// Package optional distinguishes a field that was not sent from one that was
// sent as null or sent with a value.
package optional

import (
	"bytes"
	"encoding/json"
)

// Optional holds a value together with whether it was provided.
type Optional[T any] struct {
	set   bool
	null  bool
	value T
}

// Of returns a provided Optional holding v.
func Of[T any](v T) Optional[T] {
	return Optional[T]{set: true, value: v}
}

// Null returns a provided Optional that carries an explicit null.
func Null[T any]() Optional[T] {
	return Optional[T]{set: true, null: true}
}

// IsSet reports whether the field appeared in the input at all.
func (o Optional[T]) IsSet() bool { return o.set }

// IsZero lets `omitzero` drop fields that were never provided.
func (o Optional[T]) IsZero() bool { return !o.set }

// IsNull reports whether the field was sent as an explicit null.
func (o Optional[T]) IsNull() bool { return o.set && o.null }

// Get returns the value and true when a non-null value was provided.
func (o Optional[T]) Get() (T, bool) {
	if !o.set || o.null {
		var zero T
		return zero, false
	}
	return o.value, true
}

// UnmarshalJSON is only invoked by encoding/json when the key is present.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.null = true
		var zero T
		o.value = zero
		return nil
	}
	o.null = false
	return json.Unmarshal(data, &o.value)
}

// MarshalJSON writes null for absent or null values.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if v, ok := o.Get(); ok {
		return json.Marshal(v)
	}
	return []byte("null"), nil
}
