package models

import (
	"bytes"
	"encoding/json"
)

// Optional holds a value together with whether it was supplied at all.
// A zero Optional is absent; Some(0) or Some("") are present.
type Optional[T any] struct {
	value T
	set   bool
}

// Some returns a present Optional holding v
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, set: true}
}

// None returns an absent Optional
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// IsSet reports whether a value was supplied
func (o Optional[T]) IsSet() bool {
	return o.set
}

// Get returns the value and whether it was supplied
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.set
}

// OrElse returns the value if present, fallback otherwise
func (o Optional[T]) OrElse(fallback T) T {
	if o.set {
		return o.value
	}
	return fallback
}

// UnmarshalJSON marks the field present when its key carries a non-null value.
// Missing keys never reach this method, so they stay absent.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = Optional[T]{}
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}

// MarshalJSON renders absent values as null
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.set {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}
