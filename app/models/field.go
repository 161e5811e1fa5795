package models

import (
	"bytes"
	"encoding/json"
)

// Field is an update value with three states: not supplied, explicitly null,
// or set to a value. Merge updates only touch supplied fields.
type Field[T any] struct {
	Set   bool
	Valid bool
	Value T
}

// Some returns a supplied, non-null field.
func Some[T any](v T) Field[T] {
	return Field[T]{Set: true, Valid: true, Value: v}
}

// Null returns a supplied, explicitly null field.
func Null[T any]() Field[T] {
	return Field[T]{Set: true}
}

// Ptr returns the value as a pointer, nil when null or unset.
func (f Field[T]) Ptr() *T {
	if !f.Valid {
		return nil
	}
	v := f.Value
	return &v
}

// Apply overwrites *dst when the field was supplied.
func (f Field[T]) Apply(dst **T) {
	if f.Set {
		*dst = f.Ptr()
	}
}

// Assign overwrites *dst when the field was supplied. An explicit null assigns
// the zero value.
func (f Field[T]) Assign(dst *T) {
	if f.Set {
		*dst = f.Value
	}
}

// UnmarshalJSON marks the field as supplied. encoding/json only calls it when
// the key is present, so absent keys stay unset.
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		f.Valid = false
		var zero T
		f.Value = zero
		return nil
	}
	if err := json.Unmarshal(data, &f.Value); err != nil {
		return err
	}
	f.Valid = true
	return nil
}
