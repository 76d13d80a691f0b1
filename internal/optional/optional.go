// Package optional distinguishes "key absent" from "key set to null" in JSON
// patch bodies.
package optional

import (
	"bytes"
	"encoding/json"
)

// Value is a patch field. Set reports whether the key was present in the
// body; Ptr is nil when the key was present with a null value.
type Value[T any] struct {
	Set bool
	Ptr *T
}

// Of returns a set, non-null value.
func Of[T any](v T) Value[T] {
	return Value[T]{Set: true, Ptr: &v}
}

// Null returns a value that was explicitly set to null.
func Null[T any]() Value[T] {
	return Value[T]{Set: true}
}

func (v *Value[T]) UnmarshalJSON(b []byte) error {
	v.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		v.Ptr = nil
		return nil
	}
	var t T
	if err := json.Unmarshal(b, &t); err != nil {
		return err
	}
	v.Ptr = &t
	return nil
}

func (v Value[T]) MarshalJSON() ([]byte, error) {
	if v.Ptr == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*v.Ptr)
}

// IsNull reports whether the key was present with a null value.
func (v Value[T]) IsNull() bool {
	return v.Set && v.Ptr == nil
}
