// Copyright 2024 The Gitea Authors. All rights reserved.
// SPDX-License-Identifier: MIT

package optional

// Option holds either exactly one value or nothing.
// A present value may itself be a zero value, which is what distinguishes
// "stored false" from "not stored".
type Option[T any] []T

func None[T any]() Option[T] {
	return nil
}

func Some[T any](v T) Option[T] {
	return Option[T]{v}
}

func FromPtr[T any](v *T) Option[T] {
	if v == nil {
		return None[T]()
	}
	return Some(*v)
}

// FromMap looks key up in m and returns Some only when the key exists.
func FromMap[K comparable, V any](m map[K]V, key K) Option[V] {
	if v, ok := m[key]; ok {
		return Some(v)
	}
	return None[V]()
}

func (o Option[T]) Has() bool {
	return o != nil
}

func (o Option[T]) Value() T {
	var zero T
	return o.ValueOrDefault(zero)
}

func (o Option[T]) ValueOrDefault(v T) T {
	if o.Has() {
		return o[0]
	}
	return v
}

// Get returns the value and whether it was present, comma-ok style.
func (o Option[T]) Get() (T, bool) {
	return o.Value(), o.Has()
}
