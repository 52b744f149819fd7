// Package collections provides generic slice and map helpers.
package collections

import (
	"maps"
	"reflect"
)

// Unique returns the distinct elements of s in first-seen order.
func Unique[T comparable](s []T) []T {
	return UniqueBy(s, func(v T) T { return v })
}

// UniqueBy keeps the first element for every distinct key.
func UniqueBy[T any, K comparable](s []T, key func(T) K) []T {
	seen := make(map[K]struct{}, len(s))
	out := make([]T, 0, len(s))
	for _, v := range s {
		k := key(v)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Chunk splits s into consecutive slices of at most size elements.
// It panics if size is not positive.
func Chunk[T any](s []T, size int) [][]T {
	if size <= 0 {
		panic("collections: chunk size must be positive")
	}
	out := make([][]T, 0, (len(s)+size-1)/size)
	for start := 0; start < len(s); start += size {
		end := min(start+size, len(s))
		out = append(out, s[start:end:end])
	}
	return out
}

// GroupBy buckets s by key, preserving element order within each bucket.
func GroupBy[T any, K comparable](s []T, key func(T) K) map[K][]T {
	out := make(map[K][]T)
	for _, v := range s {
		k := key(v)
		out[k] = append(out[k], v)
	}
	return out
}

// Compact drops zero values.
func Compact[T comparable](s []T) []T {
	var zero T
	out := make([]T, 0, len(s))
	for _, v := range s {
		if v != zero {
			out = append(out, v)
		}
	}
	return out
}

// Pick returns a copy of m restricted to keys. Missing keys are ignored.
func Pick[K comparable, V any](m map[K]V, keys ...K) map[K]V {
	out := make(map[K]V, len(keys))
	for _, k := range keys {
		if v, ok := m[k]; ok {
			out[k] = v
		}
	}
	return out
}

// Omit returns a copy of m without keys.
func Omit[K comparable, V any](m map[K]V, keys ...K) map[K]V {
	out := maps.Clone(m)
	if out == nil {
		out = map[K]V{}
	}
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

// DeepEqual reports structural equality. Nil and empty slices and maps are
// treated as equal.
func DeepEqual(a, b any) bool {
	if IsEmpty(a) && IsEmpty(b) {
		return kindOf(a) == kindOf(b)
	}
	return reflect.DeepEqual(a, b)
}

// IsEmpty reports whether v is nil, a zero value, or an empty string, slice,
// map, array or channel.
func IsEmpty(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String, reflect.Slice, reflect.Map, reflect.Array, reflect.Chan:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	default:
		return rv.IsZero()
	}
}

func kindOf(v any) reflect.Kind {
	if v == nil {
		return reflect.Invalid
	}
	return reflect.TypeOf(v).Kind()
}
