// Package sets provides a small generic hash set.
package sets

import (
	"cmp"
	"maps"
	"slices"
)

// Set is a hash set for comparable keys.
// Usage: s := sets.New("testdata", "vendor"); if s.Has(name) {...}
type Set[T comparable] map[T]struct{}

// New creates a set pre-populated with the provided values.
func New[T comparable](vals ...T) Set[T] {
	s := make(Set[T], len(vals))
	for _, v := range vals {
		s[v] = struct{}{}
	}
	return s
}

// Add inserts value into the set.
func (s Set[T]) Add(v T) { s[v] = struct{}{} }

// Has returns true if v is present.
func (s Set[T]) Has(v T) bool {
	_, ok := s[v]
	return ok
}

// Sorted returns the members in ascending order. The result is never nil.
func Sorted[T cmp.Ordered](s Set[T]) []T {
	out := slices.Sorted(maps.Keys(s))
	if out == nil {
		out = []T{}
	}
	return out
}
