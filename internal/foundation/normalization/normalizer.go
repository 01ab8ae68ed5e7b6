// Package normalization maps loosely written configuration strings onto typed enums.
package normalization

import (
	"fmt"
	"sort"
	"strings"
)

// Normalizer converts user-supplied strings (any case, stray whitespace) to enum values.
type Normalizer[T comparable] struct {
	values       map[string]T
	defaultValue T
	keys         []string
}

// NewNormalizer creates a normalizer from a map of accepted spellings.
func NewNormalizer[T comparable](values map[string]T, defaultValue T) *Normalizer[T] {
	normalized := make(map[string]T, len(values))
	keys := make([]string, 0, len(values))
	for k, v := range values {
		key := clean(k)
		normalized[key] = v
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return &Normalizer[T]{values: normalized, defaultValue: defaultValue, keys: keys}
}

// Normalize returns the matching value, or the default for unknown input.
func (n *Normalizer[T]) Normalize(raw string) T {
	if v, ok := n.values[clean(raw)]; ok {
		return v
	}
	return n.defaultValue
}

// NormalizeWithError is Normalize but reports unknown input.
func (n *Normalizer[T]) NormalizeWithError(raw string) (T, error) {
	if v, ok := n.values[clean(raw)]; ok {
		return v, nil
	}
	var zero T
	return zero, fmt.Errorf("invalid value %q, valid options: %v", raw, n.keys)
}

// ValidKeys returns the accepted spellings, sorted.
func (n *Normalizer[T]) ValidKeys() []string {
	out := make([]string, len(n.keys))
	copy(out, n.keys)
	return out
}

func clean(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
