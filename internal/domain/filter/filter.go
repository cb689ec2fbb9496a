// Package filter models the structured payload filter consumed by the
// vector index. Conditions compose with logical AND, in insertion order.
package filter

import "fmt"

// Condition is a single filter clause: an exact tag match or an any-of
// set match on a payload key.
type Condition struct {
	key   string
	match string
	anyOf []string
}

// NewMatch creates an exact-value condition.
func NewMatch(key, match string) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	if match == "" {
		return Condition{}, fmt.Errorf("match value is required for key %q", key)
	}
	return Condition{key: key, match: match}, nil
}

// NewMatchAny creates an any-of-set condition.
func NewMatchAny(key string, values []string) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	if len(values) == 0 {
		return Condition{}, fmt.Errorf("at least one value is required for key %q", key)
	}
	return Condition{key: key, anyOf: values}, nil
}

// Key returns the payload key.
func (c Condition) Key() string { return c.key }

// Match returns the exact match value.
func (c Condition) Match() string { return c.match }

// AnyOf returns the any-of value set.
func (c Condition) AnyOf() []string { return c.anyOf }

// IsAny reports whether this is an any-of-set condition.
func (c Condition) IsAny() bool { return len(c.anyOf) > 0 }

// Filter is an ordered AND set of conditions. The zero value is a valid
// empty filter; IsEmpty distinguishes it from an applied filter, and
// callers skip filter application entirely when it is empty.
type Filter struct {
	conditions []Condition
}

// New creates a filter from conditions.
func New(conditions ...Condition) Filter {
	return Filter{conditions: conditions}
}

// Conditions returns the conditions in insertion order.
func (f Filter) Conditions() []Condition { return f.conditions }

// IsEmpty reports whether the filter has no conditions.
func (f Filter) IsEmpty() bool { return len(f.conditions) == 0 }
