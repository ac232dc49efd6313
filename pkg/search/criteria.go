package search

import (
	"reflect"
	"strings"
)

const (
	fromSuffix = "_from"
	toSuffix   = "_to"
)

// Criteria is an insertion-ordered set of request column / value pairs.
// Order matters: compiled placeholders line up with parameters in the order
// criteria were supplied, so the same criteria always compile to the same
// expression.
type Criteria struct {
	items []criterion
}

type criterion struct {
	key   string
	value any
}

// NewCriteria creates an empty criteria set.
func NewCriteria() *Criteria {
	return &Criteria{}
}

// Set adds a criterion, replacing the value in place if the key is already
// present. Returns the criteria for chaining.
func (c *Criteria) Set(key string, value any) *Criteria {
	for i := range c.items {
		if c.items[i].key == key {
			c.items[i].value = value
			return c
		}
	}
	c.items = append(c.items, criterion{key: key, value: value})
	return c
}

// Get returns the value stored under key.
func (c *Criteria) Get(key string) (any, bool) {
	for _, it := range c.items {
		if it.key == key {
			return it.value, true
		}
	}
	return nil, false
}

// Len returns the number of criteria.
func (c *Criteria) Len() int {
	if c == nil {
		return 0
	}
	return len(c.items)
}

// Keys returns the criteria keys in insertion order.
func (c *Criteria) Keys() []string {
	keys := make([]string, 0, len(c.items))
	for _, it := range c.items {
		keys = append(keys, it.key)
	}
	return keys
}

// normalize folds <name>_from / <name>_to entries into a single two-element
// [min, max] entry keyed by <name>. The sides may arrive independently, in
// either order, or alone; a missing side stays nil. The folded entry keeps
// the position of the first sighting of the base name. Non-suffixed keys
// pass through unchanged.
func (c *Criteria) normalize() *Criteria {
	out := NewCriteria()
	pairs := make(map[string][]any)
	for _, it := range c.items {
		base, side, ok := splitRangeKey(it.key)
		if !ok {
			out.Set(it.key, it.value)
			continue
		}
		pair, seen := pairs[base]
		if !seen {
			pair = make([]any, 2)
			pairs[base] = pair
			out.Set(base, pair)
		}
		pair[side] = it.value
	}
	return out
}

// splitRangeKey recognizes boundary-suffixed request names. side 0 is the
// lower bound, side 1 the upper.
func splitRangeKey(key string) (base string, side int, ok bool) {
	if strings.HasSuffix(key, fromSuffix) && len(key) > len(fromSuffix) {
		return strings.TrimSuffix(key, fromSuffix), 0, true
	}
	if strings.HasSuffix(key, toSuffix) && len(key) > len(toSuffix) {
		return strings.TrimSuffix(key, toSuffix), 1, true
	}
	return "", 0, false
}

// isBlank reports whether a criteria value contributes no condition clause:
// nil, empty or whitespace-only strings, zero-length collections, and nil
// pointers. Numeric zero and false are values, not blanks.
func isBlank(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len() == 0
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return true
		}
		return isBlank(rv.Elem().Interface())
	}
	return false
}

// rangePair extracts the [min, max] sides of a scope value. Any slice or
// array of length two qualifies.
func rangePair(v any) (min, max any, ok bool) {
	if p, isPair := v.([]any); isPair {
		if len(p) != 2 {
			return nil, nil, false
		}
		return p[0], p[1], true
	}
	rv := reflect.ValueOf(v)
	if (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array) && rv.Len() == 2 {
		return rv.Index(0).Interface(), rv.Index(1).Interface(), true
	}
	return nil, nil, false
}
