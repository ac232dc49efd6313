package schema

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// ColumnChecker answers whether a column exists on a record type. It is the
// only collaborator registration depends on; the SQL executor satisfies it.
type ColumnChecker interface {
	HasColumn(ctx context.Context, typeID, column string) (bool, error)
}

// Registry maps record-type identifiers to their frozen search schemas.
// It is written during static registration and read-only afterwards; the
// mutex guards against registration racing with early search traffic.
type Registry struct {
	mu      sync.RWMutex
	checker ColumnChecker
	schemas map[string]*Schema
}

// NewRegistry creates a registry validating registrations against checker.
func NewRegistry(checker ColumnChecker) *Registry {
	return &Registry{
		checker: checker,
		schemas: make(map[string]*Schema),
	}
}

// Register validates def and stores the frozen schema for typeID.
//
// Every strategy must be one of the five known values and every column key
// must resolve to a declared alias or a real column on the record type.
// Registering an already-registered type is a no-op that keeps the first
// schema and returns nil; it never re-validates.
func (r *Registry) Register(ctx context.Context, typeID string, def Definition) error {
	if r.Contains(typeID) {
		return nil
	}

	// Deterministic validation order so the first failing column is stable.
	columns := make([]string, 0, len(def.Columns))
	for col := range def.Columns {
		columns = append(columns, col)
	}
	sort.Strings(columns)

	for _, col := range columns {
		strat := def.Columns[col]
		if !strat.Valid() {
			return &InvalidStrategyError{TypeID: typeID, Column: col, Strategy: strat}
		}
		if _, aliased := def.Aliases[col]; aliased {
			continue
		}
		exists, err := r.checker.HasColumn(ctx, typeID, col)
		if err != nil {
			return fmt.Errorf("failed to check column %q on %q: %w", col, typeID, err)
		}
		if !exists {
			return &UnknownColumnError{TypeID: typeID, Column: col}
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.schemas[typeID]; exists {
		return nil
	}
	r.schemas[typeID] = newSchema(typeID, def)
	return nil
}

// Lookup returns the frozen schema for typeID.
func (r *Registry) Lookup(typeID string) (*Schema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.schemas[typeID]
	return s, ok
}

// Contains reports whether typeID has been search-enabled.
func (r *Registry) Contains(typeID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.schemas[typeID]
	return ok
}

// Types returns the registered record-type identifiers, sorted.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]string, 0, len(r.schemas))
	for typeID := range r.schemas {
		types = append(types, typeID)
	}
	sort.Strings(types)
	return types
}
