package executor

import "context"

// Finder method identifiers a schema may name. The executor owns their
// interpretation; the engine passes them through verbatim.
const (
	FinderAll   = "all"
	FinderFirst = "first"
)

// Record is one matched row, keyed by column name.
type Record map[string]any

// Query is the compiled unit of work the search engine hands to an
// executor: a condition expression with positional placeholders, the
// matching ordered parameter list, and the directives resolved from the
// registered schema.
type Query struct {
	// Table is the record-type identifier the schema was registered under.
	Table string

	// Conditions is the compiled boolean expression. Empty matches all
	// records.
	Conditions string

	// Params holds one value per placeholder, in placeholder order. A
	// slice value expands positionally into an IN list.
	Params []any

	// Order is the resolved order expression. Empty means executor default.
	Order string

	// EagerLoad names relations to load alongside the matched records.
	EagerLoad []string

	// Finder selects which executor operation runs the query.
	Finder string

	// Extra carries validated caller options (pagination, locking) the
	// engine forwards without interpreting.
	Extra map[string]any
}

// Executor is the record store the search engine delegates to. HasColumn
// serves registration-time schema validation; Find executes a compiled
// query and returns the matching records.
type Executor interface {
	HasColumn(ctx context.Context, table, column string) (bool, error)
	Find(ctx context.Context, q Query) ([]Record, error)
}
