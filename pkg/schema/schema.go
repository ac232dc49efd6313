package schema

import "sort"

// Default finder method invoked by the executor when a definition does not
// name one.
const DefaultFinder = "all"

// Definition is the caller-supplied registration input for one record type.
type Definition struct {
	// Columns maps logical column names (real columns or alias names) to
	// their matching strategy.
	Columns map[string]Strategy `yaml:"columns"`

	// DefaultOrder is the ordered sequence of order-by tokens applied when
	// a search does not override ordering.
	DefaultOrder []string `yaml:"order"`

	// EagerLoad names relations the executor should load alongside the
	// matched records. Passed through verbatim.
	EagerLoad []string `yaml:"eager_load"`

	// Aliases maps logical column names to raw target expressions: a real
	// column, a computed expression, or a boolean expression over other
	// columns.
	Aliases map[string]string `yaml:"aliases"`

	// Finder identifies which executor operation runs the compiled query.
	// Empty means DefaultFinder.
	Finder string `yaml:"finder"`
}

// Schema is the frozen search declaration for one record type. It is built
// exactly once by Registry.Register and shared read-only by every
// subsequent search on that type.
type Schema struct {
	typeID       string
	columns      map[string]Strategy
	defaultOrder []string
	eagerLoad    []string
	aliases      map[string]string
	finder       string
}

func newSchema(typeID string, def Definition) *Schema {
	s := &Schema{
		typeID:       typeID,
		columns:      make(map[string]Strategy, len(def.Columns)),
		defaultOrder: append([]string(nil), def.DefaultOrder...),
		eagerLoad:    append([]string(nil), def.EagerLoad...),
		aliases:      make(map[string]string, len(def.Aliases)),
		finder:       def.Finder,
	}
	for col, strat := range def.Columns {
		s.columns[col] = strat
	}
	for name, expr := range def.Aliases {
		s.aliases[name] = expr
	}
	if s.finder == "" {
		s.finder = DefaultFinder
	}
	return s
}

// TypeID returns the record-type identifier the schema was registered under.
func (s *Schema) TypeID() string {
	return s.typeID
}

// Strategy returns the matching strategy declared for a logical column.
func (s *Schema) Strategy(column string) (Strategy, bool) {
	strat, ok := s.columns[column]
	return strat, ok
}

// Target resolves the expression a logical column compiles against: the
// declared alias if one exists, otherwise the raw column name. Never both.
func (s *Schema) Target(column string) string {
	if expr, ok := s.aliases[column]; ok {
		return expr
	}
	return column
}

// DefaultOrder returns a copy of the registered order-by tokens.
func (s *Schema) DefaultOrder() []string {
	return append([]string(nil), s.defaultOrder...)
}

// EagerLoad returns a copy of the registered eager-load directive.
func (s *Schema) EagerLoad() []string {
	return append([]string(nil), s.eagerLoad...)
}

// Finder returns the executor operation identifier.
func (s *Schema) Finder() string {
	return s.finder
}

// Columns returns a copy of the column-to-strategy map.
func (s *Schema) Columns() map[string]Strategy {
	columns := make(map[string]Strategy, len(s.columns))
	for col, strat := range s.columns {
		columns[col] = strat
	}
	return columns
}

// SearchColumnNames returns the externally visible request column names:
// every ranged column k expands to k_from and k_to, every other column is
// exposed unchanged. Sorted for stable output.
func (s *Schema) SearchColumnNames() []string {
	names := make([]string, 0, len(s.columns))
	for col, strat := range s.columns {
		if strat.Ranged() {
			names = append(names, col+"_from", col+"_to")
			continue
		}
		names = append(names, col)
	}
	sort.Strings(names)
	return names
}
