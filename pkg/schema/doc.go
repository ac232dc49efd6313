// Package schema validates and stores the declarative search schema of each
// record type: which columns are searchable, by what matching strategy,
// which aliases substitute for raw column names, the default ordering, and
// which executor finder runs the compiled query.
//
// A schema is registered once, frozen, and shared read-only by every search
// on its record type:
//
//	registry := schema.NewRegistry(exec)
//	err := registry.Register(ctx, "users", schema.Definition{
//		Columns: map[string]schema.Strategy{
//			"name": schema.MatchPartial,
//			"age":  schema.OpenRange,
//		},
//		DefaultOrder: []string{"name ASC"},
//	})
//
// Registration fails with InvalidStrategyError when a strategy is outside
// the closed five-value set, and with UnknownColumnError when a column key
// is neither a real column (per the ColumnChecker collaborator) nor a
// declared alias. A failed registration leaves the type unregistered.
//
// # Related Packages
//
//   - pkg/search: compiles criteria against a registered schema
//   - pkg/executor: satisfies ColumnChecker and runs compiled queries
package schema
