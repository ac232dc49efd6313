// Package search compiles user-supplied criteria into a parameterized
// condition expression and dispatches it to an executor.
//
// Criteria are an ordered key/value collection. Before compilation the
// keys are normalized: a pair of "<column>_from" and "<column>_to" entries
// folds into a single two-element range value under the bare column name,
// and values already shaped as two-element lists pass through untouched.
// Each normalized entry then compiles under the strategy its schema
// declares for the column, producing one parenthesized clause with a "?"
// placeholder per bound value. Clauses join with AND; blank values
// contribute nothing.
//
//	criteria := search.NewCriteria().
//		Set("name", "Tom").
//		Set("age_from", 22)
//	records, err := svc.Search(ctx, "users", criteria, nil)
//	// WHERE ((name) LIKE ?) AND (? <= (age))   params: ["%Tom%", 22]
//
// A raw condition supplied through Options merges after every compiled
// clause, wrapped in its own parentheses. Failures carry typed errors:
// ArgumentConflictError for reserved executor options, NotRegisteredError
// for unknown record types, UnknownSearchColumnError for keys outside the
// schema, and InvalidRangeValueError for malformed range values.
//
// # Related Packages
//
//   - pkg/schema: declares and validates the per-type search schema
//   - pkg/executor: runs the compiled query and loads relations
package search
