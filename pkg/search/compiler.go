package search

import (
	"fmt"
	"strings"

	"github.com/platinummonkey/recordsearch/pkg/schema"
)

// Condition is a compiled boolean expression with positional placeholders
// and the matching ordered parameter list. The parameter list length always
// equals the placeholder count for scalar strategies; an Including clause
// contributes one placeholder carrying a list value that the executor
// expands positionally.
type Condition struct {
	Expr   string
	Params []any
}

// Empty reports whether the condition matches all records.
func (c *Condition) Empty() bool {
	return c.Expr == ""
}

// RawCondition is caller-supplied expression text with parameters, for
// logic the declared strategies cannot express. The expression is trusted;
// only its parameters travel as placeholders.
type RawCondition struct {
	Expr   string
	Params []any
}

// conditionBuilder accumulates (clause, parameters) pairs and joins them
// deterministically. Clauses are parenthesized individually and combined
// with AND.
type conditionBuilder struct {
	clauses []string
	params  []any
}

func (b *conditionBuilder) add(clause string, params ...any) {
	b.clauses = append(b.clauses, "("+clause+")")
	b.params = append(b.params, params...)
}

func (b *conditionBuilder) build() *Condition {
	return &Condition{
		Expr:   strings.Join(b.clauses, " AND "),
		Params: b.params,
	}
}

// Compile turns criteria into a parameterized condition expression against
// a registered schema, appending the raw condition (if any) after all
// strategy-derived clauses.
//
// Criteria are normalized first: <name>_from / <name>_to keys fold into
// [min, max] pairs. Every resulting key must be declared in the schema.
// Blank values contribute no clause. Clause order follows criteria
// insertion order, with the raw condition last.
func Compile(sch *schema.Schema, criteria *Criteria, raw *RawCondition) (*Condition, error) {
	b := &conditionBuilder{}

	if criteria != nil {
		for _, it := range criteria.normalize().items {
			strat, ok := sch.Strategy(it.key)
			if !ok {
				return nil, &UnknownSearchColumnError{TypeID: sch.TypeID(), Column: it.key}
			}
			if err := compileEntry(b, sch.Target(it.key), strat, it.key, it.value); err != nil {
				return nil, err
			}
		}
	}

	if raw != nil && strings.TrimSpace(raw.Expr) != "" {
		b.add(raw.Expr, raw.Params...)
	}

	return b.build(), nil
}

func compileEntry(b *conditionBuilder, target string, strat schema.Strategy, column string, value any) error {
	if isBlank(value) {
		return nil
	}

	switch strat {
	case schema.MatchFull:
		b.add(fmt.Sprintf("(%s) = ?", target), value)

	case schema.MatchPartial:
		// The caller value is used verbatim inside the wildcards.
		b.add(fmt.Sprintf("(%s) LIKE ?", target), fmt.Sprintf("%%%v%%", value))

	case schema.ClosedRange:
		min, max, ok := rangePair(value)
		if !ok {
			return &InvalidRangeValueError{Column: column, Value: value}
		}
		minBlank, maxBlank := isBlank(min), isBlank(max)
		switch {
		case minBlank && maxBlank:
			return nil
		case minBlank:
			// A single supplied bound closes the range on itself: an
			// exact two-sided match.
			min = max
		case maxBlank:
			max = min
		}
		b.add(fmt.Sprintf("? <= (%s)", target), min)
		b.add(fmt.Sprintf("(%s) <= ?", target), max)

	case schema.OpenRange:
		min, max, ok := rangePair(value)
		if !ok {
			return &InvalidRangeValueError{Column: column, Value: value}
		}
		if !isBlank(min) {
			b.add(fmt.Sprintf("? <= (%s)", target), min)
		}
		if !isBlank(max) {
			b.add(fmt.Sprintf("(%s) <= ?", target), max)
		}

	case schema.Including:
		b.add(fmt.Sprintf("(%s) IN (?)", target), value)
	}

	return nil
}
