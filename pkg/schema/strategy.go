package schema

import "fmt"

// Strategy identifies how a declared search column is matched when a
// criteria value for it is compiled into a condition clause.
type Strategy int

const (
	// MatchFull compiles to an exact equality test.
	MatchFull Strategy = iota
	// MatchPartial compiles to a LIKE test with the value wrapped in
	// %...% wildcards.
	MatchPartial
	// ClosedRange compiles to a two-sided bound. A single supplied side
	// is used for both bounds, which makes it an exact match.
	ClosedRange
	// OpenRange compiles each side of the bound independently.
	OpenRange
	// Including compiles to an IN test over a list of values.
	Including
)

var strategyNames = []string{
	"match_full",
	"match_partial",
	"closed_range",
	"open_range",
	"including",
}

func (s Strategy) String() string {
	if !s.Valid() {
		return fmt.Sprintf("strategy(%d)", int(s))
	}
	return strategyNames[s]
}

// Valid reports whether s is one of the five known strategies. The set is
// closed; there are no custom strategies.
func (s Strategy) Valid() bool {
	return s >= MatchFull && s <= Including
}

// Ranged reports whether s consumes a [min, max] pair and therefore exposes
// <column>_from / <column>_to request names.
func (s Strategy) Ranged() bool {
	return s == ClosedRange || s == OpenRange
}

// ParseStrategy converts a schema-file token into a Strategy.
func ParseStrategy(token string) (Strategy, error) {
	for i, name := range strategyNames {
		if name == token {
			return Strategy(i), nil
		}
	}
	return 0, fmt.Errorf("unknown search strategy %q", token)
}
