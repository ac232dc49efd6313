package schema

import "fmt"

// InvalidStrategyError represents a registration attempt with a strategy
// value outside the closed set.
type InvalidStrategyError struct {
	TypeID   string
	Column   string
	Strategy Strategy
}

func (e *InvalidStrategyError) Error() string {
	return fmt.Sprintf("invalid search strategy %d for column %q on %q", int(e.Strategy), e.Column, e.TypeID)
}

// IsInvalidStrategy checks if an error is an invalid strategy error
func IsInvalidStrategy(err error) bool {
	_, ok := err.(*InvalidStrategyError)
	return ok
}

// UnknownColumnError represents a registration attempt where a strategies
// key is neither a real column on the record type nor a declared alias.
type UnknownColumnError struct {
	TypeID string
	Column string
}

func (e *UnknownColumnError) Error() string {
	return fmt.Sprintf("column %q is neither a column of %q nor a declared alias", e.Column, e.TypeID)
}

// IsUnknownColumn checks if an error is an unknown column error
func IsUnknownColumn(err error) bool {
	_, ok := err.(*UnknownColumnError)
	return ok
}
