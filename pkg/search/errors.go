package search

import "fmt"

// ArgumentConflictError represents a passthrough executor option using a
// key this operation owns (conditions or eager loading).
type ArgumentConflictError struct {
	Key string
}

func (e *ArgumentConflictError) Error() string {
	return fmt.Sprintf("executor option %q conflicts with compiled search options", e.Key)
}

// IsArgumentConflict checks if an error is an argument conflict error
func IsArgumentConflict(err error) bool {
	_, ok := err.(*ArgumentConflictError)
	return ok
}

// UnknownSearchColumnError represents a criteria key that is not declared
// in the registered schema.
type UnknownSearchColumnError struct {
	TypeID string
	Column string
}

func (e *UnknownSearchColumnError) Error() string {
	return fmt.Sprintf("column %q is not a search column of %q", e.Column, e.TypeID)
}

// IsUnknownSearchColumn checks if an error is an unknown search column error
func IsUnknownSearchColumn(err error) bool {
	_, ok := err.(*UnknownSearchColumnError)
	return ok
}

// InvalidRangeValueError represents a range-strategy criteria value that is
// not a two-element [min, max] pair.
type InvalidRangeValueError struct {
	Column string
	Value  any
}

func (e *InvalidRangeValueError) Error() string {
	return fmt.Sprintf("value for range column %q must be a [min, max] pair, got %T", e.Column, e.Value)
}

// IsInvalidRangeValue checks if an error is an invalid range value error
func IsInvalidRangeValue(err error) bool {
	_, ok := err.(*InvalidRangeValueError)
	return ok
}

// NotRegisteredError represents a search against a record type that was
// never registered.
type NotRegisteredError struct {
	TypeID string
}

func (e *NotRegisteredError) Error() string {
	return fmt.Sprintf("record type %q is not search-enabled", e.TypeID)
}

// IsNotRegistered checks if an error is a not registered error
func IsNotRegistered(err error) bool {
	_, ok := err.(*NotRegisteredError)
	return ok
}

// errorReason labels compile failures for metrics.
func errorReason(err error) string {
	switch {
	case IsArgumentConflict(err):
		return "argument_conflict"
	case IsUnknownSearchColumn(err):
		return "unknown_search_column"
	case IsInvalidRangeValue(err):
		return "invalid_range_value"
	case IsNotRegistered(err):
		return "not_registered"
	default:
		return "other"
	}
}
