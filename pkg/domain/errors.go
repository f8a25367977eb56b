package domain

import (
	"errors"
	"fmt"
	"math"
)

// ErrValidation matches every constraint failure via errors.Is.
var ErrValidation = errors.New("validation failed")

// TypeConstraintError reports a value of the wrong primitive type, a missing
// field or a non-finite number.
type TypeConstraintError struct {
	Entity EntityType
	Field  string
	Value  any
	Reason string
}

func (e TypeConstraintError) Error() string {
	return fmt.Sprintf("%s %s: %s (got %T %v)", e.Entity, e.Field, e.Reason, e.Value, e.Value)
}

// Is reports whether target is ErrValidation.
func (e TypeConstraintError) Is(target error) bool { return target == ErrValidation }

// RangeConstraintError reports a well-typed value outside its allowed domain.
type RangeConstraintError struct {
	Entity EntityType
	Field  string
	Value  any
	Reason string
}

func (e RangeConstraintError) Error() string {
	return fmt.Sprintf("%s %s: %s (got %v)", e.Entity, e.Field, e.Reason, e.Value)
}

// Is reports whether target is ErrValidation.
func (e RangeConstraintError) Is(target error) bool { return target == ErrValidation }

// ErrNotFound is returned when a lookup does not match any record.
type ErrNotFound struct {
	Entity EntityType
	ID     string
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// IsTypeConstraint reports whether err carries a TypeConstraintError.
func IsTypeConstraint(err error) bool {
	var target TypeConstraintError
	return errors.As(err, &target)
}

// IsRangeConstraint reports whether err carries a RangeConstraintError.
func IsRangeConstraint(err error) bool {
	var target RangeConstraintError
	return errors.As(err, &target)
}

// IsNotFound reports whether err carries an ErrNotFound.
func IsNotFound(err error) bool {
	var target ErrNotFound
	return errors.As(err, &target)
}

func checkFinite(entity EntityType, field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return TypeConstraintError{Entity: entity, Field: field, Value: v, Reason: "must be a finite number"}
	}
	return nil
}

// checkAmount validates a non-negative finite quantity, capped when limit > 0.
func checkAmount(entity EntityType, field string, v, limit float64) error {
	if err := checkFinite(entity, field, v); err != nil {
		return err
	}
	if v < 0 {
		return RangeConstraintError{Entity: entity, Field: field, Value: v, Reason: "must not be negative"}
	}
	if limit > 0 && v > limit {
		return RangeConstraintError{Entity: entity, Field: field, Value: v, Reason: fmt.Sprintf("must not exceed %g", limit)}
	}
	return nil
}
