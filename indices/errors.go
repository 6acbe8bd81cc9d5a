package indices

import (
	"errors"
	"fmt"
	"reflect"
)

// ErrTypeMismatch is matched by every *TypeMismatchError
var ErrTypeMismatch = errors.New("type mismatch")

// ErrInconsistent is matched by every *InconsistentError
var ErrInconsistent = errors.New("inconsistent index")

// TypeMismatchError is returned by the dynamic index boundary when a value
// does not have the attribute type of the index
type TypeMismatchError struct {
	Value    any
	Expected reflect.Type
	Actual   reflect.Type // nil for an untyped nil value
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("%s: value %v has type %v, index expects %v", ErrTypeMismatch, e.Value, e.Actual, e.Expected)
}

// Is makes errors.Is(err, ErrTypeMismatch) work
func (e *TypeMismatchError) Is(target error) bool {
	return target == ErrTypeMismatch
}

// InconsistentError is returned by Index.Remove when the posting to be removed
// is not in the index. It means the index has diverged from the data it was
// built from.
type InconsistentError struct {
	Key    any
	Row    uint32
	Reason string
}

func (e *InconsistentError) Error() string {
	return fmt.Sprintf("%s: key %v, row %d: %s", ErrInconsistent, e.Key, e.Row, e.Reason)
}

// Is makes errors.Is(err, ErrInconsistent) work
func (e *InconsistentError) Is(target error) bool {
	return target == ErrInconsistent
}

func mismatch(value any, expected reflect.Type) error {
	return &TypeMismatchError{Value: value, Expected: expected, Actual: reflect.TypeOf(value)}
}
