package quarry

import (
	"errors"
	"fmt"
)

// Errors returned by Table methods, wrapped with details. Check them with
// errors.Is.
var (
	ErrEmptyID         = errors.New("empty id")
	ErrDuplicateID     = errors.New("duplicate id")
	ErrUnknownID       = errors.New("unknown id")
	ErrUnknownIndex    = errors.New("unknown index")
	ErrIndexExists     = errors.New("index already exists")
	ErrInvalidQuery    = errors.New("invalid query")
	ErrNonUniqueResult = errors.New("non-unique result")
)

// NonUniqueResultError is returned by QueryUnique and QueryUniqueID when the
// query does not match exactly one record
type NonUniqueResultError struct {
	Query string
	Count int
}

func (e *NonUniqueResultError) Error() string {
	return fmt.Sprintf("%s: expected exactly one record for query %s, got %d", ErrNonUniqueResult, e.Query, e.Count)
}

// Is makes errors.Is(err, ErrNonUniqueResult) work
func (e *NonUniqueResultError) Is(target error) bool {
	return target == ErrNonUniqueResult
}
