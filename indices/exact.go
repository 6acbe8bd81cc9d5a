package indices

import (
	"reflect"

	"github.com/RoaringBitmap/roaring/v2"
)

// Exact is an equality-only index backed by a hash map.
//
// Values unequal to themselves (NaN, or structs holding a NaN) all share a
// single key, so that they can be found and removed again.
type Exact[A comparable] struct {
	typ      reflect.Type
	key      func(A) A // map key of a value; nil means the value itself
	postings map[A]*roaring.Bitmap
	nan      *roaring.Bitmap
}

// NewExact creates an empty exact-match index
func NewExact[A comparable]() *Exact[A] {
	return &Exact[A]{typ: typeOf[A](), postings: map[A]*roaring.Bitmap{}}
}

// canon returns the map key of value and whether it belongs in the NaN key
func (e *Exact[A]) canon(value A) (A, bool) {
	if e.key != nil {
		value = e.key(value)
	}
	return value, value != value
}

// ValueType implements Index
func (e *Exact[A]) ValueType() reflect.Type {
	return e.typ
}

// Len implements Index
func (e *Exact[A]) Len() int {
	if e.nan != nil {
		return len(e.postings) + 1
	}
	return len(e.postings)
}

// QueryEquals implements Index
func (e *Exact[A]) QueryEquals(value A) *roaring.Bitmap {
	k, nan := e.canon(value)
	rows := e.nan
	if !nan {
		rows = e.postings[k]
	}
	if rows == nil {
		return roaring.New()
	}
	return rows.Clone()
}

// Insert implements Index
func (e *Exact[A]) Insert(value A, row uint32) {
	k, nan := e.canon(value)
	if !nan {
		bucket(e.postings, k).Add(row)
		return
	}
	if e.nan == nil {
		e.nan = roaring.New()
	}
	e.nan.Add(row)
}

// Remove implements Index
func (e *Exact[A]) Remove(value A, row uint32) error {
	k, nan := e.canon(value)
	rows := e.nan
	if !nan {
		rows = e.postings[k]
	}
	if rows == nil {
		return &InconsistentError{Key: value, Row: row, Reason: "key not found"}
	}
	if !rows.CheckedRemove(row) {
		return &InconsistentError{Key: value, Row: row, Reason: "row not posted under key"}
	}
	if rows.IsEmpty() {
		if nan {
			e.nan = nil
		} else {
			delete(e.postings, k)
		}
	}
	return nil
}
