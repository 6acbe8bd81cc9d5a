package indices

import (
	"reflect"

	"github.com/RoaringBitmap/roaring/v2"
	"golang.org/x/exp/slices"
)

type entry[A any] struct {
	key  A
	rows *roaring.Bitmap
}

// Ordered is an index keeping its attribute values sorted by a comparator.
// It answers both equality and interval queries.
//
// Two values are the same key iff the comparator returns 0 for them.
type Ordered[A any] struct {
	typ     reflect.Type
	cmp     func(a, b A) int
	entries []entry[A] // ascending, no two keys compare equal
}

// NewOrdered creates an empty ordered index. cmp must be a total order:
// negative if a < b, zero if a == b, positive if a > b.
func NewOrdered[A any](cmp func(a, b A) int) *Ordered[A] {
	return &Ordered[A]{typ: typeOf[A](), cmp: cmp}
}

func (o *Ordered[A]) find(key A) (int, bool) {
	return slices.BinarySearchFunc(o.entries, key, func(e entry[A], k A) int {
		return o.cmp(e.key, k)
	})
}

// ValueType implements Index
func (o *Ordered[A]) ValueType() reflect.Type {
	return o.typ
}

// Len implements Index
func (o *Ordered[A]) Len() int {
	return len(o.entries)
}

// Min returns the smallest key, or false if the index is empty
func (o *Ordered[A]) Min() (A, bool) {
	if len(o.entries) == 0 {
		var zero A
		return zero, false
	}
	return o.entries[0].key, true
}

// Max returns the largest key, or false if the index is empty
func (o *Ordered[A]) Max() (A, bool) {
	if len(o.entries) == 0 {
		var zero A
		return zero, false
	}
	return o.entries[len(o.entries)-1].key, true
}

// QueryEquals implements Index
func (o *Ordered[A]) QueryEquals(value A) *roaring.Bitmap {
	i, found := o.find(value)
	if !found {
		return roaring.New()
	}
	return o.entries[i].rows.Clone()
}

// QueryInterval implements RangeIndex
func (o *Ordered[A]) QueryInterval(lower *A, lowerIncl bool, upper *A, upperIncl bool) *roaring.Bitmap {
	if len(o.entries) == 0 {
		return roaring.New()
	}

	from := 0
	if lower != nil {
		i, found := o.find(*lower)
		if found && !lowerIncl {
			i++
		}
		from = i
	}
	to := len(o.entries) // exclusive
	if upper != nil {
		j, found := o.find(*upper)
		if found && upperIncl {
			j++
		}
		to = j
	}
	if from >= to {
		return roaring.New()
	}

	parts := make([]*roaring.Bitmap, 0, to-from)
	for _, e := range o.entries[from:to] {
		parts = append(parts, e.rows)
	}
	return roaring.FastOr(parts...)
}

// Insert implements Index
func (o *Ordered[A]) Insert(value A, row uint32) {
	i, found := o.find(value)
	if !found {
		o.entries = slices.Insert(o.entries, i, entry[A]{key: value, rows: roaring.New()})
	}
	o.entries[i].rows.Add(row)
}

// Remove implements Index
func (o *Ordered[A]) Remove(value A, row uint32) error {
	i, found := o.find(value)
	if !found {
		return &InconsistentError{Key: value, Row: row, Reason: "key not found"}
	}
	rows := o.entries[i].rows
	if !rows.CheckedRemove(row) {
		return &InconsistentError{Key: value, Row: row, Reason: "row not posted under key"}
	}
	if rows.IsEmpty() {
		o.entries = slices.Delete(o.entries, i, i+1)
	}
	return nil
}
