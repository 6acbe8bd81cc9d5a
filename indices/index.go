package indices

import (
	"reflect"

	"github.com/RoaringBitmap/roaring/v2"
)

// Index maps attribute values of type A to postings: sets of rows sharing
// the value. Rows are dense uint32 ordinals handed out by the primary store.
//
// Bitmaps returned by queries belong to the caller.
//
// Do not use concurrently.
type Index[A any] interface {
	// ValueType returns the attribute type the index is keyed by
	ValueType() reflect.Type
	// Len returns the number of distinct attribute values
	Len() int
	// QueryEquals returns the rows posted under value, possibly none
	QueryEquals(value A) *roaring.Bitmap
	// Insert posts row under value
	Insert(value A, row uint32)
	// Remove withdraws row from value. Returns an *InconsistentError if there
	// is no such posting.
	Remove(value A, row uint32) error
}

// RangeIndex is an Index with a total order over its attribute values
type RangeIndex[A any] interface {
	Index[A]
	// QueryInterval returns the rows posted under values between lower and
	// upper. A nil bound is replaced by the smallest (largest) existing value,
	// inclusively.
	QueryInterval(lower *A, lowerIncl bool, upper *A, upperIncl bool) *roaring.Bitmap
}

func typeOf[A any]() reflect.Type {
	return reflect.TypeOf((*A)(nil)).Elem()
}

// bucket returns the postings for key, creating them if needed
func bucket[K comparable](m map[K]*roaring.Bitmap, key K) *roaring.Bitmap {
	rows, ok := m[key]
	if !ok {
		rows = roaring.New()
		m[key] = rows
	}
	return rows
}
