// Package store holds the primary records of a quarry table.
//
// Every stored identifier is interned to a row: a small uint32 used by the
// secondary indexes in their posting bitmaps. Rows of removed records are
// reused.
//
// Two backends differ in the order records come out of Resolve and All:
// NewHash is unordered (rows ascending), NewOrdered keeps records in a
// go-memdb table and yields them in ascending identifier order.
//
// Stores are not safe for concurrent use.
package store

import (
	"math"

	"github.com/RoaringBitmap/roaring/v2"
)

// Record is a stored value together with its identity
type Record[T any] struct {
	ID    string
	Row   uint32
	Value T
}

func (r *Record[T]) key() (string, uint32) {
	return r.ID, r.Row
}

// Store is the primary record store
type Store[T any] interface {
	// Len returns the number of stored records
	Len() int
	// Get returns the record with the given id
	Get(id string) (Record[T], bool)
	// Put stores value under id, replacing the previous value. The row of an
	// existing record is kept.
	Put(id string, value T) Record[T]
	// Delete removes the record and releases its row
	Delete(id string) (Record[T], bool)
	// Live returns the rows of all stored records. The bitmap belongs to the
	// caller.
	Live() *roaring.Bitmap
	// Resolve returns the stored records among rows. Rows without a record
	// are skipped.
	Resolve(rows *roaring.Bitmap) []Record[T]
	// All calls fn for every record until it returns false
	All(fn func(Record[T]) bool)
}

// rowSet hands out rows, reusing released ones first
type rowSet struct {
	next uint32
	free []uint32
	live *roaring.Bitmap
}

func newRowSet() rowSet {
	return rowSet{live: roaring.New()}
}

func (rs *rowSet) acquire() uint32 {
	var row uint32
	if n := len(rs.free); n > 0 {
		row = rs.free[n-1]
		rs.free = rs.free[:n-1]
	} else {
		if rs.next == math.MaxUint32 {
			panic("store: row space exhausted")
		}
		row = rs.next
		rs.next++
	}
	rs.live.Add(row)
	return row
}

func (rs *rowSet) release(row uint32) {
	if rs.live.CheckedRemove(row) {
		rs.free = append(rs.free, row)
	}
}

func (rs *rowSet) count() int {
	return int(rs.live.GetCardinality())
}

func (rs *rowSet) resolve(rows *roaring.Bitmap) *roaring.Bitmap {
	return roaring.And(rows, rs.live)
}
