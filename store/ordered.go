package store

import (
	"sort"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hashicorp/go-memdb"
	"github.com/ridge/must/v2"
)

// Resolve looks rows up one by one and sorts them when they are at most
// 1/sparseRatio of the store, and scans the whole id index otherwise
const sparseRatio = 8

type orderedStore[T any] struct {
	rows rowSet
	db   *memdb.MemDB
}

// NewOrdered creates a store backed by an in-memory radix tree database.
// Resolve and All yield records in ascending identifier order.
func NewOrdered[T any]() Store[T] {
	return &orderedStore[T]{
		rows: newRowSet(),
		db:   must.OK1(memdb.NewMemDB(schema())),
	}
}

func first[T any](txn *memdb.Txn, index string, arg any) *Record[T] {
	obj := must.OK1(txn.First(tableName, index, arg))
	if obj == nil {
		return nil
	}
	return obj.(*Record[T])
}

func (ms *orderedStore[T]) Len() int {
	return ms.rows.count()
}

func (ms *orderedStore[T]) Get(id string) (Record[T], bool) {
	rec := first[T](ms.db.Txn(false), indexID, id)
	if rec == nil {
		return Record[T]{}, false
	}
	return *rec, true
}

func (ms *orderedStore[T]) Put(id string, value T) Record[T] {
	txn := ms.db.Txn(true)
	defer txn.Abort()

	rec := &Record[T]{ID: id, Value: value}
	if old := first[T](txn, indexID, id); old != nil {
		rec.Row = old.Row
	} else {
		rec.Row = ms.rows.acquire()
	}
	// stored records are never modified in place: snapshots may share them
	must.OK(txn.Insert(tableName, rec))
	txn.Commit()
	return *rec
}

func (ms *orderedStore[T]) Delete(id string) (Record[T], bool) {
	txn := ms.db.Txn(true)
	defer txn.Abort()

	rec := first[T](txn, indexID, id)
	if rec == nil {
		return Record[T]{}, false
	}
	must.OK(txn.Delete(tableName, rec))
	txn.Commit()
	ms.rows.release(rec.Row)
	return *rec, true
}

func (ms *orderedStore[T]) Live() *roaring.Bitmap {
	return ms.rows.live.Clone()
}

func (ms *orderedStore[T]) Resolve(rows *roaring.Bitmap) []Record[T] {
	live := ms.rows.resolve(rows)
	n := live.GetCardinality()
	out := make([]Record[T], 0, n)
	if n == 0 {
		return out
	}

	txn := ms.db.Txn(false)
	if n*sparseRatio <= uint64(ms.rows.count()) {
		it := live.Iterator()
		for it.HasNext() {
			out = append(out, *first[T](txn, indexRow, it.Next()))
		}
		sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
		return out
	}

	iter := must.OK1(txn.Get(tableName, indexID))
	for obj := iter.Next(); obj != nil; obj = iter.Next() {
		rec := obj.(*Record[T])
		if live.Contains(rec.Row) {
			out = append(out, *rec)
		}
	}
	return out
}

func (ms *orderedStore[T]) All(fn func(Record[T]) bool) {
	iter := must.OK1(ms.db.Txn(false).Get(tableName, indexID))
	for obj := iter.Next(); obj != nil; obj = iter.Next() {
		if !fn(*obj.(*Record[T])) {
			return
		}
	}
}
