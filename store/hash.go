package store

import "github.com/RoaringBitmap/roaring/v2"

type hashStore[T any] struct {
	rows  rowSet
	byID  map[string]*Record[T]
	byRow map[uint32]*Record[T]
}

// NewHash creates a store backed by Go maps. Resolve and All yield records in
// ascending row order, which is insertion order until rows get reused.
func NewHash[T any]() Store[T] {
	return &hashStore[T]{
		rows:  newRowSet(),
		byID:  map[string]*Record[T]{},
		byRow: map[uint32]*Record[T]{},
	}
}

func (hs *hashStore[T]) Len() int {
	return len(hs.byID)
}

func (hs *hashStore[T]) Get(id string) (Record[T], bool) {
	rec, ok := hs.byID[id]
	if !ok {
		return Record[T]{}, false
	}
	return *rec, true
}

func (hs *hashStore[T]) Put(id string, value T) Record[T] {
	if rec, ok := hs.byID[id]; ok {
		rec.Value = value
		return *rec
	}
	rec := &Record[T]{ID: id, Row: hs.rows.acquire(), Value: value}
	hs.byID[id] = rec
	hs.byRow[rec.Row] = rec
	return *rec
}

func (hs *hashStore[T]) Delete(id string) (Record[T], bool) {
	rec, ok := hs.byID[id]
	if !ok {
		return Record[T]{}, false
	}
	delete(hs.byID, id)
	delete(hs.byRow, rec.Row)
	hs.rows.release(rec.Row)
	return *rec, true
}

func (hs *hashStore[T]) Live() *roaring.Bitmap {
	return hs.rows.live.Clone()
}

func (hs *hashStore[T]) Resolve(rows *roaring.Bitmap) []Record[T] {
	live := hs.rows.resolve(rows)
	out := make([]Record[T], 0, live.GetCardinality())
	it := live.Iterator()
	for it.HasNext() {
		out = append(out, *hs.byRow[it.Next()])
	}
	return out
}

func (hs *hashStore[T]) All(fn func(Record[T]) bool) {
	it := hs.rows.live.Iterator()
	for it.HasNext() {
		if !fn(*hs.byRow[it.Next()]) {
			return
		}
	}
}
