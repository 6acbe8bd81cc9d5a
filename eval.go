package quarry

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/ridge/quarry/query"
	"github.com/ridge/quarry/store"
)

// evaluate returns the rows matching q. The rows are not filtered by the
// store; see resolve.
func (t *Table[T]) evaluate(q query.Query) (*roaring.Bitmap, error) {
	switch q := q.(type) {
	case query.Equals:
		b, ok := t.bindings[q.Index]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownIndex, q.Index)
		}
		rows, err := b.index.QueryEqualsAny(q.Value)
		if err != nil {
			return nil, fmt.Errorf("query %s: %w", q, err)
		}
		return rows, nil
	case query.Range:
		idx, ok := t.rangeIndex(q.Index)
		if !ok {
			return nil, fmt.Errorf("%w: no ordered index %q", ErrUnknownIndex, q.Index)
		}
		rows, err := idx.QueryIntervalAny(q.Lower, q.LowerIncl, q.Upper, q.UpperIncl)
		if err != nil {
			return nil, fmt.Errorf("query %s: %w", q, err)
		}
		return rows, nil
	case query.Merge:
		if q.Kind == query.AND && len(q.Subqueries) == 0 {
			return nil, fmt.Errorf("%w: AND of nothing", ErrInvalidQuery)
		}
		parts := make([]*roaring.Bitmap, 0, len(q.Subqueries))
		for _, sub := range q.Subqueries {
			rows, err := t.evaluate(sub)
			if err != nil {
				return nil, err
			}
			parts = append(parts, rows)
		}
		switch q.Kind {
		case query.AND:
			return roaring.FastAnd(parts...), nil
		case query.OR:
			return roaring.FastOr(parts...), nil
		default:
			return nil, fmt.Errorf("%w: unknown merge kind %s", ErrInvalidQuery, q.Kind)
		}
	case nil:
		return nil, fmt.Errorf("%w: nil query", ErrInvalidQuery)
	default:
		return nil, fmt.Errorf("%w: unsupported query type %T", ErrInvalidQuery, q)
	}
}

// resolve evaluates q and returns the matching stored records
func (t *Table[T]) resolve(q query.Query) ([]store.Record[T], error) {
	rows, err := t.evaluate(q)
	if err != nil {
		return nil, err
	}
	return t.records.Resolve(rows), nil
}

// QueryIDs returns the ids of the records matching q
func (t *Table[T]) QueryIDs(q query.Query) ([]string, error) {
	recs, err := t.resolve(q)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(recs))
	for _, rec := range recs {
		ids = append(ids, rec.ID)
	}
	return ids, nil
}

// Query returns the values of the records matching q
func (t *Table[T]) Query(q query.Query) ([]T, error) {
	recs, err := t.resolve(q)
	if err != nil {
		return nil, err
	}
	values := make([]T, 0, len(recs))
	for _, rec := range recs {
		values = append(values, rec.Value)
	}
	return values, nil
}

func (t *Table[T]) resolveUnique(q query.Query) (store.Record[T], error) {
	recs, err := t.resolve(q)
	if err != nil {
		return store.Record[T]{}, err
	}
	if len(recs) != 1 {
		return store.Record[T]{}, &NonUniqueResultError{Query: q.String(), Count: len(recs)}
	}
	return recs[0], nil
}

// QueryUniqueID returns the id of the only record matching q. Fails with a
// *NonUniqueResultError if there are none or several.
func (t *Table[T]) QueryUniqueID(q query.Query) (string, error) {
	rec, err := t.resolveUnique(q)
	return rec.ID, err
}

// QueryUnique returns the value of the only record matching q. Fails with a
// *NonUniqueResultError if there are none or several.
func (t *Table[T]) QueryUnique(q query.Query) (T, error) {
	rec, err := t.resolveUnique(q)
	return rec.Value, err
}
