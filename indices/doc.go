// Package indices contains the secondary indexes of quarry tables.
//
// An index maps attribute values, derived from stored records, to postings:
// the set of rows sharing the value. Rows are uint32 ordinals assigned by the
// primary store; postings are roaring bitmaps, so that AND/OR evaluation of a
// query is bitmap intersection and union.
//
// There are two kinds of indexes:
//
//	exact := indices.NewExact[string]()          // equality only
//	byAge := indices.NewOrdered(compareInts)     // equality and intervals
//
// Both are statically typed by their attribute type. Queries arrive at a
// table with attribute values as any, so each index also has a dynamic face
// (Erase, EraseRange) that checks a value against the index's ValueType once
// and returns a *TypeMismatchError instead of panicking on a bad cast.
//
// # Interval semantics
//
// An ordered index treats an absent (nil) bound as the smallest or largest
// key currently in the index, inclusively. An interval query on an empty
// index, or with bounds selecting no keys, returns an empty set.
//
// # Sortable types
//
// Indexes built from struct fields (FieldOf with NewExactOf or NewOrderedOf)
// use KeyCompare, which orders booleans, integers, floats, strings,
// time.Time, named types based on them, types implementing IndexKey, and
// pointers to any of those, nil first.
package indices
