// Package quarry is an embeddable in-memory record table with secondary
// indexes and an AND/OR query algebra.
//
// The name comes from the Tectonic theme: a quarry is where stone is cut to
// order, and a table is where records are cut out of a heap by their
// attributes.
//
// # Records
//
// A Table[T] stores values of one type T under caller-chosen string ids:
//
//	people := quarry.New[Person](quarry.Config{OrderedStore: true})
//	err := people.Insert("1", Person{Name: "John", Age: 20}, quarry.Error)
//
// Insert takes an InsertBehavior deciding what happens when the id is taken:
// Overwrite replaces the value, Return keeps the old one silently, Error
// fails with ErrDuplicateID. InsertMany inserts a batch record by record and
// is not atomic.
//
// # Indexes
//
// An index is named and fed by a generator, a deterministic function
// deriving one attribute from a record:
//
//	quarry.AddIndex(people, "name", quarry.Pure(func(p Person) string { return p.Name }))
//	quarry.AddOrderedIndex(people, "age", quarry.Pure(func(p Person) int { return p.Age }))
//	quarry.AddSortedIndex(people, "weight", weightOf, nilsFirst)
//	quarry.AddSortedFieldIndex(people, "height", "Height")
//
// Exact-match indexes (AddIndex, AddFieldIndex) answer equality queries.
// Ordered indexes (AddSortedIndex, AddOrderedIndex, AddSortedFieldIndex)
// answer equality and range queries. An index added to a non-empty table is
// filled from the records already there.
//
// The table keeps every index consistent with the stored records: inserting
// posts the record's attributes, overwriting and removing withdraw the
// attributes recomputed from the old value. All generators run before the
// table is changed, so a generator error leaves the table as it was.
//
// # Queries
//
// Queries are built with the query package and address indexes by name:
//
//	q := query.LessEqual("age", 28).And(query.Larger("weight", 70.0))
//	ids, err := people.QueryIDs(q)
//
// Attribute values in queries must have the exact attribute type of the
// index; otherwise evaluation fails with an indices.ErrTypeMismatch error.
// Range queries can only address ordered indexes; other names fail with
// ErrUnknownIndex.
//
// # Concurrency
//
// A Table is a plain value with no locking. Guard it with a sync.RWMutex if
// it is shared: queries only read, everything else writes.
package quarry
