package quarry

import (
	"errors"
	"testing"

	"github.com/ridge/quarry/indices"
	"github.com/ridge/quarry/query"
	"github.com/stretchr/testify/require"
)

const (
	age    = "age"
	weight = "weight"
)

type person struct {
	Name   string
	Age    int
	Weight *float64 // nil sorts first
}

func kg(w float64) *float64 {
	return &w
}

func nilsFirst(a, b *float64) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	case *a < *b:
		return -1
	case *a > *b:
		return 1
	default:
		return 0
	}
}

func testTable(t *testing.T, config Config) *Table[person] {
	tbl := New[person](config)
	require.NoError(t, AddOrderedIndex(tbl, age, Pure(func(p person) int { return p.Age })))
	require.NoError(t, AddSortedIndex(tbl, weight, Pure(func(p person) *float64 { return p.Weight }), nilsFirst))
	require.NoError(t, tbl.InsertMany(map[string]person{
		"1": {Name: "John", Age: 20, Weight: kg(70)},
		"2": {Name: "Jane", Age: 25, Weight: kg(55)},
		"3": {Name: "Arny", Age: 28, Weight: kg(104)},
		"4": {Name: "Joe", Age: 32},
	}, Error))
	return tbl
}

func names(t *testing.T, tbl *Table[person], q query.Query) []string {
	t.Helper()
	people, err := tbl.Query(q)
	require.NoError(t, err)
	out := []string{}
	for _, p := range people {
		out = append(out, p.Name)
	}
	return out
}

var queryTests = []struct {
	name  string
	query query.Query
	names []string // in id order
}{
	{"equal", query.Equal(age, 20), []string{"John"}},
	{"equal none", query.Equal(age, 34), []string{}},
	{"equal sorted", query.Equal(weight, kg(55)), []string{"Jane"}},
	{"equal sorted none", query.Equal(weight, kg(55.5)), []string{}},
	{"equal null", query.Equal(weight, nil), []string{"Joe"}},
	{"less none", query.Less(age, 20), []string{}},
	{"less equal", query.LessEqual(age, 20), []string{"John"}},
	{"larger", query.Larger(weight, kg(70)), []string{"Arny"}},
	{"larger equal", query.LargerEqual(weight, kg(70)), []string{"John", "Arny"}},
	{"less equal with nil", query.LessEqual(weight, kg(70)), []string{"John", "Jane", "Joe"}},
	{"between", query.Between(age, 25, true, 28, true), []string{"Jane", "Arny"}},
	{"empty intersection", query.Less(age, 28).And(query.Larger(weight, kg(70))), []string{}},
	{"intersection", query.LessEqual(age, 28).And(query.Larger(weight, kg(70))), []string{"Arny"}},
	{"empty union", query.Less(age, 20).Or(query.Larger(age, 32)), []string{}},
	{"disjoint union", query.LessEqual(age, 20).Or(query.LargerEqual(age, 32)), []string{"John", "Joe"}},
	{"overlapping union", query.Less(age, 28).Or(query.LessEqual(weight, kg(55))), []string{"John", "Jane", "Joe"}},
}

func TestQueries(t *testing.T) {
	tbl := testTable(t, Config{OrderedStore: true})
	for _, tc := range queryTests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.names, names(t, tbl, tc.query))
		})
	}
}

func TestQueriesHashStore(t *testing.T) {
	tbl := testTable(t, Config{})
	for _, tc := range queryTests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			require.ElementsMatch(t, tc.names, names(t, tbl, tc.query))
		})
	}
}

func TestQueryUnique(t *testing.T) {
	tbl := testTable(t, Config{OrderedStore: true})
	for _, tc := range queryTests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			p, err := tbl.QueryUnique(tc.query)
			id, idErr := tbl.QueryUniqueID(tc.query)
			if len(tc.names) == 1 {
				require.NoError(t, err)
				require.NoError(t, idErr)
				require.Equal(t, tc.names[0], p.Name)
				byID, ok := tbl.QueryByID(id)
				require.True(t, ok)
				require.Equal(t, p, byID)
				return
			}
			require.ErrorIs(t, err, ErrNonUniqueResult)
			require.ErrorIs(t, idErr, ErrNonUniqueResult)
			var nue *NonUniqueResultError
			require.True(t, errors.As(err, &nue))
			require.Equal(t, len(tc.names), nue.Count)
			require.Equal(t, tc.query.String(), nue.Query)
		})
	}
}

func TestQueryIDs(t *testing.T) {
	tbl := testTable(t, Config{OrderedStore: true})
	ids, err := tbl.QueryIDs(query.LessEqual(age, 28))
	require.NoError(t, err)
	require.Equal(t, []string{"1", "2", "3"}, ids)

	ids, err = tbl.QueryIDs(query.Larger(age, 40))
	require.NoError(t, err)
	require.Empty(t, ids)
}

func TestQueryByID(t *testing.T) {
	tbl := testTable(t, Config{OrderedStore: true})
	for id, name := range map[string]string{"1": "John", "2": "Jane", "3": "Arny", "4": "Joe"} {
		p, ok := tbl.QueryByID(id)
		require.True(t, ok)
		require.Equal(t, name, p.Name)
	}
	_, ok := tbl.QueryByID("5")
	require.False(t, ok)
}

func TestWrongValues(t *testing.T) {
	tbl := testTable(t, Config{OrderedStore: true})

	_, err := tbl.Query(query.Equal(age, "20"))
	require.ErrorIs(t, err, indices.ErrTypeMismatch)
	var tme *indices.TypeMismatchError
	require.True(t, errors.As(err, &tme))
	require.Equal(t, "20", tme.Value)

	// float64 is not *float64
	_, err = tbl.Query(query.Larger(weight, 70.0))
	require.ErrorIs(t, err, indices.ErrTypeMismatch)

	// a mismatch deep in a merge fails the whole query
	_, err = tbl.Query(query.Less(age, 30).And(query.Equal(age, int64(20))))
	require.ErrorIs(t, err, indices.ErrTypeMismatch)
}

func TestInvalidQueries(t *testing.T) {
	tbl := testTable(t, Config{OrderedStore: true})

	_, err := tbl.Query(query.Merge{Kind: query.AND})
	require.ErrorIs(t, err, ErrInvalidQuery)
	_, err = tbl.Query(nil)
	require.ErrorIs(t, err, ErrInvalidQuery)
	_, err = tbl.Query(&query.Equals{Index: age, Value: 20})
	require.ErrorIs(t, err, ErrInvalidQuery)
	_, err = tbl.Query(query.Merge{Kind: query.Kind(9), Subqueries: []query.Query{query.Equal(age, 20)}})
	require.ErrorIs(t, err, ErrInvalidQuery)

	ids, err := tbl.QueryIDs(query.Merge{Kind: query.OR})
	require.NoError(t, err)
	require.Empty(t, ids)
}

func TestInsert(t *testing.T) {
	tbl := testTable(t, Config{OrderedStore: true})
	everyone := query.Less(weight, kg(200))

	err := tbl.Insert("1", person{Name: "x", Age: 5, Weight: kg(10)}, Error)
	require.ErrorIs(t, err, ErrDuplicateID)
	require.Equal(t, 4, tbl.Len())
	require.Equal(t, []string{"John", "Jane", "Arny", "Joe"}, names(t, tbl, everyone))

	require.NoError(t, tbl.Insert("1", person{Name: "x", Age: 5, Weight: kg(10)}, Return))
	require.Equal(t, 4, tbl.Len())
	require.Equal(t, []string{"John", "Jane", "Arny", "Joe"}, names(t, tbl, everyone))

	require.NoError(t, tbl.Insert("1", person{Name: "x", Age: 5, Weight: kg(10)}, Overwrite))
	require.Equal(t, 4, tbl.Len())
	require.Equal(t, []string{"x", "Jane", "Arny", "Joe"}, names(t, tbl, everyone))
	require.Equal(t, []string{"x", "Joe"}, names(t, tbl, query.Less(weight, kg(11))))
	require.Equal(t, []string{}, names(t, tbl, query.Equal(age, 20)), "old attributes must be withdrawn")
	require.Equal(t, []string{"x"}, names(t, tbl, query.Equal(age, 5)))

	require.ErrorIs(t, tbl.Insert("", person{}, Error), ErrEmptyID)
	require.Panics(t, func() { _ = tbl.Insert("1", person{}, InsertBehavior(7)) })
}

func TestInsertGeneratorFailure(t *testing.T) {
	tbl := testTable(t, Config{OrderedStore: true})
	errNoName := errors.New("no name")
	require.NoError(t, AddIndex(tbl, "initial", func(p person) (byte, error) {
		if p.Name == "" {
			return 0, errNoName
		}
		return p.Name[0], nil
	}))

	err := tbl.Insert("5", person{Age: 40}, Error)
	require.ErrorIs(t, err, errNoName)
	require.Equal(t, 4, tbl.Len())
	_, ok := tbl.QueryByID("5")
	require.False(t, ok)
	require.Equal(t, []string{}, names(t, tbl, query.Equal(age, 40)))

	// a failed overwrite keeps the old record fully indexed
	err = tbl.Insert("1", person{Age: 40}, Overwrite)
	require.ErrorIs(t, err, errNoName)
	require.Equal(t, []string{"John"}, names(t, tbl, query.Equal(age, 20)))
	require.Equal(t, []string{"John", "Jane", "Joe"}, names(t, tbl, query.Equal("initial", byte('J'))))
}

func TestInsertManyNotAtomic(t *testing.T) {
	tbl := testTable(t, Config{OrderedStore: true})
	err := tbl.InsertMany(map[string]person{
		"0": {Name: "Zed", Age: 50},
		"2": {Name: "Dup", Age: 60},
		"9": {Name: "Never", Age: 70},
	}, Error)
	require.ErrorIs(t, err, ErrDuplicateID)
	require.Equal(t, 5, tbl.Len())
	require.Equal(t, []string{"Zed"}, names(t, tbl, query.LargerEqual(age, 50)))
}

func TestRemove(t *testing.T) {
	tbl := testTable(t, Config{OrderedStore: true})
	everyone := query.Less(weight, kg(200))

	require.NoError(t, tbl.Remove("5", false))
	require.Equal(t, 4, tbl.Len())
	require.Equal(t, []string{"John", "Jane", "Arny", "Joe"}, names(t, tbl, everyone))

	require.ErrorIs(t, tbl.Remove("5", true), ErrUnknownID)
	require.Equal(t, 4, tbl.Len())

	require.NoError(t, tbl.Remove("1", true))
	require.Equal(t, 3, tbl.Len())
	require.Equal(t, []string{"Jane", "Joe"}, names(t, tbl, query.LessEqual(weight, kg(70))))
	require.Equal(t, []string{}, names(t, tbl, query.Equal(age, 20)))

	// the freed row is reused without leaking old postings
	require.NoError(t, tbl.Insert("6", person{Name: "Ann", Age: 21, Weight: kg(60)}, Error))
	require.Equal(t, []string{}, names(t, tbl, query.Equal(age, 20)))
	require.Equal(t, []string{"Ann"}, names(t, tbl, query.Equal(age, 21)))
}

func TestAddIndex(t *testing.T) {
	tbl := testTable(t, Config{OrderedStore: true})

	err := AddIndex(tbl, age, Pure(func(p person) string { return "" }))
	require.ErrorIs(t, err, ErrIndexExists)

	const category = "category"
	require.NoError(t, AddIndex(tbl, category, Pure(func(p person) string {
		switch {
		case p.Weight == nil:
			return "Strange"
		case *p.Weight <= 70:
			return "Normal"
		default:
			return "Bulky"
		}
	})))

	require.Equal(t, []string{"Joe"}, names(t, tbl, query.Equal(category, "Strange")))
	require.Equal(t, []string{"John", "Jane"}, names(t, tbl, query.Equal(category, "Normal")))
	require.Equal(t, []string{"Arny"}, names(t, tbl, query.Equal(category, "Bulky")))

	// exact-match indexes do not answer range queries
	_, err = tbl.Query(query.Less(category, "Z"))
	require.ErrorIs(t, err, ErrUnknownIndex)

	normal, err := tbl.QueryIDs(query.Equal(category, "Normal"))
	require.NoError(t, err)
	for _, id := range normal {
		require.NoError(t, tbl.Remove(id, true))
	}
	require.Equal(t, 2, tbl.Len())
	require.Equal(t, []string{"Arny", "Joe"}, names(t, tbl, query.Less(weight, kg(200))))
	require.Equal(t, []string{}, names(t, tbl, query.Equal(category, "Normal")))

	require.Equal(t, []IndexInfo{
		{Name: age, Ordered: true, Type: typeOf[int](), Keys: 2},
		{Name: category, Ordered: false, Type: typeOf[string](), Keys: 2},
		{Name: weight, Ordered: true, Type: typeOf[*float64](), Keys: 2},
	}, tbl.Indexes())
}

func TestAddIndexBackfillFailure(t *testing.T) {
	tbl := testTable(t, Config{OrderedStore: true})
	errHeavy := errors.New("too heavy")
	err := AddIndex(tbl, "light", func(p person) (bool, error) {
		if p.Weight != nil && *p.Weight > 100 {
			return false, errHeavy
		}
		return true, nil
	})
	require.ErrorIs(t, err, errHeavy)
	_, err = tbl.Query(query.Equal("light", true))
	require.ErrorIs(t, err, ErrUnknownIndex)
	require.Len(t, tbl.Indexes(), 2)

	require.Error(t, AddIndex[person, int](tbl, "nil", nil))
	require.Error(t, AddSortedIndex(tbl, "nil", Pure(func(p person) int { return 0 }), nil))
}

func TestRemoveIndex(t *testing.T) {
	tbl := testTable(t, Config{OrderedStore: true})

	require.ErrorIs(t, tbl.RemoveIndex("unknown"), ErrUnknownIndex)

	require.NoError(t, tbl.RemoveIndex(age))
	require.Equal(t, []string{"Arny"}, names(t, tbl, query.LargerEqual(weight, kg(104))))
	_, err := tbl.Query(query.Equal(age, 20))
	require.ErrorIs(t, err, ErrUnknownIndex)
	_, err = tbl.Query(query.Larger(age, 20))
	require.ErrorIs(t, err, ErrUnknownIndex)

	require.NoError(t, tbl.RemoveIndex(weight))
	_, err = tbl.Query(query.Equal(weight, kg(20)))
	require.ErrorIs(t, err, ErrUnknownIndex)

	// records survive without indexes and can be re-indexed
	require.Equal(t, 4, tbl.Len())
	require.NoError(t, tbl.Remove("2", true))
	require.NoError(t, AddOrderedIndex(tbl, age, Pure(func(p person) int { return p.Age })))
	require.Equal(t, []string{"John", "Arny"}, names(t, tbl, query.Less(age, 30)))
}

func TestInconsistentIndex(t *testing.T) {
	tbl := New[person](Config{})
	// a generator that is not deterministic breaks the index
	calls := 0
	require.NoError(t, AddIndex(tbl, "calls", Pure(func(p person) int {
		calls++
		return calls
	})))
	require.NoError(t, tbl.Insert("a", person{Name: "A"}, Error))

	err := tbl.Remove("a", true)
	require.ErrorIs(t, err, indices.ErrInconsistent)
	var ie *indices.InconsistentError
	require.True(t, errors.As(err, &ie))
	require.Equal(t, 2, ie.Key)
}

func TestInsertBehaviorString(t *testing.T) {
	require.Equal(t, "overwrite", Overwrite.String())
	require.Equal(t, "return", Return.String())
	require.Equal(t, "error", Error.String())
	require.Equal(t, "InsertBehavior(5)", InsertBehavior(5).String())
}
