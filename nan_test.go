package quarry

import (
	"math"
	"testing"

	"github.com/ridge/quarry/query"
	"github.com/stretchr/testify/require"
)

type sample struct {
	V float64
}

func TestNaNAttributes(t *testing.T) {
	for _, ordered := range []bool{false, true} {
		tbl := New[sample](Config{})
		gen := Pure(func(s sample) float64 { return s.V })
		if ordered {
			require.NoError(t, AddOrderedIndex(tbl, "v", gen))
		} else {
			require.NoError(t, AddIndex(tbl, "v", gen))
		}
		require.NoError(t, tbl.InsertMany(map[string]sample{
			"a":   {V: 1},
			"b":   {V: 2},
			"c":   {V: 3},
			"nan": {V: math.NaN()},
		}, Error))

		ids, err := tbl.QueryIDs(query.Equal("v", 1.0))
		require.NoError(t, err)
		require.Equal(t, []string{"a"}, ids, "ordered=%t", ordered)
		ids, err = tbl.QueryIDs(query.Equal("v", math.NaN()))
		require.NoError(t, err)
		require.Equal(t, []string{"nan"}, ids, "ordered=%t", ordered)
		require.Equal(t, 4, tbl.Indexes()[0].Keys)

		if ordered {
			// NaN sorts first
			ids, err = tbl.QueryIDs(query.Less("v", 2.0))
			require.NoError(t, err)
			require.ElementsMatch(t, []string{"a", "nan"}, ids)
			ids, err = tbl.QueryIDs(query.Larger("v", 1.0))
			require.NoError(t, err)
			require.ElementsMatch(t, []string{"b", "c"}, ids)
		}

		// NaN replaced by a number and back
		require.NoError(t, tbl.Insert("nan", sample{V: 5}, Overwrite))
		ids, err = tbl.QueryIDs(query.Equal("v", math.NaN()))
		require.NoError(t, err)
		require.Empty(t, ids)
		require.NoError(t, tbl.Insert("a", sample{V: math.NaN()}, Overwrite))
		ids, err = tbl.QueryIDs(query.Equal("v", math.NaN()))
		require.NoError(t, err)
		require.Equal(t, []string{"a"}, ids)

		require.NoError(t, tbl.Remove("a", true))
		require.Equal(t, 3, tbl.Len())
		ids, err = tbl.QueryIDs(query.Equal("v", math.NaN()))
		require.NoError(t, err)
		require.Empty(t, ids)
		require.Equal(t, 3, tbl.Indexes()[0].Keys)
	}
}

func TestNaNFieldIndexes(t *testing.T) {
	tbl := New[sample](Config{})
	require.NoError(t, AddFieldIndex(tbl, "exact", "V"))
	require.NoError(t, AddSortedFieldIndex(tbl, "sorted", "V"))
	require.NoError(t, tbl.Insert("nan", sample{V: math.NaN()}, Error))
	require.NoError(t, tbl.Insert("one", sample{V: 1}, Error))

	for _, index := range []string{"exact", "sorted"} {
		ids, err := tbl.QueryIDs(query.Equal(index, math.NaN()))
		require.NoError(t, err)
		require.Equal(t, []string{"nan"}, ids, index)
	}
	require.NoError(t, tbl.Remove("nan", true))
	require.Equal(t, 1, tbl.Len())
}
