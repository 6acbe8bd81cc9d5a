package indices

import (
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}

func requireAscending(t *testing.T, values ...any) {
	t.Helper()
	cmp, err := KeyCompare(reflect.TypeOf(values[0]))
	require.NoError(t, err)
	for i := range values {
		for j := range values {
			require.Equal(t, sign(intCmp(i, j)), sign(cmp(values[i], values[j])), "%v vs %v", values[i], values[j])
		}
	}
}

func TestKeyCompareUnknown(t *testing.T) {
	_, err := KeyCompare(reflect.TypeOf([]int{}))
	require.Error(t, err)
	_, err = KeyCompare(reflect.TypeOf((*[]int)(nil)))
	require.Error(t, err)
}

func TestKeyCompareBool(t *testing.T) {
	type Bool bool
	requireAscending(t, Bool(false), Bool(true))
}

func TestKeyCompareUint(t *testing.T) {
	type UShort uint16
	requireAscending(t, UShort(0), UShort(1), UShort(258), UShort(65535))
}

func TestKeyCompareInt(t *testing.T) {
	type Short int16
	requireAscending(t, Short(-32768), Short(-258), Short(-1), Short(0), Short(258))
	requireAscending(t, -1<<62, -5, 0, 7, 1<<62)
}

func TestKeyCompareFloat(t *testing.T) {
	requireAscending(t, -1e300, -2.5, -1.0, 0.0, 1e-9, 1.0, 55.0, 70.0, 104.0, 1e300)
	requireAscending(t, float32(-3), float32(0), float32(0.5))
}

func TestKeyCompareString(t *testing.T) {
	type Name string
	requireAscending(t, Name(""), Name("A"), Name("a"), Name("aA!"), Name("b"))
}

func TestKeyCompareTime(t *testing.T) {
	requireAscending(t,
		time.Time{},
		time.Date(1969, 12, 31, 23, 59, 59, 0, time.UTC),
		time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2020, 1, 1, 0, 0, 0, 1, time.UTC),
	)
}

type revKey int

func (k revKey) IndexKey() ([]byte, bool) {
	return []byte{byte(255 - k)}, k != 0
}

func TestKeyCompareIndexKey(t *testing.T) {
	requireAscending(t, revKey(3), revKey(2), revKey(1))
}

func TestKeyComparePtr(t *testing.T) {
	requireAscending(t, (*float64)(nil), ptr(-1.0), ptr(0.0), ptr(70.0))

	cmp, err := KeyCompare(reflect.TypeOf((*float64)(nil)))
	require.NoError(t, err)
	require.Equal(t, 0, cmp(ptr(55.0), ptr(55.0)))
	require.Panics(t, func() { cmp(55.0, ptr(55.0)) })
}

func TestKeyCompareNaN(t *testing.T) {
	requireAscending(t, math.NaN(), math.Inf(-1), -1.0, 0.0, math.Inf(1))
	requireAscending(t, (*float64)(nil), ptr(math.NaN()), ptr(-1.0))

	cmp, err := KeyCompare(reflect.TypeOf(0.0))
	require.NoError(t, err)
	require.Equal(t, 0, cmp(math.NaN(), -math.NaN()))
}
