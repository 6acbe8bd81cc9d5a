package indices

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"reflect"
	"time"
)

// An encoder serializes a value to a byte sequence whose lexicographical
// order is the natural order of the values
type encoder func(reflect.Value) []byte

// IndexKey is an interface that can be implemented to make any type sortable
// by KeyCompare. IndexKey must be a pure function; the second return value
// reports whether the value is nonzero.
type IndexKey interface {
	IndexKey() ([]byte, bool)
}

var indexKeyInterface = reflect.TypeOf((*IndexKey)(nil)).Elem()

var timeType = reflect.TypeOf(time.Time{})

var unixSecondsOffset = time.Time{}.Unix()

func encoderFor(t reflect.Type) encoder {
	if t.Implements(indexKeyInterface) {
		return func(v reflect.Value) []byte {
			b, _ := v.Interface().(IndexKey).IndexKey()
			return b
		}
	}
	if t == timeType {
		return func(v reflect.Value) []byte {
			// Seconds since time.Time{} (64 bits) followed by nanoseconds
			// (32 bits): UnixNano overflows for the zero time.
			b := make([]byte, 12)
			t := v.Interface().(time.Time)
			binary.BigEndian.PutUint64(b[:8], uint64(t.Unix()-unixSecondsOffset))
			binary.BigEndian.PutUint32(b[8:], uint32(t.Nanosecond()))
			return b
		}
	}
	switch t.Kind() {
	case reflect.Bool:
		return func(v reflect.Value) []byte {
			if v.Bool() {
				return []byte{1}
			}
			return []byte{0}
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		offset := 8 - t.Size()
		return func(v reflect.Value) []byte {
			var b [8]byte
			binary.BigEndian.PutUint64(b[:], v.Uint())
			return b[offset:]
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		offset := 8 - t.Size()
		return func(v reflect.Value) []byte {
			var b [8]byte
			binary.BigEndian.PutUint64(b[:], uint64(v.Int()))
			// inverting the sign bit makes the serializations sort naturally
			b[offset] ^= 0x80
			return b[offset:]
		}
	case reflect.Float32, reflect.Float64:
		return func(v reflect.Value) []byte {
			var b [8]byte
			f := v.Float()
			if math.IsNaN(f) {
				return b[:] // every NaN is one key, below -Inf
			}
			bits := math.Float64bits(f)
			if bits&(1<<63) != 0 {
				bits = ^bits // negative: reverse the order of magnitudes
			} else {
				bits |= 1 << 63
			}
			binary.BigEndian.PutUint64(b[:], bits)
			return b[:]
		}
	case reflect.String:
		return func(v reflect.Value) []byte {
			return []byte(v.String() + "\x00")
		}
	case reflect.Ptr:
		elem := encoderFor(t.Elem())
		if elem == nil {
			return nil
		}
		// nil sorts before every non-nil pointer
		return func(v reflect.Value) []byte {
			if v.IsNil() {
				return []byte{}
			}
			return append([]byte{1}, elem(v.Elem())...)
		}
	default:
		return nil
	}
}

// KeyCompare returns a comparator for values of type t, which must be
// sortable: a boolean, integer, float, string, time.Time, a type implementing
// IndexKey, a named type based on one of those, or a pointer to a sortable
// type. Nil pointers sort first.
//
// The comparator panics if passed values of any other type.
func KeyCompare(t reflect.Type) (func(a, b any) int, error) {
	enc := encoderFor(t)
	if enc == nil {
		return nil, fmt.Errorf("type %s is not sortable", t)
	}
	return func(a, b any) int {
		return bytes.Compare(enc(valueOf(t, a)), enc(valueOf(t, b)))
	}, nil
}

func valueOf(t reflect.Type, x any) reflect.Value {
	if x == nil {
		return reflect.Zero(t)
	}
	v := reflect.ValueOf(x)
	if v.Type() != t {
		panic(fmt.Errorf("comparator for %s called with %s", t, v.Type()))
	}
	return v
}
