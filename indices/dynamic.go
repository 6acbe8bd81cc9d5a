package indices

import (
	"reflect"

	"github.com/RoaringBitmap/roaring/v2"
)

// Dynamic is the type-erased face of an Index, for callers that only have
// attribute values as any. Every method checks the value against ValueType
// and returns a *TypeMismatchError instead of touching the index if it does
// not match.
type Dynamic interface {
	ValueType() reflect.Type
	Len() int
	InsertAny(value any, row uint32) error
	RemoveAny(value any, row uint32) error
	QueryEqualsAny(value any) (*roaring.Bitmap, error)
}

// DynamicRange is the type-erased face of a RangeIndex. A nil bound means
// the side is unbounded.
type DynamicRange interface {
	Dynamic
	QueryIntervalAny(lower any, lowerIncl bool, upper any, upperIncl bool) (*roaring.Bitmap, error)
}

// Erase wraps an index into its dynamic face
func Erase[A any](idx Index[A]) Dynamic {
	return erased[A]{idx: idx}
}

// EraseRange wraps an ordered index into its dynamic face
func EraseRange[A any](idx RangeIndex[A]) DynamicRange {
	return erasedRange[A]{erased: erased[A]{idx: idx}, ridx: idx}
}

// cast checks value against the index type. Indexes created with a runtime
// type (NewExactOf, NewOrderedOf) are stricter than their type parameter.
// Untyped nil is the nil value of pointer and interface index types.
func cast[A any](idx Index[A], value any) (A, error) {
	t := idx.ValueType()
	if value == nil {
		switch t.Kind() {
		case reflect.Interface:
			var zero A
			return zero, nil
		case reflect.Ptr:
			value = reflect.Zero(t).Interface()
		}
	}
	v, ok := value.(A)
	if ok && t != typeOf[A]() && reflect.TypeOf(value) != t {
		ok = false
	}
	if !ok {
		var zero A
		return zero, mismatch(value, t)
	}
	return v, nil
}

type erased[A any] struct {
	idx Index[A]
}

func (e erased[A]) ValueType() reflect.Type {
	return e.idx.ValueType()
}

func (e erased[A]) Len() int {
	return e.idx.Len()
}

func (e erased[A]) InsertAny(value any, row uint32) error {
	v, err := cast(e.idx, value)
	if err != nil {
		return err
	}
	e.idx.Insert(v, row)
	return nil
}

func (e erased[A]) RemoveAny(value any, row uint32) error {
	v, err := cast(e.idx, value)
	if err != nil {
		return err
	}
	return e.idx.Remove(v, row)
}

func (e erased[A]) QueryEqualsAny(value any) (*roaring.Bitmap, error) {
	v, err := cast(e.idx, value)
	if err != nil {
		return nil, err
	}
	return e.idx.QueryEquals(v), nil
}

type erasedRange[A any] struct {
	erased[A]
	ridx RangeIndex[A]
}

func bound[A any](idx Index[A], value any) (*A, error) {
	if value == nil {
		return nil, nil
	}
	v, err := cast(idx, value)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (e erasedRange[A]) QueryIntervalAny(lower any, lowerIncl bool, upper any, upperIncl bool) (*roaring.Bitmap, error) {
	lo, err := bound[A](e.ridx, lower)
	if err != nil {
		return nil, err
	}
	hi, err := bound[A](e.ridx, upper)
	if err != nil {
		return nil, err
	}
	return e.ridx.QueryInterval(lo, lowerIncl, hi, upperIncl), nil
}
