package indices

import (
	"fmt"
	"reflect"
)

// Field extracts a named field from values of a struct type (or a pointer to
// a struct type)
type Field struct {
	Name  string
	Type  reflect.Type
	owner reflect.Type
	index []int
}

// FieldOf locates field name in owner. Fields of embedded structs are found
// too, but only exported fields can be indexed.
func FieldOf(owner reflect.Type, name string) (Field, error) {
	st := owner
	if st.Kind() == reflect.Ptr {
		st = st.Elem()
	}
	if st.Kind() != reflect.Struct {
		return Field{}, fmt.Errorf("%s is not a struct", owner)
	}
	sf, ok := st.FieldByName(name)
	if !ok {
		return Field{}, fmt.Errorf("field %s.%s not found", st, name)
	}
	if !sf.IsExported() {
		return Field{}, fmt.Errorf("field %s.%s is not exported", st, name)
	}
	return Field{Name: name, Type: sf.Type, owner: owner, index: sf.Index}, nil
}

// Extract returns the field value of obj, which must be of the owner type.
// Extracting from a nil pointer yields the zero value of the field.
func (f Field) Extract(obj any) any {
	v := reflect.ValueOf(obj)
	if v.Type() != f.owner {
		panic(fmt.Errorf("field %s: expected %s, got %s", f.Name, f.owner, v.Type()))
	}
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return reflect.Zero(f.Type).Interface()
		}
		v = v.Elem()
	}
	fv, err := v.FieldByIndexErr(f.index)
	if err != nil { // nil embedded pointer on the way
		return reflect.Zero(f.Type).Interface()
	}
	return fv.Interface()
}

// NewExactOf creates an exact-match index for attribute values of the
// runtime type t, which must be comparable. Pointers are compared by the
// values they point to, which must be comparable too.
func NewExactOf(t reflect.Type) (*Exact[any], error) {
	base := t
	for base.Kind() == reflect.Ptr {
		base = base.Elem()
	}
	if base.Kind() == reflect.Interface || !base.Comparable() {
		return nil, fmt.Errorf("type %s is not comparable", t)
	}
	e := NewExact[any]()
	e.typ = t
	if base != t {
		e.key = deref
	}
	return e, nil
}

// nilPointer is the key of a nil pointer found after following depth
// pointers
type nilPointer struct {
	depth int
}

func deref(v any) any {
	rv := reflect.ValueOf(v)
	for depth := 0; rv.Kind() == reflect.Ptr; depth++ {
		if rv.IsNil() {
			return nilPointer{depth: depth}
		}
		rv = rv.Elem()
	}
	return rv.Interface()
}

// NewOrderedOf creates an ordered index for attribute values of the runtime
// type t, sorted by KeyCompare
func NewOrderedOf(t reflect.Type) (*Ordered[any], error) {
	cmp, err := KeyCompare(t)
	if err != nil {
		return nil, err
	}
	o := NewOrdered(cmp)
	o.typ = t
	return o, nil
}
