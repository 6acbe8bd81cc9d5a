package cli

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ridge/quarry"
)

// Kind is the type of an attribute indexed from the command line
type Kind string

// Kind values
const (
	KindString Kind = "string"
	KindNumber Kind = "number"
	KindBool   Kind = "bool"
)

// Value is an attribute read from a record field. Missing and null fields
// are Null, which sorts before every other value.
type Value[A comparable] struct {
	Null bool
	V    A
}

func (v Value[A]) String() string {
	if v.Null {
		return "null"
	}
	return fmt.Sprint(v.V)
}

// literal parses a query literal into the attribute type of an index. An
// unquoted null is the Null value.
type literal func(lit string, quoted bool) (any, error)

type attr[A comparable] struct {
	convert func(raw any) (A, bool)
	parse   func(lit string) (A, error)
	cmp     func(a, b A) int
}

var (
	stringAttr = attr[string]{
		convert: func(raw any) (string, bool) {
			s, ok := raw.(string)
			return s, ok
		},
		parse: func(lit string) (string, error) { return lit, nil },
		cmp:   strings.Compare,
	}

	numberAttr = attr[float64]{
		convert: func(raw any) (float64, bool) {
			switch n := raw.(type) {
			case int:
				return float64(n), true
			case int64:
				return float64(n), true
			case uint64:
				return float64(n), true
			case float64:
				return n, true
			default:
				return 0, false
			}
		},
		parse: func(lit string) (float64, error) { return strconv.ParseFloat(lit, 64) },
		cmp: func(a, b float64) int {
			switch {
			case math.IsNaN(a) && math.IsNaN(b):
				return 0
			case math.IsNaN(a):
				return -1
			case math.IsNaN(b):
				return 1
			case a < b:
				return -1
			case a > b:
				return 1
			default:
				return 0
			}
		},
	}

	boolAttr = attr[bool]{
		convert: func(raw any) (bool, bool) {
			b, ok := raw.(bool)
			return b, ok
		},
		parse: strconv.ParseBool,
		cmp: func(a, b bool) int {
			switch {
			case a == b:
				return 0
			case b:
				return -1
			default:
				return 1
			}
		},
	}
)

func nullsFirst[A comparable](cmp func(a, b A) int) func(a, b Value[A]) int {
	return func(a, b Value[A]) int {
		switch {
		case a.Null && b.Null:
			return 0
		case a.Null:
			return -1
		case b.Null:
			return 1
		default:
			return cmp(a.V, b.V)
		}
	}
}

// addIndex registers the index described by def and returns the parser
// for its query literals
func addIndex(tbl *quarry.Table[Record], def IndexDef) (literal, error) {
	switch def.Kind {
	case KindString:
		return add(tbl, def, stringAttr)
	case KindNumber:
		return add(tbl, def, numberAttr)
	case KindBool:
		return add(tbl, def, boolAttr)
	default:
		return nil, fmt.Errorf("index %s: unknown type %q", def.Name, def.Kind)
	}
}

func add[A comparable](tbl *quarry.Table[Record], def IndexDef, a attr[A]) (literal, error) {
	gen := func(r Record) (Value[A], error) {
		raw, ok := r[def.Field]
		if !ok || raw == nil {
			return Value[A]{Null: true}, nil
		}
		v, ok := a.convert(raw)
		if !ok {
			return Value[A]{}, fmt.Errorf("field %s: %v is not a %s", def.Field, raw, def.Kind)
		}
		return Value[A]{V: v}, nil
	}

	var err error
	if def.Sorted {
		err = quarry.AddSortedIndex[Record, Value[A]](tbl, def.Name, gen, nullsFirst(a.cmp))
	} else {
		err = quarry.AddIndex[Record, Value[A]](tbl, def.Name, gen)
	}
	if err != nil {
		return nil, err
	}

	return func(lit string, quoted bool) (any, error) {
		if lit == "null" && !quoted {
			return Value[A]{Null: true}, nil
		}
		v, err := a.parse(lit)
		if err != nil {
			return nil, fmt.Errorf("index %s: %q is not a %s: %w", def.Name, lit, def.Kind, errors.Unwrap(err))
		}
		return Value[A]{V: v}, nil
	}, nil
}
