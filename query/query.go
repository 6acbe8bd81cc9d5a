// Package query describes lookups against a quarry table.
//
// A query is an immutable tree: Equals and Range leaves address one named
// index each, Merge nodes combine subqueries with AND or OR.
//
//	q := query.LessEqual("age", 28).And(query.Larger("weight", 70.0))
//
// Attribute values are carried as any and checked against the index type
// when the query is evaluated, so the type of a literal matters: an index on
// float64 does not match query.Equal("weight", 70).
package query

import (
	"fmt"
	"strings"
)

// Query is one of Equals, Range or Merge
type Query interface {
	fmt.Stringer
	// And returns the conjunction of this query and others
	And(others ...Query) Merge
	// Or returns the disjunction of this query and others
	Or(others ...Query) Merge

	isQuery()
}

// Kind is the operator of a Merge
type Kind int

// Kind values
const (
	AND Kind = iota
	OR
)

func (k Kind) String() string {
	switch k {
	case AND:
		return "AND"
	case OR:
		return "OR"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Equals matches records whose attribute in Index equals Value. Any index,
// exact or ordered, can answer it.
type Equals struct {
	Index string
	Value any
}

// Range matches records whose attribute in Index lies between Lower and
// Upper. Only ordered indexes can answer it. A nil bound leaves that side
// open: it extends to the smallest (largest) value present in the index.
type Range struct {
	Index     string
	Lower     any
	LowerIncl bool
	Upper     any
	UpperIncl bool
}

// Merge combines Subqueries. AND with no subqueries is invalid; OR with no
// subqueries matches nothing.
type Merge struct {
	Kind       Kind
	Subqueries []Query
}

func (Equals) isQuery() {}
func (Range) isQuery()  {}
func (Merge) isQuery()  {}

func (q Equals) String() string {
	return fmt.Sprintf("%s = %s", q.Index, literal(q.Value))
}

func (q Range) String() string {
	switch {
	case q.Lower == nil && q.Upper == nil:
		return fmt.Sprintf("%s = *", q.Index)
	case q.Lower == nil:
		return fmt.Sprintf("%s %s %s", q.Index, op("<", q.UpperIncl), literal(q.Upper))
	case q.Upper == nil:
		return fmt.Sprintf("%s %s %s", q.Index, op(">", q.LowerIncl), literal(q.Lower))
	default:
		return fmt.Sprintf("%s %s %s %s %s", literal(q.Lower), op("<", q.LowerIncl), q.Index, op("<", q.UpperIncl), literal(q.Upper))
	}
}

func (q Merge) String() string {
	parts := make([]string, 0, len(q.Subqueries))
	for _, sub := range q.Subqueries {
		s := sub.String()
		if m, ok := sub.(Merge); ok && m.Kind != q.Kind && len(m.Subqueries) > 1 {
			s = "(" + s + ")"
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, " "+q.Kind.String()+" ")
}

func op(base string, incl bool) string {
	if incl {
		return base + "="
	}
	return base
}

func literal(v any) string {
	if s, ok := v.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	return fmt.Sprintf("%v", v)
}
