package query

// Equal matches records whose attribute in index equals value
func Equal(index string, value any) Equals {
	return Equals{Index: index, Value: value}
}

// Between matches records whose attribute in index lies between lower and
// upper. Pass nil for a bound to leave the side open.
func Between(index string, lower any, lowerIncl bool, upper any, upperIncl bool) Range {
	return Range{Index: index, Lower: lower, LowerIncl: lowerIncl, Upper: upper, UpperIncl: upperIncl}
}

// Less matches attribute < value
func Less(index string, value any) Range {
	return Between(index, nil, true, value, false)
}

// LessEqual matches attribute <= value
func LessEqual(index string, value any) Range {
	return Between(index, nil, true, value, true)
}

// Larger matches attribute > value
func Larger(index string, value any) Range {
	return Between(index, value, false, nil, true)
}

// LargerEqual matches attribute >= value
func LargerEqual(index string, value any) Range {
	return Between(index, value, true, nil, true)
}

// And returns the conjunction of queries. If the first query is itself an
// AND merge, the rest are appended to it instead of nesting.
func And(first Query, rest ...Query) Merge {
	return merge(AND, first, rest)
}

// Or returns the disjunction of queries. If the first query is itself an OR
// merge, the rest are appended to it instead of nesting.
func Or(first Query, rest ...Query) Merge {
	return merge(OR, first, rest)
}

func merge(kind Kind, first Query, rest []Query) Merge {
	if m, ok := first.(Merge); ok && m.Kind == kind {
		subs := make([]Query, 0, len(m.Subqueries)+len(rest))
		subs = append(subs, m.Subqueries...)
		return Merge{Kind: kind, Subqueries: append(subs, rest...)}
	}
	subs := make([]Query, 0, 1+len(rest))
	subs = append(subs, first)
	return Merge{Kind: kind, Subqueries: append(subs, rest...)}
}

// And implements Query
func (q Equals) And(others ...Query) Merge { return merge(AND, q, others) }

// Or implements Query
func (q Equals) Or(others ...Query) Merge { return merge(OR, q, others) }

// And implements Query
func (q Range) And(others ...Query) Merge { return merge(AND, q, others) }

// Or implements Query
func (q Range) Or(others ...Query) Merge { return merge(OR, q, others) }

// And implements Query
func (q Merge) And(others ...Query) Merge { return merge(AND, q, others) }

// Or implements Query
func (q Merge) Or(others ...Query) Merge { return merge(OR, q, others) }
