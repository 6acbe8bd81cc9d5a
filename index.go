package quarry

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/ridge/must/v2"
	"github.com/ridge/quarry/indices"
	"github.com/ridge/quarry/store"
	"go.uber.org/zap"
	"golang.org/x/exp/constraints"
)

// Generator derives the attribute of a record an index is keyed by. It must
// be deterministic: removing a record recomputes the attribute to find the
// postings to withdraw.
type Generator[T, A any] func(T) (A, error)

// Pure makes a Generator from a function that cannot fail
func Pure[T, A any](fn func(T) A) Generator[T, A] {
	return func(v T) (A, error) {
		return fn(v), nil
	}
}

func (g Generator[T, A]) erase() func(T) (any, error) {
	return func(v T) (any, error) {
		return g(v)
	}
}

// AddIndex registers an exact-match index: one that answers query.Equal only.
// The index is filled from the records already stored.
func AddIndex[T any, A comparable](t *Table[T], name string, gen Generator[T, A]) error {
	if gen == nil {
		return errors.New("nil generator")
	}
	idx := indices.NewExact[A]()
	return t.register(name, indices.Erase[A](idx), nil, gen.erase())
}

// AddSortedIndex registers an ordered index sorted by cmp, which answers both
// query.Equal and range queries. Attribute values for which cmp returns 0 are
// the same key. The index is filled from the records already stored.
func AddSortedIndex[T, A any](t *Table[T], name string, gen Generator[T, A], cmp func(a, b A) int) error {
	if gen == nil {
		return errors.New("nil generator")
	}
	if cmp == nil {
		return errors.New("nil comparator")
	}
	idx := indices.NewOrdered(cmp)
	return t.register(name, indices.Erase[A](idx), indices.EraseRange[A](idx), gen.erase())
}

// AddOrderedIndex is AddSortedIndex with the natural order of A. NaN sorts
// before every other value.
func AddOrderedIndex[T any, A constraints.Ordered](t *Table[T], name string, gen Generator[T, A]) error {
	return AddSortedIndex(t, name, gen, compare[A])
}

// AddFieldIndex registers an exact-match index on a field of T, which must be
// a struct or a pointer to one. The attribute type is the field type.
func AddFieldIndex[T any](t *Table[T], name, field string) error {
	f, err := indices.FieldOf(typeOf[T](), field)
	if err != nil {
		return fmt.Errorf("index %q: %w", name, err)
	}
	idx, err := indices.NewExactOf(f.Type)
	if err != nil {
		return fmt.Errorf("index %q: %w", name, err)
	}
	return t.register(name, indices.Erase[any](idx), nil, extract[T](f))
}

// AddSortedFieldIndex registers an ordered index on a field of T. The field
// must be sortable (see indices.KeyCompare); nil pointers sort first.
func AddSortedFieldIndex[T any](t *Table[T], name, field string) error {
	f, err := indices.FieldOf(typeOf[T](), field)
	if err != nil {
		return fmt.Errorf("index %q: %w", name, err)
	}
	idx, err := indices.NewOrderedOf(f.Type)
	if err != nil {
		return fmt.Errorf("index %q: field %s: %w", name, field, err)
	}
	return t.register(name, indices.Erase[any](idx), indices.EraseRange[any](idx), extract[T](f))
}

// RemoveIndex drops an index and its generator
func (t *Table[T]) RemoveIndex(name string) error {
	if _, ok := t.bindings[name]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownIndex, name)
	}
	delete(t.bindings, name)
	t.logger.Debug("Index removed", zap.String("index", name))
	return nil
}

func (t *Table[T]) register(name string, index indices.Dynamic, ranged indices.DynamicRange, generate func(T) (any, error)) error {
	if _, ok := t.bindings[name]; ok {
		return fmt.Errorf("%w: %q", ErrIndexExists, name)
	}

	// The index is filled before it becomes visible, so that a failing
	// generator leaves nothing behind
	var err error
	t.records.All(func(rec store.Record[T]) bool {
		var key any
		key, err = generate(rec.Value)
		if err != nil {
			err = fmt.Errorf("index %q: generator failed on %q: %w", name, rec.ID, err)
			return false
		}
		must.OK(index.InsertAny(key, rec.Row))
		return true
	})
	if err != nil {
		return err
	}

	t.bindings[name] = &binding[T]{index: index, ranged: ranged, generate: generate}
	t.logger.Debug("Index added",
		zap.String("index", name),
		zap.Bool("ordered", ranged != nil),
		zap.Stringer("type", index.ValueType()),
		zap.Int("records", t.records.Len()),
		zap.Int("keys", index.Len()))
	return nil
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

func extract[T any](f indices.Field) func(T) (any, error) {
	return func(v T) (any, error) {
		return f.Extract(v), nil
	}
}

// compare orders NaN before every other value and equal to itself
func compare[A constraints.Ordered](a, b A) int {
	aNaN, bNaN := a != a, b != b
	switch {
	case aNaN && bNaN:
		return 0
	case aNaN:
		return -1
	case bNaN:
		return 1
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
