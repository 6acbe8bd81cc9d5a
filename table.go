package quarry

import (
	"fmt"
	"reflect"

	"github.com/ridge/quarry/indices"
	"github.com/ridge/quarry/store"
	"go.uber.org/zap"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// InsertBehavior tells Insert what to do when the id is already taken
type InsertBehavior int

// InsertBehavior values
const (
	Overwrite InsertBehavior = iota // replace the stored value
	Return                          // keep the stored value, no error
	Error                           // fail with ErrDuplicateID
)

func (b InsertBehavior) String() string {
	switch b {
	case Overwrite:
		return "overwrite"
	case Return:
		return "return"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("InsertBehavior(%d)", int(b))
	}
}

// Config is the configuration of a Table
type Config struct {
	// OrderedStore makes query results and iteration come in ascending id
	// order. Otherwise they come in an unspecified but stable order.
	OrderedStore bool

	// Logger receives index maintenance messages at debug level and index
	// inconsistencies at error level. Can be nil.
	Logger *zap.Logger
}

// binding is a registered index together with the generator feeding it
type binding[T any] struct {
	index    indices.Dynamic
	ranged   indices.DynamicRange // nil for exact-match indexes
	generate func(T) (any, error)
}

// Table is an in-memory record store with secondary indexes.
//
// Records of type T are addressed by caller-chosen string ids. Each index
// derives one attribute from every record with its generator and maps
// attribute values to the ids carrying them. Query evaluates an AND/OR
// combination of index lookups.
//
// Do not use concurrently.
type Table[T any] struct {
	logger   *zap.Logger
	records  store.Store[T]
	bindings map[string]*binding[T] // exact and ordered alike
}

// New creates an empty table
func New[T any](config Config) *Table[T] {
	t := &Table[T]{
		logger:   config.Logger,
		bindings: map[string]*binding[T]{},
	}
	if t.logger == nil {
		t.logger = zap.NewNop()
	}
	if config.OrderedStore {
		t.records = store.NewOrdered[T]()
	} else {
		t.records = store.NewHash[T]()
	}
	return t
}

// Len returns the number of stored records
func (t *Table[T]) Len() int {
	return t.records.Len()
}

// IndexInfo describes a registered index
type IndexInfo struct {
	Name    string
	Ordered bool         // supports range queries
	Type    reflect.Type // attribute type
	Keys    int          // number of distinct attribute values
}

// Indexes lists the registered indexes sorted by name
func (t *Table[T]) Indexes() []IndexInfo {
	names := maps.Keys(t.bindings)
	slices.Sort(names)
	out := make([]IndexInfo, 0, len(names))
	for _, name := range names {
		b := t.bindings[name]
		out = append(out, IndexInfo{
			Name:    name,
			Ordered: b.ranged != nil,
			Type:    b.index.ValueType(),
			Keys:    b.index.Len(),
		})
	}
	return out
}

// rangeIndex looks name up among the ordered indexes only
func (t *Table[T]) rangeIndex(name string) (indices.DynamicRange, bool) {
	b, ok := t.bindings[name]
	if !ok || b.ranged == nil {
		return nil, false
	}
	return b.ranged, true
}

// attributes computes the attribute of value for every index. Nothing is
// modified, so a failing generator leaves the table intact.
func (t *Table[T]) attributes(value T) (map[string]any, error) {
	keys := make(map[string]any, len(t.bindings))
	for name, b := range t.bindings {
		key, err := b.generate(value)
		if err != nil {
			return nil, fmt.Errorf("generator for index %q: %w", name, err)
		}
		keys[name] = key
	}
	return keys, nil
}
