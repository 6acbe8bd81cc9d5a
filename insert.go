package quarry

import (
	"fmt"

	"github.com/ridge/must/v2"
	"go.uber.org/zap"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Insert stores value under id. If id is taken, onDuplicate decides between
// replacing the value, doing nothing, and failing with ErrDuplicateID.
//
// All index attributes are computed before anything is changed, so a
// failing generator leaves the table as it was.
func (t *Table[T]) Insert(id string, value T, onDuplicate InsertBehavior) error {
	if id == "" {
		return ErrEmptyID
	}
	old, exists := t.records.Get(id)
	if exists {
		switch onDuplicate {
		case Overwrite:
		case Return:
			return nil
		case Error:
			return fmt.Errorf("%w: %q", ErrDuplicateID, id)
		default:
			panic(fmt.Errorf("unexpected insert behavior %s", onDuplicate))
		}
	}

	keys, err := t.attributes(value)
	if err != nil {
		return fmt.Errorf("inserting %q: %w", id, err)
	}
	if exists {
		oldKeys, err := t.attributes(old.Value)
		if err != nil {
			return fmt.Errorf("replacing %q: %w", id, err)
		}
		if err := t.unpost(id, old.Row, oldKeys); err != nil {
			return err
		}
	}

	rec := t.records.Put(id, value)
	for name, b := range t.bindings {
		// cannot fail: the generator is typed like the index
		must.OK(b.index.InsertAny(keys[name], rec.Row))
	}
	return nil
}

// InsertMany inserts records one by one in ascending id order.
//
// InsertMany is not atomic: if inserting one record fails, the records
// before it stay inserted and the ones after it are not attempted.
func (t *Table[T]) InsertMany(records map[string]T, onDuplicate InsertBehavior) error {
	ids := maps.Keys(records)
	slices.Sort(ids)
	for _, id := range ids {
		if err := t.Insert(id, records[id], onDuplicate); err != nil {
			return err
		}
	}
	return nil
}

// Remove deletes the record with the given id. A missing id is an
// ErrUnknownID error if errorOnMissing is set, and a no-op otherwise.
func (t *Table[T]) Remove(id string, errorOnMissing bool) error {
	rec, ok := t.records.Get(id)
	if !ok {
		if errorOnMissing {
			return fmt.Errorf("%w: %q", ErrUnknownID, id)
		}
		return nil
	}

	keys, err := t.attributes(rec.Value)
	if err != nil {
		return fmt.Errorf("removing %q: %w", id, err)
	}
	if err := t.unpost(id, rec.Row, keys); err != nil {
		return err
	}
	t.records.Delete(id)
	return nil
}

// unpost withdraws row from every index
func (t *Table[T]) unpost(id string, row uint32, keys map[string]any) error {
	for name, b := range t.bindings {
		if err := b.index.RemoveAny(keys[name], row); err != nil {
			t.logger.Error("Index does not match stored record",
				zap.String("index", name), zap.String("id", id), zap.Error(err))
			return fmt.Errorf("index %q, id %q: %w", name, id, err)
		}
	}
	return nil
}

// QueryByID returns the value stored under id
func (t *Table[T]) QueryByID(id string) (T, bool) {
	rec, ok := t.records.Get(id)
	return rec.Value, ok
}
