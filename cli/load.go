package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/ridge/parallel"
	"github.com/ridge/quarry"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"
)

// Record is a record of a data file: field names mapped to the values
// decoded from YAML
type Record map[string]any

type entry struct {
	id  string
	rec Record
}

// batch is the content of one data file
type batch struct {
	file  string
	keyed map[string]Record // the file is a mapping of ids to records
	list  []entry           // the file is a sequence of records
}

func (b batch) len() int {
	return len(b.keyed) + len(b.list)
}

func (b batch) insert(tbl *quarry.Table[Record], onDuplicate quarry.InsertBehavior) error {
	if b.keyed != nil {
		return tbl.InsertMany(b.keyed, onDuplicate)
	}
	for _, e := range b.list {
		if err := tbl.Insert(e.id, e.rec, onDuplicate); err != nil {
			return err
		}
	}
	return nil
}

// decode parses a data file. Records of a sequence take their id from the
// id field, or from newID if they have none.
func decode(data []byte, newID func() string) (batch, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return batch{}, err
	}

	switch doc := normalize(doc).(type) {
	case nil:
		return batch{}, nil
	case map[string]any:
		keyed := make(map[string]Record, len(doc))
		ids := maps.Keys(doc)
		slices.Sort(ids)
		for _, id := range ids {
			rec, ok := doc[id].(map[string]any)
			if !ok {
				return batch{}, fmt.Errorf("record %q is not a mapping", id)
			}
			keyed[id] = rec
		}
		return batch{keyed: keyed}, nil
	case []any:
		list := make([]entry, 0, len(doc))
		for i, v := range doc {
			rec, ok := v.(map[string]any)
			if !ok {
				return batch{}, fmt.Errorf("record #%d is not a mapping", i)
			}
			id := fmt.Sprint(rec["id"])
			if rec["id"] == nil {
				id = newID()
			}
			list = append(list, entry{id: id, rec: rec})
		}
		return batch{list: list}, nil
	default:
		return batch{}, fmt.Errorf("expected a mapping or a sequence of records, got %T", doc)
	}
}

// normalize turns the map[any]any yaml.v3 produces for mappings with
// non-string keys into map[string]any, recursively
func normalize(v any) any {
	switch v := v.(type) {
	case map[any]any:
		m := make(map[string]any, len(v))
		for k, x := range v {
			m[fmt.Sprint(k)] = normalize(x)
		}
		return m
	case map[string]any:
		for k, x := range v {
			v[k] = normalize(x)
		}
		return v
	case []any:
		for i, x := range v {
			v[i] = normalize(x)
		}
		return v
	default:
		return v
	}
}

// loadAll reads and decodes the data files concurrently. The batches come in
// the order of files.
func loadAll(ctx context.Context, files []string) ([]batch, error) {
	batches := make([]batch, len(files))
	err := parallel.Run(ctx, func(ctx context.Context, spawn parallel.SpawnFn) error {
		for i, file := range files {
			i, file := i, file
			spawn(file, parallel.Continue, func(ctx context.Context) error {
				data, err := os.ReadFile(file)
				if err != nil {
					return err
				}
				b, err := decode(data, uuid.NewString)
				if err != nil {
					return fmt.Errorf("%s: %w", file, err)
				}
				b.file = file
				batches[i] = b
				return nil
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return batches, nil
}
