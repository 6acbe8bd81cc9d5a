package store

import (
	"encoding/binary"
	"errors"

	"github.com/hashicorp/go-memdb"
)

const (
	tableName = "records"
	indexID   = "id" // this is the constant primary index name expected by memdb
	indexRow  = "row"
)

type keyed interface {
	key() (string, uint32)
}

func schema() *memdb.DBSchema {
	return &memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			tableName: {
				Name: tableName,
				Indexes: map[string]*memdb.IndexSchema{
					indexID: {
						Name:    indexID,
						Unique:  true,
						Indexer: idIndexer{},
					},
					indexRow: {
						Name:    indexRow,
						Unique:  true,
						Indexer: rowIndexer{},
					},
				},
			},
		},
	}
}

type idIndexer struct{}

func (idIndexer) FromArgs(args ...any) ([]byte, error) {
	if len(args) != 1 {
		return nil, errors.New("id index expects exactly one argument")
	}
	id, ok := args[0].(string)
	if !ok {
		return nil, errors.New("id index expects a string")
	}
	return []byte(id + "\x00"), nil
}

func (idIndexer) FromObject(obj any) (bool, []byte, error) {
	id, _ := obj.(keyed).key()
	return true, []byte(id + "\x00"), nil
}

type rowIndexer struct{}

func rowKey(row uint32) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], row)
	return b[:]
}

func (rowIndexer) FromArgs(args ...any) ([]byte, error) {
	if len(args) != 1 {
		return nil, errors.New("row index expects exactly one argument")
	}
	row, ok := args[0].(uint32)
	if !ok {
		return nil, errors.New("row index expects a uint32")
	}
	return rowKey(row), nil
}

func (rowIndexer) FromObject(obj any) (bool, []byte, error) {
	_, row := obj.(keyed).key()
	return true, rowKey(row), nil
}
