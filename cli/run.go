package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ridge/quarry"
	"github.com/ridge/quarry/query"
	"github.com/ridge/quarry/run"
	"github.com/ridge/quarry/tlog"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

// ExitNotUnique is the exit code of a --unique query matching zero or
// several records
const ExitNotUnique = 3

// Config describes a quarry invocation
type Config struct {
	Data        []string // data files, loaded in order
	Ordered     bool     // output in id order
	Indexes     []IndexDef
	Where       []string // query expressions, combined with AND
	Any         bool     // combine Where with OR instead
	Unique      bool
	OnDuplicate quarry.InsertBehavior
	Output      io.Writer
}

// IndexDef describes an index built from a record field
type IndexDef struct {
	Name   string
	Field  string
	Kind   Kind
	Sorted bool // answers range queries
}

// ParseIndexDef parses NAME:FIELD:TYPE[:sorted]. An empty FIELD is NAME.
func ParseIndexDef(s string) (IndexDef, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 3 || len(parts) > 4 || parts[0] == "" {
		return IndexDef{}, fmt.Errorf("index %q: expected NAME:FIELD:TYPE[:sorted]", s)
	}
	def := IndexDef{Name: parts[0], Field: parts[1], Kind: Kind(parts[2])}
	if def.Field == "" {
		def.Field = def.Name
	}
	switch def.Kind {
	case KindString, KindNumber, KindBool:
	default:
		return IndexDef{}, fmt.Errorf("index %q: unknown type %q", s, parts[2])
	}
	if len(parts) == 4 {
		if parts[3] != "sorted" {
			return IndexDef{}, fmt.Errorf("index %q: unknown option %q", s, parts[3])
		}
		def.Sorted = true
	}
	return def, nil
}

type behaviorFlag quarry.InsertBehavior

func (f *behaviorFlag) String() string {
	return quarry.InsertBehavior(*f).String()
}

func (f *behaviorFlag) Set(s string) error {
	for _, b := range []quarry.InsertBehavior{quarry.Overwrite, quarry.Return, quarry.Error} {
		if b.String() == s {
			*f = behaviorFlag(b)
			return nil
		}
	}
	return fmt.Errorf("expected overwrite, return or error, got %q", s)
}

func (f *behaviorFlag) Type() string {
	return "behavior"
}

type exitError struct {
	error
	code int
}

func (e exitError) Unwrap() error {
	return e.error
}

func (e exitError) ExitCode() int {
	return e.code
}

// Main handles the command line and runs the tool. The command line is
// os.Args, which run.Tool also reads for the logging flags.
func Main() {
	config, err := parseFlags(pflag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	config.Output = os.Stdout

	run.Tool(func(ctx context.Context) error {
		return Run(ctx, config)
	})
}

// parseFlags registers the tool flags on fs and parses args into a Config
func parseFlags(fs *pflag.FlagSet, args []string) (Config, error) {
	var config Config
	var indexes []string
	onDuplicate := behaviorFlag(quarry.Error)
	fs.StringArrayVar(&config.Data, "data", nil, "YAML or JSON data file (can be repeated)")
	fs.BoolVar(&config.Ordered, "ordered", false, "Output records in id order")
	fs.StringArrayVar(&indexes, "index", nil, "Index NAME:FIELD:TYPE[:sorted] with TYPE string, number or bool (can be repeated)")
	fs.StringArrayVar(&config.Where, "where", nil, "Query expression (can be repeated)")
	fs.BoolVar(&config.Any, "any", false, "Match any --where expression instead of all")
	fs.BoolVar(&config.Unique, "unique", false, "Fail unless exactly one record matches")
	fs.Var(&onDuplicate, "on-duplicate", "Handling of a repeated id (overwrite|return|error)")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	for _, s := range indexes {
		def, err := ParseIndexDef(s)
		if err != nil {
			return Config{}, err
		}
		config.Indexes = append(config.Indexes, def)
	}
	config.OnDuplicate = quarry.InsertBehavior(onDuplicate)
	return config, nil
}

// Run loads the data files, builds the indexes and prints the records
// matching the query. Without a query it prints a summary of the indexes.
func Run(ctx context.Context, config Config) error {
	logger := tlog.Get(ctx)
	tbl := quarry.New[Record](quarry.Config{OrderedStore: config.Ordered, Logger: logger.Named("table")})

	batches, err := loadAll(ctx, config.Data)
	if err != nil {
		return err
	}
	for _, b := range batches {
		if err := b.insert(tbl, config.OnDuplicate); err != nil {
			return fmt.Errorf("%s: %w", b.file, err)
		}
		logger.Info("Loaded data file", zap.String("file", b.file), zap.Int("records", b.len()))
	}

	literals := map[string]literal{}
	for _, def := range config.Indexes {
		parse, err := addIndex(tbl, def)
		if err != nil {
			return err
		}
		literals[def.Name] = parse
	}

	if len(config.Where) == 0 {
		return describe(config.Output, tbl)
	}

	q, err := buildQuery(config.Where, config.Any, literals)
	if err != nil {
		return err
	}
	logger.Debug("Running query", zap.Stringer("query", q))

	if config.Unique {
		id, err := tbl.QueryUniqueID(q)
		if errors.Is(err, quarry.ErrNonUniqueResult) {
			return exitError{error: err, code: ExitNotUnique}
		}
		if err != nil {
			return err
		}
		rec, _ := tbl.QueryByID(id)
		return printRecord(config.Output, id, rec)
	}

	ids, err := tbl.QueryIDs(q)
	if err != nil {
		return err
	}
	for _, id := range ids {
		rec, _ := tbl.QueryByID(id)
		if err := printRecord(config.Output, id, rec); err != nil {
			return err
		}
	}
	logger.Debug("Query done", zap.Int("matches", len(ids)))
	return nil
}

func buildQuery(where []string, anyOf bool, literals map[string]literal) (query.Query, error) {
	qs := make([]query.Query, 0, len(where))
	for _, expr := range where {
		q, err := parseWhere(expr, literals)
		if err != nil {
			return nil, err
		}
		qs = append(qs, q)
	}
	switch {
	case len(qs) == 1:
		return qs[0], nil
	case anyOf:
		return query.Or(qs[0], qs[1:]...), nil
	default:
		return query.And(qs[0], qs[1:]...), nil
	}
}

func printRecord(w io.Writer, id string, rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("record %q: %w", id, err)
	}
	_, err = fmt.Fprintf(w, "%s\t%s\n", id, data)
	return err
}

func describe(w io.Writer, tbl *quarry.Table[Record]) error {
	if _, err := fmt.Fprintf(w, "records\t%d\n", tbl.Len()); err != nil {
		return err
	}
	for _, info := range tbl.Indexes() {
		kind := "exact"
		if info.Ordered {
			kind = "sorted"
		}
		if _, err := fmt.Fprintf(w, "%s\t%s\t%d keys\n", info.Name, kind, info.Keys); err != nil {
			return err
		}
	}
	return nil
}
