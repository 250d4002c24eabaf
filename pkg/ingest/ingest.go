// Package ingest turns a source location into a table.Table.
//
// A location is a file path (.csv, .tsv, .txt, .xlsx) or a database URL
// (sqlite://, postgres://, mysql://, sqlserver://). For databases the table
// is named by the URL fragment (#orders) or replaced by Options.Query.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ruslano69/gridcompare/pkg/core/table"
)

// ErrUnsupportedSource - location has neither a known extension nor a known scheme.
var ErrUnsupportedSource = errors.New("unsupported source")

// Options tune how a location is read.
type Options struct {
	// Sheet selects the worksheet of an .xlsx source (default: first sheet).
	Sheet string
	// Table selects the database table when the URL has no fragment.
	Table string
	// Query replaces "SELECT * FROM <table>" for database sources.
	Query string
	// Comma overrides the detected CSV delimiter.
	Comma rune
	// Normalizer is applied to every value after reading.
	Normalizer *Normalizer
}

// Kind of source, resolved from the location.
type Kind string

const (
	KindCSV       Kind = "csv"
	KindXLSX      Kind = "xlsx"
	KindSQLite    Kind = "sqlite"
	KindPostgres  Kind = "postgres"
	KindMySQL     Kind = "mysql"
	KindSQLServer Kind = "sqlserver"
)

// Detect resolves the source kind of a location.
func Detect(location string) (Kind, error) {
	if scheme, _, ok := strings.Cut(location, "://"); ok {
		switch strings.ToLower(scheme) {
		case "sqlite":
			return KindSQLite, nil
		case "postgres", "postgresql":
			return KindPostgres, nil
		case "mysql":
			return KindMySQL, nil
		case "sqlserver", "mssql":
			return KindSQLServer, nil
		}
		return "", fmt.Errorf("%w: scheme %q", ErrUnsupportedSource, scheme)
	}

	switch strings.ToLower(filepath.Ext(location)) {
	case ".csv", ".tsv", ".txt":
		return KindCSV, nil
	case ".xlsx", ".xlsm":
		return KindXLSX, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedSource, location)
}

// Open reads the location into a table.
func Open(ctx context.Context, location string, opts Options) (*table.Table, error) {
	kind, err := Detect(location)
	if err != nil {
		return nil, err
	}

	var t *table.Table
	switch kind {
	case KindCSV:
		t, err = readCSVFile(location, opts.Comma)
	case KindXLSX:
		t, err = ReadXLSX(location, opts.Sheet)
	default:
		t, err = openDatabase(ctx, kind, location, opts)
	}
	if err != nil {
		return nil, err
	}

	if opts.Normalizer != nil {
		t = opts.Normalizer.Apply(t)
	}
	return t, nil
}

func readCSVFile(path string, comma rune) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	if comma == 0 {
		comma = commaFor(path)
	}
	return ReadCSV(f, filepath.Base(path), comma)
}

func openDatabase(ctx context.Context, kind Kind, location string, opts Options) (*table.Table, error) {
	dsn, fragment, _ := strings.Cut(location, "#")
	tableName := opts.Table
	if fragment != "" {
		tableName = fragment
	}

	query := opts.Query
	if query != "" {
		if err := ValidateQuery(query); err != nil {
			return nil, err
		}
	} else {
		if tableName == "" {
			return nil, fmt.Errorf("%s source needs a table (#name) or a query", kind)
		}
		query = "SELECT * FROM " + QuoteIdentifier(kind, tableName)
	}

	name := tableName
	if name == "" {
		name = "query"
	}

	switch kind {
	case KindPostgres:
		return ReadPostgres(ctx, dsn, name, query)
	case KindSQLite:
		return ReadSQL(ctx, "sqlite", sqliteDSN(dsn), name, query)
	case KindMySQL:
		return ReadSQL(ctx, "mysql", strings.TrimPrefix(dsn, "mysql://"), name, query)
	case KindSQLServer:
		return ReadSQL(ctx, "sqlserver", sqlServerDSN(dsn), name, query)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedSource, kind)
}

// sqliteDSN strips the scheme: sqlite://data/app.db -> data/app.db
func sqliteDSN(dsn string) string {
	_, path, _ := strings.Cut(dsn, "://")
	return path
}

func sqlServerDSN(dsn string) string {
	if strings.HasPrefix(dsn, "mssql://") {
		return "sqlserver://" + strings.TrimPrefix(dsn, "mssql://")
	}
	return dsn
}
