package ingest

import (
	"context"
	"database/sql"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	_ "github.com/denisenkom/go-mssqldb" // MS SQL Server driver
	_ "github.com/go-sql-driver/mysql"   // MySQL driver
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	_ "modernc.org/sqlite"

	"github.com/ruslano69/gridcompare/pkg/core/table"
)

// ReadSQL runs query through a database/sql driver and collects the result
// set into a table named name. Column names become fields.
func ReadSQL(ctx context.Context, driver, dsn, name, query string) (*table.Table, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return QueryTable(ctx, db, name, query)
}

// QueryTable runs query on an open connection.
func QueryTable(ctx context.Context, db *sql.DB, name, query string) (*table.Table, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query %q: %w", name, err)
	}
	defer rows.Close()

	fields, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}

	var data [][]table.Value
	for rows.Next() {
		raw := make([]any, len(fields))
		ptrs := make([]any, len(fields))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		row := make([]table.Value, len(fields))
		for i, v := range raw {
			row[i] = convertValue(v)
		}
		data = append(data, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return table.New(name, fields, data)
}

// ReadPostgres uses the native pgx connection; pgx decodes numeric and
// temporal columns into Go types.
func ReadPostgres(ctx context.Context, dsn, name, query string) (*table.Table, error) {
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	defer conn.Close(ctx)

	rows, err := conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query %q: %w", name, err)
	}
	defer rows.Close()

	descs := rows.FieldDescriptions()
	fields := make([]string, len(descs))
	for i, d := range descs {
		fields[i] = d.Name
	}

	var data [][]table.Value
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}
		row := make([]table.Value, len(values))
		for i, v := range values {
			row[i] = convertValue(v)
		}
		data = append(data, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return table.New(name, fields, data)
}

// convertValue maps a driver value to a cell value
func convertValue(v any) table.Value {
	switch x := v.(type) {
	case nil:
		return table.Empty()
	case []byte:
		return table.Infer(string(x))
	case string:
		return table.Infer(x)
	case int64:
		return table.Integer(x)
	case int32:
		return table.Integer(int64(x))
	case int16:
		return table.Integer(int64(x))
	case int8:
		return table.Integer(int64(x))
	case int:
		return table.Integer(int64(x))
	case uint64:
		return table.Infer(strconv.FormatUint(x, 10))
	case uint32:
		return table.Integer(int64(x))
	case float64:
		return table.Number(x)
	case float32:
		return table.Number(float64(x))
	case bool:
		if x {
			return table.Text("TRUE")
		}
		return table.Text("FALSE")
	case time.Time:
		return table.Text(x.Format(time.RFC3339))
	case pgtype.Numeric:
		if !x.Valid {
			return table.Empty()
		}
		// целые NUMERIC/DECIMAL без потери точности
		if x.Int != nil && x.Exp >= 0 && !x.NaN && x.InfinityModifier == pgtype.Finite {
			scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(x.Exp)), nil)
			return table.Infer(new(big.Int).Mul(x.Int, scale).String())
		}
		f, err := x.Float64Value()
		if err != nil || !f.Valid {
			return table.Empty()
		}
		return table.Number(f.Float64)
	case fmt.Stringer:
		return table.Infer(x.String())
	default:
		return table.Infer(fmt.Sprint(x))
	}
}

// QuoteIdentifier quotes a possibly schema-qualified table name for kind.
func QuoteIdentifier(kind Kind, name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		switch kind {
		case KindMySQL:
			parts[i] = "`" + strings.ReplaceAll(p, "`", "``") + "`"
		case KindSQLServer:
			parts[i] = "[" + strings.ReplaceAll(p, "]", "]]") + "]"
		default:
			parts[i] = `"` + strings.ReplaceAll(p, `"`, `""`) + `"`
		}
	}
	return strings.Join(parts, ".")
}
