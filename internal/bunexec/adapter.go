// Package bunexec adapts an uptrace/bun database handle to the row-oriented
// executor shape the dbm package consumes.
package bunexec

import (
	"context"
	"fmt"
	"reflect"
	"strconv"
	"time"

	"github.com/uptrace/bun"
)

// Adapter runs raw statements through a bun handle and scans results into
// generic rows. Cells are canonicalized to nil or string so results survive
// cache round-trips unchanged.
type Adapter struct {
	db bun.IDB
}

// New creates an Adapter around the provided bun handle.
func New(db bun.IDB) *Adapter {
	return &Adapter{db: db}
}

// Query runs a statement and scans every result row into a column-keyed
// map. Slice and array bind values expand into comma-separated lists via
// bun.In.
func (a *Adapter) Query(ctx context.Context, query string, args ...any) ([]map[string]any, error) {
	rows, err := a.db.QueryContext(ctx, query, expandArgs(args)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out []map[string]any
	for rows.Next() {
		cells := make([]any, len(cols))
		dests := make([]any, len(cols))
		for i := range cells {
			dests[i] = &cells[i]
		}
		if err := rows.Scan(dests...); err != nil {
			return nil, err
		}
		row := make(map[string]any, len(cols))
		for i, col := range cols {
			row[col] = canonicalCell(cells[i])
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// Exec runs a side-effect statement and reports the affected row count and
// the last inserted id where the driver provides them.
func (a *Adapter) Exec(ctx context.Context, query string, args ...any) (int64, int64, error) {
	res, err := a.db.ExecContext(ctx, query, expandArgs(args)...)
	if err != nil {
		return 0, 0, err
	}
	var affected, lastID int64
	if n, err := res.RowsAffected(); err == nil {
		affected = n
	}
	if id, err := res.LastInsertId(); err == nil {
		lastID = id
	}
	return affected, lastID, nil
}

func expandArgs(args []any) []any {
	out := make([]any, len(args))
	for i, arg := range args {
		out[i] = expandArg(arg)
	}
	return out
}

func expandArg(arg any) any {
	switch arg.(type) {
	case nil, []byte:
		return arg
	}
	switch reflect.TypeOf(arg).Kind() {
	case reflect.Slice, reflect.Array:
		return bun.In(arg)
	}
	return arg
}

// canonicalCell maps a scanned database value onto the layer's canonical
// cell form: NULL stays nil, everything else becomes a string.
func canonicalCell(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case []byte:
		return string(t)
	case string:
		return t
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case time.Time:
		return t.UTC().Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(t)
	}
}
