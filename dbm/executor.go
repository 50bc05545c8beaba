package dbm

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/Dilun7525/xr-tools-dbm/internal/bunexec"
)

// Executor runs statements against the backing relational engine. Query
// returns rows as column-name to value mappings with cells canonicalized to
// nil or string; Exec runs side-effect statements.
//
// Adapters must expand a slice bind value into a comma-separated list; the
// keyed fetch path relies on that to bind its appended IN filter.
type Executor interface {
	Query(ctx context.Context, query string, args ...any) ([]Row, error)
	Exec(ctx context.Context, query string, args ...any) (ExecResult, error)
}

// ExecResult reports the outcome of a side-effect statement.
type ExecResult struct {
	RowsAffected int64
	LastInsertID int64
}

// NewBunExecutor adapts a bun database handle to the Executor interface.
// Both *bun.DB and bun.Tx satisfy bun.IDB, so statements can also run inside
// a caller-managed transaction.
func NewBunExecutor(db bun.IDB) Executor {
	return bunExecutor{inner: bunexec.New(db)}
}

type bunExecutor struct {
	inner *bunexec.Adapter
}

func (e bunExecutor) Query(ctx context.Context, query string, args ...any) ([]Row, error) {
	return e.inner.Query(ctx, query, args...)
}

func (e bunExecutor) Exec(ctx context.Context, query string, args ...any) (ExecResult, error) {
	affected, lastID, err := e.inner.Exec(ctx, query, args...)
	if err != nil {
		return ExecResult{}, err
	}
	return ExecResult{RowsAffected: affected, LastInsertID: lastID}, nil
}
