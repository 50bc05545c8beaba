package dbm

import (
	"errors"
	"fmt"
)

// ErrNoIdentifiers is returned by the keyed fetch path when, after numeric
// gating, no identifiers remain to derive cache keys from.
var ErrNoIdentifiers = errors.New("dbm: no usable identifiers")

// QueryError wraps a failure from the backing query executor. Executor
// failures are always fatal to the call that issued them; cache failures
// never are.
type QueryError struct {
	Query string
	Err   error
}

// Error implements the error interface.
func (e *QueryError) Error() string {
	return fmt.Sprintf("query failed: %v (sql: %s)", e.Err, e.Query)
}

// Unwrap returns the underlying executor error.
func (e *QueryError) Unwrap() error {
	return e.Err
}
