package dbm

// QueryRequest is an opaque parameterized statement template plus its
// ordered bind values, immutable once constructed.
type QueryRequest struct {
	sql  string
	args []any
}

// NewQuery builds a QueryRequest from a statement template and its bind
// values.
func NewQuery(sql string, args ...any) QueryRequest {
	return QueryRequest{sql: sql, args: append([]any(nil), args...)}
}

// SQL returns the statement template.
func (q QueryRequest) SQL() string {
	return q.sql
}

// Args returns a copy of the ordered bind values.
func (q QueryRequest) Args() []any {
	if len(q.args) == 0 {
		return nil
	}
	return append([]any(nil), q.args...)
}

// withKeyFilter returns a copy of the request with an appended WHERE clause
// restricting column to the given values. The values bind as one slice
// argument; executor adapters expand it into the IN list.
func (q QueryRequest) withKeyFilter(column string, values []any) QueryRequest {
	return QueryRequest{
		sql:  q.sql + " WHERE " + column + " IN (?)",
		args: append(q.Args(), values),
	}
}
