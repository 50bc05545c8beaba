package dbm

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// Row is a result row keyed by column name. It is an alias, not a defined
// type, so rows decoded from cache payloads and rows scanned fresh from the
// database share one concrete shape and compare equal.
type Row = map[string]any

// IndexRows re-keys an ordered row sequence by the given column's value.
// It fails when the column name is empty or any row lacks the column; a
// sequence that cannot be keyed completely cannot be keyed at all.
func IndexRows(rows []Row, column string) (map[string]Row, error) {
	if column == "" {
		return nil, fmt.Errorf("index rows: empty column name")
	}
	indexed := make(map[string]Row, len(rows))
	for i, row := range rows {
		v, ok := row[column]
		if !ok {
			return nil, fmt.Errorf("index rows: row %d has no column %q", i, column)
		}
		indexed[cellString(v)] = row
	}
	return indexed, nil
}

// GroupRows buckets rows by the given column's value. Processing stops at
// the first row missing the grouping column; the groups accumulated up to
// that point are returned as-is.
//
// With a projection, each unit keeps only the listed columns as a sub-row.
// With collapse set, the first projected column present in a row contributes
// its bare value instead and the remaining projected columns are ignored for
// that row; a row carrying none of the projected columns contributes an
// empty sub-row.
func GroupRows(rows []Row, column string, projection []string, collapse bool) map[string][]any {
	groups := make(map[string][]any)
	for _, row := range rows {
		v, ok := row[column]
		if !ok {
			break
		}
		key := cellString(v)
		groups[key] = append(groups[key], groupUnit(row, projection, collapse))
	}
	return groups
}

func groupUnit(row Row, projection []string, collapse bool) any {
	if len(projection) == 0 {
		return row
	}
	if collapse {
		for _, col := range projection {
			if v, ok := row[col]; ok {
				return v
			}
		}
		return Row{}
	}
	sub := make(Row, len(projection))
	for _, col := range projection {
		if v, ok := row[col]; ok {
			sub[col] = v
		}
	}
	return sub
}

// cellString renders a row cell or a caller-supplied identifier in its
// canonical string form. Executor adapters already store cells as nil or
// string; everything else is formatted exactly the way the adapters format
// it at scan time, so identifiers and cells for the same value always agree.
func cellString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.FormatInt(int64(t), 10)
	case int8:
		return strconv.FormatInt(int64(t), 10)
	case int16:
		return strconv.FormatInt(int64(t), 10)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case int64:
		return strconv.FormatInt(t, 10)
	case uint:
		return strconv.FormatUint(uint64(t), 10)
	case uint8:
		return strconv.FormatUint(uint64(t), 10)
	case uint16:
		return strconv.FormatUint(uint64(t), 10)
	case uint32:
		return strconv.FormatUint(uint64(t), 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case float32:
		return strconv.FormatFloat(float64(t), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case time.Time:
		return t.UTC().Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(v)
	}
}

// isNumeric reports whether an identifier passes the loose numeric check
// used by the keyed path gate. Integer and float syntax pass; Inf and NaN
// spellings do not.
func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return false
	}
	return !math.IsInf(f, 0) && !math.IsNaN(f)
}
