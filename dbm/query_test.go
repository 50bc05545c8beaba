package dbm

import (
	"reflect"
	"testing"
)

func TestNewQuery_CopiesArgs(t *testing.T) {
	args := []any{1, "a"}
	q := NewQuery("SELECT * FROM t WHERE id = ? AND name = ?", args...)

	args[0] = 99
	got := q.Args()
	if got[0] != 1 || got[1] != "a" {
		t.Errorf("mutating the caller's slice must not change the request: %v", got)
	}
}

func TestQueryRequest_ArgsReturnsCopy(t *testing.T) {
	q := NewQuery("SELECT * FROM t WHERE id = ?", 1)

	first := q.Args()
	first[0] = 99
	second := q.Args()
	if second[0] != 1 {
		t.Errorf("mutating a returned copy must not change the request: %v", second)
	}
}

func TestQueryRequest_ArgsNilWhenEmpty(t *testing.T) {
	q := NewQuery("SELECT 1")
	if q.Args() != nil {
		t.Errorf("expected nil args, got %v", q.Args())
	}
}

func TestQueryRequest_WithKeyFilter(t *testing.T) {
	q := NewQuery("SELECT * FROM items")
	filtered := q.withKeyFilter("id", []any{3, 5})

	if filtered.SQL() != "SELECT * FROM items WHERE id IN (?)" {
		t.Errorf("unexpected SQL: %q", filtered.SQL())
	}

	args := filtered.Args()
	if len(args) != 1 {
		t.Fatalf("the values must bind as one slice argument, got %d args", len(args))
	}
	if !reflect.DeepEqual(args[0], []any{3, 5}) {
		t.Errorf("unexpected bound values: %v", args[0])
	}

	// The original request is untouched
	if q.SQL() != "SELECT * FROM items" || q.Args() != nil {
		t.Errorf("withKeyFilter must not modify the receiver: %q %v", q.SQL(), q.Args())
	}
}

func TestQueryRequest_WithKeyFilterKeepsExistingArgs(t *testing.T) {
	q := NewQuery("SELECT i.* FROM items i JOIN prices p ON p.item = i.id AND p.tier = ?", "gold")
	filtered := q.withKeyFilter("i.sku", []any{"a", "b"})

	if filtered.SQL() != "SELECT i.* FROM items i JOIN prices p ON p.item = i.id AND p.tier = ? WHERE i.sku IN (?)" {
		t.Errorf("unexpected SQL: %q", filtered.SQL())
	}
	args := filtered.Args()
	if len(args) != 2 || args[0] != "gold" {
		t.Fatalf("existing binds must come first: %v", args)
	}
	if !reflect.DeepEqual(args[1], []any{"a", "b"}) {
		t.Errorf("unexpected appended values: %v", args[1])
	}
}
