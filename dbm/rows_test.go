package dbm

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/Dilun7525/xr-tools-dbm/pkg/testsupport"
)

func TestIndexRows(t *testing.T) {
	users := userFixture(t)

	indexed, err := IndexRows(users, "id")
	if err != nil {
		t.Fatalf("IndexRows failed: %v", err)
	}
	if len(indexed) != len(users) {
		t.Fatalf("expected %d entries, got %d", len(users), len(indexed))
	}
	if !reflect.DeepEqual(indexed["2"], users[1]) {
		t.Errorf("entry for id 2 mismatch: got %v, want %v", indexed["2"], users[1])
	}

	byEmail, err := IndexRows(users, "email")
	if err != nil {
		t.Fatalf("IndexRows by email failed: %v", err)
	}
	if byEmail["jane@example.com"]["id"] != "2" {
		t.Errorf("re-key by email picked wrong row: %v", byEmail["jane@example.com"])
	}
}

func TestIndexRows_EmptyColumn(t *testing.T) {
	if _, err := IndexRows([]Row{{"id": "1"}}, ""); err == nil {
		t.Error("expected error for empty column name")
	}
}

func TestIndexRows_MissingColumn(t *testing.T) {
	rows := []Row{
		{"id": "1", "name": "a"},
		{"name": "b"},
	}
	_, err := IndexRows(rows, "id")
	if err == nil {
		t.Fatal("expected error for row missing the index column")
	}
	if !strings.Contains(err.Error(), "row 1") {
		t.Errorf("error should name the offending row, got %q", err.Error())
	}
}

func TestIndexRows_Empty(t *testing.T) {
	indexed, err := IndexRows(nil, "id")
	if err != nil {
		t.Fatalf("IndexRows on empty input failed: %v", err)
	}
	if len(indexed) != 0 {
		t.Errorf("expected empty map, got %v", indexed)
	}
}

func TestGroupRows(t *testing.T) {
	perms := testsupport.LoadRows(t, testsupport.FixturePath("permissions.json"))

	groups := GroupRows(perms, "user_id", nil, false)
	if len(groups) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(groups))
	}
	if len(groups["1"]) != 2 {
		t.Errorf("expected 2 rows for user 1, got %d", len(groups["1"]))
	}
	if !reflect.DeepEqual(groups["1"][0], perms[0]) {
		t.Errorf("without projection a unit is the full row: got %v", groups["1"][0])
	}
}

func TestGroupRows_Projection(t *testing.T) {
	perms := testsupport.LoadRows(t, testsupport.FixturePath("permissions.json"))

	groups := GroupRows(perms, "user_id", []string{"perm", "scope"}, false)
	want := Row{"perm": "read", "scope": "org"}
	if !reflect.DeepEqual(groups["2"][0], want) {
		t.Errorf("projected unit mismatch: got %v, want %v", groups["2"][0], want)
	}
}

func TestGroupRows_Collapse(t *testing.T) {
	perms := testsupport.LoadRows(t, testsupport.FixturePath("permissions.json"))

	groups := GroupRows(perms, "user_id", []string{"perm"}, true)
	if !reflect.DeepEqual(groups["1"], []any{"read", "write"}) {
		t.Errorf("collapsed units should be bare values: got %v", groups["1"])
	}

	// A row carrying none of the projected columns collapses to an empty row
	rows := []Row{{"user_id": "9", "other": "x"}}
	groups = GroupRows(rows, "user_id", []string{"perm"}, true)
	if !reflect.DeepEqual(groups["9"][0], Row{}) {
		t.Errorf("expected empty row unit, got %v", groups["9"][0])
	}
}

func TestGroupRows_StopsAtMissingColumn(t *testing.T) {
	rows := []Row{
		{"user_id": "1", "perm": "read"},
		{"perm": "write"},
		{"user_id": "2", "perm": "read"},
	}
	groups := GroupRows(rows, "user_id", nil, false)
	if len(groups) != 1 {
		t.Errorf("grouping should stop at the first row missing the column, got %v", groups)
	}
	if len(groups["1"]) != 1 {
		t.Errorf("groups accumulated before the stop are kept: got %v", groups["1"])
	}
}

func TestCellString(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"string", "abc", "abc"},
		{"bytes", []byte("xyz"), "xyz"},
		{"bool", true, "true"},
		{"int", 7, "7"},
		{"int64", int64(-42), "-42"},
		{"uint", uint(9), "9"},
		{"float64", 1.5, "1.5"},
		{"float64 integral", float64(3), "3"},
		{"time", ts, "2024-03-01T12:30:00Z"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := cellString(tc.in); got != tc.want {
				t.Errorf("cellString(%v) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestIsNumeric(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"7", true},
		{"007", true},
		{"-12", true},
		{"3.14", true},
		{"1e3", true},
		{"", false},
		{"abc", false},
		{"12abc", false},
		{"NaN", false},
		{"Inf", false},
		{"+Inf", false},
	}

	for _, tc := range tests {
		if got := isNumeric(tc.in); got != tc.want {
			t.Errorf("isNumeric(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
