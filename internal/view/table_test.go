// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of livetable

package view

import (
	"reflect"
	"testing"

	"github.com/livetable/livetable/internal/row"
)

func TestLiveTablePatchLifecycle(t *testing.T) {
	lt := NewLiveTable("pods", "id")

	lt.AddRows(row.Collection{
		{"id": 1, "name": "A"},
		{"id": 2, "name": "B"},
	})
	if lt.RowCount() != 2 {
		t.Fatalf("rows = %d, want 2", lt.RowCount())
	}

	lt.UpdateRow("1", row.Row{"id": 1, "name": "A2"})
	lt.RemoveRows([]string{"2"})
	lt.AddRows(row.Collection{{"id": 3, "name": "C"}})
	lt.Redraw(true)

	snap := lt.Snapshot()
	want := row.Collection{
		{"id": 1, "name": "A2"},
		{"id": 3, "name": "C"},
	}
	if !reflect.DeepEqual(snap, want) {
		t.Errorf("snapshot = %v, want %v", snap, want)
	}
}

func TestLiveTableUpdateUnknownKeyIsNoop(t *testing.T) {
	lt := NewLiveTable("pods", "id")
	lt.AddRows(row.Collection{{"id": 1}})

	lt.UpdateRow("99", row.Row{"id": 99})
	if lt.RowCount() != 1 {
		t.Errorf("rows = %d, want 1", lt.RowCount())
	}
	if _, ok := lt.rows["99"]; ok {
		t.Error("unknown key must not be inserted by UpdateRow")
	}
}

func TestLiveTableAddRowsSkipsKeylessRows(t *testing.T) {
	lt := NewLiveTable("pods", "id")
	lt.AddRows(row.Collection{
		{"id": 1},
		{"name": "no key"},
	})
	if lt.RowCount() != 1 {
		t.Errorf("rows = %d, want 1", lt.RowCount())
	}
}

func TestLiveTableClearAndBulkInsert(t *testing.T) {
	lt := NewLiveTable("pods", "id")
	lt.AddRows(row.Collection{{"id": 1}, {"id": 2}})

	lt.ClearAndBulkInsert(row.Collection{{"id": 7, "name": "X"}})
	if lt.RowCount() != 1 {
		t.Fatalf("rows = %d, want 1", lt.RowCount())
	}
	snap := lt.Snapshot()
	if snap[0]["id"] != 7 {
		t.Errorf("snapshot = %v", snap)
	}
}

func TestLiveTableKeylessBulkInsertUsesPositions(t *testing.T) {
	lt := NewLiveTable("out", "")
	lt.ClearAndBulkInsert(row.Collection{
		{"name": "A"},
		{"name": "B"},
	})
	if lt.RowCount() != 2 {
		t.Fatalf("rows = %d, want 2", lt.RowCount())
	}
	if !reflect.DeepEqual(lt.order, []string{"#0", "#1"}) {
		t.Errorf("order = %v, want positional keys", lt.order)
	}
}

func TestLiveTableColumns(t *testing.T) {
	lt := NewLiveTable("pods", "id")
	lt.AddRows(row.Collection{
		{"id": 1, "zone": "a", "name": "A"},
		{"id": 2, "age": 3},
	})

	got := lt.columns()
	want := []string{"id", "age", "name", "zone"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("columns = %v, want key first then natural order %v", got, want)
	}
}

func TestLiveTableTeardownFiresOnce(t *testing.T) {
	lt := NewLiveTable("pods", "id")
	var fired int
	lt.OnTeardown(func() { fired++ })

	lt.Teardown()
	lt.Teardown()
	if fired != 1 {
		t.Errorf("teardown fired %d times, want 1", fired)
	}
}

func TestLiveTableDrawerRoutesRender(t *testing.T) {
	lt := NewLiveTable("pods", "id")
	var routed bool
	lt.SetDrawer(func(render func()) {
		routed = true
		render()
	})

	lt.AddRows(row.Collection{{"id": 1}})
	lt.Redraw(false)
	if !routed {
		t.Error("render did not go through the drawer")
	}
}
