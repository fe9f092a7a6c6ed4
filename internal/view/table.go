// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of livetable

package view

import (
	"fmt"
	"sort"
	"sync"

	"github.com/derailed/tcell/v2"
	"github.com/derailed/tview"
	"github.com/fvbommel/sortorder"

	"github.com/livetable/livetable/internal/row"
)

type mark int

const (
	markNone mark = iota
	markCreated
	markUpdated
)

// LiveTable is a tview-backed table collaborator. The poll session
// patches it row by row; Redraw re-renders the widget.
type LiveTable struct {
	*tview.Table

	name     string
	keyField string
	rows     map[string]row.Row
	order    []string
	marks    map[string]mark
	teardown []func()
	drawer   func(render func())
	mx       sync.RWMutex
}

// NewLiveTable creates an empty live table keyed by keyField.
func NewLiveTable(name, keyField string) *LiveTable {
	t := &LiveTable{
		Table:    tview.NewTable(),
		name:     name,
		keyField: keyField,
		rows:     make(map[string]row.Row),
		marks:    make(map[string]mark),
	}

	t.SetBorder(true)
	t.SetBorderAttributes(tcell.AttrBold)
	t.SetBorderPadding(0, 0, 1, 1)
	t.SetBorderColor(tcell.ColorWhite)
	t.SetBackgroundColor(tcell.ColorDefault)
	t.SetFixed(1, 0)
	t.SetSelectable(true, false)
	t.SetTitle(fmt.Sprintf(" %s[0] ", name))

	return t
}

// SetDrawer routes render calls through the UI event loop. Without a
// drawer, rendering happens on the caller's goroutine.
func (t *LiveTable) SetDrawer(d func(render func())) {
	t.mx.Lock()
	defer t.mx.Unlock()
	t.drawer = d
}

// Snapshot implements poll.Table.
func (t *LiveTable) Snapshot() row.Collection {
	t.mx.RLock()
	defer t.mx.RUnlock()

	out := make(row.Collection, 0, len(t.order))
	for _, k := range t.order {
		out = append(out, t.rows[k].Clone())
	}
	return out
}

// RemoveRows implements poll.Table.
func (t *LiveTable) RemoveRows(keys []string) {
	t.mx.Lock()
	defer t.mx.Unlock()

	victims := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		victims[k] = struct{}{}
		delete(t.rows, k)
		delete(t.marks, k)
	}

	kept := t.order[:0]
	for _, k := range t.order {
		if _, gone := victims[k]; !gone {
			kept = append(kept, k)
		}
	}
	t.order = kept
}

// UpdateRow implements poll.Table.
func (t *LiveTable) UpdateRow(key string, r row.Row) {
	t.mx.Lock()
	defer t.mx.Unlock()

	if _, ok := t.rows[key]; !ok {
		return
	}
	t.rows[key] = r
	t.marks[key] = markUpdated
}

// AddRows implements poll.Table.
func (t *LiveTable) AddRows(rows row.Collection) {
	t.mx.Lock()
	defer t.mx.Unlock()

	for _, r := range rows {
		k, ok := r.Key(t.keyField)
		if !ok {
			continue
		}
		if _, exists := t.rows[k]; !exists {
			t.order = append(t.order, k)
		}
		t.rows[k] = r
		t.marks[k] = markCreated
	}
}

// ClearAndBulkInsert implements poll.Table.
func (t *LiveTable) ClearAndBulkInsert(rows row.Collection) {
	t.mx.Lock()
	defer t.mx.Unlock()

	t.rows = make(map[string]row.Row, len(rows))
	t.order = t.order[:0]
	t.marks = make(map[string]mark)

	for i, r := range rows {
		k, ok := r.Key(t.keyField)
		if !ok {
			// Keyless mode renders by position.
			k = fmt.Sprintf("#%d", i)
		}
		if _, exists := t.rows[k]; !exists {
			t.order = append(t.order, k)
		}
		t.rows[k] = r
	}
}

// Redraw implements poll.Table.
func (t *LiveTable) Redraw(resetPosition bool) {
	t.mx.RLock()
	drawer := t.drawer
	t.mx.RUnlock()

	render := func() { t.render(resetPosition) }
	if drawer != nil {
		drawer(render)
		return
	}
	render()
}

// OnTeardown implements poll.Table.
func (t *LiveTable) OnTeardown(fn func()) {
	t.mx.Lock()
	defer t.mx.Unlock()
	t.teardown = append(t.teardown, fn)
}

// Teardown fires the registered teardown hooks. Called once when the
// hosting view goes away.
func (t *LiveTable) Teardown() {
	t.mx.Lock()
	hooks := make([]func(), len(t.teardown))
	copy(hooks, t.teardown)
	t.teardown = nil
	t.mx.Unlock()

	for _, fn := range hooks {
		fn()
	}
}

// RowCount returns the number of data rows.
func (t *LiveTable) RowCount() int {
	t.mx.RLock()
	defer t.mx.RUnlock()
	return len(t.order)
}

// columns derives the header from the union of row fields, naturally
// sorted with the key field first.
func (t *LiveTable) columns() []string {
	fields := make(map[string]struct{})
	for _, r := range t.rows {
		for f := range r {
			fields[f] = struct{}{}
		}
	}
	delete(fields, t.keyField)

	cols := make([]string, 0, len(fields)+1)
	for f := range fields {
		cols = append(cols, f)
	}
	sort.Slice(cols, func(i, j int) bool {
		return sortorder.NaturalLess(cols[i], cols[j])
	})
	if t.keyField != "" {
		cols = append([]string{t.keyField}, cols...)
	}
	return cols
}

func (t *LiveTable) render(resetPosition bool) {
	t.mx.Lock()
	defer t.mx.Unlock()

	t.Clear()

	cols := t.columns()
	for c, name := range cols {
		cell := tview.NewTableCell(name)
		cell.SetTextColor(tcell.ColorYellow)
		cell.SetBackgroundColor(tcell.ColorDefault)
		cell.SetExpansion(1)
		cell.SetSelectable(false)
		t.SetCell(0, c, cell)
	}

	for i, k := range t.order {
		r := t.rows[k]
		color := t.rowColor(k)
		for c, name := range cols {
			text := "-"
			if v, ok := r[name]; ok && v != nil {
				text = row.KeyString(v)
			}
			cell := tview.NewTableCell(tview.Escape(text))
			cell.SetBackgroundColor(tcell.ColorDefault)
			cell.SetExpansion(1)
			cell.SetTextColor(color)
			if c == 0 {
				cell.SetReference(k)
			}
			t.SetCell(i+1, c, cell)
		}
	}

	// Flash colors last one render.
	t.marks = make(map[string]mark)

	t.SetTitle(fmt.Sprintf(" %s[%d] ", t.name, len(t.order)))

	if resetPosition && len(t.order) > 0 {
		t.Select(1, 0)
		t.ScrollToBeginning()
	}
}

func (t *LiveTable) rowColor(key string) tcell.Color {
	switch t.marks[key] {
	case markCreated:
		return tcell.ColorGreen
	case markUpdated:
		return tcell.ColorYellow
	default:
		return tcell.ColorWhite
	}
}
