// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of livetable

package view

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/wI2L/jsondiff"

	"github.com/livetable/livetable/internal/fetch"
	"github.com/livetable/livetable/internal/poll"
	"github.com/livetable/livetable/internal/row"
)

// Printer is a headless table collaborator: it keeps the row state in
// memory and emits one JSON line per session event, making the CLI
// scriptable without a terminal UI.
type Printer struct {
	keyField string
	out      io.Writer
	rows     map[string]row.Row
	order    []string
	teardown []func()
	mx       sync.Mutex
}

// Ensure Printer satisfies both collaborator contracts.
var (
	_ poll.Table    = (*Printer)(nil)
	_ poll.Listener = (*Printer)(nil)
)

// NewPrinter creates a headless collaborator writing to out.
func NewPrinter(out io.Writer, keyField string) *Printer {
	return &Printer{
		keyField: keyField,
		out:      out,
		rows:     make(map[string]row.Row),
	}
}

// Snapshot implements poll.Table.
func (p *Printer) Snapshot() row.Collection {
	p.mx.Lock()
	defer p.mx.Unlock()

	out := make(row.Collection, 0, len(p.order))
	for _, k := range p.order {
		out = append(out, p.rows[k])
	}
	return out
}

// RemoveRows implements poll.Table.
func (p *Printer) RemoveRows(keys []string) {
	p.mx.Lock()
	defer p.mx.Unlock()

	victims := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		victims[k] = struct{}{}
		delete(p.rows, k)
	}
	kept := p.order[:0]
	for _, k := range p.order {
		if _, gone := victims[k]; !gone {
			kept = append(kept, k)
		}
	}
	p.order = kept
}

// UpdateRow implements poll.Table.
func (p *Printer) UpdateRow(key string, r row.Row) {
	p.mx.Lock()
	defer p.mx.Unlock()
	if _, ok := p.rows[key]; ok {
		p.rows[key] = r
	}
}

// AddRows implements poll.Table.
func (p *Printer) AddRows(rows row.Collection) {
	p.mx.Lock()
	defer p.mx.Unlock()

	for _, r := range rows {
		k, ok := r.Key(p.keyField)
		if !ok {
			continue
		}
		if _, exists := p.rows[k]; !exists {
			p.order = append(p.order, k)
		}
		p.rows[k] = r
	}
}

// ClearAndBulkInsert implements poll.Table.
func (p *Printer) ClearAndBulkInsert(rows row.Collection) {
	p.mx.Lock()
	defer p.mx.Unlock()

	p.rows = make(map[string]row.Row, len(rows))
	p.order = p.order[:0]
	for i, r := range rows {
		k, ok := r.Key(p.keyField)
		if !ok {
			k = fmt.Sprintf("#%d", i)
		}
		if _, exists := p.rows[k]; !exists {
			p.order = append(p.order, k)
		}
		p.rows[k] = r
	}
}

// Redraw implements poll.Table. There is nothing to render headless.
func (p *Printer) Redraw(_ bool) {}

// OnTeardown implements poll.Table.
func (p *Printer) OnTeardown(fn func()) {
	p.mx.Lock()
	defer p.mx.Unlock()
	p.teardown = append(p.teardown, fn)
}

// Teardown fires the registered teardown hooks.
func (p *Printer) Teardown() {
	p.mx.Lock()
	hooks := make([]func(), len(p.teardown))
	copy(hooks, p.teardown)
	p.teardown = nil
	p.mx.Unlock()

	for _, fn := range hooks {
		fn()
	}
}

type event struct {
	Event   string                    `json:"event"`
	At      time.Time                 `json:"at"`
	Reason  string                    `json:"reason,omitempty"`
	Error   string                    `json:"error,omitempty"`
	Created row.Collection            `json:"created,omitempty"`
	Deleted []string                  `json:"deleted,omitempty"`
	Updated map[string]row.Row        `json:"updated,omitempty"`
	Deltas  map[string]jsondiff.Patch `json:"deltas,omitempty"`
	Rows    int                       `json:"rows,omitempty"`
}

func (p *Printer) emit(e event) {
	e.At = time.Now()
	line, err := json.Marshal(e)
	if err != nil {
		return
	}
	p.mx.Lock()
	fmt.Fprintln(p.out, string(line))
	p.mx.Unlock()
}

// SessionStarted implements poll.Listener.
func (p *Printer) SessionStarted() {
	p.emit(event{Event: "started"})
}

// TickSkipped implements poll.Listener.
func (p *Printer) TickSkipped(reason poll.SkipReason) {
	p.emit(event{Event: "skipped", Reason: string(reason)})
}

// FetchFailed implements poll.Listener.
func (p *Printer) FetchFailed(f *fetch.Failure) {
	p.emit(event{Event: "failure", Reason: string(f.Category), Error: f.Error()})
}

// ReconcileFailed implements poll.Listener.
func (p *Printer) ReconcileFailed(err error) {
	p.emit(event{Event: "reconcile-failed", Error: err.Error()})
}

// IntervalChanged implements poll.Listener.
func (p *Printer) IntervalChanged(d time.Duration) {
	p.emit(event{Event: "interval-changed", Reason: d.String()})
}

// TimerCleared implements poll.Listener.
func (p *Printer) TimerCleared() {
	p.emit(event{Event: "timer-cleared"})
}

// FetchAborted implements poll.Listener.
func (p *Printer) FetchAborted() {
	p.emit(event{Event: "fetch-aborted"})
}

// PauseChanged implements poll.Listener.
func (p *Printer) PauseChanged(paused bool) {
	if paused {
		p.emit(event{Event: "paused"})
		return
	}
	p.emit(event{Event: "resumed"})
}

// UpdateApplied implements poll.Listener.
func (p *Printer) UpdateApplied(cs *row.ChangeSet, _ []byte) {
	if cs == nil {
		p.emit(event{Event: "reloaded", Rows: len(p.Snapshot())})
		return
	}
	p.emit(event{
		Event:   "update",
		Created: cs.Created,
		Deleted: cs.Deleted,
		Updated: cs.Updated,
		Deltas:  cs.Deltas,
	})
}

// NoUpdate implements poll.Listener.
func (p *Printer) NoUpdate(_ []byte) {
	p.emit(event{Event: "no-update"})
}
