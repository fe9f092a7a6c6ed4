// Package poll owns the polling state machine: scheduling, gating,
// reconciliation of fetched payloads against the last rendered
// snapshot, and the notification surface bridging to the host table.
package poll

import (
	"errors"
	"time"

	"github.com/livetable/livetable/internal/fetch"
	"github.com/livetable/livetable/internal/row"
)

// State is the session's scheduling state.
type State int

const (
	// StateIdle means no timer is armed and no fetch is outstanding.
	StateIdle State = iota
	// StateScheduled means a timer is pending.
	StateScheduled
	// StateFetching means a request is outstanding.
	StateFetching
	// StateStopped is terminal until Start is called again.
	StateStopped
)

// String returns a printable state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateScheduled:
		return "scheduled"
	case StateFetching:
		return "fetching"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// SkipReason explains why a tick was skipped.
type SkipReason string

const (
	// SkipPaused means the session's pause gate was closed.
	SkipPaused SkipReason = "paused"
	// SkipFetchInProgress means a fetch was already outstanding.
	SkipFetchInProgress SkipReason = "fetch-in-progress"
)

// Sentinel errors returned by ForceReload.
var (
	ErrStopped          = errors.New("session is stopped")
	ErrOutstandingFetch = errors.New("a fetch is already outstanding")
)

// Status records the outcome of the most recent completed fetch.
type Status struct {
	OK      bool
	Failure *fetch.Failure
	At      time.Time
}

// Stats carries per-session tick counters.
type Stats struct {
	Ticks    uint64
	Skips    uint64
	Failures uint64
	Updates  uint64
}

// Table is the host table collaborator the session patches. All calls
// happen from the session's tick processing, one at a time.
type Table interface {
	// Snapshot returns the collection currently rendered, used to prime
	// the session's first comparison.
	Snapshot() row.Collection

	// RemoveRows deletes rows by key string.
	RemoveRows(keys []string)

	// UpdateRow replaces the row stored under key.
	UpdateRow(key string, r row.Row)

	// AddRows appends new rows in order.
	AddRows(rows row.Collection)

	// ClearAndBulkInsert replaces the whole table content. Used only in
	// keyless mode where no row-level patch is possible.
	ClearAndBulkInsert(rows row.Collection)

	// Redraw re-renders the table, optionally resetting its position.
	Redraw(resetPosition bool)

	// OnTeardown registers a callback invoked when the table goes away.
	OnTeardown(fn func())
}
