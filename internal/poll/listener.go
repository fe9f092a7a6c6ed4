package poll

import (
	"time"

	"github.com/livetable/livetable/internal/fetch"
	"github.com/livetable/livetable/internal/row"
)

// Listener observes session events. Every callback is scoped to the
// session it was registered on; nothing is dispatched globally.
type Listener interface {
	// SessionStarted notifies that scheduling began.
	SessionStarted()

	// TickSkipped notifies that a tick fired but no fetch was issued.
	TickSkipped(reason SkipReason)

	// FetchFailed notifies a classified fetch failure.
	FetchFailed(f *fetch.Failure)

	// ReconcileFailed notifies a structural error during reconciliation.
	ReconcileFailed(err error)

	// IntervalChanged notifies the scheduling interval changed.
	IntervalChanged(d time.Duration)

	// TimerCleared notifies the pending timer was cancelled.
	TimerCleared()

	// FetchAborted notifies an outstanding fetch was cancelled.
	FetchAborted()

	// PauseChanged notifies the paused flag flipped.
	PauseChanged(paused bool)

	// UpdateApplied notifies a patch was applied. The change set is nil
	// when the whole collection was replaced (keyless mode).
	UpdateApplied(cs *row.ChangeSet, raw []byte)

	// NoUpdate notifies a poll completed without changes.
	NoUpdate(raw []byte)
}

// Ensure ListenerFuncs implements Listener at compile time.
var _ Listener = (*ListenerFuncs)(nil)

// ListenerFuncs adapts individual functions to the Listener interface.
// Nil fields are no-ops.
type ListenerFuncs struct {
	OnSessionStarted  func()
	OnTickSkipped     func(reason SkipReason)
	OnFetchFailed     func(f *fetch.Failure)
	OnReconcileFailed func(err error)
	OnIntervalChanged func(d time.Duration)
	OnTimerCleared    func()
	OnFetchAborted    func()
	OnPauseChanged    func(paused bool)
	OnUpdateApplied   func(cs *row.ChangeSet, raw []byte)
	OnNoUpdate        func(raw []byte)
}

// SessionStarted implements Listener.
func (l *ListenerFuncs) SessionStarted() {
	if l.OnSessionStarted != nil {
		l.OnSessionStarted()
	}
}

// TickSkipped implements Listener.
func (l *ListenerFuncs) TickSkipped(reason SkipReason) {
	if l.OnTickSkipped != nil {
		l.OnTickSkipped(reason)
	}
}

// FetchFailed implements Listener.
func (l *ListenerFuncs) FetchFailed(f *fetch.Failure) {
	if l.OnFetchFailed != nil {
		l.OnFetchFailed(f)
	}
}

// ReconcileFailed implements Listener.
func (l *ListenerFuncs) ReconcileFailed(err error) {
	if l.OnReconcileFailed != nil {
		l.OnReconcileFailed(err)
	}
}

// IntervalChanged implements Listener.
func (l *ListenerFuncs) IntervalChanged(d time.Duration) {
	if l.OnIntervalChanged != nil {
		l.OnIntervalChanged(d)
	}
}

// TimerCleared implements Listener.
func (l *ListenerFuncs) TimerCleared() {
	if l.OnTimerCleared != nil {
		l.OnTimerCleared()
	}
}

// FetchAborted implements Listener.
func (l *ListenerFuncs) FetchAborted() {
	if l.OnFetchAborted != nil {
		l.OnFetchAborted()
	}
}

// PauseChanged implements Listener.
func (l *ListenerFuncs) PauseChanged(paused bool) {
	if l.OnPauseChanged != nil {
		l.OnPauseChanged(paused)
	}
}

// UpdateApplied implements Listener.
func (l *ListenerFuncs) UpdateApplied(cs *row.ChangeSet, raw []byte) {
	if l.OnUpdateApplied != nil {
		l.OnUpdateApplied(cs, raw)
	}
}

// NoUpdate implements Listener.
func (l *ListenerFuncs) NoUpdate(raw []byte) {
	if l.OnNoUpdate != nil {
		l.OnNoUpdate(raw)
	}
}
