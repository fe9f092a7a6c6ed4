package poll

import (
	"context"
	"sync"
	"time"

	"github.com/livetable/livetable/internal/config"
	"github.com/livetable/livetable/internal/fetch"
	"github.com/livetable/livetable/internal/payload"
	"github.com/livetable/livetable/internal/row"
)

// Session drives periodic re-polling for one table. Every tick fetches
// the endpoint, reconciles the payload against the last rendered
// snapshot and applies the minimal patch to the table collaborator.
// Ticks are fully serialized: at most one fetch is outstanding and the
// next timer is armed only after the current tick's outcome has been
// processed.
type Session struct {
	opts    config.Options
	fetcher fetch.Fetcher
	table   Table

	mx           sync.RWMutex
	state        State
	paused       bool
	inflight     bool
	timer        *time.Timer
	interval     time.Duration
	baseInterval time.Duration
	snapshot     row.Collection
	last         *Status
	cancelFetch  context.CancelFunc
	listeners    []Listener
	stats        Stats
}

// NewSession builds a session over the given fetcher and table. The
// options are resolved once here; configuration problems surface as a
// ConfigurationError before any timer is armed.
func NewSession(opts config.Options, f fetch.Fetcher, t Table) (*Session, error) {
	resolved, err := opts.Resolve()
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, &config.ConfigurationError{Reason: "table has no network data source"}
	}
	if t == nil {
		return nil, &config.ConfigurationError{Reason: "no table collaborator"}
	}

	s := &Session{
		opts:         resolved,
		fetcher:      f,
		table:        t,
		state:        StateIdle,
		interval:     resolved.Interval,
		baseInterval: resolved.Interval,
		snapshot:     t.Snapshot(),
	}

	if resolved.OnUpdate != nil || resolved.OnNoUpdate != nil {
		s.listeners = append(s.listeners, &ListenerFuncs{
			OnUpdateApplied: resolved.OnUpdate,
			OnNoUpdate:      resolved.OnNoUpdate,
		})
	}

	// The teardown hook is scoped to this session only.
	t.OnTeardown(func() {
		s.Stop(true)
	})

	return s, nil
}

// AddListener registers a session listener.
func (s *Session) AddListener(l Listener) {
	s.mx.Lock()
	defer s.mx.Unlock()
	s.listeners = append(s.listeners, l)
}

// RemoveListener unregisters a session listener.
func (s *Session) RemoveListener(l Listener) {
	s.mx.Lock()
	defer s.mx.Unlock()

	for i, listener := range s.listeners {
		if listener == l {
			s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
			return
		}
	}
}

// Start begins scheduling. It is a no-op when the session is already
// scheduled or fetching; after a stop it re-arms the timer.
func (s *Session) Start() {
	s.mx.Lock()
	if s.state == StateScheduled || s.state == StateFetching {
		s.mx.Unlock()
		return
	}
	s.state = StateScheduled
	s.armLocked(s.nextIntervalLocked())
	s.mx.Unlock()

	s.notify(nil, func(l Listener) { l.SessionStarted() })
}

// State returns the current scheduling state.
func (s *Session) State() State {
	s.mx.RLock()
	defer s.mx.RUnlock()
	return s.state
}

// Stats returns the session's tick counters.
func (s *Session) Stats() Stats {
	s.mx.RLock()
	defer s.mx.RUnlock()
	return s.stats
}

// IsPaused reports the explicit paused flag.
func (s *Session) IsPaused() bool {
	s.mx.RLock()
	defer s.mx.RUnlock()
	return s.paused
}

// Pause closes the pause gate. Ticks keep firing but are skipped.
func (s *Session) Pause() {
	s.setPaused(true)
}

// Resume opens the pause gate.
func (s *Session) Resume() {
	s.setPaused(false)
}

// TogglePause flips the pause gate and returns the new value.
func (s *Session) TogglePause() bool {
	s.mx.Lock()
	s.paused = !s.paused
	paused := s.paused
	s.mx.Unlock()

	s.notify(nil, func(l Listener) { l.PauseChanged(paused) })
	return paused
}

func (s *Session) setPaused(paused bool) {
	s.mx.Lock()
	if s.paused == paused {
		s.mx.Unlock()
		return
	}
	s.paused = paused
	s.mx.Unlock()

	s.notify(nil, func(l Listener) { l.PauseChanged(paused) })
}

// LastFetchStatus returns the most recent completed fetch outcome.
// The second return is false until a fetch has completed.
func (s *Session) LastFetchStatus() (Status, bool) {
	s.mx.RLock()
	defer s.mx.RUnlock()
	if s.last == nil {
		return Status{}, false
	}
	return *s.last, true
}

// AbortFetch cancels the outstanding fetch, if any. Scheduling is not
// affected.
func (s *Session) AbortFetch() {
	s.mx.Lock()
	cancel := s.cancelFetch
	s.cancelFetch = nil
	s.mx.Unlock()

	if cancel != nil {
		cancel()
		s.notify(nil, func(l Listener) { l.FetchAborted() })
	}
}

// Stop cancels the timer permanently; a later Start re-arms it. When
// alsoAbort is set an outstanding fetch is cancelled as well. A fetch
// that completes after Stop is discarded before touching the table.
func (s *Session) Stop(alsoAbort bool) {
	s.mx.Lock()
	if s.state == StateStopped {
		s.mx.Unlock()
		return
	}
	s.state = StateStopped
	timerCleared := s.clearTimerLocked()
	var cancel context.CancelFunc
	if alsoAbort {
		cancel = s.cancelFetch
		s.cancelFetch = nil
	}
	s.mx.Unlock()

	if cancel != nil {
		cancel()
		s.notify(nil, func(l Listener) { l.FetchAborted() })
	}
	if timerCleared {
		s.notify(nil, func(l Listener) { l.TimerCleared() })
	}
}

// SetInterval changes the scheduling interval. A non-positive value
// resets to the initially configured interval. With applyNow, a
// pending timer is cancelled and re-armed with the new interval;
// otherwise the change takes effect at the next natural reschedule.
func (s *Session) SetInterval(d time.Duration, applyNow bool) {
	s.mx.Lock()
	if d <= 0 {
		d = s.baseInterval
	}
	d = config.ClampInterval(d)
	s.interval = d
	if applyNow && s.state == StateScheduled {
		s.clearTimerLocked()
		s.armLocked(d)
	}
	s.mx.Unlock()

	s.notify(nil, func(l Listener) { l.IntervalChanged(d) })
}

// ForceReload attempts one fetch immediately, bypassing the paused
// gate but not the single-outstanding-fetch rule. Extra listeners
// observe this tick only, in addition to persistent listeners.
func (s *Session) ForceReload(ctx context.Context, extra ...Listener) error {
	return s.runTick(ctx, tickForced, extra)
}

// tickMode distinguishes timer-driven ticks from forced reloads.
type tickMode int

const (
	tickTimer tickMode = iota
	tickForced
)

// tick is the timer callback.
func (s *Session) tick() {
	_ = s.runTick(context.Background(), tickTimer, nil)
}

func (s *Session) runTick(ctx context.Context, mode tickMode, extra []Listener) error {
	s.mx.Lock()
	if s.state == StateStopped {
		s.mx.Unlock()
		return ErrStopped
	}

	if s.inflight {
		s.stats.Skips++
		if mode == tickTimer {
			s.armLocked(s.nextIntervalLocked())
		}
		s.mx.Unlock()
		s.notify(extra, func(l Listener) { l.TickSkipped(SkipFetchInProgress) })
		if mode == tickForced {
			return ErrOutstandingFetch
		}
		return nil
	}

	paused := s.paused || (s.opts.PauseFn != nil && s.opts.PauseFn())
	if paused && mode == tickTimer {
		s.stats.Skips++
		s.armLocked(s.nextIntervalLocked())
		s.mx.Unlock()
		s.notify(extra, func(l Listener) { l.TickSkipped(SkipPaused) })
		return nil
	}

	prev := s.state
	s.state = StateFetching
	s.inflight = true
	s.stats.Ticks++
	fctx, cancel := context.WithCancel(ctx)
	s.cancelFetch = cancel
	snapshot := s.snapshot
	s.mx.Unlock()

	body, err := s.fetcher.Fetch(fctx)
	cancel()

	s.mx.Lock()
	s.cancelFetch = nil
	if s.state == StateStopped {
		// Stopped while the request was outstanding: a late result must
		// never reach the table.
		s.inflight = false
		s.mx.Unlock()
		return ErrStopped
	}
	s.mx.Unlock()

	if err != nil {
		return s.completeFailure(mode, prev, extra, fetch.Classify(err))
	}
	return s.completeSuccess(mode, prev, extra, snapshot, body)
}

// completeFailure routes a classified failure through the abort policy
// and restores scheduling.
func (s *Session) completeFailure(mode tickMode, prev State, extra []Listener, f *fetch.Failure) error {
	s.mx.Lock()
	s.inflight = false
	s.stats.Failures++
	s.last = &Status{Failure: f, At: time.Now()}
	abort := s.opts.AbortOn.Has(f.Category)
	timerCleared := false
	if abort {
		s.state = StateStopped
		timerCleared = s.clearTimerLocked()
	} else {
		s.rescheduleLocked(mode, prev)
	}
	s.mx.Unlock()

	s.notify(extra, func(l Listener) { l.FetchFailed(f) })
	if timerCleared {
		s.notify(extra, func(l Listener) { l.TimerCleared() })
	}
	return f
}

// completeSuccess extracts the payload, reconciles it against the
// snapshot and applies the resulting patch.
func (s *Session) completeSuccess(mode tickMode, prev State, extra []Listener, snapshot row.Collection, body []byte) error {
	cur, err := payload.Extract(body, s.opts.DataSourceField)
	if err != nil {
		return s.completeFailure(mode, prev, extra, fetch.Classify(err))
	}

	if s.opts.RowKeyField == "" {
		return s.applyKeyless(mode, prev, extra, snapshot, cur, body)
	}

	cs, err := row.Reconcile(snapshot, cur, s.opts.RowKeyField)
	if err != nil {
		// Wrong row key configuration. The tick halts here but the
		// loop continues; this is a caller bug, not a fetch failure.
		s.finishTick(mode, prev, true, nil)
		s.notify(extra, func(l Listener) { l.ReconcileFailed(err) })
		return err
	}

	if cs == nil {
		s.finishTick(mode, prev, true, nil)
		s.notify(extra, func(l Listener) { l.NoUpdate(body) })
		return nil
	}

	// Deletions first so a reused key never collides with a creation
	// within the same tick.
	s.table.RemoveRows(cs.Deleted)
	for key, r := range cs.Updated {
		s.table.UpdateRow(key, r)
	}
	s.table.AddRows(cs.Created)
	s.table.Redraw(s.opts.ResetPagingOnUpdate)

	s.finishTick(mode, prev, true, cur)
	s.notify(extra, func(l Listener) { l.UpdateApplied(cs, body) })
	return nil
}

// applyKeyless falls back to whole-collection comparison when no row
// key is configured.
func (s *Session) applyKeyless(mode tickMode, prev State, extra []Listener, snapshot, cur row.Collection, body []byte) error {
	if collectionsEqual(snapshot, cur) {
		s.finishTick(mode, prev, true, nil)
		s.notify(extra, func(l Listener) { l.NoUpdate(body) })
		return nil
	}

	s.table.ClearAndBulkInsert(cur)
	s.table.Redraw(s.opts.ResetPagingOnUpdate)

	s.finishTick(mode, prev, true, cur)
	s.notify(extra, func(l Listener) { l.UpdateApplied(nil, body) })
	return nil
}

// finishTick records the fetch outcome, replaces the snapshot when one
// is given and restores scheduling.
func (s *Session) finishTick(mode tickMode, prev State, ok bool, newSnapshot row.Collection) {
	s.mx.Lock()
	s.inflight = false
	s.last = &Status{OK: ok, At: time.Now()}
	if newSnapshot != nil {
		s.snapshot = newSnapshot
		s.stats.Updates++
	}
	s.rescheduleLocked(mode, prev)
	s.mx.Unlock()
}

// rescheduleLocked restores the state machine after tick processing.
// Timer ticks re-arm; forced ticks restore the pre-tick state and
// leave any pending timer alone.
func (s *Session) rescheduleLocked(mode tickMode, prev State) {
	if s.state == StateStopped {
		return
	}
	if mode == tickTimer {
		s.state = StateScheduled
		s.armLocked(s.nextIntervalLocked())
		return
	}
	s.state = prev
}

// armLocked arms the tick timer. Callers hold mx.
func (s *Session) armLocked(d time.Duration) {
	if s.state == StateStopped {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(d, s.tick)
}

// clearTimerLocked cancels the pending timer. Callers hold mx.
func (s *Session) clearTimerLocked() bool {
	if s.timer == nil {
		return false
	}
	s.timer.Stop()
	s.timer = nil
	return true
}

func (s *Session) nextIntervalLocked() time.Duration {
	if s.opts.IntervalFn != nil {
		return config.ClampInterval(s.opts.IntervalFn())
	}
	return s.interval
}

// notify fans an event out to persistent listeners plus any per-tick
// extras. The listener slice is copied under the read lock; callbacks
// run without it so re-entrant API calls are safe.
func (s *Session) notify(extra []Listener, fn func(Listener)) {
	s.mx.RLock()
	listeners := make([]Listener, len(s.listeners), len(s.listeners)+len(extra))
	copy(listeners, s.listeners)
	s.mx.RUnlock()
	listeners = append(listeners, extra...)

	for _, l := range listeners {
		fn(l)
	}
}

// collectionsEqual treats nil and empty as equivalent before the
// structural comparison.
func collectionsEqual(a, b row.Collection) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	return row.Equal(a, b)
}
