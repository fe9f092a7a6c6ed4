// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of livetable

package view

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/derailed/tcell/v2"
	"github.com/derailed/tview"

	"github.com/livetable/livetable/internal/fetch"
	"github.com/livetable/livetable/internal/poll"
	"github.com/livetable/livetable/internal/row"
)

// App hosts a live table plus a one-line status bar and drives a poll
// session from keyboard commands.
type App struct {
	*tview.Application

	table   *LiveTable
	status  *tview.TextView
	session *poll.Session
	mx      sync.RWMutex
}

// NewApp builds the application around the given table.
func NewApp(table *LiveTable) *App {
	a := &App{
		Application: tview.NewApplication(),
		table:       table,
	}

	a.status = tview.NewTextView()
	a.status.SetDynamicColors(true)
	a.status.SetTextAlign(tview.AlignLeft)
	a.status.SetBorderPadding(0, 0, 1, 1)

	table.SetDrawer(func(render func()) {
		a.QueueUpdateDraw(render)
	})

	flex := tview.NewFlex().SetDirection(tview.FlexRow)
	flex.AddItem(table, 0, 1, true)
	flex.AddItem(a.status, 1, 0, false)

	a.SetRoot(flex, true)
	a.SetInputCapture(a.keyboard)

	return a
}

// SetSession attaches the poll session and subscribes to its events.
func (a *App) SetSession(s *poll.Session) {
	a.mx.Lock()
	a.session = s
	a.mx.Unlock()

	s.AddListener(&statusListener{app: a})
}

// Run starts the UI event loop; the table teardown fires on exit so
// the session stops with the view.
func (a *App) Run() error {
	defer a.table.Teardown()
	return a.Application.Run()
}

func (a *App) keyboard(evt *tcell.EventKey) *tcell.EventKey {
	a.mx.RLock()
	session := a.session
	a.mx.RUnlock()

	if evt.Key() == tcell.KeyCtrlC {
		a.Stop()
		return nil
	}
	if evt.Key() != tcell.KeyRune || session == nil {
		return evt
	}

	switch evt.Rune() {
	case 'q':
		a.Stop()
		return nil
	case 'p':
		paused := session.TogglePause()
		if paused {
			a.flashf("[yellow]paused[-]")
		} else {
			a.flashf("[green]resumed[-]")
		}
		return nil
	case 'r':
		go func() {
			if err := session.ForceReload(context.Background()); err != nil {
				a.flashf("[red]reload: %v[-]", err)
			}
		}()
		return nil
	case 'a':
		session.AbortFetch()
		return nil
	}
	return evt
}

// flashf updates the status bar from any goroutine.
func (a *App) flashf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	a.QueueUpdateDraw(func() {
		a.status.SetText(msg)
	})
}

// statsLine renders the session counters for the status bar.
func (a *App) statsLine() string {
	a.mx.RLock()
	session := a.session
	a.mx.RUnlock()
	if session == nil {
		return ""
	}
	st := session.Stats()
	return fmt.Sprintf("ticks:%d skips:%d failures:%d updates:%d", st.Ticks, st.Skips, st.Failures, st.Updates)
}

// Ensure the adapter implements poll.Listener at compile time.
var _ poll.Listener = (*statusListener)(nil)

// statusListener routes session events into the status bar.
type statusListener struct {
	app *App
}

func (l *statusListener) SessionStarted() {
	l.app.flashf("[green]polling started[-]")
}

func (l *statusListener) TickSkipped(reason poll.SkipReason) {
	l.app.flashf("[gray]tick skipped (%s)[-] %s", reason, l.app.statsLine())
}

func (l *statusListener) FetchFailed(f *fetch.Failure) {
	l.app.flashf("[red]%v[-] %s", f, l.app.statsLine())
}

func (l *statusListener) ReconcileFailed(err error) {
	l.app.flashf("[red]reconcile: %v[-]", err)
}

func (l *statusListener) IntervalChanged(d time.Duration) {
	l.app.flashf("interval set to %s", d)
}

func (l *statusListener) TimerCleared() {
	l.app.flashf("[yellow]polling stopped[-]")
}

func (l *statusListener) FetchAborted() {
	l.app.flashf("[yellow]fetch aborted[-]")
}

func (l *statusListener) PauseChanged(paused bool) {
	if paused {
		l.app.flashf("[yellow]paused[-]")
		return
	}
	l.app.flashf("[green]resumed[-]")
}

func (l *statusListener) UpdateApplied(cs *row.ChangeSet, _ []byte) {
	if cs == nil {
		l.app.flashf("[green]table reloaded[-] %s", l.app.statsLine())
		return
	}
	l.app.flashf("[green]+%d ~%d -%d[-] %s",
		len(cs.Created), len(cs.Updated), len(cs.Deleted), l.app.statsLine())
}

func (l *statusListener) NoUpdate(_ []byte) {
	l.app.flashf("no changes %s", l.app.statsLine())
}
