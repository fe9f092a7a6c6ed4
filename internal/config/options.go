package config

import (
	"fmt"
	"time"

	"github.com/livetable/livetable/internal/fetch"
	"github.com/livetable/livetable/internal/payload"
	"github.com/livetable/livetable/internal/row"
)

const (
	// MinInterval is the floor every polling interval is clamped to.
	MinInterval = 1 * time.Second

	// DefaultInterval is the polling cadence when none is configured.
	DefaultInterval = 2 * time.Second
)

// ConfigurationError reports an invalid session setup. It is raised
// before any timer is armed.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid poll configuration: %s", e.Reason)
}

// Options configures a single poll session. Resolve applies defaults
// once at session creation; the zero value resolves to a usable config
// apart from Enabled.
type Options struct {
	// Enabled gates session creation entirely.
	Enabled bool

	// Interval is the scheduling cadence. Values below MinInterval are
	// clamped up; zero selects DefaultInterval.
	Interval time.Duration

	// IntervalFn, when set, is consulted at each reschedule and takes
	// precedence over Interval. Its result is clamped the same way.
	IntervalFn func() time.Duration

	// PauseFn, when set, is an additional pause gate consulted on every
	// tick alongside the session's explicit paused flag.
	PauseFn func() bool

	// DataSourceField is the envelope field holding the row collection.
	// Defaults to payload.DefaultField. Supports dotted paths.
	DataSourceField string

	// RowKeyField identifies rows across snapshots. Empty selects the
	// whole-collection comparison mode.
	RowKeyField string

	// ResetPagingOnUpdate asks the table to reset its position when a
	// patch is applied.
	ResetPagingOnUpdate bool

	// AbortOn lists failure categories that stop the session for good.
	AbortOn fetch.CategorySet

	// OnUpdate fires after a patch has been applied. The change set is
	// nil in whole-collection mode.
	OnUpdate func(cs *row.ChangeSet, raw []byte)

	// OnNoUpdate fires when a poll produced no changes.
	OnNoUpdate func(raw []byte)
}

// Resolve validates the options and fills in defaults.
func (o Options) Resolve() (Options, error) {
	if !o.Enabled {
		return o, &ConfigurationError{Reason: "polling is not enabled"}
	}
	if o.Interval == 0 {
		o.Interval = DefaultInterval
	}
	o.Interval = ClampInterval(o.Interval)
	if o.DataSourceField == "" {
		o.DataSourceField = payload.DefaultField
	}
	if o.AbortOn == nil {
		o.AbortOn = fetch.NewCategorySet()
	}
	return o, nil
}

// NextInterval returns the effective interval for the next reschedule.
func (o Options) NextInterval() time.Duration {
	if o.IntervalFn != nil {
		return ClampInterval(o.IntervalFn())
	}
	return o.Interval
}

// ClampInterval enforces the MinInterval floor.
func ClampInterval(d time.Duration) time.Duration {
	if d < MinInterval {
		return MinInterval
	}
	return d
}
