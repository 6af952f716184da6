// Package policy implements the idle-time escalation state machine. It
// is pure: every decision is a function of the inputs and the Config, so
// the machine can be tested without touching system state.
package policy

import "ttywarden/session"

// Config carries the escalation thresholds in seconds. Production runs
// use Default(); tests may shrink the values.
type Config struct {
	OrdinaryWarn int64 // ordinary: warn and arm the kill above this
	OrdinaryKill int64 // ordinary: kill above this
	AdminWarn    int64 // admin: first reminder at this
	AdminSecond  int64 // admin, cron mode: second reminder at this
	AdminRepeat  int64 // admin, cron mode: hourly repeat period

	// EveryoneOrdinary forces the ordinary policy for all
	// classifications, for operators who want the hard policy host-wide.
	EveryoneOrdinary bool
}

// Default returns the production thresholds.
func Default() Config {
	return Config{
		OrdinaryWarn: 600,
		OrdinaryKill: 1800,
		AdminWarn:    900,
		AdminSecond:  1800,
		AdminRepeat:  3600,
	}
}

// Decision is the outcome for one qualifying process.
type Decision struct {
	Idle        int64 // clamped idle seconds
	Class       session.Class
	SendWarning bool
	MightKill   bool
	DoKill      bool
}

// Evaluate runs the state machine. idle is seconds since the last write
// to the session's terminal; elapsed is seconds since the previous
// invocation and is only meaningful when cron is set. Negative raw
// values clamp to zero.
func (c Config) Evaluate(class session.Class, idle, elapsed int64, cron bool) Decision {
	idle = clamp(idle)
	elapsed = clamp(elapsed)

	d := Decision{Idle: idle, Class: class}

	if class == session.Ordinary || c.EveryoneOrdinary {
		// Hard two-stage policy, independent of invocation cadence.
		if idle > c.OrdinaryWarn {
			d.SendWarning = true
			d.MightKill = true
		}
		if idle > c.OrdinaryKill {
			d.DoKill = true
		}
		return d
	}

	// Admins are reminded, never killed.
	if !cron {
		if idle >= c.AdminWarn {
			d.SendWarning = true
		}
		return d
	}

	// Cron mode: each threshold crossing is reported only by the first
	// run to observe it, then repeated once per further hour of idleness.
	switch {
	case within(idle, c.AdminWarn, elapsed):
		d.SendWarning = true
	case within(idle, c.AdminSecond, elapsed):
		d.SendWarning = true
	case idle >= c.AdminRepeat:
		if within(idle%c.AdminRepeat, 0, elapsed) {
			d.SendWarning = true
		}
	}
	return d
}

// within reports whether idle has reached threshold and the previous run
// happened before the crossing, i.e. this run is the first to observe
// it. With elapsed == 0 a crossing in the past is never re-reported.
func within(idle, threshold, elapsed int64) bool {
	return idle >= threshold && elapsed > idle-threshold
}

func clamp(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}
