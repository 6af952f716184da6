// Package audit drives one batch pass: snapshot the process table,
// resolve each candidate against the terminal and session registries,
// classify, run the escalation policy and hand decisions to the
// notifier.
package audit

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/Moonlight-Companies/gologger/logger"

	"ttywarden/notify"
	"ttywarden/policy"
	"ttywarden/session"
	"ttywarden/throttle"
)

// Options selects the invocation mode.
type Options struct {
	Cron  bool // throttled mode for frequent scheduled runs
	Debug bool // trace per-process skips
}

// Deps are the collaborators one run needs. Everything behind an
// interface or function value so the whole pass runs against fakes.
type Deps struct {
	Source   session.Source
	Drivers  session.DriverSet
	Shells   session.ShellSet
	Sessions *session.Registry
	Groups   session.Groups
	Mux      session.MuxSet

	// IdleSince returns the last-modification time of a terminal
	// device, the proxy for session activity.
	IdleSince func(tty string) (time.Time, error)

	Now      func() time.Time
	Policy   policy.Config
	LastRun  *throttle.State
	Notifier *notify.Notifier
	Killer   notify.Killer

	Exempt   string // group whose members are administrators
	AllUsers bool   // audit every uid, not only uid 0
	Hostname string
}

// Run executes one full pass. The returned error is fatal; per-process
// failures only skip that process.
func Run(deps Deps, opts Options) error {
	log := logger.NewLogger("audit")

	now := deps.Now()

	var elapsed int64
	if opts.Cron {
		prev, err := deps.LastRun.Swap(now)
		if err != nil {
			return fmt.Errorf("cron throttle: %w", err)
		}
		elapsed = throttle.Elapsed(now, prev)
	}

	snap, err := session.Capture(deps.Source)
	if err != nil {
		return fmt.Errorf("process snapshot: %w", err)
	}

	res := &session.Resolver{
		Src:      deps.Source,
		Drivers:  deps.Drivers,
		Shells:   deps.Shells,
		Sessions: deps.Sessions,
	}

	procs := snap.All()
	sort.Slice(procs, func(i, j int) bool { return procs[i].PID < procs[j].PID })

	for _, p := range procs {
		if p.UID != 0 && !deps.AllUsers {
			continue
		}
		if err := res.Resolve(p); err != nil {
			trace(log, opts, p.PID, err)
			continue
		}
		if res.NestedInDetachedMux(snap, p, deps.Mux) {
			trace(log, opts, p.PID, errors.New("nested in detached multiplexer"))
			continue
		}
		since, err := deps.IdleSince(p.TTY)
		if err != nil {
			trace(log, opts, p.PID, err)
			continue
		}
		idle := now.Unix() - since.Unix()

		rec, graphical, resolved := res.Session(p)
		class, err := session.Classify(rec.User, resolved, deps.Exempt, deps.Groups)
		if err != nil {
			trace(log, opts, p.PID, err)
			continue
		}

		d := deps.Policy.Evaluate(class, idle, elapsed, opts.Cron)
		if !d.SendWarning && !d.DoKill {
			continue
		}

		user := rec.User
		if !resolved {
			user = "unknown"
		}
		rep := notify.Report{
			Exe:       p.Exe,
			PID:       p.PID,
			TTY:       session.ShortName(p.TTY),
			User:      user,
			Host:      deps.Hostname,
			Graphical: graphical,
			IdleSince: since,
			Idle:      time.Duration(d.Idle) * time.Second,
			Kill:      d.MightKill,
			LoginAt:   loginTime(rec, resolved),
			Origin:    rec.Host,
		}
		if d.SendWarning {
			deps.Notifier.Warn(rep)
		}
		if d.DoKill {
			deps.Notifier.Enforce(rep, deps.Killer)
		}
	}
	return nil
}

func loginTime(rec session.Record, resolved bool) time.Time {
	if !resolved || rec.LoginAt == 0 {
		return time.Time{}
	}
	return time.Unix(rec.LoginAt, 0)
}

func trace(log *logger.Logger, opts Options, pid session.PID, err error) {
	if opts.Debug {
		log.Debugln("skipping pid", pid, ":", err)
	}
}
