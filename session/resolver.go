package session

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

// Sentinel errors for the per-process "not applicable" tier. A process
// failing resolution is skipped, never fatal to the run.
var (
	ErrNoTerminal = errors.New("no terminal among open descriptors")
	ErrNotShell   = errors.New("executable is not a recognized shell")
	ErrNoEnviron  = errors.New("empty or unreadable environment")
)

// Resolver cross-references one process against the terminal driver
// registry, the shell registry and the login-session registry.
type Resolver struct {
	Src      Source
	Drivers  DriverSet
	Shells   ShellSet
	Sessions *Registry
}

// Terminal finds the process's attached terminal device by scanning its
// open descriptor targets against the driver set. The first matching
// target wins; enumeration order comes from Source.FDTargets and is
// stable within one run.
func (r *Resolver) Terminal(p *Proc) (string, error) {
	targets, err := r.Src.FDTargets(p.PID)
	if err != nil {
		return "", fmt.Errorf("fd targets of pid %d: %w", p.PID, err)
	}
	for _, t := range targets {
		if r.Drivers.Matches(t) {
			return t, nil
		}
	}
	return "", ErrNoTerminal
}

// Resolve fills p.Exe, p.TTY and p.Env, or returns a sentinel error when
// the process does not qualify: unreadable proc entries, no terminal, or
// an executable outside the shell set.
func (r *Resolver) Resolve(p *Proc) error {
	exe, err := r.Src.Executable(p.PID)
	if err != nil {
		return fmt.Errorf("executable of pid %d: %w", p.PID, err)
	}
	if !r.Shells.Contains(exe) {
		return ErrNotShell
	}

	tty, err := r.Terminal(p)
	if err != nil {
		return err
	}

	env, err := r.Src.Environ(p.PID)
	if err != nil {
		return fmt.Errorf("environ of pid %d: %w", p.PID, err)
	}
	if len(env) == 0 {
		return ErrNoEnviron
	}

	p.Exe = exe
	p.TTY = tty
	p.Env = env
	return nil
}

// Session looks up the login session for a resolved process. The short
// terminal name is tried first; on a miss, the DISPLAY environment
// variable (host:display[.screen], screen suffix stripped) is tried
// against the display table. graphical reports which table matched.
func (r *Resolver) Session(p *Proc) (rec Record, graphical, ok bool) {
	if rec, found := r.Sessions.Lookup(ShortName(p.TTY)); found {
		return rec, false, true
	}
	display, valid := parseDisplay(p.Env["DISPLAY"])
	if !valid {
		return Record{}, false, false
	}
	if rec, found := r.Sessions.LookupDisplay(display); found {
		return rec, true, true
	}
	return Record{}, false, false
}

// ShortName derives the session-registry key from a terminal device
// path: the path minus its leading directory ("/dev/pts/3" -> "pts/3").
func ShortName(tty string) string {
	return strings.TrimPrefix(tty, "/dev/")
}

// parseDisplay validates a DISPLAY value of the form host:display with
// an optional .screen suffix, and returns the value with the screen
// suffix stripped.
func parseDisplay(v string) (string, bool) {
	colon := strings.IndexByte(v, ':')
	if colon < 0 {
		return "", false
	}
	num := v[colon+1:]
	if dot := strings.IndexByte(num, '.'); dot >= 0 {
		if !allDigits(num[dot+1:]) {
			return "", false
		}
		num = num[:dot]
	}
	if !allDigits(num) {
		return "", false
	}
	return v[:colon] + ":" + num, true
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Basename returns the final element of an executable path.
func Basename(exe string) string {
	return path.Base(exe)
}
