// Package throttle persists the previous invocation timestamp for cron
// mode, so closely-spaced periodic runs can suppress duplicate warnings.
package throttle

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gofrs/flock"
)

// State is the persisted last-run timestamp. The stamp file holds a
// single decimal integer (seconds since epoch); a companion lock file
// guards the read-modify-write.
type State struct {
	path string
	lock string
}

// New returns the State rooted in dir. The directory is created on
// first use.
func New(dir string) *State {
	return &State{
		path: filepath.Join(dir, "lastrun"),
		lock: filepath.Join(dir, "lastrun.lock"),
	}
}

// Swap atomically reads the previous timestamp and replaces it with now,
// holding an exclusive lock for the duration of the read-modify-write.
// A missing stamp file reads as zero (no previous run). Any failure is
// returned to the caller and is fatal to a cron-mode run.
func (s *State) Swap(now time.Time) (prev int64, err error) {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return 0, fmt.Errorf("state dir: %w", err)
	}

	fl := flock.New(s.lock)
	if err := fl.Lock(); err != nil {
		return 0, fmt.Errorf("acquiring last-run lock: %w", err)
	}
	defer func() {
		if uerr := fl.Unlock(); uerr != nil && err == nil {
			err = fmt.Errorf("releasing last-run lock: %w", uerr)
		}
	}()

	data, rerr := os.ReadFile(s.path)
	switch {
	case rerr == nil:
		prev, err = strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("parsing last-run stamp: %w", err)
		}
	case os.IsNotExist(rerr):
		prev = 0
	default:
		return 0, fmt.Errorf("reading last-run stamp: %w", rerr)
	}

	out := strconv.FormatInt(now.Unix(), 10) + "\n"
	if err := os.WriteFile(s.path, []byte(out), 0o644); err != nil {
		return 0, fmt.Errorf("writing last-run stamp: %w", err)
	}
	return prev, nil
}

// Elapsed returns now-prev in whole seconds, clamped at zero. A prev of
// zero (no previous run) yields the full epoch distance, which makes
// every freshness window pass on the first cron run.
func Elapsed(now time.Time, prev int64) int64 {
	e := now.Unix() - prev
	if e < 0 {
		return 0
	}
	return e
}
