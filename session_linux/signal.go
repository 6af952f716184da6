//go:build linux

package session_linux

import (
	"golang.org/x/sys/unix"

	"ttywarden/session"
)

// HUPKiller delivers hang-up signals. It uses a raw kill so it works
// for processes that are not our children.
type HUPKiller struct{}

// HangUp sends SIGHUP to pid. ESRCH is returned as-is: the process may
// have exited between snapshot and signal, which callers treat as a
// benign race.
func (HUPKiller) HangUp(pid session.PID) error {
	return unix.Kill(int(pid), unix.SIGHUP)
}
