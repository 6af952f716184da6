// Package notify formats and delivers idle-session warnings and carries
// out the termination decision.
package notify

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/Moonlight-Companies/gologger/logger"

	"ttywarden/coloransi"
	"ttywarden/session"
)

// Killer delivers a hang-up signal to a process.
type Killer interface {
	HangUp(pid session.PID) error
}

// Report is the metadata behind one warning message.
type Report struct {
	Exe       string
	PID       session.PID
	TTY       string // short terminal name
	User      string
	Host      string // this host
	Graphical bool   // session resolved via an X display
	IdleSince time.Time
	Idle      time.Duration
	Kill      bool // the session is marked for termination
	LoginAt   time.Time // zero if unknown
	Origin    string    // login origin host, "" if unknown
}

// Notifier writes warnings to the offending session's terminal and
// mirrors them to Out.
type Notifier struct {
	Out    io.Writer
	DryRun bool
	Color  bool // emphasize the kill marker with ANSI color

	// OpenTTY opens the terminal device for writing. Left nil, the
	// device path is opened directly.
	OpenTTY func(tty string) (io.WriteCloser, error)

	log *logger.Logger
}

// New returns a Notifier mirroring to out.
func New(out io.Writer, dryRun, color bool) *Notifier {
	return &Notifier{
		Out:    out,
		DryRun: dryRun,
		Color:  color,
		log:    logger.NewLogger("notify"),
	}
}

// Format renders the multi-line warning for r.
func (n *Notifier) Format(r Report) string {
	var b strings.Builder

	origin := ""
	if r.Graphical {
		origin = " (X display)"
	}
	fmt.Fprintf(&b, "ttywarden: your shell %s (pid %d) on %s%s\n", r.Exe, r.PID, r.TTY, origin)
	fmt.Fprintf(&b, "user %s on %s, idle since %s (%s)\n",
		r.User, r.Host, r.IdleSince.Format(time.ANSIC), humanize(r.Idle))
	if !r.LoginAt.IsZero() {
		if r.Origin != "" {
			fmt.Fprintf(&b, "logged in %s from %s\n", r.LoginAt.Format(time.ANSIC), r.Origin)
		} else {
			fmt.Fprintf(&b, "logged in %s\n", r.LoginAt.Format(time.ANSIC))
		}
	}
	if r.Kill {
		marker := "*** this session will be terminated ***"
		if n.Color {
			marker = coloransi.ColorAndStyle(coloransi.BrightRed, coloransi.Bold, marker)
		}
		b.WriteString(marker + "\n")
	}
	return b.String()
}

// Warn emits the warning for r: to the session's terminal when it can
// be opened, and always to Out. Terminal delivery failure is logged,
// not fatal.
func (n *Notifier) Warn(r Report) {
	msg := n.Format(r)

	open := n.OpenTTY
	if open == nil {
		open = openDevice
	}
	if w, err := open("/dev/" + r.TTY); err != nil {
		n.log.Warn("cannot write warning to ", r.TTY, ": ", err)
	} else {
		// Terminals want CRLF line endings when written out of band.
		io.WriteString(w, strings.ReplaceAll(msg, "\n", "\r\n"))
		w.Close()
	}

	io.WriteString(n.Out, msg)
}

// Enforce carries out a do_kill decision. In dry-run mode the action is
// reported but not taken. Signal delivery failure is benign: the process
// may have exited between snapshot and signal.
func (n *Notifier) Enforce(r Report, k Killer) {
	if n.DryRun {
		fmt.Fprintf(n.Out, "ttywarden: would send SIGHUP to pid %d (%s on %s)\n", r.PID, r.User, r.TTY)
		return
	}
	if err := k.HangUp(r.PID); err != nil {
		n.log.Warn("SIGHUP to pid ", r.PID, " failed: ", err)
		return
	}
	fmt.Fprintf(n.Out, "ttywarden: sent SIGHUP to pid %d (%s on %s)\n", r.PID, r.User, r.TTY)
}

// humanize renders a duration as whole hours/minutes/seconds, largest
// unit first ("1h31m", "10m1s", "45s").
func humanize(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int64(d.Seconds())
	h, m, s := secs/3600, (secs%3600)/60, secs%60
	switch {
	case h > 0:
		return fmt.Sprintf("%dh%dm", h, m)
	case m > 0 && s > 0:
		return fmt.Sprintf("%dm%ds", m, s)
	case m > 0:
		return fmt.Sprintf("%dm", m)
	default:
		return fmt.Sprintf("%ds", s)
	}
}

func openDevice(tty string) (io.WriteCloser, error) {
	return os.OpenFile(tty, os.O_WRONLY, 0)
}
