// Package session correlates live processes with their controlling
// terminals and login sessions. All operating-system access goes through
// the Source and Groups interfaces so the correlation logic can be tested
// against fakes.
package session

import "strings"

// PID identifies a process within one snapshot.
type PID int

// Proc is one captured process record. PID, PPID and UID are filled at
// capture time; Exe, TTY and Env are resolved lazily by the Resolver and
// cached here. A Proc is immutable once resolved.
type Proc struct {
	PID  PID
	PPID PID
	UID  int

	Exe string            // resolved executable path, "" until resolved
	TTY string            // attached terminal device path, "" if none found
	Env map[string]string // nil until resolved
}

// Source yields point-in-time process data. Per-process methods may fail
// due to permission or exit races; callers skip the process in that case.
type Source interface {
	// Processes returns pid, ppid and owning uid for every live process.
	Processes() ([]Proc, error)

	// FDTargets returns the resolved targets of the process's open file
	// descriptors, ordered by ascending descriptor number.
	FDTargets(pid PID) ([]string, error)

	// Executable returns the process's resolved executable path.
	Executable(pid PID) (string, error)

	// Environ returns the process's environment mapping.
	Environ(pid PID) (map[string]string, error)
}

// Groups resolves the set of group names a user belongs to.
type Groups interface {
	Groups(user string) (map[string]bool, error)
}

// Snapshot is a pid-keyed arena of Proc records captured in one pass.
type Snapshot struct {
	byPID map[PID]*Proc
}

// Capture drains src.Processes into a Snapshot.
func Capture(src Source) (*Snapshot, error) {
	procs, err := src.Processes()
	if err != nil {
		return nil, err
	}
	return NewSnapshot(procs), nil
}

// NewSnapshot builds a Snapshot from already-captured records.
func NewSnapshot(procs []Proc) *Snapshot {
	s := &Snapshot{byPID: make(map[PID]*Proc, len(procs))}
	for i := range procs {
		p := procs[i]
		s.byPID[p.PID] = &p
	}
	return s
}

// Get returns the record for pid, or nil if the pid was not captured.
func (s *Snapshot) Get(pid PID) *Proc {
	return s.byPID[pid]
}

// All returns every captured record. Order is unspecified.
func (s *Snapshot) All() []*Proc {
	out := make([]*Proc, 0, len(s.byPID))
	for _, p := range s.byPID {
		out = append(out, p)
	}
	return out
}

// DriverSet holds the recognized terminal device-name prefixes.
type DriverSet struct {
	prefixes []string
}

// NewDriverSet builds a DriverSet from literal prefixes.
func NewDriverSet(prefixes ...string) DriverSet {
	return DriverSet{prefixes: prefixes}
}

// Matches reports whether target names a terminal device: it must start
// with one of the driver prefixes and the remainder may contain only
// digits and slashes ("/dev/pts/3", "/dev/tty1").
func (d DriverSet) Matches(target string) bool {
	for _, prefix := range d.prefixes {
		if !strings.HasPrefix(target, prefix) {
			continue
		}
		if digitsAndSlashes(target[len(prefix):]) {
			return true
		}
	}
	return false
}

// Empty reports whether no prefixes were loaded.
func (d DriverSet) Empty() bool {
	return len(d.prefixes) == 0
}

func digitsAndSlashes(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && c != '/' {
			return false
		}
	}
	return true
}

// ShellSet holds the absolute executable paths considered a login shell.
type ShellSet map[string]bool

// NewShellSet builds a ShellSet from literal paths.
func NewShellSet(paths ...string) ShellSet {
	s := make(ShellSet, len(paths))
	for _, p := range paths {
		s[p] = true
	}
	return s
}

// Contains reports whether exe is a recognized login shell.
func (s ShellSet) Contains(exe string) bool {
	return s[exe]
}

// Record is one login session from the session registry.
type Record struct {
	User    string
	LoginAt int64 // unix seconds, 0 if unknown
	Host    string
}

// Registry maps short terminal names and X11 display strings to login
// sessions. The two keyspaces are kept as separate tables; Lookup tries
// the terminal table first and callers fall back to LookupDisplay.
type Registry struct {
	byLine    map[string]Record
	byDisplay map[string]Record
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		byLine:    make(map[string]Record),
		byDisplay: make(map[string]Record),
	}
}

// Add stores a session under its line key. Keys containing ':' are X11
// display strings (":0", "remote:10") and go to the display table. The
// first record seen for a key wins; later duplicates are ignored.
func (r *Registry) Add(line string, rec Record) {
	table := r.byLine
	if strings.Contains(line, ":") {
		table = r.byDisplay
	}
	if _, ok := table[line]; ok {
		return
	}
	table[line] = rec
}

// Lookup finds a session by short terminal name.
func (r *Registry) Lookup(line string) (Record, bool) {
	rec, ok := r.byLine[line]
	return rec, ok
}

// LookupDisplay finds a session by X11 display string.
func (r *Registry) LookupDisplay(display string) (Record, bool) {
	rec, ok := r.byDisplay[display]
	return rec, ok
}

// Len returns the total number of stored sessions.
func (r *Registry) Len() int {
	return len(r.byLine) + len(r.byDisplay)
}
