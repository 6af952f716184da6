//go:build linux

package session_linux

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"ttywarden/session"
)

// LinuxSource implements the session.Source interface over /proc.
type LinuxSource struct {
	Root string // proc mount point, "/proc" unless overridden in tests
}

// NewSource creates a LinuxSource reading the live /proc.
func NewSource() *LinuxSource {
	return &LinuxSource{Root: "/proc"}
}

// Processes enumerates every live process with pid, ppid and owning uid.
// Processes that disappear or deny access mid-scan are skipped.
func (s *LinuxSource) Processes() ([]session.Proc, error) {
	entries, err := os.ReadDir(s.Root)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.Root, err)
	}

	var out []session.Proc
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		pid, err := strconv.Atoi(e.Name())
		if err != nil || pid <= 0 {
			continue // not a PID dir
		}

		ppid, err := s.parentPID(pid)
		if err != nil {
			continue // exited or unreadable, skip
		}
		uid, err := s.ownerUID(pid)
		if err != nil {
			continue
		}
		out = append(out, session.Proc{
			PID:  session.PID(pid),
			PPID: ppid,
			UID:  uid,
		})
	}
	return out, nil
}

// FDTargets resolves the process's open descriptor targets in ascending
// descriptor order, so terminal discovery is deterministic within a run.
func (s *LinuxSource) FDTargets(pid session.PID) ([]string, error) {
	dir := filepath.Join(s.Root, strconv.Itoa(int(pid)), "fd")
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	fds := make([]int, 0, len(entries))
	for _, e := range entries {
		if fd, err := strconv.Atoi(e.Name()); err == nil {
			fds = append(fds, fd)
		}
	}
	sort.Ints(fds)

	targets := make([]string, 0, len(fds))
	for _, fd := range fds {
		target, err := os.Readlink(filepath.Join(dir, strconv.Itoa(fd)))
		if err != nil {
			continue // closed between readdir and readlink
		}
		targets = append(targets, target)
	}
	return targets, nil
}

// Executable resolves the /proc/<pid>/exe symlink; may fail if the
// process is a zombie or owned by another user.
func (s *LinuxSource) Executable(pid session.PID) (string, error) {
	return os.Readlink(filepath.Join(s.Root, strconv.Itoa(int(pid)), "exe"))
}

// Environ reads the process's raw environment block and splits it into
// a mapping. Later duplicates of a key overwrite earlier ones.
func (s *LinuxSource) Environ(pid session.PID) (map[string]string, error) {
	data, err := os.ReadFile(filepath.Join(s.Root, strconv.Itoa(int(pid)), "environ"))
	if err != nil {
		return nil, err
	}

	env := make(map[string]string)
	for _, kv := range strings.Split(string(data), "\x00") {
		if kv == "" {
			continue
		}
		if eq := strings.IndexByte(kv, '='); eq > 0 {
			env[kv[:eq]] = kv[eq+1:]
		}
	}
	return env, nil
}

// parentPID reads the ppid from /proc/<pid>/stat. The comm field is
// enclosed in parentheses and may itself contain spaces, so fields are
// counted from the closing parenthesis.
func (s *LinuxSource) parentPID(pid int) (session.PID, error) {
	data, err := os.ReadFile(filepath.Join(s.Root, strconv.Itoa(pid), "stat"))
	if err != nil {
		return 0, err
	}
	stat := string(data)
	end := strings.LastIndexByte(stat, ')')
	if end < 0 {
		return 0, fmt.Errorf("malformed stat for pid %d", pid)
	}
	fields := strings.Fields(stat[end+1:])
	if len(fields) < 2 {
		return 0, fmt.Errorf("malformed stat for pid %d", pid)
	}
	ppid, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, fmt.Errorf("parsing ppid of %d: %w", pid, err)
	}
	return session.PID(ppid), nil
}

// ownerUID stats the /proc/<pid> directory, whose owner is the
// process's owning user.
func (s *LinuxSource) ownerUID(pid int) (int, error) {
	info, err := os.Stat(filepath.Join(s.Root, strconv.Itoa(pid)))
	if err != nil {
		return 0, err
	}
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return 0, fmt.Errorf("no stat_t for pid %d", pid)
	}
	return int(st.Uid), nil
}

// TTYModTime returns the last-modification time of a terminal device,
// the activity proxy used for idle measurement.
func TTYModTime(tty string) (time.Time, error) {
	info, err := os.Stat(tty)
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}
