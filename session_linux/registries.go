//go:build linux

package session_linux

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"ttywarden/session"
)

const (
	DriversPath = "/proc/tty/drivers"
	ShellsPath  = "/etc/shells"
)

// LoadDrivers parses the kernel's terminal driver table into the set of
// recognized device-name prefixes. The pty master control device is
// excluded: descriptors on it belong to the multiplexer side, not to a
// terminal a user sits at. Failure to load is fatal to the run.
func LoadDrivers(path string) (session.DriverSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return session.DriverSet{}, fmt.Errorf("terminal driver registry: %w", err)
	}
	defer f.Close()

	var prefixes []string
	seen := make(map[string]bool)

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		// driver name, device prefix, major, minor range, type
		fields := strings.Fields(sc.Text())
		if len(fields) < 5 {
			continue
		}
		prefix, kind := fields[1], fields[4]
		if kind == "pty:master" || prefix == "/dev/ptmx" {
			continue
		}
		if !seen[prefix] {
			seen[prefix] = true
			prefixes = append(prefixes, prefix)
		}
	}
	if err := sc.Err(); err != nil {
		return session.DriverSet{}, fmt.Errorf("terminal driver registry: %w", err)
	}
	return session.NewDriverSet(prefixes...), nil
}

// LoadShells parses the valid login shell list: one absolute path per
// line, '#' comments and blank lines skipped. Failure to load is fatal
// to the run.
func LoadShells(path string) (session.ShellSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("shell registry: %w", err)
	}
	defer f.Close()

	shells := session.NewShellSet()
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		shells[line] = true
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("shell registry: %w", err)
	}
	return shells, nil
}
