//go:build linux

package session_linux

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const driversFixture = `/dev/tty             /dev/tty        5       0 system:/dev/tty
/dev/console         /dev/console    5       1 system:console
/dev/ptmx            /dev/ptmx       5       2 system
serial               /dev/ttyS       4 64-111 serial
pty_slave            /dev/pts      136 0-1048575 pty:slave
pty_master           /dev/ptm      128 0-1048575 pty:master
unknown              /dev/tty        4 1-63 console
`

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDrivers(t *testing.T) {
	d, err := LoadDrivers(writeFixture(t, "drivers", driversFixture))
	require.NoError(t, err)

	assert.True(t, d.Matches("/dev/tty1"))
	assert.True(t, d.Matches("/dev/pts/0"))
	assert.True(t, d.Matches("/dev/ttyS4"))
	assert.True(t, d.Matches("/dev/console"))

	// The pty master control device is excluded.
	assert.False(t, d.Matches("/dev/ptm/3"))
	assert.False(t, d.Matches("/dev/ptmx"))
}

func TestLoadDriversMissing(t *testing.T) {
	_, err := LoadDrivers(filepath.Join(t.TempDir(), "absent"))
	assert.Error(t, err)
}

func TestLoadShells(t *testing.T) {
	shells, err := LoadShells(writeFixture(t, "shells", `# /etc/shells: valid login shells
/bin/sh
/bin/bash

/usr/bin/zsh
`))
	require.NoError(t, err)

	assert.True(t, shells.Contains("/bin/sh"))
	assert.True(t, shells.Contains("/bin/bash"))
	assert.True(t, shells.Contains("/usr/bin/zsh"))
	assert.False(t, shells.Contains("# /etc/shells: valid login shells"))
	assert.False(t, shells.Contains(""))
}

func TestLoadShellsMissing(t *testing.T) {
	_, err := LoadShells(filepath.Join(t.TempDir(), "absent"))
	assert.Error(t, err)
}
