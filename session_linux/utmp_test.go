//go:build linux

package session_linux

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func utmpEntry(t *testing.T, typ int16, line, user, host string, sec int32) utmpRecord {
	t.Helper()
	var rec utmpRecord
	rec.Type = typ
	rec.TvSec = sec
	copy(rec.Line[:], line)
	copy(rec.User[:], user)
	copy(rec.Host[:], host)
	return rec
}

func writeUtmp(t *testing.T, recs ...utmpRecord) string {
	t.Helper()
	var buf bytes.Buffer
	for _, rec := range recs {
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, rec))
	}
	path := filepath.Join(t.TempDir(), "utmp")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func TestUtmpRecordSize(t *testing.T) {
	assert.Equal(t, 384, binary.Size(utmpRecord{}))
}

func TestLoadSessions(t *testing.T) {
	path := writeUtmp(t,
		utmpEntry(t, 2, "~", "reboot", "", 1700000000),            // boot record, skipped
		utmpEntry(t, userProcess, "pts/0", "alice", "office", 1700001000),
		utmpEntry(t, userProcess, ":0", "desktop", "", 1700002000),
		utmpEntry(t, userProcess, "pts/0", "bob", "", 1700003000), // duplicate line, ignored
		utmpEntry(t, 8, "pts/1", "gone", "", 1700004000),          // dead process, skipped
	)

	reg, err := LoadSessions(path)
	require.NoError(t, err)
	assert.Equal(t, 2, reg.Len())

	rec, ok := reg.Lookup("pts/0")
	require.True(t, ok)
	assert.Equal(t, "alice", rec.User)
	assert.Equal(t, "office", rec.Host)
	assert.Equal(t, int64(1700001000), rec.LoginAt)

	rec, ok = reg.LookupDisplay(":0")
	require.True(t, ok)
	assert.Equal(t, "desktop", rec.User)

	_, ok = reg.Lookup("pts/1")
	assert.False(t, ok)
}

func TestLoadSessionsTruncatedTail(t *testing.T) {
	path := writeUtmp(t, utmpEntry(t, userProcess, "tty1", "root", "", 1700000000))

	// Append a torn partial record; the reader stops at it.
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.Write(make([]byte, 100))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	reg, err := LoadSessions(path)
	require.NoError(t, err)
	assert.Equal(t, 1, reg.Len())
}

func TestLoadSessionsMissing(t *testing.T) {
	_, err := LoadSessions(filepath.Join(t.TempDir(), "absent"))
	assert.Error(t, err)
}
