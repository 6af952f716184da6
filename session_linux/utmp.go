//go:build linux

package session_linux

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"ttywarden/session"
)

// UtmpPath is the live login-session record file.
const UtmpPath = "/var/run/utmp"

// userProcess marks a utmp record for a normal logged-in session.
const userProcess = 7

// utmpRecord mirrors the glibc utmp layout on Linux (384 bytes).
type utmpRecord struct {
	Type    int16
	_       [2]byte // alignment padding
	PID     int32
	Line    [32]byte
	ID      [4]byte
	User    [32]byte
	Host    [256]byte
	Termin  int16
	Exit    int16
	Session int32
	TvSec   int32
	TvUsec  int32
	AddrV6  [4]int32
	Unused  [20]byte
}

// LoadSessions parses the login-session records into a Registry keyed
// by short terminal name, with X display entries routed to the display
// table. The first record per key wins.
func LoadSessions(path string) (*session.Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("session registry: %w", err)
	}
	defer f.Close()

	reg := session.NewRegistry()
	for {
		var rec utmpRecord
		err := binary.Read(f, binary.LittleEndian, &rec)
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("session registry: %w", err)
		}
		if rec.Type != userProcess {
			continue
		}
		line := cString(rec.Line[:])
		if line == "" {
			continue
		}
		reg.Add(line, session.Record{
			User:    cString(rec.User[:]),
			LoginAt: int64(rec.TvSec),
			Host:    cString(rec.Host[:]),
		})
	}
	return reg, nil
}

func cString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}
