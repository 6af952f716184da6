package session

// MuxSet holds the executable basenames recognized as terminal
// multiplexers (screen, tmux).
type MuxSet map[string]bool

// NewMuxSet builds a MuxSet from literal basenames.
func NewMuxSet(names ...string) MuxSet {
	m := make(MuxSet, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

// NestedInDetachedMux walks p's ancestor chain through the snapshot arena
// and reports whether p sits inside a detached multiplexer session.
//
// The walk stops at the first ancestor whose executable is a known
// multiplexer: if that ancestor has no attached terminal the session is
// detached and p is excluded; if it has one, p stays in. Ancestors past
// the first multiplexer are never inspected, so only one level of
// nesting is resolved. Reaching pid 1 (itself not inspected) means no
// multiplexer ancestor exists and p stays in.
func (r *Resolver) NestedInDetachedMux(snap *Snapshot, p *Proc, mux MuxSet) bool {
	seen := make(map[PID]bool) // guards against ppid cycles in a torn snapshot
	for cur := snap.Get(p.PPID); cur != nil && cur.PID != 1; cur = snap.Get(cur.PPID) {
		if seen[cur.PID] {
			return false
		}
		seen[cur.PID] = true

		exe, err := r.Src.Executable(cur.PID)
		if err != nil || !mux[Basename(exe)] {
			continue
		}
		_, err = r.Terminal(cur)
		return err != nil
	}
	return false
}
