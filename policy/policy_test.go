package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ttywarden/session"
)

func TestOrdinaryTwoStage(t *testing.T) {
	cfg := Default()

	tcs := []struct {
		name string
		idle int64
		warn bool
		might bool
		kill bool
	}{
		{"fresh", 0, false, false, false},
		{"at warn threshold", 600, false, false, false},
		{"just past warn", 601, true, true, false},
		{"at kill threshold", 1800, true, true, false},
		{"just past kill", 1801, true, true, true},
		{"long idle", 86400, true, true, true},
	}
	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			d := cfg.Evaluate(session.Ordinary, tc.idle, 0, false)
			assert.Equal(t, tc.warn, d.SendWarning)
			assert.Equal(t, tc.might, d.MightKill)
			assert.Equal(t, tc.kill, d.DoKill)
		})
	}
}

func TestOrdinaryIgnoresCronCadence(t *testing.T) {
	cfg := Default()

	// The hard policy is stateless: a 1-second-old previous run does not
	// suppress anything for ordinary users.
	d := cfg.Evaluate(session.Ordinary, 1801, 1, true)
	assert.True(t, d.SendWarning)
	assert.True(t, d.MightKill)
	assert.True(t, d.DoKill)
}

func TestOrdinaryKillMonotonic(t *testing.T) {
	cfg := Default()

	killed := false
	for idle := int64(0); idle <= 4000; idle++ {
		d := cfg.Evaluate(session.Ordinary, idle, 0, false)
		if killed {
			assert.True(t, d.DoKill, "do_kill regressed at idle=%d", idle)
		}
		killed = d.DoKill
	}
}

func TestAdminNonCron(t *testing.T) {
	cfg := Default()

	d := cfg.Evaluate(session.Admin, 899, 0, false)
	assert.False(t, d.SendWarning)

	d = cfg.Evaluate(session.Admin, 900, 0, false)
	assert.True(t, d.SendWarning)
	assert.False(t, d.MightKill)
	assert.False(t, d.DoKill)

	// Admins are never killed, no matter how idle.
	d = cfg.Evaluate(session.Admin, 1000000, 0, false)
	assert.True(t, d.SendWarning)
	assert.False(t, d.MightKill)
	assert.False(t, d.DoKill)
}

func TestWithin(t *testing.T) {
	tcs := []struct {
		name string
		idle, threshold, elapsed int64
		want bool
	}{
		{"below threshold", 899, 900, 300, false},
		{"boundary fires with elapsed", 900, 900, 1, true},
		{"boundary needs elapsed", 900, 900, 0, false},
		{"first observation", 901, 900, 300, true},
		{"already observed", 901, 900, 1, false},
		{"zero elapsed never retroactive", 5000, 900, 0, false},
	}
	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, within(tc.idle, tc.threshold, tc.elapsed))
		})
	}
}

func TestAdminCronScenarios(t *testing.T) {
	cfg := Default()

	// Previous run 5 minutes ago, idle just crossed 15 minutes: one
	// warning fires.
	d := cfg.Evaluate(session.Admin, 901, 300, true)
	assert.True(t, d.SendWarning)

	// Previous run 1 second ago: the crossing was already observed.
	d = cfg.Evaluate(session.Admin, 901, 1, true)
	assert.False(t, d.SendWarning)

	// 30-minute crossing observed once.
	d = cfg.Evaluate(session.Admin, 1801, 300, true)
	assert.True(t, d.SendWarning)
	d = cfg.Evaluate(session.Admin, 1801, 1, true)
	assert.False(t, d.SendWarning)

	// Admins never progress past warnings in cron mode either.
	d = cfg.Evaluate(session.Admin, 1000000, 1000000, true)
	assert.False(t, d.MightKill)
	assert.False(t, d.DoKill)
}

func TestAdminCronHourlyRepeat(t *testing.T) {
	cfg := Default()

	// I=3661 leaves R=61 past the hour boundary; the repeat fires only
	// when the previous run predates the boundary (E > 61).
	d := cfg.Evaluate(session.Admin, 3661, 62, true)
	assert.True(t, d.SendWarning)

	d = cfg.Evaluate(session.Admin, 3661, 61, true)
	assert.False(t, d.SendWarning)

	d = cfg.Evaluate(session.Admin, 3661, 300, true)
	assert.True(t, d.SendWarning)
}

func TestClamping(t *testing.T) {
	cfg := Default()

	// Terminal modify time in the future: idle clamps to zero.
	d := cfg.Evaluate(session.Ordinary, -50, 0, false)
	assert.Equal(t, int64(0), d.Idle)
	assert.False(t, d.SendWarning)

	// Negative elapsed clamps to zero, so nothing is freshly observed.
	d = cfg.Evaluate(session.Admin, 901, -10, true)
	assert.False(t, d.SendWarning)
}

func TestEveryoneOrdinary(t *testing.T) {
	cfg := Default()
	cfg.EveryoneOrdinary = true

	// Scope broadened: admins get the hard policy too.
	d := cfg.Evaluate(session.Admin, 1801, 0, false)
	assert.True(t, d.SendWarning)
	assert.True(t, d.MightKill)
	assert.True(t, d.DoKill)
}
