// Package config loads operational settings from the environment.
// Escalation thresholds are deliberately not configurable here; they
// live as fixed constants in the policy package.
package config

import (
	"github.com/kelseyhightower/envconfig"
)

// Settings are the environment-driven knobs.
type Settings struct {
	StateDir         string   `envconfig:"STATE_DIR" default:"/run/ttywarden"`
	ExemptGroup      string   `envconfig:"EXEMPT_GROUP" default:"wheel"`
	Multiplexers     []string `envconfig:"MULTIPLEXERS" default:"screen,tmux"`
	AllUsers         bool     `envconfig:"ALL_USERS" default:"false"`
	EveryoneOrdinary bool     `envconfig:"EVERYONE_ORDINARY" default:"false"`
}

// Load reads settings from TTYWARDEN_* environment variables.
func Load() (Settings, error) {
	var s Settings
	if err := envconfig.Process("TTYWARDEN", &s); err != nil {
		return Settings{}, err
	}
	return s, nil
}
