package clock

import "time"

// Rules holds the sport-rule constants that drive the clocks and the roster caps.
type Rules struct {
	ShotClockSeconds float64 `json:"shot_clock_seconds" yaml:"shot_clock_seconds"`
	TimeoutSeconds   float64 `json:"timeout_seconds" yaml:"timeout_seconds"`
	MaxSubstitutions int     `json:"max_substitutions" yaml:"max_substitutions"`
	Halves           int     `json:"halves" yaml:"halves"`
}

// DefaultRules returns the standard rule set: 25s shot clock, 60s timeouts,
// 8 substitutions per team and two halves.
func DefaultRules() Rules {
	return Rules{
		ShotClockSeconds: 25,
		TimeoutSeconds:   60,
		MaxSubstitutions: 8,
		Halves:           2,
	}
}

// GameClock counts elapsed playing time upwards from zero.
type GameClock struct {
	Elapsed float64 `json:"elapsed"`
	Running bool    `json:"running"`
}

// ShotClock counts down from SetValue. Remaining never leaves [0, SetValue].
type ShotClock struct {
	Remaining float64 `json:"remaining"`
	SetValue  float64 `json:"set_value"`
	Running   bool    `json:"running"`
}

// TimeoutClock counts down a team timeout. While Active the game and shot clocks are frozen.
type TimeoutClock struct {
	Remaining float64   `json:"remaining"`
	Active    bool      `json:"active"`
	StartedAt time.Time `json:"started_at"`
	Team      string    `json:"team,omitempty"`
}

// State groups the three clocks of a match.
type State struct {
	Game    GameClock    `json:"game"`
	Shot    ShotClock    `json:"shot"`
	Timeout TimeoutClock `json:"timeout"`
}

// Ticking reports whether a tick can change anything.
func (s State) Ticking() bool {
	return s.Game.Running || s.Timeout.Active
}
