package clock

import "time"

// NewState returns the clocks at kick-off: game at 0, shot clock loaded, everything paused.
func NewState(rules Rules) State {
	return State{
		Shot: ShotClock{
			Remaining: rules.ShotClockSeconds,
			SetValue:  rules.ShotClockSeconds,
		},
	}
}

// Advance moves the clocks forward by delta seconds.
//
// An active timeout suspends the game and shot clocks; only the timeout counts down.
// The shot clock moves only while the game clock runs and its own Running flag is set.
// Both countdowns clamp at zero and stop themselves when they get there.
func Advance(s State, delta float64) State {
	if delta <= 0 {
		return s
	}

	if s.Timeout.Active {
		s.Timeout.Remaining -= delta
		if s.Timeout.Remaining <= 0 {
			s.Timeout.Remaining = 0
			s.Timeout.Active = false
		}
		return s
	}

	if !s.Game.Running {
		return s
	}
	s.Game.Elapsed += delta

	if s.Shot.Running {
		s.Shot.Remaining -= delta
		if s.Shot.Remaining <= 0 {
			s.Shot.Remaining = 0
			s.Shot.Running = false
		}
	}
	return s
}

// StartGame starts the game clock together with the shot clock.
// An expired shot clock stays stopped until it is reset.
func StartGame(s State) State {
	s.Game.Running = true
	s.Shot.Running = s.Shot.Remaining > 0
	return s
}

// StopGame pauses the game clock and the shot clock.
func StopGame(s State) State {
	s.Game.Running = false
	s.Shot.Running = false
	return s
}

// StartShot starts the shot clock on its own. It still only advances while the game clock runs.
func StartShot(s State) State {
	s.Shot.Running = s.Shot.Remaining > 0
	return s
}

// StopShot pauses the shot clock on its own.
func StopShot(s State) State {
	s.Shot.Running = false
	return s
}

// SetShotClock is the jury override. The running flag is preserved.
func SetShotClock(s State, seconds float64) State {
	if seconds < 0 {
		seconds = 0
	}
	s.Shot.Remaining = seconds
	s.Shot.SetValue = seconds
	return s
}

// ResetShotClock reloads the shot clock with the rule default.
func ResetShotClock(s State, rules Rules) State {
	return SetShotClock(s, rules.ShotClockSeconds)
}

// StartTimeout activates a full-length timeout owned by team.
func StartTimeout(s State, team string, now time.Time, rules Rules) State {
	s.Timeout = TimeoutClock{
		Remaining: rules.TimeoutSeconds,
		Active:    true,
		StartedAt: now,
		Team:      team,
	}
	return s
}

// EndTimeout cuts an active timeout short.
func EndTimeout(s State) State {
	s.Timeout.Active = false
	s.Timeout.Remaining = 0
	return s
}

// Stop force-stops every clock.
func Stop(s State) State {
	s = StopGame(s)
	if s.Timeout.Active {
		s = EndTimeout(s)
	}
	return s
}
