package match

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mauv0809/matchdesk/internal/clock"
	"github.com/mauv0809/matchdesk/internal/events"
)

// The functions in this file are Updaters or Updater builders. Each one takes a record by
// value and returns a fresh copy; callers hand them to the controller's Mutate.

func clocks(fn func(clock.State) clock.State) Updater {
	return func(r Record) (Record, error) {
		r.Clocks = fn(r.Clocks)
		return r, nil
	}
}

var (
	StartClock     Updater = clocks(clock.StartGame)
	StopClock      Updater = clocks(clock.StopGame)
	StartShotClock Updater = clocks(clock.StartShot)
	StopShotClock  Updater = clocks(clock.StopShot)
)

// ToggleClock starts a paused game clock or pauses a running one.
func ToggleClock(r Record) (Record, error) {
	if r.Clocks.Game.Running {
		return StopClock(r)
	}
	return StartClock(r)
}

// SetShotClock is the jury override for the shot clock value.
func SetShotClock(seconds float64) Updater {
	return func(r Record) (Record, error) {
		if seconds < 0 {
			return r, invalid("shot clock cannot be negative: %v", seconds)
		}
		r.Clocks = clock.SetShotClock(r.Clocks, seconds)
		return r, nil
	}
}

// ResetShotClock reloads the shot clock with the rule default.
func ResetShotClock(r Record) (Record, error) {
	r.Clocks = clock.ResetShotClock(r.Clocks, r.Rules)
	return r, nil
}

// Advance moves the clocks by delta seconds.
func Advance(delta float64) Updater {
	return clocks(func(s clock.State) clock.State { return clock.Advance(s, delta) })
}

// SetPossession assigns possession to team, or clears it with NoTeam.
func SetPossession(team TeamID) Updater {
	return func(r Record) (Record, error) {
		if team != NoTeam && !r.HasTeam(string(team)) {
			return r, invalid("unknown team %q", team)
		}
		r.Possession = team
		return r, nil
	}
}

// SwitchPossession hands possession to the other team. Without possession HOME gets the ball.
func SwitchPossession(r Record) (Record, error) {
	if r.Possession == Home {
		r.Possession = Away
	} else {
		r.Possession = Home
	}
	return r, nil
}

// StartTimeout starts a timeout for the team in possession and logs it.
func StartTimeout(now time.Time) Updater {
	return func(r Record) (Record, error) {
		if r.Possession == NoTeam {
			return r, invalid("timeout needs a team in possession")
		}
		if r.Clocks.Timeout.Active {
			return r, invalid("timeout already running for %s", r.Clocks.Timeout.Team)
		}
		ev := r.newEvent(events.TypeTimeout, r.Possession, "", now)
		r, err := appendEvent(r, ev)
		if err != nil {
			return r, err
		}
		r.Clocks = clock.StartTimeout(r.Clocks, string(r.Possession), now, r.Rules)
		return r, nil
	}
}

// EndTimeout cuts the current timeout short.
func EndTimeout(r Record) (Record, error) {
	if !r.Clocks.Timeout.Active {
		return r, invalid("no timeout running")
	}
	r.Clocks = clock.EndTimeout(r.Clocks)
	return r, nil
}

// NextHalf stops play, reloads the shot clock and moves to the next period.
// Periods beyond Rules.Halves are overtime.
func NextHalf(r Record) (Record, error) {
	r.Clocks = clock.ResetShotClock(clock.Stop(r.Clocks), r.Rules)
	r.Half++
	return r, nil
}

// newEvent stamps an event with the current match time and half.
func (r Record) newEvent(typ events.Type, team TeamID, player string, now time.Time) events.Event {
	return events.Event{
		ID:        uuid.NewString(),
		MatchTime: int(r.Clocks.Game.Elapsed),
		WallTime:  now,
		Half:      r.Half,
		Team:      string(team),
		PlayerID:  player,
		Type:      typ,
	}
}

func appendEvent(r Record, ev events.Event) (Record, error) {
	log, err := events.Append(r.Events, r, ev)
	if err != nil {
		if errors.Is(err, events.ErrUnknownTeam) || errors.Is(err, events.ErrUnknownPlayer) {
			return r, fmt.Errorf("%w: %w", ErrValidation, err)
		}
		return r, err
	}
	r.Events = log
	return r, nil
}

// AppendEvent logs a caller-built event. Missing id, times and half are filled in.
func AppendEvent(ev events.Event, now time.Time) Updater {
	return func(r Record) (Record, error) {
		stamp := r.newEvent(ev.Type, TeamID(ev.Team), ev.PlayerID, now)
		if ev.ID == "" {
			ev.ID = stamp.ID
		}
		if ev.WallTime.IsZero() {
			ev.WallTime = stamp.WallTime
		}
		if ev.Half == 0 {
			ev.Half = stamp.Half
			ev.MatchTime = stamp.MatchTime
		}
		if ev.Type == "" {
			return r, invalid("event type is required")
		}
		return appendEvent(r, ev)
	}
}

// RecordShot logs a shot attempt and its result.
func RecordShot(team TeamID, player string, result events.ShotResult, now time.Time) Updater {
	return func(r Record) (Record, error) {
		if result != events.ResultGoal && result != events.ResultMiss {
			return r, invalid("unknown shot result %q", result)
		}
		ev := r.newEvent(events.TypeShot, team, player, now)
		ev.Result = result
		return appendEvent(r, ev)
	}
}

// RecordRebound logs a rebound.
func RecordRebound(team TeamID, player string, now time.Time) Updater {
	return func(r Record) (Record, error) {
		return appendEvent(r, r.newEvent(events.TypeRebound, team, player, now))
	}
}

// RecordFoul logs a foul against team.
func RecordFoul(team TeamID, player string, now time.Time) Updater {
	return func(r Record) (Record, error) {
		return appendEvent(r, r.newEvent(events.TypeFoul, team, player, now))
	}
}

// RecordCard logs a disciplinary card.
func RecordCard(team TeamID, player string, card events.Card, now time.Time) Updater {
	return func(r Record) (Record, error) {
		if card != events.CardYellow && card != events.CardRed {
			return r, invalid("unknown card %q", card)
		}
		ev := r.newEvent(events.TypeCard, team, player, now)
		ev.Card = card
		return appendEvent(r, ev)
	}
}

// Substitute swaps an on-field player for a bench player and logs it.
func Substitute(team TeamID, out, in string, now time.Time) Updater {
	return func(r Record) (Record, error) {
		t, ok := r.Team(team)
		if !ok {
			return r, invalid("unknown team %q", team)
		}
		if t.Substitutions >= r.Rules.MaxSubstitutions {
			return r, invalid("%s has used all %d substitutions", team, r.Rules.MaxSubstitutions)
		}
		outP, ok := t.Player(out)
		if !ok || !outP.OnField {
			return r, invalid("player %q is not on the field for %s", out, team)
		}
		inP, ok := t.Player(in)
		if !ok || inP.OnField {
			return r, invalid("player %q is not on the bench for %s", in, team)
		}

		ev := r.newEvent(events.TypeSubstitution, team, in, now)
		ev.RelatedPlayerID = out
		r, err := appendEvent(r, ev)
		if err != nil {
			return r, err
		}

		t = t.clone()
		for i := range t.Players {
			switch t.Players[i].ID {
			case out:
				t.Players[i].OnField = false
			case in:
				t.Players[i].OnField = true
			}
		}
		t.Substitutions++
		if team == Home {
			r.Home = t
		} else {
			r.Away = t
		}
		return r, nil
	}
}
