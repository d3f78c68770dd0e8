package events

import "fmt"

// Append validates ev against the roster and returns a new log with ev at the end.
// The input slice is never written to, so earlier snapshots keep their contents.
func Append(log []Event, roster Roster, ev Event) ([]Event, error) {
	if !roster.HasTeam(ev.Team) {
		return log, fmt.Errorf("%w: %q", ErrUnknownTeam, ev.Team)
	}
	if ev.PlayerID != "" && !roster.HasPlayer(ev.Team, ev.PlayerID) {
		return log, fmt.Errorf("%w: %q in team %s", ErrUnknownPlayer, ev.PlayerID, ev.Team)
	}
	if ev.RelatedPlayerID != "" && !roster.HasPlayer(ev.Team, ev.RelatedPlayerID) {
		return log, fmt.Errorf("%w: %q in team %s", ErrUnknownPlayer, ev.RelatedPlayerID, ev.Team)
	}

	next := make([]Event, len(log), len(log)+1)
	copy(next, log)
	return append(next, ev), nil
}

// Filter returns the events matching keep, in log order.
func Filter(log []Event, keep func(Event) bool) []Event {
	var out []Event
	for _, ev := range log {
		if keep(ev) {
			out = append(out, ev)
		}
	}
	return out
}

// ByHalf returns the events recorded during half.
func ByHalf(log []Event, half int) []Event {
	return Filter(log, func(ev Event) bool { return ev.Half == half })
}

// ForTeam returns the events attributed to team.
func ForTeam(log []Event, team string) []Event {
	return Filter(log, func(ev Event) bool { return ev.Team == team })
}
