package events

import "math"

func count(log []Event, match func(Event) bool) int {
	n := 0
	for _, ev := range log {
		if match(ev) {
			n++
		}
	}
	return n
}

func isGoal(ev Event) bool { return ev.Type == TypeShot && ev.Result == ResultGoal }

// Goals counts SHOT events with result GOAL for team.
func Goals(log []Event, team string) int {
	return count(log, func(ev Event) bool { return ev.Team == team && isGoal(ev) })
}

// Shots counts SHOT events for team, scored or not.
func Shots(log []Event, team string) int {
	return count(log, func(ev Event) bool { return ev.Team == team && ev.Type == TypeShot })
}

// PlayerGoals counts goals scored by player.
func PlayerGoals(log []Event, player string) int {
	return count(log, func(ev Event) bool { return ev.PlayerID == player && isGoal(ev) })
}

// PlayerShots counts shots taken by player.
func PlayerShots(log []Event, player string) int {
	return count(log, func(ev Event) bool { return ev.PlayerID == player && ev.Type == TypeShot })
}

// PlayerShotPct is the rounded percentage of player's shots that went in.
func PlayerShotPct(log []Event, player string) int {
	return ShotPct(PlayerGoals(log, player), PlayerShots(log, player))
}

// ShotPct returns goals/shots as a whole percentage, rounded half away from zero. Zero shots is 0%.
func ShotPct(goals, shots int) int {
	if shots == 0 {
		return 0
	}
	return int(math.Round(float64(goals) * 100 / float64(shots)))
}

// Rebounds counts REBOUND events for team.
func Rebounds(log []Event, team string) int {
	return count(log, func(ev Event) bool { return ev.Team == team && ev.Type == TypeRebound })
}

// Fouls counts FOUL events for team.
func Fouls(log []Event, team string) int {
	return count(log, func(ev Event) bool { return ev.Team == team && ev.Type == TypeFoul })
}

// Cards counts cards of the given colour shown to team.
func Cards(log []Event, team string, card Card) int {
	return count(log, func(ev Event) bool { return ev.Team == team && ev.Type == TypeCard && ev.Card == card })
}

// Timeouts counts timeouts taken by team.
func Timeouts(log []Event, team string) int {
	return count(log, func(ev Event) bool { return ev.Team == team && ev.Type == TypeTimeout })
}

// Substitutions counts substitutions made by team.
func Substitutions(log []Event, team string) int {
	return count(log, func(ev Event) bool { return ev.Team == team && ev.Type == TypeSubstitution })
}

// Score returns the goal totals for both teams.
func Score(log []Event, home, away string) (int, int) {
	return Goals(log, home), Goals(log, away)
}

// TeamLineFor aggregates every counter for team.
func TeamLineFor(log []Event, team string) TeamLine {
	line := TeamLine{
		Team:          team,
		Goals:         Goals(log, team),
		Shots:         Shots(log, team),
		Rebounds:      Rebounds(log, team),
		Fouls:         Fouls(log, team),
		Yellow:        Cards(log, team, CardYellow),
		Red:           Cards(log, team, CardRed),
		Timeouts:      Timeouts(log, team),
		Substitutions: Substitutions(log, team),
	}
	line.ShotPct = ShotPct(line.Goals, line.Shots)
	return line
}

// PlayerLines aggregates per-player counters keyed by player id.
// Substitution and timeout events do not count towards a player's line.
func PlayerLines(log []Event) map[string]PlayerLine {
	lines := make(map[string]PlayerLine)
	for _, ev := range log {
		if ev.PlayerID == "" || ev.Type == TypeSubstitution || ev.Type == TypeTimeout {
			continue
		}
		line := lines[ev.PlayerID]
		line.PlayerID = ev.PlayerID
		line.Team = ev.Team
		switch ev.Type {
		case TypeShot:
			line.Shots++
			if ev.Result == ResultGoal {
				line.Goals++
			}
		case TypeRebound:
			line.Rebounds++
		case TypeFoul:
			line.Fouls++
		case TypeCard:
			switch ev.Card {
			case CardYellow:
				line.Yellow++
			case CardRed:
				line.Red++
			}
		case TypePenalty:
			line.Penalties++
		}
		lines[ev.PlayerID] = line
	}
	for id, line := range lines {
		line.ShotPct = ShotPct(line.Goals, line.Shots)
		lines[id] = line
	}
	return lines
}
