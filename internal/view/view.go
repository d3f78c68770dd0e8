// Package view maps each display surface to a pure projection of the match record.
package view

import (
	"fmt"
	"sort"

	"github.com/mauv0809/matchdesk/internal/clock"
	"github.com/mauv0809/matchdesk/internal/events"
	"github.com/mauv0809/matchdesk/internal/match"
)

// View identifies a display surface.
type View string

const (
	Tracker    View = "tracker"
	Jury       View = "jury"
	Scoreboard View = "scoreboard"
	Stats      View = "stats"
)

// All lists every view in display order.
var All = []View{Tracker, Jury, Scoreboard, Stats}

// Parse maps a name to its View.
func Parse(name string) (View, error) {
	for _, v := range All {
		if string(v) == name {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: unknown view %q", match.ErrValidation, name)
}

type TeamBoard struct {
	ID    match.TeamID `json:"id"`
	Name  string       `json:"name"`
	Color string       `json:"color,omitempty"`
	Score int          `json:"score"`
}

// ScoreboardView is what the hall display shows.
type ScoreboardView struct {
	Status     match.Status `json:"status"`
	Home       TeamBoard    `json:"home"`
	Away       TeamBoard    `json:"away"`
	Half       int          `json:"half"`
	Possession match.TeamID `json:"possession,omitempty"`
	Clocks     clock.State  `json:"clocks"`
}

type PlayerStats struct {
	events.PlayerLine
	Name   string `json:"name"`
	Number int    `json:"number"`
}

type TeamStats struct {
	events.TeamLine
	Name    string        `json:"name"`
	Players []PlayerStats `json:"players"`
}

// StatsView carries the derived statistics for both teams.
type StatsView struct {
	Status match.Status `json:"status"`
	Home   TeamStats    `json:"home"`
	Away   TeamStats    `json:"away"`
}

type JuryTeam struct {
	ID            match.TeamID   `json:"id"`
	Name          string         `json:"name"`
	Timeouts      int            `json:"timeouts"`
	Substitutions int            `json:"substitutions"`
	MaxSubs       int            `json:"max_substitutions"`
	Yellow        int            `json:"yellow_cards"`
	Red           int            `json:"red_cards"`
	OnField       []match.Player `json:"on_field"`
}

// JuryView is the officials' table: clocks, timeouts, substitutions and cards.
type JuryView struct {
	Status     match.Status `json:"status"`
	Half       int          `json:"half"`
	Possession match.TeamID `json:"possession,omitempty"`
	Clocks     clock.State  `json:"clocks"`
	Home       JuryTeam     `json:"home"`
	Away       JuryTeam     `json:"away"`
}

// Render projects rec for v. Tracker gets the full record.
func Render(v View, rec match.Record) (any, error) {
	switch v {
	case Tracker:
		return rec, nil
	case Scoreboard:
		return renderScoreboard(rec), nil
	case Stats:
		return renderStats(rec), nil
	case Jury:
		return renderJury(rec), nil
	default:
		return nil, fmt.Errorf("%w: unknown view %q", match.ErrValidation, v)
	}
}

func renderScoreboard(rec match.Record) ScoreboardView {
	home, away := events.Score(rec.Events, string(match.Home), string(match.Away))
	return ScoreboardView{
		Status:     rec.Status,
		Home:       TeamBoard{ID: match.Home, Name: rec.Home.Name, Color: rec.Home.Color, Score: home},
		Away:       TeamBoard{ID: match.Away, Name: rec.Away.Name, Color: rec.Away.Color, Score: away},
		Half:       rec.Half,
		Possession: rec.Possession,
		Clocks:     rec.Clocks,
	}
}

func teamStats(t match.Team, lines map[string]events.PlayerLine, log []events.Event) TeamStats {
	ts := TeamStats{
		TeamLine: events.TeamLineFor(log, string(t.ID)),
		Name:     t.Name,
		Players:  make([]PlayerStats, 0, len(t.Players)),
	}
	for _, p := range t.Players {
		line, ok := lines[p.ID]
		if !ok {
			line = events.PlayerLine{PlayerID: p.ID, Team: string(t.ID)}
		}
		ts.Players = append(ts.Players, PlayerStats{PlayerLine: line, Name: p.Name, Number: p.Number})
	}
	sort.SliceStable(ts.Players, func(i, j int) bool { return ts.Players[i].Number < ts.Players[j].Number })
	return ts
}

func renderStats(rec match.Record) StatsView {
	lines := events.PlayerLines(rec.Events)
	return StatsView{
		Status: rec.Status,
		Home:   teamStats(rec.Home, lines, rec.Events),
		Away:   teamStats(rec.Away, lines, rec.Events),
	}
}

func juryTeam(rec match.Record, t match.Team) JuryTeam {
	id := string(t.ID)
	return JuryTeam{
		ID:            t.ID,
		Name:          t.Name,
		Timeouts:      events.Timeouts(rec.Events, id),
		Substitutions: t.Substitutions,
		MaxSubs:       rec.Rules.MaxSubstitutions,
		Yellow:        events.Cards(rec.Events, id, events.CardYellow),
		Red:           events.Cards(rec.Events, id, events.CardRed),
		OnField:       t.OnField(),
	}
}

func renderJury(rec match.Record) JuryView {
	return JuryView{
		Status:     rec.Status,
		Half:       rec.Half,
		Possession: rec.Possession,
		Clocks:     rec.Clocks,
		Home:       juryTeam(rec, rec.Home),
		Away:       juryTeam(rec, rec.Away),
	}
}
