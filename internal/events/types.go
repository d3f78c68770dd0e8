package events

import (
	"errors"
	"time"
)

// Type identifies the kind of match occurrence.
type Type string

const (
	TypeShot         Type = "SHOT"
	TypeRebound      Type = "REBOUND"
	TypeFoul         Type = "FOUL"
	TypeCard         Type = "CARD"
	TypeTimeout      Type = "TIMEOUT"
	TypeSubstitution Type = "SUBSTITUTION"
	TypePenalty      Type = "PENALTY"
	TypeFreePass     Type = "FREE_PASS"
)

// ShotResult is the outcome of a SHOT event.
type ShotResult string

const (
	ResultGoal ShotResult = "GOAL"
	ResultMiss ShotResult = "MISS"
)

// Card is the colour of a CARD event.
type Card string

const (
	CardYellow Card = "YELLOW"
	CardRed    Card = "RED"
)

var (
	ErrUnknownTeam   = errors.New("unknown team")
	ErrUnknownPlayer = errors.New("unknown player")
)

// Event is an immutable match occurrence. For substitutions PlayerID comes on and
// RelatedPlayerID goes off.
type Event struct {
	ID              string     `json:"id"`
	MatchTime       int        `json:"match_time"`
	WallTime        time.Time  `json:"wall_time"`
	Half            int        `json:"half"`
	Team            string     `json:"team"`
	PlayerID        string     `json:"player_id,omitempty"`
	Type            Type       `json:"type"`
	Result          ShotResult `json:"result,omitempty"`
	Card            Card       `json:"card,omitempty"`
	RelatedPlayerID string     `json:"related_player_id,omitempty"`
}

// Roster answers the membership questions Append needs.
type Roster interface {
	HasTeam(team string) bool
	HasPlayer(team, player string) bool
}

// PlayerLine aggregates one player's events.
type PlayerLine struct {
	PlayerID  string `json:"player_id"`
	Team      string `json:"team"`
	Shots     int    `json:"shots"`
	Goals     int    `json:"goals"`
	ShotPct   int    `json:"shot_pct"`
	Rebounds  int    `json:"rebounds"`
	Fouls     int    `json:"fouls"`
	Yellow    int    `json:"yellow_cards"`
	Red       int    `json:"red_cards"`
	Penalties int    `json:"penalties"`
}

// TeamLine aggregates one team's events.
type TeamLine struct {
	Team          string `json:"team"`
	Goals         int    `json:"goals"`
	Shots         int    `json:"shots"`
	ShotPct       int    `json:"shot_pct"`
	Rebounds      int    `json:"rebounds"`
	Fouls         int    `json:"fouls"`
	Yellow        int    `json:"yellow_cards"`
	Red           int    `json:"red_cards"`
	Timeouts      int    `json:"timeouts"`
	Substitutions int    `json:"substitutions"`
}
