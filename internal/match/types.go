package match

import (
	"errors"
	"time"

	"github.com/mauv0809/matchdesk/internal/clock"
	"github.com/mauv0809/matchdesk/internal/events"
)

// TeamID identifies one side of the match.
type TeamID string

const (
	Home TeamID = "HOME"
	Away TeamID = "AWAY"
	// NoTeam is used for an unassigned possession.
	NoTeam TeamID = ""
)

// Status is the lifecycle position of a Record.
type Status string

const (
	StatusUnconfigured Status = "UNCONFIGURED"
	StatusActive       Status = "ACTIVE"
	StatusFinished     Status = "FINISHED"
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotActive  = errors.New("match is not active")
	ErrNotFound   = errors.New("match not found")
)

// Player is one roster entry. Starter is fixed once the match is configured;
// OnField only changes through substitutions.
type Player struct {
	ID       string `json:"id"`
	Name     string `json:"name" validate:"required,max=64"`
	Number   int    `json:"number" validate:"gte=0,lte=99"`
	Gender   string `json:"gender,omitempty" validate:"omitempty,oneof=M F X"`
	Position string `json:"position,omitempty" validate:"omitempty,oneof=ATTACK DEFENCE"`
	Starter  bool   `json:"starter"`
	OnField  bool   `json:"on_field"`
}

// Team is one side of the match with its roster.
type Team struct {
	ID            TeamID   `json:"id"`
	Name          string   `json:"name" validate:"required,max=64"`
	Color         string   `json:"color,omitempty" validate:"omitempty,hexcolor"`
	Players       []Player `json:"players" validate:"required,min=1,dive"`
	Substitutions int      `json:"substitutions"`
}

// Record is the whole match: rosters, clocks, possession and the event log.
// It is the unit of persistence and replication and is only ever replaced, never patched.
type Record struct {
	ID         string         `json:"id"`
	CreatedAt  time.Time      `json:"created_at"`
	FinishedAt *time.Time     `json:"finished_at,omitempty"`
	Status     Status         `json:"status"`
	Rules      clock.Rules    `json:"rules"`
	Home       Team           `json:"home"`
	Away       Team           `json:"away"`
	Events     []events.Event `json:"events"`
	Half       int            `json:"half"`
	Possession TeamID         `json:"possession,omitempty"`
	Clocks     clock.State    `json:"clocks"`
}

// Updater transforms one record into the next.
type Updater func(Record) (Record, error)
