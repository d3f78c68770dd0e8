package match

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/mauv0809/matchdesk/internal/clock"
	"github.com/mauv0809/matchdesk/internal/events"
)

var validate = validator.New()

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// New returns the default unconfigured record.
func New(rules clock.Rules) Record {
	return Record{
		Status: StatusUnconfigured,
		Rules:  rules,
		Half:   1,
		Clocks: clock.NewState(rules),
	}
}

// Configured reports whether rosters have been fixed.
func (r Record) Configured() bool {
	return r.Status != StatusUnconfigured
}

// Active reports whether the record accepts mutations.
func (r Record) Active() bool {
	return r.Status == StatusActive
}

// Team returns the team with the given id.
func (r Record) Team(id TeamID) (Team, bool) {
	switch id {
	case Home:
		return r.Home, true
	case Away:
		return r.Away, true
	}
	return Team{}, false
}

// HasTeam implements events.Roster.
func (r Record) HasTeam(team string) bool {
	_, ok := r.Team(TeamID(team))
	return ok
}

// HasPlayer implements events.Roster.
func (r Record) HasPlayer(team, player string) bool {
	t, ok := r.Team(TeamID(team))
	if !ok {
		return false
	}
	_, ok = t.Player(player)
	return ok
}

// Player looks up a roster entry by id.
func (t Team) Player(id string) (Player, bool) {
	for _, p := range t.Players {
		if p.ID == id {
			return p, true
		}
	}
	return Player{}, false
}

// OnField returns the players currently on the field, in roster order.
func (t Team) OnField() []Player {
	var out []Player
	for _, p := range t.Players {
		if p.OnField {
			out = append(out, p)
		}
	}
	return out
}

func (t Team) clone() Team {
	t.Players = append([]Player(nil), t.Players...)
	return t
}

// Clone returns a deep copy so the result shares no slices with r.
func (r Record) Clone() Record {
	r.Home = r.Home.clone()
	r.Away = r.Away.clone()
	if r.Events != nil {
		r.Events = append(r.Events[:0:0], r.Events...)
	}
	if r.FinishedAt != nil {
		at := *r.FinishedAt
		r.FinishedAt = &at
	}
	return r
}

func prepareTeam(id TeamID, t Team) (Team, error) {
	t = t.clone()
	t.ID = id
	t.Substitutions = 0
	if len(t.Players) == 0 {
		return t, invalid("%s roster is empty", id)
	}
	if err := validate.Struct(t); err != nil {
		return t, invalid("%s roster: %v", id, err)
	}

	numbers := make(map[int]string, len(t.Players))
	ids := make(map[string]bool, len(t.Players))
	for i := range t.Players {
		p := &t.Players[i]
		if other, dup := numbers[p.Number]; dup {
			return t, invalid("%s roster: number %d used by %s and %s", id, p.Number, other, p.Name)
		}
		numbers[p.Number] = p.Name
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		if ids[p.ID] {
			return t, invalid("%s roster: duplicate player id %s", id, p.ID)
		}
		ids[p.ID] = true
		p.OnField = p.Starter
	}
	return t, nil
}

// Configure fixes the rosters of an unconfigured record and starts the match.
func Configure(r Record, home, away Team, now time.Time) (Record, error) {
	if r.Configured() {
		return r, invalid("match %s is already configured", r.ID)
	}
	h, err := prepareTeam(Home, home)
	if err != nil {
		return r, err
	}
	a, err := prepareTeam(Away, away)
	if err != nil {
		return r, err
	}
	// Player statistics are keyed by id alone, so ids must be unique across both rosters.
	for _, p := range a.Players {
		if _, taken := h.Player(p.ID); taken {
			return r, invalid("player id %s is used by both teams", p.ID)
		}
	}

	return Record{
		ID:        uuid.NewString(),
		CreatedAt: now,
		Status:    StatusActive,
		Rules:     r.Rules,
		Home:      h,
		Away:      a,
		Events:    []events.Event{},
		Half:      1,
		Clocks:    clock.NewState(r.Rules),
	}, nil
}

// Finish force-stops the clocks and freezes the record as a history entry.
func Finish(r Record, now time.Time) (Record, error) {
	if !r.Active() {
		return r, fmt.Errorf("finish %s: %w", r.ID, ErrNotActive)
	}
	r = r.Clone()
	r.Clocks = clock.Stop(r.Clocks)
	r.Status = StatusFinished
	r.FinishedAt = &now
	return r, nil
}
