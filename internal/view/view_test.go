package view

import (
	"testing"
	"time"

	"github.com/mauv0809/matchdesk/internal/clock"
	"github.com/mauv0809/matchdesk/internal/events"
	"github.com/mauv0809/matchdesk/internal/match"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 10, 19, 14, 0, 0, 0, time.UTC)

func played(t *testing.T) match.Record {
	t.Helper()
	team := func(name, prefix string) match.Team {
		return match.Team{Name: name, Color: "#00ff00", Players: []match.Player{
			{ID: prefix + "9", Name: "Nine", Number: 9, Starter: true},
			{ID: prefix + "4", Name: "Four", Number: 4, Starter: true},
			{ID: prefix + "7", Name: "Seven", Number: 7},
		}}
	}
	r, err := match.Configure(match.New(clock.DefaultRules()), team("Lions", "h"), team("Tigers", "a"), now)
	require.NoError(t, err)
	for _, u := range []match.Updater{
		match.SetPossession(match.Home),
		match.RecordShot(match.Home, "h9", events.ResultGoal, now),
		match.RecordShot(match.Home, "h9", events.ResultGoal, now),
		match.RecordShot(match.Home, "h9", events.ResultMiss, now),
		match.RecordCard(match.Away, "a4", events.CardYellow, now),
		match.Substitute(match.Away, "a4", "a7", now),
		match.StartTimeout(now),
	} {
		r, err = u(r)
		require.NoError(t, err)
	}
	return r
}

func TestParse(t *testing.T) {
	for _, v := range All {
		got, err := Parse(string(v))
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}

	_, err := Parse("admin")
	assert.ErrorIs(t, err, match.ErrValidation)
}

func TestRender_Tracker(t *testing.T) {
	rec := played(t)
	out, err := Render(Tracker, rec)
	require.NoError(t, err)
	assert.Equal(t, rec, out)
}

func TestRender_Scoreboard(t *testing.T) {
	out, err := Render(Scoreboard, played(t))
	require.NoError(t, err)
	sb, ok := out.(ScoreboardView)
	require.True(t, ok)

	assert.Equal(t, 2, sb.Home.Score)
	assert.Equal(t, 0, sb.Away.Score)
	assert.Equal(t, "Lions", sb.Home.Name)
	assert.Equal(t, match.Home, sb.Possession)
	assert.True(t, sb.Clocks.Timeout.Active)
}

func TestRender_Stats(t *testing.T) {
	out, err := Render(Stats, played(t))
	require.NoError(t, err)
	st, ok := out.(StatsView)
	require.True(t, ok)

	assert.Equal(t, 67, st.Home.ShotPct)
	require.Len(t, st.Home.Players, 3)
	assert.Equal(t, 4, st.Home.Players[0].Number, "players are listed by jersey number")
	nine := st.Home.Players[2]
	assert.Equal(t, 2, nine.Goals)
	assert.Equal(t, 3, nine.Shots)
	assert.Equal(t, 67, nine.ShotPct)
	assert.Equal(t, 1, st.Away.Yellow)
}

func TestRender_Jury(t *testing.T) {
	out, err := Render(Jury, played(t))
	require.NoError(t, err)
	j, ok := out.(JuryView)
	require.True(t, ok)

	assert.Equal(t, 1, j.Home.Timeouts)
	assert.Equal(t, 1, j.Away.Substitutions)
	assert.Equal(t, 8, j.Away.MaxSubs)
	assert.Equal(t, 1, j.Away.Yellow)
	require.Len(t, j.Away.OnField, 2)
	assert.Equal(t, "a9", j.Away.OnField[0].ID)
	assert.Equal(t, "a7", j.Away.OnField[1].ID)
}

func TestRender_IsPure(t *testing.T) {
	rec := played(t)
	before := rec.Clone()
	for _, v := range All {
		_, err := Render(v, rec)
		require.NoError(t, err)
	}
	assert.Equal(t, before, rec)

	_, err := Render(View("bogus"), rec)
	assert.Error(t, err)
}
