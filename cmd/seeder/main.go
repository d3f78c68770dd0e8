package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/matchdesk/internal/clock"
	"github.com/mauv0809/matchdesk/internal/config"
	"github.com/mauv0809/matchdesk/internal/database"
	"github.com/mauv0809/matchdesk/internal/events"
	"github.com/mauv0809/matchdesk/internal/match"
	"github.com/mauv0809/matchdesk/internal/store"
)

const defaultMatches = 20

var teamNames = []string{"Lions", "Tigers", "Falcons", "Otters", "Wolves", "Herons"}

func roster(name string) match.Team {
	team := match.Team{Name: name}
	for i := 1; i <= 10; i++ {
		team.Players = append(team.Players, match.Player{
			Name:    fmt.Sprintf("%s Player %d", name, i),
			Number:  i,
			Starter: i <= 7,
		})
	}
	return team
}

// playMatch configures a match and drives it through a plausible sequence of events.
func playMatch(rng *rand.Rand, rules clock.Rules, start time.Time) (match.Record, error) {
	home := teamNames[rng.Intn(len(teamNames))]
	away := teamNames[rng.Intn(len(teamNames))]
	for away == home {
		away = teamNames[rng.Intn(len(teamNames))]
	}

	rec, err := match.Configure(match.New(rules), roster(home), roster(away), start)
	if err != nil {
		return match.Record{}, err
	}

	now := start
	steps := []match.Updater{match.StartClock, match.SetPossession(match.Home)}
	for half := 0; half < rules.Halves; half++ {
		if half > 0 {
			steps = append(steps, match.NextHalf, match.StartClock)
		}
		for i := 0; i < 15+rng.Intn(15); i++ {
			now = now.Add(time.Duration(30+rng.Intn(60)) * time.Second)
			team := match.Home
			if rng.Intn(2) == 1 {
				team = match.Away
			}
			side, _ := rec.Team(team)
			players := side.OnField()
			player := players[rng.Intn(len(players))].ID

			result := events.ResultMiss
			if rng.Intn(3) == 0 {
				result = events.ResultGoal
			}
			steps = append(steps, match.Advance(60), match.RecordShot(team, player, result, now))
			if rng.Intn(4) == 0 {
				steps = append(steps, match.RecordFoul(team, player, now))
			}
		}
		steps = append(steps, match.StopClock)
	}

	for _, step := range steps {
		if rec, err = step(rec); err != nil {
			return match.Record{}, err
		}
	}
	return match.Finish(rec, now)
}

func main() {
	log.Info("Starting history seeder...")
	cfg := config.Load()

	count := defaultMatches
	if v, ok := os.LookupEnv("SEED_MATCHES"); ok {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			log.Fatalf("Error: SEED_MATCHES must be a positive integer, got %q", v)
		}
		count = n
	}

	db, teardown, err := database.InitDB(cfg.DBName, cfg.Turso.PrimaryURL, cfg.Turso.AuthToken)
	if err != nil {
		log.Fatalf("Failed to open database: %s", err)
	}
	defer teardown()

	ctx := context.Background()
	matches := store.NewMatchStore(store.New(db), cfg.Rules)
	history, err := matches.LoadHistory(ctx)
	if err != nil {
		log.Warn("Existing history is unreadable, starting from an empty list", "error", err)
		history = nil
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	startTime := time.Now()
	for i := 0; i < count; i++ {
		kickoff := time.Now().Add(-time.Duration(rng.Intn(365*24)) * time.Hour)
		rec, err := playMatch(rng, cfg.Rules, kickoff)
		if err != nil {
			log.Fatalf("Failed to generate match %d: %s", i, err)
		}
		history = append(history, rec)
	}

	if _, err := matches.SaveHistory(ctx, history); err != nil {
		log.Fatalf("Failed to write history: %s", err)
	}
	log.Info("Successfully seeded match history.", "added", count, "total", len(history), "duration", time.Since(startTime))
}
