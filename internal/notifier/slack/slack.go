package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/matchdesk/internal/events"
	"github.com/mauv0809/matchdesk/internal/match"
	"github.com/mauv0809/matchdesk/internal/metrics"
	"github.com/mauv0809/matchdesk/internal/notifier"
	"github.com/slack-go/slack"
)

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Notifier = &Notifier{}

// Notifier posts match results to a Slack channel.
type Notifier struct {
	api       slackClient
	channelID string
	metrics   metrics.Metrics
}

// NewNotifier creates a new Notifier.
func NewNotifier(token, channelID string, metrics metrics.Metrics) *Notifier {
	return NewNotifierWithAPI(slack.New(token), channelID, metrics)
}

// NewNotifierWithAPI creates a new Notifier with a specific slack.Client instance.
// Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, channelID string, metrics metrics.Metrics) *Notifier {
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

func (s *Notifier) sendMessage(message slack.Message, dryRun bool) (string, error) {
	if dryRun {
		jsonMsg, _ := json.MarshalIndent(message, "", "  ")
		log.Info("[Dry Run] Would send Slack message", "channel", s.channelID, "message", string(jsonMsg))
		return "dry-run-ts", nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	channelID, timestamp, err := s.api.PostMessageContext(
		ctx,
		s.channelID,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
	)
	if err != nil {
		s.metrics.IncSlackNotifFailed()
		log.Error("Failed to send Slack message", "error", err, "channel", s.channelID)
		return "", fmt.Errorf("failed to post message: %w", err)
	}

	s.metrics.IncSlackNotifSent()
	log.Info("Successfully sent Slack message", "channel", channelID, "timestamp", timestamp)
	return timestamp, nil
}

// SendMatchResult posts the final score and top scorers of a finished match.
func (s *Notifier) SendMatchResult(rec match.Record, dryRun bool) (string, error) {
	return s.sendMessage(s.formatMatchResult(rec), dryRun)
}

type scorer struct {
	name  string
	team  string
	goals int
}

// topScorers returns up to n players with at least one goal, most goals first.
func topScorers(rec match.Record, n int) []scorer {
	var out []scorer
	for id, line := range events.PlayerLines(rec.Events) {
		if line.Goals == 0 {
			continue
		}
		team, _ := rec.Team(match.TeamID(line.Team))
		name := id
		if p, ok := team.Player(id); ok {
			name = fmt.Sprintf("%s (#%d)", p.Name, p.Number)
		}
		out = append(out, scorer{name: name, team: team.Name, goals: line.Goals})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].goals != out[j].goals {
			return out[i].goals > out[j].goals
		}
		return out[i].name < out[j].name
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// formatMatchResult creates the Slack message for a finished match using Block Kit.
func (s *Notifier) formatMatchResult(rec match.Record) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", "Match finished!", false, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	home, away := events.Score(rec.Events, string(match.Home), string(match.Away))
	scoreText := fmt.Sprintf("*%s %d - %d %s*", rec.Home.Name, home, away, rec.Away.Name)
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", scoreText, false, false), nil, nil))

	scorers := topScorers(rec, 3)
	if len(scorers) > 0 {
		lines := make([]string, 0, len(scorers))
		for _, sc := range scorers {
			lines = append(lines, fmt.Sprintf("• %s, %s: %d", sc.name, sc.team, sc.goals))
		}
		blocks = append(blocks, slack.NewSectionBlock(
			slack.NewTextBlockObject("plain_text", "Top scorers:\n"+strings.Join(lines, "\n"), false, false), nil, nil))
	}

	hl := events.TeamLineFor(rec.Events, string(match.Home))
	al := events.TeamLineFor(rec.Events, string(match.Away))
	summary := fmt.Sprintf("Shooting %d%% / %d%% · Fouls %d / %d · Halves played %d",
		hl.ShotPct, al.ShotPct, hl.Fouls, al.Fouls, rec.Half)
	blocks = append(blocks, slack.NewContextBlock("", slack.NewTextBlockObject("plain_text", summary, false, false)))

	return slack.NewBlockMessage(blocks...)
}
