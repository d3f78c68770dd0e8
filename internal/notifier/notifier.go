package notifier

import "github.com/mauv0809/matchdesk/internal/match"

// Notifier defines a high-level interface for announcing match outcomes.
// This decouples the lifecycle controller from the specific notification provider (e.g., Slack).
type Notifier interface {
	// SendMatchResult announces a finished match and returns the provider's message id.
	SendMatchResult(rec match.Record, dryRun bool) (string, error)
}

// Noop discards notifications. It is used when no provider is configured.
type Noop struct{}

func (Noop) SendMatchResult(match.Record, bool) (string, error) { return "", nil }
