package controller

import (
	"bytes"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/matchdesk/internal/match"
	"github.com/mauv0809/matchdesk/internal/pubsub"
	"github.com/mauv0809/matchdesk/internal/store"
)

func (c *Controller) listen(feed <-chan pubsub.Change, done chan struct{}) {
	defer close(done)
	for change := range feed {
		c.applyRemote(change)
	}
}

// applyRemote merges a change written by another observer. The incoming snapshot replaces
// the whole local record (last write wins); a deleted slot resets it to the default.
func (c *Controller) applyRemote(change pubsub.Change) {
	if change.Key != store.CurrentKey {
		log.Debug("Ignoring remote change", "key", change.Key, "origin", change.Origin)
		return
	}

	rec := match.New(c.rules)
	var data []byte
	if !change.Deleted {
		decoded, err := store.DecodeRecord(change.Value)
		if err != nil {
			log.Warn("Ignoring undecodable remote snapshot", "error", err, "origin", change.Origin)
			return
		}
		rec, data = decoded, change.Value
	}

	c.mu.Lock()
	if bytes.Equal(data, c.lastPersisted) && rec.Status == c.rec.Status {
		c.mu.Unlock()
		return
	}
	c.rec = rec
	c.lastPersisted = data
	c.sched.Rebase()
	c.metrics.IncRemoteApplied()
	c.handoff(rec.Clone(), true)

	if rec.Active() {
		c.sched.Start(c.runCtx)
	} else {
		c.sched.Stop()
	}
	log.Debug("Applied remote snapshot", "origin", change.Origin, "status", rec.Status)
}
