package pubsub

import (
	"sync"

	"github.com/charmbracelet/log"
)

const subscriberBuffer = 64

// fanout delivers changes to local subscribers. Every driver embeds one.
type fanout struct {
	mu   sync.RWMutex
	subs map[string]chan Change
}

func newFanout() *fanout {
	return &fanout{subs: make(map[string]chan Change)}
}

func (f *fanout) Subscribe(observerID string) (<-chan Change, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if old, ok := f.subs[observerID]; ok {
		close(old)
	}
	ch := make(chan Change, subscriberBuffer)
	f.subs[observerID] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			if cur, ok := f.subs[observerID]; ok && cur == ch {
				delete(f.subs, observerID)
				close(ch)
			}
		})
	}
	return ch, cancel
}

// deliver hands c to every subscriber except its origin without blocking.
func (f *fanout) deliver(c Change) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for id, ch := range f.subs {
		if id == c.Origin {
			continue
		}
		select {
		case ch <- c:
		default:
			log.Warn("Subscriber buffer full, dropping change", "observer", id, "key", c.Key)
		}
	}
}

// deliverEncoded decodes a wire payload received from source and delivers it.
// Undecodable payloads are dropped and reported as false.
func (f *fanout) deliverEncoded(data []byte, source string) bool {
	c, err := Decode(data)
	if err != nil {
		log.Warn("Dropping undecodable change", "error", err, "source", source)
		return false
	}
	f.deliver(c)
	return true
}

func (f *fanout) closeAll() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, ch := range f.subs {
		close(ch)
		delete(f.subs, id)
	}
}
