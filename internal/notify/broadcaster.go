package notify

import (
	"sync"
	"sync/atomic"

	"github.com/riverwatch/go-flood-routes/internal/models"
)

// Broadcaster fans significant gauge readings out to subscribers (the alert
// watcher, debug streams). Slow subscribers are skipped, never block ingestion.
type Broadcaster struct {
	subscribers map[uint64]chan *models.RiverReading
	nextID      atomic.Uint64
	mu          sync.RWMutex
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[uint64]chan *models.RiverReading),
	}
}

func (b *Broadcaster) Subscribe() (uint64, chan *models.RiverReading) {
	id := b.nextID.Add(1)
	ch := make(chan *models.RiverReading, 100) // Buffer for max readings per poll

	b.mu.Lock()
	b.subscribers[id] = ch
	b.mu.Unlock()

	return id, ch
}

func (b *Broadcaster) Unsubscribe(id uint64) {
	b.mu.Lock()
	if ch, ok := b.subscribers[id]; ok {
		close(ch)
		delete(b.subscribers, id)
	}
	b.mu.Unlock()
}

func (b *Broadcaster) Broadcast(r *models.RiverReading) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subscribers {
		select {
		case ch <- r:
		default:
			// Skip slow subscribers
		}
	}
}

func (b *Broadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Close closes all subscriber channels, causing watchers to exit gracefully
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, ch := range b.subscribers {
		close(ch)
		delete(b.subscribers, id)
	}
}
