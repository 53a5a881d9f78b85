package usecase

import (
	"sync"

	"HostPulse/internal/domain/models"
)

const defaultFeedDepth = 100

// ActivityFeed keeps the most recent activity events per account in memory.
// It is fed by the Kafka activity consumer and read by the dashboard
// aggregator, so the feed survives backoffice outages.
type ActivityFeed struct {
	mu      sync.Mutex
	byOwner map[string][]models.ActivityEvent
	depth   int
}

func NewActivityFeed(depth int) *ActivityFeed {
	if depth <= 0 {
		depth = defaultFeedDepth
	}
	return &ActivityFeed{
		byOwner: make(map[string][]models.ActivityEvent),
		depth:   depth,
	}
}

// Add appends an event for its account, evicting the oldest beyond depth.
func (f *ActivityFeed) Add(ev models.ActivityEvent) {
	if ev.OwnerID == "" {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	events := append(f.byOwner[ev.OwnerID], ev)
	if len(events) > f.depth {
		events = events[len(events)-f.depth:]
	}
	f.byOwner[ev.OwnerID] = events
}

// Recent returns up to n events for an account, newest first.
func (f *ActivityFeed) Recent(ownerID string, n int) []models.ActivityEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	events := f.byOwner[ownerID]
	if len(events) == 0 {
		return nil
	}
	if n <= 0 || n > len(events) {
		n = len(events)
	}
	out := make([]models.ActivityEvent, 0, n)
	for i := len(events) - 1; i >= len(events)-n; i-- {
		out = append(out, events[i])
	}
	return out
}
