package ws

import (
	"sort"
	"sync"
	"time"
)

// PresenceTracker is the online set keyed by user id. An entry expires when
// no heartbeat arrives within ttl.
type PresenceTracker struct {
	mu       sync.Mutex
	lastSeen map[string]time.Time
	ttl      time.Duration
	now      func() time.Time
}

func NewPresenceTracker(ttl time.Duration) *PresenceTracker {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &PresenceTracker{
		lastSeen: make(map[string]time.Time),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Touch records liveness and reports whether the user just came online.
func (p *PresenceTracker) Touch(userID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, online := p.lastSeen[userID]
	p.lastSeen[userID] = p.now()
	return !online
}

// Remove reports whether the user was online.
func (p *PresenceTracker) Remove(userID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, online := p.lastSeen[userID]
	delete(p.lastSeen, userID)
	return online
}

// Expire drops entries older than ttl and returns their ids.
func (p *PresenceTracker) Expire() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	cutoff := p.now().Add(-p.ttl)
	var expired []string
	for id, seen := range p.lastSeen {
		if seen.Before(cutoff) {
			expired = append(expired, id)
			delete(p.lastSeen, id)
		}
	}
	sort.Strings(expired)
	return expired
}

func (p *PresenceTracker) IsOnline(userID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.lastSeen[userID]
	return ok
}

// Online returns the sorted online set.
func (p *PresenceTracker) Online() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	ids := make([]string, 0, len(p.lastSeen))
	for id := range p.lastSeen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (p *PresenceTracker) TTL() time.Duration {
	return p.ttl
}
