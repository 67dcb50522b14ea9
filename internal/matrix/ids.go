package matrix

import (
	"sync"
	"time"
)

// IDGenerator hands out strictly increasing ids derived from the wall clock.
// Two calls within the same millisecond still get distinct ids.
type IDGenerator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

func NewIDGenerator(now func() time.Time) *IDGenerator {
	if now == nil {
		now = time.Now
	}
	return &IDGenerator{now: now}
}

// Next returns a new id greater than every id returned or observed before
func (g *IDGenerator) Next() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := g.now().UnixMilli()
	if id <= g.last {
		id = g.last + 1
	}
	g.last = id
	return id
}

// Observe makes sure future ids are above id, used when seeding persisted data
func (g *IDGenerator) Observe(id int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if id > g.last {
		g.last = id
	}
}
