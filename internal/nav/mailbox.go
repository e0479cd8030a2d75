package nav

import (
	"sync"
	"time"

	"github.com/Garsondee/serpent-arena/internal/grid"
)

// Query is one search request. A newer query replaces an older one that has
// not been picked up yet; queries are never queued.
type Query struct {
	Start     grid.Cell
	Goal      grid.Cell
	Occupancy Occupancy
	Seq       uint64
}

// Stats are observational counters kept alongside the published route.
type Stats struct {
	Submits      uint64
	Searches     uint64
	Found        uint64
	Empty        uint64
	LastSeq      uint64 // query sequence the published route answers
	LastRouteLen int
	LastDuration time.Duration
}

// Mailbox is the only state shared between the foreground and the search
// worker: the latest query, the pending flag, the published route and its
// cursor. Every field is guarded by mu.
type Mailbox struct {
	mu      sync.Mutex
	cond    *sync.Cond
	latest  Query
	pending bool
	closed  bool
	seq     uint64

	route  Route
	cursor int
	stats  Stats
}

// NewMailbox returns an open, empty mailbox.
func NewMailbox() *Mailbox {
	m := &Mailbox{}
	m.cond = sync.NewCond(&m.mu)
	return m
}

// Submit stores q as the latest query and wakes the worker. The occupancy is
// cloned on the way in. Returns the sequence number assigned to q.
func (m *Mailbox) Submit(q Query) uint64 {
	q.Occupancy = q.Occupancy.Clone()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	q.Seq = m.seq
	m.latest = q
	m.pending = true
	m.stats.Submits++
	m.cond.Broadcast()
	return q.Seq
}

// TryTakeLatest returns the pending query without blocking and clears the
// pending flag.
func (m *Mailbox) TryTakeLatest() (Query, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.pending || m.closed {
		return Query{}, false
	}
	m.pending = false
	return m.latest, true
}

// Wait blocks until a query is pending or the mailbox is closed. It returns
// false once closed, even if a query is still pending.
func (m *Mailbox) Wait() (Query, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for !m.pending && !m.closed {
		m.cond.Wait()
	}
	if m.closed {
		return Query{}, false
	}
	m.pending = false
	return m.latest, true
}

// Publish replaces the published route and rewinds the cursor.
func (m *Mailbox) Publish(q Query, r Route, took time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.route = r
	m.cursor = 0
	m.stats.Searches++
	if len(r) > 0 {
		m.stats.Found++
	} else {
		m.stats.Empty++
	}
	m.stats.LastSeq = q.Seq
	m.stats.LastRouteLen = len(r)
	m.stats.LastDuration = took
	m.cond.Broadcast()
}

// WaitIdle blocks until the most recent submitted query has been answered or
// the mailbox is closed. Coalesced queries are never answered on their own;
// only the latest counts.
func (m *Mailbox) WaitIdle() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for !m.closed && (m.pending || m.stats.LastSeq < m.seq) {
		m.cond.Wait()
	}
}

// HasRoute reports whether an unconsumed waypoint remains.
func (m *Mailbox) HasRoute() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cursor < len(m.route)
}

// TakeWaypoint returns the waypoint under the cursor. When current already
// sits on that waypoint the cursor moves past it, but the returned waypoint
// is still the one that was under the cursor on entry.
func (m *Mailbox) TakeWaypoint(current grid.Cell) (grid.Cell, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cursor >= len(m.route) {
		return grid.Cell{}, false
	}
	wp := m.route[m.cursor]
	if wp == current {
		m.cursor++
	}
	return wp, true
}

// Published returns a copy of the route and the cursor position.
func (m *Mailbox) Published() (Route, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(Route, len(m.route))
	copy(out, m.route)
	return out, m.cursor
}

// Stats returns a copy of the counters.
func (m *Mailbox) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats
}

// Close marks the mailbox closed and wakes every waiter.
func (m *Mailbox) Close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	m.cond.Broadcast()
}

// Reopen clears the closed flag so a new worker can wait on the mailbox.
// A query that arrived while closed stays pending.
func (m *Mailbox) Reopen() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = false
}
