// Package nav finds and follows routes on the arena torus.
//
// FindRoute is a deterministic A* over an index-addressed node arena. A Pilot
// runs searches on a background worker fed through a coalescing Mailbox: the
// tick loop submits goals and occupancy snapshots without blocking, and only
// the most recent query is ever searched.
package nav
