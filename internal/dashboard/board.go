// Package dashboard reconciles fetched snapshots with what is on screen.
package dashboard

import (
	"sync"
	"time"

	"ipdash/internal/history"
	"ipdash/internal/services"
	"ipdash/internal/snapshot"
	"ipdash/internal/status"
)

// Board is the displayed state: the last applied snapshot, the address the
// service entries are bound to, and the status indicator.
type Board struct {
	registry *services.Registry
	status   *status.Tracker

	mu        sync.RWMutex
	snap      snapshot.Snapshot
	currentIP string
	entries   []services.Entry
	fetchedAt time.Time
}

// NewBoard starts with the loading placeholder and entries bound to it.
func NewBoard(r *services.Registry, initialLabel string) *Board {
	snap := snapshot.Initial()
	return &Board{
		registry:  r,
		status:    status.NewTracker(initialLabel),
		snap:      snap,
		currentIP: snap.LocalIP,
		entries:   r.Bind(snap.LocalIP),
	}
}

// Apply replaces the snapshot wholesale. When the address differs from the
// cached one the service entries are rebound; changed and previous report
// that transition.
func (b *Board) Apply(s snapshot.Snapshot, at time.Time) (changed bool, previous string) {
	s = s.Normalize()

	b.mu.Lock()
	defer b.mu.Unlock()
	b.snap = s
	if !snapshot.IsPlaceholder(s.LocalIP) {
		b.fetchedAt = at
	}
	if s.LocalIP == b.currentIP {
		return false, b.currentIP
	}
	previous = b.currentIP
	b.currentIP = s.LocalIP
	b.entries = b.registry.Bind(s.LocalIP)
	return true, previous
}

// SetStatus forwards to the tracker.
func (b *Board) SetStatus(kind status.Kind, label string) error {
	return b.status.Set(kind, label)
}

// Status returns the indicator state.
func (b *Board) Status() (status.Kind, string) {
	return b.status.Current()
}

// Snapshot returns the last applied snapshot.
func (b *Board) Snapshot() snapshot.Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.snap
}

// CurrentIP is the address the service entries are bound to.
func (b *Board) CurrentIP() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.currentIP
}

// Launchable reports whether the bound address is usable.
func (b *Board) Launchable() bool {
	return !snapshot.IsPlaceholder(b.CurrentIP())
}

// FetchedAt is when a real address was last applied. Zero until then.
func (b *Board) FetchedAt() time.Time {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.fetchedAt
}

// HistoryRows renders the snapshot's history for display.
func (b *Board) HistoryRows() []history.Row {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return history.Render(b.snap.History)
}

// Services returns a copy of the bound entries in registry order.
func (b *Board) Services() []services.Entry {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]services.Entry(nil), b.entries...)
}

// Resolved reports whether an IP change went from one real address to
// another, which is what the dashboard alerts on.
func Resolved(previous, current string) bool {
	return !snapshot.IsPlaceholder(previous) && !snapshot.IsPlaceholder(current) && previous != current
}
