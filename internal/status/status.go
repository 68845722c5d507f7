// Package status tracks the single connection indicator of the dashboard.
package status

import (
	"fmt"
	"sync"
)

// Kind is the visual state of the indicator.
type Kind int

const (
	Updating Kind = iota
	Online
	Offline
)

func (k Kind) String() string {
	switch k {
	case Online:
		return "online"
	case Offline:
		return "offline"
	case Updating:
		return "updating"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Valid reports whether k is one of the three known states.
func (k Kind) Valid() bool {
	return k == Online || k == Offline || k == Updating
}

// Tracker keeps the current indicator state. Only the latest write is
// observable.
type Tracker struct {
	mu    sync.RWMutex
	kind  Kind
	label string
}

// NewTracker starts in the updating state with the given label.
func NewTracker(label string) *Tracker {
	return &Tracker{kind: Updating, label: label}
}

// Set replaces kind and label. Unknown kinds leave the tracker unchanged.
func (t *Tracker) Set(kind Kind, label string) error {
	if !kind.Valid() {
		return fmt.Errorf("unknown status kind %d", int(kind))
	}
	t.mu.Lock()
	t.kind = kind
	t.label = label
	t.mu.Unlock()
	return nil
}

// Current returns the active kind and label.
func (t *Tracker) Current() (Kind, string) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.kind, t.label
}
