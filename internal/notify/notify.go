// Package notify provides the transient toast shown at the bottom of the
// dashboard.
package notify

import (
	"sync"
	"time"
)

// Kind selects the toast colour.
type Kind int

const (
	Success Kind = iota
	Error
)

func (k Kind) String() string {
	if k == Error {
		return "error"
	}
	return "success"
}

// DefaultTTL is how long a toast stays visible.
const DefaultTTL = 3000 * time.Millisecond

// Notifier is what components post user-facing messages to.
type Notifier interface {
	Notify(message string, kind Kind)
}

// Toast is a posted message. ID increases with every post so a dismissal
// scheduled for an older toast can be recognised and ignored.
type Toast struct {
	ID        uint64
	Message   string
	Kind      Kind
	ExpiresAt time.Time
}

// Center holds at most one toast. Posting replaces whatever is showing.
type Center struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	current Toast
	nextID  uint64
	hooks   []func(Toast)
}

// NewCenter creates a toast center. A non-positive ttl uses DefaultTTL.
func NewCenter(ttl time.Duration) *Center {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Center{ttl: ttl, now: time.Now}
}

// TTL returns the display time of a toast.
func (c *Center) TTL() time.Duration {
	return c.ttl
}

// OnPost registers fn to run after each post. Hooks run on the posting
// goroutine and must not block.
func (c *Center) OnPost(fn func(Toast)) {
	c.mu.Lock()
	c.hooks = append(c.hooks, fn)
	c.mu.Unlock()
}

// Notify implements Notifier.
func (c *Center) Notify(message string, kind Kind) {
	c.Post(message, kind)
}

// Post shows message, superseding any toast still visible.
func (c *Center) Post(message string, kind Kind) Toast {
	c.mu.Lock()
	c.nextID++
	t := Toast{
		ID:        c.nextID,
		Message:   message,
		Kind:      kind,
		ExpiresAt: c.now().Add(c.ttl),
	}
	c.current = t
	hooks := append([]func(Toast){}, c.hooks...)
	c.mu.Unlock()

	for _, fn := range hooks {
		fn(t)
	}
	return t
}

// Active returns the visible toast, if any.
func (c *Center) Active(now time.Time) (Toast, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current.ID == 0 || !now.Before(c.current.ExpiresAt) {
		return Toast{}, false
	}
	return c.current, true
}

// Dismiss removes toast id if it is still the current one.
func (c *Center) Dismiss(id uint64) {
	c.mu.Lock()
	if c.current.ID == id {
		c.current = Toast{}
	}
	c.mu.Unlock()
}
