// Package netwatch reports connectivity transitions of the local host.
package netwatch

import (
	"context"
	stdnet "net"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	psnet "github.com/shirou/gopsutil/v3/net"
)

// DefaultInterval is the probe period.
const DefaultInterval = 5 * time.Second

// Probe reports whether the host currently has a usable network.
type Probe func(ctx context.Context) (bool, error)

// InterfaceProbe is online when any up, non-loopback interface carries a
// routable address.
func InterfaceProbe(ctx context.Context) (bool, error) {
	ifaces, err := psnet.InterfacesWithContext(ctx)
	if err != nil {
		return false, err
	}
	return anyOnline(ifaces), nil
}

func anyOnline(ifaces []psnet.InterfaceStat) bool {
	for _, iface := range ifaces {
		if !hasFlag(iface.Flags, "up") || hasFlag(iface.Flags, "loopback") {
			continue
		}
		for _, a := range iface.Addrs {
			if routable(a.Addr) {
				return true
			}
		}
	}
	return false
}

func hasFlag(flags []string, want string) bool {
	for _, f := range flags {
		if strings.EqualFold(f, want) {
			return true
		}
	}
	return false
}

// routable accepts "ip" or "ip/prefix" and rejects loopback and link-local.
func routable(addr string) bool {
	if i := strings.IndexByte(addr, '/'); i >= 0 {
		addr = addr[:i]
	}
	ip := stdnet.ParseIP(addr)
	if ip == nil {
		return false
	}
	return !ip.IsLoopback() && !ip.IsLinkLocalUnicast() && !ip.IsUnspecified()
}

// Watcher polls a Probe and calls onChange on every transition. The first
// observation only sets the baseline.
type Watcher struct {
	probe    Probe
	interval time.Duration
	onChange func(online bool)
	log      zerolog.Logger

	mu     sync.Mutex
	known  bool
	online bool
}

// New builds a watcher. A nil probe uses InterfaceProbe.
func New(probe Probe, interval time.Duration, onChange func(online bool), log zerolog.Logger) *Watcher {
	if probe == nil {
		probe = InterfaceProbe
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Watcher{probe: probe, interval: interval, onChange: onChange, log: log}
}

// Online returns the last observed state and whether anything was observed.
func (w *Watcher) Online() (online, known bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.online, w.known
}

// Check probes once and fires onChange if the state flipped. Probe errors
// count as offline.
func (w *Watcher) Check(ctx context.Context) {
	online, err := w.probe(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		w.log.Debug().Err(err).Msg("network probe failed")
		online = false
	}

	w.mu.Lock()
	first := !w.known
	flipped := w.known && w.online != online
	w.known = true
	w.online = online
	w.mu.Unlock()

	if first {
		w.log.Debug().Bool("online", online).Msg("network baseline")
		return
	}
	if flipped {
		w.log.Info().Bool("online", online).Msg("network state changed")
		if w.onChange != nil {
			w.onChange(online)
		}
	}
}

// Run probes immediately and then every interval until ctx is done.
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	w.Check(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.Check(ctx)
		}
	}
}
