// Package services knows the local services reachable at the monitored
// address and how to launch each of them.
package services

import (
	"fmt"
	"net"
	"strconv"
)

// Descriptor describes one known service.
type Descriptor struct {
	Key  string
	Port int
	Name string
	Icon string
}

// Strategy is how a service is launched.
type Strategy int

const (
	// OpenURL opens http://ip:port in the browser.
	OpenURL Strategy = iota
	// DownloadRDP writes a connection profile for the remote desktop client.
	DownloadRDP
	// CopyAddress copies ip:port because there is no URL to navigate to.
	CopyAddress
)

func (s Strategy) String() string {
	switch s {
	case DownloadRDP:
		return "rdp"
	case CopyAddress:
		return "copy"
	default:
		return "open"
	}
}

// StrategyFor returns the launch strategy for a key. Unknown keys are
// treated as web services.
func StrategyFor(key string) Strategy {
	switch key {
	case "rdp":
		return DownloadRDP
	case "ssh", "ftp":
		return CopyAddress
	default:
		return OpenURL
	}
}

// Defaults is the fixed service table in display order.
var Defaults = []Descriptor{
	{Key: "alist", Port: 5244, Name: "Alist文件管理", Icon: "📁"},
	{Key: "rdp", Port: 3389, Name: "远程桌面", Icon: "🖥️"},
	{Key: "ssh", Port: 22, Name: "SSH连接", Icon: "💻"},
	{Key: "web_server", Port: 8080, Name: "Web服务", Icon: "🌐"},
	{Key: "ftp", Port: 21, Name: "FTP服务", Icon: "📂"},
}

// Registry is an immutable, ordered set of descriptors.
type Registry struct {
	order []Descriptor
	byKey map[string]int
}

// NewRegistry validates descs and freezes them.
func NewRegistry(descs []Descriptor) (*Registry, error) {
	r := &Registry{
		order: make([]Descriptor, 0, len(descs)),
		byKey: make(map[string]int, len(descs)),
	}
	for _, d := range descs {
		if d.Key == "" {
			return nil, fmt.Errorf("service %q has an empty key", d.Name)
		}
		if d.Port <= 0 || d.Port > 65535 {
			return nil, fmt.Errorf("service %q: port %d out of range", d.Key, d.Port)
		}
		if _, dup := r.byKey[d.Key]; dup {
			return nil, fmt.Errorf("duplicate service key %q", d.Key)
		}
		r.byKey[d.Key] = len(r.order)
		r.order = append(r.order, d)
	}
	return r, nil
}

// DefaultRegistry returns the registry built from Defaults.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(Defaults)
	if err != nil {
		panic(err)
	}
	return r
}

// Lookup finds a descriptor by key.
func (r *Registry) Lookup(key string) (Descriptor, bool) {
	i, ok := r.byKey[key]
	if !ok {
		return Descriptor{}, false
	}
	return r.order[i], true
}

// All returns a copy of the descriptors in display order.
func (r *Registry) All() []Descriptor {
	return append([]Descriptor(nil), r.order...)
}

// Entry is a descriptor bound to a concrete address.
type Entry struct {
	Descriptor
	IP       string
	Address  string
	URL      string
	Strategy Strategy
}

// Bind builds one entry per descriptor for ip.
func (r *Registry) Bind(ip string) []Entry {
	entries := make([]Entry, 0, len(r.order))
	for _, d := range r.order {
		entries = append(entries, r.bindOne(d, ip))
	}
	return entries
}

// HostPort joins ip and port, bracketing IPv6 literals.
func HostPort(ip string, port int) string {
	return net.JoinHostPort(ip, strconv.Itoa(port))
}
