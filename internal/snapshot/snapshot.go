// Package snapshot holds the data published by the IP monitor: the current
// local address, the interface it was found on and the change history.
package snapshot

import (
	"bytes"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Placeholder texts shown before the first fetch and after a failed one.
const (
	Loading     = "加载中..."
	Unreachable = "无法获取"
	LoadFailed  = "数据加载失败"
)

// localeLayout mirrors the zh-CN locale rendering used by the producer's
// consumers ("2024/5/1 14:03:05").
const localeLayout = "2006/1/2 15:04:05"

// Change classifies a history entry.
type Change int

const (
	ChangeInit Change = iota
	ChangeNew
	ChangeUpdated
	ChangeError
)

// ParseChange maps the wire value onto a Change. Anything it does not
// recognise is treated as an initialisation entry.
func ParseChange(s string) Change {
	switch s {
	case "new":
		return ChangeNew
	case "updated":
		return ChangeUpdated
	case "error":
		return ChangeError
	default:
		return ChangeInit
	}
}

func (c Change) String() string {
	switch c {
	case ChangeNew:
		return "new"
	case ChangeUpdated:
		return "updated"
	case ChangeError:
		return "error"
	default:
		return "init"
	}
}

// MarshalJSON writes the wire name.
func (c Change) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON never fails on the value itself: numbers, null and unknown
// strings all decode to ChangeInit.
func (c *Change) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '"' {
		*c = ChangeInit
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*c = ChangeInit
		return nil
	}
	*c = ParseChange(s)
	return nil
}

// HistoryEntry is one recorded IP observation. Timestamp is kept as the
// producer formatted it.
type HistoryEntry struct {
	Timestamp string `json:"timestamp"`
	IP        string `json:"ip"`
	Change    Change `json:"change"`
}

// UnmarshalJSON accepts any scalar for the text fields; numbers and booleans
// are kept as written.
func (e *HistoryEntry) UnmarshalJSON(data []byte) error {
	var raw struct {
		Timestamp looseString `json:"timestamp"`
		IP        looseString `json:"ip"`
		Change    Change      `json:"change"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*e = HistoryEntry{Timestamp: string(raw.Timestamp), IP: string(raw.IP), Change: raw.Change}
	return nil
}

// Snapshot is the whole published document. It is replaced wholesale on
// every fetch and never merged.
type Snapshot struct {
	LocalIP          string         `json:"localIP"`
	NetworkInterface string         `json:"networkInterface"`
	LastUpdate       string         `json:"lastUpdate"`
	History          []HistoryEntry `json:"history"`
}

// UnmarshalJSON is lenient about the text fields the same way HistoryEntry
// is. Objects and arrays in their place count as absent.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	var raw struct {
		LocalIP          looseString    `json:"localIP"`
		NetworkInterface looseString    `json:"networkInterface"`
		LastUpdate       looseString    `json:"lastUpdate"`
		History          []HistoryEntry `json:"history"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = Snapshot{
		LocalIP:          string(raw.LocalIP),
		NetworkInterface: string(raw.NetworkInterface),
		LastUpdate:       string(raw.LastUpdate),
		History:          raw.History,
	}
	return nil
}

// looseString decodes a JSON string, number or boolean as text. null,
// objects and arrays decode to "".
type looseString string

func (l *looseString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		*l = ""
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = looseString(s)
	case '{', '[', 'n':
		*l = ""
	default:
		*l = looseString(data)
	}
	return nil
}

// Initial is the state shown before anything has been fetched.
func Initial() Snapshot {
	return Snapshot{
		LocalIP:          Loading,
		NetworkInterface: Loading,
		LastUpdate:       Loading,
		History:          []HistoryEntry{},
	}
}

// Unavailable builds the placeholder applied after a failed fetch. When
// withErrorEntry is set the history carries a single synthetic error row
// stamped with now.
func Unavailable(now time.Time, withErrorEntry bool) Snapshot {
	s := Snapshot{
		LocalIP:          Unreachable,
		NetworkInterface: Unreachable,
		LastUpdate:       LoadFailed,
		History:          []HistoryEntry{},
	}
	if withErrorEntry {
		s.History = append(s.History, HistoryEntry{
			Timestamp: FormatLocal(now),
			IP:        Unreachable,
			Change:    ChangeError,
		})
	}
	return s
}

// Normalize fills absent fields with the unreachable placeholder.
func (s Snapshot) Normalize() Snapshot {
	if s.LocalIP == "" {
		s.LocalIP = Unreachable
	}
	if s.NetworkInterface == "" {
		s.NetworkInterface = Unreachable
	}
	if s.LastUpdate == "" {
		s.LastUpdate = Unreachable
	}
	if s.History == nil {
		s.History = []HistoryEntry{}
	}
	return s
}

// Decode parses a snapshot document and normalises it.
func Decode(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, err
	}
	return s.Normalize(), nil
}

// IsPlaceholder reports whether s is empty or one of the placeholder texts,
// i.e. not something a user could connect to or copy.
func IsPlaceholder(s string) bool {
	switch s {
	case "", Loading, Unreachable, LoadFailed:
		return true
	}
	return false
}

// FormatLocal renders t the way history timestamps are displayed.
func FormatLocal(t time.Time) string {
	return t.Format(localeLayout)
}
