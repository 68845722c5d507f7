// Package history turns the snapshot's change log into display rows.
package history

import (
	"github.com/mattn/go-runewidth"

	"ipdash/internal/snapshot"
)

// MaxRows is how many of the most recent entries are shown.
const MaxRows = 10

// Visual classes used by the view to pick a style.
const (
	ClassNew     = "new"
	ClassUpdated = "updated"
	ClassInit    = "init"
)

// Row is one rendered history line.
type Row struct {
	Time  string
	IP    string
	Label string
	Class string
}

// Placeholder is the single row shown when there is no history yet.
var Placeholder = Row{Time: "暂无记录", IP: "-", Label: "等待数据", Class: ClassInit}

// Describe maps a change onto its label and class. Errors share the
// updated style.
func Describe(c snapshot.Change) (label, class string) {
	switch c {
	case snapshot.ChangeNew:
		return "新增", ClassNew
	case snapshot.ChangeUpdated:
		return "更新", ClassUpdated
	case snapshot.ChangeError:
		return "错误", ClassUpdated
	default:
		return "初始化", ClassInit
	}
}

// Render keeps the last MaxRows entries and returns them newest first.
func Render(entries []snapshot.HistoryEntry) []Row {
	if len(entries) == 0 {
		return []Row{Placeholder}
	}
	start := len(entries) - MaxRows
	if start < 0 {
		start = 0
	}
	recent := entries[start:]
	rows := make([]Row, 0, len(recent))
	for i := len(recent) - 1; i >= 0; i-- {
		e := recent[i]
		label, class := Describe(e.Change)
		rows = append(rows, Row{Time: e.Timestamp, IP: e.IP, Label: label, Class: class})
	}
	return rows
}

// Widths holds the display width of each column.
type Widths struct {
	Time, IP, Label int
}

// Columns measures rows in terminal cells so CJK text lines up.
func Columns(rows []Row) Widths {
	w := Widths{Time: runewidth.StringWidth("时间"), IP: runewidth.StringWidth("IP"), Label: runewidth.StringWidth("变更")}
	for _, r := range rows {
		if n := runewidth.StringWidth(r.Time); n > w.Time {
			w.Time = n
		}
		if n := runewidth.StringWidth(r.IP); n > w.IP {
			w.IP = n
		}
		if n := runewidth.StringWidth(r.Label); n > w.Label {
			w.Label = n
		}
	}
	return w
}

// Pad right-fills s with spaces to width cells.
func Pad(s string, width int) string {
	return runewidth.FillRight(s, width)
}
