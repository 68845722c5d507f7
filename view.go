package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	figure "github.com/common-nighthawk/go-figure"
	"github.com/dustin/go-humanize"

	"ipdash/internal/history"
	"ipdash/internal/notify"
	"ipdash/internal/services"
	"ipdash/internal/status"
)

var (
	bannerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("7")).Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	onlineStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	offlineStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	updatingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	flashStyle    = lipgloss.NewStyle().Background(lipgloss.Color("10")).Foreground(lipgloss.Color("0")).Bold(true)
	selectedBg    = lipgloss.NewStyle().Background(lipgloss.Color("4"))
	toastStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))
	errToastStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
)

func statusStyle(k status.Kind) lipgloss.Style {
	switch k {
	case status.Online:
		return onlineStyle
	case status.Offline:
		return offlineStyle
	default:
		return updatingStyle
	}
}

func classStyle(class string) lipgloss.Style {
	switch class {
	case history.ClassNew:
		return onlineStyle
	case history.ClassUpdated:
		return updatingStyle
	default:
		return dimStyle
	}
}

func (m model) View() string {
	if m.quitting {
		return ""
	}
	width := m.width
	if width == 0 {
		width = 80
	}
	centerLine := func(s string) string {
		return lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Render(s)
	}

	var out strings.Builder
	fig := figure.NewFigure("IPDASH", "", true)
	for _, line := range strings.Split(fig.String(), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		out.WriteString(centerLine(bannerStyle.Render(line)) + "\n")
	}
	out.WriteString("\n")

	kind, label := m.board.Status()
	out.WriteString(centerLine(statusStyle(kind).Render("● "+label)) + "\n\n")

	if m.mode == modeSource {
		out.WriteString(centerLine(labelStyle.Render("数据源:")) + "\n")
		out.WriteString(centerLine(m.inputSource.View()) + "\n")
		out.WriteString(centerLine(dimStyle.Render("Enter 确认   Esc 取消")) + "\n")
		m.writeToast(&out, centerLine)
		return out.String()
	}

	for _, line := range m.infoLines() {
		out.WriteString(centerLine(line) + "\n")
	}
	out.WriteString("\n")
	for _, line := range m.historyLines() {
		out.WriteString(centerLine(line) + "\n")
	}
	out.WriteString("\n")
	for _, line := range m.serviceLines() {
		out.WriteString(centerLine(line) + "\n")
	}
	m.writeToast(&out, centerLine)
	out.WriteString("\n")
	out.WriteString(centerLine(m.help.View(m.keys)))
	return out.String()
}

// infoLines renders the address block.
func (m model) infoLines() []string {
	snap := m.board.Snapshot()
	ip := snap.LocalIP
	if m.flashUntil.After(m.now()) {
		ip = flashStyle.Render(ip)
	}

	auto := m.profile.AutoOffText
	if m.ctrl.AutoRefresh() {
		auto = fmt.Sprintf("%s (每%s)", m.profile.AutoOnText, m.ctrl.Interval())
	}
	fetched := "-"
	if at := m.board.FetchedAt(); !at.IsZero() {
		fetched = humanize.Time(at)
	}

	rows := [][2]string{
		{"本机IP", ip},
		{"网络接口", snap.NetworkInterface},
		{"最后更新", snap.LastUpdate},
		{"自动刷新", auto},
		{"获取时间", fetched},
		{"数据源", m.source.Location()},
	}
	w := 0
	for _, r := range rows {
		if n := lipgloss.Width(r[0]); n > w {
			w = n
		}
	}
	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		lines = append(lines, labelStyle.Render(history.Pad(r[0], w))+"  "+r[1])
	}
	return lines
}

func (m model) historyLines() []string {
	return historyTable(m.board.HistoryRows(), func(s string) string { return labelStyle.Render(s) }, func(class, text string) string {
		return classStyle(class).Render(text)
	})
}

// historyTable aligns rows in terminal cells and leaves colouring to the
// caller.
func historyTable(rows []history.Row, header func(string) string, label func(class, text string) string) []string {
	w := history.Columns(rows)
	sep := "  "
	lines := []string{
		header(history.Pad("时间", w.Time) + sep + history.Pad("IP", w.IP) + sep + history.Pad("变更", w.Label)),
	}
	for _, r := range rows {
		lines = append(lines, history.Pad(r.Time, w.Time)+sep+history.Pad(r.IP, w.IP)+sep+label(r.Class, history.Pad(r.Label, w.Label)))
	}
	return lines
}

func serviceTarget(e services.Entry) string {
	switch e.Strategy {
	case services.DownloadRDP:
		return "下载RDP文件 " + e.Address
	case services.CopyAddress:
		return "复制 " + e.Address
	default:
		return e.URL
	}
}

func (m model) serviceLines() []string {
	entries := m.board.Services()
	launchable := m.board.Launchable()
	nameW := 0
	for _, e := range entries {
		if n := lipgloss.Width(e.Name); n > nameW {
			nameW = n
		}
	}
	lines := []string{labelStyle.Render("服务")}
	for i, e := range entries {
		target := serviceTarget(e)
		if !launchable {
			target = dimStyle.Render("IP不可用")
		}
		line := e.Icon + " " + history.Pad(e.Name, nameW) + "  " + target
		if i == m.cursor {
			line = selectedBg.Render(line)
		}
		lines = append(lines, line)
	}
	return lines
}

func (m model) writeToast(out *strings.Builder, centerLine func(string) string) {
	t, ok := m.toasts.Active(m.now())
	if !ok {
		return
	}
	style := toastStyle
	if t.Kind == notify.Error {
		style = errToastStyle
	}
	out.WriteString("\n")
	out.WriteString(centerLine(style.Render(t.Message)))
	out.WriteString("\n")
}
