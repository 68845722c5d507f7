package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"ipdash/internal/clipboard"
	"ipdash/internal/dashboard"
	"ipdash/internal/notify"
	"ipdash/internal/refresh"
	"ipdash/internal/services"
	"ipdash/internal/snapshot"
	"ipdash/internal/status"
)

// flashFor is how long the address line stays highlighted after a change.
const flashFor = 2 * time.Second

// tickMsg redraws the relative times and expires the flash.
type tickMsg time.Time

// statusMsg and appliedMsg are sent by the refresh loop after it has
// updated the board.
type statusMsg struct {
	kind  status.Kind
	label string
}

type appliedMsg struct {
	changed  bool
	previous string
	current  string
}

type toastMsg notify.Toast

type toastExpiredMsg struct{ id uint64 }

// actionDoneMsg reports a finished copy or launch.
type actionDoneMsg struct {
	action string
	err    error
}

type modelMode int

const (
	modeDashboard modelMode = iota
	modeSource
)

// model is the bubbletea state. Shared components are pointers, so copies
// made by Update all see the same board, controller and toasts.
type model struct {
	board    *dashboard.Board
	ctrl     *refresh.Controller
	launcher *services.Launcher
	copier   *clipboard.Copier
	toasts   *notify.Center
	source   *snapshot.Swappable
	profile  refresh.Profile
	log      zerolog.Logger

	keys   keyMap
	help   help.Model
	cursor int
	width  int
	height int
	mode   modelMode

	inputSource textinput.Model

	flashUntil time.Time
	bell       bool
	out        io.Writer       // bell destination
	alert      notify.Notifier // desktop alert on address change, may be nil
	now        func() time.Time
	quitting   bool
}

func newModel(a *app, ctrl *refresh.Controller) model {
	return model{
		board:    a.board,
		ctrl:     ctrl,
		launcher: a.launcher,
		copier:   a.copier,
		toasts:   a.toasts,
		source:   a.source,
		profile:  a.profile,
		log:      a.log,
		keys:     keys,
		help:     help.New(),
		bell:     a.cfg.Notify.BellOnChange,
		out:      os.Stdout,
		alert:    a.desktop,
		now:      time.Now,
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// bootCmd loads the first snapshot and arms the timer. The cycle runs on the
// controller's goroutines and reports back through the sink.
func (m model) bootCmd() tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		ctrl.Boot()
		return nil
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), m.bootCmd())
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	case tea.FocusMsg:
		m.ctrl.SetVisible(true)
		return m, nil
	case tea.BlurMsg:
		m.ctrl.SetVisible(false)
		return m, nil
	case tea.ResumeMsg:
		m.ctrl.SetVisible(true)
		return m, nil
	case tickMsg:
		return m, tickCmd()
	case statusMsg:
		return m, nil
	case appliedMsg:
		if dashboard.Resolved(msg.previous, msg.current) {
			m.flashUntil = m.now().Add(flashFor)
			if m.bell {
				fmt.Fprint(m.out, "\a")
			}
			if m.alert != nil {
				go m.alert.Notify(fmt.Sprintf("IP地址已变更: %s → %s", msg.previous, msg.current), notify.Success)
			}
		}
		return m, nil
	case toastMsg:
		id := msg.ID
		wait := msg.ExpiresAt.Sub(m.now())
		if wait < 0 {
			wait = 0
		}
		return m, tea.Tick(wait, func(time.Time) tea.Msg {
			return toastExpiredMsg{id: id}
		})
	case toastExpiredMsg:
		m.toasts.Dismiss(msg.id)
		return m, nil
	case actionDoneMsg:
		if msg.err != nil {
			m.log.Debug().Err(msg.err).Str("action", msg.action).Msg("action failed")
		}
		return m, nil
	case tea.KeyMsg:
		if m.mode == modeSource {
			return m.updateSource(msg)
		}
		return m.updateDashboard(msg)
	}
	return m, nil
}

func (m model) updateDashboard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Refresh):
		m.ctrl.Refresh()
	case key.Matches(msg, m.keys.Toggle):
		m.ctrl.Toggle()
	case key.Matches(msg, m.keys.CopyIP):
		return m, m.copyCmd(m.board.Snapshot().LocalIP)
	case key.Matches(msg, m.keys.CopyIface):
		return m, m.copyCmd(m.board.Snapshot().NetworkInterface)
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.board.Services())-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Launch):
		entries := m.board.Services()
		if m.cursor < len(entries) {
			return m, m.launchCmd(entries[m.cursor].Key, m.board.CurrentIP())
		}
	case key.Matches(msg, m.keys.Source):
		m.mode = modeSource
		m.inputSource = textinput.New()
		m.inputSource.Placeholder = "data.json 或 http://host/data.json"
		m.inputSource.CharLimit = 512
		m.inputSource.Width = 60
		m.inputSource.SetValue(m.source.Location())
		m.inputSource.Focus()
		return m, textinput.Blink
	case key.Matches(msg, m.keys.Suspend):
		m.ctrl.SetVisible(false)
		return m, tea.Suspend
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

func (m model) updateSource(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.mode = modeDashboard
		return m, nil
	case key.Matches(msg, m.keys.Confirm):
		loc := strings.TrimSpace(m.inputSource.Value())
		m.mode = modeDashboard
		if loc == m.source.Location() {
			return m, nil
		}
		if err := m.source.Set(loc); err != nil {
			m.toasts.Notify("数据源无效: "+err.Error(), notify.Error)
			return m, nil
		}
		m.log.Info().Str("source", loc).Msg("data source changed")
		m.ctrl.Refresh()
		m.toasts.Notify("数据源已切换: "+loc, notify.Success)
		return m, nil
	}
	var cmd tea.Cmd
	m.inputSource, cmd = m.inputSource.Update(msg)
	return m, cmd
}

// copyCmd writes text to the clipboard off the update loop; the copier
// posts its own toast.
func (m model) copyCmd(text string) tea.Cmd {
	copier, toasts, log := m.copier, m.toasts, m.log
	return func() (msg tea.Msg) {
		defer recoverAction("copy", toasts, log, &msg)
		return actionDoneMsg{action: "copy", err: copier.CopyText(text)}
	}
}

func (m model) launchCmd(serviceKey, ip string) tea.Cmd {
	launcher, toasts, log := m.launcher, m.toasts, m.log
	return func() (msg tea.Msg) {
		defer recoverAction("launch "+serviceKey, toasts, log, &msg)
		return actionDoneMsg{action: "launch " + serviceKey, err: launcher.Launch(serviceKey, ip)}
	}
}

// recoverAction turns a panic in a user action into an error toast so the
// dashboard keeps running.
func recoverAction(action string, toasts *notify.Center, log zerolog.Logger, msg *tea.Msg) {
	r := recover()
	if r == nil {
		return
	}
	log.Error().Interface("panic", r).Str("action", action).Msg("action panicked")
	toasts.Notify(refresh.CrashLabel, notify.Error)
	*msg = actionDoneMsg{action: action, err: fmt.Errorf("panic: %v", r)}
}
