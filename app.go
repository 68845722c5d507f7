package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"ipdash/internal/clipboard"
	"ipdash/internal/config"
	"ipdash/internal/dashboard"
	"ipdash/internal/netwatch"
	"ipdash/internal/notify"
	"ipdash/internal/refresh"
	"ipdash/internal/services"
	"ipdash/internal/snapshot"
	"ipdash/internal/status"
)

// app is everything one dashboard needs apart from its refresh loop.
type app struct {
	cfg      *config.Config
	log      zerolog.Logger
	profile  refresh.Profile
	source   *snapshot.Swappable
	board    *dashboard.Board
	toasts   *notify.Center
	copier   *clipboard.Copier
	launcher *services.Launcher
	desktop  notify.Notifier
}

func newApp(cfg *config.Config, log zerolog.Logger) (*app, error) {
	profile, err := refresh.LookupProfile(cfg.Profile)
	if err != nil {
		return nil, err
	}
	src, err := snapshot.NewSwappable(cfg.Source, cfg.FetchTimeout)
	if err != nil {
		return nil, fmt.Errorf("data source: %w", err)
	}

	registry := services.DefaultRegistry()
	toasts := notify.NewCenter(cfg.Notify.ToastTTL)
	a := &app{
		cfg:     cfg,
		log:     log,
		profile: profile,
		source:  src,
		board:   dashboard.NewBoard(registry, initialLabel(profile)),
		toasts:  toasts,
	}
	if cfg.Notify.Desktop {
		a.desktop = notify.NewDesktop(log)
		notify.Mirror(toasts, a.desktop)
	}
	a.copier = clipboard.NewCopier(clipboard.System, clipboard.Terminal{Out: os.Stderr}, toasts, profile.CopyPrefix, log)
	a.launcher = services.NewLauncher(registry, services.BrowserOpener{}, services.DirSaver{Dir: cfg.DownloadDir}, a.copier, toasts, log)
	return a, nil
}

func initialLabel(p refresh.Profile) string {
	if p.LoadLabel != "" {
		return p.LoadLabel
	}
	return snapshot.Loading
}

func (a *app) controller(sink refresh.Sink, auto bool) *refresh.Controller {
	return refresh.New(a.source, sink, a.toasts, refresh.Options{
		Interval:    a.cfg.RefreshInterval,
		AutoRefresh: auto,
		Profile:     a.profile,
		Logger:      a.log,
	})
}

// runTUI runs the interactive dashboard until the user quits.
func (a *app) runTUI() error {
	sink := &boardSink{board: a.board, now: time.Now, log: a.log}
	ctrl := a.controller(sink, a.cfg.AutoRefresh)
	defer ctrl.Close()

	m := newModel(a, ctrl)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithReportFocus())
	sink.send = p.Send
	a.toasts.OnPost(func(t notify.Toast) {
		go p.Send(toastMsg(t))
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if a.cfg.Network.Watch {
		w := netwatch.New(nil, a.cfg.Network.Interval, ctrl.NetworkChanged, a.log)
		go w.Run(ctx)
	}

	a.log.Info().
		Str("source", a.source.Location()).
		Str("profile", a.profile.Name).
		Dur("interval", ctrl.Interval()).
		Msg("dashboard starting")
	_, err := p.Run()
	return err
}

// boardSink applies refresh results to the board and, inside the TUI, wakes
// the program so the view is redrawn.
type boardSink struct {
	board *dashboard.Board
	send  func(tea.Msg)
	now   func() time.Time
	log   zerolog.Logger
}

func (s *boardSink) SetStatus(kind status.Kind, label string) {
	if err := s.board.SetStatus(kind, label); err != nil {
		s.log.Error().Err(err).Msg("status rejected")
		return
	}
	if s.send != nil {
		s.send(statusMsg{kind: kind, label: label})
	}
}

func (s *boardSink) ApplySnapshot(snap snapshot.Snapshot) {
	changed, previous := s.board.Apply(snap, s.now())
	current := s.board.CurrentIP()
	if changed {
		s.log.Info().Str("previous", previous).Str("current", current).Msg("address changed")
	}
	if s.send != nil {
		s.send(appliedMsg{changed: changed, previous: previous, current: current})
	}
}
