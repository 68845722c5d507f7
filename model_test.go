package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"ipdash/internal/clipboard"
	"ipdash/internal/config"
	"ipdash/internal/notify"
	"ipdash/internal/refresh"
	"ipdash/internal/services"
	"ipdash/internal/snapshot"
	"ipdash/internal/status"
)

const sampleDoc = `{
  "localIP": "10.0.0.5",
  "networkInterface": "eth0",
  "lastUpdate": "2024-05-01T10:00:00Z",
  "history": [{"timestamp": "2024/5/1 10:00:00", "ip": "10.0.0.5", "change": "new"}]
}`

type recordingOpener struct{ urls []string }

func (o *recordingOpener) Open(url string) error {
	o.urls = append(o.urls, url)
	return nil
}

type testEnv struct {
	app    *app
	ctrl   *refresh.Controller
	copied []string
	opener *recordingOpener
	bell   *bytes.Buffer
	dir    string
}

func newTestEnv(t *testing.T) (model, *testEnv) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "data.json")
	if err := os.WriteFile(path, []byte(sampleDoc), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.Source = path
	cfg.DownloadDir = filepath.Join(dir, "dl")
	cfg.Network.Watch = false

	a, err := newApp(cfg, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	env := &testEnv{app: a, opener: &recordingOpener{}, bell: &bytes.Buffer{}, dir: dir}
	writer := clipboard.WriterFunc(func(text string) error {
		env.copied = append(env.copied, text)
		return nil
	})
	a.copier = clipboard.NewCopier(writer, nil, a.toasts, a.profile.CopyPrefix, zerolog.Nop())
	a.launcher = services.NewLauncher(services.DefaultRegistry(), env.opener, services.DirSaver{Dir: cfg.DownloadDir}, a.copier, a.toasts, zerolog.Nop())

	env.ctrl = a.controller(&boardSink{board: a.board, now: time.Now, log: zerolog.Nop()}, true)
	t.Cleanup(env.ctrl.Close)

	m := newModel(a, env.ctrl)
	m.out = env.bell
	return m, env
}

func update(t *testing.T, m model, msg tea.Msg) (model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(model), cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func applySample(m model) {
	snap, _ := snapshot.Decode([]byte(sampleDoc))
	m.board.Apply(snap, time.Now())
}

func activeToast(t *testing.T, m model) string {
	t.Helper()
	toast, ok := m.toasts.Active(time.Now())
	if !ok {
		t.Fatal("expected a visible toast")
	}
	return toast.Message
}

func TestAddressChangeFlashesAndRings(t *testing.T) {
	m, env := newTestEnv(t)
	m, _ = update(t, m, appliedMsg{changed: true, previous: "10.0.0.5", current: "10.0.0.6"})
	if !m.flashUntil.After(time.Now()) {
		t.Fatal("expected the address line to flash")
	}
	if env.bell.String() != "\a" {
		t.Fatalf("expected bell, got %q", env.bell.String())
	}
}

func TestFirstAddressDoesNotRing(t *testing.T) {
	m, env := newTestEnv(t)
	m, _ = update(t, m, appliedMsg{changed: true, previous: snapshot.Loading, current: "10.0.0.5"})
	if !m.flashUntil.IsZero() || env.bell.Len() != 0 {
		t.Fatal("resolving the first address must not alert")
	}
}

func TestCursorStaysInRange(t *testing.T) {
	m, _ := newTestEnv(t)
	for i := 0; i < 10; i++ {
		m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	}
	if m.cursor != len(services.Defaults)-1 {
		t.Fatalf("cursor %d", m.cursor)
	}
	for i := 0; i < 10; i++ {
		m, _ = update(t, m, runes("k"))
	}
	if m.cursor != 0 {
		t.Fatalf("cursor %d", m.cursor)
	}
}

func TestToggleKey(t *testing.T) {
	m, env := newTestEnv(t)
	m, _ = update(t, m, runes("a"))
	if env.ctrl.AutoRefresh() {
		t.Fatal("expected auto refresh off")
	}
	if got := activeToast(t, m); got != refresh.Portal.AutoOffNotice {
		t.Fatalf("unexpected toast %q", got)
	}
	if !strings.Contains(m.View(), refresh.Portal.AutoOffText) {
		t.Fatal("view should show auto refresh paused")
	}
}

func TestCopyPlaceholderIsRefused(t *testing.T) {
	m, env := newTestEnv(t)
	_, cmd := update(t, m, runes("c"))
	done := cmd().(actionDoneMsg)
	if !errors.Is(done.err, clipboard.ErrNothingToCopy) {
		t.Fatalf("expected ErrNothingToCopy, got %v", done.err)
	}
	if len(env.copied) != 0 {
		t.Fatal("placeholder reached the clipboard")
	}
	if got := activeToast(t, m); got != "无有效内容可复制" {
		t.Fatalf("unexpected toast %q", got)
	}
}

func TestCopyAddressAndInterface(t *testing.T) {
	m, env := newTestEnv(t)
	applySample(m)
	_, cmd := update(t, m, runes("c"))
	cmd()
	_, cmd = update(t, m, runes("n"))
	cmd()
	if strings.Join(env.copied, ",") != "10.0.0.5,eth0" {
		t.Fatalf("unexpected copies %v", env.copied)
	}
	if got := activeToast(t, m); got != "已复制: eth0" {
		t.Fatalf("unexpected toast %q", got)
	}
}

func TestLaunchSelectedService(t *testing.T) {
	m, env := newTestEnv(t)
	applySample(m)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if done := cmd().(actionDoneMsg); done.err != nil {
		t.Fatal(done.err)
	}
	if len(env.opener.urls) != 1 || env.opener.urls[0] != "http://10.0.0.5:8080" {
		t.Fatalf("unexpected urls %v", env.opener.urls)
	}
}

func TestLaunchWithoutAddress(t *testing.T) {
	m, env := newTestEnv(t)
	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if done := cmd().(actionDoneMsg); !errors.Is(done.err, services.ErrIPUnavailable) {
		t.Fatalf("expected ErrIPUnavailable, got %v", done.err)
	}
	if len(env.opener.urls) != 0 {
		t.Fatal("nothing should open without an address")
	}
}

func TestSourceEditor(t *testing.T) {
	m, env := newTestEnv(t)
	m, _ = update(t, m, runes("o"))
	if m.mode != modeSource {
		t.Fatal("expected source mode")
	}

	m.inputSource.SetValue("gopher://nowhere")
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.mode != modeDashboard {
		t.Fatal("expected dashboard mode after confirm")
	}
	if m.source.Location() == "gopher://nowhere" {
		t.Fatal("invalid source must not be applied")
	}

	other := filepath.Join(env.dir, "other.json")
	m, _ = update(t, m, runes("o"))
	m.inputSource.SetValue(other)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.source.Location() != other {
		t.Fatalf("source not switched: %q", m.source.Location())
	}
	if got := activeToast(t, m); got != "数据源已切换: "+other {
		t.Fatalf("unexpected toast %q", got)
	}
}

func TestSourceEditorCancel(t *testing.T) {
	m, _ := newTestEnv(t)
	before := m.source.Location()
	m, _ = update(t, m, runes("o"))
	m.inputSource.SetValue("elsewhere.json")
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.mode != modeDashboard || m.source.Location() != before {
		t.Fatal("cancel should leave the source alone")
	}
}

func TestFocusDrivesVisibility(t *testing.T) {
	m, env := newTestEnv(t)
	env.ctrl.Start()
	m, _ = update(t, m, tea.BlurMsg{})
	if env.ctrl.Armed() {
		t.Fatal("blur should disarm the timer")
	}
	m, _ = update(t, m, tea.FocusMsg{})
	if !env.ctrl.Armed() {
		t.Fatal("focus should re-arm the timer")
	}
}

func TestToastExpiry(t *testing.T) {
	m, _ := newTestEnv(t)
	toast := m.toasts.Post("hello", notify.Success)
	m, cmd := update(t, m, toastMsg(toast))
	if cmd == nil {
		t.Fatal("expected a dismiss timer")
	}
	m, _ = update(t, m, toastExpiredMsg{id: toast.ID})
	if _, ok := m.toasts.Active(time.Now()); ok {
		t.Fatal("toast should be dismissed")
	}
}

func TestViewShowsSnapshot(t *testing.T) {
	m, _ := newTestEnv(t)
	applySample(m)
	view := m.View()
	for _, want := range []string{"10.0.0.5", "eth0", "新增", "Alist文件管理", "http://10.0.0.5:5244", "复制 10.0.0.5:22"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestViewBeforeFirstFetch(t *testing.T) {
	m, _ := newTestEnv(t)
	view := m.View()
	for _, want := range []string{snapshot.Loading, "暂无记录", "IP不可用"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestBoardSinkSendsApplied(t *testing.T) {
	_, env := newTestEnv(t)
	var msgs []tea.Msg
	sink := &boardSink{board: env.app.board, send: func(msg tea.Msg) { msgs = append(msgs, msg) }, now: time.Now, log: zerolog.Nop()}

	snap, _ := snapshot.Decode([]byte(sampleDoc))
	sink.ApplySnapshot(snap)
	sink.SetStatus(status.Updating, "正在获取数据...")

	if len(msgs) != 2 {
		t.Fatalf("expected two messages, got %d", len(msgs))
	}
	applied := msgs[0].(appliedMsg)
	if !applied.changed || applied.previous != snapshot.Loading || applied.current != "10.0.0.5" {
		t.Fatalf("unexpected %+v", applied)
	}
}

func TestPrintBoard(t *testing.T) {
	_, env := newTestEnv(t)
	snap, _ := snapshot.Decode([]byte(sampleDoc))
	env.app.board.Apply(snap, time.Now())

	var buf bytes.Buffer
	printBoard(&buf, env.app.board)
	out := buf.String()
	for _, want := range []string{"10.0.0.5", "eth0", "新增", "http://10.0.0.5:5244", "下载RDP文件 10.0.0.5:3389"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
