package services

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"ipdash/internal/notify"
	"ipdash/internal/snapshot"
)

type fakeOpener struct{ urls []string }

func (f *fakeOpener) Open(url string) error {
	f.urls = append(f.urls, url)
	return nil
}

type fakeSaver struct {
	name, mime string
	content    []byte
}

func (f *fakeSaver) Save(name, mime string, content []byte) (string, error) {
	f.name, f.mime, f.content = name, mime, content
	return "/downloads/" + name, nil
}

type fakeCopier struct{ texts []string }

func (f *fakeCopier) Copy(text string) error {
	f.texts = append(f.texts, text)
	return nil
}

type toasts struct {
	messages []string
	kinds    []notify.Kind
}

func (n *toasts) Notify(message string, kind notify.Kind) {
	n.messages = append(n.messages, message)
	n.kinds = append(n.kinds, kind)
}

type harness struct {
	opener *fakeOpener
	saver  *fakeSaver
	copier *fakeCopier
	toasts *toasts
	l      *Launcher
}

func newHarness() *harness {
	h := &harness{opener: &fakeOpener{}, saver: &fakeSaver{}, copier: &fakeCopier{}, toasts: &toasts{}}
	h.l = NewLauncher(DefaultRegistry(), h.opener, h.saver, h.copier, h.toasts, zerolog.Nop())
	return h
}

func (h *harness) sideEffects() int {
	n := len(h.opener.urls) + len(h.copier.texts)
	if h.saver.name != "" {
		n++
	}
	return n
}

func TestLaunchWithoutIPDoesNothing(t *testing.T) {
	for _, ip := range []string{"", snapshot.Loading, snapshot.Unreachable} {
		for _, d := range Defaults {
			h := newHarness()
			if err := h.l.Launch(d.Key, ip); !errors.Is(err, ErrIPUnavailable) {
				t.Fatalf("%s@%q: expected ErrIPUnavailable, got %v", d.Key, ip, err)
			}
			if h.sideEffects() != 0 {
				t.Fatalf("%s@%q: launch had side effects", d.Key, ip)
			}
			if len(h.toasts.kinds) != 1 || h.toasts.kinds[0] != notify.Error {
				t.Fatalf("%s@%q: expected an error toast, got %v", d.Key, ip, h.toasts.messages)
			}
		}
	}
}

func TestLaunchOpensWebServices(t *testing.T) {
	h := newHarness()
	if err := h.l.Launch("alist", "10.0.0.5"); err != nil {
		t.Fatal(err)
	}
	if err := h.l.Launch("web_server", "10.0.0.5"); err != nil {
		t.Fatal(err)
	}
	want := []string{"http://10.0.0.5:5244", "http://10.0.0.5:8080"}
	if strings.Join(h.opener.urls, ",") != strings.Join(want, ",") {
		t.Fatalf("unexpected urls %v", h.opener.urls)
	}
	if h.toasts.messages[0] != "正在打开 Alist文件管理" {
		t.Fatalf("unexpected toast %q", h.toasts.messages[0])
	}
}

func TestLaunchRDPWritesProfile(t *testing.T) {
	h := newHarness()
	if err := h.l.Launch("rdp", "192.168.1.5"); err != nil {
		t.Fatal(err)
	}
	if h.saver.name != "remote-192.168.1.5.rdp" || h.saver.mime != RDPMime {
		t.Fatalf("unexpected download %q %q", h.saver.name, h.saver.mime)
	}
	lines := strings.Split(string(h.saver.content), "\n")
	found := false
	for _, l := range lines {
		if l == "full address:s:192.168.1.5:3389" {
			found = true
		}
	}
	if !found {
		t.Fatalf("profile missing address line:\n%s", h.saver.content)
	}
	if len(h.opener.urls) != 0 || len(h.copier.texts) != 0 {
		t.Fatal("rdp must not navigate or copy")
	}
}

func TestLaunchCopiesAddressForSSHAndFTP(t *testing.T) {
	h := newHarness()
	h.l.Launch("ssh", "10.0.0.5")
	h.l.Launch("ftp", "10.0.0.5")
	if strings.Join(h.copier.texts, ",") != "10.0.0.5:22,10.0.0.5:21" {
		t.Fatalf("unexpected copies %v", h.copier.texts)
	}
	if h.toasts.messages[0] != "SSH连接 连接信息已复制: 10.0.0.5:22" {
		t.Fatalf("unexpected toast %q", h.toasts.messages[0])
	}
}

func TestLaunchUnknownKey(t *testing.T) {
	h := newHarness()
	if err := h.l.Launch("gopher", "10.0.0.5"); !errors.Is(err, ErrUnknownService) {
		t.Fatalf("expected ErrUnknownService, got %v", err)
	}
	if h.sideEffects() != 0 {
		t.Fatal("unknown service had side effects")
	}
}

func TestStrategyForUnknownKeyOpensURL(t *testing.T) {
	if StrategyFor("grafana") != OpenURL {
		t.Fatal("unknown keys should open http")
	}
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	_, err := NewRegistry([]Descriptor{
		{Key: "ssh", Port: 22, Name: "a"},
		{Key: "ssh", Port: 2222, Name: "b"},
	})
	if err == nil {
		t.Fatal("expected duplicate key error")
	}
	if _, err := NewRegistry([]Descriptor{{Key: "x", Port: 70000}}); err == nil {
		t.Fatal("expected port range error")
	}
}

func TestBindFollowsRegistryOrder(t *testing.T) {
	r := DefaultRegistry()
	entries := r.Bind("10.0.0.5")
	if len(entries) != len(Defaults) {
		t.Fatalf("expected %d entries, got %d", len(Defaults), len(entries))
	}
	for i, e := range entries {
		if e.Key != Defaults[i].Key || e.IP != "10.0.0.5" {
			t.Fatalf("entry %d: %+v", i, e)
		}
	}
	if entries[0].URL != "http://10.0.0.5:5244" || entries[1].URL != "" {
		t.Fatalf("unexpected urls %q %q", entries[0].URL, entries[1].URL)
	}
	// Returned descriptors are copies.
	all := r.All()
	all[0].Port = 1
	if d, _ := r.Lookup("alist"); d.Port != 5244 {
		t.Fatal("registry mutated through All()")
	}
}

func TestDirSaver(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "dl")
	path, err := DirSaver{Dir: dir}.Save(RDPFileName("10.0.0.5"), RDPMime, []byte(RDPProfile("10.0.0.5")))
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "full address:s:10.0.0.5:3389\n") {
		t.Fatalf("unexpected content %q", data)
	}
}

func TestRDPFileNameIPv6(t *testing.T) {
	if got := RDPFileName("fe80::1"); got != "remote-fe80--1.rdp" {
		t.Fatalf("unexpected name %q", got)
	}
}
