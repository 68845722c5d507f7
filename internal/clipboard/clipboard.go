// Package clipboard copies text to the system clipboard, falling back to an
// OSC 52 escape sequence when no clipboard tool is reachable (for example
// over SSH).
package clipboard

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/atotto/clipboard"
	osc52 "github.com/aymanbagabas/go-osc52/v2"
	"github.com/rs/zerolog"

	"ipdash/internal/notify"
	"ipdash/internal/snapshot"
)

// ErrNothingToCopy is returned for empty or placeholder text.
var ErrNothingToCopy = errors.New("nothing to copy")

// Writer puts text somewhere the user can paste it from.
type Writer interface {
	Write(text string) error
}

// WriterFunc adapts a function to Writer.
type WriterFunc func(text string) error

func (f WriterFunc) Write(text string) error { return f(text) }

// System writes through the platform clipboard utilities.
var System Writer = WriterFunc(clipboard.WriteAll)

// Terminal emits an OSC 52 sequence that asks the terminal emulator to set
// its clipboard.
type Terminal struct {
	Out io.Writer
}

func (t Terminal) Write(text string) error {
	out := t.Out
	if out == nil {
		out = os.Stderr
	}
	seq := osc52.New(text)
	if os.Getenv("TMUX") != "" {
		seq = seq.Tmux()
	}
	_, err := seq.WriteTo(out)
	return err
}

// Copier writes text with a primary writer and a fallback, and reports the
// outcome as a toast.
type Copier struct {
	primary  Writer
	fallback Writer
	notifier notify.Notifier
	prefix   string
	log      zerolog.Logger
}

// NewCopier builds a copier. prefix is prepended to the copied text in the
// success toast.
func NewCopier(primary, fallback Writer, n notify.Notifier, prefix string, log zerolog.Logger) *Copier {
	return &Copier{primary: primary, fallback: fallback, notifier: n, prefix: prefix, log: log}
}

// CopyText copies text and tells the user. Placeholder text is refused
// before either writer is touched.
func (c *Copier) CopyText(text string) error {
	if snapshot.IsPlaceholder(text) {
		c.notifier.Notify("无有效内容可复制", notify.Error)
		return ErrNothingToCopy
	}
	if err := c.Copy(text); err != nil {
		return err
	}
	c.notifier.Notify(c.prefix+text, notify.Success)
	return nil
}

// Copy writes text without posting any toast. When both writers fail the
// error is logged and returned but the user is not told.
func (c *Copier) Copy(text string) error {
	if snapshot.IsPlaceholder(text) {
		return ErrNothingToCopy
	}
	err := c.primary.Write(text)
	if err == nil {
		return nil
	}
	c.log.Debug().Err(err).Msg("clipboard write failed, trying terminal fallback")
	if c.fallback == nil {
		c.log.Warn().Err(err).Msg("clipboard unavailable")
		return fmt.Errorf("copy to clipboard: %w", err)
	}
	if ferr := c.fallback.Write(text); ferr != nil {
		c.log.Warn().Err(ferr).AnErr("primary", err).Msg("clipboard fallback failed")
		return fmt.Errorf("copy to clipboard: %w", errors.Join(err, ferr))
	}
	return nil
}
