package notify

import (
	"github.com/gen2brain/beeep"
	"github.com/rs/zerolog"
)

// appName is the title of desktop notifications.
const appName = "ipdash"

// Desktop forwards messages to the operating system's notification area.
type Desktop struct {
	log  zerolog.Logger
	send func(title, body string) error
}

// NewDesktop returns a desktop notifier backed by beeep.
func NewDesktop(log zerolog.Logger) *Desktop {
	return &Desktop{
		log: log,
		send: func(title, body string) error {
			return beeep.Notify(title, body, "")
		},
	}
}

// Notify sends message. A failed notification is logged and dropped; the
// in-terminal toast is the primary channel.
func (d *Desktop) Notify(message string, kind Kind) {
	title := appName
	if kind == Error {
		title = appName + " - 错误"
	}
	if err := d.send(title, message); err != nil {
		d.log.Warn().Err(err).Msg("desktop notification failed")
	}
}

// Mirror forwards every toast posted to c to n.
func Mirror(c *Center, n Notifier) {
	c.OnPost(func(t Toast) {
		go n.Notify(t.Message, t.Kind)
	})
}
