package bot

import (
	"fmt"
	"log/slog"
	"strings"
)

// Notification is one human-readable outcome report
type Notification struct {
	ChatID    int64  // originating chat
	MessageID int    // message the report replies to
	Text      string // message body; defaults to Err's text when empty
	Err       error  // underlying error, used for the debug type detail
	URL       string // offending link, appended when available
	Extra     string // optional annotation, appended last
}

// Dispatcher routes outcome messages to the right audience: the
// originating chat, or a separate operator log channel when one is
// configured
type Dispatcher struct {
	transport  Transport
	logChannel int64 // 0 routes replies back to the originating chat
	debug      bool
	log        *slog.Logger
}

// NewDispatcher creates a dispatcher. A non-zero logChannel redirects all
// reports there; debug appends the concrete error type to each report.
func NewDispatcher(transport Transport, logChannel int64, debug bool, log *slog.Logger) *Dispatcher {
	return &Dispatcher{
		transport:  transport,
		logChannel: logChannel,
		debug:      debug,
		log:        log,
	}
}

// Notify composes and delivers one report. Delivery failure does not
// propagate: the payload itself is the likely cause of a rejection, so a
// minimal apology without it is sent instead.
func (d *Dispatcher) Notify(n Notification) {
	d.log.Info("sending a notification", "url", n.URL, "error", n.Err)

	var b strings.Builder
	if n.Text != "" {
		b.WriteString(n.Text)
	} else if n.Err != nil {
		b.WriteString(n.Err.Error())
	}
	if d.debug && n.Err != nil {
		b.WriteString(fmt.Sprintf("\n\n%T", n.Err))
	}
	if n.URL != "" {
		b.WriteString("\n\n" + n.URL)
	}
	if n.Extra != "" {
		b.WriteString("\n\n" + n.Extra)
	}

	if err := d.deliver(n, b.String(), ""); err != nil {
		// Do not echo the original text: it might be what the transport
		// rejected (oversized, bad markup)
		apology := fmt.Sprintf("⚠️ FAILED to post an error message!\nPossible reason:\n\n%v", err)
		if err := d.deliver(n, apology, ""); err != nil {
			d.log.Warn("cannot deliver even the apology", "error", err)
		}
	}
}

// SendFormats delivers a rendered format table to the audience. The table
// must already be markup-escaped; it is wrapped in a fixed-width block.
func (d *Dispatcher) SendFormats(n Notification, table string) {
	text := "Formats available:\n<pre>" + table + "</pre>"
	if err := d.deliver(n, text, ModeHTML); err != nil {
		d.log.Warn("cannot deliver format table", "url", n.URL, "error", err)
	}
}

// deliver sends to the operator log channel when configured, otherwise
// replies in the originating chat
func (d *Dispatcher) deliver(n Notification, text, parseMode string) error {
	if d.logChannel != 0 {
		return d.transport.SendText(d.logChannel, text, parseMode)
	}
	if parseMode != "" {
		return d.transport.SendText(n.ChatID, text, parseMode)
	}
	return d.transport.Reply(n.ChatID, n.MessageID, text)
}
