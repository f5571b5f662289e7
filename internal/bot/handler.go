package bot

import (
	"context"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/ytget/tg-mediabot/internal/format"
	"github.com/ytget/tg-mediabot/internal/model"
)

// WelcomeText is the reply to /start and /help
const WelcomeText = "I extract links from any messages, " +
	"and if they contain any videos, I try to download and post them."

// IncomingMessage is one inbound chat message as the handler sees it
type IncomingMessage struct {
	ChatID    int64
	MessageID int
	Text      string
	Username  string // sender username, may be empty when hidden
	Private   bool   // direct-message chat
}

// Handler processes inbound messages: extracts links, resolves each one
// strictly in order, posts results, and cleans up after itself
type Handler struct {
	orch        *Orchestrator
	disp        *Dispatcher
	transport   Transport
	renderer    *format.Renderer
	linkPattern *regexp.Regexp
	workDir     string
	log         *slog.Logger
}

// NewHandler creates a message handler
func NewHandler(orch *Orchestrator, disp *Dispatcher, transport Transport, linkPattern *regexp.Regexp, workDir string, log *slog.Logger) *Handler {
	renderer := format.NewRenderer()
	renderer.EscapeHTML = true

	return &Handler{
		orch:        orch,
		disp:        disp,
		transport:   transport,
		renderer:    renderer,
		linkPattern: linkPattern,
		workDir:     workDir,
		log:         log,
	}
}

// Welcome replies to /start and /help
func (h *Handler) Welcome(msg IncomingMessage) {
	if err := h.transport.Reply(msg.ChatID, msg.MessageID, WelcomeText); err != nil {
		h.log.Warn("cannot send welcome", "error", err)
	}
}

// HandleMessage processes every link in one message sequentially. A later
// link never starts before the earlier one's outcome is resolved, because
// the first posted video carries the original message text and the rest
// carry only their bare link. Failures stay scoped to their own link.
func (h *Handler) HandleMessage(ctx context.Context, msg IncomingMessage) {
	links := h.linkPattern.FindAllString(msg.Text, -1)
	if len(links) == 0 {
		return
	}

	oneVideoSent := false
	for i, url := range links {
		h.log.Info("downloading video", "index", i+1, "total", len(links), "chat", msg.ChatID)

		task := model.NewLinkTask(url, i+1, msg.ChatID, msg.MessageID, h.workDir)
		outcome := h.orch.Process(ctx, task)

		if outcome.Anomaly != "" {
			h.disp.Notify(Notification{ChatID: msg.ChatID, MessageID: msg.MessageID, Text: outcome.Anomaly, URL: url})
		}

		switch outcome.Kind {
		case model.OutcomePlaylistSkipped, model.OutcomeUnsupported:
			continue

		case model.OutcomeFormatUnavailable:
			if outcome.FormatsErr != nil {
				// The listing failure itself is too much spam; one line is enough
				h.disp.Notify(Notification{
					ChatID: msg.ChatID, MessageID: msg.MessageID,
					Err: outcome.Err, URL: url,
					Extra: "Formats available: FAILED to extract!",
				})
				continue
			}
			n := Notification{ChatID: msg.ChatID, MessageID: msg.MessageID, Err: outcome.Err, URL: url}
			h.disp.Notify(n)
			h.disp.SendFormats(n, h.renderer.Render(format.Normalize(outcome.Formats)))

		case model.OutcomeOtherFailure:
			h.disp.Notify(Notification{ChatID: msg.ChatID, MessageID: msg.MessageID, Err: outcome.Err, URL: url})

		case model.OutcomeSucceeded:
			if outcome.FilePath == "" {
				continue
			}
			if h.postVideo(msg, outcome, url, oneVideoSent) {
				oneVideoSent = true
			}
			// The temp file is scoped to this link: remove it whether or
			// not posting worked
			if err := os.Remove(outcome.FilePath); err != nil {
				h.log.Warn("cannot remove temp file", "path", outcome.FilePath, "error", err)
			}
		}
	}

	if oneVideoSent {
		// The triggering message produced output, clean it up
		if err := h.transport.DeleteMessage(msg.ChatID, msg.MessageID); err != nil {
			h.disp.Notify(Notification{ChatID: msg.ChatID, MessageID: msg.MessageID, Text: err.Error(), Err: err})
		}
	}
}

// postVideo sends the downloaded file with its caption and reports any
// posting failure. Returns true when the video went out.
func (h *Handler) postVideo(msg IncomingMessage, outcome model.Outcome, url string, oneVideoSent bool) bool {
	caption := h.caption(msg, outcome.Title, url, oneVideoSent)
	if err := h.transport.SendVideo(msg.ChatID, outcome.FilePath, caption, ModeHTML); err != nil {
		h.disp.Notify(Notification{ChatID: msg.ChatID, MessageID: msg.MessageID, Text: err.Error(), Err: err, URL: url})
		return false
	}
	return true
}

// caption builds the video caption: the title in bold, then either the
// full original message (first video, with a sender tag outside direct
// messages) or the bare link (follow-up videos)
func (h *Handler) caption(msg IncomingMessage, title, url string, oneVideoSent bool) string {
	var b strings.Builder
	if title != "" {
		b.WriteString("<b>" + format.EscapeMarkup(title) + "</b>\n")
	}

	if oneVideoSent {
		b.WriteString(url)
		return b.String()
	}

	b.WriteString("\n" + format.EscapeMarkup(msg.Text))
	if !msg.Private && msg.Username != "" {
		b.WriteString("\n\n@" + msg.Username)
	}
	return b.String()
}
