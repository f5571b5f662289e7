package bot

import (
	"context"

	"github.com/ytget/tg-mediabot/internal/model"
)

// MediaEngine defines the extraction/download engine operations the
// orchestrator drives
type MediaEngine interface {
	// Probe runs a flat, download-free query used to detect playlists
	Probe(ctx context.Context, url, outputTemplate string) (*model.Metadata, error)

	// Download runs a full download over the given proxy transport.
	// An empty proxy means a direct connection.
	Download(ctx context.Context, url, outputTemplate, proxy string) (*model.Metadata, error)

	// ListFormats queries the available format catalog without downloading
	ListFormats(ctx context.Context, url, outputTemplate string) (*model.Metadata, error)
}

// Transport defines the chat operations the bot needs from the messenger
type Transport interface {
	SendText(chatID int64, text, parseMode string) error
	Reply(chatID int64, messageID int, text string) error
	SendVideo(chatID int64, filePath, caption, parseMode string) error
	DeleteMessage(chatID int64, messageID int) error
}

// ModeHTML is the markup dialect used for captions and format tables
const ModeHTML = "HTML"
