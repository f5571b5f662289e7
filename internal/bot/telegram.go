package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Long-poll timeout in seconds
const updateTimeout = 30

// Telegram adapts the Bot API client to the Transport interface
type Telegram struct {
	api *tgbotapi.BotAPI
}

// NewTelegram registers the bot with the given credential
func NewTelegram(token string, debug bool) (*Telegram, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to register the bot: %w", err)
	}
	api.Debug = debug
	return &Telegram{api: api}, nil
}

// SendText sends a plain message, optionally with a markup parse mode
func (t *Telegram) SendText(chatID int64, text, parseMode string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = parseMode
	_, err := t.api.Send(msg)
	return err
}

// Reply sends a message replying to an existing one
func (t *Telegram) Reply(chatID int64, messageID int, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyToMessageID = messageID
	_, err := t.api.Send(msg)
	return err
}

// SendVideo uploads a local file as a video with the given caption
func (t *Telegram) SendVideo(chatID int64, filePath, caption, parseMode string) error {
	video := tgbotapi.NewVideo(chatID, tgbotapi.FilePath(filePath))
	video.Caption = caption
	video.ParseMode = parseMode
	_, err := t.api.Send(video)
	return err
}

// DeleteMessage removes a message from a chat
func (t *Telegram) DeleteMessage(chatID int64, messageID int) error {
	del := tgbotapi.NewDeleteMessage(chatID, messageID)
	_, err := t.api.Request(del)
	return err
}

// Updates starts long polling and returns the inbound update channel
func (t *Telegram) Updates() tgbotapi.UpdatesChannel {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = updateTimeout
	return t.api.GetUpdatesChan(u)
}

// Stop halts the long-poll loop
func (t *Telegram) Stop() {
	t.api.StopReceivingUpdates()
}

// Incoming converts a raw update message into the handler's view of it
func Incoming(msg *tgbotapi.Message) IncomingMessage {
	username := ""
	if msg.From != nil {
		username = msg.From.UserName
	}
	return IncomingMessage{
		ChatID:    msg.Chat.ID,
		MessageID: msg.MessageID,
		Text:      msg.Text,
		Username:  username,
		Private:   msg.Chat.IsPrivate(),
	}
}
