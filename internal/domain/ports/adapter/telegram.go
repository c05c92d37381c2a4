package adapter

import "context"

const (
	ParseModeNone     = ""
	ParseModeMarkdown = "Markdown"
)

// InlineButton is either a callback button (Data) or a link button (URL).
type InlineButton struct {
	Text string
	Data string
	URL  string
}

type SendMessageParams struct {
	ChatID    int64
	Text      string
	ParseMode string
	Rows      [][]InlineButton
}

// Messenger is the outbound side of the bot, used by broadcast and announcements.
type Messenger interface {
	SendMessage(ctx context.Context, p SendMessageParams) error
}
