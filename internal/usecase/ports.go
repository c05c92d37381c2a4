package usecase

import "github.com/scmsohel/epic-loot-bot/internal/domain/model"

// Renderer produces the outbound texts the use cases send on their own.
type Renderer interface {
	// Announcement is a Markdown message for one newly free game.
	Announcement(g model.FreeGame) string
	// Broadcast wraps admin text with the fixed announcement prefix.
	Broadcast(text string) string
}
