package repository

import "context"

// ChatSetRepository is a durable set of Telegram chat IDs.
// The bot keeps two of them: subscribers and every user that ever interacted.
type ChatSetRepository interface {
	// Add reports whether the id was newly inserted.
	Add(ctx context.Context, chatID int64) (bool, error)
	// Remove reports whether the id was present.
	Remove(ctx context.Context, chatID int64) (bool, error)
	Contains(ctx context.Context, chatID int64) (bool, error)
	List(ctx context.Context) ([]int64, error)
	Count(ctx context.Context) (int, error)
}
