package store

import "context"

// ScoreStore persists final scores. Both operations are best-effort from
// the game's point of view: callers log failures and move on.
type ScoreStore interface {
	// UpsertScore inserts the player row if absent, with score 0.
	UpsertScore(ctx context.Context, playerID, nickname string) error
	// UpdateScore writes the final score for one player.
	UpdateScore(ctx context.Context, playerID string, score int) error
}

// Noop is used when no database is configured, and in tests.
type Noop struct{}

func (Noop) UpsertScore(context.Context, string, string) error { return nil }
func (Noop) UpdateScore(context.Context, string, int) error    { return nil }
