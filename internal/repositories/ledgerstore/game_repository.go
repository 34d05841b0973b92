package ledgerstore

import (
	"context"
	"errors"

	"github.com/philippgille/gokv"

	"github.com/scrimteamx/Card-Ghar/internal/ledger"
)

// GameRepository tracks the calendar day (YYYY-MM-DD) the minigame was
// last played, used to enforce the one-reward-per-day rule.
type GameRepository struct {
	store gokv.Store
}

// NewGameRepository constructs a ledger-backed game repository.
func NewGameRepository(store gokv.Store) (*GameRepository, error) {
	if store == nil {
		return nil, errors.New("game repository requires a ledger store")
	}
	return &GameRepository{store: store}, nil
}

// LastPlayed returns the last played day, or empty if the game has never
// been played.
func (r *GameRepository) LastPlayed(ctx context.Context) (string, error) {
	var day string
	if _, err := getValue(ctx, r.store, ledger.KeyGameLastPlayed, &day); err != nil {
		return "", err
	}
	return day, nil
}

// SetLastPlayed records the day of the latest completed game.
func (r *GameRepository) SetLastPlayed(ctx context.Context, day string) error {
	return setValue(ctx, r.store, ledger.KeyGameLastPlayed, day)
}
