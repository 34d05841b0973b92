package ledgerstore

import (
	"context"
	"errors"

	"github.com/philippgille/gokv"

	"github.com/scrimteamx/Card-Ghar/internal/ledger"
)

// ContactRepository remembers the last submitted contact details across
// checkouts.
type ContactRepository struct {
	store gokv.Store
}

// NewContactRepository constructs a ledger-backed contact repository.
func NewContactRepository(store gokv.Store) (*ContactRepository, error) {
	if store == nil {
		return nil, errors.New("contact repository requires a ledger store")
	}
	return &ContactRepository{store: store}, nil
}

// LastContact returns the most recently saved email and username. Missing
// keys read as empty strings.
func (r *ContactRepository) LastContact(ctx context.Context) (string, string, error) {
	var email, username string
	if _, err := getValue(ctx, r.store, ledger.KeyLastEmail, &email); err != nil {
		return "", "", err
	}
	if _, err := getValue(ctx, r.store, ledger.KeyLastUsername, &username); err != nil {
		return "", "", err
	}
	return email, username, nil
}

// SaveLastContact stores both contact fields.
func (r *ContactRepository) SaveLastContact(ctx context.Context, email, username string) error {
	if err := setValue(ctx, r.store, ledger.KeyLastEmail, email); err != nil {
		return err
	}
	return setValue(ctx, r.store, ledger.KeyLastUsername, username)
}
