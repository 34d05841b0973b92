// Package ledgerstore implements the repository interfaces on top of the
// gokv ledger. Every document is small and read-modify-write; the single
// storefront session means there is no cross-process contention to guard.
package ledgerstore

import (
	"context"
	"fmt"

	"github.com/philippgille/gokv"
)

func getValue(ctx context.Context, store gokv.Store, key string, out any) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	found, err := store.Get(key, out)
	if err != nil {
		return false, fmt.Errorf("ledgerstore: get %q: %w", key, err)
	}
	return found, nil
}

func setValue(ctx context.Context, store gokv.Store, key string, value any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := store.Set(key, value); err != nil {
		return fmt.Errorf("ledgerstore: set %q: %w", key, err)
	}
	return nil
}
