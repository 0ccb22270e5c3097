package ledger

import "context"

type Repository interface {
	// Get returns 0 for principals with no row; reading is side-effect free.
	Get(ctx context.Context, principal string) (uint64, error)
	// GetForUpdate is Get plus a row lock held until the surrounding tx ends.
	// A missing row is still 0; the row comes into existence on Set.
	GetForUpdate(ctx context.Context, principal string) (uint64, error)
	// Set overwrites the principal's balance, creating the row if needed.
	Set(ctx context.Context, principal string, amount uint64) error
}
