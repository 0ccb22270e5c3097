package platform

import "context"

type Repository interface {
	// Get returns the counters row, zero counters if none exists yet.
	Get(ctx context.Context) (*Counters, error)
	// GetForUpdate creates the row on first use and locks it, serializing
	// id allocation and counter bumps within the surrounding tx.
	GetForUpdate(ctx context.Context) (*Counters, error)
	Save(ctx context.Context, c *Counters) error
}
