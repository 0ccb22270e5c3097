package chain

import "context"

// HeightSource reports the environment's block counter. Heights are
// monotonic non-decreasing and only advance between engine operations; they
// are the time base for interest accrual, not an execution deadline.
type HeightSource interface {
	Current(ctx context.Context) (uint64, error)
}

// Static is a fixed height, for tests and single-tenant dev setups.
type Static uint64

func (s Static) Current(context.Context) (uint64, error) { return uint64(s), nil }
