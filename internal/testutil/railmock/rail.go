package railmock

import (
	"context"

	"lendledger-backend/internal/domain/settlement"
)

// Ensure compile-time compliance
var _ settlement.Rail = (*Rail)(nil)

// Rail is a function-backed mock that satisfies settlement.Rail.
// With no TransferFn set, every transfer succeeds.
type Rail struct {
	TransferFn func(ctx context.Context, from, to string, amount uint64) error
	Calls      []Call
}

type Call struct {
	From, To string
	Amount   uint64
}

func (m *Rail) Transfer(ctx context.Context, from, to string, amount uint64) error {
	m.Calls = append(m.Calls, Call{From: from, To: to, Amount: amount})
	if m.TransferFn != nil {
		return m.TransferFn(ctx, from, to, amount)
	}
	return nil
}
