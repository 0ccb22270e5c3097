package settlement

import (
	"context"
	"errors"
)

// Escrow is the rail-side account holding all custodial funds. Deposits move
// native value caller→Escrow, withdrawals Escrow→caller.
const Escrow = "escrow"

var ErrTransferFailed = errors.New("settlement transfer failed")

// Rail is the native value-transfer capability supplied by the environment.
// Transfer either moves the full amount or has no effect at all; the engine
// composes it with its own balance writes inside one unit of work.
type Rail interface {
	Transfer(ctx context.Context, from, to string, amount uint64) error
}
