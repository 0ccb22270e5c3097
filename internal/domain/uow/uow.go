package uow

import (
	"context"

	"lendledger-backend/internal/domain/ledger"
	"lendledger-backend/internal/domain/loan"
	"lendledger-backend/internal/domain/platform"
)

type Repos struct {
	Balances ledger.Repository
	Loans    loan.Repository
	Platform platform.Repository
}

// UnitOfWork runs fn as one atomic unit against all three stores: every
// engine operation goes through here, so a failure anywhere rolls back
// everything — never a partial commit.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(r Repos) error) error
}
