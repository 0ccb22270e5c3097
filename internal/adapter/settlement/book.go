package settlement

import (
	"context"
	"fmt"
	"sync"

	domain "lendledger-backend/internal/domain/settlement"
)

// Book is an in-process settlement rail for dev and test deployments: a
// mutex-guarded account book with the same contract as the native rail —
// a transfer either moves the full amount or leaves both sides untouched.
// Production wiring replaces it with the platform's real rail.
type Book struct {
	mu       sync.Mutex
	accounts map[string]uint64
}

func NewBook() *Book {
	return &Book{accounts: make(map[string]uint64)}
}

// Mint seeds native funds onto an account (dev faucet).
func (b *Book) Mint(account string, amount uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.accounts[account] += amount
}

func (b *Book) BalanceOf(account string) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.accounts[account]
}

func (b *Book) Transfer(_ context.Context, from, to string, amount uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.accounts[from] < amount {
		return fmt.Errorf("%w: %s holds %d, needs %d", domain.ErrTransferFailed, from, b.accounts[from], amount)
	}
	b.accounts[from] -= amount
	b.accounts[to] += amount
	return nil
}
