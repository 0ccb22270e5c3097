package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lendledger-backend/internal/domain/chain"
	"lendledger-backend/internal/domain/loan"
	"lendledger-backend/internal/domain/settlement"
	"lendledger-backend/internal/domain/uow"
	"lendledger-backend/pkg/interest"

	"gorm.io/gorm"
)

// DefaultRateBps is the platform-wide interest rate applied to every new
// loan (10% nominal per year); callers do not choose a rate.
const DefaultRateBps = 1000

// Usecase is the loan lifecycle controller. Every public operation runs as
// one unit of work: all preconditions are checked before any write, and any
// failure rolls the whole operation back.
type Usecase struct {
	uow     uow.UnitOfWork
	rail    settlement.Rail
	height  chain.HeightSource
	rateBps uint64
}

func NewUsecase(tx uow.UnitOfWork, rail settlement.Rail, height chain.HeightSource, rateBps uint64) *Usecase {
	if rateBps == 0 {
		rateBps = DefaultRateBps
	}
	return &Usecase{uow: tx, rail: rail, height: height, rateBps: rateBps}
}

// debit fails with ErrInsufficientFunds instead of wrapping below zero.
func debit(ctx context.Context, r uow.Repos, principal string, amount uint64) error {
	bal, err := r.Balances.GetForUpdate(ctx, principal)
	if err != nil {
		return err
	}
	if bal < amount {
		return loan.ErrInsufficientFunds
	}
	return r.Balances.Set(ctx, principal, bal-amount)
}

// credit reads fresh before writing so that a debit and credit on the same
// principal inside one operation compose correctly (self-funded loans).
func credit(ctx context.Context, r uow.Repos, principal string, amount uint64) error {
	bal, err := r.Balances.GetForUpdate(ctx, principal)
	if err != nil {
		return err
	}
	return r.Balances.Set(ctx, principal, bal+amount)
}

// Deposit moves native value caller→escrow and credits the caller's
// custodial balance. If the rail refuses, nothing changes.
func (u *Usecase) Deposit(ctx context.Context, caller string, amount uint64) (uint64, error) {
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if err := u.rail.Transfer(ctx, caller, settlement.Escrow, amount); err != nil {
			return fmt.Errorf("deposit settlement: %w", err)
		}
		return credit(ctx, r, caller, amount)
	})
	if err != nil {
		return 0, err
	}
	return amount, nil
}

// Withdraw debits the caller's custodial balance and moves native value
// escrow→caller. The rail runs last so its failure rolls the debit back.
func (u *Usecase) Withdraw(ctx context.Context, caller string, amount uint64) (uint64, error) {
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if err := debit(ctx, r, caller, amount); err != nil {
			return err
		}
		if err := u.rail.Transfer(ctx, settlement.Escrow, caller, amount); err != nil {
			return fmt.Errorf("withdraw settlement: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return amount, nil
}

// RequestLoan escrows the collateral immediately — at request time, before
// any lender is known — and stores a pending record under the next
// sequential id. The four preconditions (positive amount, positive
// duration, collateral ≥ amount/2, collateral on balance) all report
// ErrInvalidAmount; callers cannot tell bad parameters from an
// under-funded collateral balance. That ambiguity is part of the contract.
func (u *Usecase) RequestLoan(ctx context.Context, caller string, in RequestLoanInput) (uint64, error) {
	if in.Amount == 0 || in.DurationBlocks == 0 || in.CollateralAmount < in.Amount/2 {
		return 0, loan.ErrInvalidAmount
	}
	var loanID uint64
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		bal, err := r.Balances.GetForUpdate(ctx, caller)
		if err != nil {
			return err
		}
		if bal < in.CollateralAmount {
			return loan.ErrInvalidAmount
		}

		c, err := r.Platform.GetForUpdate(ctx)
		if err != nil {
			return err
		}
		loanID = c.NextLoanID
		c.NextLoanID++

		now := time.Now().UTC()
		l := &loan.Loan{
			ID:               loanID,
			Borrower:         caller,
			Amount:           in.Amount,
			RateBps:          u.rateBps,
			DurationBlocks:   in.DurationBlocks,
			CollateralAmount: in.CollateralAmount,
			Status:           loan.StatusPending,
			StatusUpdatedAt:  now,
		}
		if err := r.Loans.Create(ctx, l); err != nil {
			return err
		}
		if err := r.Balances.Set(ctx, caller, bal-in.CollateralAmount); err != nil {
			return err
		}
		return r.Platform.Save(ctx, c)
	})
	if err != nil {
		return 0, err
	}
	return loanID, nil
}

// FundLoan makes the first qualifying caller the lender: principal moves
// lender→borrower inside the ledger, the loan turns active at the current
// height, and the funding counters bump exactly once. A non-pending loan
// and an under-funded lender both report ErrInsufficientFunds — the state
// check is deliberately folded into the balance check.
func (u *Usecase) FundLoan(ctx context.Context, caller string, loanID uint64) error {
	return u.uow.WithinTx(ctx, func(r uow.Repos) error {
		l, err := r.Loans.GetByIDForUpdate(ctx, loanID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return loan.ErrNotFound
			}
			return err
		}
		if l.Status != loan.StatusPending {
			return loan.ErrInsufficientFunds
		}

		if err := debit(ctx, r, caller, l.Amount); err != nil {
			return err
		}
		if err := credit(ctx, r, l.Borrower, l.Amount); err != nil {
			return err
		}

		h, err := u.height.Current(ctx)
		if err != nil {
			return fmt.Errorf("chain height: %w", err)
		}
		lender := caller
		l.Lender = &lender
		l.Status = loan.StatusActive
		l.StartBlock = h
		l.StatusUpdatedAt = time.Now().UTC()
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}

		c, err := r.Platform.GetForUpdate(ctx)
		if err != nil {
			return err
		}
		c.TotalLoansIssued++
		c.TotalVolume += l.Amount
		return r.Platform.Save(ctx, c)
	})
}

// RepayLoan settles principal plus accrued interest to the lender and
// releases the collateral back to the borrower. Wrong caller, wrong state
// and short balance all report ErrInsufficientFunds, mirroring FundLoan's
// folded error.
func (u *Usecase) RepayLoan(ctx context.Context, caller string, loanID uint64) (uint64, error) {
	var totalOwed uint64
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		l, err := r.Loans.GetByIDForUpdate(ctx, loanID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return loan.ErrNotFound
			}
			return err
		}
		if l.Status != loan.StatusActive || l.Lender == nil || caller != l.Borrower {
			return loan.ErrInsufficientFunds
		}

		h, err := u.height.Current(ctx)
		if err != nil {
			return fmt.Errorf("chain height: %w", err)
		}
		owed := l.Amount + interest.Accrue(l.Amount, l.RateBps, h-l.StartBlock)

		if err := debit(ctx, r, caller, owed); err != nil {
			return err
		}
		if err := credit(ctx, r, *l.Lender, owed); err != nil {
			return err
		}
		// collateral goes home
		if err := credit(ctx, r, caller, l.CollateralAmount); err != nil {
			return err
		}

		l.Status = loan.StatusRepaid
		l.TotalRepaid = owed
		l.StatusUpdatedAt = time.Now().UTC()
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		totalOwed = owed
		return nil
	})
	if err != nil {
		return 0, err
	}
	return totalOwed, nil
}

// GetLoan is a read-only lookup.
func (u *Usecase) GetLoan(ctx context.Context, loanID uint64) (*LoanDTO, error) {
	var dto *LoanDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		l, err := r.Loans.GetByID(ctx, loanID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return loan.ErrNotFound
			}
			return err
		}
		dto = toLoanDTO(l)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// Balance reads the caller's custodial balance; absent principals are 0.
func (u *Usecase) Balance(ctx context.Context, principal string) (*BalanceDTO, error) {
	var dto *BalanceDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		bal, err := r.Balances.Get(ctx, principal)
		if err != nil {
			return err
		}
		dto = &BalanceDTO{Principal: principal, Amount: bal}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// Stats reads the platform funding counters.
func (u *Usecase) Stats(ctx context.Context) (*StatsDTO, error) {
	var dto *StatsDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		c, err := r.Platform.Get(ctx)
		if err != nil {
			return err
		}
		dto = &StatsDTO{TotalLoansIssued: c.TotalLoansIssued, TotalVolume: c.TotalVolume}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}
