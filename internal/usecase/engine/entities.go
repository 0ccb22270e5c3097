package engine

import (
	"time"

	"lendledger-backend/internal/domain/loan"
)

type RequestLoanInput struct {
	Amount           uint64
	DurationBlocks   uint64
	CollateralAmount uint64
}

type LoanDTO struct {
	LoanID           uint64    `json:"loan_id"`
	Borrower         string    `json:"borrower"`
	Lender           string    `json:"lender,omitempty"`
	Amount           uint64    `json:"amount"`
	RateBps          uint64    `json:"rate_bps"`
	DurationBlocks   uint64    `json:"duration_blocks"`
	StartBlock       uint64    `json:"start_block"`
	CollateralAmount uint64    `json:"collateral_amount"`
	Status           string    `json:"status"`
	TotalRepaid      uint64    `json:"total_repaid"`
	CreatedAt        time.Time `json:"created_at"`
}

type BalanceDTO struct {
	Principal string `json:"principal"`
	Amount    uint64 `json:"amount"`
}

type StatsDTO struct {
	TotalLoansIssued uint64 `json:"total_loans_issued"`
	TotalVolume      uint64 `json:"total_volume"`
}

func toLoanDTO(l *loan.Loan) *LoanDTO {
	dto := &LoanDTO{
		LoanID:           l.ID,
		Borrower:         l.Borrower,
		Amount:           l.Amount,
		RateBps:          l.RateBps,
		DurationBlocks:   l.DurationBlocks,
		StartBlock:       l.StartBlock,
		CollateralAmount: l.CollateralAmount,
		Status:           string(l.Status),
		TotalRepaid:      l.TotalRepaid,
		CreatedAt:        l.CreatedAt,
	}
	if l.Lender != nil {
		dto.Lender = *l.Lender
	}
	return dto
}
