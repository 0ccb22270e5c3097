package loan

import (
	"errors"
	"time"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusActive  Status = "active"
	StatusRepaid  Status = "repaid"
	// StatusDefaulted is part of the status vocabulary but no operation
	// transitions into it yet; an overdue watcher would.
	StatusDefaulted Status = "defaulted"
)

// Valid reports whether s is one of the closed status set. Unknown strings
// coming back from storage are a data problem, not a new state.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusActive, StatusRepaid, StatusDefaulted:
		return true
	}
	return false
}

// Error kinds shared by every engine operation. Only ErrNotFound,
// ErrInsufficientFunds and ErrInvalidAmount are returned by the operations
// implemented today; the rest are reserved for lifecycle extensions
// (liquidation, partial repayment, term extension) and must not be repurposed.
var (
	ErrOwnerOnly         = errors.New("owner only")
	ErrNotFound          = errors.New("loan not found")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrLoanActive        = errors.New("loan active")
	ErrLoanNotActive     = errors.New("loan not active")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrLoanOverdue       = errors.New("loan overdue")
	ErrAlreadyExists     = errors.New("already exists")
)

// Loan is a collateralized loan record. IDs are allocated from the platform
// counters row (strictly sequential from 1), never by auto-increment, so a
// rolled-back request cannot burn an id. Lender stays NULL until funding:
// an unfunded loan must not look owner-funded.
type Loan struct {
	ID               uint64    `gorm:"primaryKey;autoIncrement:false;column:id" json:"loan_id"`
	Borrower         string    `gorm:"size:32;index:idx_loans_borrower" json:"borrower"`
	Lender           *string   `gorm:"size:32;index:idx_loans_lender" json:"lender,omitempty"`
	Amount           uint64    `gorm:"column:amount" json:"amount"`
	RateBps          uint64    `gorm:"column:rate_bps" json:"rate_bps"`
	DurationBlocks   uint64    `gorm:"column:duration_blocks" json:"duration_blocks"`
	StartBlock       uint64    `gorm:"column:start_block" json:"start_block"`
	CollateralAmount uint64    `gorm:"column:collateral_amount" json:"collateral_amount"`
	Status           Status    `gorm:"type:enum('pending','active','repaid','defaulted');default:'pending'" json:"status"`
	TotalRepaid      uint64    `gorm:"column:total_repaid" json:"total_repaid"`
	StatusUpdatedAt  time.Time `gorm:"autoCreateTime" json:"status_updated_at"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Loan) TableName() string { return "loans" }
