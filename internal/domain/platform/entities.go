package platform

// Counters is the single-row platform state: two monotonic funding counters
// and the loan id allocator. These are independent counters, not aggregates
// recomputed from the loans table. NextLoanID starts at 1.
type Counters struct {
	ID               uint64 `gorm:"primaryKey;column:id"`
	TotalLoansIssued uint64 `gorm:"column:total_loans_issued;not null;default:0" json:"total_loans_issued"`
	TotalVolume      uint64 `gorm:"column:total_volume;not null;default:0" json:"total_volume"`
	NextLoanID       uint64 `gorm:"column:next_loan_id;not null;default:1" json:"-"`
}

func (Counters) TableName() string { return "platform_counters" }
