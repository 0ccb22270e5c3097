package ledger

// Balance is one principal's custodial balance. Rows are created lazily on
// first credit and never deleted; a missing row reads as zero. Amount is
// unsigned on purpose: a negative balance must be impossible to store, and
// callers reject underflow before writing rather than letting it wrap.
type Balance struct {
	ID        uint64 `gorm:"primaryKey;column:id"`
	Principal string `gorm:"size:32;uniqueIndex:ux_balances_principal" json:"principal"`
	Amount    uint64 `gorm:"column:amount;not null;default:0" json:"amount"`
}

func (Balance) TableName() string { return "balances" }
