package mysql

import (
	"context"
	"errors"

	ledgerDomain "lendledger-backend/internal/domain/ledger"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BalanceRepository struct{ db *gorm.DB }

func NewBalanceRepository(db *gorm.DB) *BalanceRepository { return &BalanceRepository{db: db} }

func (r *BalanceRepository) Get(ctx context.Context, principal string) (uint64, error) {
	return r.get(ctx, r.db, principal)
}

// GetForUpdate locks the row until the enclosing tx commits. A principal
// with no row yet reads as 0; the row is created by the first Set.
func (r *BalanceRepository) GetForUpdate(ctx context.Context, principal string) (uint64, error) {
	return r.get(ctx, lockForUpdate(r.db), principal)
}

func (r *BalanceRepository) get(ctx context.Context, db *gorm.DB, principal string) (uint64, error) {
	var out ledgerDomain.Balance
	res := db.WithContext(ctx).Where("principal = ?", principal).First(&out)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, res.Error
	}
	return out.Amount, nil
}

// Set is an unconditional overwrite (upsert on principal). Non-negativity
// is the caller's job: amounts are unsigned and underflow is rejected
// before this point, never wrapped.
func (r *BalanceRepository) Set(ctx context.Context, principal string, amount uint64) error {
	row := ledgerDomain.Balance{Principal: principal, Amount: amount}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "principal"}},
			DoUpdates: clause.Assignments(map[string]any{"amount": amount}),
		}).
		Create(&row).Error
}
