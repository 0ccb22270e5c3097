package mysql

import (
	"context"

	"lendledger-backend/internal/domain/uow"

	"gorm.io/gorm"
)

type GormUoW struct{ db *gorm.DB }

func NewGormUoW(db *gorm.DB) *GormUoW { return &GormUoW{db: db} }

// WithinTx gives fn tx-bound repos; fn returning an error rolls the whole
// unit back. Combined with the ForUpdate row locks this supplies the
// whole-operation serialization the engine assumes of its host.
func (u *GormUoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := uow.Repos{
			Balances: &BalanceRepository{db: tx},
			Loans:    &LoanRepository{db: tx},
			Platform: &PlatformRepository{db: tx},
		}
		return fn(r)
	})
}
