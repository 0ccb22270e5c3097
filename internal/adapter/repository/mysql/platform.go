package mysql

import (
	"context"
	"errors"

	platformDomain "lendledger-backend/internal/domain/platform"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// countersRowID: the counters live in a single well-known row.
const countersRowID = 1

type PlatformRepository struct{ db *gorm.DB }

func NewPlatformRepository(db *gorm.DB) *PlatformRepository { return &PlatformRepository{db: db} }

func (r *PlatformRepository) Get(ctx context.Context) (*platformDomain.Counters, error) {
	var out platformDomain.Counters
	res := r.db.WithContext(ctx).Where("id = ?", countersRowID).First(&out)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return &platformDomain.Counters{ID: countersRowID, NextLoanID: 1}, nil
		}
		return nil, res.Error
	}
	return &out, nil
}

// GetForUpdate creates the row on first use, then locks it. Loan id
// allocation and the funding counters both go through this lock.
func (r *PlatformRepository) GetForUpdate(ctx context.Context) (*platformDomain.Counters, error) {
	seed := platformDomain.Counters{ID: countersRowID, NextLoanID: 1}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&seed).Error; err != nil {
		return nil, err
	}
	var out platformDomain.Counters
	res := lockForUpdate(r.db).WithContext(ctx).
		Where("id = ?", countersRowID).
		First(&out)
	if res.Error != nil {
		return nil, res.Error
	}
	return &out, nil
}

func (r *PlatformRepository) Save(ctx context.Context, c *platformDomain.Counters) error {
	return r.db.WithContext(ctx).Save(c).Error
}
