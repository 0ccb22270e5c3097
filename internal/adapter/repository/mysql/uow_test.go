package mysql

import (
	"context"
	"errors"
	"testing"

	loanDomain "lendledger-backend/internal/domain/loan"
	platformDomain "lendledger-backend/internal/domain/platform"
	"lendledger-backend/internal/domain/uow"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// openUowDB migrates all three tables so the UoW can orchestrate them.
func openUowDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&loanSQLite{}, &balanceSQLite{}, &platformDomain.Counters{}); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return db
}

type balanceSQLite struct {
	ID        uint64 `gorm:"primaryKey;column:id"`
	Principal string `gorm:"size:32;uniqueIndex;column:principal"`
	Amount    uint64 `gorm:"column:amount"`
}

func (balanceSQLite) TableName() string { return "balances" }

func TestGormUoW_Commit(t *testing.T) {
	db := openUowDB(t)
	guow := NewGormUoW(db)
	ctx := context.Background()

	err := guow.WithinTx(ctx, func(r uow.Repos) error {
		c, err := r.Platform.GetForUpdate(ctx)
		if err != nil {
			return err
		}
		id := c.NextLoanID
		c.NextLoanID++
		if err := r.Loans.Create(ctx, makeLoan(id, "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")); err != nil {
			return err
		}
		if err := r.Balances.Set(ctx, "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", 750); err != nil {
			return err
		}
		return r.Platform.Save(ctx, c)
	})
	if err != nil {
		t.Fatalf("WithinTx commit: %v", err)
	}

	// all three writes visible after commit
	if _, err := NewLoanRepository(db).GetByID(ctx, 1); err != nil {
		t.Fatalf("loan after commit: %v", err)
	}
	if bal, _ := NewBalanceRepository(db).Get(ctx, "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"); bal != 750 {
		t.Fatalf("balance after commit = %d", bal)
	}
	c, _ := NewPlatformRepository(db).Get(ctx)
	if c.NextLoanID != 2 {
		t.Fatalf("allocator after commit = %d", c.NextLoanID)
	}
}

func TestGormUoW_RollbackLeavesNoTrace(t *testing.T) {
	db := openUowDB(t)
	guow := NewGormUoW(db)
	ctx := context.Background()

	wantErr := errors.New("boom")
	err := guow.WithinTx(ctx, func(r uow.Repos) error {
		if err := r.Balances.Set(ctx, "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb", 100); err != nil {
			return err
		}
		if err := r.Loans.Create(ctx, makeLoan(1, "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")); err != nil {
			return err
		}
		c, err := r.Platform.GetForUpdate(ctx)
		if err != nil {
			return err
		}
		c.TotalLoansIssued = 99
		if err := r.Platform.Save(ctx, c); err != nil {
			return err
		}
		return wantErr // force rollback
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("err = %v", err)
	}

	if bal, _ := NewBalanceRepository(db).Get(ctx, "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"); bal != 0 {
		t.Fatalf("balance leaked through rollback: %d", bal)
	}
	if _, err := NewLoanRepository(db).GetByID(ctx, 1); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("loan leaked through rollback: %v", err)
	}
	c, _ := NewPlatformRepository(db).Get(ctx)
	if c.TotalLoansIssued != 0 {
		t.Fatalf("counters leaked through rollback: %+v", c)
	}
}

func TestGormUoW_LoanStatusSurvivesRoundTrip(t *testing.T) {
	db := openUowDB(t)
	guow := NewGormUoW(db)
	ctx := context.Background()

	err := guow.WithinTx(ctx, func(r uow.Repos) error {
		return r.Loans.Create(ctx, makeLoan(1, "cccccccccccccccccccccccccccccccc"))
	})
	if err != nil {
		t.Fatal(err)
	}
	got, err := NewLoanRepository(db).GetByID(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Status.Valid() || got.Status != loanDomain.StatusPending {
		t.Fatalf("status round trip: %q", got.Status)
	}
}
