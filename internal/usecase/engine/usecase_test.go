package engine

import (
	"context"
	"errors"
	"testing"

	"lendledger-backend/internal/domain/loan"
	"lendledger-backend/internal/testutil/memstore"
	"lendledger-backend/internal/testutil/railmock"
)

// movableHeight lets a test advance the chain between operations.
type movableHeight struct{ h uint64 }

func (m *movableHeight) Current(context.Context) (uint64, error) { return m.h, nil }

func newEngine(t *testing.T) (*Usecase, *memstore.Store, *railmock.Rail, *movableHeight) {
	t.Helper()
	store := memstore.New()
	rail := &railmock.Rail{}
	height := &movableHeight{h: 100}
	return NewUsecase(store, rail, height, 1000), store, rail, height
}

func TestDepositThenWithdraw_RoundTrip(t *testing.T) {
	uc, store, _, _ := newEngine(t)
	ctx := context.Background()

	if got, err := uc.Deposit(ctx, "alice", 1000); err != nil || got != 1000 {
		t.Fatalf("Deposit = %d, %v", got, err)
	}
	if store.Balances["alice"] != 1000 {
		t.Fatalf("balance after deposit = %d", store.Balances["alice"])
	}
	if got, err := uc.Withdraw(ctx, "alice", 1000); err != nil || got != 1000 {
		t.Fatalf("Withdraw = %d, %v", got, err)
	}
	if store.Balances["alice"] != 0 {
		t.Fatalf("balance after withdraw = %d", store.Balances["alice"])
	}
}

func TestDeposit_RailRejects_NothingChanges(t *testing.T) {
	uc, store, rail, _ := newEngine(t)
	rail.TransferFn = func(context.Context, string, string, uint64) error {
		return errors.New("rail down")
	}
	if _, err := uc.Deposit(context.Background(), "alice", 1000); err == nil {
		t.Fatal("want error")
	}
	if len(store.Balances) != 0 {
		t.Fatalf("balances mutated: %v", store.Balances)
	}
}

func TestWithdraw_Insufficient_NoWrap(t *testing.T) {
	uc, store, rail, _ := newEngine(t)
	ctx := context.Background()

	if _, err := uc.Deposit(ctx, "alice", 100); err != nil {
		t.Fatal(err)
	}
	railCalls := len(rail.Calls)

	_, err := uc.Withdraw(ctx, "alice", 101)
	if !errors.Is(err, loan.ErrInsufficientFunds) {
		t.Fatalf("err = %v, want ErrInsufficientFunds", err)
	}
	if store.Balances["alice"] != 100 {
		t.Fatalf("balance = %d, want 100 (no wraparound)", store.Balances["alice"])
	}
	if len(rail.Calls) != railCalls {
		t.Fatal("rail must not be called on a failed withdraw")
	}
}

func TestWithdraw_RailRejects_DebitRolledBack(t *testing.T) {
	uc, store, rail, _ := newEngine(t)
	ctx := context.Background()

	if _, err := uc.Deposit(ctx, "alice", 500); err != nil {
		t.Fatal(err)
	}
	rail.TransferFn = func(ctx context.Context, from, to string, amount uint64) error {
		return errors.New("rail down")
	}
	if _, err := uc.Withdraw(ctx, "alice", 200); err == nil {
		t.Fatal("want error")
	}
	if store.Balances["alice"] != 500 {
		t.Fatalf("balance = %d, want 500 after rollback", store.Balances["alice"])
	}
}

func TestRequestLoan_Validation_CollapsesToInvalidAmount(t *testing.T) {
	uc, store, _, _ := newEngine(t)
	ctx := context.Background()

	if _, err := uc.Deposit(ctx, "alice", 1000); err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		name string
		in   RequestLoanInput
	}{
		{"zero amount", RequestLoanInput{Amount: 0, DurationBlocks: 100, CollateralAmount: 250}},
		{"zero duration", RequestLoanInput{Amount: 500, DurationBlocks: 0, CollateralAmount: 250}},
		{"collateral below half", RequestLoanInput{Amount: 500, DurationBlocks: 100, CollateralAmount: 249}},
		{"collateral not on balance", RequestLoanInput{Amount: 5000, DurationBlocks: 100, CollateralAmount: 2500}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.RequestLoan(ctx, "alice", tc.in)
			if !errors.Is(err, loan.ErrInvalidAmount) {
				t.Fatalf("err = %v, want ErrInvalidAmount", err)
			}
			if store.Balances["alice"] != 1000 {
				t.Fatalf("balance mutated to %d", store.Balances["alice"])
			}
			if len(store.Loans) != 0 {
				t.Fatalf("registry mutated: %d loans", len(store.Loans))
			}
			if store.Counters.NextLoanID != 1 {
				t.Fatalf("id allocator advanced to %d on failure", store.Counters.NextLoanID)
			}
		})
	}
}

func TestRequestLoan_IDsStrictlySequentialFromOne(t *testing.T) {
	uc, _, _, _ := newEngine(t)
	ctx := context.Background()

	if _, err := uc.Deposit(ctx, "alice", 10_000); err != nil {
		t.Fatal(err)
	}
	for want := uint64(1); want <= 3; want++ {
		// a failed request between successes must not burn an id
		if _, err := uc.RequestLoan(ctx, "alice", RequestLoanInput{Amount: 100, DurationBlocks: 0, CollateralAmount: 50}); err == nil {
			t.Fatal("expected failure")
		}
		got, err := uc.RequestLoan(ctx, "alice", RequestLoanInput{Amount: 100, DurationBlocks: 10, CollateralAmount: 50})
		if err != nil {
			t.Fatalf("RequestLoan: %v", err)
		}
		if got != want {
			t.Fatalf("loan id = %d, want %d", got, want)
		}
	}
}

func TestFundLoan_NotFound_NoChange(t *testing.T) {
	uc, store, _, _ := newEngine(t)
	ctx := context.Background()

	if _, err := uc.Deposit(ctx, "yuri", 500); err != nil {
		t.Fatal(err)
	}
	err := uc.FundLoan(ctx, "yuri", 42)
	if !errors.Is(err, loan.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if store.Balances["yuri"] != 500 || store.Counters.TotalLoansIssued != 0 {
		t.Fatal("state changed on not-found fund")
	}
}

func TestLifecycle_RequestFundRepay(t *testing.T) {
	uc, store, _, height := newEngine(t)
	ctx := context.Background()

	// X deposits 1000 and requests: amount 500, duration 100, collateral 250
	if _, err := uc.Deposit(ctx, "xavier", 1000); err != nil {
		t.Fatal(err)
	}
	loanID, err := uc.RequestLoan(ctx, "xavier", RequestLoanInput{Amount: 500, DurationBlocks: 100, CollateralAmount: 250})
	if err != nil {
		t.Fatalf("RequestLoan: %v", err)
	}
	if loanID != 1 {
		t.Fatalf("loan id = %d, want 1", loanID)
	}
	if store.Balances["xavier"] != 750 {
		t.Fatalf("collateral not escrowed at request: balance = %d", store.Balances["xavier"])
	}
	l := store.Loans[1]
	if l.Status != loan.StatusPending || l.Lender != nil || l.StartBlock != 0 {
		t.Fatalf("pending record wrong: %+v", l)
	}

	// Y deposits 500 and funds loan 1 at height h0
	const h0 = 7_000
	height.h = h0
	if _, err := uc.Deposit(ctx, "yuri", 500); err != nil {
		t.Fatal(err)
	}
	if err := uc.FundLoan(ctx, "yuri", 1); err != nil {
		t.Fatalf("FundLoan: %v", err)
	}
	if store.Balances["yuri"] != 0 || store.Balances["xavier"] != 1250 {
		t.Fatalf("balances after fund: yuri=%d xavier=%d", store.Balances["yuri"], store.Balances["xavier"])
	}
	l = store.Loans[1]
	if l.Status != loan.StatusActive || l.Lender == nil || *l.Lender != "yuri" || l.StartBlock != h0 {
		t.Fatalf("active record wrong: %+v", l)
	}
	if store.Counters.TotalLoansIssued != 1 || store.Counters.TotalVolume != 500 {
		t.Fatalf("counters after fund: %+v", store.Counters)
	}

	// one nominal year later: interest on 500 at 10% truncates to zero
	height.h = h0 + 52560
	owed, err := uc.RepayLoan(ctx, "xavier", 1)
	if err != nil {
		t.Fatalf("RepayLoan: %v", err)
	}
	if owed != 500 {
		t.Fatalf("totalOwed = %d, want 500", owed)
	}
	if store.Balances["xavier"] != 1000 || store.Balances["yuri"] != 500 {
		t.Fatalf("balances after repay: xavier=%d yuri=%d", store.Balances["xavier"], store.Balances["yuri"])
	}
	l = store.Loans[1]
	if l.Status != loan.StatusRepaid || l.TotalRepaid != 500 {
		t.Fatalf("repaid record wrong: %+v", l)
	}
	// repayment never touches the funding counters
	if store.Counters.TotalLoansIssued != 1 || store.Counters.TotalVolume != 500 {
		t.Fatalf("counters after repay: %+v", store.Counters)
	}
}

func TestFundLoan_AlreadyActive_ReportsInsufficientFunds(t *testing.T) {
	uc, store, _, _ := newEngine(t)
	ctx := context.Background()

	seedActiveLoan(t, ctx, uc, store)
	if _, err := uc.Deposit(ctx, "zoe", 500); err != nil {
		t.Fatal(err)
	}
	err := uc.FundLoan(ctx, "zoe", 1)
	if !errors.Is(err, loan.ErrInsufficientFunds) {
		t.Fatalf("err = %v, want ErrInsufficientFunds (folded state check)", err)
	}
	if store.Balances["zoe"] != 500 {
		t.Fatalf("funder debited on failed fund: %d", store.Balances["zoe"])
	}
}

func TestRepayLoan_NonBorrower_ReportsInsufficientFunds(t *testing.T) {
	uc, store, _, _ := newEngine(t)
	ctx := context.Background()

	seedActiveLoan(t, ctx, uc, store)
	if _, err := uc.Deposit(ctx, "zoe", 10_000); err != nil {
		t.Fatal(err)
	}
	before := store.Snapshot()

	_, err := uc.RepayLoan(ctx, "zoe", 1)
	if !errors.Is(err, loan.ErrInsufficientFunds) {
		t.Fatalf("err = %v, want ErrInsufficientFunds (folded authorization)", err)
	}
	if !store.Equal(before) {
		t.Fatal("state changed on rejected repay")
	}
}

func TestRepayLoan_AccruesDoubleTruncatedInterest(t *testing.T) {
	uc, store, _, height := newEngine(t)
	ctx := context.Background()

	if _, err := uc.Deposit(ctx, "xavier", 1_000_000); err != nil {
		t.Fatal(err)
	}
	if _, err := uc.RequestLoan(ctx, "xavier", RequestLoanInput{Amount: 1_000_000, DurationBlocks: 60_000, CollateralAmount: 500_000}); err != nil {
		t.Fatal(err)
	}
	height.h = 0
	if _, err := uc.Deposit(ctx, "yuri", 1_000_000); err != nil {
		t.Fatal(err)
	}
	if err := uc.FundLoan(ctx, "yuri", 1); err != nil {
		t.Fatal(err)
	}

	height.h = 52560
	owed, err := uc.RepayLoan(ctx, "xavier", 1)
	if err != nil {
		t.Fatalf("RepayLoan: %v", err)
	}
	// principal 1_000_000 at 1000 bps over one year: 52_560, not 100_000
	if owed != 1_052_560 {
		t.Fatalf("totalOwed = %d, want 1052560", owed)
	}
	if store.Balances["yuri"] != 1_052_560 {
		t.Fatalf("lender balance = %d", store.Balances["yuri"])
	}
}

func TestRepayLoan_Twice_SecondFails(t *testing.T) {
	uc, store, _, _ := newEngine(t)
	ctx := context.Background()

	seedActiveLoan(t, ctx, uc, store)
	if _, err := uc.Deposit(ctx, "xavier", 10_000); err != nil {
		t.Fatal(err)
	}
	if _, err := uc.RepayLoan(ctx, "xavier", 1); err != nil {
		t.Fatalf("first repay: %v", err)
	}
	if _, err := uc.RepayLoan(ctx, "xavier", 1); !errors.Is(err, loan.ErrInsufficientFunds) {
		t.Fatalf("second repay err = %v, want ErrInsufficientFunds", err)
	}
}

// seedActiveLoan: xavier borrows 500 (collateral 250), yuri funds it.
func seedActiveLoan(t *testing.T, ctx context.Context, uc *Usecase, store *memstore.Store) {
	t.Helper()
	if _, err := uc.Deposit(ctx, "xavier", 1000); err != nil {
		t.Fatal(err)
	}
	if _, err := uc.RequestLoan(ctx, "xavier", RequestLoanInput{Amount: 500, DurationBlocks: 100, CollateralAmount: 250}); err != nil {
		t.Fatal(err)
	}
	if _, err := uc.Deposit(ctx, "yuri", 500); err != nil {
		t.Fatal(err)
	}
	if err := uc.FundLoan(ctx, "yuri", 1); err != nil {
		t.Fatal(err)
	}
}
