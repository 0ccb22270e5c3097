package memstore

import (
	"context"
	"reflect"

	"lendledger-backend/internal/domain/loan"
	"lendledger-backend/internal/domain/platform"
	"lendledger-backend/internal/domain/uow"

	"gorm.io/gorm"
)

// Ensure compile-time compliance
var _ uow.UnitOfWork = (*Store)(nil)

// Store is an in-memory uow.UnitOfWork for usecase tests: maps instead of
// tables, with snapshot/restore standing in for tx rollback. An error from
// fn leaves the store exactly as it was — the same whole-operation
// guarantee the gorm unit of work provides.
type Store struct {
	Balances map[string]uint64
	Loans    map[uint64]*loan.Loan
	Counters platform.Counters
}

func New() *Store {
	return &Store{
		Balances: make(map[string]uint64),
		Loans:    make(map[uint64]*loan.Loan),
		Counters: platform.Counters{ID: 1, NextLoanID: 1},
	}
}

func (s *Store) WithinTx(_ context.Context, fn func(r uow.Repos) error) error {
	snap := s.snapshot()
	err := fn(uow.Repos{
		Balances: balanceRepo{s},
		Loans:    loanRepo{s},
		Platform: platformRepo{s},
	})
	if err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// Snapshot captures the whole store for "nothing changed" assertions.
type Snapshot struct{ state snapState }

func (s *Store) Snapshot() Snapshot { return Snapshot{state: s.snapshot()} }

func (s *Store) Equal(snap Snapshot) bool {
	if s.Counters != snap.state.counters {
		return false
	}
	if !reflect.DeepEqual(s.Balances, snap.state.balances) {
		return false
	}
	return reflect.DeepEqual(s.Loans, snap.state.loans)
}

type snapState struct {
	balances map[string]uint64
	loans    map[uint64]*loan.Loan
	counters platform.Counters
}

func (s *Store) snapshot() snapState {
	b := make(map[string]uint64, len(s.Balances))
	for k, v := range s.Balances {
		b[k] = v
	}
	l := make(map[uint64]*loan.Loan, len(s.Loans))
	for k, v := range s.Loans {
		l[k] = copyLoan(v)
	}
	return snapState{balances: b, loans: l, counters: s.Counters}
}

func (s *Store) restore(snap snapState) {
	s.Balances = snap.balances
	s.Loans = snap.loans
	s.Counters = snap.counters
}

func copyLoan(l *loan.Loan) *loan.Loan {
	cp := *l
	if l.Lender != nil {
		lender := *l.Lender
		cp.Lender = &lender
	}
	return &cp
}

// ---- repos ----

type balanceRepo struct{ s *Store }

func (r balanceRepo) Get(_ context.Context, principal string) (uint64, error) {
	return r.s.Balances[principal], nil
}
func (r balanceRepo) GetForUpdate(ctx context.Context, principal string) (uint64, error) {
	return r.Get(ctx, principal)
}
func (r balanceRepo) Set(_ context.Context, principal string, amount uint64) error {
	r.s.Balances[principal] = amount
	return nil
}

type loanRepo struct{ s *Store }

func (r loanRepo) Create(_ context.Context, l *loan.Loan) error {
	if _, ok := r.s.Loans[l.ID]; ok {
		return gorm.ErrDuplicatedKey
	}
	r.s.Loans[l.ID] = copyLoan(l)
	return nil
}
func (r loanRepo) GetByID(_ context.Context, id uint64) (*loan.Loan, error) {
	l, ok := r.s.Loans[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return copyLoan(l), nil
}
func (r loanRepo) GetByIDForUpdate(ctx context.Context, id uint64) (*loan.Loan, error) {
	return r.GetByID(ctx, id)
}
func (r loanRepo) Save(_ context.Context, l *loan.Loan) error {
	r.s.Loans[l.ID] = copyLoan(l)
	return nil
}

type platformRepo struct{ s *Store }

func (r platformRepo) Get(_ context.Context) (*platform.Counters, error) {
	c := r.s.Counters
	return &c, nil
}
func (r platformRepo) GetForUpdate(ctx context.Context) (*platform.Counters, error) {
	return r.Get(ctx)
}
func (r platformRepo) Save(_ context.Context, c *platform.Counters) error {
	r.s.Counters = *c
	return nil
}
