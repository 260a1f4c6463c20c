package loanmock

import (
	"context"
	"errors"

	"p2p-lending-ledger/internal/domain/loan"
)

// Ensure compile-time compliance
var _ loan.Repository = (*Repo)(nil)

var errUnimplemented = errors.New("loanmock: method not implemented")

// Repo is a function-backed mock satisfying loan.Repository. Fill in the
// function fields a test needs; unfilled ones fail loudly.
type Repo struct {
	CreateFn            func(ctx context.Context, l *loan.LoanRecord) error
	GetByIDFn           func(ctx context.Context, id uint64) (*loan.LoanRecord, error)
	GetByIDForUpdateFn  func(ctx context.Context, id uint64) (*loan.LoanRecord, error)
	SaveFn              func(ctx context.Context, l *loan.LoanRecord) error
	CountFn             func(ctx context.Context) (int64, error)
	ListAllFn           func(ctx context.Context) ([]loan.LoanRecord, error)
	ListByParticipantFn func(ctx context.Context, address string) ([]loan.LoanRecord, error)
	ListByStatusFn      func(ctx context.Context, s loan.Status) ([]loan.LoanRecord, error)
}

func (m *Repo) Create(ctx context.Context, l *loan.LoanRecord) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, l)
	}
	return errUnimplemented
}

func (m *Repo) GetByID(ctx context.Context, id uint64) (*loan.LoanRecord, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, errUnimplemented
}

func (m *Repo) GetByIDForUpdate(ctx context.Context, id uint64) (*loan.LoanRecord, error) {
	if m.GetByIDForUpdateFn != nil {
		return m.GetByIDForUpdateFn(ctx, id)
	}
	return nil, errUnimplemented
}

func (m *Repo) Save(ctx context.Context, l *loan.LoanRecord) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, l)
	}
	return errUnimplemented
}

func (m *Repo) Count(ctx context.Context) (int64, error) {
	if m.CountFn != nil {
		return m.CountFn(ctx)
	}
	return 0, errUnimplemented
}

func (m *Repo) ListAll(ctx context.Context) ([]loan.LoanRecord, error) {
	if m.ListAllFn != nil {
		return m.ListAllFn(ctx)
	}
	return nil, errUnimplemented
}

func (m *Repo) ListByParticipant(ctx context.Context, address string) ([]loan.LoanRecord, error) {
	if m.ListByParticipantFn != nil {
		return m.ListByParticipantFn(ctx, address)
	}
	return nil, errUnimplemented
}

func (m *Repo) ListByStatus(ctx context.Context, s loan.Status) ([]loan.LoanRecord, error) {
	if m.ListByStatusFn != nil {
		return m.ListByStatusFn(ctx, s)
	}
	return nil, errUnimplemented
}
