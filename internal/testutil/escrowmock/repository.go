package escrowmock

import (
	"context"
	"errors"

	"p2p-lending-ledger/internal/domain/escrow"
)

// Ensure compile-time compliance
var _ escrow.Repository = (*Repo)(nil)

var errUnimplemented = errors.New("escrowmock: method not implemented")

type Repo struct {
	CreateFn      func(ctx context.Context, e *escrow.Entry) error
	GetByLoanIDFn func(ctx context.Context, loanID uint64) (*escrow.Entry, error)
	SaveFn        func(ctx context.Context, e *escrow.Entry) error
}

func (m *Repo) Create(ctx context.Context, e *escrow.Entry) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, e)
	}
	return errUnimplemented
}

func (m *Repo) GetByLoanID(ctx context.Context, loanID uint64) (*escrow.Entry, error) {
	if m.GetByLoanIDFn != nil {
		return m.GetByLoanIDFn(ctx, loanID)
	}
	return nil, errUnimplemented
}

func (m *Repo) Save(ctx context.Context, e *escrow.Entry) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, e)
	}
	return errUnimplemented
}
