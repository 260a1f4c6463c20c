package eventmock

import (
	"context"
	"errors"

	"p2p-lending-ledger/internal/domain/event"
)

// Ensure compile-time compliance
var _ event.Repository = (*Repo)(nil)

var errUnimplemented = errors.New("eventmock: method not implemented")

// Repo is a function-backed mock satisfying event.Repository. Fill in the
// function fields a test needs; unfilled ones fail loudly.
type Repo struct {
	AppendFn       func(ctx context.Context, e *event.LedgerEvent) error
	ListByLoanIDFn func(ctx context.Context, loanID uint64) ([]event.LedgerEvent, error)
}

func (m *Repo) Append(ctx context.Context, e *event.LedgerEvent) error {
	if m.AppendFn != nil {
		return m.AppendFn(ctx, e)
	}
	return errUnimplemented
}

func (m *Repo) ListByLoanID(ctx context.Context, loanID uint64) ([]event.LedgerEvent, error) {
	if m.ListByLoanIDFn != nil {
		return m.ListByLoanIDFn(ctx, loanID)
	}
	return nil, errUnimplemented
}
