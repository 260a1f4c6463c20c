package uow

import (
	"context"

	"p2p-lending-ledger/internal/domain/escrow"
	"p2p-lending-ledger/internal/domain/event"
	"p2p-lending-ledger/internal/domain/loan"
)

type Repos struct {
	Loans  loan.Repository
	Escrow escrow.Repository
	Events event.Repository
}

// UnitOfWork scopes a set of repository calls to one database transaction.
// WithinLoanTx additionally locks the loan row before invoking fn, so all
// writes against the same loan id serialize while loans with different ids
// proceed independently.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	WithinLoanTx(ctx context.Context, loanID uint64, fn func(r Repos, l *loan.LoanRecord) error) error
}
