package event

import "context"

type Repository interface {
	Append(ctx context.Context, e *LedgerEvent) error
	// ListByLoanID returns events in occurrence order; empty slice when the
	// loan has none (callers decide whether the loan itself exists).
	ListByLoanID(ctx context.Context, loanID uint64) ([]LedgerEvent, error)
}
