package escrow

import "context"

type Repository interface {
	Create(ctx context.Context, e *Entry) error
	// GetByLoanID returns gorm.ErrRecordNotFound when no entry exists yet.
	GetByLoanID(ctx context.Context, loanID uint64) (*Entry, error)
	Save(ctx context.Context, e *Entry) error
}
