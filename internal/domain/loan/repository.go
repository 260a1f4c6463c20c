package loan

import "context"

type Repository interface {
	// Create allocates the next sequential id (starting at 0) and persists
	// the record. Must run inside a transaction.
	Create(ctx context.Context, l *LoanRecord) error
	GetByID(ctx context.Context, id uint64) (*LoanRecord, error)
	// GetByIDForUpdate locks the row until the surrounding tx commits.
	GetByIDForUpdate(ctx context.Context, id uint64) (*LoanRecord, error)
	Save(ctx context.Context, l *LoanRecord) error
	Count(ctx context.Context) (int64, error)
	ListAll(ctx context.Context) ([]LoanRecord, error)
	ListByParticipant(ctx context.Context, address string) ([]LoanRecord, error)
	ListByStatus(ctx context.Context, s Status) ([]LoanRecord, error)
}
