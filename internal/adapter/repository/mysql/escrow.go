package mysql

import (
	"context"

	escrowDomain "p2p-lending-ledger/internal/domain/escrow"

	"gorm.io/gorm"
)

type EscrowRepository struct{ db *gorm.DB }

func NewEscrowRepository(db *gorm.DB) *EscrowRepository { return &EscrowRepository{db: db} }

func (r *EscrowRepository) Create(ctx context.Context, e *escrowDomain.Entry) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *EscrowRepository) GetByLoanID(ctx context.Context, loanID uint64) (*escrowDomain.Entry, error) {
	var out escrowDomain.Entry
	res := r.db.WithContext(ctx).Where("loan_id = ?", loanID).First(&out)
	return &out, res.Error
}

func (r *EscrowRepository) Save(ctx context.Context, e *escrowDomain.Entry) error {
	return r.db.WithContext(ctx).Save(e).Error
}
