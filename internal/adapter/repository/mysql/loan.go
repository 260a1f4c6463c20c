package mysql

import (
	"context"

	loanDomain "p2p-lending-ledger/internal/domain/loan"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// counter backs dense sequential id allocation. Loan ids start at 0 with no
// gaps, which rules out the dialect's auto-increment.
type counter struct {
	Name   string `gorm:"column:name;primaryKey;size:32"`
	NextID uint64 `gorm:"column:next_id;not null;default:0"`
}

func (counter) TableName() string { return "counters" }

const loanIDCounter = "loans_next_id"

// withUpdateLock adds SELECT ... FOR UPDATE where the dialect supports it.
// sqlite has no row locks; its single-writer database lock already
// serializes transactions.
func withUpdateLock(db *gorm.DB) *gorm.DB {
	if db.Dialector.Name() == "sqlite" {
		return db
	}
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}

type LoanRepository struct{ db *gorm.DB }

func NewLoanRepository(db *gorm.DB) *LoanRepository { return &LoanRepository{db: db} }

// Create allocates the next loan id under a row lock on the counter and
// persists the record. Callers must already be inside a transaction (the
// unit of work guarantees this) so the allocation and the insert commit
// together.
func (r *LoanRepository) Create(ctx context.Context, l *loanDomain.LoanRecord) error {
	db := r.db.WithContext(ctx)

	var c counter
	err := withUpdateLock(db).
		Where("name = ?", loanIDCounter).
		FirstOrCreate(&c, counter{Name: loanIDCounter}).Error
	if err != nil {
		return err
	}

	l.ID = c.NextID
	if err := db.Create(l).Error; err != nil {
		return err
	}

	return db.Model(&counter{}).
		Where("name = ?", loanIDCounter).
		Update("next_id", gorm.Expr("next_id + 1")).Error
}

func (r *LoanRepository) GetByID(ctx context.Context, id uint64) (*loanDomain.LoanRecord, error) {
	var out loanDomain.LoanRecord
	res := r.db.WithContext(ctx).Where("id = ?", id).First(&out)
	return &out, res.Error
}

func (r *LoanRepository) GetByIDForUpdate(ctx context.Context, id uint64) (*loanDomain.LoanRecord, error) {
	var out loanDomain.LoanRecord
	res := withUpdateLock(r.db.WithContext(ctx)).
		Where("id = ?", id).
		First(&out)
	return &out, res.Error
}

// Save writes every column keyed on the id. gorm's Save takes the insert
// path for a zero primary key, and 0 is a valid loan id here.
func (r *LoanRepository) Save(ctx context.Context, l *loanDomain.LoanRecord) error {
	return r.db.WithContext(ctx).
		Model(&loanDomain.LoanRecord{}).
		Where("id = ?", l.ID).
		Select("*").
		Updates(l).Error
}

func (r *LoanRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	res := r.db.WithContext(ctx).Model(&loanDomain.LoanRecord{}).Count(&n)
	return n, res.Error
}

func (r *LoanRepository) ListAll(ctx context.Context) ([]loanDomain.LoanRecord, error) {
	var out []loanDomain.LoanRecord
	res := r.db.WithContext(ctx).Order("id ASC").Find(&out)
	return out, res.Error
}

func (r *LoanRepository) ListByParticipant(ctx context.Context, address string) ([]loanDomain.LoanRecord, error) {
	var out []loanDomain.LoanRecord
	res := r.db.WithContext(ctx).
		Where("borrower = ? OR lender = ?", address, address).
		Order("id ASC").
		Find(&out)
	return out, res.Error
}

func (r *LoanRepository) ListByStatus(ctx context.Context, s loanDomain.Status) ([]loanDomain.LoanRecord, error) {
	var out []loanDomain.LoanRecord
	res := r.db.WithContext(ctx).
		Where("status = ?", s).
		Order("id ASC").
		Find(&out)
	return out, res.Error
}
