package escrow

import (
	"time"

	"github.com/shopspring/decimal"
)

// Entry tracks the value custodied for one loan. It exists from the first
// successful collateral deposit until release/forfeiture zeroes it; the row
// itself is retained for audit (DisbursedTo/DisbursedAt record where the
// funds went).
type Entry struct {
	ID          uint64          `gorm:"column:id;primaryKey;autoIncrement"`
	LoanID      uint64          `gorm:"column:loan_id;not null;uniqueIndex:ux_escrow_loan"`
	Amount      decimal.Decimal `gorm:"column:amount;type:decimal(18,2);not null"`
	DisbursedTo string          `gorm:"column:disbursed_to;size:64;not null;default:''"`
	DisbursedAt *time.Time      `gorm:"column:disbursed_at"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (Entry) TableName() string { return "escrow_entries" }
