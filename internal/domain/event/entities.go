package event

import (
	"time"

	"p2p-lending-ledger/internal/domain/loan"
)

type Kind string

const (
	KindLoanRequested       Kind = "loan_requested"
	KindLoanAccepted        Kind = "loan_accepted"
	KindCollateralDeposited Kind = "collateral_deposited"
	KindLoanRepaid          Kind = "loan_repaid"
	KindLoanDefaulted       Kind = "loan_defaulted"
)

// LedgerEvent is written exactly once per successful transition, in the same
// transaction as the record mutation. Rows are never updated or deleted; the
// auto-increment id gives the global occurrence order.
type LedgerEvent struct {
	ID              uint64      `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	EventID         string      `gorm:"column:event_id;type:char(32);not null;uniqueIndex:ux_events_event_id" json:"event_id"`
	LoanID          uint64      `gorm:"column:loan_id;not null;index:idx_events_loan" json:"loan_id"`
	Kind            Kind        `gorm:"column:kind;type:varchar(32);not null" json:"kind"`
	Actor           string      `gorm:"column:actor;size:64;not null" json:"actor"`
	ResultingStatus loan.Status `gorm:"column:resulting_status;type:varchar(24);not null" json:"resulting_status"`
	CreatedAt       time.Time   `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (LedgerEvent) TableName() string { return "ledger_events" }
