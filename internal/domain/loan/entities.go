package loan

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusRequested           Status = "requested"
	StatusAccepted            Status = "accepted"
	StatusCollateralDeposited Status = "collateral_deposited"
	StatusRepaid              Status = "repaid"
	StatusDefaulted           Status = "defaulted"
)

// LenderUnset is the sentinel lender value a record carries until acceptance.
const LenderUnset = ""

// Typed failures every command can surface; callers distinguish them with errors.Is.
var (
	ErrNotFound          = errors.New("loan not found")
	ErrInvalidState      = errors.New("operation not valid for current loan status")
	ErrUnauthorized      = errors.New("actor is not the required party for this transition")
	ErrInvalidParameters = errors.New("invalid loan parameters")
	ErrAmountMismatch    = errors.New("collateral amount must equal the requirement exactly")
	ErrSelfDealing       = errors.New("lender must not equal borrower")
)

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusRequested, StatusAccepted, StatusCollateralDeposited, StatusRepaid, StatusDefaulted:
		return Status(s), nil
	}
	return "", ErrInvalidParameters
}

// Terminal reports whether no further transition is permitted from s.
func (s Status) Terminal() bool {
	return s == StatusRepaid || s == StatusDefaulted
}

// LoanRecord is the authoritative ledger entry for one loan.
// IDs are dense, assigned sequentially from 0 by the repository. Borrower,
// amount, term, purpose and frequency are immutable once written; Lender is
// written exactly once on acceptance; Status and CollateralHeld change only
// through the state machine, in lockstep.
type LoanRecord struct {
	ID                     uint64          `gorm:"column:id;primaryKey;autoIncrement:false" json:"id"`
	Borrower               string          `gorm:"column:borrower;size:64;not null;index:idx_loans_borrower" json:"borrower"`
	Lender                 string          `gorm:"column:lender;size:64;not null;default:'';index:idx_loans_lender" json:"lender"`
	Amount                 decimal.Decimal `gorm:"column:amount;type:decimal(18,2);not null" json:"amount"`
	TermDays               int             `gorm:"column:term_days;not null" json:"term_days"`
	Purpose                string          `gorm:"column:purpose;type:text" json:"purpose"`
	RepaymentFrequencyDays int             `gorm:"column:repayment_frequency_days;not null" json:"repayment_frequency_days"`
	Status                 Status          `gorm:"column:status;type:varchar(24);not null;index:idx_loans_status" json:"status"`
	CollateralHeld         decimal.Decimal `gorm:"column:collateral_held;type:decimal(18,2);not null" json:"collateral_held"`
	StatusUpdatedAt        time.Time       `gorm:"column:status_updated_at" json:"status_updated_at"`
	CreatedAt              time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt              time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (LoanRecord) TableName() string { return "loans" }
