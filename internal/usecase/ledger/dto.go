package ledger

import (
	"time"

	eventDomain "p2p-lending-ledger/internal/domain/event"
	loanDomain "p2p-lending-ledger/internal/domain/loan"

	"github.com/shopspring/decimal"
)

const (
	RoleBorrower = "borrower"
	RoleLender   = "lender"
)

type LoanDTO struct {
	ID                     uint64          `json:"id"`
	Borrower               string          `json:"borrower"`
	Lender                 string          `json:"lender"`
	Amount                 decimal.Decimal `json:"amount"`
	TermDays               int             `json:"term_days"`
	Purpose                string          `json:"purpose"`
	RepaymentFrequencyDays int             `json:"repayment_frequency_days"`
	Status                 string          `json:"status"`
	CollateralHeld         decimal.Decimal `json:"collateral_held"`
	CreatedAt              time.Time       `json:"created_at"`
	StatusUpdatedAt        time.Time       `json:"status_updated_at"`
}

// ParticipantLoanDTO adds which side of the loan the queried address holds.
type ParticipantLoanDTO struct {
	LoanDTO
	Role string `json:"role"`
}

type EventDTO struct {
	EventID         string    `json:"event_id"`
	LoanID          uint64    `json:"loan_id"`
	Kind            string    `json:"kind"`
	Actor           string    `json:"actor"`
	ResultingStatus string    `json:"resulting_status"`
	OccurredAt      time.Time `json:"occurred_at"`
}

func toDTO(l *loanDomain.LoanRecord) *LoanDTO {
	return &LoanDTO{
		ID:                     l.ID,
		Borrower:               l.Borrower,
		Lender:                 l.Lender,
		Amount:                 l.Amount,
		TermDays:               l.TermDays,
		Purpose:                l.Purpose,
		RepaymentFrequencyDays: l.RepaymentFrequencyDays,
		Status:                 string(l.Status),
		CollateralHeld:         l.CollateralHeld,
		CreatedAt:              l.CreatedAt,
		StatusUpdatedAt:        l.StatusUpdatedAt,
	}
}

func toDTOs(records []loanDomain.LoanRecord) []LoanDTO {
	out := make([]LoanDTO, 0, len(records))
	for i := range records {
		out = append(out, *toDTO(&records[i]))
	}
	return out
}

func toEventDTO(e *eventDomain.LedgerEvent) EventDTO {
	return EventDTO{
		EventID:         e.EventID,
		LoanID:          e.LoanID,
		Kind:            string(e.Kind),
		Actor:           e.Actor,
		ResultingStatus: string(e.ResultingStatus),
		OccurredAt:      e.CreatedAt,
	}
}
