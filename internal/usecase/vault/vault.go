package vault

import (
	"errors"
	"fmt"
	"time"

	"context"

	escrowDomain "p2p-lending-ledger/internal/domain/escrow"
	loanDomain "p2p-lending-ledger/internal/domain/loan"
	"p2p-lending-ledger/internal/domain/uow"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Vault custodies collateral for loans. Deposits are all-or-nothing against
// a fixed requirement; release and forfeiture zero the entry and are no-ops
// when nothing is held. All methods taking uow.Repos run inside the caller's
// loan transaction, so the escrow mutation and the matching status change
// commit as one unit.
type Vault struct {
	required decimal.Decimal
	now      func() time.Time
}

func New(required decimal.Decimal) (*Vault, error) {
	if !required.IsPositive() {
		return nil, fmt.Errorf("collateral requirement must be positive, got %s", required)
	}
	return &Vault{
		required: required,
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

func (v *Vault) RequiredCollateral() decimal.Decimal { return v.required }

// Deposit credits the escrow entry for l and advances the loan to
// collateral_deposited. Precondition order matters for caller guidance:
// status, then actor, then amount.
func (v *Vault) Deposit(ctx context.Context, r uow.Repos, l *loanDomain.LoanRecord, actor string, amount decimal.Decimal) error {
	if l.Status != loanDomain.StatusAccepted {
		return loanDomain.ErrInvalidState
	}
	if actor != l.Borrower {
		return loanDomain.ErrUnauthorized
	}
	if !amount.Equal(v.required) {
		return loanDomain.ErrAmountMismatch
	}

	entry := &escrowDomain.Entry{LoanID: l.ID, Amount: amount}
	if err := r.Escrow.Create(ctx, entry); err != nil {
		return err
	}

	l.CollateralHeld = amount
	l.Status = loanDomain.StatusCollateralDeposited
	l.StatusUpdatedAt = v.now()
	return r.Loans.Save(ctx, l)
}

// ReleaseTo returns the held collateral to the borrower on repayment.
func (v *Vault) ReleaseTo(ctx context.Context, r uow.Repos, l *loanDomain.LoanRecord, recipient string) error {
	return v.disburse(ctx, r, l, recipient)
}

// ForfeitTo hands the held collateral to the lender on default.
func (v *Vault) ForfeitTo(ctx context.Context, r uow.Repos, l *loanDomain.LoanRecord, recipient string) error {
	return v.disburse(ctx, r, l, recipient)
}

func (v *Vault) disburse(ctx context.Context, r uow.Repos, l *loanDomain.LoanRecord, recipient string) error {
	entry, err := r.Escrow.GetByLoanID(ctx, l.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// nothing held; double-release guard
			return nil
		}
		return err
	}
	if entry.Amount.IsZero() {
		return nil
	}

	now := v.now()
	entry.Amount = decimal.Zero
	entry.DisbursedTo = recipient
	entry.DisbursedAt = &now
	if err := r.Escrow.Save(ctx, entry); err != nil {
		return err
	}

	l.CollateralHeld = decimal.Zero
	return nil
}
