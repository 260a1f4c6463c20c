package mysql

import (
	"context"
	"errors"
	"testing"

	escrowDomain "p2p-lending-ledger/internal/domain/escrow"
	eventDomain "p2p-lending-ledger/internal/domain/event"
	loanDomain "p2p-lending-ledger/internal/domain/loan"
	"p2p-lending-ledger/internal/domain/uow"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func TestWithinLoanTx_UnknownID(t *testing.T) {
	db := openTestDB(t)
	u := NewGormUoW(db)

	err := u.WithinLoanTx(context.Background(), 42, func(r uow.Repos, l *loanDomain.LoanRecord) error {
		t.Fatal("fn must not run for unknown loan")
		return nil
	})
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestWithinLoanTx_CommitsStatusEscrowAndEventTogether(t *testing.T) {
	db := openTestDB(t)
	u := NewGormUoW(db)
	ctx := context.Background()

	created := createLoan(t, u, "0xb1")

	err := u.WithinLoanTx(ctx, created.ID, func(r uow.Repos, l *loanDomain.LoanRecord) error {
		l.Status = loanDomain.StatusCollateralDeposited
		l.CollateralHeld = decimal.NewFromInt(250)
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		if err := r.Escrow.Create(ctx, &escrowDomain.Entry{LoanID: l.ID, Amount: l.CollateralHeld}); err != nil {
			return err
		}
		return r.Events.Append(ctx, &eventDomain.LedgerEvent{
			EventID:         "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
			LoanID:          l.ID,
			Kind:            eventDomain.KindCollateralDeposited,
			Actor:           "0xb1",
			ResultingStatus: l.Status,
		})
	})
	if err != nil {
		t.Fatalf("WithinLoanTx: %v", err)
	}

	got, err := NewLoanRepository(db).GetByID(ctx, created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != loanDomain.StatusCollateralDeposited {
		t.Errorf("status = %s", got.Status)
	}
	if _, err := NewEscrowRepository(db).GetByLoanID(ctx, created.ID); err != nil {
		t.Errorf("escrow entry missing after commit: %v", err)
	}
	events, err := NewEventRepository(db).ListByLoanID(ctx, created.ID)
	if err != nil || len(events) != 1 {
		t.Errorf("events after commit = %v, %v", events, err)
	}
}

func TestWithinLoanTx_RollsBackAllOrNothing(t *testing.T) {
	db := openTestDB(t)
	u := NewGormUoW(db)
	ctx := context.Background()

	created := createLoan(t, u, "0xb1")
	boom := errors.New("boom")

	err := u.WithinLoanTx(ctx, created.ID, func(r uow.Repos, l *loanDomain.LoanRecord) error {
		l.Status = loanDomain.StatusAccepted
		l.Lender = "0xl1"
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		if err := r.Events.Append(ctx, &eventDomain.LedgerEvent{
			EventID: "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb",
			LoanID:  l.ID, Kind: eventDomain.KindLoanAccepted,
			Actor: "0xl1", ResultingStatus: l.Status,
		}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	got, err := NewLoanRepository(db).GetByID(ctx, created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != loanDomain.StatusRequested || got.Lender != loanDomain.LenderUnset {
		t.Errorf("loan mutated despite rollback: %+v", got)
	}
	events, err := NewEventRepository(db).ListByLoanID(ctx, created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 0 {
		t.Errorf("event survived rollback: %+v", events)
	}
}
