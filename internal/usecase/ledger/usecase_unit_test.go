package ledger

import (
	"context"
	"errors"
	"testing"

	eventDomain "p2p-lending-ledger/internal/domain/event"
	loanDomain "p2p-lending-ledger/internal/domain/loan"
	"p2p-lending-ledger/internal/domain/uow"
	"p2p-lending-ledger/internal/notify"
	"p2p-lending-ledger/internal/testutil/eventmock"
	"p2p-lending-ledger/internal/testutil/loanmock"
	"p2p-lending-ledger/internal/testutil/uowmock"
	"p2p-lending-ledger/internal/usecase/vault"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Mock-level tests for behavior the sqlite suite cannot pin down: exactly
// which repo calls a command makes, and that nothing is published when the
// transaction errors.

func newUnitLedger(t *testing.T, u uow.UnitOfWork) (*Usecase, <-chan notify.Message) {
	t.Helper()
	v, err := vault.New(decimal.NewFromInt(250))
	if err != nil {
		t.Fatal(err)
	}
	f := notify.NewFanout()
	ch, cancel := f.Subscribe(4)
	t.Cleanup(cancel)
	return NewUsecase(&loanmock.Repo{}, &eventmock.Repo{}, u, v, f), ch
}

func TestAcceptLoan_MissingRowMapsToNotFound(t *testing.T) {
	u := uowmock.New()
	u.WithinLoanTxFn = func(ctx context.Context, loanID uint64, fn func(r uow.Repos, l *loanDomain.LoanRecord) error) error {
		return gorm.ErrRecordNotFound
	}
	uc, ch := newUnitLedger(t, u)

	_, err := uc.AcceptLoan(context.Background(), 0, "0xlender")
	if !errors.Is(err, loanDomain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if len(ch) != 0 {
		t.Error("notification published for a failed command")
	}
}

func TestRequestLoan_NoNotificationWhenTxFails(t *testing.T) {
	boom := errors.New("disk full")
	u := uowmock.New()
	u.WithinTxFn = func(ctx context.Context, fn func(r uow.Repos) error) error { return boom }
	uc, ch := newUnitLedger(t, u)

	_, err := uc.RequestLoan(context.Background(), RequestLoanInput{
		Borrower: "0xb", Amount: decimal.NewFromInt(100),
		TermDays: 30, RepaymentFrequencyDays: 7,
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if len(ch) != 0 {
		t.Error("notification published for a failed command")
	}
}

func TestAcceptLoan_WritesLoanAndEventInsideTx(t *testing.T) {
	var (
		savedLoan *loanDomain.LoanRecord
		appended  *eventDomain.LedgerEvent
	)
	u := uowmock.New()
	u.WithinLoanTxFn = func(ctx context.Context, loanID uint64, fn func(r uow.Repos, l *loanDomain.LoanRecord) error) error {
		l := &loanDomain.LoanRecord{ID: loanID, Borrower: "0xb", Status: loanDomain.StatusRequested}
		return fn(uow.Repos{
			Loans: &loanmock.Repo{
				SaveFn: func(ctx context.Context, l *loanDomain.LoanRecord) error {
					savedLoan = l
					return nil
				},
			},
			Events: &eventmock.Repo{
				AppendFn: func(ctx context.Context, e *eventDomain.LedgerEvent) error {
					appended = e
					return nil
				},
			},
		}, l)
	}
	uc, ch := newUnitLedger(t, u)

	dto, err := uc.AcceptLoan(context.Background(), 0, "0xlender")
	if err != nil {
		t.Fatalf("AcceptLoan: %v", err)
	}
	if dto.Status != string(loanDomain.StatusAccepted) || dto.Lender != "0xlender" {
		t.Errorf("dto = %+v", dto)
	}
	if savedLoan == nil || savedLoan.Status != loanDomain.StatusAccepted {
		t.Errorf("saved loan = %+v", savedLoan)
	}
	if appended == nil || appended.Kind != eventDomain.KindLoanAccepted || appended.Actor != "0xlender" {
		t.Errorf("appended event = %+v", appended)
	}
	if len(ch) != 1 {
		t.Fatalf("notifications = %d, want 1", len(ch))
	}
	if m := <-ch; m.EventID != appended.EventID || m.ResultingStatus != loanDomain.StatusAccepted {
		t.Errorf("message = %+v", m)
	}
}
