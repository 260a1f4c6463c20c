package ledger

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	eventDomain "p2p-lending-ledger/internal/domain/event"
	loanDomain "p2p-lending-ledger/internal/domain/loan"
	"p2p-lending-ledger/internal/domain/uow"
	"p2p-lending-ledger/internal/notify"
	"p2p-lending-ledger/internal/usecase/vault"
	"p2p-lending-ledger/pkg/id"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Usecase is the loan state machine plus the query surface. Every command
// runs inside a unit-of-work transaction that locks the loan row, so the
// status check, the mutation, the escrow movement and the event append
// commit atomically or not at all.
type Usecase struct {
	loans    loanDomain.Repository
	events   eventDomain.Repository
	uow      uow.UnitOfWork
	vault    *vault.Vault
	notifier notify.Notifier
	now      func() time.Time
}

func NewUsecase(loans loanDomain.Repository, events eventDomain.Repository, u uow.UnitOfWork, v *vault.Vault, n notify.Notifier) *Usecase {
	return &Usecase{
		loans:    loans,
		events:   events,
		uow:      u,
		vault:    v,
		notifier: n,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (u *Usecase) RequiredCollateral() decimal.Decimal { return u.vault.RequiredCollateral() }

// ---- commands ----

type RequestLoanInput struct {
	Borrower               string          `json:"borrower"`
	Amount                 decimal.Decimal `json:"amount"`
	TermDays               int             `json:"term_days"`
	Purpose                string          `json:"purpose"`
	RepaymentFrequencyDays int             `json:"repayment_frequency_days"`
}

func (u *Usecase) RequestLoan(ctx context.Context, in RequestLoanInput) (*LoanDTO, error) {
	switch {
	case in.Borrower == "":
		return nil, fmt.Errorf("%w: borrower is required", loanDomain.ErrInvalidParameters)
	case !in.Amount.IsPositive():
		return nil, fmt.Errorf("%w: amount must be positive", loanDomain.ErrInvalidParameters)
	case in.TermDays <= 0:
		return nil, fmt.Errorf("%w: term days must be positive", loanDomain.ErrInvalidParameters)
	case in.RepaymentFrequencyDays <= 0:
		return nil, fmt.Errorf("%w: repayment frequency must be positive", loanDomain.ErrInvalidParameters)
	}

	l := &loanDomain.LoanRecord{
		Borrower:               in.Borrower,
		Lender:                 loanDomain.LenderUnset,
		Amount:                 in.Amount,
		TermDays:               in.TermDays,
		Purpose:                in.Purpose,
		RepaymentFrequencyDays: in.RepaymentFrequencyDays,
		Status:                 loanDomain.StatusRequested,
		CollateralHeld:         decimal.Zero,
		StatusUpdatedAt:        u.now(),
	}

	var ev *eventDomain.LedgerEvent
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if err := r.Loans.Create(ctx, l); err != nil {
			return err
		}
		var err error
		ev, err = u.appendEvent(ctx, r, l, eventDomain.KindLoanRequested, in.Borrower)
		return err
	})
	if err != nil {
		return nil, mapStorageErr(err)
	}

	u.emit(ev)
	return toDTO(l), nil
}

func (u *Usecase) AcceptLoan(ctx context.Context, loanID uint64, lender string) (*LoanDTO, error) {
	if lender == "" {
		return nil, fmt.Errorf("%w: lender is required", loanDomain.ErrInvalidParameters)
	}

	var (
		out *LoanDTO
		ev  *eventDomain.LedgerEvent
	)
	err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *loanDomain.LoanRecord) error {
		if l.Status != loanDomain.StatusRequested {
			return loanDomain.ErrInvalidState
		}
		if lender == l.Borrower {
			return loanDomain.ErrSelfDealing
		}

		l.Lender = lender
		l.Status = loanDomain.StatusAccepted
		l.StatusUpdatedAt = u.now()
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}

		var err error
		if ev, err = u.appendEvent(ctx, r, l, eventDomain.KindLoanAccepted, lender); err != nil {
			return err
		}
		out = toDTO(l)
		return nil
	})
	if err != nil {
		return nil, mapStorageErr(err)
	}

	u.emit(ev)
	return out, nil
}

func (u *Usecase) DepositCollateral(ctx context.Context, loanID uint64, actor string, amount decimal.Decimal) (*LoanDTO, error) {
	var (
		out *LoanDTO
		ev  *eventDomain.LedgerEvent
	)
	err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *loanDomain.LoanRecord) error {
		if err := u.vault.Deposit(ctx, r, l, actor, amount); err != nil {
			return err
		}
		var err error
		if ev, err = u.appendEvent(ctx, r, l, eventDomain.KindCollateralDeposited, actor); err != nil {
			return err
		}
		out = toDTO(l)
		return nil
	})
	if err != nil {
		return nil, mapStorageErr(err)
	}

	u.emit(ev)
	return out, nil
}

// Repay is the borrower's terminal transition: collateral goes back to the
// borrower and the record is retained as repaid forever.
func (u *Usecase) Repay(ctx context.Context, loanID uint64, actor string) (*LoanDTO, error) {
	return u.resolve(ctx, loanID, actor, loanDomain.StatusRepaid)
}

// DeclareDefault is the lender's terminal transition: collateral is
// forfeited to the lender.
func (u *Usecase) DeclareDefault(ctx context.Context, loanID uint64, actor string) (*LoanDTO, error) {
	return u.resolve(ctx, loanID, actor, loanDomain.StatusDefaulted)
}

func (u *Usecase) resolve(ctx context.Context, loanID uint64, actor string, terminal loanDomain.Status) (*LoanDTO, error) {
	var (
		out *LoanDTO
		ev  *eventDomain.LedgerEvent
	)
	err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *loanDomain.LoanRecord) error {
		if l.Status != loanDomain.StatusCollateralDeposited {
			return loanDomain.ErrInvalidState
		}

		var kind eventDomain.Kind
		switch terminal {
		case loanDomain.StatusRepaid:
			if actor != l.Borrower {
				return loanDomain.ErrUnauthorized
			}
			if err := u.vault.ReleaseTo(ctx, r, l, l.Borrower); err != nil {
				return err
			}
			kind = eventDomain.KindLoanRepaid
		case loanDomain.StatusDefaulted:
			if actor != l.Lender {
				return loanDomain.ErrUnauthorized
			}
			if err := u.vault.ForfeitTo(ctx, r, l, l.Lender); err != nil {
				return err
			}
			kind = eventDomain.KindLoanDefaulted
		default:
			return loanDomain.ErrInvalidState
		}

		l.Status = terminal
		l.StatusUpdatedAt = u.now()
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}

		var err error
		if ev, err = u.appendEvent(ctx, r, l, kind, actor); err != nil {
			return err
		}
		out = toDTO(l)
		return nil
	})
	if err != nil {
		return nil, mapStorageErr(err)
	}

	u.emit(ev)
	return out, nil
}

// ---- queries ----

func (u *Usecase) GetLoan(ctx context.Context, loanID uint64) (*LoanDTO, error) {
	l, err := u.loans.GetByID(ctx, loanID)
	if err != nil {
		return nil, mapStorageErr(err)
	}
	return toDTO(l), nil
}

func (u *Usecase) GetLoanCount(ctx context.Context) (int64, error) {
	return u.loans.Count(ctx)
}

func (u *Usecase) ListLoans(ctx context.Context) ([]LoanDTO, error) {
	records, err := u.loans.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return toDTOs(records), nil
}

// QueryByParticipant returns every loan the address appears on, with the
// side it holds (the original terminal app rendered exactly this view).
func (u *Usecase) QueryByParticipant(ctx context.Context, address string) ([]ParticipantLoanDTO, error) {
	if address == "" {
		return nil, fmt.Errorf("%w: participant address is required", loanDomain.ErrInvalidParameters)
	}
	records, err := u.loans.ListByParticipant(ctx, address)
	if err != nil {
		return nil, err
	}
	out := make([]ParticipantLoanDTO, 0, len(records))
	for i := range records {
		role := RoleLender
		if records[i].Borrower == address {
			role = RoleBorrower
		}
		out = append(out, ParticipantLoanDTO{LoanDTO: *toDTO(&records[i]), Role: role})
	}
	return out, nil
}

// QueryByStatus lists loans in the given status. A non-empty exclude drops
// loans requested by that address; a lender browsing open requests passes
// their own address so they never fund themselves.
func (u *Usecase) QueryByStatus(ctx context.Context, status, exclude string) ([]LoanDTO, error) {
	s, err := loanDomain.ParseStatus(status)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown status %q", loanDomain.ErrInvalidParameters, status)
	}
	records, err := u.loans.ListByStatus(ctx, s)
	if err != nil {
		return nil, err
	}
	out := make([]LoanDTO, 0, len(records))
	for i := range records {
		if exclude != "" && records[i].Borrower == exclude {
			continue
		}
		out = append(out, *toDTO(&records[i]))
	}
	return out, nil
}

// History returns the ordered event trail for a loan. The loan must exist;
// a loan with only its creation event yields that single entry.
func (u *Usecase) History(ctx context.Context, loanID uint64) ([]EventDTO, error) {
	if _, err := u.loans.GetByID(ctx, loanID); err != nil {
		return nil, mapStorageErr(err)
	}
	events, err := u.events.ListByLoanID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	out := make([]EventDTO, 0, len(events))
	for i := range events {
		out = append(out, toEventDTO(&events[i]))
	}
	return out, nil
}

// ---- helpers ----

func (u *Usecase) appendEvent(ctx context.Context, r uow.Repos, l *loanDomain.LoanRecord, kind eventDomain.Kind, actor string) (*eventDomain.LedgerEvent, error) {
	ev := &eventDomain.LedgerEvent{
		EventID:         id.NewID32(),
		LoanID:          l.ID,
		Kind:            kind,
		Actor:           actor,
		ResultingStatus: l.Status,
		CreatedAt:       u.now(),
	}
	if err := r.Events.Append(ctx, ev); err != nil {
		return nil, err
	}
	return ev, nil
}

// emit publishes a post-commit notification. Best-effort: the event row is
// the durable record, so a publish failure is logged, not surfaced.
func (u *Usecase) emit(ev *eventDomain.LedgerEvent) {
	if u.notifier == nil || ev == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	m := notify.Message{
		ID:              uuid.NewString(),
		EventID:         ev.EventID,
		LoanID:          ev.LoanID,
		Kind:            ev.Kind,
		Actor:           ev.Actor,
		ResultingStatus: ev.ResultingStatus,
		OccurredAt:      ev.CreatedAt,
	}
	if err := u.notifier.Publish(ctx, m); err != nil {
		log.Printf("notify: publish event %s: %v", ev.EventID, err)
	}
}

func mapStorageErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return loanDomain.ErrNotFound
	}
	return err
}
