package loan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"creditnexus/internal/domain/credit"
	"creditnexus/internal/domain/event"
	domain "creditnexus/internal/domain/loan"
	domainParticipant "creditnexus/internal/domain/participant"
	"creditnexus/internal/domain/transfer"
	"creditnexus/internal/domain/uow"
	"creditnexus/internal/infrastructure/metrics"
)

var (
	ErrSelfCoBorrower      = errors.New("co-borrower must differ from borrower")
	ErrRepaymentBeforeLoan = errors.New("repayment time is before loan issuance")
	ErrHistoryUnavailable  = errors.New("transfer history is not available")
)

// Bank yields the account loans are disbursed from and repaid into.
type Bank interface {
	Credential() (transfer.Credential, error)
}

type Deps struct {
	UoW          uow.UnitOfWork
	Loans        domain.Repository
	Participants domainParticipant.Repository
	Transfers    transfer.Service
	// History is optional; without it Reconcile fails.
	History transfer.HistoryReader
	Bank    Bank
	Events  event.Publisher
	Metrics *metrics.Ledger
	Log     *slog.Logger
}

type Options struct {
	MinBorrowerScore int
	Overpayment      domain.OverpaymentPolicy
	Now              func() time.Time
}

type Usecase struct {
	uow          uow.UnitOfWork
	repo         domain.Repository
	participants domainParticipant.Repository
	net          transfer.Service
	history      transfer.HistoryReader
	bank         Bank
	events       event.Publisher
	metrics      *metrics.Ledger
	log          *slog.Logger
	opts         Options
}

func NewUsecase(d Deps, opts Options) *Usecase {
	if opts.MinBorrowerScore == 0 {
		opts.MinBorrowerScore = credit.MinScore
	}
	if !opts.Overpayment.Valid() {
		opts.Overpayment = domain.OverpaymentAccept
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	u := &Usecase{
		uow: d.UoW, repo: d.Loans, participants: d.Participants, net: d.Transfers,
		history: d.History, bank: d.Bank, events: d.Events, metrics: d.Metrics, log: d.Log, opts: opts,
	}
	if u.events == nil {
		u.events = event.Nop{}
	}
	if u.log == nil {
		u.log = slog.Default()
	}
	return u
}

// Issue disburses the principal from the bank to the borrower and records
// the loan. Nothing is recorded unless the transfer succeeds.
func (u *Usecase) Issue(ctx context.Context, in IssueLoanInput) (*LoanDTO, error) {
	dto, err := u.issue(ctx, in)
	if err != nil {
		u.metrics.Failed("issue_loan")
	}
	return dto, err
}

func (u *Usecase) issue(ctx context.Context, in IssueLoanInput) (*LoanDTO, error) {
	if !in.Principal.IsPositive() || in.Term <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	if in.CoBorrowerID != nil && *in.CoBorrowerID == in.BorrowerID {
		return nil, ErrSelfCoBorrower
	}
	bankCred, err := u.bank.Credential()
	if err != nil {
		return nil, err
	}

	var (
		l         *domain.Loan
		borrower  *domainParticipant.Participant
		disbursed *transfer.Receipt
	)
	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		parties, err := lockParticipants(ctx, r.Participants, in.BorrowerID, in.CoBorrowerID)
		if err != nil {
			return err
		}
		for _, p := range parties {
			if !credit.Eligible(p.CreditScore, u.opts.MinBorrowerScore) {
				return fmt.Errorf("%w: participant #%d has %d, needs %d",
					credit.ErrScoreTooLow, p.ID, p.CreditScore, u.opts.MinBorrowerScore)
			}
		}
		borrower = parties[in.BorrowerID]

		rcpt, err := u.net.Transfer(ctx, bankCred, borrower.Credential(), in.Principal)
		if err != nil {
			return fmt.Errorf("%w: disburse: %w", transfer.ErrTransferFailed, err)
		}
		disbursed = rcpt

		l, err = domain.New(in.BorrowerID, in.CoBorrowerID, in.Principal, u.opts.Now(), in.Term)
		if err != nil {
			return err
		}
		l.DisbursementTx = rcpt.Hash
		if err := r.Loans.Create(ctx, l); err != nil {
			return err
		}
		for _, p := range parties {
			p.TotalBorrowed = p.TotalBorrowed.Add(in.Principal)
			if err := r.Participants.Save(ctx, p); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if disbursed != nil {
			u.reverse(ctx, borrower.Credential(), bankCred, disbursed)
		}
		return nil, err
	}

	principal, _ := l.Principal.Float64()
	u.metrics.Issued(principal)
	u.log.Info("loan issued",
		"loan_id", l.ID, "borrower_id", l.BorrowerID, "principal", l.Principal.String(),
		"due_at", l.DueAt, "tx", l.DisbursementTx)
	u.publish(ctx, event.Event{
		Type:          event.LoanIssued,
		LoanID:        l.ID,
		ParticipantID: l.BorrowerID,
		Amount:        l.Principal.String(),
		TxHash:        l.DisbursementTx,
		OccurredAt:    l.IssuedAt,
	})

	dto := toDTO(l)
	return &dto, nil
}

// Repay moves the payment from the borrower to the bank and records it. A
// payment that closes the loan adjusts the borrower's credit score.
func (u *Usecase) Repay(ctx context.Context, in RepaymentInput) (*RepaymentDTO, error) {
	dto, err := u.repay(ctx, in)
	if err != nil {
		u.metrics.Failed("record_repayment")
	}
	return dto, err
}

func (u *Usecase) repay(ctx context.Context, in RepaymentInput) (*RepaymentDTO, error) {
	if !in.Amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}
	bankCred, err := u.bank.Credential()
	if err != nil {
		return nil, err
	}
	paidAt := u.opts.Now()
	if in.PaidAt != nil {
		paidAt = in.PaidAt.UTC()
	}

	var (
		out      RepaymentDTO
		borrower *domainParticipant.Participant
		paid     *transfer.Receipt
	)
	err = u.uow.WithinLoanTx(ctx, in.LoanID, func(r uow.Repos, l *domain.Loan) error {
		recorded, err := l.Settle(in.Amount, u.opts.Overpayment)
		if err != nil {
			return err
		}
		if paidAt.Before(l.IssuedAt) {
			return ErrRepaymentBeforeLoan
		}
		borrower, err = r.Participants.GetByIDForUpdate(ctx, l.BorrowerID)
		if err != nil {
			return err
		}

		rcpt, err := u.net.Transfer(ctx, borrower.Credential(), bankCred, recorded)
		if err != nil {
			return fmt.Errorf("%w: repay: %w", transfer.ErrTransferFailed, err)
		}
		paid = rcpt

		closed, err := l.ApplyRepayment(recorded, paidAt)
		if err != nil {
			return err
		}
		if err := r.Loans.RecordPayment(ctx, &domain.Payment{
			LoanID: l.ID, TxHash: rcpt.Hash, Amount: recorded, Kind: domain.PaymentDirect, PaidAt: paidAt,
		}); err != nil {
			return err
		}
		borrower.TotalRepaid = borrower.TotalRepaid.Add(recorded)
		out = RepaymentDTO{Recorded: recorded, TxHash: rcpt.Hash, FullyRepaid: closed}
		if closed {
			out.ScoreDelta, out.Outcome = closeForBorrower(borrower, l, paidAt)
		}
		out.CreditScore = borrower.CreditScore

		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		if err := r.Participants.Save(ctx, borrower); err != nil {
			return err
		}
		out.Loan = toDTO(l)
		return nil
	})
	if err != nil {
		if paid != nil {
			u.reverse(ctx, bankCred, borrower.Credential(), paid)
		}
		return nil, err
	}

	u.log.Info("repayment recorded",
		"loan_id", out.Loan.ID, "amount", out.Recorded.String(), "fully_repaid", out.FullyRepaid,
		"score_delta", out.ScoreDelta, "credit_score", out.CreditScore, "tx", out.TxHash)
	u.publish(ctx, u.repaymentEvents(out.Loan.ID, out.Loan.BorrowerID, out.Recorded, out.TxHash, paidAt,
		out.FullyRepaid, out.Outcome, out.ScoreDelta, out.CreditScore)...)
	return &out, nil
}

// Reconcile credits open loans with payments their borrowers sent to the
// bank without going through Repay. Each transfer is credited once, to the
// oldest open loan issued before it; a payment that closes a loan scores it
// like Repay does.
func (u *Usecase) Reconcile(ctx context.Context) (*ReconcileDTO, error) {
	out, err := u.reconcile(ctx)
	if err != nil {
		u.metrics.Failed("reconcile_payments")
	}
	return out, err
}

func (u *Usecase) reconcile(ctx context.Context) (*ReconcileDTO, error) {
	if u.history == nil {
		return nil, ErrHistoryUnavailable
	}
	bankCred, err := u.bank.Credential()
	if err != nil {
		return nil, err
	}

	out := &ReconcileDTO{CheckedAt: u.opts.Now(), Credited: []CreditedPaymentDTO{}}
	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		open, err := r.Loans.ListOpenForUpdate(ctx)
		if err != nil {
			return err
		}
		borrowers := map[uint64]*domainParticipant.Participant{}
		histories := map[uint64][]transfer.Receipt{}
		seen := map[string]bool{}
		touched := map[uint64]bool{}

		for i := range open {
			l := &open[i]
			b, ok := borrowers[l.BorrowerID]
			if !ok {
				if b, err = r.Participants.GetByIDForUpdate(ctx, l.BorrowerID); err != nil {
					return err
				}
				borrowers[l.BorrowerID] = b
			}
			hist, ok := histories[b.ID]
			if !ok {
				if hist, err = u.history.History(ctx, b.Address); err != nil {
					return fmt.Errorf("%w: history: %w", transfer.ErrTransferFailed, err)
				}
				histories[b.ID] = hist
			}

			credited := false
			for _, rcpt := range hist {
				if l.IsRepaid() {
					break
				}
				if rcpt.From != b.Address || rcpt.To != bankCred.Address || !rcpt.At.After(l.IssuedAt) || seen[rcpt.Hash] {
					continue
				}
				seen[rcpt.Hash] = true
				known, err := r.Loans.PaymentRecorded(ctx, rcpt.Hash)
				if err != nil {
					return err
				}
				if known {
					continue
				}

				closed, err := l.ApplyRepayment(rcpt.Amount, rcpt.At)
				if err != nil {
					return err
				}
				if err := r.Loans.RecordPayment(ctx, &domain.Payment{
					LoanID: l.ID, TxHash: rcpt.Hash, Amount: rcpt.Amount, Kind: domain.PaymentReconciled, PaidAt: rcpt.At,
				}); err != nil {
					return err
				}
				b.TotalRepaid = b.TotalRepaid.Add(rcpt.Amount)
				c := CreditedPaymentDTO{
					LoanID: l.ID, BorrowerID: b.ID, TxHash: rcpt.Hash, Amount: rcpt.Amount,
					PaidAt: rcpt.At, FullyRepaid: closed,
				}
				if closed {
					c.ScoreDelta, c.Outcome = closeForBorrower(b, l, rcpt.At)
				}
				c.CreditScore = b.CreditScore
				out.Credited = append(out.Credited, c)
				credited = true
				touched[b.ID] = true
			}
			if credited {
				if err := r.Loans.Save(ctx, l); err != nil {
					return err
				}
			}
		}
		for id := range touched {
			if err := r.Participants.Save(ctx, borrowers[id]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var events []event.Event
	for _, c := range out.Credited {
		u.log.Info("external payment credited",
			"loan_id", c.LoanID, "amount", c.Amount.String(), "fully_repaid", c.FullyRepaid,
			"score_delta", c.ScoreDelta, "credit_score", c.CreditScore, "tx", c.TxHash)
		events = append(events, u.repaymentEvents(c.LoanID, c.BorrowerID, c.Amount, c.TxHash, c.PaidAt,
			c.FullyRepaid, c.Outcome, c.ScoreDelta, c.CreditScore)...)
	}
	if len(events) > 0 {
		u.publish(ctx, events...)
	}
	return out, nil
}

// repaymentEvents counts one recorded payment and returns its events.
func (u *Usecase) repaymentEvents(loanID, borrowerID uint64, amount decimal.Decimal, txHash string, at time.Time,
	closed bool, outcome string, delta, score int) []event.Event {
	kind := "partial"
	if closed {
		kind = outcome
	}
	u.metrics.Repaid(kind, delta, closed)

	events := []event.Event{{
		Type:          event.RepaymentRecorded,
		LoanID:        loanID,
		ParticipantID: borrowerID,
		Amount:        amount.String(),
		TxHash:        txHash,
		OccurredAt:    at,
	}}
	if closed {
		events = append(events, event.Event{
			Type:          event.LoanRepaid,
			LoanID:        loanID,
			ParticipantID: borrowerID,
			CreditScore:   score,
			ScoreDelta:    delta,
			OccurredAt:    at,
		})
	}
	return events
}

// closeForBorrower applies the full-repayment score change to b.
func closeForBorrower(b *domainParticipant.Participant, l *domain.Loan, paidAt time.Time) (int, string) {
	at := paidAt
	b.LastRepaymentTime = &at
	var delta int
	b.CreditScore, delta = credit.ApplyRepayment(b.CreditScore, l.IssuedAt, l.DueAt, paidAt)
	return delta, string(credit.Classify(credit.RepaymentSpeed(l.IssuedAt, l.DueAt, paidAt)))
}

// SweepOverdue moves every active loan past its due time to overdue and
// penalises its borrower. Loans already overdue are left alone, so repeated
// sweeps penalise once.
func (u *Usecase) SweepOverdue(ctx context.Context, now time.Time) (*SweepDTO, error) {
	out := &SweepDTO{SweptAt: now, Overdue: []OverdueDTO{}}
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		due, err := r.Loans.ListPastDueForUpdate(ctx, now)
		if err != nil {
			return err
		}
		borrowers := map[uint64]*domainParticipant.Participant{}
		for i := range due {
			l := &due[i]
			if !l.MarkOverdue(now) {
				continue
			}
			b, ok := borrowers[l.BorrowerID]
			if !ok {
				if b, err = r.Participants.GetByIDForUpdate(ctx, l.BorrowerID); err != nil {
					return err
				}
				borrowers[l.BorrowerID] = b
			}
			b.CreditScore = credit.ApplyOverdue(b.CreditScore)
			if err := r.Loans.Save(ctx, l); err != nil {
				return err
			}
			out.Overdue = append(out.Overdue, OverdueDTO{LoanID: l.ID, BorrowerID: b.ID, CreditScore: b.CreditScore})
		}
		for _, b := range borrowers {
			if err := r.Participants.Save(ctx, b); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		u.metrics.Failed("sweep_overdue")
		return nil, err
	}

	u.metrics.Overdue(len(out.Overdue))
	if len(out.Overdue) == 0 {
		return out, nil
	}
	events := make([]event.Event, 0, len(out.Overdue))
	for _, o := range out.Overdue {
		u.log.Warn("loan overdue", "loan_id", o.LoanID, "borrower_id", o.BorrowerID, "credit_score", o.CreditScore)
		events = append(events, event.Event{
			Type:          event.LoanOverdue,
			LoanID:        o.LoanID,
			ParticipantID: o.BorrowerID,
			CreditScore:   o.CreditScore,
			ScoreDelta:    -credit.OverduePenalty,
			OccurredAt:    now,
		})
	}
	u.publish(ctx, events...)
	return out, nil
}

// SweepNow sweeps as of the usecase clock.
func (u *Usecase) SweepNow(ctx context.Context) (*SweepDTO, error) {
	return u.SweepOverdue(ctx, u.opts.Now())
}

func (u *Usecase) Get(ctx context.Context, id uint64) (*LoanDTO, error) {
	l, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := toDTO(l)
	return &dto, nil
}

func (u *Usecase) List(ctx context.Context) ([]LoanDTO, error) {
	ls, err := u.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return toDTOs(ls), nil
}

func (u *Usecase) ListByParticipant(ctx context.Context, participantID uint64) ([]LoanDTO, error) {
	if _, err := u.participants.GetByID(ctx, participantID); err != nil {
		return nil, err
	}
	ls, err := u.repo.ListByParticipant(ctx, participantID)
	if err != nil {
		return nil, err
	}
	return toDTOs(ls), nil
}

// reverse undoes a transfer whose ledger write did not commit. The reversal
// is recorded so Reconcile never credits it as a repayment.
func (u *Usecase) reverse(ctx context.Context, from, to transfer.Credential, rcpt *transfer.Receipt) {
	ctx = context.WithoutCancel(ctx)
	back, err := u.net.Transfer(ctx, from, to, rcpt.Amount)
	if err != nil {
		u.log.Error("compensating transfer failed; network and ledger disagree",
			"tx", rcpt.Hash, "amount", rcpt.Amount.String(), "err", err)
		return
	}
	u.log.Warn("transfer reversed after ledger write failed", "tx", rcpt.Hash, "reversal_tx", back.Hash)

	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		return r.Loans.RecordPayment(ctx, &domain.Payment{
			TxHash: back.Hash, Amount: back.Amount, Kind: domain.PaymentReversal, PaidAt: back.At,
		})
	})
	if err != nil {
		u.log.Error("record reversal", "reversal_tx", back.Hash, "err", err)
	}
}

func (u *Usecase) publish(ctx context.Context, events ...event.Event) {
	if err := u.events.Publish(ctx, events...); err != nil {
		u.log.Warn("publish events", "err", err)
	}
}

// lockParticipants locks the borrower and optional co-borrower in id order.
func lockParticipants(ctx context.Context, repo domainParticipant.Repository, borrowerID uint64, coBorrowerID *uint64) (map[uint64]*domainParticipant.Participant, error) {
	ids := []uint64{borrowerID}
	if coBorrowerID != nil {
		ids = append(ids, *coBorrowerID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make(map[uint64]*domainParticipant.Participant, len(ids))
	for _, id := range ids {
		p, err := repo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("participant #%d: %w", id, err)
		}
		out[id] = p
	}
	return out, nil
}

func toDTOs(ls []domain.Loan) []LoanDTO {
	out := make([]LoanDTO, 0, len(ls))
	for i := range ls {
		out = append(out, toDTO(&ls[i]))
	}
	return out
}
