package participant

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"creditnexus/internal/domain/event"
	domainLoan "creditnexus/internal/domain/loan"
	domain "creditnexus/internal/domain/participant"
	"creditnexus/internal/domain/transfer"
	"creditnexus/internal/infrastructure/metrics"
)

type Network interface {
	transfer.Funder
	transfer.BalanceReader
}

type Usecase struct {
	repo    domain.Repository
	loans   domainLoan.Repository
	net     Network
	funding decimal.Decimal
	events  event.Publisher
	metrics *metrics.Ledger
	log     *slog.Logger
	now     func() time.Time
}

type Deps struct {
	Participants domain.Repository
	Loans        domainLoan.Repository
	Network      Network
	Events       event.Publisher
	Metrics      *metrics.Ledger
	Log          *slog.Logger
	Now          func() time.Time
}

func NewUsecase(d Deps, funding decimal.Decimal) *Usecase {
	u := &Usecase{
		repo: d.Participants, loans: d.Loans, net: d.Network, funding: funding,
		events: d.Events, metrics: d.Metrics, log: d.Log, now: d.Now,
	}
	if u.events == nil {
		u.events = event.Nop{}
	}
	if u.log == nil {
		u.log = slog.Default()
	}
	if u.now == nil {
		u.now = func() time.Time { return time.Now().UTC() }
	}
	return u
}

// Onboard funds a fresh account on the network, then registers it with the
// default credit score. A failed funding step registers nothing.
func (u *Usecase) Onboard(ctx context.Context) (*OnboardedDTO, error) {
	cred, err := u.net.Fund(ctx, u.funding)
	if err != nil {
		u.metrics.Failed("onboard")
		return nil, fmt.Errorf("%w: fund participant: %w", transfer.ErrTransferFailed, err)
	}

	p := domain.New(cred)
	if err := u.repo.Create(ctx, p); err != nil {
		u.metrics.Failed("onboard")
		u.log.Error("onboard: funded account left unregistered", "address", cred.Address, "err", err)
		return nil, err
	}

	u.metrics.Onboarded()
	u.log.Info("participant onboarded", "participant_id", p.ID, "address", p.Address)
	u.publish(ctx, event.Event{
		Type:          event.ParticipantOnboarded,
		ParticipantID: p.ID,
		CreditScore:   p.CreditScore,
		OccurredAt:    u.now(),
	})

	return &OnboardedDTO{ParticipantDTO: u.toDTO(ctx, p, nil), Secret: p.Secret}, nil
}

func (u *Usecase) Get(ctx context.Context, id uint64) (*ParticipantDTO, error) {
	p, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	loans, err := u.loans.ListByParticipant(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := u.toDTO(ctx, p, loanIDs(loans))
	return &dto, nil
}

func (u *Usecase) List(ctx context.Context) ([]ParticipantDTO, error) {
	ps, err := u.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	all, err := u.loans.List(ctx)
	if err != nil {
		return nil, err
	}
	byParticipant := map[uint64][]uint64{}
	for _, l := range all {
		for _, pid := range l.Obligors() {
			byParticipant[pid] = append(byParticipant[pid], l.ID)
		}
	}

	out := make([]ParticipantDTO, 0, len(ps))
	for i := range ps {
		out = append(out, u.toDTO(ctx, &ps[i], byParticipant[ps[i].ID]))
	}
	return out, nil
}

func (u *Usecase) toDTO(ctx context.Context, p *domain.Participant, loans []uint64) ParticipantDTO {
	if loans == nil {
		loans = []uint64{}
	}
	dto := ParticipantDTO{
		ID:                p.ID,
		Address:           p.Address,
		CreditScore:       p.CreditScore,
		Loans:             loans,
		TotalBorrowed:     p.TotalBorrowed,
		TotalRepaid:       p.TotalRepaid,
		LastRepaymentTime: p.LastRepaymentTime,
		CreatedAt:         p.CreatedAt,
	}
	if bal, err := u.net.Balance(ctx, p.Address); err == nil {
		dto.Balance = &bal
	}
	return dto
}

func (u *Usecase) publish(ctx context.Context, events ...event.Event) {
	if err := u.events.Publish(ctx, events...); err != nil {
		u.log.Warn("publish events", "err", err)
	}
}

func loanIDs(ls []domainLoan.Loan) []uint64 {
	out := make([]uint64, 0, len(ls))
	for _, l := range ls {
		out = append(out, l.ID)
	}
	return out
}
