package participant

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"

	domainLoan "creditnexus/internal/domain/loan"
	domain "creditnexus/internal/domain/participant"
	"creditnexus/internal/domain/transfer"
	"creditnexus/internal/infrastructure/metrics"
	"creditnexus/internal/infrastructure/simnet"
	"creditnexus/internal/testutil/loanmock"
	"creditnexus/internal/testutil/participantmock"
	"creditnexus/internal/testutil/transfermock"
)

var quietLog = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestOnboard_FundsThenRegisters(t *testing.T) {
	ctx := context.Background()
	net := simnet.New(simnet.Options{})
	m := metrics.New()

	var created *domain.Participant
	repo := &participantmock.Repo{
		CreateFn: func(_ context.Context, p *domain.Participant) error {
			p.ID = 1
			created = p
			return nil
		},
	}
	u := NewUsecase(Deps{Participants: repo, Loans: &loanmock.Repo{}, Network: net, Metrics: m, Log: quietLog}, decimal.NewFromInt(10_000))

	out, err := u.Onboard(ctx)
	if err != nil {
		t.Fatalf("Onboard: %v", err)
	}
	if created == nil || out.ID != 1 || out.Secret == "" || out.Address != created.Address {
		t.Fatalf("unexpected onboarding: %+v", out)
	}
	if out.CreditScore != 500 || len(out.Loans) != 0 {
		t.Fatalf("fresh participant: %+v", out)
	}
	if out.Balance == nil || !out.Balance.Equal(decimal.NewFromInt(10_000)) {
		t.Fatalf("balance = %v", out.Balance)
	}
	if got := testutil.ToFloat64(m.ParticipantsOnboarded); got != 1 {
		t.Fatalf("onboarded metric = %v", got)
	}
}

func TestOnboard_FundingFailureRegistersNothing(t *testing.T) {
	net := &transfermock.Network{
		FundFn: func(context.Context, decimal.Decimal) (transfer.Credential, error) {
			return transfer.Credential{}, errors.New("faucet down")
		},
	}
	repo := &participantmock.Repo{
		CreateFn: func(context.Context, *domain.Participant) error {
			t.Fatalf("Create must not run when funding fails")
			return nil
		},
	}
	u := NewUsecase(Deps{Participants: repo, Network: net, Log: quietLog}, decimal.NewFromInt(1))

	if _, err := u.Onboard(context.Background()); !errors.Is(err, transfer.ErrTransferFailed) {
		t.Fatalf("want ErrTransferFailed, got %v", err)
	}
}

func TestGet_IncludesLoans(t *testing.T) {
	last := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	repo := &participantmock.Repo{
		GetByIDFn: func(_ context.Context, id uint64) (*domain.Participant, error) {
			if id != 4 {
				return nil, domain.ErrNotFound
			}
			return &domain.Participant{ID: 4, Address: "rX", CreditScore: 545, LastRepaymentTime: &last}, nil
		},
	}
	loans := &loanmock.Repo{
		ListByParticipantFn: func(_ context.Context, id uint64) ([]domainLoan.Loan, error) {
			return []domainLoan.Loan{{ID: 10}, {ID: 12}}, nil
		},
	}
	net := &transfermock.Network{
		BalanceFn: func(context.Context, string) (decimal.Decimal, error) { return decimal.NewFromInt(7), nil },
	}
	u := NewUsecase(Deps{Participants: repo, Loans: loans, Network: net, Log: quietLog}, decimal.Zero)

	got, err := u.Get(context.Background(), 4)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.CreditScore != 545 || len(got.Loans) != 2 || got.Loans[1] != 12 || got.LastRepaymentTime == nil {
		t.Fatalf("unexpected dto: %+v", got)
	}
	if _, err := u.Get(context.Background(), 5); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestList_GroupsLoansByObligor(t *testing.T) {
	co := uint64(2)
	repo := &participantmock.Repo{
		ListFn: func(context.Context) ([]domain.Participant, error) {
			return []domain.Participant{{ID: 1}, {ID: 2}, {ID: 3}}, nil
		},
	}
	loans := &loanmock.Repo{
		ListFn: func(context.Context) ([]domainLoan.Loan, error) {
			return []domainLoan.Loan{
				{ID: 10, BorrowerID: 1, CoBorrowerID: &co},
				{ID: 11, BorrowerID: 2},
			}, nil
		},
	}
	net := &transfermock.Network{} // balances unavailable
	u := NewUsecase(Deps{Participants: repo, Loans: loans, Network: net, Log: quietLog}, decimal.Zero)

	got, err := u.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("want 3 participants, got %d", len(got))
	}
	if len(got[0].Loans) != 1 || len(got[1].Loans) != 2 || len(got[2].Loans) != 0 {
		t.Fatalf("unexpected grouping: %+v", got)
	}
	if got[2].Loans == nil || got[0].Balance != nil {
		t.Fatalf("empty loans must be non-nil and missing balances omitted: %+v", got)
	}
}
