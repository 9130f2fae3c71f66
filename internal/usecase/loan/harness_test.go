package loan

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm/logger"

	"creditnexus/internal/adapter/repository/gormrepo"
	"creditnexus/internal/domain/event"
	domainParticipant "creditnexus/internal/domain/participant"
	"creditnexus/internal/infrastructure/db"
	"creditnexus/internal/infrastructure/metrics"
	"creditnexus/internal/infrastructure/simnet"
	bankUC "creditnexus/internal/usecase/bank"
	participantUC "creditnexus/internal/usecase/participant"
)

var (
	t0               = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	bankFunding      = decimal.NewFromInt(1_000_000)
	borrowerFunding  = decimal.NewFromInt(10_000)
	quietLog         = slog.New(slog.NewTextHandler(io.Discard, nil))
	defaultLoanTerm  = 10 * time.Minute
	defaultPrincipal = decimal.NewFromInt(1000)
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recorder struct {
	mu     sync.Mutex
	events []event.Event
}

func (r *recorder) Publish(_ context.Context, events ...event.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, events...)
	return nil
}

func (r *recorder) types() []event.Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]event.Type, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type harness struct {
	uc           *Usecase
	net          *simnet.Network
	bank         *bankUC.Usecase
	onboarding   *participantUC.Usecase
	participants *gormrepo.ParticipantRepository
	loans        *gormrepo.LoanRepository
	clock        *clock
	metrics      *metrics.Ledger
	events       *recorder
}

// newHarness wires the usecase to in-memory sqlite and the simulated network,
// with an initialized bank.
func newHarness(t *testing.T, opts Options) *harness {
	t.Helper()
	return newHarnessFunded(t, opts, bankFunding)
}

func newHarnessFunded(t *testing.T, opts Options, funding decimal.Decimal) *harness {
	t.Helper()
	gdb, err := db.OpenSQLite(":memory:", logger.Silent)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.ResetSchema(gdb, gormrepo.Models()...); err != nil {
		t.Fatalf("reset schema: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})

	clk := &clock{now: t0}
	h := &harness{
		net:          simnet.New(simnet.Options{Now: clk.Now}),
		participants: gormrepo.NewParticipantRepository(gdb),
		loans:        gormrepo.NewLoanRepository(gdb),
		clock:        clk,
		metrics:      metrics.New(),
		events:       &recorder{},
	}
	h.bank = bankUC.NewUsecase(h.net, funding, quietLog)
	if _, _, err := h.bank.Initialize(context.Background()); err != nil {
		t.Fatalf("bank init: %v", err)
	}
	h.onboarding = participantUC.NewUsecase(participantUC.Deps{
		Participants: h.participants,
		Loans:        h.loans,
		Network:      h.net,
		Log:          quietLog,
		Now:          h.clock.Now,
	}, borrowerFunding)

	opts.Now = h.clock.Now
	h.uc = NewUsecase(Deps{
		UoW:          gormrepo.NewGormUoW(gdb),
		Loans:        h.loans,
		Participants: h.participants,
		Transfers:    h.net,
		History:      h.net,
		Bank:         h.bank,
		Events:       h.events,
		Metrics:      h.metrics,
		Log:          quietLog,
	}, opts)
	return h
}

func (h *harness) onboard(t *testing.T) *domainParticipant.Participant {
	t.Helper()
	dto, err := h.onboarding.Onboard(context.Background())
	if err != nil {
		t.Fatalf("onboard: %v", err)
	}
	return h.participant(t, dto.ID)
}

func (h *harness) participant(t *testing.T, id uint64) *domainParticipant.Participant {
	t.Helper()
	p, err := h.participants.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("get participant %d: %v", id, err)
	}
	return p
}

func (h *harness) setScore(t *testing.T, id uint64, score int) {
	t.Helper()
	p := h.participant(t, id)
	p.CreditScore = score
	if err := h.participants.Save(context.Background(), p); err != nil {
		t.Fatalf("save participant: %v", err)
	}
}

func (h *harness) balance(t *testing.T, address string) decimal.Decimal {
	t.Helper()
	bal, err := h.net.Balance(context.Background(), address)
	if err != nil {
		t.Fatalf("balance %s: %v", address, err)
	}
	return bal
}

func (h *harness) bankBalance(t *testing.T) decimal.Decimal {
	t.Helper()
	cred, err := h.bank.Credential()
	if err != nil {
		t.Fatalf("bank credential: %v", err)
	}
	return h.balance(t, cred.Address)
}

func (h *harness) issue(t *testing.T, borrowerID uint64, principal decimal.Decimal, term time.Duration) *LoanDTO {
	t.Helper()
	dto, err := h.uc.Issue(context.Background(), IssueLoanInput{BorrowerID: borrowerID, Principal: principal, Term: term})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	return dto
}

// payBank sends amount from the participant straight to the bank, bypassing
// the ledger.
func (h *harness) payBank(t *testing.T, p *domainParticipant.Participant, amount decimal.Decimal) {
	t.Helper()
	bank, err := h.bank.Credential()
	if err != nil {
		t.Fatalf("bank credential: %v", err)
	}
	if _, err := h.net.Transfer(context.Background(), p.Credential(), bank, amount); err != nil {
		t.Fatalf("pay bank: %v", err)
	}
}

func mustEqualDecimal(t *testing.T, what string, got, want decimal.Decimal) {
	t.Helper()
	if !got.Equal(want) {
		t.Fatalf("%s = %s, want %s", what, got, want)
	}
}
