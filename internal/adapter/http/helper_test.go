package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"gorm.io/gorm/logger"

	"creditnexus/internal/adapter/repository/gormrepo"
	"creditnexus/internal/infrastructure/db"
	"creditnexus/internal/infrastructure/metrics"
	"creditnexus/internal/infrastructure/simnet"
	"creditnexus/internal/usecase/bank"
	"creditnexus/internal/usecase/loan"
	"creditnexus/internal/usecase/participant"
)

func containsFieldMsg(list []FieldError, field, substr string) bool {
	for _, e := range list {
		if e.Field == field && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

func mustJSON(v any) *bytes.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

type api struct {
	e    *echo.Echo
	now  time.Time
	net  *simnet.Network
	bank *bank.Usecase
}

// newAPI serves the full stack over in-memory sqlite and the simulated
// network. The loan clock is fixed at api.now.
func newAPI(t *testing.T) *api {
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

	a := &api{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	net := simnet.New(simnet.Options{Now: func() time.Time { return a.now }})
	m := metrics.New()
	participants := gormrepo.NewParticipantRepository(gdb)
	loans := gormrepo.NewLoanRepository(gdb)

	bankUC := bank.NewUsecase(net, decimal.NewFromInt(1_000_000), log)
	participantUC := participant.NewUsecase(participant.Deps{
		Participants: participants, Loans: loans, Network: net, Metrics: m, Log: log,
	}, decimal.NewFromInt(10_000))
	loanUC := loan.NewUsecase(loan.Deps{
		UoW: gormrepo.NewGormUoW(gdb), Loans: loans, Participants: participants,
		Transfers: net, History: net, Bank: bankUC, Metrics: m, Log: log,
	}, loan.Options{Now: func() time.Time { return a.now }})

	a.net, a.bank = net, bankUC
	a.e = echo.New()
	a.e.Validator = NewValidator()
	a.e.Use(RequestLogger(log))
	Register(a.e, Handlers{
		Health:       NewHandler(bankUC),
		Bank:         NewBankHandler(bankUC),
		Participants: NewParticipantHandler(participantUC, loanUC),
		Loans:        NewLoanHandler(loanUC),
		Metrics:      m.Handler(),
	})
	return a
}

func (a *api) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		r = mustJSON(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func (a *api) decode(t *testing.T, rec *httptest.ResponseRecorder, wantCode int, out any) {
	t.Helper()
	if rec.Code != wantCode {
		t.Fatalf("status = %d, want %d; body=%s", rec.Code, wantCode, rec.Body.String())
	}
	if out == nil {
		return
	}
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("bad json: %v; body=%s", err, rec.Body.String())
	}
}

func (a *api) initBank(t *testing.T) {
	t.Helper()
	a.decode(t, a.do(t, stdhttp.MethodPost, "/bank", nil), stdhttp.StatusCreated, nil)
}

func (a *api) onboard(t *testing.T) participant.OnboardedDTO {
	t.Helper()
	var out participant.OnboardedDTO
	a.decode(t, a.do(t, stdhttp.MethodPost, "/participants", nil), stdhttp.StatusCreated, &out)
	return out
}
