package gormrepo

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	loanDomain "creditnexus/internal/domain/loan"
	participantDomain "creditnexus/internal/domain/participant"
	"creditnexus/internal/domain/transfer"
	"creditnexus/internal/infrastructure/db"
	"creditnexus/pkg/id"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// openTestDB creates an in-memory sqlite DB with the ledger schema.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := db.OpenSQLite(":memory:", logger.Silent)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.ResetSchema(gdb, Models()...); err != nil {
		t.Fatalf("reset schema: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return gdb
}

func seedParticipant(t *testing.T, gdb *gorm.DB) *participantDomain.Participant {
	t.Helper()
	p := participantDomain.New(transfer.Credential{Address: id.NewAddress(), Secret: id.NewSecret()})
	if err := NewParticipantRepository(gdb).Create(context.Background(), p); err != nil {
		t.Fatalf("create participant: %v", err)
	}
	return p
}

func makeLoan(t *testing.T, borrowerID uint64, coBorrowerID *uint64, principal int64, issuedAt time.Time, term time.Duration) *loanDomain.Loan {
	t.Helper()
	l, err := loanDomain.New(borrowerID, coBorrowerID, decimal.NewFromInt(principal), issuedAt, term)
	if err != nil {
		t.Fatalf("new loan: %v", err)
	}
	return l
}
