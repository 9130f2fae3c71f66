package uow

import (
	"context"

	"creditnexus/internal/domain/loan"
	"creditnexus/internal/domain/participant"
)

type Repos struct {
	Participants participant.Repository
	Loans        loan.Repository
}

type UnitOfWork interface {
	// Returning an error from fn rolls every write back.
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// convenience: lock the loan first, then pass it in
	WithinLoanTx(ctx context.Context, loanID uint64, fn func(r Repos, l *loan.Loan) error) error
}
