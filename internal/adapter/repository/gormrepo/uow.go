package gormrepo

import (
	"context"

	"creditnexus/internal/domain/loan"
	"creditnexus/internal/domain/participant"
	"creditnexus/internal/domain/uow"

	"gorm.io/gorm"
)

type GormUoW struct{ db *gorm.DB }

func NewGormUoW(db *gorm.DB) *GormUoW { return &GormUoW{db: db} }

func (u *GormUoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(reposFor(tx))
	})
}

func (u *GormUoW) WithinLoanTx(ctx context.Context, loanID uint64, fn func(r uow.Repos, l *loan.Loan) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := reposFor(tx)
		// lock the loan row up-front to prevent races
		l, err := r.Loans.GetByIDForUpdate(ctx, loanID)
		if err != nil {
			return err
		}
		return fn(r, l)
	})
}

func reposFor(tx *gorm.DB) uow.Repos {
	return uow.Repos{
		Participants: &ParticipantRepository{db: tx},
		Loans:        &LoanRepository{db: tx},
	}
}

// Models lists every table the ledger owns, in creation order.
func Models() []any {
	return []any{&participant.Participant{}, &loan.Loan{}, &loan.Payment{}}
}
