package gormrepo

import (
	"context"
	"errors"
	"time"

	loanDomain "creditnexus/internal/domain/loan"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LoanRepository struct{ db *gorm.DB }

func NewLoanRepository(db *gorm.DB) *LoanRepository { return &LoanRepository{db: db} }

func (r *LoanRepository) Create(ctx context.Context, l *loanDomain.Loan) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *LoanRepository) Save(ctx context.Context, l *loanDomain.Loan) error {
	return r.db.WithContext(ctx).Save(l).Error
}

func (r *LoanRepository) GetByID(ctx context.Context, id uint64) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	res := r.db.WithContext(ctx).Where("id = ?", id).First(&out)
	return loanOrNotFound(&out, res.Error)
}

func (r *LoanRepository) GetByIDForUpdate(ctx context.Context, id uint64) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&out)
	return loanOrNotFound(&out, res.Error)
}

func (r *LoanRepository) List(ctx context.Context) ([]loanDomain.Loan, error) {
	var out []loanDomain.Loan
	err := r.db.WithContext(ctx).Order("id ASC").Find(&out).Error
	return out, err
}

func (r *LoanRepository) ListByParticipant(ctx context.Context, participantID uint64) ([]loanDomain.Loan, error) {
	var out []loanDomain.Loan
	err := r.db.WithContext(ctx).
		Where("borrower_id = ? OR co_borrower_id = ?", participantID, participantID).
		Order("id ASC").
		Find(&out).Error
	return out, err
}

func (r *LoanRepository) ListPastDueForUpdate(ctx context.Context, now time.Time) ([]loanDomain.Loan, error) {
	var out []loanDomain.Loan
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("status = ? AND due_at < ?", loanDomain.StatusActive, now).
		Order("id ASC").
		Find(&out).Error
	return out, err
}

func (r *LoanRepository) ListOpenForUpdate(ctx context.Context) ([]loanDomain.Loan, error) {
	var out []loanDomain.Loan
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("status IN ?", []loanDomain.Status{loanDomain.StatusActive, loanDomain.StatusOverdue}).
		Order("id ASC").
		Find(&out).Error
	return out, err
}

func (r *LoanRepository) RecordPayment(ctx context.Context, p *loanDomain.Payment) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *LoanRepository) PaymentRecorded(ctx context.Context, txHash string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&loanDomain.Payment{}).Where("tx_hash = ?", txHash).Count(&n).Error
	return n > 0, err
}

func loanOrNotFound(l *loanDomain.Loan, err error) (*loanDomain.Loan, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, loanDomain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}
