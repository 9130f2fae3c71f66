package loanmock

import (
	"context"
	"time"

	domain "creditnexus/internal/domain/loan"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Writes default to a nil error; reads default to context.Canceled.
type Repo struct {
	CreateFn               func(ctx context.Context, l *domain.Loan) error
	SaveFn                 func(ctx context.Context, l *domain.Loan) error
	GetByIDFn              func(ctx context.Context, id uint64) (*domain.Loan, error)
	GetByIDForUpdateFn     func(ctx context.Context, id uint64) (*domain.Loan, error)
	ListFn                 func(ctx context.Context) ([]domain.Loan, error)
	ListByParticipantFn    func(ctx context.Context, participantID uint64) ([]domain.Loan, error)
	ListPastDueForUpdateFn func(ctx context.Context, now time.Time) ([]domain.Loan, error)
	ListOpenForUpdateFn    func(ctx context.Context) ([]domain.Loan, error)
	RecordPaymentFn        func(ctx context.Context, p *domain.Payment) error
	PaymentRecordedFn      func(ctx context.Context, txHash string) (bool, error)
}

func (m *Repo) Create(ctx context.Context, l *domain.Loan) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, l)
	}
	return nil
}

func (m *Repo) Save(ctx context.Context, l *domain.Loan) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, l)
	}
	return nil
}

func (m *Repo) GetByID(ctx context.Context, id uint64) (*domain.Loan, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByIDForUpdate(ctx context.Context, id uint64) (*domain.Loan, error) {
	if m.GetByIDForUpdateFn != nil {
		return m.GetByIDForUpdateFn(ctx, id)
	}
	return nil, context.Canceled
}

func (m *Repo) List(ctx context.Context) ([]domain.Loan, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx)
	}
	return nil, context.Canceled
}

func (m *Repo) ListByParticipant(ctx context.Context, participantID uint64) ([]domain.Loan, error) {
	if m.ListByParticipantFn != nil {
		return m.ListByParticipantFn(ctx, participantID)
	}
	return nil, context.Canceled
}

func (m *Repo) ListPastDueForUpdate(ctx context.Context, now time.Time) ([]domain.Loan, error) {
	if m.ListPastDueForUpdateFn != nil {
		return m.ListPastDueForUpdateFn(ctx, now)
	}
	return nil, context.Canceled
}

func (m *Repo) ListOpenForUpdate(ctx context.Context) ([]domain.Loan, error) {
	if m.ListOpenForUpdateFn != nil {
		return m.ListOpenForUpdateFn(ctx)
	}
	return nil, context.Canceled
}

func (m *Repo) RecordPayment(ctx context.Context, p *domain.Payment) error {
	if m.RecordPaymentFn != nil {
		return m.RecordPaymentFn(ctx, p)
	}
	return nil
}

func (m *Repo) PaymentRecorded(ctx context.Context, txHash string) (bool, error) {
	if m.PaymentRecordedFn != nil {
		return m.PaymentRecordedFn(ctx, txHash)
	}
	return false, context.Canceled
}
