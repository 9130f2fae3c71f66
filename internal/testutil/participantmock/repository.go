package participantmock

import (
	"context"

	domain "creditnexus/internal/domain/participant"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	CreateFn           func(ctx context.Context, p *domain.Participant) error
	SaveFn             func(ctx context.Context, p *domain.Participant) error
	GetByIDFn          func(ctx context.Context, id uint64) (*domain.Participant, error)
	GetByIDForUpdateFn func(ctx context.Context, id uint64) (*domain.Participant, error)
	ListFn             func(ctx context.Context) ([]domain.Participant, error)
}

func (m *Repo) Create(ctx context.Context, p *domain.Participant) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, p)
	}
	return nil
}

func (m *Repo) Save(ctx context.Context, p *domain.Participant) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, p)
	}
	return nil
}

func (m *Repo) GetByID(ctx context.Context, id uint64) (*domain.Participant, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByIDForUpdate(ctx context.Context, id uint64) (*domain.Participant, error) {
	if m.GetByIDForUpdateFn != nil {
		return m.GetByIDForUpdateFn(ctx, id)
	}
	return nil, context.Canceled
}

func (m *Repo) List(ctx context.Context) ([]domain.Participant, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx)
	}
	return nil, context.Canceled
}
