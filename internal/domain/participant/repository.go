package participant

import "context"

type Repository interface {
	Create(ctx context.Context, p *Participant) error
	Save(ctx context.Context, p *Participant) error
	GetByID(ctx context.Context, id uint64) (*Participant, error)
	// Row-locks the participant for the rest of the transaction.
	GetByIDForUpdate(ctx context.Context, id uint64) (*Participant, error)
	List(ctx context.Context) ([]Participant, error)
}
