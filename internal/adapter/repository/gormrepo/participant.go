package gormrepo

import (
	"context"
	"errors"

	participantDomain "creditnexus/internal/domain/participant"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ParticipantRepository struct{ db *gorm.DB }

func NewParticipantRepository(db *gorm.DB) *ParticipantRepository {
	return &ParticipantRepository{db: db}
}

func (r *ParticipantRepository) Create(ctx context.Context, p *participantDomain.Participant) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *ParticipantRepository) Save(ctx context.Context, p *participantDomain.Participant) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *ParticipantRepository) GetByID(ctx context.Context, id uint64) (*participantDomain.Participant, error) {
	var out participantDomain.Participant
	res := r.db.WithContext(ctx).Where("id = ?", id).First(&out)
	return participantOrNotFound(&out, res.Error)
}

func (r *ParticipantRepository) GetByIDForUpdate(ctx context.Context, id uint64) (*participantDomain.Participant, error) {
	var out participantDomain.Participant
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&out)
	return participantOrNotFound(&out, res.Error)
}

func (r *ParticipantRepository) List(ctx context.Context) ([]participantDomain.Participant, error) {
	var out []participantDomain.Participant
	err := r.db.WithContext(ctx).Order("id ASC").Find(&out).Error
	return out, err
}

func participantOrNotFound(p *participantDomain.Participant, err error) (*participantDomain.Participant, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, participantDomain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}
