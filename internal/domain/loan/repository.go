package loan

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, l *Loan) error
	Save(ctx context.Context, l *Loan) error
	GetByID(ctx context.Context, id uint64) (*Loan, error)
	// Row-locks the loan for the rest of the transaction.
	GetByIDForUpdate(ctx context.Context, id uint64) (*Loan, error)
	List(ctx context.Context) ([]Loan, error)
	// Loans where the participant is borrower or co-borrower.
	ListByParticipant(ctx context.Context, participantID uint64) ([]Loan, error)
	// Active loans with due_at strictly before now, locked for update.
	ListPastDueForUpdate(ctx context.Context, now time.Time) ([]Loan, error)
	// Active and overdue loans, oldest first, locked for update.
	ListOpenForUpdate(ctx context.Context) ([]Loan, error)

	RecordPayment(ctx context.Context, p *Payment) error
	// Reports whether a transfer hash has already been accounted for.
	PaymentRecorded(ctx context.Context, txHash string) (bool, error)
}
