package event

import (
	"context"
	"time"
)

type Type string

const (
	ParticipantOnboarded Type = "participant.onboarded"
	LoanIssued           Type = "loan.issued"
	RepaymentRecorded    Type = "loan.repayment_recorded"
	LoanRepaid           Type = "loan.repaid"
	LoanOverdue          Type = "loan.overdue"
)

type Event struct {
	// ID is assigned on publish when empty.
	ID            string    `json:"id,omitempty"`
	Type          Type      `json:"type"`
	LoanID        uint64    `json:"loan_id,omitempty"`
	ParticipantID uint64    `json:"participant_id,omitempty"`
	Amount        string    `json:"amount,omitempty"`
	CreditScore   int       `json:"credit_score,omitempty"`
	ScoreDelta    int       `json:"score_delta,omitempty"`
	TxHash        string    `json:"tx_hash,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, events ...Event) error
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, ...Event) error { return nil }
