package loan

import (
	"time"

	"github.com/shopspring/decimal"

	domain "creditnexus/internal/domain/loan"
)

type IssueLoanInput struct {
	BorrowerID   uint64
	CoBorrowerID *uint64
	Principal    decimal.Decimal
	Term         time.Duration
}

type RepaymentInput struct {
	LoanID uint64
	Amount decimal.Decimal
	// PaidAt defaults to now.
	PaidAt *time.Time
}

type LoanDTO struct {
	ID             uint64          `json:"id"`
	BorrowerID     uint64          `json:"borrower_id"`
	CoBorrowerID   *uint64         `json:"co_borrower_id,omitempty"`
	Principal      decimal.Decimal `json:"principal"`
	RepaidAmount   decimal.Decimal `json:"repaid_amount"`
	Outstanding    decimal.Decimal `json:"outstanding"`
	Status         string          `json:"status"`
	IssuedAt       time.Time       `json:"issued_at"`
	DueAt          time.Time       `json:"due_at"`
	RepaidAt       *time.Time      `json:"repaid_at,omitempty"`
	DisbursementTx string          `json:"disbursement_tx,omitempty"`
}

type RepaymentDTO struct {
	Loan        LoanDTO         `json:"loan"`
	Recorded    decimal.Decimal `json:"recorded"`
	TxHash      string          `json:"tx_hash"`
	FullyRepaid bool            `json:"fully_repaid"`
	// Set on full repayment only.
	Outcome     string `json:"outcome,omitempty"`
	ScoreDelta  int    `json:"score_delta"`
	CreditScore int    `json:"credit_score"`
}

type OverdueDTO struct {
	LoanID      uint64 `json:"loan_id"`
	BorrowerID  uint64 `json:"borrower_id"`
	CreditScore int    `json:"credit_score"`
}

type SweepDTO struct {
	SweptAt time.Time    `json:"swept_at"`
	Overdue []OverdueDTO `json:"overdue"`
}

// CreditedPaymentDTO is one network payment Reconcile applied to a loan.
type CreditedPaymentDTO struct {
	LoanID      uint64          `json:"loan_id"`
	BorrowerID  uint64          `json:"borrower_id"`
	TxHash      string          `json:"tx_hash"`
	Amount      decimal.Decimal `json:"amount"`
	PaidAt      time.Time       `json:"paid_at"`
	FullyRepaid bool            `json:"fully_repaid"`
	Outcome     string          `json:"outcome,omitempty"`
	ScoreDelta  int             `json:"score_delta"`
	CreditScore int             `json:"credit_score"`
}

type ReconcileDTO struct {
	CheckedAt time.Time            `json:"checked_at"`
	Credited  []CreditedPaymentDTO `json:"credited"`
}

func toDTO(l *domain.Loan) LoanDTO {
	return LoanDTO{
		ID:             l.ID,
		BorrowerID:     l.BorrowerID,
		CoBorrowerID:   l.CoBorrowerID,
		Principal:      l.Principal,
		RepaidAmount:   l.RepaidAmount,
		Outstanding:    l.Outstanding(),
		Status:         string(l.Status),
		IssuedAt:       l.IssuedAt,
		DueAt:          l.DueAt,
		RepaidAt:       l.RepaidAt,
		DisbursementTx: l.DisbursementTx,
	}
}
