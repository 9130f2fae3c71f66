package loan

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusActive  Status = "active"
	StatusRepaid  Status = "repaid"
	StatusOverdue Status = "overdue"
)

var (
	ErrNotFound      = errors.New("loan not found")
	ErrAlreadyRepaid = errors.New("loan is already fully repaid")
	ErrInvalidAmount = errors.New("amount and term must be positive")
)

// OverpaymentPolicy decides what happens to the part of a repayment that
// exceeds the outstanding balance.
type OverpaymentPolicy string

const (
	// OverpaymentAccept records the full amount, even past the principal.
	OverpaymentAccept OverpaymentPolicy = "accept"
	// OverpaymentClamp records only the outstanding remainder.
	OverpaymentClamp OverpaymentPolicy = "clamp"
	// OverpaymentReject fails the repayment with ErrInvalidAmount.
	OverpaymentReject OverpaymentPolicy = "reject"
)

func (p OverpaymentPolicy) Valid() bool {
	switch p {
	case OverpaymentAccept, OverpaymentClamp, OverpaymentReject:
		return true
	}
	return false
}

// Table: loans
type Loan struct {
	ID           uint64          `gorm:"column:id;primaryKey;autoIncrement"`
	BorrowerID   uint64          `gorm:"column:borrower_id;not null;index"`
	CoBorrowerID *uint64         `gorm:"column:co_borrower_id;index"`
	Principal    decimal.Decimal `gorm:"column:principal;type:decimal(24,6);not null"`
	RepaidAmount decimal.Decimal `gorm:"column:repaid_amount;type:decimal(24,6);not null"`
	Status       Status          `gorm:"column:status;type:varchar(16);not null;index"`
	IssuedAt     time.Time       `gorm:"column:issued_at;not null"`
	DueAt        time.Time       `gorm:"column:due_at;not null;index"`
	RepaidAt     *time.Time      `gorm:"column:repaid_at"`
	// Hash of the disbursement transfer on the network.
	DisbursementTx string    `gorm:"column:disbursement_tx;type:varchar(64)"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Loan) TableName() string { return "loans" }

func New(borrowerID uint64, coBorrowerID *uint64, principal decimal.Decimal, issuedAt time.Time, term time.Duration) (*Loan, error) {
	if !principal.IsPositive() || term <= 0 {
		return nil, ErrInvalidAmount
	}
	return &Loan{
		BorrowerID:   borrowerID,
		CoBorrowerID: coBorrowerID,
		Principal:    principal,
		RepaidAmount: decimal.Zero,
		Status:       StatusActive,
		IssuedAt:     issuedAt,
		DueAt:        issuedAt.Add(term),
	}, nil
}

// Outstanding is never negative.
func (l *Loan) Outstanding() decimal.Decimal {
	rest := l.Principal.Sub(l.RepaidAmount)
	if rest.IsNegative() {
		return decimal.Zero
	}
	return rest
}

func (l *Loan) IsRepaid() bool { return l.Status == StatusRepaid }

// Obligors returns the borrower followed by the co-borrower, if any.
func (l *Loan) Obligors() []uint64 {
	if l.CoBorrowerID == nil {
		return []uint64{l.BorrowerID}
	}
	return []uint64{l.BorrowerID, *l.CoBorrowerID}
}

// Settle resolves how much of amount will be recorded under policy. It does
// not mutate the loan.
func (l *Loan) Settle(amount decimal.Decimal, policy OverpaymentPolicy) (decimal.Decimal, error) {
	if l.IsRepaid() {
		return decimal.Zero, ErrAlreadyRepaid
	}
	if !amount.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	rest := l.Outstanding()
	if amount.LessThanOrEqual(rest) {
		return amount, nil
	}
	switch policy {
	case OverpaymentClamp:
		return rest, nil
	case OverpaymentReject:
		return decimal.Zero, ErrInvalidAmount
	default:
		return amount, nil
	}
}

// ApplyRepayment adds amount to the repaid total. It reports whether this
// payment closed the loan.
func (l *Loan) ApplyRepayment(amount decimal.Decimal, at time.Time) (bool, error) {
	if l.IsRepaid() {
		return false, ErrAlreadyRepaid
	}
	if !amount.IsPositive() {
		return false, ErrInvalidAmount
	}
	l.RepaidAmount = l.RepaidAmount.Add(amount)
	if l.RepaidAmount.LessThan(l.Principal) {
		return false, nil
	}
	l.Status = StatusRepaid
	repaidAt := at
	l.RepaidAt = &repaidAt
	return true, nil
}

// MarkOverdue moves an active loan past its due time to overdue. It only
// fires on the active → overdue edge.
func (l *Loan) MarkOverdue(now time.Time) bool {
	if l.Status != StatusActive || !now.After(l.DueAt) {
		return false
	}
	l.Status = StatusOverdue
	return true
}
