package loan

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentKind says how a network transfer into the bank came to be counted.
type PaymentKind string

const (
	// PaymentDirect was made through the ledger's repayment operation.
	PaymentDirect PaymentKind = "direct"
	// PaymentReconciled was found on the network and credited afterwards.
	PaymentReconciled PaymentKind = "reconciled"
	// PaymentReversal undid a transfer whose ledger write rolled back. It is
	// never credited to a loan.
	PaymentReversal PaymentKind = "reversal"
)

// Table: payments
//
// Every transfer hash the ledger has accounted for, at most once.
type Payment struct {
	ID        uint64          `gorm:"column:id;primaryKey;autoIncrement"`
	LoanID    uint64          `gorm:"column:loan_id;index"`
	TxHash    string          `gorm:"column:tx_hash;type:varchar(64);not null;uniqueIndex"`
	Amount    decimal.Decimal `gorm:"column:amount;type:decimal(24,6);not null"`
	Kind      PaymentKind     `gorm:"column:kind;type:varchar(16);not null"`
	PaidAt    time.Time       `gorm:"column:paid_at;not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (Payment) TableName() string { return "payments" }
