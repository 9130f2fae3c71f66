package participant

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"creditnexus/internal/domain/credit"
	"creditnexus/internal/domain/transfer"
)

var (
	ErrNotFound = errors.New("participant not found")
)

// Table: participants
type Participant struct {
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// Funding credential on the transfer network
	Address           string          `gorm:"column:address;type:varchar(64);not null;uniqueIndex"`
	Secret            string          `gorm:"column:secret;type:varchar(64);not null"`
	CreditScore       int             `gorm:"column:credit_score;not null"`
	TotalBorrowed     decimal.Decimal `gorm:"column:total_borrowed;type:decimal(24,6);not null"`
	TotalRepaid       decimal.Decimal `gorm:"column:total_repaid;type:decimal(24,6);not null"`
	LastRepaymentTime *time.Time      `gorm:"column:last_repayment_time"`
	CreatedAt         time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (Participant) TableName() string { return "participants" }

func New(cred transfer.Credential) *Participant {
	return &Participant{
		Address:       cred.Address,
		Secret:        cred.Secret,
		CreditScore:   credit.InitialScore,
		TotalBorrowed: decimal.Zero,
		TotalRepaid:   decimal.Zero,
	}
}

func (p *Participant) Credential() transfer.Credential {
	return transfer.Credential{Address: p.Address, Secret: p.Secret}
}
