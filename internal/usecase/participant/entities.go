package participant

import (
	"time"

	"github.com/shopspring/decimal"
)

type ParticipantDTO struct {
	ID                uint64           `json:"id"`
	Address           string           `json:"address"`
	CreditScore       int              `json:"credit_score"`
	Loans             []uint64         `json:"loans"`
	TotalBorrowed     decimal.Decimal  `json:"total_borrowed"`
	TotalRepaid       decimal.Decimal  `json:"total_repaid"`
	LastRepaymentTime *time.Time       `json:"last_repayment_time,omitempty"`
	Balance           *decimal.Decimal `json:"balance,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
}

// OnboardedDTO is returned once, on creation; it is the only view that
// carries the secret.
type OnboardedDTO struct {
	ParticipantDTO
	Secret string `json:"secret"`
}
