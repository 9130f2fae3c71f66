package bank

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"

	"creditnexus/internal/domain/transfer"
)

var ErrNotInitialized = errors.New("bank account is not initialized")

type BankDTO struct {
	Address string           `json:"address"`
	Secret  string           `json:"secret,omitempty"`
	Balance *decimal.Decimal `json:"balance,omitempty"`
}

// Usecase owns the bank's funding credential: loans are disbursed from it
// and repayments are paid into it.
type Usecase struct {
	net     transfer.Network
	funding decimal.Decimal
	log     *slog.Logger

	mu   sync.RWMutex
	cred *transfer.Credential
}

func NewUsecase(n transfer.Network, funding decimal.Decimal, log *slog.Logger) *Usecase {
	if log == nil {
		log = slog.Default()
	}
	return &Usecase{net: n, funding: funding, log: log}
}

// Initialize funds the bank account once. Later calls return the existing
// account and created=false.
func (u *Usecase) Initialize(ctx context.Context) (dto *BankDTO, created bool, err error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.cred != nil {
		return u.view(ctx, *u.cred, false), false, nil
	}
	cred, err := u.net.Fund(ctx, u.funding)
	if err != nil {
		return nil, false, fmt.Errorf("%w: fund bank: %w", transfer.ErrTransferFailed, err)
	}
	u.cred = &cred
	u.log.Info("bank initialized", "address", cred.Address, "funding", u.funding.String())
	// The secret is shown once, on creation.
	return u.view(ctx, cred, true), true, nil
}

func (u *Usecase) Get(ctx context.Context) (*BankDTO, error) {
	cred, err := u.Credential()
	if err != nil {
		return nil, err
	}
	return u.view(ctx, cred, false), nil
}

func (u *Usecase) Credential() (transfer.Credential, error) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	if u.cred == nil {
		return transfer.Credential{}, ErrNotInitialized
	}
	return *u.cred, nil
}

func (u *Usecase) view(ctx context.Context, cred transfer.Credential, withSecret bool) *BankDTO {
	dto := &BankDTO{Address: cred.Address}
	if withSecret {
		dto.Secret = cred.Secret
	}
	if bal, err := u.net.Balance(ctx, cred.Address); err == nil {
		dto.Balance = &bal
	} else {
		u.log.Warn("bank balance unavailable", "address", cred.Address, "err", err)
	}
	return dto
}
