// Package transfer describes the funds-transfer network the ledger drives.
// The ledger never looks inside a receipt beyond success or failure.
package transfer

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrTransferFailed wraps every error reported by the network.
var ErrTransferFailed = errors.New("funds transfer failed")

type Credential struct {
	Address string
	Secret  string
}

type Receipt struct {
	Hash   string
	From   string
	To     string
	Amount decimal.Decimal
	Result string
	At     time.Time
}

type Service interface {
	Transfer(ctx context.Context, from, to Credential, amount decimal.Decimal) (*Receipt, error)
}

// Funder opens a new account pre-loaded with amount (a test-network faucet).
type Funder interface {
	Fund(ctx context.Context, amount decimal.Decimal) (Credential, error)
}

type BalanceReader interface {
	Balance(ctx context.Context, address string) (decimal.Decimal, error)
}

// HistoryReader lists the settled transfers touching an address, oldest
// first.
type HistoryReader interface {
	History(ctx context.Context, address string) ([]Receipt, error)
}

// Network is everything the service needs from the transfer layer.
type Network interface {
	Service
	Funder
	BalanceReader
	HistoryReader
}
