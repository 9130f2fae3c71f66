package transfermock

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"creditnexus/internal/domain/transfer"
)

var _ transfer.Network = (*Network)(nil)

var errUnimplemented = errors.New("transfermock: method not implemented")

// Network is a function-backed mock that satisfies transfer.Network.
// Unset functions return errUnimplemented.
type Network struct {
	TransferFn func(ctx context.Context, from, to transfer.Credential, amount decimal.Decimal) (*transfer.Receipt, error)
	FundFn     func(ctx context.Context, amount decimal.Decimal) (transfer.Credential, error)
	BalanceFn  func(ctx context.Context, address string) (decimal.Decimal, error)
	HistoryFn  func(ctx context.Context, address string) ([]transfer.Receipt, error)
}

func (m *Network) Transfer(ctx context.Context, from, to transfer.Credential, amount decimal.Decimal) (*transfer.Receipt, error) {
	if m.TransferFn != nil {
		return m.TransferFn(ctx, from, to, amount)
	}
	return nil, errUnimplemented
}

func (m *Network) Fund(ctx context.Context, amount decimal.Decimal) (transfer.Credential, error) {
	if m.FundFn != nil {
		return m.FundFn(ctx, amount)
	}
	return transfer.Credential{}, errUnimplemented
}

func (m *Network) Balance(ctx context.Context, address string) (decimal.Decimal, error) {
	if m.BalanceFn != nil {
		return m.BalanceFn(ctx, address)
	}
	return decimal.Zero, errUnimplemented
}

func (m *Network) History(ctx context.Context, address string) ([]transfer.Receipt, error) {
	if m.HistoryFn != nil {
		return m.HistoryFn(ctx, address)
	}
	return nil, errUnimplemented
}
