// Package simnet is an in-process stand-in for a public test network: a
// faucet opens funded accounts and payments move an issued currency between
// them. Secrets are checked by plain comparison; no signing takes place.
package simnet

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"creditnexus/internal/domain/transfer"
	"creditnexus/pkg/id"
)

const ResultSuccess = "tesSUCCESS"

var (
	ErrUnknownAccount    = errors.New("account not found")
	ErrBadSecret         = errors.New("secret does not match account")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrLimitExceeded     = errors.New("destination trust line limit exceeded")
)

var _ transfer.Network = (*Network)(nil)

type account struct {
	secret  string
	balance decimal.Decimal
}

type Options struct {
	// Latency delays every call, like a round trip to a remote node.
	Latency time.Duration
	// TrustLimit caps any account balance; zero means unlimited.
	TrustLimit decimal.Decimal
	Now        func() time.Time
}

type Network struct {
	opts Options

	mu       sync.Mutex
	accounts map[string]*account
	history  []transfer.Receipt
}

func New(opts Options) *Network {
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	return &Network{opts: opts, accounts: map[string]*account{}}
}

func (n *Network) Fund(ctx context.Context, amount decimal.Decimal) (transfer.Credential, error) {
	if err := n.wait(ctx); err != nil {
		return transfer.Credential{}, err
	}
	if amount.IsNegative() {
		return transfer.Credential{}, ErrInvalidAmount
	}
	cred := transfer.Credential{Address: id.NewAddress(), Secret: id.NewSecret()}

	n.mu.Lock()
	defer n.mu.Unlock()
	n.accounts[cred.Address] = &account{secret: cred.Secret, balance: amount}
	return cred, nil
}

func (n *Network) Transfer(ctx context.Context, from, to transfer.Credential, amount decimal.Decimal) (*transfer.Receipt, error) {
	if err := n.wait(ctx); err != nil {
		return nil, err
	}
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	src, ok := n.accounts[from.Address]
	if !ok {
		return nil, fmt.Errorf("source %s: %w", from.Address, ErrUnknownAccount)
	}
	if src.secret != from.Secret {
		return nil, ErrBadSecret
	}
	dst, ok := n.accounts[to.Address]
	if !ok {
		return nil, fmt.Errorf("destination %s: %w", to.Address, ErrUnknownAccount)
	}
	if src.balance.LessThan(amount) {
		return nil, fmt.Errorf("%w: has %s, needs %s", ErrInsufficientFunds, src.balance, amount)
	}
	if n.opts.TrustLimit.IsPositive() && from.Address != to.Address &&
		dst.balance.Add(amount).GreaterThan(n.opts.TrustLimit) {
		return nil, ErrLimitExceeded
	}

	src.balance = src.balance.Sub(amount)
	dst.balance = dst.balance.Add(amount)

	rcpt := transfer.Receipt{
		Hash:   id.NewTxHash(),
		From:   from.Address,
		To:     to.Address,
		Amount: amount,
		Result: ResultSuccess,
		At:     n.opts.Now(),
	}
	n.history = append(n.history, rcpt)
	return &rcpt, nil
}

func (n *Network) Balance(ctx context.Context, address string) (decimal.Decimal, error) {
	if err := ctx.Err(); err != nil {
		return decimal.Zero, err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	acc, ok := n.accounts[address]
	if !ok {
		return decimal.Zero, ErrUnknownAccount
	}
	return acc.balance, nil
}

// History returns receipts touching address, oldest first.
func (n *Network) History(ctx context.Context, address string) ([]transfer.Receipt, error) {
	if err := n.wait(ctx); err != nil {
		return nil, err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, ok := n.accounts[address]; !ok {
		return nil, ErrUnknownAccount
	}
	var out []transfer.Receipt
	for _, r := range n.history {
		if r.From == address || r.To == address {
			out = append(out, r)
		}
	}
	return out, nil
}

func (n *Network) wait(ctx context.Context) error {
	if n.opts.Latency <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(n.opts.Latency)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
