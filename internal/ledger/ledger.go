package ledger

import (
	"context"
	"errors"
)

var (
	// ErrInsufficientBalance occurs when a decrease exceeds the tracked balance
	// of the account, including the implicit-zero case for untouched accounts.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrBalanceOverflow indicates an increase would wrap the 64-bit balance
	// or supply counter.
	ErrBalanceOverflow = errors.New("balance overflow")

	// ErrDuplicateManager indicates the identity is already registered.
	ErrDuplicateManager = errors.New("manager already registered")

	// ErrManagerNotFound indicates the identity is not in the manager set.
	ErrManagerNotFound = errors.New("manager not found")
)

// MintResult captures the outcome of a mint posting.
type MintResult struct {
	Balance uint64
	Supply  uint64
}

// BurnResult captures the outcome of a burn posting.
type BurnResult struct {
	Balance uint64
	Supply  uint64
}

// TransferResult captures the outcome of a balance movement between accounts.
type TransferResult struct {
	FromBalance uint64
	ToBalance   uint64
}

// Store defines the contract implemented by ledger backends (e.g. Postgres).
// Mutating methods apply their balance and supply changes atomically: every
// check runs before the first write, so a failed call leaves no trace.
//
// Balance reads are zero-default: an account with no entry reports 0 and the
// read never fails. Once an account has been credited or debited its entry
// persists, even when reduced back to 0.
type Store interface {
	Balance(ctx context.Context, account string) (uint64, error)
	Supply(ctx context.Context) (uint64, error)

	// Mint credits the account and grows total supply in one step.
	Mint(ctx context.Context, account string, amount uint64) (MintResult, error)
	// Burn debits the account and shrinks total supply in one step.
	Burn(ctx context.Context, account string, amount uint64) (BurnResult, error)
	// Transfer moves amount between two accounts; supply is untouched.
	Transfer(ctx context.Context, from, to string, amount uint64) (TransferResult, error)
	// Adjust is an administrative balance correction. It deliberately does not
	// touch supply; callers own reconciling the ledger afterwards.
	Adjust(ctx context.Context, account string, amount uint64, increase bool) (uint64, error)

	AddManager(ctx context.Context, id string) error
	RemoveManager(ctx context.Context, id string) error
	IsManager(ctx context.Context, id string) (bool, error)
}
