package token

import (
	"context"
	"fmt"
	"sync"
)

// Vault holds outstanding token values between issuance and redemption. It is
// the token-holding mechanism the ledger's balance table runs parallel to:
// redeeming removes the entry, so each value can be spent at most once.
type Vault interface {
	Put(ctx context.Context, id string, amount uint64) error
	Redeem(ctx context.Context, id string) (uint64, error)
}

type memoryVault struct {
	mu     sync.Mutex
	values map[string]uint64
}

// NewMemoryVault creates an in-process vault for development and tests.
func NewMemoryVault() Vault {
	return &memoryVault{values: make(map[string]uint64)}
}

func (v *memoryVault) Put(_ context.Context, id string, amount uint64) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, exists := v.values[id]; exists {
		return fmt.Errorf("value %s already outstanding", id)
	}
	v.values[id] = amount
	return nil
}

func (v *memoryVault) Redeem(_ context.Context, id string) (uint64, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	amount, exists := v.values[id]
	if !exists {
		return 0, ErrValueNotFound
	}
	delete(v.values, id)
	return amount, nil
}
