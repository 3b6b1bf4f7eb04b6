package ledger

import (
	"context"
	"sync"
)

type inMemoryStore struct {
	mu       sync.RWMutex
	balances map[string]uint64
	managers map[string]struct{}
	supply   uint64
}

// NewInMemory creates a concurrency-safe in-memory ledger store. It is the
// default backend in development and in unit tests.
func NewInMemory() Store {
	return &inMemoryStore{
		balances: make(map[string]uint64),
		managers: make(map[string]struct{}),
	}
}

func (s *inMemoryStore) Balance(_ context.Context, account string) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.balances[account], nil
}

func (s *inMemoryStore) Supply(_ context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.supply, nil
}

func (s *inMemoryStore) Mint(_ context.Context, account string, amount uint64) (MintResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	balance := s.balances[account]
	if balance+amount < balance {
		return MintResult{}, ErrBalanceOverflow
	}
	if s.supply+amount < s.supply {
		return MintResult{}, ErrBalanceOverflow
	}

	s.balances[account] = balance + amount
	s.supply += amount

	return MintResult{Balance: s.balances[account], Supply: s.supply}, nil
}

func (s *inMemoryStore) Burn(_ context.Context, account string, amount uint64) (BurnResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	balance := s.balances[account]
	if amount > balance {
		return BurnResult{}, ErrInsufficientBalance
	}
	if amount > s.supply {
		return BurnResult{}, ErrInsufficientBalance
	}

	s.balances[account] = balance - amount
	s.supply -= amount

	return BurnResult{Balance: s.balances[account], Supply: s.supply}, nil
}

func (s *inMemoryStore) Transfer(_ context.Context, from, to string, amount uint64) (TransferResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fromBalance := s.balances[from]
	if amount > fromBalance {
		return TransferResult{}, ErrInsufficientBalance
	}

	toBalance := s.balances[to]
	if from == to {
		toBalance = fromBalance - amount
	}
	if toBalance+amount < toBalance {
		return TransferResult{}, ErrBalanceOverflow
	}

	s.balances[from] = fromBalance - amount
	s.balances[to] = toBalance + amount

	return TransferResult{FromBalance: s.balances[from], ToBalance: s.balances[to]}, nil
}

func (s *inMemoryStore) Adjust(_ context.Context, account string, amount uint64, increase bool) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	balance := s.balances[account]
	if increase {
		if balance+amount < balance {
			return 0, ErrBalanceOverflow
		}
		s.balances[account] = balance + amount
	} else {
		if amount > balance {
			return 0, ErrInsufficientBalance
		}
		s.balances[account] = balance - amount
	}

	return s.balances[account], nil
}

func (s *inMemoryStore) AddManager(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.managers[id]; exists {
		return ErrDuplicateManager
	}
	s.managers[id] = struct{}{}
	return nil
}

func (s *inMemoryStore) RemoveManager(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.managers[id]; !exists {
		return ErrManagerNotFound
	}
	delete(s.managers, id)
	return nil
}

func (s *inMemoryStore) IsManager(_ context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.managers[id]
	return ok, nil
}
