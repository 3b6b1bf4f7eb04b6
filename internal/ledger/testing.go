package ledger

// SeedBalance is a test helper that sets the balance for an account when using
// the in-memory store. It bypasses supply, so tests that rely on the
// supply-equals-sum invariant should mint instead.
func SeedBalance(s Store, account string, amount uint64) {
	if mem, ok := s.(*inMemoryStore); ok {
		mem.mu.Lock()
		defer mem.mu.Unlock()
		mem.balances[account] = amount
	}
}
