package token

import "golang.org/x/crypto/bcrypt"

// AdminCap is the singular credential authorizing manager-set edits. It is
// created once when the treasury is initialized and never stored in ledger
// state; whoever holds the secret holds the capability.
type AdminCap struct {
	secret string
}

// Secret exposes the capability secret so the creator can persist it out of
// band (e.g. hand it to an operator). The treasury itself only keeps a hash.
func (c *AdminCap) Secret() string { return c.secret }

func hashAdminSecret(secret string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
}

func matchAdminSecret(hash []byte, secret string) bool {
	return bcrypt.CompareHashAndPassword(hash, []byte(secret)) == nil
}
