package token

// Value is a movable, single-use unit of gift coin. It is produced exactly
// once by Mint and consumed exactly once by Burn or Transfer; the vault entry
// behind its id is what makes double spends impossible across processes.
//
// A Value is not safe for concurrent use; operations on one ledger are assumed
// to run serialized.
type Value struct {
	id     string
	amount uint64
	spent  bool
}

// ID returns the vault identifier of the value.
func (v *Value) ID() string { return v.id }

// Amount returns the amount the value carries.
func (v *Value) Amount() uint64 { return v.amount }

// Spent reports whether the value has been consumed in this process.
func (v *Value) Spent() bool { return v.spent }
