package token

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/boyw5785/gift-coin/internal/ledger"
)

// Service is the treasury facade over the ledger store and the value vault.
// Every gated operation takes its credential explicitly: the admin capability
// for manager-set edits, a manager identity for supply changes. Transfer takes
// no credential; possession of an unspent value is what authorizes it.
type Service struct {
	store     ledger.Store
	vault     Vault
	adminHash []byte
}

// MintReceipt captures the outcome of a mint: the freshly issued value plus
// the updated ledger view.
type MintReceipt struct {
	Value   *Value
	Balance uint64
	Supply  uint64
}

// BurnReceipt captures the ledger view after a burn.
type BurnReceipt struct {
	Balance uint64
	Supply  uint64
}

// TransferReceipt captures the outcome of a transfer: the re-issued value now
// belonging to the recipient plus both updated balances.
type TransferReceipt struct {
	Value       *Value
	FromBalance uint64
	ToBalance   uint64
}

// NewService initializes a treasury over an empty or existing ledger and mints
// the admin capability. When adminSecret is empty a fresh one is generated.
// The returned capability is handed to the creator and only its hash is kept.
func NewService(store ledger.Store, vault Vault, adminSecret string) (*Service, *AdminCap, error) {
	if adminSecret == "" {
		adminSecret = uuid.NewString()
	}
	hash, err := hashAdminSecret(adminSecret)
	if err != nil {
		return nil, nil, err
	}
	svc := &Service{store: store, vault: vault, adminHash: hash}
	return svc, &AdminCap{secret: adminSecret}, nil
}

// VerifyAdminSecret checks a presented secret against the admin capability.
func (s *Service) VerifyAdminSecret(secret string) error {
	if !matchAdminSecret(s.adminHash, secret) {
		return ErrUnauthorized
	}
	return nil
}

// Mint creates amount new coins on the recipient's balance, grows supply and
// issues a single-use value for the recipient to hold. Caller must be a
// registered manager.
func (s *Service) Mint(ctx context.Context, caller, recipient string, amount uint64) (MintReceipt, error) {
	if err := s.requireManager(ctx, caller); err != nil {
		return MintReceipt{}, err
	}

	value, err := s.issue(ctx, amount)
	if err != nil {
		return MintReceipt{}, err
	}

	res, err := s.store.Mint(ctx, recipient, amount)
	if err != nil {
		// The value never circulated; take it back out of the vault.
		_, _ = s.vault.Redeem(ctx, value.id)
		return MintReceipt{}, err
	}

	return MintReceipt{Value: value, Balance: res.Balance, Supply: res.Supply}, nil
}

// Burn consumes the presented value and destroys its amount from the
// recipient's balance and total supply. Caller must be a registered manager.
func (s *Service) Burn(ctx context.Context, caller, recipient string, v *Value) (BurnReceipt, error) {
	if err := s.requireManager(ctx, caller); err != nil {
		return BurnReceipt{}, err
	}

	amount, err := s.redeem(ctx, v)
	if err != nil {
		return BurnReceipt{}, err
	}

	res, err := s.store.Burn(ctx, recipient, amount)
	if err != nil {
		// Posting failed before any write; re-deposit so the value is not lost.
		_ = s.vault.Put(ctx, v.id, amount)
		return BurnReceipt{}, err
	}

	v.spent = true
	return BurnReceipt{Balance: res.Balance, Supply: res.Supply}, nil
}

// Transfer consumes the presented value, moves its amount from sender to
// recipient on the ledger and issues a fresh value for the recipient. The
// ledger trusts that the sender actually held the presented value; keeping
// balances and circulating values reconciled is the caller's contract.
func (s *Service) Transfer(ctx context.Context, v *Value, recipient, sender string) (TransferReceipt, error) {
	amount, err := s.redeem(ctx, v)
	if err != nil {
		return TransferReceipt{}, err
	}

	res, err := s.store.Transfer(ctx, sender, recipient, amount)
	if err != nil {
		_ = s.vault.Put(ctx, v.id, amount)
		return TransferReceipt{}, err
	}

	v.spent = true
	reissued, err := s.issue(ctx, amount)
	if err != nil {
		return TransferReceipt{}, err
	}

	return TransferReceipt{Value: reissued, FromBalance: res.FromBalance, ToBalance: res.ToBalance}, nil
}

// Split consumes a value and re-issues it as two values of amount and
// remainder. Only the vault is touched; ledger balances do not move until the
// pieces are transferred or burned.
func (s *Service) Split(ctx context.Context, v *Value, amount uint64) (*Value, *Value, error) {
	total, err := s.redeem(ctx, v)
	if err != nil {
		return nil, nil, err
	}
	if amount > total {
		_ = s.vault.Put(ctx, v.id, total)
		return nil, nil, ledger.ErrInsufficientBalance
	}

	v.spent = true
	part, err := s.issue(ctx, amount)
	if err != nil {
		return nil, nil, err
	}
	rest, err := s.issue(ctx, total-amount)
	if err != nil {
		return nil, nil, err
	}
	return part, rest, nil
}

// Join consumes two values and re-issues a single value carrying their sum.
func (s *Service) Join(ctx context.Context, a, b *Value) (*Value, error) {
	amountA, err := s.redeem(ctx, a)
	if err != nil {
		return nil, err
	}
	amountB, err := s.redeem(ctx, b)
	if err != nil {
		_ = s.vault.Put(ctx, a.id, amountA)
		return nil, err
	}
	if amountA+amountB < amountA {
		_ = s.vault.Put(ctx, a.id, amountA)
		_ = s.vault.Put(ctx, b.id, amountB)
		return nil, ledger.ErrBalanceOverflow
	}

	a.spent, b.spent = true, true
	return s.issue(ctx, amountA+amountB)
}

// AdjustBalance applies an administrative balance correction without minting
// or destroying a circulating value. Caller must be a registered manager.
func (s *Service) AdjustBalance(ctx context.Context, caller, account string, amount uint64, increase bool) (uint64, error) {
	if err := s.requireManager(ctx, caller); err != nil {
		return 0, err
	}
	return s.store.Adjust(ctx, account, amount, increase)
}

// AddManager registers an identity as a manager. Requires the admin capability.
func (s *Service) AddManager(ctx context.Context, cap *AdminCap, id string) error {
	if err := s.requireAdmin(cap); err != nil {
		return err
	}
	return s.store.AddManager(ctx, id)
}

// RemoveManager removes an identity from the manager set. Requires the admin
// capability.
func (s *Service) RemoveManager(ctx context.Context, cap *AdminCap, id string) error {
	if err := s.requireAdmin(cap); err != nil {
		return err
	}
	return s.store.RemoveManager(ctx, id)
}

// Supply returns the total minted-minus-burned amount.
func (s *Service) Supply(ctx context.Context) (uint64, error) {
	return s.store.Supply(ctx)
}

// Balance returns the tracked balance for an account, 0 when untouched.
func (s *Service) Balance(ctx context.Context, account string) (uint64, error) {
	return s.store.Balance(ctx, account)
}

// IsAuthorized reports whether the identity may mint, burn and adjust balances.
func (s *Service) IsAuthorized(ctx context.Context, id string) (bool, error) {
	return s.store.IsManager(ctx, id)
}

func (s *Service) requireManager(ctx context.Context, id string) error {
	ok, err := s.store.IsManager(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrUnauthorized
	}
	return nil
}

func (s *Service) requireAdmin(cap *AdminCap) error {
	if cap == nil {
		return ErrUnauthorized
	}
	return s.VerifyAdminSecret(cap.secret)
}

func (s *Service) issue(ctx context.Context, amount uint64) (*Value, error) {
	value := &Value{id: uuid.NewString(), amount: amount}
	if err := s.vault.Put(ctx, value.id, amount); err != nil {
		return nil, err
	}
	return value, nil
}

func (s *Service) redeem(ctx context.Context, v *Value) (uint64, error) {
	if v == nil || v.spent {
		return 0, ErrValueSpent
	}
	amount, err := s.vault.Redeem(ctx, v.id)
	if errors.Is(err, ErrValueNotFound) {
		return 0, ErrValueSpent
	}
	return amount, err
}
