package token

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/boyw5785/gift-coin/internal/ledger"
)

func newTestService(t *testing.T) (*Service, *AdminCap) {
	t.Helper()
	svc, cap, err := NewService(ledger.NewInMemory(), NewMemoryVault(), "")
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, cap
}

func TestMintRequiresManager(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Mint(ctx, uuid.NewString(), "acct:alice", 100); err != ErrUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}

	supply, _ := svc.Supply(ctx)
	balance, _ := svc.Balance(ctx, "acct:alice")
	if supply != 0 || balance != 0 {
		t.Fatalf("state changed after rejected mint: supply=%d balance=%d", supply, balance)
	}
}

func TestManagerLifecycle(t *testing.T) {
	svc, cap := newTestService(t)
	ctx := context.Background()
	manager := uuid.NewString()

	forged := &AdminCap{secret: uuid.NewString()}
	if err := svc.AddManager(ctx, forged, manager); err != ErrUnauthorized {
		t.Fatalf("expected unauthorized with forged capability, got %v", err)
	}
	if err := svc.AddManager(ctx, nil, manager); err != ErrUnauthorized {
		t.Fatalf("expected unauthorized with nil capability, got %v", err)
	}

	if err := svc.AddManager(ctx, cap, manager); err != nil {
		t.Fatalf("add manager: %v", err)
	}
	if err := svc.AddManager(ctx, cap, manager); err != ledger.ErrDuplicateManager {
		t.Fatalf("expected duplicate manager, got %v", err)
	}

	ok, _ := svc.IsAuthorized(ctx, manager)
	if !ok {
		t.Fatalf("expected manager to be authorized")
	}

	if _, err := svc.Mint(ctx, manager, "acct:alice", 100); err != nil {
		t.Fatalf("mint by manager: %v", err)
	}

	if err := svc.RemoveManager(ctx, cap, manager); err != nil {
		t.Fatalf("remove manager: %v", err)
	}
	if err := svc.RemoveManager(ctx, cap, manager); err != ledger.ErrManagerNotFound {
		t.Fatalf("expected manager not found, got %v", err)
	}

	if _, err := svc.Mint(ctx, manager, "acct:alice", 100); err != ErrUnauthorized {
		t.Fatalf("expected unauthorized after removal, got %v", err)
	}
}

func TestGiftFlowScenario(t *testing.T) {
	svc, cap := newTestService(t)
	ctx := context.Background()
	manager := uuid.NewString()

	if err := svc.AddManager(ctx, cap, manager); err != nil {
		t.Fatalf("add manager: %v", err)
	}

	minted, err := svc.Mint(ctx, manager, "acct:alice", 100)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if minted.Balance != 100 || minted.Supply != 100 {
		t.Fatalf("unexpected mint receipt: %+v", minted)
	}
	if minted.Value.Amount() != 100 {
		t.Fatalf("expected value of 100, got %d", minted.Value.Amount())
	}

	gift, rest, err := svc.Split(ctx, minted.Value, 40)
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if gift.Amount() != 40 || rest.Amount() != 60 {
		t.Fatalf("unexpected split: %d/%d", gift.Amount(), rest.Amount())
	}

	moved, err := svc.Transfer(ctx, gift, "acct:bob", "acct:alice")
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if moved.FromBalance != 60 || moved.ToBalance != 40 {
		t.Fatalf("unexpected balances after transfer: %+v", moved)
	}

	burned, err := svc.Burn(ctx, manager, "acct:bob", moved.Value)
	if err != nil {
		t.Fatalf("burn: %v", err)
	}
	if burned.Balance != 0 || burned.Supply != 60 {
		t.Fatalf("unexpected state after burn: %+v", burned)
	}

	alice, _ := svc.Balance(ctx, "acct:alice")
	bob, _ := svc.Balance(ctx, "acct:bob")
	supply, _ := svc.Supply(ctx)
	if alice != 60 || bob != 0 || supply != 60 {
		t.Fatalf("final state wrong: alice=%d bob=%d supply=%d", alice, bob, supply)
	}
	// Circulating values (rest: 60) match supply; balances and values stay
	// reconciled as long as every value moves through transfer/burn.
	if rest.Amount() != supply {
		t.Fatalf("outstanding value %d does not reconcile with supply %d", rest.Amount(), supply)
	}
}

func TestBurnInsufficientLeavesStateAndValue(t *testing.T) {
	svc, cap := newTestService(t)
	ctx := context.Background()
	manager := uuid.NewString()

	if err := svc.AddManager(ctx, cap, manager); err != nil {
		t.Fatalf("add manager: %v", err)
	}

	minted, err := svc.Mint(ctx, manager, "acct:alice", 1_000)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	// Bob never received anything on the ledger; burning the value against his
	// account must fail and must not consume the value.
	if _, err := svc.Burn(ctx, manager, "acct:bob", minted.Value); err != ledger.ErrInsufficientBalance {
		t.Fatalf("expected insufficient balance, got %v", err)
	}

	supply, _ := svc.Supply(ctx)
	alice, _ := svc.Balance(ctx, "acct:alice")
	if supply != 1_000 || alice != 1_000 {
		t.Fatalf("state changed after failed burn: supply=%d alice=%d", supply, alice)
	}

	if _, err := svc.Burn(ctx, manager, "acct:alice", minted.Value); err != nil {
		t.Fatalf("value should still be spendable after failed burn: %v", err)
	}
}

func TestValueCannotBeSpentTwice(t *testing.T) {
	svc, cap := newTestService(t)
	ctx := context.Background()
	manager := uuid.NewString()

	if err := svc.AddManager(ctx, cap, manager); err != nil {
		t.Fatalf("add manager: %v", err)
	}
	minted, err := svc.Mint(ctx, manager, "acct:alice", 500)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	if _, err := svc.Transfer(ctx, minted.Value, "acct:bob", "acct:alice"); err != nil {
		t.Fatalf("first transfer: %v", err)
	}
	if _, err := svc.Transfer(ctx, minted.Value, "acct:carol", "acct:alice"); err != ErrValueSpent {
		t.Fatalf("expected value spent, got %v", err)
	}
	if _, err := svc.Burn(ctx, manager, "acct:alice", minted.Value); err != ErrValueSpent {
		t.Fatalf("expected value spent on burn, got %v", err)
	}
}

func TestSplitAndJoin(t *testing.T) {
	svc, cap := newTestService(t)
	ctx := context.Background()
	manager := uuid.NewString()

	if err := svc.AddManager(ctx, cap, manager); err != nil {
		t.Fatalf("add manager: %v", err)
	}
	minted, err := svc.Mint(ctx, manager, "acct:alice", 300)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	if _, _, err := svc.Split(ctx, minted.Value, 301); err != ledger.ErrInsufficientBalance {
		t.Fatalf("expected insufficient balance on oversized split, got %v", err)
	}

	part, rest, err := svc.Split(ctx, minted.Value, 120)
	if err != nil {
		t.Fatalf("split after failed split: %v", err)
	}
	if part.Amount()+rest.Amount() != 300 {
		t.Fatalf("split does not conserve amount: %d+%d", part.Amount(), rest.Amount())
	}

	joined, err := svc.Join(ctx, part, rest)
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if joined.Amount() != 300 {
		t.Fatalf("join does not conserve amount: %d", joined.Amount())
	}

	if _, err := svc.Join(ctx, part, joined); err != ErrValueSpent {
		t.Fatalf("expected spent part to be rejected, got %v", err)
	}
}

func TestAdjustBalanceIsManagerGatedAndSkipsSupply(t *testing.T) {
	svc, cap := newTestService(t)
	ctx := context.Background()
	manager := uuid.NewString()

	if _, err := svc.AdjustBalance(ctx, manager, "acct:alice", 50, true); err != ErrUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}

	if err := svc.AddManager(ctx, cap, manager); err != nil {
		t.Fatalf("add manager: %v", err)
	}

	balance, err := svc.AdjustBalance(ctx, manager, "acct:alice", 50, true)
	if err != nil {
		t.Fatalf("adjust: %v", err)
	}
	if balance != 50 {
		t.Fatalf("expected 50, got %d", balance)
	}

	supply, _ := svc.Supply(ctx)
	if supply != 0 {
		t.Fatalf("adjust must not move supply, got %d", supply)
	}

	if _, err := svc.AdjustBalance(ctx, manager, "acct:alice", 51, false); err != ledger.ErrInsufficientBalance {
		t.Fatalf("expected insufficient balance, got %v", err)
	}
}
