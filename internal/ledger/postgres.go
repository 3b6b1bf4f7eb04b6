package ledger

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Balances and supply are stored as NUMERIC(20,0) and moved across the wire as
// decimal strings so the full uint64 range survives the trip; BIGINT tops out
// at 2^63-1.
const schema = `
CREATE TABLE IF NOT EXISTS balances (
    account TEXT PRIMARY KEY,
    amount  NUMERIC(20,0) NOT NULL CHECK (amount >= 0)
);

CREATE TABLE IF NOT EXISTS supply (
    id     SMALLINT PRIMARY KEY CHECK (id = 1),
    amount NUMERIC(20,0) NOT NULL CHECK (amount >= 0)
);

INSERT INTO supply (id, amount) VALUES (1, 0) ON CONFLICT (id) DO NOTHING;

CREATE TABLE IF NOT EXISTS managers (
    id       TEXT PRIMARY KEY,
    added_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`

// PostgresStore persists the ledger in PostgreSQL. Each mutation runs in a
// transaction with FOR UPDATE row locks so balance and supply move together.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore constructs a Postgres-backed ledger store.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the ledger tables and the supply row if missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, schema)
	return err
}

// Balance returns the tracked balance for the account, 0 when untouched.
func (s *PostgresStore) Balance(ctx context.Context, account string) (uint64, error) {
	var amount string
	err := s.db.QueryRow(ctx, `SELECT amount::text FROM balances WHERE account = $1`, account).Scan(&amount)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseUint(amount, 10, 64)
}

// Supply returns the total minted-minus-burned amount.
func (s *PostgresStore) Supply(ctx context.Context) (uint64, error) {
	var amount string
	if err := s.db.QueryRow(ctx, `SELECT amount::text FROM supply WHERE id = 1`).Scan(&amount); err != nil {
		return 0, err
	}
	return strconv.ParseUint(amount, 10, 64)
}

// Mint credits the account and grows supply in one transaction.
func (s *PostgresStore) Mint(ctx context.Context, account string, amount uint64) (MintResult, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return MintResult{}, err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	balance, err := balanceForUpdate(ctx, tx, account)
	if err != nil {
		return MintResult{}, err
	}
	supply, err := supplyForUpdate(ctx, tx)
	if err != nil {
		return MintResult{}, err
	}

	if balance+amount < balance || supply+amount < supply {
		return MintResult{}, ErrBalanceOverflow
	}

	if err := writeBalance(ctx, tx, account, balance+amount); err != nil {
		return MintResult{}, err
	}
	if err := writeSupply(ctx, tx, supply+amount); err != nil {
		return MintResult{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return MintResult{}, err
	}
	return MintResult{Balance: balance + amount, Supply: supply + amount}, nil
}

// Burn debits the account and shrinks supply in one transaction.
func (s *PostgresStore) Burn(ctx context.Context, account string, amount uint64) (BurnResult, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return BurnResult{}, err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	balance, err := balanceForUpdate(ctx, tx, account)
	if err != nil {
		return BurnResult{}, err
	}
	supply, err := supplyForUpdate(ctx, tx)
	if err != nil {
		return BurnResult{}, err
	}

	if amount > balance || amount > supply {
		return BurnResult{}, ErrInsufficientBalance
	}

	if err := writeBalance(ctx, tx, account, balance-amount); err != nil {
		return BurnResult{}, err
	}
	if err := writeSupply(ctx, tx, supply-amount); err != nil {
		return BurnResult{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return BurnResult{}, err
	}
	return BurnResult{Balance: balance - amount, Supply: supply - amount}, nil
}

// Transfer moves amount between two accounts in one transaction.
func (s *PostgresStore) Transfer(ctx context.Context, from, to string, amount uint64) (TransferResult, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return TransferResult{}, err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	// Lock in lexical order to avoid deadlocks between crossing transfers.
	first, second := from, to
	if second < first {
		first, second = second, first
	}
	if _, err := balanceForUpdate(ctx, tx, first); err != nil {
		return TransferResult{}, err
	}
	if first != second {
		if _, err := balanceForUpdate(ctx, tx, second); err != nil {
			return TransferResult{}, err
		}
	}

	fromBalance, err := balanceForUpdate(ctx, tx, from)
	if err != nil {
		return TransferResult{}, err
	}
	if amount > fromBalance {
		return TransferResult{}, ErrInsufficientBalance
	}

	toBalance, err := balanceForUpdate(ctx, tx, to)
	if err != nil {
		return TransferResult{}, err
	}
	if from == to {
		toBalance = fromBalance - amount
	}
	if toBalance+amount < toBalance {
		return TransferResult{}, ErrBalanceOverflow
	}

	if err := writeBalance(ctx, tx, from, fromBalance-amount); err != nil {
		return TransferResult{}, err
	}
	if err := writeBalance(ctx, tx, to, toBalance+amount); err != nil {
		return TransferResult{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return TransferResult{}, err
	}
	return TransferResult{FromBalance: fromBalance - amount, ToBalance: toBalance + amount}, nil
}

// Adjust applies an administrative balance correction without touching supply.
func (s *PostgresStore) Adjust(ctx context.Context, account string, amount uint64, increase bool) (uint64, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	balance, err := balanceForUpdate(ctx, tx, account)
	if err != nil {
		return 0, err
	}

	var next uint64
	if increase {
		if balance+amount < balance {
			return 0, ErrBalanceOverflow
		}
		next = balance + amount
	} else {
		if amount > balance {
			return 0, ErrInsufficientBalance
		}
		next = balance - amount
	}

	if err := writeBalance(ctx, tx, account, next); err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return next, nil
}

// AddManager registers a manager identity.
func (s *PostgresStore) AddManager(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `INSERT INTO managers (id) VALUES ($1) ON CONFLICT (id) DO NOTHING`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrDuplicateManager
	}
	return nil
}

// RemoveManager deletes a manager identity.
func (s *PostgresStore) RemoveManager(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM managers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrManagerNotFound
	}
	return nil
}

// IsManager reports whether the identity is registered.
func (s *PostgresStore) IsManager(ctx context.Context, id string) (bool, error) {
	var ok bool
	if err := s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM managers WHERE id = $1)`, id).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

// balanceForUpdate ensures the account row exists, locks it, and returns the
// current amount.
func balanceForUpdate(ctx context.Context, tx pgx.Tx, account string) (uint64, error) {
	if _, err := tx.Exec(ctx, `INSERT INTO balances (account, amount) VALUES ($1, 0)
        ON CONFLICT (account) DO NOTHING`, account); err != nil {
		return 0, err
	}
	var amount string
	if err := tx.QueryRow(ctx, `SELECT amount::text FROM balances WHERE account = $1 FOR UPDATE`, account).Scan(&amount); err != nil {
		return 0, err
	}
	return strconv.ParseUint(amount, 10, 64)
}

func supplyForUpdate(ctx context.Context, tx pgx.Tx) (uint64, error) {
	var amount string
	if err := tx.QueryRow(ctx, `SELECT amount::text FROM supply WHERE id = 1 FOR UPDATE`).Scan(&amount); err != nil {
		return 0, err
	}
	return strconv.ParseUint(amount, 10, 64)
}

func writeBalance(ctx context.Context, tx pgx.Tx, account string, amount uint64) error {
	_, err := tx.Exec(ctx, `UPDATE balances SET amount = $2::numeric WHERE account = $1`,
		account, strconv.FormatUint(amount, 10))
	return err
}

func writeSupply(ctx context.Context, tx pgx.Tx, amount uint64) error {
	_, err := tx.Exec(ctx, `UPDATE supply SET amount = $1::numeric WHERE id = 1`,
		strconv.FormatUint(amount, 10))
	return err
}
