// Package storage persists the user registry and per-account wallets.
// Two backends implement the same contract: SQLite (default) and JSON
// flat files. Wallet reads never fail the caller; a missing or corrupt
// record degrades to an empty wallet.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"finledger/internal/core"
	"finledger/internal/users"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps users, wallets, operations and categories in a
// single SQLite database. A per-account lock serializes every
// load-mutate-save cycle, so a transfer touching a wallet cannot
// interleave with another session writing the same wallet.
type SQLiteStore struct {
	db    *sql.DB
	locks accountLocks
}

// NewSQLiteStore opens (creating if needed) the database at dbPath and
// runs pending migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// FindUser implements users.Store.
func (s *SQLiteStore) FindUser(ctx context.Context, login string) (users.User, error) {
	var u users.User
	var createdAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT login, password_hash, created_at FROM users WHERE login = ?`, login).
		Scan(&u.Login, &u.PasswordHash, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return users.User{}, users.ErrNotFound
	}
	if err != nil {
		return users.User{}, fmt.Errorf("find user %s: %w", login, err)
	}
	u.CreatedAt = parseTime(createdAt)
	return u, nil
}

// CreateUser implements users.Store.
func (s *SQLiteStore) CreateUser(ctx context.Context, u users.User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (login, password_hash, created_at) VALUES (?, ?, ?)`,
		u.Login, u.PasswordHash, formatTime(u.CreatedAt))
	if err != nil {
		return fmt.Errorf("create user %s: %w", u.Login, err)
	}
	slog.InfoContext(ctx, "user registered", "login", u.Login)
	return nil
}

// LoadWallet implements ledger.WalletStore. Read failures are absorbed:
// the session starts with an empty wallet and a logged warning.
func (s *SQLiteStore) LoadWallet(ctx context.Context, login string) (*core.Wallet, error) {
	unlock := s.locks.lock(login)
	defer unlock()

	snap, err := s.loadSnapshot(ctx, login)
	if err != nil {
		slog.WarnContext(ctx, "failed to load wallet, starting empty",
			"login", login, "error", err)
		return core.NewWallet(), nil
	}
	return core.FromSnapshot(snap), nil
}

func (s *SQLiteStore) loadSnapshot(ctx context.Context, login string) (core.WalletSnapshot, error) {
	var snap core.WalletSnapshot

	err := s.db.QueryRowContext(ctx,
		`SELECT balance_cents FROM wallets WHERE login = ?`, login).
		Scan(&snap.BalanceCents)
	if errors.Is(err, sql.ErrNoRows) {
		return snap, nil // no wallet yet: empty snapshot
	}
	if err != nil {
		return snap, fmt.Errorf("load balance: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, description, amount_cents, category, created_at
		   FROM operations WHERE login = ? ORDER BY seq`, login)
	if err != nil {
		return snap, fmt.Errorf("load operations: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var op core.Operation
		var createdAt string
		if err := rows.Scan(&op.ID, &op.Kind, &op.Description, &op.Amount.Cents, &op.Category, &createdAt); err != nil {
			return snap, fmt.Errorf("scan operation: %w", err)
		}
		op.CreatedAt = parseTime(createdAt)
		snap.Operations = append(snap.Operations, op)
	}
	if err := rows.Err(); err != nil {
		return snap, fmt.Errorf("iterate operations: %w", err)
	}

	catRows, err := s.db.QueryContext(ctx,
		`SELECT name, limit_cents, spent_cents
		   FROM categories WHERE login = ? ORDER BY position`, login)
	if err != nil {
		return snap, fmt.Errorf("load categories: %w", err)
	}
	defer catRows.Close()
	for catRows.Next() {
		var c core.Category
		if err := catRows.Scan(&c.Name, &c.Limit.Cents, &c.Spent.Cents); err != nil {
			return snap, fmt.Errorf("scan category: %w", err)
		}
		snap.Categories = append(snap.Categories, c)
	}
	if err := catRows.Err(); err != nil {
		return snap, fmt.Errorf("iterate categories: %w", err)
	}

	return snap, nil
}

// SaveWallet implements ledger.WalletStore. The whole wallet is written
// in one transaction: the balance row is upserted and the operation and
// category sets are replaced.
func (s *SQLiteStore) SaveWallet(ctx context.Context, login string, w *core.Wallet) error {
	unlock := s.locks.lock(login)
	defer unlock()

	snap := w.Snapshot()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save wallet: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO wallets (login, balance_cents) VALUES (?, ?)
		 ON CONFLICT(login) DO UPDATE SET balance_cents = excluded.balance_cents`,
		login, snap.BalanceCents); err != nil {
		return fmt.Errorf("save balance: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM operations WHERE login = ?`, login); err != nil {
		return fmt.Errorf("clear operations: %w", err)
	}
	for i, op := range snap.Operations {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO operations (id, login, seq, kind, description, amount_cents, category, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			op.ID, login, i, string(op.Kind), op.Description, op.Amount.Cents, op.Category, formatTime(op.CreatedAt)); err != nil {
			return fmt.Errorf("save operation %s: %w", op.ID, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE login = ?`, login); err != nil {
		return fmt.Errorf("clear categories: %w", err)
	}
	for i, c := range snap.Categories {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO categories (login, position, name, limit_cents, spent_cents)
			 VALUES (?, ?, ?, ?, ?)`,
			login, i, c.Name, c.Limit.Cents, c.Spent.Cents); err != nil {
			return fmt.Errorf("save category %s: %w", c.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save wallet: %w", err)
	}

	slog.InfoContext(ctx, "wallet saved",
		"login", login,
		"balance_cents", snap.BalanceCents,
		"operations", len(snap.Operations))
	return nil
}

// accountLocks hands out one mutex per login.
type accountLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (a *accountLocks) lock(login string) func() {
	a.mu.Lock()
	if a.locks == nil {
		a.locks = make(map[string]*sync.Mutex)
	}
	l, ok := a.locks[login]
	if !ok {
		l = &sync.Mutex{}
		a.locks[login] = l
	}
	a.mu.Unlock()
	l.Lock()
	return l.Unlock
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
