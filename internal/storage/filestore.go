package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"finledger/internal/core"
	"finledger/internal/users"
)

const (
	registryFile     = "users.json"
	walletFilePrefix = "wallet_"
)

// FileStore keeps the registry in users.json and each wallet in its own
// wallet_<login>.json under a data directory. It serves small setups
// that do not want a database file.
type FileStore struct {
	dir   string
	locks accountLocks
}

// NewFileStore creates the data directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (f *FileStore) Close() error { return nil }

// FindUser implements users.Store.
func (f *FileStore) FindUser(ctx context.Context, login string) (users.User, error) {
	unlock := f.locks.lock(registryFile)
	defer unlock()

	reg, err := f.readRegistry(ctx)
	if err != nil {
		return users.User{}, err
	}
	u, ok := reg[login]
	if !ok {
		return users.User{}, users.ErrNotFound
	}
	return u, nil
}

// CreateUser implements users.Store.
func (f *FileStore) CreateUser(ctx context.Context, u users.User) error {
	unlock := f.locks.lock(registryFile)
	defer unlock()

	reg, err := f.readRegistry(ctx)
	if err != nil {
		return err
	}
	if _, ok := reg[u.Login]; ok {
		return users.ErrAlreadyExists
	}
	reg[u.Login] = u
	if err := f.writeJSON(registryFile, reg); err != nil {
		return fmt.Errorf("write user registry: %w", err)
	}
	slog.InfoContext(ctx, "user registered", "login", u.Login)
	return nil
}

func (f *FileStore) readRegistry(ctx context.Context) (map[string]users.User, error) {
	reg := make(map[string]users.User)
	data, err := os.ReadFile(filepath.Join(f.dir, registryFile))
	if errors.Is(err, fs.ErrNotExist) {
		return reg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read user registry: %w", err)
	}
	if err := json.Unmarshal(data, &reg); err != nil {
		// A broken registry would lock every account out; start fresh.
		slog.WarnContext(ctx, "user registry is corrupt, starting empty", "error", err)
		return make(map[string]users.User), nil
	}
	return reg, nil
}

// LoadWallet implements ledger.WalletStore. A missing or corrupt wallet
// file yields an empty wallet.
func (f *FileStore) LoadWallet(ctx context.Context, login string) (*core.Wallet, error) {
	unlock := f.locks.lock(login)
	defer unlock()

	data, err := os.ReadFile(f.walletPath(login))
	if errors.Is(err, fs.ErrNotExist) {
		return core.NewWallet(), nil
	}
	if err != nil {
		slog.WarnContext(ctx, "failed to read wallet file, starting empty",
			"login", login, "error", err)
		return core.NewWallet(), nil
	}

	var snap core.WalletSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		slog.WarnContext(ctx, "wallet file is corrupt, starting empty",
			"login", login, "error", err)
		return core.NewWallet(), nil
	}
	return core.FromSnapshot(snap), nil
}

// SaveWallet implements ledger.WalletStore. The file is written to a
// temp path first and renamed, so a crash mid-write leaves the previous
// wallet intact.
func (f *FileStore) SaveWallet(ctx context.Context, login string, w *core.Wallet) error {
	unlock := f.locks.lock(login)
	defer unlock()

	snap := w.Snapshot()
	if err := f.writeJSON(walletFilePrefix+login+".json", snap); err != nil {
		return fmt.Errorf("write wallet for %s: %w", login, err)
	}
	slog.InfoContext(ctx, "wallet saved",
		"login", login,
		"balance_cents", snap.BalanceCents,
		"operations", len(snap.Operations))
	return nil
}

func (f *FileStore) walletPath(login string) string {
	return filepath.Join(f.dir, walletFilePrefix+login+".json")
}

func (f *FileStore) writeJSON(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	path := filepath.Join(f.dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
