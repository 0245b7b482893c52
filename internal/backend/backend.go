// Package backend selects and constructs the persistence layer.
package backend

import (
	"context"
	"fmt"
	"log/slog"

	"finledger/internal/config"
	"finledger/internal/ledger"
	"finledger/internal/storage"
	"finledger/internal/users"
)

// Type identifies a persistence backend.
type Type string

const (
	SQLiteBackend Type = "sqlite"
	FileBackend   Type = "file"
)

func (t Type) IsValid() bool {
	switch t {
	case SQLiteBackend, FileBackend:
		return true
	}
	return false
}

func (t Type) String() string { return string(t) }

// Store is what every backend provides: the wallet store and the user
// registry live in the same place.
type Store interface {
	ledger.WalletStore
	users.Store
	Close() error
}

// Result bundles a constructed backend with its cleanup.
type Result struct {
	Store   Store
	Cleanup func() error
}

// Factory constructs backends from configuration.
type Factory interface {
	CreateBackend(ctx context.Context, cfg *config.Config) (*Result, error)
}

// DefaultFactory implements Factory.
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a backend factory.
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

// CreateBackend implements Factory.CreateBackend.
func (f *DefaultFactory) CreateBackend(ctx context.Context, cfg *config.Config) (*Result, error) {
	t := Type(cfg.DataBackend)
	if !t.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", cfg.DataBackend)
	}

	switch t {
	case SQLiteBackend:
		store, err := storage.NewSQLiteStore(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite store: %w", err)
		}
		f.logger.InfoContext(ctx, "initialized sqlite backend", "db_path", cfg.SQLiteDBPath)
		return &Result{Store: store, Cleanup: store.Close}, nil

	case FileBackend:
		store, err := storage.NewFileStore(cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("initialize file store: %w", err)
		}
		f.logger.InfoContext(ctx, "initialized file backend", "data_dir", cfg.DataDir)
		return &Result{Store: store, Cleanup: store.Close}, nil

	default:
		return nil, fmt.Errorf("unsupported backend type: %s", t)
	}
}
