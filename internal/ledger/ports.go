package ledger

import (
	"context"

	"finledger/internal/core"
)

// WalletStore loads and saves wallets by account login. Implementations
// absorb read failures and hand back an empty wallet instead of an
// error, so a corrupt file or missing row never kills a session.
type WalletStore interface {
	LoadWallet(ctx context.Context, login string) (*core.Wallet, error)
	SaveWallet(ctx context.Context, login string, w *core.Wallet) error
}

// AccountResolver answers whether a login belongs to a registered
// account. Used by Transfer to validate the recipient.
type AccountResolver interface {
	Resolve(ctx context.Context, login string) (bool, error)
}

// EventPublisher receives every recorded operation for asynchronous
// export. Publishing is best-effort: failures are logged, never
// surfaced to the user.
type EventPublisher interface {
	PublishOperation(ctx context.Context, login string, op core.Operation) error
}
