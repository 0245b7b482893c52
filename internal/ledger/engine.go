// Package ledger implements the account engine: income and expense
// recording, category budgets, statistics and peer-to-peer transfers.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"finledger/internal/core"
)

// Engine operates on one authenticated account's wallet. The wallet is
// loaded once at construction and owned exclusively by this instance
// until the session persists it.
type Engine struct {
	login    string
	wallet   *core.Wallet
	store    WalletStore
	accounts AccountResolver
	events   EventPublisher // optional
}

// Option configures an Engine.
type Option func(*Engine)

// WithEventPublisher attaches an operation event publisher.
func WithEventPublisher(p EventPublisher) Option {
	return func(e *Engine) { e.events = p }
}

// New loads the wallet for login from the store and binds the engine to
// it for the lifetime of the session.
func New(ctx context.Context, login string, store WalletStore, accounts AccountResolver, opts ...Option) (*Engine, error) {
	if strings.TrimSpace(login) == "" {
		return nil, fmt.Errorf("ledger: empty login")
	}
	w, err := store.LoadWallet(ctx, login)
	if err != nil {
		return nil, fmt.Errorf("load wallet for %s: %w", login, err)
	}
	e := &Engine{login: login, wallet: w, store: store, accounts: accounts}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Login returns the account this engine is bound to.
func (e *Engine) Login() string { return e.login }

// RecordIncome credits the wallet and appends an income operation.
// Amounts must be strictly positive; nothing is mutated on failure.
func (e *Engine) RecordIncome(ctx context.Context, description string, amount core.Money) ([]Notice, error) {
	if !amount.IsPositive() {
		return nil, core.ErrInvalidAmount
	}

	e.wallet.Credit(amount)
	op := core.NewIncome(description, amount)
	e.wallet.Record(op)
	e.publish(ctx, op)

	return e.balanceCheck(nil), nil
}

// RecordExpense debits the wallet, appends an expense operation and
// adds the amount to the category's running spend. A budget-exceeded
// notice is informational: the expense is recorded regardless.
func (e *Engine) RecordExpense(ctx context.Context, description string, amount core.Money, category string) ([]Notice, error) {
	if !amount.IsPositive() {
		return nil, core.ErrInvalidAmount
	}
	if strings.TrimSpace(category) == "" {
		return nil, core.ErrInvalidCategory
	}

	e.wallet.Debit(amount)
	op := core.NewExpense(description, amount, category)
	e.wallet.Record(op)

	cat := e.wallet.CategoryOrCreate(category)
	cat.AddSpent(amount)

	var notices []Notice
	if cat.OverLimit() {
		notices = append(notices, budgetExceededNotice(cat))
	}
	e.publish(ctx, op)

	return e.balanceCheck(notices), nil
}

// SetCategoryBudget replaces the category's limit. The set is absolute;
// the spend total is untouched. A limit of zero clears the budget.
func (e *Engine) SetCategoryBudget(category string, limit core.Money) error {
	if limit.Cents < 0 {
		return core.ErrInvalidAmount
	}
	if strings.TrimSpace(category) == "" {
		return core.ErrInvalidCategory
	}
	e.wallet.CategoryOrCreate(category).SetLimit(limit)
	return nil
}

// CategoryStat is one row of the per-category statistics.
type CategoryStat struct {
	Name      string
	Limit     core.Money
	Spent     core.Money
	Remaining core.Money
}

// CategoryStatistics returns one row per category in first-seen order.
// Remaining goes negative when a category is over budget. When no
// categories exist, the empty-state notice is returned instead of an
// empty table.
func (e *Engine) CategoryStatistics() ([]CategoryStat, []Notice) {
	cats := e.wallet.Categories()
	if len(cats) == 0 {
		return nil, []Notice{emptyCategoriesNotice()}
	}
	stats := make([]CategoryStat, 0, len(cats))
	for _, c := range cats {
		stats = append(stats, CategoryStat{
			Name:      c.Name,
			Limit:     c.Limit,
			Spent:     c.Spent,
			Remaining: c.Remaining(),
		})
	}
	return stats, nil
}

// TotalIncome folds over the whole history. Recomputed per call so it
// always agrees with the operation list.
func (e *Engine) TotalIncome() core.Money {
	var total core.Money
	for _, op := range e.wallet.Operations {
		if op.IsIncome() {
			total = total.Add(op.Amount)
		}
	}
	return total
}

// TotalExpense folds over the whole history.
func (e *Engine) TotalExpense() core.Money {
	var total core.Money
	for _, op := range e.wallet.Operations {
		if !op.IsIncome() {
			total = total.Add(op.Amount)
		}
	}
	return total
}

// Balance returns the incrementally maintained balance. This is the
// authoritative value; it is not recomputed from history.
func (e *Engine) Balance() core.Money {
	return e.wallet.Balance
}

// Operations returns the append-only history in insertion order.
func (e *Engine) Operations() []core.Operation {
	return e.wallet.Operations
}

// Transfer debits the sender as a regular expense under a synthetic
// "transfer to <recipient>" category (full budget semantics apply) and
// credits the recipient's wallet through a separate load-mutate-save
// cycle. Both sides are mutated before either is persisted; sender is
// saved first, then the recipient. A crash between the two saves leaves
// the sides inconsistent — there is no rollback.
func (e *Engine) Transfer(ctx context.Context, recipient, description string, amount core.Money) ([]Notice, error) {
	if !amount.IsPositive() {
		return nil, core.ErrInvalidAmount
	}
	// A self-transfer would hydrate a stale copy of this wallet below
	// and clobber the expense on save.
	if recipient == e.login {
		return nil, core.ErrAccountNotFound
	}
	exists, err := e.accounts.Resolve(ctx, recipient)
	if err != nil {
		return nil, fmt.Errorf("resolve recipient %s: %w", recipient, err)
	}
	if !exists {
		return nil, core.ErrAccountNotFound
	}

	notices, err := e.RecordExpense(ctx, description, amount, "transfer to "+recipient)
	if err != nil {
		return nil, err
	}

	// The recipient is not a live session: hydrate their wallet fresh
	// from storage and persist it immediately.
	rw, err := e.store.LoadWallet(ctx, recipient)
	if err != nil {
		return notices, fmt.Errorf("load recipient wallet: %w", err)
	}
	rw.Credit(amount)
	in := core.NewIncome("transfer from "+e.login, amount)
	rw.Record(in)

	if err := e.Save(ctx); err != nil {
		slog.ErrorContext(ctx, "failed to persist sender wallet after transfer",
			"login", e.login, "error", err)
	}
	if err := e.store.SaveWallet(ctx, recipient, rw); err != nil {
		return notices, fmt.Errorf("save recipient wallet: %w", err)
	}

	slog.InfoContext(ctx, "transfer completed",
		"from", e.login,
		"to", recipient,
		"amount_cents", amount.Cents)

	return notices, nil
}

// Save persists the engine's wallet through the store.
func (e *Engine) Save(ctx context.Context) error {
	return e.store.SaveWallet(ctx, e.login, e.wallet)
}

// balanceCheck appends the overdrawn notice after a mutation. It never
// blocks or reverses the operation.
func (e *Engine) balanceCheck(notices []Notice) []Notice {
	if e.wallet.Balance.Cents < 0 {
		notices = append(notices, overdrawnNotice(e.wallet.Balance))
	}
	return notices
}

func (e *Engine) publish(ctx context.Context, op core.Operation) {
	if e.events == nil {
		return
	}
	if err := e.events.PublishOperation(ctx, e.login, op); err != nil {
		slog.ErrorContext(ctx, "failed to publish operation event",
			"login", e.login, "operation_id", op.ID, "error", err)
	}
}
