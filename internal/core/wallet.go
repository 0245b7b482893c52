package core

// Wallet is the per-account container of balance, operation history and
// categories. It is pure data manipulation: validation and persistence
// are the caller's responsibility. The balance is maintained
// incrementally by Credit/Debit, never recomputed from history.
type Wallet struct {
	Balance    Money
	Operations []Operation

	categories map[string]*Category
	order      []string // category names in first-seen order
}

// NewWallet returns an empty wallet with zero balance.
func NewWallet() *Wallet {
	return &Wallet{categories: make(map[string]*Category)}
}

// Credit adds amount to the balance.
func (w *Wallet) Credit(amount Money) {
	w.Balance = w.Balance.Add(amount)
}

// Debit subtracts amount from the balance. The balance may go negative.
func (w *Wallet) Debit(amount Money) {
	w.Balance = w.Balance.Sub(amount)
}

// Record appends an operation to the history.
func (w *Wallet) Record(op Operation) {
	w.Operations = append(w.Operations, op)
}

// CategoryOrCreate returns the category with the given name, creating
// it with a zero limit on first reference. Idempotent per name.
func (w *Wallet) CategoryOrCreate(name string) *Category {
	if c, ok := w.categories[name]; ok {
		return c
	}
	c := &Category{Name: name}
	w.categories[name] = c
	w.order = append(w.order, name)
	return c
}

// Category returns the named category without creating it.
func (w *Wallet) Category(name string) (*Category, bool) {
	c, ok := w.categories[name]
	return c, ok
}

// Categories returns all categories in first-seen order, which keeps
// listings deterministic across calls.
func (w *Wallet) Categories() []*Category {
	out := make([]*Category, 0, len(w.order))
	for _, name := range w.order {
		out = append(out, w.categories[name])
	}
	return out
}

// WalletSnapshot is the persisted shape of a wallet. Storage backends
// marshal this, not the Wallet itself, so the category order survives
// round trips.
type WalletSnapshot struct {
	BalanceCents int64       `json:"balance_cents"`
	Operations   []Operation `json:"operations"`
	Categories   []Category  `json:"categories"`
}

// Snapshot captures the wallet state for persistence.
func (w *Wallet) Snapshot() WalletSnapshot {
	cats := make([]Category, 0, len(w.order))
	for _, name := range w.order {
		cats = append(cats, *w.categories[name])
	}
	ops := make([]Operation, len(w.Operations))
	copy(ops, w.Operations)
	return WalletSnapshot{
		BalanceCents: w.Balance.Cents,
		Operations:   ops,
		Categories:   cats,
	}
}

// FromSnapshot rebuilds a wallet from its persisted shape.
func FromSnapshot(s WalletSnapshot) *Wallet {
	w := NewWallet()
	w.Balance = Money{Cents: s.BalanceCents}
	w.Operations = append(w.Operations, s.Operations...)
	for _, c := range s.Categories {
		cat := w.CategoryOrCreate(c.Name)
		cat.Limit = c.Limit
		cat.Spent = c.Spent
	}
	return w
}
