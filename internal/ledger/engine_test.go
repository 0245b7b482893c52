package ledger

import (
	"context"
	"testing"

	"finledger/internal/core"
)

// memStore keeps wallet snapshots in a map, so every LoadWallet hands
// back a fresh instance the way the file and sqlite stores do.
type memStore struct {
	wallets map[string]core.WalletSnapshot
	saves   int
}

func newMemStore() *memStore {
	return &memStore{wallets: make(map[string]core.WalletSnapshot)}
}

func (s *memStore) LoadWallet(_ context.Context, login string) (*core.Wallet, error) {
	if snap, ok := s.wallets[login]; ok {
		return core.FromSnapshot(snap), nil
	}
	return core.NewWallet(), nil
}

func (s *memStore) SaveWallet(_ context.Context, login string, w *core.Wallet) error {
	s.wallets[login] = w.Snapshot()
	s.saves++
	return nil
}

type memResolver map[string]bool

func (r memResolver) Resolve(_ context.Context, login string) (bool, error) {
	return r[login], nil
}

func newTestEngine(t *testing.T, store *memStore, accounts memResolver) *Engine {
	t.Helper()
	e, err := New(context.Background(), "alice", store, accounts)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return e
}

func cents(v int64) core.Money { return core.Money{Cents: v} }

func TestBalanceEqualsIncomeMinusExpense(t *testing.T) {
	e := newTestEngine(t, newMemStore(), nil)
	ctx := context.Background()

	steps := []func() error{
		func() error { _, err := e.RecordIncome(ctx, "Salary", cents(100000)); return err },
		func() error { _, err := e.RecordExpense(ctx, "Groceries", cents(30000), "Food"); return err },
		func() error { _, err := e.RecordIncome(ctx, "Bonus", cents(5000)); return err },
		func() error { _, err := e.RecordExpense(ctx, "Taxi home", cents(1250), "Taxi"); return err },
	}
	for i, step := range steps {
		if err := step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		want := e.TotalIncome().Sub(e.TotalExpense())
		if e.Balance() != want {
			t.Fatalf("step %d: balance %v != income-expense %v", i, e.Balance(), want)
		}
	}
}

func TestRecordIncomeRejectsNonPositive(t *testing.T) {
	e := newTestEngine(t, newMemStore(), nil)
	ctx := context.Background()

	for _, amount := range []int64{0, -100} {
		if _, err := e.RecordIncome(ctx, "bad", cents(amount)); err != core.ErrInvalidAmount {
			t.Fatalf("amount %d: expected ErrInvalidAmount, got %v", amount, err)
		}
	}
	if e.Balance().Cents != 0 || len(e.Operations()) != 0 {
		t.Fatalf("failed income must not mutate the wallet")
	}
}

func TestRecordExpenseRejectsInvalidInput(t *testing.T) {
	e := newTestEngine(t, newMemStore(), nil)
	ctx := context.Background()

	if _, err := e.RecordExpense(ctx, "bad", cents(-1), "Food"); err != core.ErrInvalidAmount {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if _, err := e.RecordExpense(ctx, "bad", cents(100), "  "); err != core.ErrInvalidCategory {
		t.Fatalf("expected ErrInvalidCategory, got %v", err)
	}
	if e.Balance().Cents != 0 || len(e.Operations()) != 0 {
		t.Fatalf("failed expense must not mutate the wallet")
	}
	if stats, _ := e.CategoryStatistics(); stats != nil {
		t.Fatalf("failed expense must not create categories")
	}
}

func TestSetCategoryBudgetOverwrites(t *testing.T) {
	e := newTestEngine(t, newMemStore(), nil)
	ctx := context.Background()

	if _, err := e.RecordExpense(ctx, "Lunch", cents(5000), "Food"); err != nil {
		t.Fatal(err)
	}
	if err := e.SetCategoryBudget("Food", cents(10000)); err != nil {
		t.Fatal(err)
	}
	if err := e.SetCategoryBudget("Food", cents(4000)); err != nil {
		t.Fatal(err)
	}

	stats, _ := e.CategoryStatistics()
	if len(stats) != 1 {
		t.Fatalf("expected one category, got %d", len(stats))
	}
	got := stats[0]
	if got.Limit.Cents != 4000 {
		t.Fatalf("expected limit 4000 after overwrite, got %d", got.Limit.Cents)
	}
	if got.Spent.Cents != 5000 {
		t.Fatalf("setting a budget must not touch spent, got %d", got.Spent.Cents)
	}

	if err := e.SetCategoryBudget("Food", cents(-1)); err != core.ErrInvalidAmount {
		t.Fatalf("expected ErrInvalidAmount for negative limit, got %v", err)
	}
	if err := e.SetCategoryBudget("", cents(100)); err != core.ErrInvalidCategory {
		t.Fatalf("expected ErrInvalidCategory for empty name, got %v", err)
	}
}

func TestCategorySpentMatchesExpenseHistory(t *testing.T) {
	e := newTestEngine(t, newMemStore(), nil)
	ctx := context.Background()

	expenses := []struct {
		amount   int64
		category string
	}{
		{1000, "Food"},
		{2500, "Taxi"},
		{500, "Food"},
		{300, "Food"},
	}
	for _, x := range expenses {
		if _, err := e.RecordExpense(ctx, "x", cents(x.amount), x.category); err != nil {
			t.Fatal(err)
		}
	}

	sums := map[string]int64{}
	for _, op := range e.Operations() {
		if !op.IsIncome() {
			sums[op.Category] += op.Amount.Cents
		}
	}
	stats, _ := e.CategoryStatistics()
	for _, s := range stats {
		if s.Spent.Cents != sums[s.Name] {
			t.Fatalf("category %s: spent %d != history sum %d", s.Name, s.Spent.Cents, sums[s.Name])
		}
	}
}

func TestSalaryScenario(t *testing.T) {
	e := newTestEngine(t, newMemStore(), nil)

	notices, err := e.RecordIncome(context.Background(), "Salary", cents(100000))
	if err != nil {
		t.Fatal(err)
	}
	if len(notices) != 0 {
		t.Fatalf("unexpected notices: %v", notices)
	}
	if e.Balance().Cents != 100000 || e.TotalIncome().Cents != 100000 || e.TotalExpense().Cents != 0 {
		t.Fatalf("unexpected totals: balance=%d income=%d expense=%d",
			e.Balance().Cents, e.TotalIncome().Cents, e.TotalExpense().Cents)
	}
}

func TestBudgetNoticeIsNotRetroactive(t *testing.T) {
	e := newTestEngine(t, newMemStore(), nil)
	ctx := context.Background()
	if _, err := e.RecordIncome(ctx, "Salary", cents(100000)); err != nil {
		t.Fatal(err)
	}

	// No limit yet: no notice even though the limit set later is lower.
	notices, err := e.RecordExpense(ctx, "Lunch", cents(5000), "Food")
	if err != nil {
		t.Fatal(err)
	}
	for _, n := range notices {
		if n.Kind == NoticeBudgetExceeded {
			t.Fatalf("notice must not fire before a limit exists")
		}
	}

	if err := e.SetCategoryBudget("Food", cents(4000)); err != nil {
		t.Fatal(err)
	}

	// Setting the limit below spent emits nothing retroactively; the
	// statistics simply show the negative remainder.
	stats, _ := e.CategoryStatistics()
	if stats[0].Limit.Cents != 4000 || stats[0].Spent.Cents != 5000 || stats[0].Remaining.Cents != -1000 {
		t.Fatalf("unexpected stats: %+v", stats[0])
	}

	// The next expense against Food trips the notice.
	notices, err = e.RecordExpense(ctx, "Coffee", cents(300), "Food")
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, n := range notices {
		if n.Kind == NoticeBudgetExceeded && n.Category == "Food" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected budget-exceeded notice, got %v", notices)
	}
}

func TestOverdrawnNotice(t *testing.T) {
	e := newTestEngine(t, newMemStore(), nil)
	ctx := context.Background()

	notices, err := e.RecordExpense(ctx, "Rent", cents(50000), "Housing")
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, n := range notices {
		if n.Kind == NoticeOverdrawn {
			found = true
			if n.Balance.Cents != -50000 {
				t.Fatalf("expected balance -50000 in notice, got %d", n.Balance.Cents)
			}
		}
	}
	if !found {
		t.Fatalf("expected overdrawn notice, got %v", notices)
	}
	// The expense itself still went through.
	if len(e.Operations()) != 1 {
		t.Fatalf("overdrawn is a warning, not an error")
	}
}

func TestCategoryStatisticsEmptyState(t *testing.T) {
	e := newTestEngine(t, newMemStore(), nil)
	stats, notices := e.CategoryStatistics()
	if stats != nil {
		t.Fatalf("expected no stats, got %v", stats)
	}
	if len(notices) != 1 || notices[0].Kind != NoticeEmptyCategories {
		t.Fatalf("expected empty-categories notice, got %v", notices)
	}
}

func TestTransferUnknownRecipient(t *testing.T) {
	store := newMemStore()
	e := newTestEngine(t, store, memResolver{})
	ctx := context.Background()
	if _, err := e.RecordIncome(ctx, "Salary", cents(100000)); err != nil {
		t.Fatal(err)
	}

	_, err := e.Transfer(ctx, "bob", "gift", cents(10000))
	if err != core.ErrAccountNotFound {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
	if e.Balance().Cents != 100000 {
		t.Fatalf("sender balance must be unchanged, got %d", e.Balance().Cents)
	}
	if len(e.Operations()) != 1 {
		t.Fatalf("no operation may be recorded for a failed transfer")
	}
}

func TestTransferToSelfRejected(t *testing.T) {
	store := newMemStore()
	e := newTestEngine(t, store, memResolver{"alice": true})
	ctx := context.Background()
	if _, err := e.RecordIncome(ctx, "Salary", cents(100000)); err != nil {
		t.Fatal(err)
	}
	savesBefore := store.saves

	_, err := e.Transfer(ctx, "alice", "round trip", cents(10000))
	if err != core.ErrAccountNotFound {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
	if e.Balance().Cents != 100000 {
		t.Fatalf("balance must be unchanged, got %d", e.Balance().Cents)
	}
	if len(e.Operations()) != 1 {
		t.Fatalf("no operation may be recorded for a self-transfer")
	}
	if store.saves != savesBefore {
		t.Fatalf("self-transfer must not persist anything")
	}
}

func TestTransferRejectsNonPositiveAmount(t *testing.T) {
	e := newTestEngine(t, newMemStore(), memResolver{"bob": true})
	if _, err := e.Transfer(context.Background(), "bob", "gift", cents(0)); err != core.ErrInvalidAmount {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestTransferMovesFunds(t *testing.T) {
	store := newMemStore()
	e := newTestEngine(t, store, memResolver{"bob": true})
	ctx := context.Background()
	if _, err := e.RecordIncome(ctx, "Salary", cents(100000)); err != nil {
		t.Fatal(err)
	}

	if _, err := e.Transfer(ctx, "bob", "gift", cents(10000)); err != nil {
		t.Fatal(err)
	}

	if e.Balance().Cents != 90000 {
		t.Fatalf("expected sender balance 90000, got %d", e.Balance().Cents)
	}
	last := e.Operations()[len(e.Operations())-1]
	if last.IsIncome() || last.Category != "transfer to bob" {
		t.Fatalf("expected expense under transfer category, got %+v", last)
	}

	// Recipient side was persisted immediately.
	bob, err := store.LoadWallet(ctx, "bob")
	if err != nil {
		t.Fatal(err)
	}
	if bob.Balance.Cents != 10000 {
		t.Fatalf("expected recipient balance 10000, got %d", bob.Balance.Cents)
	}
	if len(bob.Operations) != 1 || !bob.Operations[0].IsIncome() {
		t.Fatalf("expected one income operation on recipient, got %v", bob.Operations)
	}
	if bob.Operations[0].Description != "transfer from alice" {
		t.Fatalf("recipient operation must name the sender, got %q", bob.Operations[0].Description)
	}

	// Both sides persisted: sender first, then recipient.
	if store.saves != 2 {
		t.Fatalf("expected 2 saves, got %d", store.saves)
	}
}

func TestTransferCountsAgainstBudget(t *testing.T) {
	e := newTestEngine(t, newMemStore(), memResolver{"bob": true})
	ctx := context.Background()
	if _, err := e.RecordIncome(ctx, "Salary", cents(100000)); err != nil {
		t.Fatal(err)
	}
	if err := e.SetCategoryBudget("transfer to bob", cents(5000)); err != nil {
		t.Fatal(err)
	}

	notices, err := e.Transfer(ctx, "bob", "gift", cents(6000))
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, n := range notices {
		if n.Kind == NoticeBudgetExceeded && n.Category == "transfer to bob" {
			found = true
		}
	}
	if !found {
		t.Fatalf("transfer must honor budget semantics, got %v", notices)
	}
}

func TestEngineSessionRoundTrip(t *testing.T) {
	store := newMemStore()
	ctx := context.Background()

	e := newTestEngine(t, store, nil)
	if _, err := e.RecordIncome(ctx, "Salary", cents(100000)); err != nil {
		t.Fatal(err)
	}
	if _, err := e.RecordExpense(ctx, "Groceries", cents(2500), "Food"); err != nil {
		t.Fatal(err)
	}
	if err := e.Save(ctx); err != nil {
		t.Fatal(err)
	}

	// A new session sees exactly the state the previous one saved.
	e2 := newTestEngine(t, store, nil)
	if e2.Balance().Cents != 97500 {
		t.Fatalf("expected balance 97500 after reload, got %d", e2.Balance().Cents)
	}
	if len(e2.Operations()) != 2 {
		t.Fatalf("expected 2 operations after reload, got %d", len(e2.Operations()))
	}
	stats, _ := e2.CategoryStatistics()
	if len(stats) != 1 || stats[0].Name != "Food" || stats[0].Spent.Cents != 2500 {
		t.Fatalf("unexpected category stats after reload: %v", stats)
	}
}
