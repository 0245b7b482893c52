package core

import "testing"

func TestWalletBalanceMutation(t *testing.T) {
	w := NewWallet()
	w.Credit(Money{Cents: 1000})
	w.Debit(Money{Cents: 300})
	if w.Balance.Cents != 700 {
		t.Fatalf("expected balance 700, got %d", w.Balance.Cents)
	}
	w.Debit(Money{Cents: 1000})
	if w.Balance.Cents != -300 {
		t.Fatalf("expected negative balance -300, got %d", w.Balance.Cents)
	}
}

func TestCategoryOrCreateIdempotent(t *testing.T) {
	w := NewWallet()
	a := w.CategoryOrCreate("Food")
	b := w.CategoryOrCreate("Food")
	if a != b {
		t.Fatalf("expected the same category instance")
	}
	if !a.Limit.IsZero() || !a.Spent.IsZero() {
		t.Fatalf("new category should start with zero limit and spend")
	}
	if _, ok := w.Category("Taxi"); ok {
		t.Fatalf("lookup must not create categories")
	}
}

func TestCategoriesOrderIsDeterministic(t *testing.T) {
	w := NewWallet()
	for _, name := range []string{"Zoo", "Food", "Taxi"} {
		w.CategoryOrCreate(name)
	}
	got := w.Categories()
	want := []string{"Zoo", "Food", "Taxi"}
	if len(got) != len(want) {
		t.Fatalf("expected %d categories, got %d", len(want), len(got))
	}
	for i, c := range got {
		if c.Name != want[i] {
			t.Fatalf("position %d: expected %q, got %q", i, want[i], c.Name)
		}
	}
}

func TestCategoryOverLimit(t *testing.T) {
	c := &Category{Name: "Food"}
	c.AddSpent(Money{Cents: 500})
	if c.OverLimit() {
		t.Fatalf("unset limit must never trip")
	}
	c.SetLimit(Money{Cents: 400})
	if !c.OverLimit() {
		t.Fatalf("expected over limit with spent=500 limit=400")
	}
	if c.Remaining().Cents != -100 {
		t.Fatalf("expected remaining -100, got %d", c.Remaining().Cents)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	w := NewWallet()
	w.Credit(Money{Cents: 10000})
	w.Record(NewIncome("Salary", Money{Cents: 10000}))
	w.Debit(Money{Cents: 2500})
	w.Record(NewExpense("Groceries", Money{Cents: 2500}, "Food"))
	cat := w.CategoryOrCreate("Food")
	cat.AddSpent(Money{Cents: 2500})
	cat.SetLimit(Money{Cents: 30000})
	w.CategoryOrCreate("Taxi")

	got := FromSnapshot(w.Snapshot())

	if got.Balance != w.Balance {
		t.Fatalf("balance mismatch: %v != %v", got.Balance, w.Balance)
	}
	if len(got.Operations) != len(w.Operations) {
		t.Fatalf("operation count mismatch")
	}
	for i := range w.Operations {
		if got.Operations[i] != w.Operations[i] {
			t.Fatalf("operation %d mismatch: %v != %v", i, got.Operations[i], w.Operations[i])
		}
	}
	wantCats := w.Categories()
	gotCats := got.Categories()
	if len(gotCats) != len(wantCats) {
		t.Fatalf("category count mismatch")
	}
	for i := range wantCats {
		if *gotCats[i] != *wantCats[i] {
			t.Fatalf("category %d mismatch: %v != %v", i, *gotCats[i], *wantCats[i])
		}
	}
}
