package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"finledger/internal/core"
	"finledger/internal/ledger"
	"finledger/internal/storage"
	"finledger/internal/users"
)

func newTestSession(t *testing.T, dir, script string) (*Session, *bytes.Buffer) {
	t.Helper()
	store, err := storage.NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	s := NewSession(strings.NewReader(script), &out, users.NewDirectory(store), store)
	return s, &out
}

func TestSessionRegisterRecordAndExit(t *testing.T) {
	dir := t.TempDir()
	script := strings.Join([]string{
		"alice", "s3cret", "y", // register
		"1", "Salary", "1500", // add income
		"2", "Groceries", "125.50", "food", // add expense
		"8", // exit with save
	}, "\n") + "\n"

	s, out := newTestSession(t, dir, script)
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	for _, want := range []string{
		"Registration successful",
		"Income recorded",
		"Expense recorded",
		"Data saved",
	} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}

	// a second session sees the persisted wallet
	script2 := strings.Join([]string{"alice", "s3cret", "5", "8"}, "\n") + "\n"
	s2, out2 := newTestSession(t, dir, script2)
	if err := s2.Run(context.Background()); err != nil {
		t.Fatalf("second run: %v", err)
	}
	for _, want := range []string{"1500.00", "125.50", "1374.50"} {
		if !strings.Contains(out2.String(), want) {
			t.Errorf("stats missing %q:\n%s", want, out2.String())
		}
	}
}

func TestSessionWrongPassword(t *testing.T) {
	dir := t.TempDir()

	s, _ := newTestSession(t, dir, "alice\npw\ny\n8\n")
	if err := s.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	s2, out := newTestSession(t, dir, "alice\nwrong\n")
	if err := s2.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Wrong password!") {
		t.Errorf("expected wrong-password message:\n%s", out.String())
	}
}

func TestSessionDeclineRegistration(t *testing.T) {
	s, out := newTestSession(t, t.TempDir(), "ghost\npw\nn\n")
	if err := s.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Authentication failed") {
		t.Errorf("expected authentication-failed message:\n%s", out.String())
	}
}

func TestSessionRepromptsOnBadAmount(t *testing.T) {
	script := strings.Join([]string{
		"alice", "pw", "y",
		"1", "Salary", "abc", "100",
		"8",
	}, "\n") + "\n"

	s, out := newTestSession(t, t.TempDir(), script)
	if err := s.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Invalid amount") {
		t.Errorf("expected re-prompt on bad amount:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "Income recorded") {
		t.Errorf("expected income to be recorded after re-prompt:\n%s", out.String())
	}
}

func TestSessionTransferToUnknownUser(t *testing.T) {
	script := strings.Join([]string{
		"alice", "pw", "y",
		"1", "Salary", "1000",
		"7", "bob", "Gift", "100",
		"8",
	}, "\n") + "\n"

	s, out := newTestSession(t, t.TempDir(), script)
	if err := s.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "account not found") {
		t.Errorf("expected account-not-found error:\n%s", out.String())
	}
}

func TestSessionListCategoriesShowsBudgets(t *testing.T) {
	script := strings.Join([]string{
		"alice", "pw", "y",
		"1", "Salary", "1000",
		"3", "food", "400", // set budget
		"2", "Groceries", "125.50", "food",
		"4", // list categories
		"8",
	}, "\n") + "\n"

	s, out := newTestSession(t, t.TempDir(), script)
	if err := s.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	// the listing carries limit, spent and remaining, not just names
	for _, want := range []string{"CATEGORY", "food", "400.00", "125.50", "274.50"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("category listing missing %q:\n%s", want, out.String())
		}
	}
}

// brokenSaveStore loads normally but fails every save.
type brokenSaveStore struct {
	ledger.WalletStore
}

func (b brokenSaveStore) SaveWallet(_ context.Context, _ string, _ *core.Wallet) error {
	return errors.New("disk full")
}

func TestSessionSaveFailureExitsCleanly(t *testing.T) {
	store, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	script := strings.Join([]string{
		"alice", "pw", "y",
		"1", "Salary", "1000",
		"8",
	}, "\n") + "\n"
	var out bytes.Buffer
	s := NewSession(strings.NewReader(script), &out,
		users.NewDirectory(store), brokenSaveStore{WalletStore: store})

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("a failed save must not end the session with an error, got %v", err)
	}
	if !strings.Contains(out.String(), "failed to save wallet") {
		t.Errorf("expected a save warning:\n%s", out.String())
	}
}

func TestSessionTransferBetweenUsers(t *testing.T) {
	dir := t.TempDir()

	// register bob first
	s, _ := newTestSession(t, dir, "bob\npw\ny\n8\n")
	if err := s.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	script := strings.Join([]string{
		"alice", "pw", "y",
		"1", "Salary", "1000",
		"7", "bob", "Gift", "100",
		"8",
	}, "\n") + "\n"
	s2, out := newTestSession(t, dir, script)
	if err := s2.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Transferred 100.00 to bob") {
		t.Errorf("expected transfer confirmation:\n%s", out.String())
	}

	// bob sees the credited funds
	s3, out3 := newTestSession(t, dir, "bob\npw\n5\n8\n")
	if err := s3.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out3.String(), "transfer from alice") {
		t.Errorf("expected transfer income in bob's history:\n%s", out3.String())
	}
}
