package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"finledger/internal/core"
	"finledger/internal/ledger"
	"finledger/internal/render"
	"finledger/internal/users"
)

// Session runs the interactive terminal loop for one authenticated
// account: login or registration, then the numbered command menu.
type Session struct {
	in         *bufio.Scanner
	out        io.Writer
	directory  *users.Directory
	store      ledger.WalletStore
	engineOpts []ledger.Option

	engine *ledger.Engine
}

// NewSession wires a session over the given streams.
func NewSession(in io.Reader, out io.Writer, directory *users.Directory, store ledger.WalletStore, opts ...ledger.Option) *Session {
	return &Session{
		in:         bufio.NewScanner(in),
		out:        out,
		directory:  directory,
		store:      store,
		engineOpts: opts,
	}
}

// Run drives the session until the user exits or input ends. The wallet
// is saved on a clean exit.
func (s *Session) Run(ctx context.Context) error {
	fmt.Fprintln(s.out, "Welcome to your personal finance ledger!")

	user, err := s.authenticate(ctx)
	if err != nil {
		return err
	}
	if user == nil {
		fmt.Fprintln(s.out, "Authentication failed, exiting.")
		return nil
	}

	s.engine, err = ledger.New(ctx, user.Login, s.store, s.directory, s.engineOpts...)
	if err != nil {
		return fmt.Errorf("open ledger for %s: %w", user.Login, err)
	}

	for {
		s.printMenu()
		line, ok := s.readLine("")
		if !ok {
			// input closed: save what we have, best-effort
			s.saveWallet(ctx)
			return nil
		}

		switch strings.TrimSpace(line) {
		case "1":
			s.addIncome(ctx)
		case "2":
			s.addExpense(ctx)
		case "3":
			s.setCategoryBudget()
		case "4":
			s.listCategories()
		case "5":
			s.showOverallStats()
		case "6":
			s.showCategoryStats()
		case "7":
			s.transferFunds(ctx)
		case "8":
			if s.saveWallet(ctx) {
				fmt.Fprintln(s.out, "Data saved. Goodbye!")
			}
			return nil
		default:
			fmt.Fprintln(s.out, "Unknown command, try again.")
		}
	}
}

// authenticate logs in an existing account, or offers registration when
// the login is unknown. Returns nil without error when the user backs
// out.
func (s *Session) authenticate(ctx context.Context) (*users.User, error) {
	login, ok := s.readLine("Login: ")
	if !ok {
		return nil, nil
	}
	password, ok := s.readLine("Password: ")
	if !ok {
		return nil, nil
	}

	exists, err := s.directory.Exists(ctx, login)
	if err != nil {
		return nil, fmt.Errorf("look up login: %w", err)
	}

	if !exists {
		answer, ok := s.readLine("User not found. Register a new account? (y/n): ")
		if !ok || !strings.EqualFold(strings.TrimSpace(answer), "y") {
			return nil, nil
		}
		u, err := s.directory.Register(ctx, login, password)
		if err != nil {
			fmt.Fprintf(s.out, "Registration failed: %v\n", err)
			return nil, nil
		}
		fmt.Fprintln(s.out, "Registration successful!")
		return &u, nil
	}

	u, err := s.directory.Authenticate(ctx, login, password)
	if err != nil {
		if errors.Is(err, users.ErrBadCredential) {
			fmt.Fprintln(s.out, "Wrong password!")
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (s *Session) printMenu() {
	fmt.Fprint(s.out, `
Commands:
1. Add income
2. Add expense
3. Set (or change) a category budget
4. List categories
5. Show overall statistics (income/expense/balance)
6. Show per-category statistics
7. Transfer funds to another user
8. Exit (saves data)
Enter a command number: `)
}

func (s *Session) addIncome(ctx context.Context) {
	description, ok := s.readLine("Income description (e.g. Salary): ")
	if !ok {
		return
	}
	amount, ok := s.readAmount("Income amount: ")
	if !ok {
		return
	}

	notices, err := s.engine.RecordIncome(ctx, description, amount)
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintln(s.out, "Income recorded.")
	render.Notices(s.out, notices)
}

func (s *Session) addExpense(ctx context.Context) {
	description, ok := s.readLine("Expense description (e.g. Groceries): ")
	if !ok {
		return
	}
	amount, ok := s.readAmount("Expense amount: ")
	if !ok {
		return
	}
	category, ok := s.readLine("Expense category (e.g. Food, Taxi): ")
	if !ok {
		return
	}

	notices, err := s.engine.RecordExpense(ctx, description, amount, category)
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintln(s.out, "Expense recorded.")
	render.Notices(s.out, notices)
}

func (s *Session) setCategoryBudget() {
	category, ok := s.readLine("Category name: ")
	if !ok {
		return
	}
	limit, ok := s.readAmount("New limit (zero clears the budget): ")
	if !ok {
		return
	}

	if err := s.engine.SetCategoryBudget(category, limit); err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(s.out, "Budget for %q updated.\n", category)
}

func (s *Session) listCategories() {
	stats, notices := s.engine.CategoryStatistics()
	render.Notices(s.out, notices)
	if len(stats) > 0 {
		render.CategoryStats(s.out, stats)
	}
}

func (s *Session) showOverallStats() {
	render.Totals(s.out, s.engine.TotalIncome(), s.engine.TotalExpense(), s.engine.Balance())
	render.History(s.out, s.engine.Operations())
}

func (s *Session) showCategoryStats() {
	stats, notices := s.engine.CategoryStatistics()
	render.Notices(s.out, notices)
	if len(stats) > 0 {
		render.CategoryStats(s.out, stats)
	}
}

func (s *Session) transferFunds(ctx context.Context) {
	recipient, ok := s.readLine("Recipient login: ")
	if !ok {
		return
	}
	description, ok := s.readLine("Transfer description (e.g. Gift): ")
	if !ok {
		return
	}
	amount, ok := s.readAmount("Transfer amount: ")
	if !ok {
		return
	}

	notices, err := s.engine.Transfer(ctx, recipient, description, amount)
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(s.out, "Transferred %s to %s.\n", amount, recipient)
	render.Notices(s.out, notices)
}

// saveWallet persists the wallet best-effort: a failed save is reported
// and logged but never aborts the session with an error.
func (s *Session) saveWallet(ctx context.Context) bool {
	if err := s.engine.Save(ctx); err != nil {
		fmt.Fprintf(s.out, "Warning: failed to save wallet: %v\n", err)
		slog.ErrorContext(ctx, "failed to save wallet on exit",
			"login", s.engine.Login(), "error", err)
		return false
	}
	return true
}

// readLine prompts and reads one trimmed line. ok is false when input
// is exhausted.
func (s *Session) readLine(prompt string) (string, bool) {
	if prompt != "" {
		fmt.Fprint(s.out, prompt)
	}
	if !s.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(s.in.Text()), true
}

// readAmount keeps prompting until it gets a parseable decimal amount.
func (s *Session) readAmount(prompt string) (core.Money, bool) {
	for {
		line, ok := s.readLine(prompt)
		if !ok {
			return core.Money{}, false
		}
		cents, err := core.ParseDecimalToCents(line)
		if err != nil {
			fmt.Fprintln(s.out, "Invalid amount, enter a number like 123.45.")
			continue
		}
		return core.Money{Cents: cents}, true
	}
}
