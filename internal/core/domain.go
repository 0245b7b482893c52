package core

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	Income  OperationKind = "income"
	Expense OperationKind = "expense"
)

type (
	// OperationKind tells incomes and expenses apart.
	OperationKind string

	// Operation is one immutable income or expense record. Once created
	// it is appended to the owning wallet and never mutated or removed.
	Operation struct {
		ID          string        `json:"id"`
		Kind        OperationKind `json:"kind"`
		Description string        `json:"description"`
		Amount      Money         `json:"amount"`
		Category    string        `json:"category,omitempty"` // set only for expenses
		CreatedAt   time.Time     `json:"created_at"`
	}

	// Category is a named expense bucket. Limit of zero means no limit
	// is set; Spent only ever grows.
	Category struct {
		Name  string `json:"name"`
		Limit Money  `json:"limit"`
		Spent Money  `json:"spent"`
	}
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidCategory = errors.New("invalid category")
	ErrAccountNotFound = errors.New("account not found")
)

// NewIncome creates an income operation stamped with the current time.
func NewIncome(description string, amount Money) Operation {
	return Operation{
		ID:          uuid.NewString(),
		Kind:        Income,
		Description: description,
		Amount:      amount,
		CreatedAt:   time.Now().UTC(),
	}
}

// NewExpense creates an expense operation against a category.
func NewExpense(description string, amount Money, category string) Operation {
	return Operation{
		ID:          uuid.NewString(),
		Kind:        Expense,
		Description: description,
		Amount:      amount,
		Category:    category,
		CreatedAt:   time.Now().UTC(),
	}
}

// IsIncome reports whether the operation credits the wallet.
func (o Operation) IsIncome() bool { return o.Kind == Income }

// String renders the operation as a single history line.
func (o Operation) String() string {
	ts := o.CreatedAt.Format("2006-01-02 15:04:05")
	if o.IsIncome() {
		return fmt.Sprintf("[income] %s: +%s (%s)", o.Description, o.Amount, ts)
	}
	return fmt.Sprintf("[expense] %s (%s): -%s (%s)", o.Description, o.Category, o.Amount, ts)
}

// SetLimit replaces the budget limit. The set is absolute, not additive.
func (c *Category) SetLimit(limit Money) {
	c.Limit = limit
}

// AddSpent increases the running spend total.
func (c *Category) AddSpent(amount Money) {
	c.Spent = c.Spent.Add(amount)
}

// Remaining returns Limit - Spent; negative when over budget.
func (c *Category) Remaining() Money {
	return c.Limit.Sub(c.Spent)
}

// OverLimit reports whether a set limit has been exceeded. A zero limit
// means no limit and never trips.
func (c *Category) OverLimit() bool {
	return c.Limit.IsPositive() && c.Spent.Cents > c.Limit.Cents
}
