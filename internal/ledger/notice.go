package ledger

import (
	"fmt"

	"finledger/internal/core"
)

const (
	NoticeBudgetExceeded  NoticeKind = "budget_exceeded"
	NoticeOverdrawn       NoticeKind = "overdrawn"
	NoticeEmptyCategories NoticeKind = "empty_categories"
)

type (
	// NoticeKind identifies a non-fatal warning condition.
	NoticeKind string

	// Notice is a structured warning emitted alongside a successful
	// operation. The engine never formats console output; the
	// presentation layer renders these.
	Notice struct {
		Kind     NoticeKind
		Message  string
		Category string
		Limit    core.Money
		Spent    core.Money
		Balance  core.Money
	}
)

func budgetExceededNotice(c *core.Category) Notice {
	return Notice{
		Kind:     NoticeBudgetExceeded,
		Message:  fmt.Sprintf("budget limit exceeded for category %q: spent %s of %s", c.Name, c.Spent, c.Limit),
		Category: c.Name,
		Limit:    c.Limit,
		Spent:    c.Spent,
	}
}

func overdrawnNotice(balance core.Money) Notice {
	return Notice{
		Kind:    NoticeOverdrawn,
		Message: fmt.Sprintf("balance is negative: %s", balance),
		Balance: balance,
	}
}

func emptyCategoriesNotice() Notice {
	return Notice{
		Kind:    NoticeEmptyCategories,
		Message: "no categories yet",
	}
}
