// Package render formats engine output for the terminal: statistics
// tables, operation history and notices.
package render

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"finledger/internal/core"
	"finledger/internal/ledger"
)

// CategoryStats writes the per-category statistics table.
func CategoryStats(w io.Writer, stats []ledger.CategoryStat) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Category", "Limit", "Spent", "Remaining"})

	for _, s := range stats {
		limit := "-"
		remaining := "-"
		if !s.Limit.IsZero() {
			limit = s.Limit.String()
			remaining = s.Remaining.String()
		}
		table.Append([]string{s.Name, limit, s.Spent.String(), remaining})
	}

	table.Render()
}

// Totals writes the income/expense/balance summary table.
func Totals(w io.Writer, income, expense, balance core.Money) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Total Income", "Total Expense", "Balance"})
	table.Append([]string{income.String(), expense.String(), balance.String()})
	table.Render()
}

// History writes the operation list, oldest first.
func History(w io.Writer, ops []core.Operation) {
	if len(ops) == 0 {
		fmt.Fprintln(w, "no operations yet")
		return
	}
	for _, op := range ops {
		fmt.Fprintln(w, op.String())
	}
}

// Notices writes warnings produced by the engine, one per line.
func Notices(w io.Writer, notices []ledger.Notice) {
	for _, n := range notices {
		fmt.Fprintf(w, "! %s\n", n.Message)
	}
}
