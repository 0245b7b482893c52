// Package export appends recorded operations to an external statement:
// a local CSV file or a Google Sheets spreadsheet.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"finledger/internal/amqp"
)

// StatementWriter appends one operation row to a statement.
type StatementWriter interface {
	AppendOperation(ctx context.Context, event *amqp.OperationEvent) error
}

var statementHeader = []string{"date", "login", "kind", "description", "amount", "category"}

// CSVStatement appends rows to a local CSV file, writing the header on
// first use.
type CSVStatement struct {
	mu   sync.Mutex
	path string
}

var _ StatementWriter = (*CSVStatement)(nil)

func NewCSVStatement(path string) (*CSVStatement, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create statement directory: %w", err)
	}
	return &CSVStatement{path: path}, nil
}

func (s *CSVStatement) AppendOperation(_ context.Context, event *amqp.OperationEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, err := os.Stat(s.path)
	isNew := os.IsNotExist(err) || (err == nil && info.Size() == 0)

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open statement file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if isNew {
		if err := w.Write(statementHeader); err != nil {
			return fmt.Errorf("write statement header: %w", err)
		}
	}
	if err := w.Write(StatementRow(event)); err != nil {
		return fmt.Errorf("write statement row: %w", err)
	}
	w.Flush()
	return w.Error()
}

// StatementRow formats one operation event as a statement row.
func StatementRow(event *amqp.OperationEvent) []string {
	return []string{
		event.Timestamp.UTC().Format(time.RFC3339),
		event.Login,
		event.Kind,
		event.Description,
		formatAmount(event.AmountCents),
		event.Category,
	}
}

func formatAmount(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return sign + strconv.FormatInt(cents/100, 10) + "." + fmt.Sprintf("%02d", cents%100)
}
