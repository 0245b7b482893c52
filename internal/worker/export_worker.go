// Package worker consumes operation events and appends them to the
// configured statement target.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"finledger/internal/amqp"
	"finledger/internal/export"
)

// ExportWorker appends every consumed operation event to a statement.
type ExportWorker struct {
	writer export.StatementWriter
}

func NewExportWorker(writer export.StatementWriter) *ExportWorker {
	return &ExportWorker{writer: writer}
}

// HandleEvent processes a single operation event. Returning an error
// requeues the message.
func (w *ExportWorker) HandleEvent(ctx context.Context, event *amqp.OperationEvent) error {
	if event.Login == "" || event.OperationID == "" {
		return fmt.Errorf("malformed operation event: login=%q id=%q", event.Login, event.OperationID)
	}

	if err := w.writer.AppendOperation(ctx, event); err != nil {
		return fmt.Errorf("append operation %s: %w", event.OperationID, err)
	}

	slog.InfoContext(ctx, "exported operation",
		"login", event.Login,
		"operation_id", event.OperationID,
		"kind", event.Kind,
		"amount_cents", event.AmountCents)
	return nil
}

// Run consumes events from the queue until the context is cancelled,
// re-dialing the broker when the connection drops.
func (w *ExportWorker) Run(ctx context.Context, client *amqp.Client) error {
	return client.ConsumeOperationEventsUntilCancel(ctx, func(event *amqp.OperationEvent) error {
		return w.HandleEvent(ctx, event)
	})
}
