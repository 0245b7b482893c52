package amqp

import (
	"context"

	"finledger/internal/core"
	"finledger/internal/ledger"
)

// OperationPublisher adapts the AMQP client to the ledger engine's
// event port.
type OperationPublisher struct {
	client *Client
}

var _ ledger.EventPublisher = (*OperationPublisher)(nil)

func NewOperationPublisher(client *Client) *OperationPublisher {
	return &OperationPublisher{client: client}
}

func (p *OperationPublisher) PublishOperation(ctx context.Context, login string, op core.Operation) error {
	return p.client.PublishOperationEvent(ctx, &OperationEvent{
		Login:       login,
		OperationID: op.ID,
		Kind:        string(op.Kind),
		Description: op.Description,
		AmountCents: op.Amount.Cents,
		Category:    op.Category,
		Timestamp:   op.CreatedAt,
	})
}
