// Package direct provides a direct event publisher that writes to storage.
package direct

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tjfontaine/movi-transport-agent/internal/core/domain"
	"github.com/tjfontaine/movi-transport-agent/internal/core/ports"
)

// Publisher implements ports.EventPublisher by writing directly to storage.
// This is the default implementation for single-instance deployments.
type Publisher struct {
	store ports.ActionEventStore
}

var _ ports.EventPublisher = (*Publisher)(nil)

// NewPublisher creates a new direct event publisher.
func NewPublisher(store ports.ActionEventStore) (*Publisher, error) {
	if store == nil {
		return nil, fmt.Errorf("storage provider required")
	}

	return &Publisher{
		store: store,
	}, nil
}

// Publish writes an action event directly to storage, filling in the id
// and timestamp when the caller left them empty.
func (p *Publisher) Publish(ctx context.Context, event *domain.ActionEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	return p.store.AppendActionEvent(ctx, event)
}

// Close is a no-op for direct publisher.
func (p *Publisher) Close() error {
	return nil
}
