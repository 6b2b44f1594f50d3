// Package ports defines the core interfaces for the transport backend.
package ports

import (
	"context"

	"github.com/tjfontaine/movi-transport-agent/internal/core/domain"
	"github.com/tjfontaine/movi-transport-agent/internal/pkg/config"
)

// ConfigProvider loads and manages configuration.
// Implementations: file-based (default), static.
type ConfigProvider interface {
	Load(ctx context.Context) (*config.Config, error)
	Watch(ctx context.Context, onChange func(*config.Config)) error
	Close() error
}

// EventPublisher publishes agent action events.
// Implementations: direct storage (default).
type EventPublisher interface {
	Publish(ctx context.Context, event *domain.ActionEvent) error
	Close() error
}

// ActionHandler runs one action request through the agent pipeline.
type ActionHandler interface {
	Handle(ctx context.Context, req domain.ActionRequest) domain.ActionResponse
}
