// Package static provides a fixed, in-process configuration.
package static

import (
	"context"
	"fmt"

	"github.com/tjfontaine/movi-transport-agent/internal/core/ports"
	"github.com/tjfontaine/movi-transport-agent/internal/pkg/config"
)

// Provider implements ports.ConfigProvider over a configuration built in
// code. It never reports changes.
type Provider struct {
	cfg *config.Config
}

var _ ports.ConfigProvider = (*Provider)(nil)

// NewProvider returns a provider serving cfg. A nil cfg serves defaults.
func NewProvider(cfg *config.Config) *Provider {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Provider{cfg: cfg}
}

// Load validates and returns a copy of the configuration.
func (p *Provider) Load(ctx context.Context) (*config.Config, error) {
	if err := p.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	cfg := *p.cfg
	return &cfg, nil
}

// Watch returns immediately; a static configuration never changes.
func (p *Provider) Watch(ctx context.Context, onChange func(*config.Config)) error {
	return nil
}

func (p *Provider) Close() error {
	return nil
}
