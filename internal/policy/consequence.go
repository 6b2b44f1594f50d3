// Package policy decides which agent actions need caller confirmation.
package policy

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tjfontaine/movi-transport-agent/internal/core/domain"
	"github.com/tjfontaine/movi-transport-agent/internal/core/ports"
	"github.com/tjfontaine/movi-transport-agent/internal/intent"
)

// Rule attaches a consequence to one intent. Match returns nil when the
// rule does not apply to params.
type Rule struct {
	Name   string
	Intent string
	Match  func(ctx context.Context, store ports.TransportStore, params intent.Params) (*domain.Consequence, error)
}

// Consequences evaluates an ordered rule list; the first rule that
// produces a consequence wins.
type Consequences struct {
	store  ports.TransportStore
	rules  []Rule
	logger *slog.Logger
}

// Option configures Consequences.
type Option func(*Consequences)

// WithLogger sets the logger used for rule lookup failures.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Consequences) {
		c.logger = logger
	}
}

// WithRules replaces the default rule list.
func WithRules(rules ...Rule) Option {
	return func(c *Consequences) {
		c.rules = rules
	}
}

// NewConsequences creates a policy over store using DefaultRules.
func NewConsequences(store ports.TransportStore, opts ...Option) *Consequences {
	c := &Consequences{
		store:  store,
		rules:  DefaultRules(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Evaluate returns the consequence of running name with params, or nil.
// A rule whose store lookup fails is logged and treated as not matching.
func (c *Consequences) Evaluate(ctx context.Context, name string, params intent.Params) *domain.Consequence {
	for _, rule := range c.rules {
		if rule.Intent != name {
			continue
		}

		consequence, err := rule.Match(ctx, c.store, params)
		if err != nil {
			c.logger.WarnContext(ctx, "consequence rule failed",
				slog.String("rule", rule.Name),
				slog.String("intent", name),
				slog.String("error", err.Error()),
			)
			continue
		}
		if consequence != nil {
			return consequence
		}
	}
	return nil
}

// DefaultRules returns the built-in rule set.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:   "booked_trip_removal",
			Intent: intent.RemoveVehicleFromTrip,
			Match:  bookedTripRemoval,
		},
		{
			Name:   "route_deactivation",
			Intent: intent.UpdateRouteStatus,
			Match:  routeDeactivation,
		},
	}
}

func bookedTripRemoval(ctx context.Context, store ports.TransportStore, params intent.Params) (*domain.Consequence, error) {
	name := params.OptionalString("trip_name")
	if name == "" {
		return nil, nil
	}

	trip, err := store.GetTripByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to look up trip %q: %w", name, err)
	}
	if trip == nil || trip.BookingStatusPercentage <= 0 {
		return nil, nil
	}

	return &domain.Consequence{
		RequiresConfirmation: true,
		Reason:               fmt.Sprintf("%d%% of seats already booked for %s.", trip.BookingStatusPercentage, trip.DisplayName),
	}, nil
}

func routeDeactivation(_ context.Context, _ ports.TransportStore, params intent.Params) (*domain.Consequence, error) {
	if status, ok := params["status"].(string); !ok || status != domain.RouteStatusInactive {
		return nil, nil
	}
	return &domain.Consequence{
		RequiresConfirmation: true,
		Reason:               "Setting the route to inactive will hide it from live dashboards.",
	}, nil
}
