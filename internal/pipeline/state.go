package pipeline

import (
	"maps"

	"github.com/tjfontaine/movi-transport-agent/internal/core/domain"
	"github.com/tjfontaine/movi-transport-agent/internal/intent"
)

// State is the per-call record threaded through the stages. Stages take
// it by value and return the next version.
type State struct {
	Intent      string
	Parameters  intent.Params
	Context     map[string]any
	Consequence *domain.Consequence
	Data        any
	Message     string

	outcome domain.ActionOutcome
	err     error
}

// newState builds the initial state from a request. Parameters and
// context are copied so stages never write into the caller's maps.
func newState(req domain.ActionRequest) State {
	params := intent.Params(maps.Clone(req.Parameters))
	if params == nil {
		params = intent.Params{}
	}
	return State{
		Intent:     req.Intent,
		Parameters: params,
		Context:    maps.Clone(req.Context),
	}
}

// Outcome reports how the call ended.
func (s State) Outcome() domain.ActionOutcome {
	return s.outcome
}

// Response extracts the caller-facing response.
func (s State) Response() domain.ActionResponse {
	return domain.ActionResponse{
		Message:     s.Message,
		Data:        s.Data,
		Consequence: s.Consequence,
	}
}

// confirmationPending reports whether execution must wait for the caller.
func (s State) confirmationPending() bool {
	return s.Consequence != nil && !s.Parameters.Confirmed()
}

// handlerParams returns the parameters handed to the intent handler,
// without the confirmation flag.
func (s State) handlerParams() intent.Params {
	params := maps.Clone(s.Parameters)
	delete(params, intent.ConfirmedKey)
	return params
}
