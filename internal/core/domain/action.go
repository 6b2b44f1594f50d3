package domain

import "time"

// ActionRequest is a named intent submitted to the agent pipeline.
type ActionRequest struct {
	Intent     string         `json:"intent"`
	Parameters map[string]any `json:"parameters"`
	Context    map[string]any `json:"context"`
}

// ActionResponse is the pipeline's reply. Data and Consequence are omitted
// when absent.
type ActionResponse struct {
	Message     string       `json:"message"`
	Data        any          `json:"data,omitempty"`
	Consequence *Consequence `json:"consequence,omitempty"`
}

// Consequence describes the risk of executing an intent. When
// RequiresConfirmation is set the caller must resubmit with confirmed=true.
type Consequence struct {
	RequiresConfirmation bool   `json:"requires_confirmation"`
	Reason               string `json:"reason,omitempty"`
}

// ActionOutcome classifies how a pipeline call ended.
type ActionOutcome string

const (
	OutcomeExecuted             ActionOutcome = "executed"
	OutcomeConfirmationRequired ActionOutcome = "confirmation_required"
	OutcomeNotImplemented       ActionOutcome = "not_implemented"
	OutcomeFailed               ActionOutcome = "failed"
)

// ActionEvent is the audit record of one handled action.
type ActionEvent struct {
	ID                   string        `json:"id" db:"id"`
	Intent               string        `json:"intent" db:"intent"`
	Outcome              ActionOutcome `json:"outcome" db:"outcome"`
	Message              string        `json:"message" db:"message"`
	RequiresConfirmation bool          `json:"requires_confirmation" db:"requires_confirmation"`
	Confirmed            bool          `json:"confirmed" db:"confirmed"`
	Duration             time.Duration `json:"duration_ns" db:"duration_ns"`
	CreatedAt            time.Time     `json:"created_at" db:"created_at"`
}
