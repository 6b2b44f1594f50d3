// Package pipeline runs agent actions through a fixed five-stage flow.
//
// # Stages
//
// Every action passes through the same stages in order:
//   - parse_intent: reserved for intent syntax checks; passes state through
//   - check_context: normalises the caller context; never fails
//   - check_consequences: asks the consequence policy whether the action is risky
//   - execute_action: runs the intent handler unless confirmation is pending
//   - respond: shapes the final response
//
// Each stage receives a State value and returns a new one, so no stage can
// observe another stage's partial writes.
//
// # Confirmation
//
// When the policy reports a consequence and the caller did not set
// "confirmed" to a truthy value, the handler is skipped and the response
// carries the consequence with the message:
//
//	Confirmation required before executing action.
//
// Resubmitting the same intent and parameters with "confirmed": true
// recomputes the consequence and executes the handler. The consequence is
// still reported on the confirmed response.
//
// # Failures
//
// No stage fails the call. Unknown intents, handler errors and handler
// panics all become messages on an otherwise well-formed response.
package pipeline
