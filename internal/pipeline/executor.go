package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tjfontaine/movi-transport-agent/internal/core/domain"
	"github.com/tjfontaine/movi-transport-agent/internal/core/ports"
	"github.com/tjfontaine/movi-transport-agent/internal/intent"
	"github.com/tjfontaine/movi-transport-agent/internal/policy"
	"github.com/tjfontaine/movi-transport-agent/internal/telemetry"
)

const tracerName = "github.com/tjfontaine/movi-transport-agent/internal/pipeline"

// Messages set by the pipeline itself rather than by a handler.
const (
	MsgConfirmationRequired = "Confirmation required before executing action."
	msgNotImplemented       = "Intent '%s' not implemented."
	msgExecutionFailed      = "Error executing action: %s"
)

// unknownIntentLabel buckets unsupported intent names in metrics so
// callers cannot grow label cardinality.
const unknownIntentLabel = "unknown"

// stageFunc transforms one version of the state into the next.
type stageFunc func(ctx context.Context, s State) State

type stage struct {
	name string
	run  stageFunc
}

// Executor orchestrates the five pipeline stages for each action.
type Executor struct {
	dispatcher *intent.Dispatcher
	policy     *policy.Consequences
	stages     []stage

	tracer    trace.Tracer
	metrics   *telemetry.Metrics
	publisher ports.EventPublisher
	logger    *slog.Logger
	now       func() time.Time
}

// Option configures an Executor.
type Option func(*Executor)

// WithLogger sets the executor's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) {
		e.logger = logger
	}
}

// WithMetrics records every handled action in m.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(e *Executor) {
		e.metrics = m
	}
}

// WithEventPublisher publishes an ActionEvent for every handled action.
func WithEventPublisher(p ports.EventPublisher) Option {
	return func(e *Executor) {
		e.publisher = p
	}
}

// WithTracerProvider overrides the global tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(e *Executor) {
		e.tracer = tp.Tracer(tracerName)
	}
}

// WithPolicy replaces the default consequence policy.
func WithPolicy(p *policy.Consequences) Option {
	return func(e *Executor) {
		e.policy = p
	}
}

// NewExecutor creates an executor whose handlers and consequence rules
// operate on store.
func NewExecutor(store ports.TransportStore, opts ...Option) *Executor {
	e := &Executor{
		dispatcher: intent.NewDispatcher(store),
		tracer:     otel.Tracer(tracerName),
		logger:     slog.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.policy == nil {
		e.policy = policy.NewConsequences(store, policy.WithLogger(e.logger))
	}

	e.stages = []stage{
		{"parse_intent", e.parseIntent},
		{"check_context", e.checkContext},
		{"check_consequences", e.checkConsequences},
		{"execute_action", e.executeAction},
		{"respond", e.respond},
	}
	return e
}

// Handle runs req through every stage and returns the response. It never
// fails: every error path is reported in the response message.
func (e *Executor) Handle(ctx context.Context, req domain.ActionRequest) domain.ActionResponse {
	start := e.now()

	ctx, span := e.tracer.Start(ctx, "agent.action",
		trace.WithAttributes(attribute.String("movi.intent", req.Intent)))
	defer span.End()

	state := e.run(ctx, newState(req))
	elapsed := e.now().Sub(start)

	span.SetAttributes(attribute.String("movi.outcome", string(state.outcome)))
	if state.err != nil {
		span.RecordError(state.err)
		span.SetStatus(codes.Error, state.err.Error())
	}

	e.report(ctx, state, elapsed)
	return state.Response()
}

// run threads the state through the stages in order.
func (e *Executor) run(ctx context.Context, s State) State {
	for _, st := range e.stages {
		stageCtx, span := e.tracer.Start(ctx, "pipeline."+st.name)
		s = st.run(stageCtx, s)
		span.End()
	}
	return s
}

func (e *Executor) parseIntent(_ context.Context, s State) State {
	return s
}

func (e *Executor) checkContext(_ context.Context, s State) State {
	if s.Context == nil {
		s.Context = map[string]any{}
	}
	return s
}

func (e *Executor) checkConsequences(ctx context.Context, s State) State {
	if c := e.policy.Evaluate(ctx, s.Intent, s.Parameters); c != nil {
		s.Consequence = c
	}
	return s
}

func (e *Executor) executeAction(ctx context.Context, s State) State {
	if s.confirmationPending() {
		s.Message = MsgConfirmationRequired
		s.outcome = domain.OutcomeConfirmationRequired
		return s
	}

	handler, ok := e.dispatcher.Lookup(s.Intent)
	if !ok {
		s.Message = fmt.Sprintf(msgNotImplemented, s.Intent)
		s.outcome = domain.OutcomeNotImplemented
		return s
	}

	data, message, err := invoke(ctx, handler, s.handlerParams())
	if err != nil {
		e.logger.WarnContext(ctx, "intent handler failed",
			slog.String("intent", s.Intent),
			slog.String("error", err.Error()),
		)
		s.Message = fmt.Sprintf(msgExecutionFailed, err.Error())
		s.Data = nil
		s.outcome = domain.OutcomeFailed
		s.err = err
		return s
	}

	s.Data = data
	s.Message = message
	s.outcome = domain.OutcomeExecuted
	return s
}

func (e *Executor) respond(_ context.Context, s State) State {
	return s
}

// invoke calls handler, converting a panic into an error.
func invoke(ctx context.Context, handler intent.Func, params intent.Params) (data any, message string, err error) {
	defer func() {
		if r := recover(); r != nil {
			data, message = nil, ""
			err = fmt.Errorf("%v", r)
		}
	}()
	return handler(ctx, params)
}

// report records metrics and publishes the action event. Publishing
// failures are logged and never reach the caller.
func (e *Executor) report(ctx context.Context, s State, elapsed time.Duration) {
	label := s.Intent
	if !intent.Known(label) {
		label = unknownIntentLabel
	}
	e.metrics.ObserveAction(label, string(s.outcome), elapsed)

	e.logger.DebugContext(ctx, "agent action handled",
		slog.String("intent", s.Intent),
		slog.String("outcome", string(s.outcome)),
		slog.Duration("duration", elapsed),
	)

	if e.publisher == nil {
		return
	}
	event := &domain.ActionEvent{
		Intent:               s.Intent,
		Outcome:              s.outcome,
		Message:              s.Message,
		RequiresConfirmation: s.Consequence != nil && s.Consequence.RequiresConfirmation,
		Confirmed:            s.Parameters.Confirmed(),
		Duration:             elapsed,
		CreatedAt:            e.now().UTC(),
	}
	if err := e.publisher.Publish(ctx, event); err != nil {
		e.logger.ErrorContext(ctx, "failed to publish action event",
			slog.String("intent", s.Intent),
			slog.String("error", err.Error()),
		)
	}
}

var _ ports.ActionHandler = (*Executor)(nil)
