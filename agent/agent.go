// Step-bounded tool-calling loop.
//
// All turn execution goes through this module.
//
// Information Hiding:
// - Loop internals hidden
// - LLM communication hidden
// - Tool execution coordination hidden
// - Conversation bookkeeping hidden

package agent

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/richinex/fleet/llm"
	"github.com/richinex/fleet/storage"
	"github.com/richinex/fleet/tools"
)

// Agent runs user turns against a model, executing the tools it requests.
// An Agent is not safe for concurrent turns.
type Agent struct {
	config   Config
	client   llm.Completer
	registry *tools.Registry
	store    *storage.Conversation
	tools    []llm.ToolDefinition
	logger   *slog.Logger
}

// New creates an agent. The store is shared with the caller and holds the
// whole session history.
func New(client llm.Completer, registry *tools.Registry, store *storage.Conversation, config Config) *Agent {
	config = config.withDefaults()
	return &Agent{
		config:   config,
		client:   client,
		registry: registry,
		store:    store,
		tools:    registry.Definitions(),
		logger:   config.Logger,
	}
}

// Store returns the conversation the agent appends to.
func (a *Agent) Store() *storage.Conversation {
	return a.store
}

// MaxSteps returns the step budget per turn.
func (a *Agent) MaxSteps() int {
	return a.config.MaxSteps
}

// turn accumulates the bookkeeping of one RunTurn call.
type turn struct {
	start     time.Time
	steps     []Step
	toolCalls []ToolCallMetric
	usage     llm.TokenUsage
	llmCalls  int
	lastText  string
}

// RunTurn appends input as a user message and drives the model until it
// answers without tool calls, the step budget runs out, or a model call
// fails. A failed model call leaves no trace of its step in the store.
func (a *Agent) RunTurn(ctx context.Context, input string) Response {
	t := &turn{start: time.Now()}
	a.store.Append(llm.UserMessage(input))
	a.logger.Info("turn started", "input_len", len(input), "history", a.store.Len(), "max_steps", a.config.MaxSteps)

	for step := 1; step <= a.config.MaxSteps; step++ {
		a.emit(Event{Kind: EventStepStarted, Step: step, State: StateAwaitingModel})

		resp, err := a.client.Complete(ctx, llm.Request{
			System:   a.config.SystemPrompt,
			Messages: a.store.Snapshot(),
			Tools:    a.tools,
			MaxSteps: a.config.MaxSteps,
		})
		if err != nil {
			err = fmt.Errorf("model call failed at step %d: %w", step, err)
			a.logger.Error("model call failed", "step", step, "error", err)
			return a.finish(t, StateFatal, "", err)
		}

		t.llmCalls++
		t.usage.Add(resp.Usage)
		a.store.Append(resp.Messages...)
		if resp.Text != "" {
			t.lastText = resp.Text
		}

		calls := resp.ToolCalls()
		current := Step{Iteration: step, Text: resp.Text}
		if len(calls) == 0 {
			t.steps = append(t.steps, current)
			return a.finish(t, StateFinal, resp.Text, nil)
		}

		results := make([]llm.ChatMessage, 0, len(calls))
		for _, call := range calls {
			text, ok := a.executeTool(ctx, t, step, call)
			results = append(results, llm.ToolResultMessage(call, text, !ok))
			current.Actions = append(current.Actions, call.Name)
			current.Observations = append(current.Observations, text)
		}
		a.store.Append(results...)
		t.steps = append(t.steps, current)
	}

	a.logger.Warn("step budget exhausted", "max_steps", a.config.MaxSteps)
	return a.finish(t, StateBudgetExceeded, t.lastText, nil)
}

// executeTool runs one call and returns the model-visible text.
func (a *Agent) executeTool(ctx context.Context, t *turn, step int, call llm.ToolCall) (string, bool) {
	a.emit(Event{Kind: EventToolCall, Step: step, State: StateExecutingTools, Tool: call.Name, Arguments: call.Arguments})
	a.logger.Debug("tool call", "step", step, "tool", call.Name, "id", call.ID, "args", string(call.Arguments))

	started := time.Now()
	result := a.registry.Execute(ctx, call.Name, call.Arguments)
	text := result.Text()

	t.toolCalls = append(t.toolCalls, ToolCallMetric{
		Name:       call.Name,
		InputSize:  len(call.Arguments),
		OutputSize: len(text),
		DurationMs: uint64(time.Since(started).Milliseconds()),
		Success:    result.Success(),
	})
	if !result.Success() {
		a.logger.Debug("tool failed", "step", step, "tool", call.Name, "error", result.Error)
	}
	a.emit(Event{Kind: EventToolResult, Step: step, State: StateExecutingTools, Tool: call.Name, Result: text, Success: result.Success()})

	return text, result.Success()
}

func (a *Agent) finish(t *turn, state State, text string, err error) Response {
	elapsed := time.Since(t.start)
	a.logger.Info("turn finished",
		"state", state.String(),
		"steps", len(t.steps),
		"llm_calls", t.llmCalls,
		"tool_calls", len(t.toolCalls),
		"total_tokens", t.usage.TotalTokens,
		"duration", elapsed,
	)
	a.emit(Event{Kind: EventTurnFinished, Step: len(t.steps), State: state})

	usage := t.usage
	return Response{
		State: state,
		Text:  text,
		Err:   err,
		Steps: t.steps,
		Metadata: Metadata{
			ExecutionTimeMs: uint64(elapsed.Milliseconds()),
			LLMCalls:        t.llmCalls,
			ToolCalls:       t.toolCalls,
			TokenUsage:      &usage,
		},
	}
}

func (a *Agent) emit(e Event) {
	if a.config.Observer != nil {
		a.config.Observer(e)
	}
}
