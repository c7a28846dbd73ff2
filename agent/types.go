// Package agent provides the step-bounded tool-calling loop.
//
// Contains all types used by agents for turns, steps, and responses.
package agent

import (
	"encoding/json"
	"fmt"

	"github.com/richinex/fleet/llm"
)

// State is the position of a turn in its lifecycle.
type State int

const (
	StateAwaitingModel State = iota
	StateExecutingTools
	StateFinal
	StateBudgetExceeded
	StateFatal
)

// String returns the state name used in logs.
func (s State) String() string {
	switch s {
	case StateAwaitingModel:
		return "awaiting_model"
	case StateExecutingTools:
		return "executing_tools"
	case StateFinal:
		return "final"
	case StateBudgetExceeded:
		return "budget_exceeded"
	case StateFatal:
		return "fatal"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Terminal reports whether a turn in this state is over.
func (s State) Terminal() bool {
	return s == StateFinal || s == StateBudgetExceeded || s == StateFatal
}

// Step records one model round trip and the tools it triggered.
type Step struct {
	Iteration    int
	Text         string
	Actions      []string // tool names, in call order
	Observations []string // tool result texts, parallel to Actions
}

// ToolCallMetric contains metrics about a tool invocation.
type ToolCallMetric struct {
	Name       string `json:"name"`
	InputSize  int    `json:"input_size"`
	OutputSize int    `json:"output_size"`
	DurationMs uint64 `json:"duration_ms"`
	Success    bool   `json:"success"`
}

// Metadata contains metadata about a turn.
type Metadata struct {
	ExecutionTimeMs uint64
	LLMCalls        int
	ToolCalls       []ToolCallMetric
	TokenUsage      *llm.TokenUsage
}

// Response is the outcome of one turn. State is always terminal.
type Response struct {
	State    State
	Text     string // final text, or the last assistant text when the budget ran out
	Err      error  // set only for StateFatal
	Steps    []Step
	Metadata Metadata
}

// IsSuccess checks if the model finished the turn on its own.
func (r Response) IsSuccess() bool {
	return r.State == StateFinal
}

// ResultText returns the text for display: the answer, or the error for a fatal turn.
func (r Response) ResultText() string {
	if r.State == StateFatal && r.Err != nil {
		return r.Err.Error()
	}
	return r.Text
}

// EventKind says what an Event reports.
type EventKind int

const (
	EventStepStarted EventKind = iota
	EventToolCall
	EventToolResult
	EventTurnFinished
)

// Event is a progress notification delivered to Config.Observer.
type Event struct {
	Kind      EventKind
	Step      int
	State     State
	Tool      string
	Arguments json.RawMessage // EventToolCall
	Result    string          // EventToolResult
	Success   bool            // EventToolResult
}
