// Model client contract and the Provider-backed implementation.
//
// The orchestrator only sees Completer. Request and Response carry
// provider-neutral messages, so swapping providers never changes the caller.

package llm

import (
	"context"
	"fmt"
)

// Request is one model round trip: the full history plus what the model may use.
type Request struct {
	System   string
	Messages []ChatMessage
	Tools    []ToolDefinition
	MaxSteps int // step budget of the current turn, 0 if unbounded
}

// Response holds the model's reply for a single round trip.
type Response struct {
	// Text is the assistant text of this round trip (may be empty).
	Text string
	// Messages are the new messages to append to the conversation.
	Messages []ChatMessage
	Usage    *TokenUsage
}

// ToolCalls returns the tool calls requested by the response, in order.
func (r Response) ToolCalls() []ToolCall {
	var calls []ToolCall
	for _, msg := range r.Messages {
		if msg.Role == RoleAssistant {
			calls = append(calls, msg.ToolCalls...)
		}
	}
	return calls
}

// Completer performs one model round trip.
type Completer interface {
	Complete(ctx context.Context, req Request) (Response, error)
}

// Client wraps a Provider with the Completer interface.
type Client struct {
	provider Provider
}

// NewClient creates a new LLM client from a provider.
func NewClient(provider Provider) *Client {
	return &Client{provider: provider}
}

// Complete sends the request through the provider's tool-calling endpoint.
func (c *Client) Complete(ctx context.Context, req Request) (Response, error) {
	messages := make([]ChatMessage, 0, len(req.Messages)+1)
	if system := systemPrompt(req); system != "" {
		messages = append(messages, SystemMessage(system))
	}
	messages = append(messages, req.Messages...)

	resp, err := c.provider.ChatWithTools(ctx, messages, req.Tools)
	if err != nil {
		return Response{}, fmt.Errorf("%s: %w", c.provider.Name(), err)
	}

	var newMessages []ChatMessage
	if resp.Content != "" || len(resp.ToolCalls) > 0 {
		newMessages = append(newMessages, AssistantMessage(resp.Content, resp.ToolCalls...))
	}

	return Response{
		Text:     resp.Content,
		Messages: newMessages,
		Usage:    resp.Usage,
	}, nil
}

func systemPrompt(req Request) string {
	if req.MaxSteps <= 0 || len(req.Tools) == 0 {
		return req.System
	}
	budget := fmt.Sprintf("You can use tools for at most %d steps per request.", req.MaxSteps)
	if req.System == "" {
		return budget
	}
	return req.System + "\n\n" + budget
}

// Verify Client implements Completer
var _ Completer = (*Client)(nil)
