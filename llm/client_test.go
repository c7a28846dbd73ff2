package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	response LLMResponse
	err      error
	received []ChatMessage
	tools    []ToolDefinition
}

func (p *fakeProvider) Name() string  { return "fake" }
func (p *fakeProvider) Model() string { return "fake-model" }

func (p *fakeProvider) ChatWithTools(_ context.Context, messages []ChatMessage, tools []ToolDefinition) (LLMResponse, error) {
	p.received = messages
	p.tools = tools
	return p.response, p.err
}

var listTool = ToolDefinition{Name: "listDirectory", Parameters: map[string]interface{}{"type": "object"}}

func TestClientPrependsSystemPromptWithBudget(t *testing.T) {
	provider := &fakeProvider{response: LLMResponse{Content: "hi"}}
	client := NewClient(provider)

	_, err := client.Complete(context.Background(), Request{
		System:   "You are helpful.",
		Messages: []ChatMessage{UserMessage("hello")},
		Tools:    []ToolDefinition{listTool},
		MaxSteps: 10,
	})
	require.NoError(t, err)

	require.Len(t, provider.received, 2)
	assert.Equal(t, RoleSystem, provider.received[0].Role)
	assert.Equal(t, "You are helpful.\n\nYou can use tools for at most 10 steps per request.", provider.received[0].Content)
	assert.Equal(t, "hello", provider.received[1].Content)
	assert.Len(t, provider.tools, 1)
}

func TestClientOmitsEmptySystemPrompt(t *testing.T) {
	provider := &fakeProvider{response: LLMResponse{Content: "hi"}}
	client := NewClient(provider)

	_, err := client.Complete(context.Background(), Request{Messages: []ChatMessage{UserMessage("hello")}})
	require.NoError(t, err)

	require.Len(t, provider.received, 1)
	assert.Equal(t, RoleUser, provider.received[0].Role)
}

func TestClientBudgetOnlyPrompt(t *testing.T) {
	assert.Equal(t, "You can use tools for at most 3 steps per request.",
		systemPrompt(Request{Tools: []ToolDefinition{listTool}, MaxSteps: 3}))
	assert.Equal(t, "base", systemPrompt(Request{System: "base", MaxSteps: 3}))
}

func TestClientResponseMessages(t *testing.T) {
	call := ToolCall{ID: "call_1", Name: "listDirectory", Arguments: []byte(`{"path":"."}`)}
	provider := &fakeProvider{response: LLMResponse{Content: "looking", ToolCalls: []ToolCall{call}}}

	resp, err := NewClient(provider).Complete(context.Background(), Request{Messages: []ChatMessage{UserMessage("ls")}})
	require.NoError(t, err)

	assert.Equal(t, "looking", resp.Text)
	require.Len(t, resp.Messages, 1)
	assert.Equal(t, RoleAssistant, resp.Messages[0].Role)
	assert.Equal(t, []ToolCall{call}, resp.ToolCalls())
}

func TestClientEmptyResponseAddsNoMessage(t *testing.T) {
	provider := &fakeProvider{}

	resp, err := NewClient(provider).Complete(context.Background(), Request{Messages: []ChatMessage{UserMessage("hi")}})
	require.NoError(t, err)
	assert.Empty(t, resp.Messages)
	assert.Empty(t, resp.ToolCalls())
}

func TestClientWrapsProviderError(t *testing.T) {
	cause := errors.New("connection reset")
	provider := &fakeProvider{err: cause}

	_, err := NewClient(provider).Complete(context.Background(), Request{})
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "fake: connection reset", err.Error())
}

func TestChatMessageCloneIsDeep(t *testing.T) {
	original := AssistantMessage("", ToolCall{ID: "1", Name: "readFile", Arguments: []byte(`{"path":"a"}`)})
	clone := original.Clone()

	clone.ToolCalls[0].Name = "deleteFile"
	clone.ToolCalls[0].Arguments[2] = 'X'

	assert.Equal(t, "readFile", original.ToolCalls[0].Name)
	assert.Equal(t, `{"path":"a"}`, string(original.ToolCalls[0].Arguments))
}

func TestTokenUsageAdd(t *testing.T) {
	var total TokenUsage
	total.Add(&TokenUsage{PromptTokens: 3, CompletionTokens: 2, TotalTokens: 5})
	total.Add(nil)
	total.Add(&TokenUsage{PromptTokens: 1, CompletionTokens: 1, TotalTokens: 2})

	assert.Equal(t, TokenUsage{PromptTokens: 4, CompletionTokens: 3, TotalTokens: 7}, total)
}
