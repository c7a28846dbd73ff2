package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richinex/fleet/agent"
	"github.com/richinex/fleet/config"
	"github.com/richinex/fleet/llm"
	"github.com/richinex/fleet/storage"
	"github.com/richinex/fleet/tools"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

// fakeRunner answers turns from a queue and records the inputs.
type fakeRunner struct {
	responses []agent.Response
	inputs    []string
}

func (r *fakeRunner) RunTurn(_ context.Context, input string) agent.Response {
	r.inputs = append(r.inputs, input)
	if len(r.responses) == 0 {
		return agent.Response{State: agent.StateFinal, Text: "ok"}
	}
	resp := r.responses[0]
	r.responses = r.responses[1:]
	return resp
}

func runSession(t *testing.T, runner TurnRunner, input string) (string, string) {
	t.Helper()
	var out, errOut bytes.Buffer
	session := NewSession(runner, strings.NewReader(input), &out, &errOut, SessionOptions{})
	require.NoError(t, session.Run(context.Background()))
	return out.String(), errOut.String()
}

func TestSessionFinalAnswer(t *testing.T) {
	runner := &fakeRunner{responses: []agent.Response{{State: agent.StateFinal, Text: "Hello there."}}}

	out, errOut := runSession(t, runner, "hi\nexit\n")

	assert.Equal(t, "Agent ready. Type your message (or 'exit' to quit).\n\n"+
		"You: \nAssistant: Hello there.\n\n"+
		"You: Goodbye.\n", out)
	assert.Empty(t, errOut)
	assert.Equal(t, []string{"hi"}, runner.inputs)
}

func TestSessionTerminators(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"eof", ""},
		{"blank line", "   \nnever read\n"},
		{"exit", "exit\n"},
		{"exit any case", "EXIT\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{}
			out, _ := runSession(t, runner, tt.input)

			assert.True(t, strings.HasSuffix(out, "Goodbye.\n"), out)
			assert.Empty(t, runner.inputs)
		})
	}
}

func TestSessionTrimsInput(t *testing.T) {
	runner := &fakeRunner{}
	runSession(t, runner, "  list files  \n")
	assert.Equal(t, []string{"list files"}, runner.inputs)
}

func TestSessionBudgetExceeded(t *testing.T) {
	steps := make([]agent.Step, 10)
	runner := &fakeRunner{responses: []agent.Response{
		{State: agent.StateBudgetExceeded, Text: "partial", Steps: steps},
	}}

	out, _ := runSession(t, runner, "loop\n")

	assert.Contains(t, out, "\nAssistant: partial\n(ran out of steps after 10 steps)\n\n")
}

func TestSessionFatalContinues(t *testing.T) {
	runner := &fakeRunner{responses: []agent.Response{
		{State: agent.StateFatal, Err: errors.New("model call failed at step 3: boom")},
		{State: agent.StateFinal, Text: "back"},
	}}

	out, errOut := runSession(t, runner, "first\nsecond\n")

	assert.Equal(t, "Error: model call failed at step 3: boom\n\n", errOut)
	assert.Contains(t, out, "Assistant: back")
	assert.Equal(t, []string{"first", "second"}, runner.inputs)
}

func TestSessionLineTooLong(t *testing.T) {
	long := strings.Repeat("x", maxLineBytes+10) + "\n"
	var out, errOut bytes.Buffer
	session := NewSession(&fakeRunner{}, strings.NewReader(long), &out, &errOut, SessionOptions{})

	err := session.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read input")
}

func TestSessionStopsWhenContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	runner := &cancelingRunner{cancel: cancel}
	var out bytes.Buffer

	err := NewSession(runner, strings.NewReader("one\ntwo\n"), &out, &out, SessionOptions{}).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, runner.calls)
	assert.True(t, strings.HasSuffix(out.String(), "Goodbye.\n"))
}

type cancelingRunner struct {
	cancel context.CancelFunc
	calls  int
}

func (r *cancelingRunner) RunTurn(context.Context, string) agent.Response {
	r.calls++
	r.cancel()
	return agent.Response{State: agent.StateFatal, Err: context.Canceled}
}

func TestSessionVerbose(t *testing.T) {
	runner := &fakeRunner{responses: []agent.Response{{
		State: agent.StateFinal,
		Text:  "done",
		Steps: []agent.Step{{Iteration: 1, Actions: []string{"listDirectory"}, Observations: []string{"file: a.go"}}},
		Metadata: agent.Metadata{
			LLMCalls:   2,
			TokenUsage: &llm.TokenUsage{PromptTokens: 5, CompletionTokens: 3, TotalTokens: 8},
		},
	}}}
	var out bytes.Buffer
	session := NewSession(runner, strings.NewReader("go\n"), &out, &out, SessionOptions{Verbose: true})
	require.NoError(t, session.Run(context.Background()))

	assert.Contains(t, out.String(), "Action: listDirectory")
	assert.Contains(t, out.String(), "Observation: file: a.go")
	assert.Contains(t, out.String(), "LLM calls: 2")
	assert.Contains(t, out.String(), "= 8")
}

func TestRunOnce(t *testing.T) {
	var out, errOut bytes.Buffer
	runner := &fakeRunner{responses: []agent.Response{{State: agent.StateFinal, Text: "answer"}}}
	require.NoError(t, RunOnce(context.Background(), runner, "task", &out, &errOut, false))
	assert.Equal(t, "answer\n", out.String())

	out.Reset()
	runner = &fakeRunner{responses: []agent.Response{{State: agent.StateBudgetExceeded, Text: "partial", Steps: make([]agent.Step, 2)}}}
	require.NoError(t, RunOnce(context.Background(), runner, "task", &out, &errOut, false))
	assert.Equal(t, "partial\n", out.String())
	assert.Contains(t, errOut.String(), "ran out of steps after 2 steps")

	cause := errors.New("boom")
	runner = &fakeRunner{responses: []agent.Response{{State: agent.StateFatal, Err: cause}}}
	err := RunOnce(context.Background(), runner, "task", &out, &errOut, false)
	assert.ErrorIs(t, err, cause)
}

func TestListTools(t *testing.T) {
	var out bytes.Buffer
	ListTools(&out, tools.NewRegistry(), false)
	for _, name := range []string{"readFile", "writeFile", "listDirectory", "searchFiles", "deleteFile"} {
		assert.Contains(t, out.String(), name)
	}
	assert.NotContains(t, out.String(), "pattern*")

	out.Reset()
	ListTools(&out, tools.NewRegistry(), true)
	assert.Contains(t, out.String(), "pattern* (string)")
	assert.Contains(t, out.String(), "directory (string)")
}

func TestNewProviderRequiresKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	settings := config.Settings{LLM: config.LLMConfig{Provider: "anthropic", Model: "claude-sonnet-4-5", MaxTokens: 100}}

	_, err := NewProvider(settings)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ANTHROPIC_API_KEY")

	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test")
	provider, err := NewProvider(settings)
	require.NoError(t, err)
	assert.Equal(t, "anthropic", provider.Name())
	assert.Equal(t, "claude-sonnet-4-5", provider.Model())
}

// scriptedCompleter requests a listDirectory call on every round trip,
// fails on call failOn and answers finalText from then on.
type scriptedCompleter struct {
	dir       string
	failOn    int
	finalText string
	calls     int
}

func (c *scriptedCompleter) Complete(_ context.Context, req llm.Request) (llm.Response, error) {
	c.calls++
	switch {
	case c.calls == c.failOn:
		return llm.Response{}, errors.New("transport down")
	case c.calls > c.failOn:
		return llm.Response{Text: c.finalText, Messages: []llm.ChatMessage{llm.AssistantMessage(c.finalText)}}, nil
	}
	call := llm.ToolCall{
		ID:        fmt.Sprintf("call_%d", c.calls),
		Name:      "listDirectory",
		Arguments: json.RawMessage(fmt.Sprintf(`{"path":%q}`, c.dir)),
	}
	return llm.Response{
		Text:     "still looking",
		Messages: []llm.ChatMessage{llm.AssistantMessage("still looking", call)},
	}, nil
}

func TestSessionWithAgentSurvivesBudgetAndFailure(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("a"), 0o644))

	client := &scriptedCompleter{dir: dir, failOn: 13, finalText: "All done."}
	store := storage.NewConversation()
	a := agent.New(client, tools.NewRegistry(), store, agent.DefaultConfig())

	var out, errOut bytes.Buffer
	session := NewSession(a, strings.NewReader("loop forever\ntry again\nhello\nexit\n"), &out, &errOut, SessionOptions{})
	require.NoError(t, session.Run(context.Background()))

	// Turn 1 spends the whole budget: user + 10 x (assistant, tool).
	// Turn 2 fails at step 3 after two complete steps: user + 2 x (assistant, tool).
	// Turn 3 answers directly: user + assistant.
	assert.Equal(t, 14, client.calls)
	assert.Equal(t, 21+5+2, store.Len())

	assert.Equal(t, "Agent ready. Type your message (or 'exit' to quit).\n\n"+
		"You: \nAssistant: still looking\n(ran out of steps after 10 steps)\n\n"+
		"You: You: \nAssistant: All done.\n\n"+
		"You: Goodbye.\n", out.String())
	assert.Equal(t, "Error: model call failed at step 3: transport down\n\n", errOut.String())

	history := store.Snapshot()
	assert.Equal(t, llm.RoleUser, history[21].Role)
	assert.Equal(t, "try again", history[21].Content)
	assert.Equal(t, llm.RoleTool, history[25].Role)
	assert.Equal(t, "file: a.txt", history[25].Content)
	assert.Equal(t, "hello", history[26].Content)
	assert.Equal(t, "All done.", history[27].Content)
}
