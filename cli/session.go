// Interactive session loop over line-oriented text streams.
//
// Information Hiding:
// - Input scanning and termination rules hidden
// - Output formatting hidden

package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/fatih/color"

	"github.com/richinex/fleet/agent"
)

const (
	banner  = "Agent ready. Type your message (or 'exit' to quit)."
	prompt  = "You: "
	goodbye = "Goodbye."

	// maxLineBytes bounds a single input line.
	maxLineBytes = 1024 * 1024
)

var (
	assistantLabel = color.New(color.FgCyan, color.Bold)
	errorLabel     = color.New(color.FgRed, color.Bold)
	noteLabel      = color.New(color.FgYellow)
)

// TurnRunner runs one user turn to completion.
type TurnRunner interface {
	RunTurn(ctx context.Context, input string) agent.Response
}

// SessionOptions controls optional session output.
type SessionOptions struct {
	// Verbose prints each step and token usage after a turn.
	Verbose bool

	// Logger receives session lifecycle logs. Nil discards them.
	Logger *slog.Logger
}

// Session reads user input line by line and runs one turn per line.
// Sessions are single-threaded: one turn runs at a time.
type Session struct {
	runner  TurnRunner
	scanner *bufio.Scanner
	out     io.Writer
	errOut  io.Writer
	opts    SessionOptions
	logger  *slog.Logger
}

// NewSession creates a session reading from in. Replies go to out and
// turn failures to errOut.
func NewSession(runner TurnRunner, in io.Reader, out, errOut io.Writer, opts SessionOptions) *Session {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Session{
		runner:  runner,
		scanner: scanner,
		out:     out,
		errOut:  errOut,
		opts:    opts,
		logger:  logger,
	}
}

// Run loops until end of input, an empty line, or "exit". A failed turn is
// reported and the loop goes on; only input errors end the session with an error.
func (s *Session) Run(ctx context.Context) error {
	fmt.Fprintf(s.out, "%s\n\n", banner)

	turns := 0
	for {
		if ctx.Err() != nil {
			fmt.Fprintf(s.out, "\n%s\n", goodbye)
			return nil
		}

		fmt.Fprint(s.out, prompt)
		if !s.scanner.Scan() {
			if err := s.scanner.Err(); err != nil {
				if errors.Is(err, bufio.ErrTooLong) {
					return fmt.Errorf("read input: line longer than %d bytes: %w", maxLineBytes, err)
				}
				return fmt.Errorf("read input: %w", err)
			}
			fmt.Fprintf(s.out, "\n%s\n", goodbye)
			s.logger.Info("session ended", "reason", "eof", "turns", turns)
			return nil
		}

		input := strings.TrimSpace(s.scanner.Text())
		if input == "" || strings.EqualFold(input, "exit") {
			fmt.Fprintln(s.out, goodbye)
			s.logger.Info("session ended", "reason", "exit", "turns", turns)
			return nil
		}

		turns++
		resp := s.runner.RunTurn(ctx, input)
		s.render(resp)
	}
}

func (s *Session) render(resp agent.Response) {
	if s.opts.Verbose {
		printSteps(s.out, resp.Steps)
	}

	switch resp.State {
	case agent.StateFinal:
		fmt.Fprintf(s.out, "\n%s %s\n\n", assistantLabel.Sprint("Assistant:"), resp.Text)
	case agent.StateBudgetExceeded:
		fmt.Fprintf(s.out, "\n%s %s\n", assistantLabel.Sprint("Assistant:"), resp.Text)
		fmt.Fprintf(s.out, "%s\n\n", noteLabel.Sprintf("(ran out of steps after %d steps)", len(resp.Steps)))
	default:
		fmt.Fprintf(s.errOut, "%s %s\n\n", errorLabel.Sprint("Error:"), resp.ResultText())
	}

	if s.opts.Verbose {
		printTokenStats(s.out, resp.Metadata)
	}
}

// RunOnce runs a single turn and prints its result. A fatal turn is
// returned as an error; running out of steps is not.
func RunOnce(ctx context.Context, runner TurnRunner, task string, out, errOut io.Writer, verbose bool) error {
	resp := runner.RunTurn(ctx, task)
	if verbose {
		printSteps(out, resp.Steps)
	}

	switch resp.State {
	case agent.StateFinal:
		fmt.Fprintln(out, resp.Text)
	case agent.StateBudgetExceeded:
		fmt.Fprintln(out, resp.Text)
		fmt.Fprintln(errOut, noteLabel.Sprintf("(ran out of steps after %d steps)", len(resp.Steps)))
	default:
		return fmt.Errorf("task failed: %w", resp.Err)
	}

	if verbose {
		printTokenStats(out, resp.Metadata)
	}
	return nil
}

// maxObservationLen truncates tool output in verbose step listings.
const maxObservationLen = 400

func printSteps(w io.Writer, steps []agent.Step) {
	if len(steps) == 0 {
		return
	}
	fmt.Fprintln(w, "--- Steps ---")
	for _, step := range steps {
		fmt.Fprintf(w, "[%d] %s\n", step.Iteration, step.Text)
		for i, action := range step.Actions {
			fmt.Fprintf(w, "    Action: %s\n", action)
			if i < len(step.Observations) {
				fmt.Fprintf(w, "    Observation: %s\n", truncateString(step.Observations[i], maxObservationLen))
			}
		}
	}
	fmt.Fprintln(w, "-------------")
}

func printTokenStats(w io.Writer, meta agent.Metadata) {
	fmt.Fprintf(w, "LLM calls: %d, tool calls: %d, %dms", meta.LLMCalls, len(meta.ToolCalls), meta.ExecutionTimeMs)
	if meta.TokenUsage != nil {
		fmt.Fprintf(w, ", tokens: %d prompt + %d completion = %d",
			meta.TokenUsage.PromptTokens, meta.TokenUsage.CompletionTokens, meta.TokenUsage.TotalTokens)
	}
	fmt.Fprint(w, "\n\n")
}

// truncateString truncates a string to maxLen runes, preserving UTF-8 boundaries.
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
