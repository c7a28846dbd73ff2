// Agent configuration types.
//
// Information Hiding:
// - Default values hidden

package agent

import "log/slog"

// DefaultMaxSteps bounds the model round trips of one turn.
const DefaultMaxSteps = 10

// DefaultSystemPrompt frames the model as a filesystem-capable assistant.
const DefaultSystemPrompt = "You are a helpful coding assistant with filesystem access. " +
	"Use the provided tools to read, write, search, and manage files as needed."

// Config holds agent configuration.
type Config struct {
	// SystemPrompt guides the model's behavior.
	SystemPrompt string

	// MaxSteps is the step budget per turn. Values below 1 mean DefaultMaxSteps.
	MaxSteps int

	// Logger receives turn lifecycle logs. Nil discards them.
	Logger *slog.Logger

	// Observer, if set, is called synchronously with progress events.
	Observer func(Event)
}

// DefaultConfig returns the coding assistant configuration.
func DefaultConfig() Config {
	return Config{
		SystemPrompt: DefaultSystemPrompt,
		MaxSteps:     DefaultMaxSteps,
	}
}

func (c Config) withDefaults() Config {
	if c.MaxSteps < 1 {
		c.MaxSteps = DefaultMaxSteps
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}
	return c
}
