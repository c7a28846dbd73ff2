// Agent builder for fluent configuration.
//
// Information Hiding:
// - Builder state management hidden
// - Default value application hidden

package agent

import (
	"log/slog"

	"github.com/richinex/fleet/llm"
	"github.com/richinex/fleet/storage"
	"github.com/richinex/fleet/tools"
)

// Builder provides fluent configuration for creating agents.
// Usage: agent.NewBuilder(client) - no stutter.
type Builder struct {
	client   llm.Completer
	registry *tools.Registry
	store    *storage.Conversation
	config   Config
}

// NewBuilder creates a builder with the default coding assistant configuration.
func NewBuilder(client llm.Completer) *Builder {
	return &Builder{
		client: client,
		config: DefaultConfig(),
	}
}

// SystemPrompt sets the system prompt. An empty prompt keeps the default.
func (b *Builder) SystemPrompt(prompt string) *Builder {
	if prompt != "" {
		b.config.SystemPrompt = prompt
	}
	return b
}

// MaxSteps sets the step budget per turn.
func (b *Builder) MaxSteps(n int) *Builder {
	b.config.MaxSteps = n
	return b
}

// Registry sets the tool registry.
func (b *Builder) Registry(registry *tools.Registry) *Builder {
	b.registry = registry
	return b
}

// Store sets the conversation store.
func (b *Builder) Store(store *storage.Conversation) *Builder {
	b.store = store
	return b
}

// Logger sets the logger.
func (b *Builder) Logger(logger *slog.Logger) *Builder {
	b.config.Logger = logger
	return b
}

// Observer sets the progress callback.
func (b *Builder) Observer(fn func(Event)) *Builder {
	b.config.Observer = fn
	return b
}

// Config returns the configuration built so far.
func (b *Builder) Config() Config {
	return b.config
}

// Build creates the agent, filling in a fresh registry and store when unset.
func (b *Builder) Build() *Agent {
	registry := b.registry
	if registry == nil {
		registry = tools.NewRegistry()
	}
	store := b.store
	if store == nil {
		store = storage.NewConversation()
	}
	return New(b.client, registry, store, b.config)
}
