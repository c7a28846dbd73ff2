// Package storage provides the in-memory conversation log.
//
// Information Hiding:
// - Slice storage hidden from users
// - Thread-safe access via RWMutex
// - Data is lost when the process terminates

package storage

import (
	"sync"

	"github.com/richinex/fleet/llm"
)

// Conversation is an append-only, ordered message log for one session.
// Entries are never rewritten or removed.
type Conversation struct {
	mu       sync.RWMutex
	messages []llm.ChatMessage
}

// NewConversation creates an empty conversation.
func NewConversation() *Conversation {
	return &Conversation{}
}

// Append adds messages in order. Stored entries are copies, so later
// mutation of msgs by the caller has no effect.
func (c *Conversation) Append(msgs ...llm.ChatMessage) {
	if len(msgs) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, m := range msgs {
		c.messages = append(c.messages, m.Clone())
	}
}

// Snapshot returns a copy of the full history.
func (c *Conversation) Snapshot() []llm.ChatMessage {
	return c.Since(0)
}

// Since returns a copy of the messages appended after the first n.
func (c *Conversation) Since(n int) []llm.ChatMessage {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if n < 0 {
		n = 0
	}
	if n >= len(c.messages) {
		return []llm.ChatMessage{}
	}
	copied := make([]llm.ChatMessage, 0, len(c.messages)-n)
	for _, m := range c.messages[n:] {
		copied = append(copied, m.Clone())
	}
	return copied
}

// Len returns the number of stored messages.
func (c *Conversation) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.messages)
}
