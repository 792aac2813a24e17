package agent

import (
	"sync"

	"github.com/seenimoa/finchat/internal/llm"
)

// Memory is the append-only conversation history of a dialogue. Windowing
// happens at send time; nothing is ever removed.
type Memory struct {
	mu       sync.RWMutex
	messages []llm.Message
}

// NewMemory creates a history that starts with the given system prompt.
func NewMemory(system string) *Memory {
	m := &Memory{messages: make([]llm.Message, 0, 16)}
	if system != "" {
		m.messages = append(m.messages, llm.SystemMessage(system))
	}
	return m
}

// Add appends a message to the memory.
func (m *Memory) Add(msg llm.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
}

// Messages returns a copy of the history.
func (m *Memory) Messages() []llm.Message {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]llm.Message, len(m.messages))
	copy(result, m.messages)
	return result
}

// Size returns the number of messages currently in memory.
func (m *Memory) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.messages)
}
