package tui

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jingkaihe/skillq/pkg/hooks"
)

// RecordingSender is a Sender that keeps every message for inspection
type RecordingSender struct {
	mu       sync.Mutex
	messages []hooks.Message
	err      error
}

// NewRecordingSender creates an empty recording sender
func NewRecordingSender() *RecordingSender {
	return &RecordingSender{}
}

// Send records msg and returns the configured error
func (r *RecordingSender) Send(_ context.Context, msg hooks.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
	return r.err
}

// Messages returns the recorded messages
func (r *RecordingSender) Messages() []hooks.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]hooks.Message(nil), r.messages...)
}

// SetError sets an error to be returned by Send
func (r *RecordingSender) SetError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

// MessageRecorder collects messages posted to a program, standing in for
// tea.Program.Send
type MessageRecorder struct {
	mu   sync.Mutex
	msgs []tea.Msg
}

// Send records msg
func (r *MessageRecorder) Send(msg tea.Msg) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
}

// Drain returns and forgets the recorded messages
func (r *MessageRecorder) Drain() []tea.Msg {
	r.mu.Lock()
	defer r.mu.Unlock()
	msgs := r.msgs
	r.msgs = nil
	return msgs
}
