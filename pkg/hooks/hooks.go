// Package hooks provides the lifecycle dispatch of the chat host.
// Hooks registered for an event observe it and may contribute hidden
// segments to the outgoing message. Hooks are either in-process Go values
// or external executables discovered from hook directories.
package hooks

import (
	"context"
	"sync"
	"time"
)

// HookType represents the type of lifecycle hook
type HookType string

// Hook type constants define the lifecycle events that can be hooked
const (
	HookTypeBeforeMessageSend HookType = "before_message_send"
)

// Segment is a piece of an outgoing message. Hidden segments travel with
// the message but are not echoed in the conversation view.
type Segment struct {
	Kind    string `json:"kind"`
	Hidden  bool   `json:"hidden"`
	Content string `json:"content"`
}

// Message is an outgoing operator message
type Message struct {
	Text     string    `json:"text"`
	Segments []Segment `json:"segments,omitempty"`
}

// BeforeSendHook runs right before a message is dispatched
type BeforeSendHook interface {
	BeforeSend(ctx context.Context, msg Message) ([]Segment, error)
}

// BeforeSendFunc adapts a function to BeforeSendHook
type BeforeSendFunc func(ctx context.Context, msg Message) ([]Segment, error)

// BeforeSend implements BeforeSendHook
func (f BeforeSendFunc) BeforeSend(ctx context.Context, msg Message) ([]Segment, error) {
	return f(ctx, msg)
}

// DefaultTimeout is the default execution timeout for external hooks
const DefaultTimeout = 30 * time.Second

type registration struct {
	name string
	hook BeforeSendHook
}

// Registry holds the hooks registered for each lifecycle event. The zero
// value is not usable; create one with NewRegistry.
type Registry struct {
	mu         sync.RWMutex
	beforeSend []registration
	timeout    time.Duration
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{timeout: DefaultTimeout}
}

// SetTimeout sets the execution timeout for external hooks registered afterwards
func (r *Registry) SetTimeout(timeout time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.timeout = timeout
}

// RegisterBeforeSend appends a before_message_send hook. Hooks run in
// registration order.
func (r *Registry) RegisterBeforeSend(name string, hook BeforeSendHook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.beforeSend = append(r.beforeSend, registration{name: name, hook: hook})
}

// HasHooks returns true if there are any hooks registered for the given type
func (r *Registry) HasHooks(hookType HookType) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if hookType == HookTypeBeforeMessageSend {
		return len(r.beforeSend) > 0
	}
	return false
}

// Names returns the registered hook names for the given type in run order
func (r *Registry) Names(hookType HookType) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if hookType != HookTypeBeforeMessageSend {
		return nil
	}
	names := make([]string, 0, len(r.beforeSend))
	for _, reg := range r.beforeSend {
		names = append(names, reg.name)
	}
	return names
}
