// Package confirm implements the timed dialog that asks the operator whether
// a queued skill should really be removed. The dialog resolves exactly once:
// by an explicit choice, or by the deadline, which keeps the skill.
package confirm

import (
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultTimeout is how long the dialog waits before keeping the skill
	DefaultTimeout = 30 * time.Second
	// TickInterval is the countdown resolution
	TickInterval = time.Second
)

// Button is the focused dialog button
type Button int

const (
	ButtonKeep Button = iota
	ButtonRemove
)

func (b Button) String() string {
	if b == ButtonRemove {
		return "Remove"
	}
	return "Keep"
}

// Input is a dialog input signal
type Input int

const (
	InputCancel Input = iota + 1
	InputConfirm
	InputToggle
	InputYes
	InputNo
)

// TickMsg is posted by the countdown timer
type TickMsg struct {
	SessionID string
}

// DeadlineMsg is posted by the deadline timer
type DeadlineMsg struct {
	SessionID string
}

// Outcome is the terminal result of a session
type Outcome struct {
	Remove   bool
	TimedOut bool
}

// Session is one open confirmation dialog
type Session struct {
	id        string
	target    string
	focus     Button
	timeout   time.Duration
	interval  time.Duration
	remaining int
	resolved  bool

	ticker   Timer
	deadline Timer
}

// Option configures a Session
type Option func(*Session)

// WithTimeout overrides the deadline. Non-positive values keep the default.
func WithTimeout(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithTickInterval overrides the countdown resolution. Non-positive values
// keep the default.
func WithTickInterval(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.interval = d
		}
	}
}

// NewSession creates a dialog for removing the named skill. Keep is focused.
func NewSession(target string, opts ...Option) *Session {
	s := &Session{
		id:       uuid.NewString(),
		target:   target,
		focus:    ButtonKeep,
		timeout:  DefaultTimeout,
		interval: TickInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.remaining = int(s.timeout / s.interval)
	return s
}

// ID identifies the session in timer messages
func (s *Session) ID() string { return s.id }

// Target is the name of the skill the dialog would remove
func (s *Session) Target() string { return s.target }

// Focus returns the focused button
func (s *Session) Focus() Button { return s.focus }

// Remaining returns the countdown value
func (s *Session) Remaining() int { return s.remaining }

// Total returns the countdown starting value
func (s *Session) Total() int { return int(s.timeout / s.interval) }

// Resolved reports whether the session reached a terminal outcome
func (s *Session) Resolved() bool { return s.resolved }

// Start arms the countdown and deadline timers. Timer callbacks never touch
// the session; they post TickMsg and DeadlineMsg, which the owner feeds
// back through Receive on its event loop.
func (s *Session) Start(sched Scheduler, post func(msg any)) {
	if s.resolved || s.ticker != nil {
		return
	}
	id := s.id
	s.ticker = sched.Every(s.interval, func() { post(TickMsg{SessionID: id}) })
	s.deadline = sched.After(s.timeout, func() { post(DeadlineMsg{SessionID: id}) })
}

// Handle applies an operator input. It reports the outcome when the input
// resolves the session.
func (s *Session) Handle(in Input) (Outcome, bool) {
	if s.resolved {
		return Outcome{}, false
	}

	switch in {
	case InputCancel, InputNo:
		return s.resolve(Outcome{Remove: false}), true
	case InputYes:
		return s.resolve(Outcome{Remove: true}), true
	case InputConfirm:
		return s.resolve(Outcome{Remove: s.focus == ButtonRemove}), true
	case InputToggle:
		if s.focus == ButtonKeep {
			s.focus = ButtonRemove
		} else {
			s.focus = ButtonKeep
		}
	}
	return Outcome{}, false
}

// Receive applies a timer message addressed to this session. Messages for
// other sessions or arriving after resolution are ignored.
func (s *Session) Receive(msg any) (Outcome, bool) {
	if s.resolved {
		return Outcome{}, false
	}

	switch msg := msg.(type) {
	case TickMsg:
		if msg.SessionID == s.id && s.remaining > 0 {
			s.remaining--
		}
	case DeadlineMsg:
		if msg.SessionID == s.id {
			return s.resolve(Outcome{Remove: false, TimedOut: true}), true
		}
	}
	return Outcome{}, false
}

// Dispose releases both timers. An unresolved session is closed without an
// outcome, which leaves the queued skill in place.
func (s *Session) Dispose() {
	s.resolved = true
	s.release()
}

func (s *Session) resolve(o Outcome) Outcome {
	s.resolved = true
	s.release()
	return o
}

func (s *Session) release() {
	if s.ticker != nil {
		s.ticker.Stop()
	}
	if s.deadline != nil {
		s.deadline.Stop()
	}
}
